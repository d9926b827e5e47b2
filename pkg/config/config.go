package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"500ms"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
	} `yaml:"log"`
	Storage struct {
		// Prices is "clickhouse" or "memory".
		Prices string `yaml:"prices" default:"clickhouse"`
		// Performance is "postgres" or "memory".
		Performance string `yaml:"performance" default:"postgres"`
	} `yaml:"storage"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"factoredge"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Postgres struct {
		Host            string        `yaml:"host" default:"localhost"`
		Port            int           `yaml:"port" default:"5432"`
		Database        string        `yaml:"database" default:"factoredge"`
		User            string        `yaml:"user" default:"factoredge"`
		Password        string        `yaml:"password"`
		SSLMode         string        `yaml:"sslmode" default:"disable"`
		MaxOpenConns    int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"30m"`
	} `yaml:"postgres"`
	// Cache sizes the in-process cache used when Redis is disabled.
	Cache struct {
		MemoryMaxSize int           `yaml:"memory_max_size" default:"10000"`
		MemoryCleanup time.Duration `yaml:"memory_cleanup" default:"1m"`
	} `yaml:"cache"`
	Redis struct {
		Enabled   bool          `yaml:"enabled"`
		Addr      string        `yaml:"addr" default:"localhost:6379"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db"`
		Prefix    string        `yaml:"prefix" default:"factoredge"`
		WeightTTL time.Duration `yaml:"weight_ttl" default:"1h"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			Topic        string        `yaml:"topic" default:"factoredge.predictions"`
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			Topic      string        `yaml:"topic" default:"factoredge.bars"`
			GroupID    string        `yaml:"group_id" default:"factoredge"`
			Workers    int           `yaml:"workers" default:"1"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"factoredge.bars.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
		Breaker struct {
			MaxFailures uint32        `yaml:"max_failures" default:"5"`
			OpenTimeout time.Duration `yaml:"open_timeout" default:"30s"`
		} `yaml:"breaker"`
	} `yaml:"kafka"`
	Engine struct {
		Symbol              string             `yaml:"symbol" default:"BTC-USDT"`
		TrackingWindow      int                `yaml:"tracking_window" default:"60"`
		RecalibrationWindow int                `yaml:"recalibration_window" default:"30"`
		Steepness           float64            `yaml:"steepness" default:"10"`
		FallbackPolicy      string             `yaml:"fallback_policy" default:"carry_forward"`
		ReportDays          int                `yaml:"report_days" default:"60"`
		DefaultWeights      map[string]float64 `yaml:"default_weights"`
		LockTTL             time.Duration      `yaml:"lock_ttl" default:"10m"`
	} `yaml:"engine"`
	Scheduler struct {
		Enabled  bool          `yaml:"enabled"`
		Interval time.Duration `yaml:"interval" default:"1h"`
	} `yaml:"scheduler"`
	RateLimit struct {
		CycleRPS   float64 `yaml:"cycle_rps" default:"0.2"`
		CycleBurst int     `yaml:"cycle_burst" default:"1"`
	} `yaml:"rate_limit"`
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables, reading a .env file first when one exists.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PRICE_STORAGE"); v != "" {
		c.Storage.Prices = v
	}
	if v := os.Getenv("PERFORMANCE_STORAGE"); v != "" {
		c.Storage.Performance = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		c.Postgres.Host = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("FALLBACK_POLICY"); v != "" {
		c.Engine.FallbackPolicy = v
	}
	if v := os.Getenv("TRACKING_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("TRACKING_WINDOW: %w", err)
		}
		c.Engine.TrackingWindow = n
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Storage.Prices {
	case "clickhouse", "memory":
	default:
		return fmt.Errorf("storage.prices must be 'clickhouse' or 'memory', got '%s'", c.Storage.Prices)
	}
	switch c.Storage.Performance {
	case "postgres", "memory":
	default:
		return fmt.Errorf("storage.performance must be 'postgres' or 'memory', got '%s'", c.Storage.Performance)
	}
	if c.Engine.TrackingWindow < 1 {
		return fmt.Errorf("engine.tracking_window must be positive")
	}
	if c.Engine.RecalibrationWindow < 1 {
		return fmt.Errorf("engine.recalibration_window must be positive")
	}
	if c.Engine.Steepness <= 0 {
		return fmt.Errorf("engine.steepness must be positive")
	}
	switch c.Engine.FallbackPolicy {
	case "carry_forward", "uniform":
	default:
		return fmt.Errorf("engine.fallback_policy must be 'carry_forward' or 'uniform', got '%s'", c.Engine.FallbackPolicy)
	}
	if len(c.Engine.DefaultWeights) > 0 {
		var sum float64
		for name, w := range c.Engine.DefaultWeights {
			switch name {
			case "calendar", "streak", "volume", "technical":
			default:
				return fmt.Errorf("engine.default_weights: unknown factor '%s'", name)
			}
			if w < 0 {
				return fmt.Errorf("engine.default_weights.%s must be non-negative", name)
			}
			sum += w
		}
		if len(c.Engine.DefaultWeights) != 4 || sum < 0.999999 || sum > 1.000001 {
			return fmt.Errorf("engine.default_weights must name all four factors and sum to 1")
		}
	}
	if !c.Redis.Enabled && (c.Cache.MemoryMaxSize < 1 || c.Cache.MemoryCleanup <= 0) {
		return fmt.Errorf("cache.memory_max_size and cache.memory_cleanup must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive")
	}
	return nil
}
