package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"FactorEdge/internal/di"
	"FactorEdge/pkg/config"
	"FactorEdge/pkg/util"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "factoredge",
	Short: "Adaptive multi-factor daily direction engine",
	Long: `factoredge estimates the probability that the next daily close is up
from calendar, streak, volume and technical factors, tracks how each factor
performs and recalibrates the factor weights every day.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

// withEngine wires the engine, runs fn and releases every store afterwards.
func withEngine(fn func(e *di.Engine) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, cleanup, err := di.InitializeEngine(cfg)
	if err != nil {
		return fmt.Errorf("engine initialization failed: %w", err)
	}
	defer cleanup()
	return fn(engine)
}

// parseDateFlag accepts an empty value as the zero time.
func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, ok := util.ParseDate(value)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --%s %q, want YYYY-MM-DD", name, value)
	}
	return t, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
