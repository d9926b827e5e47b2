package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"FactorEdge/internal/domain/models"
	"FactorEdge/pkg/logger"
)

// Publisher is the subset of the Kafka producer the prediction publisher uses.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPredictionPublisher writes next-day composites to a topic keyed by
// trade date. Publishing goes through a circuit breaker so a broker
// outage fails fast instead of stalling every cycle.
type KafkaPredictionPublisher struct {
	producer Publisher
	topic    string
	cb       *gobreaker.CircuitBreaker
	l        *logger.Logger
}

func NewKafkaPredictionPublisher(p Publisher, topic string, maxFailures uint32, openTimeout time.Duration, l *logger.Logger) *KafkaPredictionPublisher {
	l = l.With(logger.String("component", "prediction_publisher"), logger.String("topic", topic))
	st := gobreaker.Settings{
		Name:    "kafka-predictions",
		Timeout: openTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("circuit state changed", logger.String("from", from.String()), logger.String("to", to.String()))
		},
	}
	return &KafkaPredictionPublisher{producer: p, topic: topic, cb: gobreaker.NewCircuitBreaker(st), l: l}
}

func (k *KafkaPredictionPublisher) PublishPrediction(ctx context.Context, p models.CompositePrediction) error {
	key := []byte(p.TradeDate.Format(time.DateOnly))
	_, err := k.cb.Execute(func() (interface{}, error) {
		return nil, k.producer.Publish(ctx, k.topic, key, p)
	})
	if err != nil {
		return fmt.Errorf("publish prediction %s: %w", key, err)
	}
	k.l.Debug("prediction published", logger.Date("trade_date", p.TradeDate), logger.Float64("composite", p.Composite))
	return nil
}

// State exposes the breaker state for health reporting.
func (k *KafkaPredictionPublisher) State() gobreaker.State {
	return k.cb.State()
}

func (k *KafkaPredictionPublisher) Close() error {
	return k.producer.Close()
}

// NopPublisher drops predictions; used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishPrediction(context.Context, models.CompositePrediction) error {
	return models.ErrPublishingDisabled
}

func (NopPublisher) Close() error { return nil }
