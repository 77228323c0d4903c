package repository

import (
	"context"
	"fmt"

	"TickerPulse/internal/domain/models"
	"TickerPulse/pkg/config"
	pkgkafka "TickerPulse/pkg/kafka"
)

// KafkaPublisher emits run-completed events keyed by run id, so consumers
// partition by run and replay in order.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(cfg *config.Config) (*KafkaPublisher, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &KafkaPublisher{producer: producer, topic: cfg.Kafka.Topic}, nil
}

func (p *KafkaPublisher) PublishRun(ctx context.Context, ev *models.RunEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.RunID), ev)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher is used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishRun(context.Context, *models.RunEvent) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
