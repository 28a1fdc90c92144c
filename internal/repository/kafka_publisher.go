package repository

import (
	"context"

	"stocklens/internal/domain/models"
	"stocklens/internal/domain/repository"
	pkgkafka "stocklens/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Events are keyed by
// symbol:timeframe so per-key ordering holds with the hash balancer.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *models.SignalEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.Symbol+":"+e.Timeframe), e)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
