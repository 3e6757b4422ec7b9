package repository

import (
	"context"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
	pkgkafka "LovePulse/pkg/kafka"
)

// KafkaFeedPublisher pushes insider log entries to a Kafka topic, keyed by
// symbol so one couple's events stay ordered within a partition.
type KafkaFeedPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaFeedPublisher creates a Kafka-backed feed publisher.
func NewKafkaFeedPublisher(producer *pkgkafka.Producer, topic string) drepo.FeedPublisher {
	return &KafkaFeedPublisher{producer: producer, topic: topic}
}

func (p *KafkaFeedPublisher) Publish(ctx context.Context, entry *models.InsiderLogEntry) error {
	return p.producer.Publish(ctx, p.topic, []byte(entry.Symbol), entry)
}

func (p *KafkaFeedPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopFeedPublisher drops every entry. Used when no broker is configured.
type NopFeedPublisher struct{}

func (NopFeedPublisher) Publish(context.Context, *models.InsiderLogEntry) error { return nil }

// MultiFeedPublisher fans one entry out to several publishers. Every publisher
// is attempted; the first error is returned.
type MultiFeedPublisher []drepo.FeedPublisher

func (m MultiFeedPublisher) Publish(ctx context.Context, entry *models.InsiderLogEntry) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, entry); err != nil && first == nil {
			first = err
		}
	}
	return first
}
