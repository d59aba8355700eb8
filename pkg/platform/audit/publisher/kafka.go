// Package publisher ships audit events to Kafka with franz-go.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"tradegate/pkg/platform/audit"
)

// Kafka publishes audit events keyed by user ID so per-user ordering is
// preserved within a partition.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects to the brokers and makes sure the topic exists.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Kafka{client: client, topic: topic, logger: logger}, nil
}

func ensureTopic(client *kgo.Client, topic string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin := kadm.NewClient(client)
	responses, err := admin.CreateTopics(ctx, 3, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, response := range responses {
		if response.Err != nil && !errors.Is(response.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", response.Topic, response.Err)
		}
	}
	return nil
}

// Publish produces synchronously; the audit worker already decouples this
// from request handling, so waiting here keeps delivery errors visible.
func (p *Kafka) Publish(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.UserID),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes outstanding records and releases the client.
func (p *Kafka) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka flush on close failed", "error", err)
	}
	p.client.Close()
}
