// Package kafka publishes audit events to a Kafka topic with franz-go.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "riskprofile/pkg/platform/audit"
	"riskprofile/pkg/platform/sentinel"
)

// message is the wire form of an audit event.
type message struct {
	ID         string            `json:"id"`
	Category   string            `json:"category"`
	Timestamp  time.Time         `json:"timestamp"`
	Action     string            `json:"action"`
	RequestID  string            `json:"request_id,omitempty"`
	Decision   string            `json:"decision,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Store produces one record per event. Records are keyed by request ID so
// events of one request land on the same partition.
type Store struct {
	client *kgo.Client
	topic  string
}

// New connects a producer to brokers. Extra kgo options are appended after
// the defaults.
func New(brokers []string, topic string, opts ...kgo.Opt) (*Store, error) {
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordRetries(3),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Store{client: client, topic: topic}, nil
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	record, err := encode(s.topic, event)
	if err != nil {
		return err
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Health checks broker connectivity.
func (s *Store) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		return fmt.Errorf("%w: kafka ping: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Close flushes buffered records and closes the client.
func (s *Store) Close() {
	s.client.Close()
}

func encode(topic string, event audit.Event) (*kgo.Record, error) {
	payload, err := json.Marshal(message{
		ID:         event.ID.String(),
		Category:   string(event.Category),
		Timestamp:  event.Timestamp.UTC(),
		Action:     event.Action,
		RequestID:  event.RequestID,
		Decision:   event.Decision,
		Attributes: event.Attributes,
	})
	if err != nil {
		return nil, fmt.Errorf("encode audit event: %w", err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(event.RequestID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}, nil
}
