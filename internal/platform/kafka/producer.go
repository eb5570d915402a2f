// Package kafka publishes records to a Kafka-compatible broker with franz-go.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "kyc-intake/pkg/platform/audit"
)

const (
	// DefaultDeliveryTimeout fails a buffered record the broker never
	// acknowledged.
	DefaultDeliveryTimeout = 10 * time.Second
	// DefaultWriteTimeout bounds a single AuditSink.Append.
	DefaultWriteTimeout = 5 * time.Second
)

// Producer writes records to a single default topic.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects to brokers. franz-go connects lazily, so an
// unreachable broker only surfaces on the first produce or on Ping. Records
// are failed after DefaultDeliveryTimeout unless opts override it.
func NewProducer(brokers []string, topic string, opts ...kgo.Opt) (*Producer, error) {
	opts = append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RecordDeliveryTimeout(DefaultDeliveryTimeout),
	}, opts...)

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Producer{client: client, topic: topic}, nil
}

// Ping checks that at least one broker answers.
func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Publish writes one record and waits for the broker acknowledgement or
// for ctx to end, whichever comes first.
func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	rec := &kgo.Record{Topic: p.topic, Key: []byte(key), Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes pending records and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}

// AuditSink publishes audit events as JSON, keyed by task so every event of
// one task lands on the same partition.
type AuditSink struct {
	producer *Producer
	timeout  time.Duration
}

type SinkOption func(*AuditSink)

// WithWriteTimeout bounds each Append; d <= 0 leaves only the caller's
// deadline and the record delivery timeout.
func WithWriteTimeout(d time.Duration) SinkOption {
	return func(s *AuditSink) {
		s.timeout = d
	}
}

func NewAuditSink(p *Producer, opts ...SinkOption) *AuditSink {
	s := &AuditSink{producer: p, timeout: DefaultWriteTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuditSink) Append(ctx context.Context, event audit.Event) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	key := event.TaskID
	if key == "" {
		key = event.ID.String()
	}
	return s.producer.Publish(ctx, key, value)
}
