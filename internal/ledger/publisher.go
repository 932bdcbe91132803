package ledger

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
)

// streamRecord is the JSON payload published per ledger record, keyed by
// harness so downstream consumers see one partition per harness history.
type streamRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Harness   string    `json:"harness"`
	Status    Status    `json:"status"`
	Seconds   float64   `json:"seconds"`
	Bound     uint64    `json:"bound"`
	Message   string    `json:"message,omitempty"`
}

// Publisher streams ledger records to a Kafka topic. Publishing is
// fail-open relative to the ledger itself: the store append is the source
// of truth and stream delivery is best effort via the worker.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher connects a producer for the given topic and creates the
// topic when it does not exist yet.
func NewPublisher(ctx context.Context, brokers []string, topic string, opts ...PublisherOption) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	p := &Publisher{client: client, topic: topic, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	_, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("ensure topic %q: %w", topic, err)
	}
	return nil
}

// Publish sends one ledger record and blocks until the broker acknowledges.
func (p *Publisher) Publish(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(streamRecord{
		Timestamp: rec.Timestamp.UTC(),
		Module:    rec.Module,
		Harness:   rec.Harness,
		Status:    rec.Status,
		Seconds:   rec.Seconds,
		Bound:     rec.Bound,
		Message:   rec.Message,
	})
	if err != nil {
		return fmt.Errorf("marshal stream record: %w", err)
	}

	res := p.client.ProduceSync(ctx, &kgo.Record{
		Topic: p.topic,
		Key:   []byte(rec.Harness),
		Value: payload,
	})
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("produce ledger record: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
