package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"podium/internal/platform/config"
)

const (
	// deliveryTimeout bounds how long one record may be retried before
	// ProduceSync gives up.
	deliveryTimeout = 10 * time.Second
	recordRetries   = 5
)

// Producer wraps a franz-go client bound to one default topic.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects to the configured brokers. Returns nil when no
// brokers are configured.
func NewProducer(ctx context.Context, cfg config.KafkaConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	if cfg.AuditTopic == "" {
		return nil, errors.New("kafka topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.AllowAutoTopicCreation(),
		kgo.RecordDeliveryTimeout(deliveryTimeout),
		kgo.RecordRetries(recordRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return &Producer{client: client, topic: cfg.AuditTopic}, nil
}

// Topic returns the default topic records are produced to.
func (p *Producer) Topic() string {
	return p.topic
}

// EnsureTopic creates the default topic when it does not exist yet.
func (p *Producer) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(p.client)
	resps, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for _, r := range resps {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Produce writes one record synchronously to the default topic.
func (p *Producer) Produce(ctx context.Context, key, value []byte, headers map[string]string) error {
	record := &kgo.Record{Key: key, Value: value}
	for k, v := range headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return p.client.ProduceSync(ctx, record).FirstErr()
}

// Health pings the cluster.
func (p *Producer) Health(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records and closes the client.
func (p *Producer) Close() {
	p.client.Close()
}
