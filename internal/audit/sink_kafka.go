package audit

import (
	"context"
	"encoding/json"
	"fmt"
)

// Sink forwards events beyond the local store.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Producer is the subset of the Kafka producer the sink needs.
type Producer interface {
	Produce(ctx context.Context, key, value []byte, headers map[string]string) error
}

// KafkaSink writes each event as a JSON record keyed by snapshot id, so
// events of one snapshot share a partition.
type KafkaSink struct {
	producer Producer
}

func NewKafkaSink(producer Producer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (k *KafkaSink) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	key := event.SnapshotID
	if key == "" {
		key = event.ID.String()
	}
	return k.producer.Produce(ctx, []byte(key), value, map[string]string{
		"event_type": string(event.Type),
	})
}
