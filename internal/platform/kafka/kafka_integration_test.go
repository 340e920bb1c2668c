//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"podium/internal/audit"
	"podium/internal/platform/config"
	"podium/internal/platform/kafka"
	"podium/pkg/testutil/containers"
)

func TestProducerDeliversAuditEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	broker := containers.GetManager().GetRedpanda(t).Broker
	topic := "podium.audit.test"

	producer, err := kafka.NewProducer(ctx, config.KafkaConfig{Brokers: []string{broker}, AuditTopic: topic})
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, producer.EnsureTopic(ctx, 1, 1))
	require.NoError(t, producer.EnsureTopic(ctx, 1, 1), "existing topic is not an error")
	require.NoError(t, producer.Health(ctx))

	sink := audit.NewKafkaSink(producer)
	require.NoError(t, sink.Publish(ctx, audit.Event{Type: audit.EventDatasetLoaded, SnapshotID: "snap-1", Rows: 42}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	require.Equal(t, "snap-1", string(records[0].Key))
	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, audit.EventDatasetLoaded, got.Type)
	require.Equal(t, 42, got.Rows)
}

func TestNewProducerDisabledWithoutBrokers(t *testing.T) {
	p, err := kafka.NewProducer(context.Background(), config.KafkaConfig{})
	require.NoError(t, err)
	require.Nil(t, p)
}
