//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"locadora/internal/audit"
	"locadora/pkg/testutil/containers"
)

func TestKafkaSink_PublishRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	broker := containers.NewRedpandaContainer(t).Broker
	const topic = "locadora.audit.test"

	sink, err := audit.NewKafkaSink(ctx, []string{broker}, topic)
	require.NoError(t, err)
	t.Cleanup(sink.Close)

	key := []byte("user-1")
	value := []byte(`{"action":"loan_created"}`)
	require.NoError(t, sink.Publish(ctx, key, value))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, key, records[0].Key)
	assert.Equal(t, value, records[0].Value)
}

func TestKafkaSink_TopicAlreadyExistsIsFine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	broker := containers.NewRedpandaContainer(t).Broker
	const topic = "locadora.audit.dup"

	first, err := audit.NewKafkaSink(ctx, []string{broker}, topic)
	require.NoError(t, err)
	t.Cleanup(first.Close)

	second, err := audit.NewKafkaSink(ctx, []string{broker}, topic)
	require.NoError(t, err)
	t.Cleanup(second.Close)
}
