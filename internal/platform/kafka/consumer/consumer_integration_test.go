//go:build integration

package consumer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyworker/internal/platform/kafka/admin"
	"keyworker/internal/platform/kafka/consumer"
	"keyworker/internal/platform/kafka/producer"
	"keyworker/internal/platform/logger"
	"keyworker/pkg/testutil/containers"
)

type collector struct {
	mu   sync.Mutex
	keys []string
	done chan struct{}
	want int
}

func (c *collector) Handle(_ context.Context, msg *consumer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, string(msg.Key))
	if len(c.keys) == c.want {
		close(c.done)
	}
	if string(msg.Key) == "poison" {
		return errors.New("cannot handle")
	}
	return nil
}

func TestConsumer_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetKafka(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	const topic = "domain-events-roundtrip"
	require.NoError(t, admin.EnsureTopics(ctx, broker.Brokers, 1, topic, topic+".dlq"))
	require.NoError(t, admin.EnsureTopics(ctx, broker.Brokers, 1, topic), "existing topics are tolerated")

	prod, err := producer.New(broker.Brokers, 2)
	require.NoError(t, err)
	defer prod.Close()
	require.NoError(t, prod.PublishBatch(ctx, topic, []producer.Record{
		{Key: []byte("MDI"), Value: []byte(`{}`)},
		{Key: []byte("poison"), Value: []byte(`{}`)},
		{Key: []byte("LEI"), Value: []byte(`{}`)},
	}))

	cons, err := consumer.New(consumer.Config{
		Brokers:          broker.Brokers,
		Group:            "roundtrip",
		Topics:           []string{topic},
		DeadLetterSuffix: ".dlq",
	}, logger.Discard())
	require.NoError(t, err)
	defer cons.Close()

	c := &collector{done: make(chan struct{}), want: 3}
	go func() { _ = cons.Run(ctx, c) }()

	select {
	case <-c.done:
	case <-ctx.Done():
		t.Fatal("timed out waiting for records")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, []string{"MDI", "poison", "LEI"}, c.keys)
}
