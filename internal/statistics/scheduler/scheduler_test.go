package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyworker/internal/events"
	"keyworker/internal/platform/kafka/consumer"
	"keyworker/internal/prisonconfig"
	configstore "keyworker/internal/prisonconfig/store"
	"keyworker/pkg/domain"
	"keyworker/pkg/requestcontext"
)

type recordingPublisher struct {
	published []events.Envelope
	err       error
}

func (r *recordingPublisher) Publish(_ context.Context, envelopes []events.Envelope) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, envelopes...)
	return nil
}

func seeded(t *testing.T) *configstore.InMemory {
	t.Helper()
	store := configstore.NewInMemory()
	ctx := context.Background()
	for _, cfg := range []prisonconfig.PrisonConfig{
		{PrisonCode: "MDI", Policy: domain.PolicyKeyWorker, Enabled: true},
		{PrisonCode: "LEI", Policy: domain.PolicyKeyWorker, Enabled: true},
		{PrisonCode: "BXI", Policy: domain.PolicyKeyWorker, Enabled: false},
		{PrisonCode: "MDI", Policy: domain.PolicyPersonalOfficer, Enabled: true},
	} {
		require.NoError(t, store.SavePrison(ctx, cfg))
	}
	return store
}

func TestTrigger(t *testing.T) {
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	date := time.Date(2025, 6, 9, 17, 30, 0, 0, time.UTC)

	t.Run("one event per enabled prison and policy", func(t *testing.T) {
		pub := &recordingPublisher{}
		n, err := New(seeded(t), pub).Trigger(ctx, date)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		require.Len(t, pub.published, 3)

		for _, env := range pub.published {
			ev, err := events.Decode(mustJSON(t, env))
			require.NoError(t, err)
			calc, ok := ev.(events.CalculatePrisonStats)
			require.True(t, ok)
			assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), calc.Date)
			assert.NotEqual(t, domain.PrisonCode("BXI"), calc.PrisonCode)
		}
	})

	t.Run("nothing enabled publishes nothing", func(t *testing.T) {
		pub := &recordingPublisher{}
		n, err := New(configstore.NewInMemory(), pub).Trigger(ctx, date)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, pub.published)
	})

	t.Run("publish failure is returned", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("broker unavailable")}
		_, err := New(seeded(t), pub).Trigger(ctx, date)
		require.Error(t, err)
	})
}

func TestLocalPublisher(t *testing.T) {
	ctx := context.Background()
	var keys []string
	handler := consumer.HandlerFunc(func(_ context.Context, msg *consumer.Message) error {
		keys = append(keys, string(msg.Key))
		if string(msg.Key) == "LEI" {
			return errors.New("calculation failed")
		}
		return nil
	})

	date := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	envs := []events.Envelope{
		events.NewCalculatePrisonStats("LEI", domain.PolicyKeyWorker, date, date),
		events.NewCalculatePrisonStats("MDI", domain.PolicyKeyWorker, date, date),
	}
	err := NewLocalPublisher(handler, slogDiscard()).Publish(ctx, envs)
	require.NoError(t, err)
	assert.Equal(t, []string{"LEI", "MDI"}, keys)
}

type channelPublisher chan []events.Envelope

func (c channelPublisher) Publish(ctx context.Context, envelopes []events.Envelope) error {
	select {
	case c <- envelopes:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestRun(t *testing.T) {
	pub := make(channelPublisher, 8)
	s := New(seeded(t), pub, WithInterval(20*time.Millisecond), WithLogger(slogDiscard()))
	s.now = func() time.Time { return time.Date(2025, 6, 10, 0, 30, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	for i := 0; i < 2; i++ {
		select {
		case envs := <-pub:
			require.Len(t, envs, 3)
			ev, err := events.Decode(mustJSON(t, envs[0]))
			require.NoError(t, err)
			calc, ok := ev.(events.CalculatePrisonStats)
			require.True(t, ok)
			assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), calc.Date, "tick %d targets yesterday", i)
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d was not published", i)
		}
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_TriggersOnStart(t *testing.T) {
	pub := make(channelPublisher, 1)
	s := New(seeded(t), pub, WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case envs := <-pub:
		assert.Len(t, envs, 3)
	case <-time.After(2 * time.Second):
		t.Fatal("no trigger before the first interval elapsed")
	}
}
