package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"keyworker/pkg/domain"
	audit "keyworker/pkg/platform/audit"
	"keyworker/pkg/platform/audit/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var person = domain.PersonIdentifier("A1234BC")

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		PersonIdentifier: person,
		Action:           audit.ActionPrisonerDeallocated,
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), person)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionPrisonerDeallocated, events[0].Action)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			PersonIdentifier: person,
			Action:           audit.ActionAllocationCreated,
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByPerson(context.Background(), person)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DoesNotBlock(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{
				PersonIdentifier: person,
				Action:           audit.ActionAllocationCreated,
			})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_Timestamp(t *testing.T) {
	t.Run("sets timestamp when missing", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := NewPublisher(store)

		before := time.Now()
		require.NoError(t, pub.Emit(context.Background(), audit.Event{PersonIdentifier: person, Action: audit.ActionPrisonerDeleted}))
		after := time.Now()

		events, err := pub.List(context.Background(), person)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.False(t, events[0].Timestamp.Before(before))
		assert.False(t, events[0].Timestamp.After(after))
	})

	t.Run("preserves existing timestamp", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		pub := NewPublisher(store)
		at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, pub.Emit(context.Background(), audit.Event{PersonIdentifier: person, Action: audit.ActionPrisonerDeleted, Timestamp: at}))

		events, err := pub.List(context.Background(), person)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, at, events[0].Timestamp)
	})
}

func TestPublisher_SeparatesPeople(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	other := domain.PersonIdentifier("Z9999ZZ")

	require.NoError(t, pub.Emit(context.Background(), audit.Event{PersonIdentifier: person, Action: audit.ActionPrisonerMerged}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{PersonIdentifier: other, Action: audit.ActionPrisonerDeallocated}))

	events, err := pub.List(context.Background(), other)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionPrisonerDeallocated, events[0].Action)
}
