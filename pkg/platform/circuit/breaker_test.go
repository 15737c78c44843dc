package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_Defaults(t *testing.T) {
	b := New("prison-api")
	assert.Equal(t, "prison-api", b.Name())
	assert.Equal(t, "closed", b.State().String())

	for i := 0; i < 4; i++ {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen(), "four failures stay under the default threshold")
	_, change := b.RecordFailure()
	assert.True(t, change.Opened)
	assert.Equal(t, "open", b.State().String())
}

func TestBreaker_Transitions(t *testing.T) {
	b := New("case-notes", WithFailureThreshold(2), WithSuccessThreshold(2))

	fallback, change := b.RecordFailure()
	assert.False(t, fallback)
	assert.False(t, change.Opened)

	fallback, change = b.RecordFailure()
	require.True(t, fallback)
	require.True(t, change.Opened)

	fallback, change = b.RecordFailure()
	assert.True(t, fallback)
	assert.False(t, change.Opened, "an open breaker reports no new transition")

	primary, change := b.RecordSuccess()
	assert.False(t, primary)
	assert.False(t, change.Closed)

	b.RecordFailure()
	b.RecordSuccess()
	assert.True(t, b.IsOpen(), "a failure while open restarts the success count")

	primary, change = b.RecordSuccess()
	assert.True(t, primary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreaker_SuccessClearsFailures(t *testing.T) {
	b := New("prisoner-search", WithFailureThreshold(2))
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}

func TestBreaker_IgnoresNonPositiveThresholds(t *testing.T) {
	b := New("prison-register", WithFailureThreshold(0), WithSuccessThreshold(-1))
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}

func TestBreaker_Reset(t *testing.T) {
	b := New("complexity-of-need", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	b.RecordFailure()
	assert.True(t, b.IsOpen(), "counters start over after reset")
}

func TestBreaker_Concurrent(t *testing.T) {
	b := New("prison-api", WithFailureThreshold(50))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
		}()
	}
	wg.Wait()
	assert.True(t, b.IsOpen())
}
