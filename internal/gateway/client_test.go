package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"keyworker/pkg/platform/circuit"
	"keyworker/pkg/platform/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Backoff: time.Millisecond}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, WithRetry(fastRetry()))
	var out map[string]string
	found, err := c.Get(context.Background(), "/thing", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "yes", out["ok"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ExhaustedRetriesSurface(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, WithRetry(fastRetry()))
	_, err := c.Get(context.Background(), "/thing", nil)
	require.Error(t, err)

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusServiceUnavailable, gwErr.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_NotFoundIsEmpty(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, WithRetry(fastRetry()))
	var out []string
	found, err := c.Get(context.Background(), "/missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, out)
	assert.Equal(t, int32(1), calls.Load(), "404 is not retried")
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, WithRetry(fastRetry()))
	_, err := c.Post(context.Background(), "/thing", map[string]int{"a": 1}, nil)
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_OpenCircuitMakesSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	breaker := circuit.New("test", circuit.WithFailureThreshold(1))
	c := NewClient("test", srv.URL, WithRetry(fastRetry()), WithBreaker(breaker))

	_, err := c.Get(context.Background(), "/thing", nil)
	require.Error(t, err)
	assert.True(t, breaker.IsOpen())
	assert.Equal(t, int32(3), calls.Load())

	_, err = c.Get(context.Background(), "/thing", nil)
	require.Error(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestParseDateTime(t *testing.T) {
	zoned, err := ParseDateTime("2025-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, zoned.Location())

	local, err := ParseDateTime("2025-07-01T10:00:00")
	require.NoError(t, err)
	assert.Equal(t, 9, local.UTC().Hour(), "BST is UTC+1")

	_, err = ParseDateTime("01/07/2025")
	assert.Error(t, err)
}
