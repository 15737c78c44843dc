package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Gateways.RetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Gateways.RetryBackoff)
	assert.Equal(t, 10, cfg.Kafka.PublishBatchSize)
	assert.Equal(t, 24*time.Hour, cfg.Statistics.ScheduleInterval)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Database.URL)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("KEYWORKER_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("GATEWAY_RETRY_BACKOFF", "2s")
	t.Setenv("GATEWAY_RETRY_ATTEMPTS", "5")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Gateways.RetryBackoff)
	assert.Equal(t, 5, cfg.Gateways.RetryAttempts)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := map[string]struct {
		key, value string
	}{
		"non-numeric int":       {"GATEWAY_RETRY_ATTEMPTS", "five"},
		"duration without unit": {"GATEWAY_RETRY_BACKOFF", "250"},
		"bad interval":          {"STATS_SCHEDULE_INTERVAL", "daily"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}
