package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyworker/internal/platform/config"
)

func TestNew_DisabledWithoutURL(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestOptions(t *testing.T) {
	opts, err := options(config.RedisConfig{
		URL:         "redis://cache:6380/2",
		PoolSize:    7,
		DialTimeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)

	_, err = options(config.RedisConfig{URL: "http://not-redis"})
	assert.Error(t, err)
}
