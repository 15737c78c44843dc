//go:build integration

package gateway

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"keyworker/pkg/domain"
	"keyworker/pkg/testutil/containers"

	"github.com/stretchr/testify/suite"
)

type countingLookup struct {
	calls   int
	prisons map[domain.PrisonCode]bool
}

func (c *countingLookup) IsPrison(_ context.Context, code domain.PrisonCode) (bool, error) {
	c.calls++
	return c.prisons[code], nil
}

type PrisonCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestPrisonCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PrisonCacheSuite))
}

func (s *PrisonCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *PrisonCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *PrisonCacheSuite) TestCachesPositiveAndNegativeAnswers() {
	ctx := context.Background()
	next := &countingLookup{prisons: map[domain.PrisonCode]bool{"LEI": true}}
	cache := NewCachedPrisonLookup(next, s.redis.Client, time.Minute, slog.New(slog.DiscardHandler))

	for range 3 {
		ok, err := cache.IsPrison(ctx, "LEI")
		s.Require().NoError(err)
		s.True(ok)

		ok, err = cache.IsPrison(ctx, "LEEDCC")
		s.Require().NoError(err)
		s.False(ok)
	}
	s.Equal(2, next.calls)
}
