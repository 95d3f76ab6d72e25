//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"riskprofile/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
	clock time.Time
	ctx   context.Context
}

func TestRedisBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.ctx = context.Background()
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.clock = time.Now()
	s.store = NewRedisBucketStore(s.redis.Client)
	s.store.now = func() time.Time { return s.clock }
}

func (s *RedisBucketStoreSuite) TestAllowUpToLimit() {
	for i := range testLimit {
		result, err := s.store.Allow(s.ctx, "it:limit", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-i-1, result.Remaining)
	}

	result, err := s.store.Allow(s.ctx, "it:limit", testLimit, testWindow)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(testLimit, result.Limit)
	s.GreaterOrEqual(result.RetryAfter, 59)
}

func (s *RedisBucketStoreSuite) TestWindowSlides() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "it:slide", testLimit, testWindow)
		s.Require().NoError(err)
	}

	s.clock = s.clock.Add(testWindow)
	result, err := s.store.Allow(s.ctx, "it:slide", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)

	count, err := s.store.GetCurrentCount(s.ctx, "it:slide", testWindow)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *RedisBucketStoreSuite) TestAllowNAndReset() {
	result, err := s.store.AllowN(s.ctx, "it:cost", 7, testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(3, result.Remaining)

	result, err = s.store.AllowN(s.ctx, "it:cost", 4, testLimit, testWindow)
	s.Require().NoError(err)
	s.False(result.Allowed)

	s.Require().NoError(s.store.Reset(s.ctx, "it:cost"))
	count, err := s.store.GetCurrentCount(s.ctx, "it:cost", testWindow)
	s.Require().NoError(err)
	s.Zero(count)
}
