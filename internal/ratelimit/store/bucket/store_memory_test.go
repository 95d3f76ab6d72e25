package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"riskprofile/internal/ratelimit/models"
)

const (
	testLimit  = 10
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	clock time.Time
	ctx   context.Context
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.clock = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryBucketStore(WithClock(func() time.Time { return s.clock }))
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result, err := s.store.Allow(s.ctx, "test:key:allow:first", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.Equal(s.clock.Add(testWindow), result.ResetAt)
	})

	s.Run("requests up to limit allowed", func() {
		var result *models.RateLimitResult
		var err error
		for range testLimit {
			result, err = s.store.Allow(s.ctx, "test:key:allow:limit", testLimit, testWindow)
		}
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(0, result.Remaining)
	})

	s.Run("request over limit denied", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "test:key:allow:over", testLimit, testWindow)
			s.Require().NoError(err)
		}
		result, err := s.store.Allow(s.ctx, "test:key:allow:over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(0, result.Remaining)
		s.Equal(60, result.RetryAfter)
	})
}

func (s *InMemoryBucketStoreSuite) TestWindowSlides() {
	key := "test:key:slide"
	for range testLimit {
		_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
	}

	s.clock = s.clock.Add(30 * time.Second)
	result, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(30, result.RetryAfter)

	s.clock = s.clock.Add(30 * time.Second)
	result, err = s.store.Allow(s.ctx, key, testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed, "entries exactly one window old have expired")

	count, err := s.store.GetCurrentCount(s.ctx, key)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *InMemoryBucketStoreSuite) TestAllowN() {
	s.Run("cost of 5 consumes 5 slots", func() {
		result, err := s.store.AllowN(s.ctx, "test:key:allown:five", 5, testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(5, result.Remaining)
	})

	s.Run("cost greater than remaining denied", func() {
		first, err := s.store.AllowN(s.ctx, "test:key:allown:deny", 7, testLimit, testWindow)
		s.Require().NoError(err)
		s.Require().True(first.Allowed)

		result, err := s.store.AllowN(s.ctx, "test:key:allown:deny", 4, testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)

		count, err := s.store.GetCurrentCount(s.ctx, "test:key:allown:deny")
		s.Require().NoError(err)
		s.Equal(7, count, "denied requests are not recorded")
	})
}

func (s *InMemoryBucketStoreSuite) TestReset() {
	_, err := s.store.AllowN(s.ctx, "test:key:reset", 5, testLimit, testWindow)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Reset(s.ctx, "test:key:reset"))

	result, err := s.store.AllowN(s.ctx, "test:key:reset", testLimit, testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(0, result.Remaining)
}

func (s *InMemoryBucketStoreSuite) TestConcurrent() {
	store := NewInMemoryBucketStore()
	limit := 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for range 200 {
		wg.Go(func() {
			result, err := store.Allow(s.ctx, "test:key:concurrent", limit, testWindow)
			if err == nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		})
	}

	wg.Wait()
	s.Equal(limit, allowed)
}

func (s *InMemoryBucketStoreSuite) TestEvictsIdleBuckets() {
	for _, key := range []string{"ratelimit:ip:192.0.2.1:risk_profile", "ratelimit:ip:192.0.2.2:risk_profile"} {
		_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
	}
	s.Len(s.store.buckets, 2)

	s.clock = s.clock.Add(testWindow + time.Second)
	_, err := s.store.Allow(s.ctx, "ratelimit:ip:192.0.2.3:risk_profile", testLimit, testWindow)
	s.Require().NoError(err)
	s.Len(s.store.buckets, 1, "clients idle for a full window are dropped")

	s.clock = s.clock.Add(testWindow + time.Second)
	count, err := s.store.GetCurrentCount(s.ctx, "ratelimit:ip:192.0.2.3:risk_profile")
	s.Require().NoError(err)
	s.Zero(count)
	s.Empty(s.store.buckets)
}

func (s *InMemoryBucketStoreSuite) TestDeniedEmptyBucketIsNotKept() {
	result, err := s.store.AllowN(s.ctx, "ratelimit:ip:192.0.2.9:risk_profile", 5, 2, testWindow)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Empty(s.store.buckets)
}
