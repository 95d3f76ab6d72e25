package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"riskprofile/internal/ratelimit/models"
)

// slidingWindowScript trims the window, admits the request when there is room
// and returns {allowed, count, oldest_score}. Scores are microseconds.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count + cost <= limit then
  for i = 1, cost do
    redis.call('ZADD', key, now, member .. ':' .. i)
  end
  count = count + cost
  allowed = 1
end
redis.call('PEXPIRE', key, math.ceil(window / 1000))

local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
  oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`)

// RedisBucketStore keeps sliding windows in Redis sorted sets so limits hold
// across replicas. Each check is a single atomic script call.
type RedisBucketStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisBucketStore(client redis.UniversalClient) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

func (s *RedisBucketStore) AllowN(ctx context.Context, key string, cost int, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	res, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		now.UnixMicro(),
		window.Microseconds(),
		limit,
		cost,
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis sliding window: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("redis sliding window: unexpected reply length %d", len(res))
	}

	resetAt := time.UnixMicro(res[2]).Add(window)
	if res[0] == 0 {
		return models.Denied(limit, resetAt, now), nil
	}
	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - int(res[1]),
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the counter for a key.
func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// GetCurrentCount returns the number of requests inside the window for key.
func (s *RedisBucketStore) GetCurrentCount(ctx context.Context, key string, window time.Duration) (int, error) {
	minScore := fmt.Sprintf("(%d", s.now().Add(-window).UnixMicro())
	n, err := s.client.ZCount(ctx, key, minScore, "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
