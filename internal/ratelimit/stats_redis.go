package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ StatsStore = (*RedisStatsStore)(nil)

// RedisStatsStore writes admission counters to Redis hashes:
//
//	<prefix>:total            allowed|denied
//	<prefix>:minute:<YYYYMMDDhhmm> allowed|denied (expires after ttl)
//	<prefix>:action           <action>:allowed|<action>:denied
type RedisStatsStore struct {
	rdb    *redis.Client
	prefix string
	// ttl applies to the per-minute buckets only; totals never expire.
	ttl time.Duration
}

// RedisStatsOption configures a RedisStatsStore.
type RedisStatsOption func(*RedisStatsStore)

// WithStatsPrefix sets the key prefix.
func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.prefix = strings.Trim(prefix, ":") }
}

// WithStatsTTL sets the lifetime of per-minute buckets.
func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// NewRedisStatsStore creates a RedisStatsStore on rdb.
func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "redirector:admission",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record implements StatsStore.
func (s *RedisStatsStore) Record(ctx context.Context, ev StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	if action := strings.TrimSpace(ev.Action); action != "" {
		pipe.HIncrBy(ctx, s.prefix+":action", action+":"+field, 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record admission stats: %w", err)
	}
	return nil
}
