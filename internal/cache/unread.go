// Package cache keeps per-user unread notification counts in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/anonto42/future-media/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// UnreadCounts caches unread notification counts by receiver.
type UnreadCounts interface {
	// Get returns the cached count and whether it was present.
	Get(ctx context.Context, userID string) (int64, bool)
	// Stamp returns the receiver's current generation. Take it before reading the count
	// from the store and hand it to Set.
	Stamp(ctx context.Context, userID string) string
	// Set stores count unless the receiver was invalidated after stamp was taken.
	Set(ctx context.Context, userID, stamp string, count int64)
	// Invalidate drops the entries of the given receivers and advances their generation.
	Invalidate(ctx context.Context, userIDs ...string)
}

// Noop never caches. Used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (int64, bool)  { return 0, false }
func (Noop) Stamp(context.Context, string) string       { return "" }
func (Noop) Set(context.Context, string, string, int64) {}
func (Noop) Invalidate(context.Context, ...string)      {}

// generationTTL outlives any count so a stale stamp never matches a recreated generation.
const generationTTL = 24 * time.Hour

// RedisUnreadCounts stores counts under "unread:<userID>" with a TTL and a generation
// counter under "unread:gen:<userID>". Cache failures are logged and otherwise ignored;
// the store stays authoritative.
type RedisUnreadCounts struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a pooled client and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	logger.Log.Info("Redis client connected", zap.String("address", addr))
	return client, nil
}

func NewRedisUnreadCounts(client *redis.Client, ttl time.Duration) *RedisUnreadCounts {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisUnreadCounts{client: client, ttl: ttl}
}

func unreadKey(userID string) string {
	return "unread:" + userID
}

func generationKey(userID string) string {
	return "unread:gen:" + userID
}

func (c *RedisUnreadCounts) Get(ctx context.Context, userID string) (int64, bool) {
	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false
	}
	if err != nil {
		logger.Log.Warn("unread cache get failed", zap.String("user_id", userID), zap.Error(err))
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Stamp returns "" when Redis is unreachable, which makes the following Set a no-op.
func (c *RedisUnreadCounts) Stamp(ctx context.Context, userID string) string {
	gen, err := generation(ctx, c.client, userID)
	if err != nil {
		logger.Log.Warn("unread cache stamp failed", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	return gen
}

// Set writes the count in a WATCH transaction on the generation key, so an Invalidate
// that lands between the check and the write aborts it.
func (c *RedisUnreadCounts) Set(ctx context.Context, userID, stamp string, count int64) {
	if stamp == "" {
		return
	}
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		gen, err := generation(ctx, tx, userID)
		if err != nil {
			return err
		}
		if gen != stamp {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, unreadKey(userID), count, c.ttl)
			return nil
		})
		return err
	}, generationKey(userID))
	if errors.Is(err, redis.TxFailedErr) {
		return
	}
	if err != nil {
		logger.Log.Warn("unread cache set failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (c *RedisUnreadCounts) Invalidate(ctx context.Context, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Incr(ctx, generationKey(id))
			pipe.Expire(ctx, generationKey(id), generationTTL)
			pipe.Del(ctx, unreadKey(id))
		}
		return nil
	})
	if err != nil {
		logger.Log.Warn("unread cache invalidate failed", zap.Strings("user_ids", userIDs), zap.Error(err))
	}
}

func generation(ctx context.Context, r redis.Cmdable, userID string) (string, error) {
	gen, err := r.Get(ctx, generationKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}
