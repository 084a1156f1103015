package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chess-room/internal/backoff"
	"github.com/park285/chess-room/internal/game"
	"github.com/park285/chess-room/internal/obslog"
)

const (
	gameKeyPrefix      = "chessroom:game:"
	defaultRecordTTL   = 24 * time.Hour
	redisUpdateRetries = 32
)

// conflictBackoff spaces out WATCH retries when writers collide on a key.
var conflictBackoff = backoff.Policy{Base: 2 * time.Millisecond, Max: 64 * time.Millisecond}

// Redis stores each record as JSON under its own key and guards updates
// with WATCH/MULTI.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(ctx context.Context, redisURL string, ttl time.Duration) (*Redis, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for redis store")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultRecordTTL
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func gameKey(id string) string { return gameKeyPrefix + id }

func (r *Redis) Create(ctx context.Context, g *game.Game) error {
	raw, err := encode(g)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, gameKey(g.ID), raw, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis create %s: %w", g.ID, err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (*game.Game, error) {
	raw, err := r.rdb.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	return decode(raw)
}

func (r *Redis) Update(ctx context.Context, id string, fn MutateFunc) (*game.Game, error) {
	key := gameKey(id)
	for attempt := 1; attempt <= redisUpdateRetries; attempt++ {
		var out *game.Game
		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			cur, err := decode(raw)
			if err != nil {
				return err
			}
			if err := fn(cur); err != nil {
				return err
			}
			newRaw, err := encode(cur)
			if err != nil {
				return err
			}
			pipe := tx.TxPipeline()
			pipe.Set(ctx, key, newRaw, r.ttl)
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
			out = cur
			return nil
		}, key)

		if err == nil {
			return out, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
		obslog.L().Debug("store_redis_conflict", zap.String("game_id", id), zap.Int("attempt", attempt))
		if sleepErr := backoff.Sleep(ctx, conflictBackoff.Delay(attempt)); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, ErrBusy
}

func (r *Redis) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}
