// Package redisstore shares processed results between service
// instances through Redis. Keys are dataset fingerprints, so entries
// are immutable and expire by TTL alone.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

type Option func(*redis.Options)

func WithPoolSize(n int) Option {
	return func(o *redis.Options) { o.PoolSize = n }
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.DialTimeout = d }
}

func WithReadTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.ReadTimeout = d }
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(ctx context.Context, addr string, ttl time.Duration, opts ...Option) (*Store, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	ro := &redis.Options{
		Addr:         addr,
		PoolSize:     16,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
	for _, f := range opts {
		f(ro)
	}

	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb, ttl: ttl}, nil
}

// Get fetches a processed result by fingerprint. The second return is
// false on a clean miss.
func (s *Store) Get(ctx context.Context, key string) (model.Result, bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Result{}, false, nil
	}
	if err != nil {
		return model.Result{}, false, fmt.Errorf("redis GET %q: %w", key, err)
	}
	var res model.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return model.Result{}, false, fmt.Errorf("decode cached result %q: %w", key, err)
	}
	return res, true, nil
}

// Put stores a processed result under its fingerprint with the
// configured TTL.
func (s *Store) Put(ctx context.Context, key string, res model.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result %q: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %q: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}
