package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

type redisStore struct {
	client *redis.Client
	cfg    config
}

var _ Store = (*redisStore)(nil)

// NewRedis returns a Store backed by Redis. Values are serialized to
// msgpack. The caller owns the redis.Client lifecycle — Close is a no-op on
// the client.
//
// This backend does not implement [TagStore]; group invalidation on top of
// it relies on an application-maintained key index.
func NewRedis(client *redis.Client, opts ...Option) Store {
	return &redisStore{
		client: client,
		cfg:    applyOptions(opts),
	}
}

func (s *redisStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.queryTimeout)
}

func (s *redisStore) prefixKey(key string) string {
	if s.cfg.prefix == "" {
		return key
	}
	return s.cfg.prefix + ":" + key
}

func (s *redisStore) Get(ctx context.Context, key string) (bool, any, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	data, err := s.client.Get(qctx, s.prefixKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, data, nil
}

func (s *redisStore) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	data, err := msgpack.Marshal(val)
	if err != nil {
		return err
	}
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	if ttl <= 0 {
		ttl = 0 // redis treats zero expiration as no expiry
	}
	return s.client.Set(qctx, s.prefixKey(key), data, ttl).Err()
}

func (s *redisStore) Has(ctx context.Context, key string) (bool, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	n, err := s.client.Exists(qctx, s.prefixKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisStore) Forget(ctx context.Context, key string) (bool, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	n, err := s.client.Del(qctx, s.prefixKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisStore) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.prefixKey(key)
	}
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.client.Del(qctx, prefixed...).Err()
}

func (s *redisStore) Remember(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (any, error) {
	found, val, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		return val, nil
	}
	result, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Set(ctx, key, result, ttl); err != nil {
		return nil, err
	}
	return result, nil
}

// Close is a no-op — the caller owns the redis.Client lifecycle.
func (s *redisStore) Close() error {
	return nil
}
