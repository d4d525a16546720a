package cart

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"bookshop/internal/domain"
)

type redisStore struct {
	client redis.UniversalClient
}

// NewRedis stores snapshots as plain Redis strings without expiry.
func NewRedis(client redis.UniversalClient) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Persistence("get cart snapshot", err)
	}
	return value, nil
}

func (s *redisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return domain.Persistence("put cart snapshot", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return domain.Persistence("delete cart snapshot", err)
	}
	return nil
}
