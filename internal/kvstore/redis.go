package kvstore

import (
    "context"
    "errors"

    redis "github.com/redis/go-redis/v9"
)

// Redis stores entries under a hash-free flat namespace. Used when the agent
// shares state with other tooling on the same host.
type Redis struct {
    rdb    *redis.Client
    prefix string
}

func NewRedis(url string) (*Redis, error) {
    opt, err := redis.ParseURL(url)
    if err != nil { return nil, err }
    return &Redis{rdb: redis.NewClient(opt), prefix: "initinere:"}, nil
}

func (s *Redis) Get(ctx context.Context, key string) (string, error) {
    v, err := s.rdb.Get(ctx, s.prefix+key).Result()
    if errors.Is(err, redis.Nil) {
        return "", ErrNotFound
    }
    return v, err
}

func (s *Redis) Set(ctx context.Context, key, value string) error {
    return s.rdb.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *Redis) Remove(ctx context.Context, key string) error {
    return s.rdb.Del(ctx, s.prefix+key).Err()
}

func (s *Redis) Close() error { return s.rdb.Close() }
