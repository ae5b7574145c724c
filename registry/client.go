package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
)

type DB int
type ReleaseLock func() error

type Config struct {
	LockExpirationSeconds   int     `envconfig:"SVM_REDIS_LOCK_EXPIRATION" default:"3"`
	Host                    string  `envconfig:"SVM_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"SVM_REDIS_PORT" default:"6379"`
	HASentinelPort          string  `envconfig:"SVM_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"SVM_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"SVM_REDIS_PASSWORD"`
	HAMode                  bool    `envconfig:"SVM_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"SVM_REDIS_SOCKET_TIMEOUT" default:"0.5"`
	KeyPrefix               string  `envconfig:"SVM_REDIS_KEY_PREFIX" default:"svm:model"`
}

// store is the slice of Redis the registry needs.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) (bool, error)
	Lock(ctx context.Context, key string) (ReleaseLock, error)
	Close() error
}

type redisStore struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
}

// NewClient connects a registry to the Redis server named by the
// SVM_REDIS_* variables.
func NewClient(db DB) (*Registry, error) {
	cfg, err := readEnvironment()
	if err != nil {
		return nil, err
	}
	var client redis.UniversalClient
	if cfg.HAMode {
		client = CreateClusterClient(cfg, db)
	} else {
		client = CreateClient(cfg, db)
	}
	return newRegistry(&redisStore{
		client:         client,
		lockExpiration: time.Duration(cfg.LockExpirationSeconds) * time.Second,
	}, cfg.KeyPrefix), nil
}

func CreateClusterClient(cfg *Config, db DB) *redis.ClusterClient {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)
	timeout := time.Duration(cfg.HASentinelSocketTimeout * float32(time.Second))
	return redis.NewFailoverClusterClient(&redis.FailoverOptions{
		SentinelAddrs: []string{addr},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
		MasterName:    cfg.HASentinelMasterName,
		Password:      cfg.Password,
	})
}

func CreateClient(cfg *Config, db DB) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		MaxRetries: 6,
		DB:         int(db),
		Password:   cfg.Password,
	})
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return b, err
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *redisStore) Del(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, key).Result()
	return n > 0, err
}

func (s *redisStore) Lock(ctx context.Context, key string) (ReleaseLock, error) {
	lockCl := redislock.New(s.client)
	str := redislock.LimitRetry(redislock.LinearBackoff(time.Second), 20)
	lockKey := fmt.Sprintf("lock:%s", key)
	lock, err := lockCl.Obtain(ctx, lockKey, s.lockExpiration, &redislock.Options{RetryStrategy: str})
	if err != nil {
		return nil, err
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func readEnvironment() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
