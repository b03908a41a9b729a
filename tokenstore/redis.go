package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/observability"
)

// RedisConfig holds the connection and key settings of a Redis store.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`

	// KeyPrefix and Key form the stored key as "<prefix>:<key>".
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
	Key       string `yaml:"key" mapstructure:"key"`

	// TTL expires the token; zero keeps it until cleared.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`

	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
}

// ApplyDefaults fills zero-value fields.
func (c *RedisConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "errkit:token"
	}
	if c.Key == "" {
		c.Key = "default"
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 4
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
}

// Validate checks the configuration.
func (c *RedisConfig) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("redis ttl must not be negative")
	}
	return nil
}

// Redis stores the token under a single key.
type Redis struct {
	rdb *goredis.Client
	key string
	ttl time.Duration
	log *logger.Logger
}

var (
	_ Store                       = (*Redis)(nil)
	_ observability.HealthChecker = (*Redis)(nil)
)

// NewRedis connects to Redis and returns a store. The connection is
// verified with PING.
func NewRedis(ctx context.Context, cfg RedisConfig, log *logger.Logger) (*Redis, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tokenstore: %w", err)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("tokenstore: redis ping %s: %w", cfg.Addr, err)
	}

	if log == nil {
		log = logger.WithComponent("tokenstore")
	}
	log.Debug("redis token store connected", map[string]interface{}{
		"addr": cfg.Addr,
		"db":   cfg.DB,
	})

	return NewRedisFromClient(rdb, cfg, log), nil
}

// NewRedisFromClient wraps an existing go-redis client.
func NewRedisFromClient(rdb *goredis.Client, cfg RedisConfig, log *logger.Logger) *Redis {
	cfg.ApplyDefaults()
	return &Redis{rdb: rdb, key: cfg.KeyPrefix + ":" + cfg.Key, ttl: cfg.TTL, log: log}
}

// Key returns the Redis key holding the token.
func (r *Redis) Key() string { return r.key }

func (r *Redis) Get(ctx context.Context) (string, bool, error) {
	token, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("tokenstore: redis get: %w", err)
	}
	return token, token != "", nil
}

func (r *Redis) Set(ctx context.Context, token string) error {
	if err := r.rdb.Set(ctx, r.key, token, r.ttl).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("tokenstore: redis del: %w", err)
	}
	return nil
}

// CheckHealth pings the server.
func (r *Redis) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{Name: "token-store", Status: observability.HealthStatusUp}
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
	}
	return h
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
