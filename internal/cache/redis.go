package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/geocoder89/diettrack/internal/domain/meal"
	"github.com/geocoder89/diettrack/internal/utils"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Redis struct {
	redisdb *redis.Client
	ttl     time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}

	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Redis{redisdb: redisdb, ttl: cfg.TTL}
}

// Ping checks redis connectivity at startup.
func (c *Redis) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.redisdb.Close()
}

func (c *Redis) Get(ctx context.Context, userID string) (meal.Metrics, bool) {
	raw, err := c.redisdb.Get(ctx, utils.MetricsCacheKey(userID)).Bytes()

	if err != nil {
		return meal.Metrics{}, false
	}

	var m meal.Metrics

	if json.Unmarshal(raw, &m) != nil {
		return meal.Metrics{}, false
	}

	return m, true
}

func (c *Redis) Set(ctx context.Context, userID string, m meal.Metrics) {
	raw, err := json.Marshal(m)

	if err != nil {
		return
	}

	_ = c.redisdb.Set(ctx, utils.MetricsCacheKey(userID), raw, c.ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context, userID string) {
	_ = c.redisdb.Del(ctx, utils.MetricsCacheKey(userID)).Err()
}
