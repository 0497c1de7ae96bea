package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vortechdev/enilai-gateway/pkg/config"
)

// pingTimeout bounds the startup health check; the gateway falls back to
// in-memory sessions when Redis does not answer within it.
const pingTimeout = 5 * time.Second

// NewRedis dials the Redis instance holding sessions and dashboard
// payloads, failing fast when it is unreachable.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
