package rdx

import (
	"context"
	"fmt"
	"log"
	"time"

	"gadgethub/config"

	"github.com/redis/go-redis/v9"
)

// Connect opens a client and pings it.
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Printf("Connected to Redis at %s", cfg.RedisAddr)
	return conn, nil
}
