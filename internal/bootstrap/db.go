package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Bid2Bid/bid2bid-backend/config"
	"github.com/Bid2Bid/bid2bid-backend/internal/storage/postgres"
)

// OpenDB connects to Postgres using the storage package's DSN and pool
// settings.
func OpenDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return db, nil
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
