package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// SetupRedis connects the event fan-out client. Redis is optional: when
// REDIS_URL is unset the server runs with websocket broadcast only.
func SetupRedis() *redis.Client {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		log.Println("[INFO] REDIS_URL not set, event mirroring to redis disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("[FATAL] Invalid REDIS_URL: %v", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("[FATAL] Failed to connect to redis: %v", err)
	}

	Redis = client
	log.Println("✅ Redis connected")
	return client
}
