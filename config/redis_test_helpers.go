package config

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// SetRedisClientForTest swaps the shared client, usually for a redismock
// client, so the session store and rate limiter talk to it.
func SetRedisClientForTest(client *redis.Client) {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = client
	// Mark the singleton as initialized so ConnectRedis keeps the injected client.
	redisOnce = sync.Once{}
	redisOnce.Do(func() {})
}

// ResetRedisClientForTest clears the client and lets ConnectRedis dial again.
func ResetRedisClientForTest() {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = nil
	redisOnce = sync.Once{}
}
