package redis

import (
	"strconv"

	"beacon_chat_server/internal/config"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

var cacheService AsyncCacheService

// Init connects to Redis using the loaded config and starts the cache
// worker pool.
func Init() {
	conf := config.GetConfig()
	addr := conf.RedisConfig.Host + ":" + strconv.Itoa(conf.RedisConfig.Port)

	redisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.RedisConfig.Password,
		DB:       conf.RedisConfig.Db,
		// MinIdleConns matches the worker count so async tasks never
		// wait for a fresh connection.
		PoolSize:     50,
		MinIdleConns: 15,
	})

	cacheService = NewRedisCache(redisClient, 15, 3000)
}

// GetCacheService returns the shared cache instance for injection into
// the service layer.
func GetCacheService() AsyncCacheService {
	return cacheService
}
