package utils

import (
	"geodata-api/internal/logger"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// OpenRedisFromEnv：从 REDIS_HOST/REDIS_PORT/REDIS_PASS/REDIS_DB 打开客户端
// 约束：未配置 REDIS_HOST 时返回 nil，调用方据此关闭依赖 Redis 的功能；REDIS_DB 解析失败回退到 0
func OpenRedisFromEnv() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	addr := host + ":" + envOr("REDIS_PORT", "6379")
	db := 0
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil && n >= 0 {
		db = n
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
