package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"geodata-api/internal/logger"
	"geodata-api/internal/metrics"
)

// 文档注释：令牌桶限流（每秒）
// 背景：按自然秒重置令牌，超出即丢弃并返回 429；不做排队。
// 约束：全局共享一个桶，不区分来源。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(qps int) *TokenBucket {
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Limit：使用给定令牌桶包装 next
func Limit(tb *TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			metrics.RateLimitedTotal.Inc()
			w.Header().Set("retry-after", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Wrap：RATE_LIMIT_ENABLED=true 时按 RATE_LIMIT_QPS（默认 200）限流，否则原样返回
func Wrap(next http.Handler) http.Handler {
	if os.Getenv("RATE_LIMIT_ENABLED") != "true" {
		return next
	}
	qps := 200
	if n, e := strconv.Atoi(os.Getenv("RATE_LIMIT_QPS")); e == nil && n > 0 {
		qps = n
	}
	logger.L().Info("rate_limit_enabled", "qps", qps)
	return Limit(NewTokenBucket(qps), next)
}
