// Package ratelimit ограничивает частоту запросов к публичным эндпоинтам
// (регистрация, проверка статуса по телефону) счётчиком фиксированного окна в Redis.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"waitlist/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// Limiter - счётчик запросов на ключ в пределах окна.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
	log    *slog.Logger
}

// New создаёт ограничитель. При rdb == nil ограничение выключено.
func New(rdb *redis.Client, limit int, window time.Duration, prefix string, log *slog.Logger) *Limiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Limiter{rdb: rdb, limit: limit, window: window, prefix: prefix, log: log}
}

// Enabled - подключён ли Redis.
func (l *Limiter) Enabled() bool { return l != nil && l.rdb != nil }

var windowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return { count, redis.call('PTTL', KEYS[1]) }
`)

// Allow увеличивает счётчик ключа и сообщает, укладывается ли запрос в лимит.
func (l *Limiter) Allow(ctx context.Context, key string) (allowed bool, remaining int, retryAfter time.Duration, err error) {
	vals, err := windowScript.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return true, 0, 0, err
	}
	if len(vals) != 2 {
		return true, 0, 0, fmt.Errorf("ratelimit: неожиданный ответ скрипта %v", vals)
	}

	count, ttlMs := int(vals[0]), vals[1]
	remaining = l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	if count > l.limit {
		return false, 0, time.Duration(ttlMs) * time.Millisecond, nil
	}
	return true, remaining, 0, nil
}

// Key строит ключ счётчика по IP клиента и маршруту.
func (l *Limiter) Key(ip, route string) string {
	if ip == "" {
		ip = "unknown"
	}
	return strings.Join([]string{l.prefix, "ip", ip, "route", route}, ":")
}

// Middleware отклоняет запросы сверх лимита с 429. Ошибки Redis не блокируют запрос.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Enabled() {
			c.Next()
			return
		}

		key := l.Key(c.ClientIP(), c.Request.Method+" "+c.FullPath())
		allowed, remaining, retryAfter, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			l.log.Warn("ratelimit: ошибка redis", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			secs := int((retryAfter + time.Second - 1) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse{
				Code:  "TOO_MANY_REQUESTS",
				Error: "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
