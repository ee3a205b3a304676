package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

// RateLimiter token bucket на каждого пациента
// Ключ берётся из контекста (после Auth), без него используется RemoteAddr
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter создает ограничитель; rps <= 0 отключает ограничение
func NewRateLimiter(rps float64, burst int, idleTTL time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 15 * time.Minute
	}
	return &RateLimiter{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Allow расходует токен для ключа
func (l *RateLimiter) Allow(key string) bool {
	if l.rps <= 0 {
		return true
	}
	return l.get(key).AllowN(l.now(), 1)
}

// Cleanup удаляет давно не использованные ключи, возвращает число удалённых
func (l *RateLimiter) Cleanup() int {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, entry := range l.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Middleware отклоняет запросы сверх лимита с 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := GetUserID(r.Context())
		if !ok {
			key = r.RemoteAddr
		}

		if !l.Allow(key) {
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
			handlers.RespondError(w, http.StatusTooManyRequests, "слишком много запросов, повторите позже")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.entries[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(l.rps, l.burst)
	l.entries[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

func (l *RateLimiter) retryAfterSeconds() int {
	seconds := int(1 / float64(l.rps))
	if seconds < 1 {
		return 1
	}
	return seconds
}
