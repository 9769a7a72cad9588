package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter: ventana fija in-process, para dev o cuando no hay Redis.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string]int64
	starts map[string]time.Time
	Max    int64
	Window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   make(map[string]int64),
		starts: make(map[string]time.Time),
		Max:    int64(max),
		Window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	start, ok := l.starts[key]
	if !ok || now.Sub(start) >= l.Window {
		l.starts[key] = now.Truncate(l.Window)
		l.hits[key] = 0
		start = l.starts[key]
	}
	l.hits[key]++
	hits := l.hits[key]

	allowed := hits <= l.Max
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{Allowed: allowed, Remaining: remaining, CurrentHits: hits}
	if !allowed {
		res.RetryAfter = start.Add(l.Window).Sub(now)
	}
	return res, nil
}

// Noop permite deshabilitar el rate limiting sin ifs en los middlewares.
type Noop struct{}

func (Noop) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true}, nil
}
