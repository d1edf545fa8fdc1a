// Package ratelimit provides per-key token bucket rate limiting for the
// MCP tools. Recovery sweeps are CPU-bound, so each tool gets a budget
// sized to how expensive one call is.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned (wrapped) by CheckLimit when a tool is over budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter implements a per-key token bucket rate limiter.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64          // tokens per second
	burst   int              // max burst size, also the initial token count
	nowFunc func() time.Time // injectable clock for testing
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a rate limiter with the given rate (tokens/sec) and burst size.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow reports whether a request for key may proceed, consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	b := l.bucketFor(key, now)
	b.refill(now, l.rate, float64(l.burst))

	if b.tokens < 1.0 {
		return false
	}
	b.tokens--
	return true
}

// bucketFor returns key's bucket, creating a full one on first use.
func (l *Limiter) bucketFor(key string, now time.Time) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
	}
	return b
}

func (b *bucket) refill(now time.Time, rate, capacity float64) {
	elapsed := now.Sub(b.lastCheck).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens = min(b.tokens+rate*elapsed, capacity)
	b.lastCheck = now
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default set of per-tool rate limiters.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"ezdiff_predict": NewLimiter(10.0, 50),     // closed form, effectively free
		"ezdiff_recover": NewLimiter(30.0/60.0, 5), // 1000 trials per call
		"ezdiff_sweep":   NewLimiter(6.0/60.0, 2),  // several recoveries per call
		"ezdiff_history": NewLimiter(1.0, 10),
		"ezdiff_export":  NewLimiter(6.0/60.0, 3),
	}
}

// CheckLimit returns nil if toolName may run now, or an error wrapping
// ErrRateLimited. Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}

	if !limiter.Allow(toolName) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrRateLimited, toolName)
	}

	return nil
}
