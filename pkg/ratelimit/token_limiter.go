package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a tokens-per-minute budget for LLM calls. The budget
// resets on a fixed one-minute window.
type TokenLimiter struct {
	mu        sync.Mutex
	maxTokens int
	used      int
	windowEnd time.Time
}

// NewTokenLimiter creates a limiter allowing maxTokensPerMinute tokens per
// minute. A non-positive limit disables limiting.
func NewTokenLimiter(maxTokensPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxTokens: maxTokensPerMinute,
		windowEnd: time.Now().Add(time.Minute),
	}
}

// Wait blocks until the given token count fits in the current window, then
// consumes it. Requests larger than the whole budget are admitted alone.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	if l.maxTokens <= 0 {
		return nil
	}
	for {
		l.mu.Lock()
		now := time.Now()
		if now.After(l.windowEnd) {
			l.used = 0
			l.windowEnd = now.Add(time.Minute)
		}
		if l.used+tokens <= l.maxTokens || l.used == 0 {
			l.used += tokens
			l.mu.Unlock()
			return nil
		}
		wait := time.Until(l.windowEnd)
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// GetRemaining reports how many tokens are left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.maxTokens <= 0 {
		return 0
	}
	if time.Now().After(l.windowEnd) {
		return l.maxTokens
	}
	return l.maxTokens - l.used
}
