package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/incois/floatchat/internal/core/domain"
)

// Rejection reasons, one per ceiling. All wrap domain.ErrSearchRejected so
// callers can degrade without inspecting the specific limit.
var (
	ErrMinuteBudget = domain.WrapError(domain.ErrSearchRejected, "acquire", fmt.Errorf("per-minute search call budget exhausted"))
	ErrTurnBudget   = domain.WrapError(domain.ErrSearchRejected, "acquire", fmt.Errorf("per-turn search call budget exhausted"))
	ErrTokenBudget  = domain.WrapError(domain.ErrSearchRejected, "acquire", fmt.Errorf("per-response token budget exhausted"))
)

// Limiter owns the process-wide per-minute window. Per-turn state lives in a
// domain.TurnBudget value created per request, so concurrent turns only
// contend on the minute window.
type Limiter struct {
	limits domain.RateLimits

	mu     sync.Mutex
	window []time.Time

	now func() time.Time
}

func NewLimiter(limits domain.RateLimits) *Limiter {
	def := domain.DefaultRateLimits()
	if limits.PerMinuteSearchCalls <= 0 {
		limits.PerMinuteSearchCalls = def.PerMinuteSearchCalls
	}
	if limits.PerTurnSearchCalls <= 0 {
		limits.PerTurnSearchCalls = def.PerTurnSearchCalls
	}
	if limits.PerResponseTokens <= 0 {
		limits.PerResponseTokens = def.PerResponseTokens
	}
	return &Limiter{
		limits: limits,
		window: make([]time.Time, 0, limits.PerMinuteSearchCalls),
		now:    time.Now,
	}
}

// Acquire grants one search call worth costTokens, or rejects it leaving
// every counter unchanged. The three ceilings are checked in order: minute,
// turn, tokens.
func (l *Limiter) Acquire(turn *domain.TurnBudget, costTokens int) error {
	if turn == nil {
		turn = &domain.TurnBudget{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictLocked(now)

	if len(l.window) >= l.limits.PerMinuteSearchCalls {
		return ErrMinuteBudget
	}
	if turn.SearchCalls >= l.limits.PerTurnSearchCalls {
		return ErrTurnBudget
	}
	if turn.Tokens+costTokens > l.limits.PerResponseTokens {
		return ErrTokenBudget
	}

	l.window = append(l.window, now)
	turn.SearchCalls++
	turn.Tokens += costTokens
	return nil
}

// ReserveTokens charges answer-synthesis tokens against the turn without
// consuming a search call. Returns the number of tokens actually granted,
// which may be less than requested when the ceiling is near.
func (l *Limiter) ReserveTokens(turn *domain.TurnBudget, tokens int) int {
	if turn == nil || tokens <= 0 {
		return 0
	}
	remaining := l.limits.PerResponseTokens - turn.Tokens
	if remaining <= 0 {
		return 0
	}
	if tokens > remaining {
		tokens = remaining
	}
	turn.Tokens += tokens
	return tokens
}

func (l *Limiter) Limits() domain.RateLimits {
	return l.limits
}

// Snapshot reports the live minute window. Turn-scoped counters are zero
// here: they belong to individual requests, not the process.
func (l *Limiter) Snapshot() domain.RateSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evictLocked(l.now())
	return domain.RateSnapshot{CallsThisMinute: len(l.window)}
}

func (l *Limiter) evictLocked(now time.Time) {
	cutoff := now.Add(-time.Minute)
	kept := l.window[:0]
	for _, ts := range l.window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.window = kept
}
