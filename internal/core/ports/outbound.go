package ports

import (
	"context"

	"github.com/incois/floatchat/internal/core/domain"
)

// WebSearcher is the external search capability. Implementations return
// transport-level failures wrapped in domain.ErrSearchUnavailable and never
// consult the call budget themselves.
type WebSearcher interface {
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)
}

// SearchGate enforces the call and token budgets. Acquire checks the
// per-minute, per-turn and token ceilings in that order; on success all
// counters are incremented atomically, on rejection the turn is unchanged
// and the returned error wraps domain.ErrSearchRejected with the specific
// ceiling that tripped.
// ReserveTokens charges answer-synthesis tokens against the turn without
// consuming a search call; the grant is clamped to the remaining ceiling.
type SearchGate interface {
	Acquire(turn *domain.TurnBudget, costTokens int) error
	ReserveTokens(turn *domain.TurnBudget, tokens int) int
	Limits() domain.RateLimits
	Snapshot() domain.RateSnapshot
}
