package ports

import (
	"context"

	"github.com/incois/floatchat/internal/core/domain"
)

// ChatService is the inbound contract for the classify-and-answer pipeline.
// Per-query failures are absorbed into a degraded Response; an error is
// returned only for invalid input.
type ChatService interface {
	HandleQuery(ctx context.Context, queryText, sessionID string) (*domain.Response, error)
}

// SearchService is the inbound contract for direct, budget-checked search
// that bypasses intent classification.
type SearchService interface {
	HandleSearch(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)
}

// IntentCatalog exposes the supported intents for documentation and UI.
type IntentCatalog interface {
	ListIntents() []domain.IntentInfo
}

// BudgetReader exposes a read-only view of the rate limits and counters.
type BudgetReader interface {
	Limits() domain.RateLimits
	Snapshot() domain.RateSnapshot
}
