package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/incois/floatchat/internal/core/domain"
	"github.com/incois/floatchat/internal/core/ports"
)

// perResultTokenEstimate approximates the tokens one citation contributes to
// the response (title, snippet, url).
const perResultTokenEstimate = 60

// SearchExecutor wraps the external search capability behind the budget
// gate. The budget is charged before dispatch, so a failed external call
// still counts; this bounds retry storms. The executor itself never
// retries.
type SearchExecutor struct {
	searcher ports.WebSearcher
	gate     ports.SearchGate
	timeout  time.Duration
}

func NewSearchExecutor(searcher ports.WebSearcher, gate ports.SearchGate, timeout time.Duration) *SearchExecutor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SearchExecutor{searcher: searcher, gate: gate, timeout: timeout}
}

// Execute issues one budget-checked search call. The returned error wraps
// domain.ErrSearchRejected when the gate denies the call before dispatch and
// domain.ErrSearchUnavailable on transport failure or timeout.
func (e *SearchExecutor) Execute(ctx context.Context, turn *domain.TurnBudget, query domain.SearchQuery) ([]domain.SearchResult, error) {
	cost := query.TopK * perResultTokenEstimate
	if cost <= 0 {
		cost = perResultTokenEstimate
	}
	if err := e.gate.Acquire(turn, cost); err != nil {
		slog.Info("search_rejected", "reason", err.Error())
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	results, err := e.searcher.Search(callCtx, query)
	if err != nil {
		if !domain.IsKind(err, domain.ErrSearchUnavailable) {
			err = domain.WrapError(domain.ErrSearchUnavailable, "search", err)
		}
		slog.Warn("search_failed", "error", err, "query_len", len(query.Text))
		return nil, err
	}
	return results, nil
}
