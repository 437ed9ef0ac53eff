package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/incois/floatchat/internal/core/domain"
)

// SearchUseCase serves direct search requests that bypass intent
// classification. Calls are still budget-checked; each request gets its own
// turn budget.
type SearchUseCase struct {
	executor    *SearchExecutor
	defaultTopK int
}

func NewSearchUseCase(executor *SearchExecutor, defaultTopK int) *SearchUseCase {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &SearchUseCase{executor: executor, defaultTopK: defaultTopK}
}

func (uc *SearchUseCase) HandleSearch(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	query.Text = strings.TrimSpace(query.Text)
	if query.Text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "handle search", fmt.Errorf("query text is required"))
	}
	if query.TopK == 0 {
		query.TopK = uc.defaultTopK
	}
	if query.TopK < 1 || query.TopK > 10 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "handle search", fmt.Errorf("top_k must be between 1 and 10"))
	}
	if query.TimeRange == "" {
		query.TimeRange = domain.TimeRangeAny
	}
	if !query.TimeRange.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "handle search", fmt.Errorf("time_range must be one of any, year, month"))
	}

	turn := &domain.TurnBudget{}
	results, err := uc.executor.Execute(ctx, turn, query)
	if err != nil {
		return nil, err
	}
	return RankByDomain(results), nil
}
