package usecase

import (
	"context"
	"testing"

	"github.com/incois/floatchat/internal/core/domain"
)

func newSearchUseCase(searcher *searcherFake, gate *gateFake) *SearchUseCase {
	return NewSearchUseCase(NewSearchExecutor(searcher, gate, 0), 5)
}

func TestHandleSearchAppliesDefaults(t *testing.T) {
	searcher := &searcherFake{
		results: [][]domain.SearchResult{
			{
				{Title: "Other", URL: "https://other.com/a", SourceDomain: "other.com", Rank: 1},
				{Title: "INCOIS", URL: "https://incois.gov.in/argo/", SourceDomain: "incois.gov.in", Rank: 2},
			},
		},
	}
	uc := newSearchUseCase(searcher, newGateFake())

	results, err := uc.HandleSearch(context.Background(), domain.SearchQuery{Text: "argo floats"})
	if err != nil {
		t.Fatalf("HandleSearch() error = %v", err)
	}
	sent := searcher.queries[0]
	if sent.TopK != 5 {
		t.Fatalf("expected default top_k 5, got %d", sent.TopK)
	}
	if sent.TimeRange != domain.TimeRangeAny {
		t.Fatalf("expected default time range any, got %s", sent.TimeRange)
	}
	if results[0].SourceDomain != "incois.gov.in" {
		t.Fatalf("expected priority domain ranked first, got %s", results[0].SourceDomain)
	}
}

func TestHandleSearchRejectsInvalidInput(t *testing.T) {
	uc := newSearchUseCase(&searcherFake{}, newGateFake())

	cases := []domain.SearchQuery{
		{Text: "   "},
		{Text: "argo", TopK: 11},
		{Text: "argo", TopK: -1},
		{Text: "argo", TimeRange: "week"},
	}
	for i, query := range cases {
		_, err := uc.HandleSearch(context.Background(), query)
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestHandleSearchSurfacesBudgetRejection(t *testing.T) {
	gate := newGateFake()
	gate.rejectAll = true
	uc := newSearchUseCase(&searcherFake{}, gate)

	_, err := uc.HandleSearch(context.Background(), domain.SearchQuery{Text: "argo"})
	if !domain.IsKind(err, domain.ErrSearchRejected) {
		t.Fatalf("expected ErrSearchRejected, got %v", err)
	}
}
