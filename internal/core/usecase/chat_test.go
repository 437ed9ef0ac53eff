package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/incois/floatchat/internal/core/domain"
)

type searcherFake struct {
	queries []domain.SearchQuery
	results [][]domain.SearchResult
	errs    []error
	calls   int
}

func (f *searcherFake) Search(_ context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	f.queries = append(f.queries, query)
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx < len(f.results) {
		return f.results[idx], nil
	}
	return nil, nil
}

type gateFake struct {
	limits      domain.RateLimits
	minuteCalls int
	rejectAll   bool
}

func newGateFake() *gateFake {
	return &gateFake{limits: domain.DefaultRateLimits()}
}

func (f *gateFake) Acquire(turn *domain.TurnBudget, costTokens int) error {
	if f.rejectAll || f.minuteCalls >= f.limits.PerMinuteSearchCalls {
		return domain.WrapError(domain.ErrSearchRejected, "acquire", fmt.Errorf("per-minute search call budget exhausted"))
	}
	if turn.SearchCalls >= f.limits.PerTurnSearchCalls {
		return domain.WrapError(domain.ErrSearchRejected, "acquire", fmt.Errorf("per-turn search call budget exhausted"))
	}
	if turn.Tokens+costTokens > f.limits.PerResponseTokens {
		return domain.WrapError(domain.ErrSearchRejected, "acquire", fmt.Errorf("per-response token budget exhausted"))
	}
	f.minuteCalls++
	turn.SearchCalls++
	turn.Tokens += costTokens
	return nil
}

func (f *gateFake) ReserveTokens(turn *domain.TurnBudget, tokens int) int {
	remaining := f.limits.PerResponseTokens - turn.Tokens
	if remaining <= 0 || tokens <= 0 {
		return 0
	}
	if tokens > remaining {
		tokens = remaining
	}
	turn.Tokens += tokens
	return tokens
}

func (f *gateFake) Limits() domain.RateLimits { return f.limits }
func (f *gateFake) Snapshot() domain.RateSnapshot {
	return domain.RateSnapshot{CallsThisMinute: f.minuteCalls}
}

func newChatUseCase(searcher *searcherFake, gate *gateFake) *ChatUseCase {
	executor := NewSearchExecutor(searcher, gate, 0)
	return NewChatUseCase(NewClassifier(), NewPlanner(5), executor, gate)
}

func TestHandleQueryDataAccessScenario(t *testing.T) {
	searcher := &searcherFake{
		results: [][]domain.SearchResult{
			{
				{Title: "Argo Data Access", URL: "https://argo.ucsd.edu/data/", Snippet: "GDAC portals", SourceDomain: "argo.ucsd.edu", Rank: 1},
				{Title: "Random blog", URL: "https://example.com/argo", Snippet: "notes", SourceDomain: "example.com", Rank: 2},
			},
			{
				{Title: "INCOIS Argo", URL: "https://incois.gov.in/argo/", Snippet: "Indian GDAC mirror", SourceDomain: "incois.gov.in", Rank: 1},
			},
		},
	}
	uc := newChatUseCase(searcher, newGateFake())

	resp, err := uc.HandleQuery(context.Background(), "How to download Argo data?", "")
	if err != nil {
		t.Fatalf("HandleQuery() error = %v", err)
	}
	if resp.Intent != domain.IntentDataAccess {
		t.Fatalf("expected data_access intent, got %s", resp.Intent)
	}
	if resp.SearchCallsUsed != 2 {
		t.Fatalf("expected 2 search calls, got %d", resp.SearchCallsUsed)
	}

	foundGDAC := false
	for _, c := range resp.Citations {
		if c.SourceDomain == "argo.ucsd.edu" || c.SourceDomain == "incois.gov.in" {
			foundGDAC = true
		}
	}
	if !foundGDAC {
		t.Fatalf("expected a GDAC-domain citation, got %+v", resp.Citations)
	}
	if !strings.Contains(resp.AnswerText, "1.") || !strings.Contains(resp.AnswerText, "Steps") {
		t.Fatalf("expected step-oriented phrasing, got %q", resp.AnswerText)
	}
	if resp.TokensUsed > 1800 {
		t.Fatalf("tokens_used exceeds ceiling: %d", resp.TokensUsed)
	}
	if resp.SessionID == "" {
		t.Fatalf("expected generated session id")
	}
	if resp.Degraded {
		t.Fatalf("response with citations must not be degraded")
	}
	// Priority domains sort before the rest.
	if resp.Citations[0].SourceDomain == "example.com" {
		t.Fatalf("non-priority domain ranked first: %+v", resp.Citations)
	}
}

func TestHandleQueryEmptyTextStillAnswers(t *testing.T) {
	searcher := &searcherFake{}
	uc := newChatUseCase(searcher, newGateFake())

	resp, err := uc.HandleQuery(context.Background(), "   ", "session-1")
	if err != nil {
		t.Fatalf("HandleQuery() error = %v", err)
	}
	if resp.Intent != domain.IntentUnclassified {
		t.Fatalf("expected unclassified intent, got %s", resp.Intent)
	}
	if resp.SearchCallsUsed != 0 {
		t.Fatalf("expected no search calls for empty plan, got %d", resp.SearchCallsUsed)
	}
	if resp.AnswerText == "" {
		t.Fatalf("expected fallback answer text")
	}
	if !resp.Degraded {
		t.Fatalf("expected degraded response with no citations")
	}
	if resp.SessionID != "session-1" {
		t.Fatalf("expected caller session id preserved, got %s", resp.SessionID)
	}
	if searcher.calls != 0 {
		t.Fatalf("search must not be dispatched for an empty plan")
	}
}

func TestHandleQueryDeduplicatesByURL(t *testing.T) {
	dupURL := "https://argo.ucsd.edu/about/"
	searcher := &searcherFake{
		results: [][]domain.SearchResult{
			{{Title: "About Argo", URL: dupURL, Snippet: "first snippet", SourceDomain: "argo.ucsd.edu", Rank: 1}},
			{{Title: "About Argo", URL: dupURL, Snippet: "second snippet", SourceDomain: "argo.ucsd.edu", Rank: 1}},
		},
	}
	uc := newChatUseCase(searcher, newGateFake())

	resp, err := uc.HandleQuery(context.Background(), "Status of Argo floats in Indian Ocean", "")
	if err != nil {
		t.Fatalf("HandleQuery() error = %v", err)
	}
	count := 0
	for _, c := range resp.Citations {
		if c.URL == dupURL {
			count++
			if c.Snippet != "first snippet" {
				t.Fatalf("expected first occurrence kept, got %q", c.Snippet)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected one citation for duplicate url, got %d", count)
	}
}

func TestHandleQueryAllRejectedDegrades(t *testing.T) {
	gate := newGateFake()
	gate.rejectAll = true
	searcher := &searcherFake{}
	uc := newChatUseCase(searcher, gate)

	resp, err := uc.HandleQuery(context.Background(), "How to download Argo data?", "")
	if err != nil {
		t.Fatalf("HandleQuery() must not fail the turn, got %v", err)
	}
	if len(resp.Citations) != 0 {
		t.Fatalf("expected no citations, got %d", len(resp.Citations))
	}
	if !resp.Degraded {
		t.Fatalf("expected degraded response")
	}
	if resp.SearchCallsUsed != 1 {
		t.Fatalf("expected one rejected attempt recorded, got %d", resp.SearchCallsUsed)
	}
	if !strings.Contains(resp.AnswerText, "argo.ucsd.edu") {
		t.Fatalf("fallback must direct to official sources, got %q", resp.AnswerText)
	}
	if searcher.calls != 0 {
		t.Fatalf("rejected calls must not reach the searcher")
	}
}

func TestHandleQueryRetriesOnceNarrowedOnUnavailable(t *testing.T) {
	unavailable := domain.WrapError(domain.ErrSearchUnavailable, "search", fmt.Errorf("connection refused"))
	searcher := &searcherFake{
		errs: []error{unavailable, nil},
		results: [][]domain.SearchResult{
			nil,
			{{Title: "INCOIS Argo", URL: "https://incois.gov.in/argo/", Snippet: "status", SourceDomain: "incois.gov.in", Rank: 1}},
		},
	}
	uc := newChatUseCase(searcher, newGateFake())

	resp, err := uc.HandleQuery(context.Background(), "what is argo", "")
	if err != nil {
		t.Fatalf("HandleQuery() error = %v", err)
	}
	if searcher.calls != 2 {
		t.Fatalf("expected original call plus one retry, got %d", searcher.calls)
	}
	retry := searcher.queries[1]
	if len(retry.SiteFilters) != 1 || retry.SiteFilters[0] != "incois.gov.in" {
		t.Fatalf("retry must narrow to the top priority domain, got %v", retry.SiteFilters)
	}
	if retry.TopK != 3 {
		t.Fatalf("retry must reduce top_k, got %d", retry.TopK)
	}
	if len(resp.Citations) != 1 {
		t.Fatalf("expected retry results in citations, got %d", len(resp.Citations))
	}
	if resp.SearchCallsUsed != 2 {
		t.Fatalf("expected both attempts counted, got %d", resp.SearchCallsUsed)
	}
}

func TestHandleQueryTrimsCitationsToTokenBudget(t *testing.T) {
	long := strings.Repeat("ocean observation data ", 200)
	var bulk []domain.SearchResult
	for i := 0; i < 10; i++ {
		bulk = append(bulk, domain.SearchResult{
			Title:        fmt.Sprintf("Result %d", i),
			URL:          fmt.Sprintf("https://example.com/%d", i),
			Snippet:      long,
			SourceDomain: "example.com",
			Rank:         i + 1,
		})
	}
	searcher := &searcherFake{results: [][]domain.SearchResult{bulk, bulk}}
	uc := newChatUseCase(searcher, newGateFake())

	resp, err := uc.HandleQuery(context.Background(), "what is argo", "")
	if err != nil {
		t.Fatalf("HandleQuery() error = %v", err)
	}
	if resp.TokensUsed > 1800 {
		t.Fatalf("tokens_used exceeds ceiling: %d", resp.TokensUsed)
	}
	if len(resp.Citations) >= 10 {
		t.Fatalf("expected lowest-ranked citations dropped, kept %d", len(resp.Citations))
	}
}
