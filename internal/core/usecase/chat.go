package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/incois/floatchat/internal/core/domain"
	"github.com/incois/floatchat/internal/core/ports"
)

// ChatUseCase runs the full single-turn pipeline: classify, plan, search
// under budget, compose. Per-query failures degrade the response; they never
// surface as errors to the transport layer.
type ChatUseCase struct {
	classifier *Classifier
	planner    *Planner
	executor   *SearchExecutor
	gate       ports.SearchGate
}

func NewChatUseCase(classifier *Classifier, planner *Planner, executor *SearchExecutor, gate ports.SearchGate) *ChatUseCase {
	return &ChatUseCase{
		classifier: classifier,
		planner:    planner,
		executor:   executor,
		gate:       gate,
	}
}

func (uc *ChatUseCase) HandleQuery(ctx context.Context, queryText, sessionID string) (*domain.Response, error) {
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	// Fresh per-turn counters; only the minute window is shared between
	// concurrent turns.
	turn := &domain.TurnBudget{}
	limits := uc.gate.Limits()

	intent, confidence := uc.classifier.Classify(queryText)
	plan := uc.planner.Plan(intent, queryText, limits.PerTurnSearchCalls)

	merged := make([]domain.SearchResult, 0, 16)
	attempts := 0
	failures := 0
	retried := false

	for _, query := range plan {
		results, err := uc.executor.Execute(ctx, turn, query)
		attempts++
		if err == nil {
			merged = append(merged, results...)
			continue
		}
		failures++

		if domain.IsKind(err, domain.ErrSearchRejected) {
			// Budget gone for this turn; later queries would fail the same way.
			break
		}
		if domain.IsKind(err, domain.ErrSearchUnavailable) && !retried {
			retried = true
			results, retryErr := uc.executor.Execute(ctx, turn, narrowedQuery(query))
			attempts++
			if retryErr == nil {
				merged = append(merged, results...)
				continue
			}
			failures++
		}
	}

	citations := RankByDomain(dedupeByURL(merged))

	// Reserve roughly a quarter of the token ceiling for the answer text;
	// citations get the rest, lowest-ranked dropped first.
	answerBudget := limits.PerResponseTokens / 4
	citations, citationTokens := trimCitationsToBudget(citations, limits.PerResponseTokens-answerBudget)

	answer := composeAnswer(intent, queryText, citations)
	answer = truncateAtSentence(answer, answerBudget)
	uc.gate.ReserveTokens(turn, estimateTokens(answer))

	degraded := len(citations) == 0

	response := &domain.Response{
		AnswerText:      answer,
		Citations:       citations,
		Intent:          intent,
		SearchCallsUsed: attempts,
		TokensUsed:      citationTokens + estimateTokens(answer),
		SessionID:       sessionID,
		Degraded:        degraded,
		Timestamp:       time.Now().UTC(),
	}

	slog.Info("chat_turn",
		"intent", intent,
		"confidence", confidence,
		"planned_queries", len(plan),
		"search_calls", attempts,
		"failed_calls", failures,
		"citations", len(citations),
		"tokens_used", response.TokensUsed,
		"degraded", degraded,
	)
	return response, nil
}

// narrowedQuery is the single permitted retry shape: top priority domain
// only, fewer results.
func narrowedQuery(query domain.SearchQuery) domain.SearchQuery {
	narrowed := query
	narrowed.SiteFilters = []string{priorityDomains[0]}
	if narrowed.TopK > 3 || narrowed.TopK <= 0 {
		narrowed.TopK = 3
	}
	return narrowed
}
