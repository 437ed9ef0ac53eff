package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/incois/floatchat/internal/core/domain"
	"github.com/incois/floatchat/internal/core/ports"
	"github.com/incois/floatchat/internal/observability/metrics"
)

// safetyGuidelines accompany the rate limits in the introspection endpoint so
// clients embedding the assistant surface the same sourcing rules.
var safetyGuidelines = []string{
	"Never invent numbers or facts. If unknown, say so and offer links.",
	"Every factual claim must be attributable to at least one web search result from this turn.",
	"Prefer official program pages, data portals, or peer-reviewed sources.",
	"If sources disagree, state it briefly and present both links.",
}

type TrafficConfig struct {
	RateLimitRPS        float64
	RateLimitBurst      int
	MaxInFlight         int
	BackpressureMaxWait time.Duration
}

type Router struct {
	chatUC   ports.ChatService
	searchUC ports.SearchService
	catalog  ports.IntentCatalog
	budget   ports.BudgetReader
	metrics  *metrics.HTTPServerMetrics
	service  string
	traffic  TrafficConfig
}

func NewRouter(
	chatUC ports.ChatService,
	searchUC ports.SearchService,
	catalog ports.IntentCatalog,
	budget ports.BudgetReader,
	serverMetrics *metrics.HTTPServerMetrics,
	service string,
	traffic TrafficConfig,
) *Router {
	return &Router{
		chatUC:   chatUC,
		searchUC: searchUC,
		catalog:  catalog,
		budget:   budget,
		metrics:  serverMetrics,
		service:  service,
		traffic:  traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.chat)
	mux.HandleFunc("/v1/search", rt.search)
	mux.HandleFunc("/v1/intents", rt.intents)
	mux.HandleFunc("/v1/rate_limits", rt.rateLimits)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.traffic.MaxInFlight, rt.traffic.BackpressureMaxWait)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Query     string `json:"query"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	// Chat never fails outward: an empty or unanswerable query still yields
	// a degraded response pointing at the official sources.
	resp, err := rt.chatUC.HandleQuery(r.Context(), req.Query, req.SessionID)
	if err != nil {
		writeJSONError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordChatTurn(rt.service, string(resp.Intent), len(resp.Citations), resp.TokensUsed, resp.SearchCallsUsed, resp.Degraded)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Query      string   `json:"query"`
		SiteFilter []string `json:"site_filter"`
		TimeRange  string   `json:"time_range"`
		TopK       int      `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	results, err := rt.searchUC.HandleSearch(r.Context(), domain.SearchQuery{
		Text:        req.Query,
		SiteFilters: req.SiteFilter,
		TimeRange:   domain.TimeRange(req.TimeRange),
		TopK:        req.TopK,
	})
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if rt.metrics != nil {
			rt.metrics.RecordSearchOutcome(rt.service, "error")
		}
		if status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", strconv.Itoa(60))
			if rt.metrics != nil {
				rt.metrics.RecordBudgetRejection(rt.service, "/v1/search")
			}
		}
		writeJSONError(w, status, err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordSearchOutcome(rt.service, "ok")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   strings.TrimSpace(req.Query),
		"results": results,
		"count":   len(results),
	})
}

func (rt *Router) intents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"intents": rt.catalog.ListIntents(),
	})
}

func (rt *Router) rateLimits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rate_limits": rt.budget.Limits(),
		"usage":       rt.budget.Snapshot(),
		"guidelines":  safetyGuidelines,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
