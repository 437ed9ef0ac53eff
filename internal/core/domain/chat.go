package domain

import "time"

// Intent is the closed set of informational goals a query can express.
type Intent string

const (
	IntentProgramOverview   Intent = "program_overview"
	IntentIndianOceanStatus Intent = "indian_ocean_status"
	IntentDataAccess        Intent = "data_access"
	IntentFloatDiscovery    Intent = "float_discovery"
	IntentUnclassified      Intent = "unclassified"
)

// TimeRange restricts search results by page age.
type TimeRange string

const (
	TimeRangeAny   TimeRange = "any"
	TimeRangeYear  TimeRange = "year"
	TimeRangeMonth TimeRange = "month"
)

func (r TimeRange) Valid() bool {
	switch r {
	case TimeRangeAny, TimeRangeYear, TimeRangeMonth:
		return true
	}
	return false
}

// SearchQuery is one planned web search. Built once, never mutated.
type SearchQuery struct {
	Text        string    `json:"text"`
	SiteFilters []string  `json:"site_filters,omitempty"`
	TimeRange   TimeRange `json:"time_range"`
	TopK        int       `json:"top_k"`
}

// SearchResult is a single hit returned by the external search capability.
type SearchResult struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Snippet      string `json:"snippet"`
	SourceDomain string `json:"source_domain"`
	Rank         int    `json:"rank"`
}

// Response is the single-turn answer returned to the caller. Citations are
// ordered and deduplicated by URL.
type Response struct {
	AnswerText      string         `json:"answer_text"`
	Citations       []SearchResult `json:"citations"`
	Intent          Intent         `json:"intent"`
	SearchCallsUsed int            `json:"search_calls_used"`
	TokensUsed      int            `json:"tokens_used"`
	SessionID       string         `json:"session_id,omitempty"`
	Degraded        bool           `json:"degraded"`
	Timestamp       time.Time      `json:"timestamp"`
}

// IntentInfo describes one supported intent for introspection endpoints.
type IntentInfo struct {
	Intent          Intent   `json:"intent"`
	Description     string   `json:"description"`
	ExampleTriggers []string `json:"example_triggers"`
}
