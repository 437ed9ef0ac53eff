package domain

// RateLimits are the advisory call and token ceilings. They are process-wide
// policy, not durable guarantees: counters live in memory only.
type RateLimits struct {
	PerMinuteSearchCalls int `json:"per_minute_search_calls"`
	PerTurnSearchCalls   int `json:"per_turn_max_search_calls"`
	PerResponseTokens    int `json:"per_turn_max_tokens"`
}

func DefaultRateLimits() RateLimits {
	return RateLimits{
		PerMinuteSearchCalls: 5,
		PerTurnSearchCalls:   3,
		PerResponseTokens:    1800,
	}
}

// RateSnapshot is a read-only view of the current counters.
type RateSnapshot struct {
	CallsThisMinute    int `json:"calls_this_minute"`
	CallsThisTurn      int `json:"calls_this_turn"`
	TokensThisResponse int `json:"tokens_this_response"`
}

// TurnBudget holds the counters scoped to a single query turn. A fresh value
// is created at the start of each turn and passed down the call chain; it is
// never shared between concurrent turns.
type TurnBudget struct {
	SearchCalls int
	Tokens      int
}
