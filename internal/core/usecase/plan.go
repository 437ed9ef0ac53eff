package usecase

import (
	"strings"

	"github.com/incois/floatchat/internal/core/domain"
)

// enhancedQueryTerms are appended to the user text to bias the web search
// toward the vocabulary of each intent.
var enhancedQueryTerms = map[domain.Intent]string{
	domain.IntentProgramOverview:   "Argo program overview variables measured temperature salinity pressure ocean profiling floats",
	domain.IntentIndianOceanStatus: "Indian Ocean Argo floats status active INCOIS Arabian Sea Bay of Bengal distribution",
	domain.IntentDataAccess:        "Argo data download access GDAC global data assembly center netCDF instructions",
	domain.IntentFloatDiscovery:    "Argo float interactive map finder location coordinates nearest search tools",
}

// Planner turns a classified query into 1 to 3 prioritized search queries.
type Planner struct {
	defaultTopK int
}

func NewPlanner(defaultTopK int) *Planner {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Planner{defaultTopK: defaultTopK}
}

// Plan never emits more queries than remainingCalls allows; queries beyond
// the budget are dropped, not deferred. An empty plan is returned only for
// an Unclassified intent with no text to fall back on.
func (p *Planner) Plan(intent domain.Intent, queryText string, remainingCalls int) []domain.SearchQuery {
	text := strings.TrimSpace(queryText)
	if remainingCalls <= 0 {
		return nil
	}

	if intent == domain.IntentUnclassified {
		if text == "" {
			return nil
		}
		// Route unclassified questions through a generic overview search
		// instead of failing the turn.
		intent = domain.IntentProgramOverview
	}

	primary := domain.SearchQuery{
		Text:        joinQueryText(text, enhancedQueryTerms[intent]),
		SiteFilters: PriorityDomains(),
		TimeRange:   timeRangeFor(intent),
		TopK:        p.defaultTopK,
	}

	plan := []domain.SearchQuery{primary}
	if secondary, ok := p.secondaryQuery(intent, text); ok {
		plan = append(plan, secondary)
	}

	if len(plan) > remainingCalls {
		plan = plan[:remainingCalls]
	}
	return plan
}

// secondaryQuery narrows on the domains most likely to hold authoritative
// pages for the intent.
func (p *Planner) secondaryQuery(intent domain.Intent, text string) (domain.SearchQuery, bool) {
	topK := p.defaultTopK
	if topK > 3 {
		topK = 3
	}
	switch intent {
	case domain.IntentDataAccess:
		return domain.SearchQuery{
			Text:        joinQueryText(text, "GDAC data download instructions"),
			SiteFilters: []string{"argo.ucsd.edu", "incois.gov.in"},
			TimeRange:   domain.TimeRangeAny,
			TopK:        topK,
		}, true
	case domain.IntentIndianOceanStatus:
		return domain.SearchQuery{
			Text:        joinQueryText(text, "INCOIS Argo Indian Ocean operations"),
			SiteFilters: []string{"incois.gov.in"},
			TimeRange:   domain.TimeRangeYear,
			TopK:        topK,
		}, true
	case domain.IntentFloatDiscovery:
		return domain.SearchQuery{
			Text:        joinQueryText(text, "float map locator"),
			SiteFilters: []string{"ocean-ops.org", "argo.ucsd.edu"},
			TimeRange:   domain.TimeRangeAny,
			TopK:        topK,
		}, true
	}
	return domain.SearchQuery{}, false
}

func timeRangeFor(intent domain.Intent) domain.TimeRange {
	switch intent {
	case domain.IntentIndianOceanStatus, domain.IntentFloatDiscovery:
		return domain.TimeRangeYear
	default:
		return domain.TimeRangeAny
	}
}

func joinQueryText(userText, enhancement string) string {
	if userText == "" {
		return enhancement
	}
	if enhancement == "" {
		return userText
	}
	return userText + " " + enhancement
}
