package usecase

import (
	"fmt"
	"strings"

	"github.com/incois/floatchat/internal/core/domain"
)

// estimateTokens uses the rough four-characters-per-token heuristic. It only
// needs to be consistent, not exact: the ceiling it guards is advisory.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(text)/4 + 1
}

func estimateResultTokens(r domain.SearchResult) int {
	return estimateTokens(r.Title) + estimateTokens(r.Snippet) + estimateTokens(r.URL)
}

// dedupeByURL keeps the first occurrence of each URL, preserving order.
func dedupeByURL(results []domain.SearchResult) []domain.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}

// trimCitationsToBudget drops the lowest-ranked citations until the list
// fits tokenBudget. Returns the kept citations and their token cost.
func trimCitationsToBudget(citations []domain.SearchResult, tokenBudget int) ([]domain.SearchResult, int) {
	total := 0
	kept := 0
	for _, c := range citations {
		cost := estimateResultTokens(c)
		if total+cost > tokenBudget {
			break
		}
		total += cost
		kept++
	}
	return citations[:kept], total
}

// truncateAtSentence cuts text to at most maxTokens, never mid-sentence: the
// cut falls at the nearest preceding sentence boundary, or a word boundary
// when the first sentence alone overflows.
func truncateAtSentence(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if estimateTokens(text) <= maxTokens {
		return text
	}
	limit := maxTokens * 4
	if limit > len(text) {
		limit = len(text)
	}
	head := text[:limit]
	if idx := strings.LastIndexAny(head, ".!?"); idx > 0 {
		return strings.TrimSpace(head[:idx+1])
	}
	if idx := strings.LastIndex(head, " "); idx > 0 {
		return strings.TrimSpace(head[:idx])
	}
	return strings.TrimSpace(head)
}

// composeAnswer builds the templated answer text for an intent from the
// ranked, deduplicated citations.
func composeAnswer(intent domain.Intent, queryText string, citations []domain.SearchResult) string {
	if len(citations) == 0 {
		return fallbackAnswer(intent)
	}

	var b strings.Builder
	switch intent {
	case domain.IntentIndianOceanStatus:
		b.WriteString("Current reporting on Argo operations in the Indian Ocean region, including INCOIS coverage of the Arabian Sea and Bay of Bengal:\n\n")
		writeCitationList(&b, citations, 5)
		b.WriteString("\nINCOIS (incois.gov.in) coordinates the Indian Ocean array; figures such as active float counts should be read from the sources above rather than assumed.")
	case domain.IntentDataAccess:
		b.WriteString("Steps to access Argo data:\n\n")
		steps := dataAccessSteps(citations)
		for i, step := range steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		b.WriteString("\nArgo profiles are distributed as NetCDF files through the Global Data Assembly Centers (GDACs).")
	case domain.IntentFloatDiscovery:
		b.WriteString("To locate Argo floats near a position, use the interactive map and search tools from the program's operations centers:\n\n")
		writeCitationList(&b, citations, 5)
		b.WriteString("\nThe OceanOPS board and the Argo float viewer both support coordinate and region search.")
	case domain.IntentProgramOverview:
		b.WriteString("The Argo program operates a global array of autonomous profiling floats that measure temperature, salinity and pressure from the surface down to about 2,000 meters. These sources cover the question:\n\n")
		writeCitationList(&b, citations, 5)
	default:
		b.WriteString("These official sources are the best match for the question:\n\n")
		writeCitationList(&b, citations, 5)
	}
	return strings.TrimSpace(b.String())
}

func writeCitationList(b *strings.Builder, citations []domain.SearchResult, max int) {
	for i, c := range citations {
		if i >= max {
			break
		}
		snippet := strings.TrimSpace(c.Snippet)
		if snippet != "" {
			fmt.Fprintf(b, "- %s (%s): %s\n", c.Title, c.SourceDomain, snippet)
			continue
		}
		fmt.Fprintf(b, "- %s (%s)\n", c.Title, c.SourceDomain)
	}
}

// dataAccessSteps derives a step list from the top GDAC-domain results,
// falling back to generic portal guidance when none are present.
func dataAccessSteps(citations []domain.SearchResult) []string {
	steps := make([]string, 0, 4)
	for _, c := range citations {
		if !isPriorityDomain(c.SourceDomain) {
			continue
		}
		steps = append(steps, fmt.Sprintf("Open %s (%s).", c.Title, c.URL))
		if len(steps) == 3 {
			break
		}
	}
	if len(steps) == 0 {
		steps = append(steps, "Open the Argo data access portal at argo.ucsd.edu.")
	}
	steps = append(steps, "Download the NetCDF profiles you need from the GDAC listing.")
	return steps
}

// fallbackAnswer is the degraded path when no citation survived: point at
// official sources instead of fabricating facts.
func fallbackAnswer(intent domain.Intent) string {
	base := "I could not retrieve fresh search results for this question, so no figures or claims are quoted here."
	switch intent {
	case domain.IntentIndianOceanStatus:
		return base + " For Indian Ocean float status, consult INCOIS directly at incois.gov.in/argo or the OceanOPS board at ocean-ops.org."
	case domain.IntentDataAccess:
		return base + " Argo data is distributed through the GDACs; start at argo.ucsd.edu/data or incois.gov.in for the Indian Ocean mirror."
	case domain.IntentFloatDiscovery:
		return base + " The float locator maps at ocean-ops.org and argo.ucsd.edu support coordinate search."
	default:
		return base + " The official program pages at argo.ucsd.edu and euro-argo.eu are the authoritative starting points."
	}
}
