package usecase

import (
	"strings"

	"github.com/incois/floatchat/internal/core/domain"
)

// priorityDomains are treated as authoritative, highest priority first. They
// bias both query construction and result ordering.
var priorityDomains = []string{
	"incois.gov.in",
	"argo.ucsd.edu",
	"euro-argo.eu",
	"ncei.noaa.gov",
	"ocean-ops.org",
}

// PriorityDomains returns a copy of the ordered trusted domain list.
func PriorityDomains() []string {
	out := make([]string, len(priorityDomains))
	copy(out, priorityDomains)
	return out
}

// RankByDomain stably partitions results: priority-domain hits first, then
// everything else, preserving the original relative order inside each group.
func RankByDomain(results []domain.SearchResult) []domain.SearchResult {
	if len(results) == 0 {
		return results
	}
	ranked := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if isPriorityDomain(r.SourceDomain) {
			ranked = append(ranked, r)
		}
	}
	for _, r := range results {
		if !isPriorityDomain(r.SourceDomain) {
			ranked = append(ranked, r)
		}
	}
	return ranked
}

// isPriorityDomain matches the domain itself and its subdomains; a leading
// www. has already been stripped by the search transport but is tolerated.
func isPriorityDomain(sourceDomain string) bool {
	host := strings.TrimPrefix(strings.ToLower(sourceDomain), "www.")
	for _, trusted := range priorityDomains {
		if host == trusted || strings.HasSuffix(host, "."+trusted) {
			return true
		}
	}
	return false
}
