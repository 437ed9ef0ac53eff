package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/incois/floatchat/internal/core/domain"
	"github.com/incois/floatchat/internal/infrastructure/resilience"
)

const maxResultsPerCall = 10

// Domains excluded from results regardless of rank: social media without
// institutional backing and known aggregator patterns.
var disallowedDomainPatterns = []string{
	"facebook.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"pinterest.com",
	"contentfarm",
}

// Client talks to the Google Custom Search JSON API. It is pure transport:
// no budget checks, no retries. Transport and HTTP failures are wrapped in
// domain.ErrSearchUnavailable.
type Client struct {
	baseURL    string
	apiKey     string
	engineID   string
	httpClient *http.Client
	guard      *resilience.Guard
}

type Options struct {
	Timeout time.Duration
	Guard   *resilience.Guard
}

func New(baseURL, apiKey, engineID string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		engineID:   engineID,
		httpClient: &http.Client{Timeout: timeout},
		guard:      options.Guard,
	}
}

func (c *Client) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	var results []domain.SearchResult
	call := func(callCtx context.Context) error {
		var err error
		results, err = c.search(callCtx, query)
		return err
	}

	var err error
	if c.guard != nil {
		err = c.guard.Execute(ctx, "websearch", call, classifySearchError)
		if resilience.IsCircuitOpen(err) {
			err = domain.WrapError(domain.ErrSearchUnavailable, "search", err)
		}
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.URL.RawQuery = c.buildParams(query).Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrSearchUnavailable, "search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, formatSearchHTTPError(resp)
	}

	var payload struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.WrapError(domain.ErrSearchUnavailable, "search", fmt.Errorf("decode response: %w", err))
	}

	results := make([]domain.SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		sourceDomain := extractDomain(item.Link)
		if isDisallowedDomain(sourceDomain) {
			continue
		}
		results = append(results, domain.SearchResult{
			Title:        item.Title,
			URL:          item.Link,
			Snippet:      item.Snippet,
			SourceDomain: sourceDomain,
			Rank:         len(results) + 1,
		})
		if query.TopK > 0 && len(results) >= query.TopK {
			break
		}
	}
	return results, nil
}

func (c *Client) buildParams(query domain.SearchQuery) url.Values {
	q := query.Text
	if len(query.SiteFilters) > 0 {
		sites := make([]string, 0, len(query.SiteFilters))
		for _, site := range query.SiteFilters {
			sites = append(sites, "site:"+site)
		}
		q = fmt.Sprintf("%s (%s)", q, strings.Join(sites, " OR "))
	}

	num := query.TopK
	if num <= 0 || num > maxResultsPerCall {
		num = maxResultsPerCall
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", q)
	params.Set("num", strconv.Itoa(num))
	params.Set("safe", "active")

	switch query.TimeRange {
	case domain.TimeRangeYear:
		params.Set("dateRestrict", "y1")
	case domain.TimeRangeMonth:
		params.Set("dateRestrict", "m1")
	}
	return params
}

func formatSearchHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return domain.WrapError(domain.ErrSearchUnavailable, "search", fmt.Errorf("status %s", resp.Status))
	}
	return domain.WrapError(domain.ErrSearchUnavailable, "search", fmt.Errorf("status %s: %s", resp.Status, msg))
}

func classifySearchError(err error) bool {
	return domain.IsKind(err, domain.ErrSearchUnavailable)
}

func extractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func isDisallowedDomain(sourceDomain string) bool {
	if sourceDomain == "" {
		return false
	}
	for _, pattern := range disallowedDomainPatterns {
		if strings.Contains(sourceDomain, pattern) {
			return true
		}
	}
	return false
}
