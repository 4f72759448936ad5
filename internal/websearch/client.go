// Package websearch looks up discontinued patterns on the open web and
// cross-references what it finds back into the catalog.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	braveEndpoint = "https://api.search.brave.com/res/v1/web/search"
	resultCount   = 8
	searchTimeout = 10 * time.Second
)

// Sentinel errors so callers can answer the seller with something more
// useful than a stack trace.
var (
	ErrNotConfigured = errors.New("web search is not configured")
	ErrRateLimited   = errors.New("web search rate limit reached")
	ErrTimeout       = errors.New("web search timed out")
)

// WebResult is one hit from the search API.
type WebResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// BraveClient queries the Brave Search API.
type BraveClient struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// NewBraveClient creates a client. An empty key produces a client that
// always returns ErrNotConfigured, so the tool stays registered and
// can explain itself.
func NewBraveClient(apiKey string) *BraveClient {
	return &BraveClient{
		apiKey:   apiKey,
		endpoint: braveEndpoint,
		http:     &http.Client{Timeout: searchTimeout},
	}
}

// Search runs a Brazilian-Portuguese web search.
func (c *BraveClient) Search(ctx context.Context, query string) ([]WebResult, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprintf("%d", resultCount))
	params.Set("search_lang", "pt-br")
	params.Set("country", "BR")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) && ue.Timeout() {
			return nil, ErrTimeout
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("web search returned status %d", resp.StatusCode)
	}

	var payload struct {
		Web struct {
			Results []WebResult `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return payload.Web.Results, nil
}
