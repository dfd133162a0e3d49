// Package openlibrary is a minimal client for the Open Library search API,
// covering just the fields the enrichment pipeline consumes.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public Open Library search endpoint.
const DefaultBaseURL = "https://openlibrary.org"

// Client represents an Open Library search API client
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// Doc is one search result document. Every field is optional in the API
// response; absent fields decode to their zero value.
type Doc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	Publisher        []string `json:"publisher"`
	Subject          []string `json:"subject"`
	FirstPublishYear int      `json:"first_publish_year"`
	PublishDate      []string `json:"publish_date"`
}

// NewClient creates a new Open Library client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search runs a free-form query against the search endpoint and returns up
// to limit documents.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Doc, error) {
	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=%d", c.BaseURL, url.QueryEscape(query), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query Open Library: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Open Library returned status %d: %s", resp.StatusCode, string(body))
	}

	var searchResp struct {
		Docs []Doc `json:"docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return searchResp.Docs, nil
}
