// Package search queries the Google Custom Search API and extracts a direct
// answer from result snippets.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"frostmod/internal/inference"

	"go.uber.org/zap"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

const resultCount = 5

type Result struct {
	Title   string
	Snippet string
	URL     string
}

type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	cseID    string
}

func NewClient(apiKey, cseID string, logger *zap.Logger) *Client {
	return &Client{
		http:     inference.NewHTTPClient(logger),
		endpoint: defaultEndpoint,
		apiKey:   apiKey,
		cseID:    cseID,
	}
}

// WithEndpoint points the client at a different endpoint. Used by tests.
func (c *Client) WithEndpoint(endpoint string) {
	c.endpoint = endpoint
}

func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cseID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", resultCount))
	params.Set("safe", "active")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: status %d", resp.StatusCode)
	}

	var payload struct {
		Items []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, Result{Title: item.Title, Snippet: item.Snippet, URL: item.Link})
	}
	return results, nil
}
