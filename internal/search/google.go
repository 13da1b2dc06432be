package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/FactHub/internal/webclient"
)

const (
	googleBaseURL       = "https://www.googleapis.com/customsearch/v1"
	googleClientTimeout = 15 * time.Second
	googleAttempts      = 2
	maxResultsPerQuery  = 10
)

// GoogleClient 调用 Google Programmable Search JSON API
type GoogleClient struct {
	APIKey   string
	EngineID string
	BaseURL  string

	httpClient *http.Client
}

func NewGoogleClient(apiKey, engineID string) *GoogleClient {
	return &GoogleClient{
		APIKey:     apiKey,
		EngineID:   engineID,
		BaseURL:    googleBaseURL,
		httpClient: webclient.NewDefault(googleClientTimeout),
	}
}

type googleResp struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GoogleClient) Search(ctx context.Context, query string, n int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if n < 1 {
		n = 1
	}
	if n > maxResultsPerQuery {
		n = maxResultsPerQuery
	}

	params := url.Values{}
	params.Set("key", g.APIKey)
	params.Set("cx", g.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(n))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search: build request: %w", err)
	}

	status, body, err := webclient.DoRequestWithRetry(ctx, g.httpClient, req, googleAttempts, webclient.DefaultMaxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("search: query %q: %w", query, err)
	}

	var data googleResp
	if err := json.Unmarshal(body, &data); err != nil {
		if status != http.StatusOK {
			return nil, fmt.Errorf("search: unexpected status %d", status)
		}
		return nil, fmt.Errorf("search: decode response: %w", err)
	}
	if status != http.StatusOK {
		if data.Error != nil && data.Error.Message != "" {
			return nil, fmt.Errorf("search: unexpected status %d: %s", status, data.Error.Message)
		}
		return nil, fmt.Errorf("search: unexpected status %d", status)
	}

	results := make([]Result, 0, len(data.Items))
	for _, it := range data.Items {
		if it.Link == "" {
			continue
		}
		results = append(results, Result{
			Title:       strings.TrimSpace(it.Title),
			URL:         it.Link,
			Snippet:     strings.TrimSpace(it.Snippet),
			DisplayLink: it.DisplayLink,
		})
	}
	return results, nil
}
