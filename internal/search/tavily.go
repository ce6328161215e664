package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTavilyURL is the Tavily search endpoint.
const DefaultTavilyURL = "https://api.tavily.com/search"

const maxSnippet = 800

// TavilyProvider implements Provider using the Tavily search API.
type TavilyProvider struct {
	apiKey     string
	endpoint   string
	maxResults int
	client     *http.Client
}

// NewTavilyProvider creates a Tavily provider. An empty endpoint uses
// DefaultTavilyURL.
func NewTavilyProvider(apiKey, endpoint string, maxResults int) *TavilyProvider {
	if endpoint == "" {
		endpoint = DefaultTavilyURL
	}
	if maxResults <= 0 {
		maxResults = 3
	}
	return &TavilyProvider{
		apiKey:     apiKey,
		endpoint:   endpoint,
		maxResults: maxResults,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *TavilyProvider) Name() string    { return "tavily" }
func (p *TavilyProvider) Available() bool { return p.apiKey != "" }

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (p *TavilyProvider) Search(ctx context.Context, query string) ([]Result, error) {
	bodyBytes, err := json.Marshal(tavilyRequest{
		Query:       query,
		MaxResults:  p.maxResults,
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tavily API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return parseTavilyResponse(body, p.maxResults)
}

func parseTavilyResponse(data []byte, limit int) ([]Result, error) {
	var resp tavilyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse tavily response: %w", err)
	}

	results := make([]Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(results) >= limit {
			break
		}
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Content: trimSnippet(r.Content, maxSnippet),
			Score:   r.Score,
		})
	}
	return results, nil
}

// trimSnippet returns s truncated to at most max bytes with an ellipsis.
// The cut never splits a multi-byte rune.
func trimSnippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
