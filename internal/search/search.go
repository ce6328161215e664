// Package search implements the web search used by the web_search tool.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrEmptyQuery is returned when Search is called without a query.
var ErrEmptyQuery = errors.New("empty search query")

// Result is a single search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// Output is what the web_search tool returns to the model.
type Output struct {
	Results  []Result `json:"results"`
	Provider string   `json:"provider,omitempty"`
}

// Provider is a search backend.
type Provider interface {
	Name() string
	Available() bool
	Search(ctx context.Context, query string) ([]Result, error)
}

// Searcher routes queries through an ordered list of providers.
type Searcher struct {
	providers []Provider
}

// NewSearcher returns a Searcher trying providers in order.
func NewSearcher(providers ...Provider) *Searcher {
	return &Searcher{providers: providers}
}

// Available reports whether at least one provider is configured.
func (s *Searcher) Available() bool {
	for _, p := range s.providers {
		if p.Available() {
			return true
		}
	}
	return false
}

// Search skips unavailable providers and falls through on error; the first
// success wins. When every provider fails the last error is returned.
func (s *Searcher) Search(ctx context.Context, query string) (Output, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Output{}, ErrEmptyQuery
	}

	slog.Info("web_search called", "query", query)

	var lastErr error
	for _, p := range s.providers {
		if !p.Available() {
			continue
		}
		results, err := p.Search(ctx, query)
		if err != nil {
			slog.Warn("search provider failed, trying next", "provider", p.Name(), "error", err)
			lastErr = err
			continue
		}
		if len(results) == 0 {
			return Output{Provider: p.Name(), Results: []Result{{
				Title:   "No results found",
				Content: fmt.Sprintf("No results found for %q.", query),
			}}}, nil
		}
		return Output{Provider: p.Name(), Results: results}, nil
	}

	if lastErr != nil {
		return Output{}, fmt.Errorf("web search failed: %w", lastErr)
	}
	return Output{}, fmt.Errorf("web search unavailable: set TAVILY_API_KEY or search.apiKey")
}
