package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveBaseURL returns the task API base URL used by the HTTP tool
// transport. Order: api.baseURL, then the VERCEL_URL deployment host
// (served over https), then the local server port.
func ResolveBaseURL(cfg AppConfig) string {
	if u := strings.TrimSpace(cfg.API.BaseURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	if host := strings.TrimSpace(os.Getenv("VERCEL_URL")); host != "" {
		host = strings.TrimPrefix(host, "https://")
		return "https://" + strings.TrimRight(host, "/")
	}
	port := cfg.Server.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("http://localhost:%d", port)
}

// ResolveSearchAPIKey prefers search.apiKey and falls back to TAVILY_API_KEY.
func ResolveSearchAPIKey(cfg AppConfig) string {
	if key := strings.TrimSpace(cfg.Search.APIKey); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv("TAVILY_API_KEY"))
}
