package config

import (
	"testing"

	"github.com/josephgoksu/taskmate/internal/llm"
	"github.com/spf13/viper"
)

func resetViperForTest(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoadLLMConfig_Defaults(t *testing.T) {
	resetViperForTest(t)
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := LoadLLMConfig()
	if err != nil {
		t.Fatalf("LoadLLMConfig() error = %v", err)
	}
	if cfg.Provider != llm.ProviderOpenAI {
		t.Fatalf("LoadLLMConfig() provider = %q, want %q", cfg.Provider, llm.ProviderOpenAI)
	}
	if cfg.Model != "gpt-4o" {
		t.Fatalf("LoadLLMConfig() model = %q, want gpt-4o", cfg.Model)
	}
	if cfg.APIKey != "sk-env" {
		t.Fatalf("LoadLLMConfig() apiKey = %q, want env key", cfg.APIKey)
	}
	if cfg.Temperature != 0 {
		t.Fatalf("LoadLLMConfig() temperature = %v, want 0", cfg.Temperature)
	}
}

func TestLoadLLMConfig_InvalidProvider(t *testing.T) {
	resetViperForTest(t)
	viper.Set("llm.provider", "bedrock")

	if _, err := LoadLLMConfig(); err == nil {
		t.Fatal("LoadLLMConfig() error = nil, want invalid provider error")
	}
}

func TestLoadLLMConfig_OllamaBaseURL(t *testing.T) {
	resetViperForTest(t)
	viper.Set("llm.provider", "ollama")

	cfg, err := LoadLLMConfig()
	if err != nil {
		t.Fatalf("LoadLLMConfig() error = %v", err)
	}
	if cfg.BaseURL != llm.DefaultOllamaURL {
		t.Fatalf("LoadLLMConfig() baseURL = %q, want %q", cfg.BaseURL, llm.DefaultOllamaURL)
	}
	if cfg.APIKey != "" {
		t.Fatalf("LoadLLMConfig() apiKey = %q, want empty for ollama", cfg.APIKey)
	}
}

func TestResolveAPIKey_Precedence(t *testing.T) {
	resetViperForTest(t)
	clearProviderEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "env-anthropic")
	viper.Set("llm.apiKey", "legacy")

	if got := ResolveAPIKey(llm.ProviderAnthropic); got != "env-anthropic" {
		t.Fatalf("ResolveAPIKey(anthropic) = %q, want env key", got)
	}

	viper.Set("llm.apiKeys.anthropic", " per-provider ")
	if got := ResolveAPIKey(llm.ProviderAnthropic); got != "per-provider" {
		t.Fatalf("ResolveAPIKey(anthropic) = %q, want per-provider key", got)
	}

	// Legacy key is only honoured for OpenAI.
	if got := ResolveAPIKey(llm.ProviderGemini); got != "" {
		t.Fatalf("ResolveAPIKey(gemini) = %q, want empty", got)
	}
	if got := ResolveAPIKey(llm.ProviderOpenAI); got != "legacy" {
		t.Fatalf("ResolveAPIKey(openai) = %q, want legacy", got)
	}
}

func TestResolveAPIKey_GoogleFallback(t *testing.T) {
	resetViperForTest(t)
	clearProviderEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")

	if got := ResolveAPIKey(llm.ProviderGemini); got != "google" {
		t.Fatalf("ResolveAPIKey(gemini) = %q, want google", got)
	}
}
