package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/josephgoksu/taskmate/internal/llm"
	"github.com/spf13/viper"
)

// LoadLLMConfig loads LLM configuration from Viper and Environment variables.
// It handles precedence: Explicit Viper Config > Environment Variables > Defaults.
func LoadLLMConfig() (llm.Config, error) {
	provider := viper.GetString("llm.provider")
	if provider == "" {
		provider = llm.DefaultProvider
	}

	llmProvider, err := llm.ValidateProvider(provider)
	if err != nil {
		return llm.Config{}, fmt.Errorf("invalid provider: %w", err)
	}

	model := viper.GetString("llm.model")
	if model == "" {
		model = llm.DefaultModelForProvider(string(llmProvider))
	}

	// Missing keys are reported by llm.NewChatModel; Ollama needs none.
	apiKey := ResolveAPIKey(llmProvider)

	baseURL := viper.GetString("llm.baseURL")
	if baseURL == "" && llmProvider == llm.ProviderOllama {
		baseURL = llm.DefaultOllamaURL
	}

	return llm.Config{
		Provider:    llmProvider,
		Model:       model,
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Temperature: float32(viper.GetFloat64("llm.temperature")),
	}, nil
}

// ResolveAPIKey returns the best API key for the given provider using
// per-provider config keys, provider-specific env vars, then legacy config.
func ResolveAPIKey(provider llm.Provider) string {
	// 1) Per-provider config key (llm.apiKeys.<provider>)
	if key := keyFromViper(fmt.Sprintf("llm.apiKeys.%s", provider)); key != "" {
		return key
	}

	// 2) Provider-specific env vars
	if key := providerEnvKey(provider); key != "" {
		return key
	}

	// 3) Legacy single key, OpenAI only to avoid sending it to the wrong vendor.
	if provider == llm.ProviderOpenAI {
		return keyFromViper("llm.apiKey")
	}
	return ""
}

func keyFromViper(path string) string {
	if viper.IsSet(path) {
		return strings.TrimSpace(viper.GetString(path))
	}
	return ""
}

func providerEnvKey(provider llm.Provider) string {
	switch provider {
	case llm.ProviderOpenAI:
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case llm.ProviderAnthropic:
		return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	case llm.ProviderGemini:
		key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			key = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
		}
		return key
	default:
		return ""
	}
}
