package llm

// Provider constants
const (
	// DefaultProvider is the default LLM provider
	DefaultProvider = ProviderOpenAI

	// ProviderOpenAI represents the OpenAI provider
	ProviderOpenAI = "openai"

	// ProviderOllama represents the Ollama provider
	ProviderOllama = "ollama"

	// ProviderAnthropic represents the Anthropic provider
	ProviderAnthropic = "anthropic"

	// ProviderGemini represents the Google Gemini provider
	ProviderGemini = "gemini"
)

// DefaultOllamaURL is the default URL for Ollama server
const DefaultOllamaURL = "http://localhost:11434"

// DefaultTemperature keeps tool selection deterministic.
const DefaultTemperature float32 = 0

// DefaultMaxTokens is used by providers that require an explicit output cap.
const DefaultMaxTokens = 4096

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o",
	ProviderAnthropic: "claude-3-5-sonnet-latest",
	ProviderGemini:    "gemini-2.0-flash",
	ProviderOllama:    "llama3.1",
}

// DefaultModelForProvider returns the default chat model for a provider,
// or "" for unknown providers.
func DefaultModelForProvider(provider string) string {
	return defaultModels[provider]
}
