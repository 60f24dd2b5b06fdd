package llm

import "fmt"

// Provider is the closed set of supported LLM backends (grounded on
// internal/llm/client.go's Provider type and ValidateProvider).
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderOllama    Provider = "ollama"
)

// DefaultModelForProvider mirrors internal/config/defaults.go's
// DefaultModelForProvider table.
func DefaultModelForProvider(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-5-mini"
	case ProviderAnthropic:
		return "claude-3-5-sonnet-latest"
	case ProviderGemini:
		return "gemini-2.0-flash"
	case ProviderOllama:
		return "llama3.2"
	default:
		return ""
	}
}

// DefaultOllamaURL mirrors internal/config/defaults.go.
const DefaultOllamaURL = "http://localhost:11434"

// ValidateProvider validates p against the closed set, matching
// internal/llm/client.go's ValidateProvider.
func ValidateProvider(p string) (Provider, error) {
	switch Provider(p) {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama:
		return Provider(p), nil
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s (supported: openai, anthropic, gemini, ollama)", p)
	}
}

// Config is the Eino-backed transport's construction config, grounded on
// internal/llm/client.go's Config struct.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	BaseURL  string
}
