package provider

import (
	"fmt"

	"baselinedev/model"
)

// NewProvider creates an adapter for cfg. Credentials are not read here;
// each cloud adapter pulls its key from secrets on first use, so a missing
// key surfaces as AuthInvalid from SendMessage rather than from the factory.
//
// Supported provider types:
//   - ProviderTypeClaude: Anthropic Messages API
//   - ProviderTypeGemini: Google Gemini API with model fallback
//   - ProviderTypeOllama: local Ollama daemon
//   - ProviderTypeOpenAI: OpenAI-compatible chat completions
//
// Returns a *model.Error of kind KindUnknownBackend for any other type.
//
// Example:
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:  provider.ProviderTypeOllama,
//	    Model: "codellama",
//	}, store)
func NewProvider(cfg Config, secrets model.SecretStore) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeClaude:
		return NewAnthropicProvider(cfg.BaseURL, cfg.Model, secrets), nil
	case ProviderTypeGemini:
		return NewGeminiProvider(cfg.BaseURL, cfg.Model, secrets), nil
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.Model, secrets), nil
	default:
		return nil, model.NewError(model.KindUnknownBackend, string(cfg.Type),
			fmt.Sprintf("Unknown AI model: %s", cfg.Type), nil)
	}
}
