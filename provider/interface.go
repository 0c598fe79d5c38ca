// Package provider routes chat requests to one of several backends.
//
// baselinedev talks to cloud APIs (Claude, Gemini, OpenAI-compatible) and a
// local Ollama daemon through the common model.Provider interface. Callers
// hold a Router, which picks the configured backend, memoizes the adapter
// and normalizes every backend error into a *model.Error.
//
// # Architecture
//
//   - model.Provider defines the contract
//   - provider.AnthropicProvider, GeminiProvider, OllamaProvider and
//     OpenAIProvider implement it
//   - provider.NewProvider() creates an adapter from a Config
//   - provider.Router resolves, caches and resets adapters
//
// Adapters are stateless between calls apart from their lazily built SDK
// client. Conversation history is always passed in full on each call.
//
// # Usage
//
//	router := provider.NewRouter(settingsFunc, cfg.CredentialStore)
//	reply, err := router.SendMessage(ctx, []model.Message{
//	    {Role: model.RoleUser, Content: "Is :has() Baseline?"},
//	})
//	if err != nil {
//	    switch model.KindOf(err) {
//	    case model.KindAuthInvalid:
//	        // ask for a new key, then router.Reset()
//	    }
//	}
package provider

import "strings"

// ProviderType identifies the backend implementation.
type ProviderType string

const (
	ProviderTypeClaude ProviderType = "claude"
	ProviderTypeGemini ProviderType = "gemini"
	ProviderTypeOllama ProviderType = "ollama"
	ProviderTypeOpenAI ProviderType = "openai"
)

// SupportedTypes lists the backend identifiers the router accepts.
var SupportedTypes = []ProviderType{
	ProviderTypeClaude,
	ProviderTypeGemini,
	ProviderTypeOllama,
	ProviderTypeOpenAI,
}

// Config holds the settings one adapter is built from. Two equal Configs
// produce interchangeable adapters, so the router uses it as its cache key.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
}

// Settings is the router's view of user configuration.
type Settings struct {
	Model          string // backend identifier
	ClaudeModel    string
	GeminiModel    string
	OpenAIModel    string
	OpenAIBaseURL  string
	OllamaEndpoint string
	OllamaModel    string
}

// AdapterConfig selects the adapter config for the backend named in s.Model.
func (s Settings) AdapterConfig() Config {
	t := MapProviderIDToType(s.Model)
	cfg := Config{Type: t}

	switch t {
	case ProviderTypeClaude:
		cfg.Model = s.ClaudeModel
	case ProviderTypeGemini:
		cfg.Model = s.GeminiModel
	case ProviderTypeOpenAI:
		cfg.Model = s.OpenAIModel
		cfg.BaseURL = s.OpenAIBaseURL
	case ProviderTypeOllama:
		cfg.Model = s.OllamaModel
		cfg.BaseURL = s.OllamaEndpoint
	}

	return cfg
}

// MapProviderIDToType converts a user-facing backend identifier to a
// ProviderType.
//
// Mappings:
//   - "claude", "anthropic" → ProviderTypeClaude
//   - "gemini", "google" → ProviderTypeGemini
//   - "ollama" → ProviderTypeOllama
//   - "openai", "openrouter" → ProviderTypeOpenAI
//
// For unknown IDs, returns the ID cast as ProviderType (factory will error).
func MapProviderIDToType(id string) ProviderType {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "claude", "anthropic":
		return ProviderTypeClaude
	case "gemini", "google":
		return ProviderTypeGemini
	case "ollama":
		return ProviderTypeOllama
	case "openai", "openrouter":
		return ProviderTypeOpenAI
	default:
		return ProviderType(id)
	}
}
