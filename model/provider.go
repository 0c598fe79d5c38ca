package model

import "context"

// Provider abstracts chat backend implementations (Claude, Gemini, Ollama, OpenAI)
// using provider-agnostic types from the model layer.
//
// This interface is defined in the model package (not provider package) so that
// callers can depend on it without importing every backend SDK.
type Provider interface {
	// SendMessage sends the full conversation and returns the assistant reply.
	// Turns are sent in the order supplied.
	SendMessage(ctx context.Context, messages []Message) (string, error)

	// TestConnection reports whether the backend is usable. It never returns
	// an error so callers can show availability without extra handling.
	TestConnection(ctx context.Context) bool

	// Name returns the backend identifier ("claude", "gemini", ...).
	Name() string

	// GetModel returns the configured model name.
	GetModel() string
}

// ModelLister is implemented by providers that can enumerate locally
// available models. Used for diagnostics only.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// SecretStore is opaque key-value persistence for credentials.
// Values must never be logged or echoed.
type SecretStore interface {
	Get(key string) string
	Set(key, value string) error
}
