package provider

import (
	"baselinedev/config"
)

// SettingsFromConfig extracts the router settings from application config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Model:          cfg.Model,
		ClaudeModel:    cfg.ClaudeModel,
		GeminiModel:    cfg.GeminiModel,
		OpenAIModel:    cfg.OpenAIModel,
		OpenAIBaseURL:  cfg.OpenAIBaseURL,
		OllamaEndpoint: cfg.OllamaEndpoint,
		OllamaModel:    cfg.OllamaModel,
	}
}

// NewRouterFromConfig creates the process router. Settings are read from
// cfg on every call and credentials from cfg.CredentialStore.
//
// Example:
//
//	cfg, _ := config.Load()
//	router := provider.NewRouterFromConfig(cfg)
//	ok := router.TestConnection(ctx)
func NewRouterFromConfig(cfg *config.Config, opts ...RouterOption) *Router {
	settings := func() Settings {
		return SettingsFromConfig(cfg)
	}

	config.Debugf("[Provider] router initialized (model=%s)", cfg.Model)
	if cfg.CredentialStore == nil {
		return NewRouter(settings, nil, opts...)
	}
	return NewRouter(settings, cfg.CredentialStore, opts...)
}
