package config

import "time"

const (
	DefaultModel          = "claude"
	DefaultClaudeModel    = "claude-3-5-sonnet-20241022"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultOllamaModel    = "codellama"
	DefaultPrimaryURL     = "https://api.webstatus.dev"
	DefaultCacheTTL       = time.Hour
)

// DefaultSecondaryURLs are web-features data.json mirrors, tried in order.
var DefaultSecondaryURLs = []string{
	"https://unpkg.com/web-features@latest/data.json",
	"https://cdn.jsdelivr.net/npm/web-features/data.json",
}

// DefaultTargetBrowsers mirrors the browser set the Baseline definition covers.
var DefaultTargetBrowsers = []string{"chrome", "edge", "firefox", "safari"}

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/baselinedev",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		AI: AIConfig{
			Model:       DefaultModel,
			ClaudeModel: DefaultClaudeModel,
			GeminiModel: DefaultGeminiModel,
			OpenAIModel: DefaultOpenAIModel,
		},
		Ollama: OllamaConfig{
			Endpoint: DefaultOllamaEndpoint,
			Model:    DefaultOllamaModel,
		},
		Baseline: BaselineConfig{
			UseRealTimeData: false,
			Threshold:       "high",
			TargetBrowsers:  append([]string(nil), DefaultTargetBrowsers...),
			PrimaryURL:      DefaultPrimaryURL,
			SecondaryURLs:   append([]string(nil), DefaultSecondaryURLs...),
			CacheTTL:        DefaultCacheTTL.String(),
		},
		Security: SecurityConfig{
			Method: string(SecurityPlainText),
		},
	}
}

func defaultConfig() *Config {
	cfg := &Config{
		DataDirectory:  DefaultSystemConfig().DataDirectory,
		CacheTTL:       DefaultCacheTTL,
		SecurityMethod: SecurityPlainText,
	}
	_ = cfg.applyUserConfig(DefaultUserConfig())
	return cfg
}

func GenerateSystemConfigTemplate() string {
	return `# baselinedev System Configuration
# Location: ~/.config/baselinedev/settings.toml
# This file uses TOML format: https://toml.io

# Directory where config, credentials, cache and conversations are stored
data_directory = "~/.local/share/baselinedev"
`
}

func GenerateUserConfigTemplate() string {
	return `# baselinedev User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[ai]
# Chat backend: "claude", "gemini", "ollama" or "openai"
model = "claude"
claude_model = "claude-3-5-sonnet-20241022"
# Tried first; known-compatible Gemini models are tried after it
gemini_model = "gemini-2.5-flash"
openai_model = "gpt-4o-mini"
# Any OpenAI-compatible endpoint (leave empty for api.openai.com)
openai_base_url = ""

[ollama]
endpoint = "http://localhost:11434"
model = "codellama"

[baseline]
# Fetch the latest feature data on startup instead of the bundled snapshot
use_real_time_data = false
# "high" (widely available) or "low" (newly available)
threshold = "high"
target_browsers = ["chrome", "edge", "firefox", "safari"]
primary_url = "https://api.webstatus.dev"
secondary_urls = [
  "https://unpkg.com/web-features@latest/data.json",
  "https://cdn.jsdelivr.net/npm/web-features/data.json",
]
# How long a fetched snapshot may serve as the offline fallback
cache_ttl = "1h"

[security]
# "plaintext" or "ssh_key"
method = "plaintext"
ssh_key_path = ""
`
}
