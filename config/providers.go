package config

import (
	"fmt"
	"strconv"
	"strings"
)

// CredentialKeyFor returns the credential key used by a cloud backend.
// The local daemon has no credential.
func CredentialKeyFor(backend string) (string, error) {
	switch backend {
	case "claude", "anthropic":
		return KeyClaude, nil
	case "gemini", "google":
		return KeyGemini, nil
	case "openai":
		return KeyOpenAI, nil
	default:
		return "", fmt.Errorf("backend %q does not use an API key", backend)
	}
}

// UpdateSetting updates a single user configuration field and saves it.
//
// Fields:
//   - AI: "model", "claude_model", "gemini_model", "openai_model", "openai_base_url"
//   - Ollama: "ollama.endpoint", "ollama.model"
//   - Baseline: "baseline.use_real_time_data", "baseline.threshold",
//     "baseline.target_browsers" (comma separated), "baseline.cache_ttl"
func UpdateSetting(dataDir, field, value string) error {
	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := applySetting(cfg, field, value); err != nil {
		return err
	}

	if err := SaveUserConfig(cfg, dataDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

func applySetting(cfg *UserConfig, field, value string) error {
	switch field {
	case "model":
		cfg.AI.Model = strings.ToLower(strings.TrimSpace(value))
	case "claude_model":
		cfg.AI.ClaudeModel = value
	case "gemini_model":
		cfg.AI.GeminiModel = value
	case "openai_model":
		cfg.AI.OpenAIModel = value
	case "openai_base_url":
		cfg.AI.OpenAIBaseURL = value
	case "ollama.endpoint":
		cfg.Ollama.Endpoint = value
	case "ollama.model":
		cfg.Ollama.Model = value
	case "baseline.use_real_time_data":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", field, err)
		}
		cfg.Baseline.UseRealTimeData = enabled
	case "baseline.threshold":
		if value != "high" && value != "low" {
			return fmt.Errorf("baseline.threshold must be \"high\" or \"low\"")
		}
		cfg.Baseline.Threshold = value
	case "baseline.target_browsers":
		var browsers []string
		for _, b := range strings.Split(value, ",") {
			if b = strings.TrimSpace(b); b != "" {
				browsers = append(browsers, b)
			}
		}
		cfg.Baseline.TargetBrowsers = browsers
	case "baseline.cache_ttl":
		cfg.Baseline.CacheTTL = value
	default:
		return fmt.Errorf("unknown setting: %s", field)
	}
	return nil
}
