package provider

import (
	"testing"

	"baselinedev/model"
	"baselinedev/provider/testutil"
)

func TestNewProvider(t *testing.T) {
	secrets := testutil.NewMemorySecretStore(nil)

	tests := []struct {
		name        string
		config      Config
		expectError bool
		wantName    string
		wantModel   string
	}{
		{
			name:      "ollama provider with defaults",
			config:    Config{Type: ProviderTypeOllama},
			wantName:  "ollama",
			wantModel: "codellama",
		},
		{
			name: "ollama provider with custom config",
			config: Config{
				Type:    ProviderTypeOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
			wantName:  "ollama",
			wantModel: "llama3.1",
		},
		{
			name:      "claude provider",
			config:    Config{Type: ProviderTypeClaude, Model: "claude-3-5-sonnet-20241022"},
			wantName:  "claude",
			wantModel: "claude-3-5-sonnet-20241022",
		},
		{
			name:      "gemini provider with default model",
			config:    Config{Type: ProviderTypeGemini},
			wantName:  "gemini",
			wantModel: "gemini-2.5-flash",
		},
		{
			name:      "openai provider",
			config:    Config{Type: ProviderTypeOpenAI, BaseURL: "https://openrouter.ai/api/v1", Model: "gpt-4o-mini"},
			wantName:  "openai",
			wantModel: "gpt-4o-mini",
		},
		{
			name:        "unknown provider type",
			config:      Config{Type: ProviderType("copilot")},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config, secrets)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !model.IsKind(err, model.KindUnknownBackend) {
					t.Errorf("expected KindUnknownBackend, got %v", model.KindOf(err))
				}
				if p != nil {
					t.Error("expected nil provider on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %s, want %s", p.Name(), tt.wantName)
			}
			if p.GetModel() != tt.wantModel {
				t.Errorf("GetModel() = %s, want %s", p.GetModel(), tt.wantModel)
			}
		})
	}
}

func TestNewProviderDoesNotReadCredentials(t *testing.T) {
	secrets := testutil.NewMemorySecretStore(nil)

	for _, typ := range []ProviderType{ProviderTypeClaude, ProviderTypeGemini, ProviderTypeOpenAI} {
		if _, err := NewProvider(Config{Type: typ}, secrets); err != nil {
			t.Fatalf("NewProvider(%s) error = %v", typ, err)
		}
	}

	if secrets.Reads() != 0 {
		t.Errorf("expected no credential reads at construction, got %d", secrets.Reads())
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := map[string]ProviderType{
		"claude":     ProviderTypeClaude,
		"anthropic":  ProviderTypeClaude,
		" Claude ":   ProviderTypeClaude,
		"gemini":     ProviderTypeGemini,
		"google":     ProviderTypeGemini,
		"ollama":     ProviderTypeOllama,
		"openai":     ProviderTypeOpenAI,
		"openrouter": ProviderTypeOpenAI,
		"copilot":    ProviderType("copilot"),
	}

	for id, want := range tests {
		if got := MapProviderIDToType(id); got != want {
			t.Errorf("MapProviderIDToType(%q) = %s, want %s", id, got, want)
		}
	}
}

func TestSettingsAdapterConfig(t *testing.T) {
	s := Settings{
		ClaudeModel:    "claude-x",
		GeminiModel:    "gemini-x",
		OpenAIModel:    "gpt-x",
		OpenAIBaseURL:  "http://openai.local/v1",
		OllamaEndpoint: "http://ollama.local:11434",
		OllamaModel:    "mistral",
	}

	tests := []struct {
		model string
		want  Config
	}{
		{"claude", Config{Type: ProviderTypeClaude, Model: "claude-x"}},
		{"gemini", Config{Type: ProviderTypeGemini, Model: "gemini-x"}},
		{"openai", Config{Type: ProviderTypeOpenAI, Model: "gpt-x", BaseURL: "http://openai.local/v1"}},
		{"ollama", Config{Type: ProviderTypeOllama, Model: "mistral", BaseURL: "http://ollama.local:11434"}},
		{"unknown", Config{Type: ProviderType("unknown")}},
	}

	for _, tt := range tests {
		s.Model = tt.model
		if got := s.AdapterConfig(); got != tt.want {
			t.Errorf("AdapterConfig(%s) = %+v, want %+v", tt.model, got, tt.want)
		}
	}
}
