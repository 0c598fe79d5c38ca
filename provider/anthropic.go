package provider

import (
	"context"
	"errors"
	"strings"
	"sync"

	"baselinedev/config"
	"baselinedev/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicMaxTokens      = 4096
)

// AnthropicProvider implements model.Provider on Anthropic's Messages API.
// The SDK client is built on first use from the key in the secret store.
type AnthropicProvider struct {
	mu      sync.Mutex
	client  *anthropic.Client
	model   anthropic.Model
	baseURL string
	secrets model.SecretStore
}

// NewAnthropicProvider creates a Claude adapter.
//
// Parameters:
//   - baseURL: Anthropic API base URL (default: "https://api.anthropic.com")
//   - model: model to use (default: config.DefaultClaudeModel)
//   - secrets: store holding config.KeyClaude
func NewAnthropicProvider(baseURL, modelName string, secrets model.SecretStore) *AnthropicProvider {
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}
	if modelName == "" {
		modelName = config.DefaultClaudeModel
	}

	return &AnthropicProvider{
		model:   anthropic.Model(modelName),
		baseURL: baseURL,
		secrets: secrets,
	}
}

func (p *AnthropicProvider) ensureClient() (*anthropic.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	apiKey := ""
	if p.secrets != nil {
		apiKey = strings.TrimSpace(p.secrets.Get(config.KeyClaude))
	}
	if apiKey == "" {
		return nil, missingKeyError(string(ProviderTypeClaude), "Claude")
	}

	client := anthropic.NewClient(
		option.WithBaseURL(p.baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	p.client = &client

	config.Debugf("[Claude] client ready (model=%s)", p.model)
	return p.client, nil
}

// SendMessage implements model.Provider.
func (p *AnthropicProvider) SendMessage(ctx context.Context, messages []model.Message) (string, error) {
	client, err := p.ensureClient()
	if err != nil {
		return "", err
	}

	anthropicMessages, systemBlocks := convertToAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  anthropicMessages,
		MaxTokens: anthropicMaxTokens,
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "No response from Claude", nil
	}

	return text.String(), nil
}

// TestConnection implements model.Provider with a one-turn probe.
func (p *AnthropicProvider) TestConnection(ctx context.Context) bool {
	_, err := p.SendMessage(ctx, probeMessage)
	if err != nil {
		config.Debugf("[Claude] connection test failed: %v", err)
		return false
	}
	return true
}

func (p *AnthropicProvider) Name() string {
	return string(ProviderTypeClaude)
}

func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

// classifyAnthropicError is the single place Claude errors are normalized.
func classifyAnthropicError(err error) *model.Error {
	backend := string(ProviderTypeClaude)

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		kind := kindForStatus(apiErr.StatusCode)
		return model.NewError(kind, backend, userMessage(kind, "Claude", err), err)
	}

	if isUnreachable(err) {
		return model.NewError(model.KindUnreachable, backend, userMessage(model.KindUnreachable, "Claude", err), err)
	}

	return model.NewError(model.KindUnknown, backend, userMessage(model.KindUnknown, "Claude", err), err)
}
