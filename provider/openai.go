package provider

import (
	"context"
	"errors"
	"strings"
	"sync"

	"baselinedev/config"
	"baselinedev/model"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIMaxTokens      = 4096
)

// OpenAIProvider implements model.Provider on the OpenAI chat completions
// API. Any OpenAI-compatible endpoint (OpenRouter, vLLM, LM Studio) works by
// pointing baseURL at it.
type OpenAIProvider struct {
	mu      sync.Mutex
	client  *openai.Client
	model   string
	baseURL string
	secrets model.SecretStore
}

// NewOpenAIProvider creates an OpenAI-compatible adapter.
//
// Parameters:
//   - baseURL: API base URL (default: "https://api.openai.com/v1")
//   - model: model to use (default: config.DefaultOpenAIModel)
//   - secrets: store holding config.KeyOpenAI
func NewOpenAIProvider(baseURL, modelName string, secrets model.SecretStore) *OpenAIProvider {
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	if modelName == "" {
		modelName = config.DefaultOpenAIModel
	}

	return &OpenAIProvider{
		model:   modelName,
		baseURL: baseURL,
		secrets: secrets,
	}
}

func (p *OpenAIProvider) ensureClient() (*openai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	apiKey := ""
	if p.secrets != nil {
		apiKey = strings.TrimSpace(p.secrets.Get(config.KeyOpenAI))
	}
	if apiKey == "" {
		return nil, missingKeyError(string(ProviderTypeOpenAI), "OpenAI")
	}

	client := openai.NewClient(
		option.WithBaseURL(p.baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	p.client = &client

	config.Debugf("[OpenAI] client ready (model=%s, baseURL=%s)", p.model, p.baseURL)
	return p.client, nil
}

// SendMessage implements model.Provider.
func (p *OpenAIProvider) SendMessage(ctx context.Context, messages []model.Message) (string, error) {
	client, err := p.ensureClient()
	if err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Messages:            ConvertToOpenAIMessages(messages),
		Model:               openai.ChatModel(p.model),
		MaxCompletionTokens: openai.Int(openAIMaxTokens),
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "No response from OpenAI", nil
	}

	return resp.Choices[0].Message.Content, nil
}

// TestConnection implements model.Provider with a one-turn probe.
func (p *OpenAIProvider) TestConnection(ctx context.Context) bool {
	_, err := p.SendMessage(ctx, probeMessage)
	if err != nil {
		config.Debugf("[OpenAI] connection test failed: %v", err)
		return false
	}
	return true
}

func (p *OpenAIProvider) Name() string {
	return string(ProviderTypeOpenAI)
}

func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// classifyOpenAIError is the single place OpenAI errors are normalized.
func classifyOpenAIError(err error) *model.Error {
	backend := string(ProviderTypeOpenAI)

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		kind := kindForStatus(apiErr.StatusCode)
		return model.NewError(kind, backend, userMessage(kind, "OpenAI", err), err)
	}

	if isUnreachable(err) {
		return model.NewError(model.KindUnreachable, backend, userMessage(model.KindUnreachable, "OpenAI", err), err)
	}

	return model.NewError(model.KindUnknown, backend, userMessage(model.KindUnknown, "OpenAI", err), err)
}
