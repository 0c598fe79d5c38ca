package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"baselinedev/config"
	"baselinedev/model"
	"baselinedev/ollama"

	"github.com/ollama/ollama/api"
)

// OllamaProvider wraps ollama.Client to implement model.Provider.
//
// The conversation is flattened into one role-tagged prompt and sent to
// /api/generate without streaming. The daemon needs no credentials.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL (e.g., "http://localhost:11434").
//     If empty, defaults to ollama.DefaultBaseURL.
//   - model: The model name to use (e.g., "codellama").
//     If empty, defaults to ollama.DefaultModel.
//
// Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL, modelName string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// SendMessage implements model.Provider.
func (p *OllamaProvider) SendMessage(ctx context.Context, messages []model.Message) (string, error) {
	prompt := buildOllamaPrompt(messages)

	reply, err := p.client.Generate(ctx, prompt)
	if err != nil {
		return "", p.classifyError(err)
	}

	if strings.TrimSpace(reply) == "" {
		return "No response from Ollama", nil
	}
	return reply, nil
}

// TestConnection reports whether the daemon answers a model listing. A
// configured model that has not been pulled is logged, not treated as a
// failure, because SendMessage reports it precisely.
func (p *OllamaProvider) TestConnection(ctx context.Context) bool {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		config.Debugf("[Ollama] connection test failed: %v", err)
		return false
	}

	if !ollama.HasModel(models, p.client.GetModel()) {
		config.Debugf("[Ollama] model %s not installed (available: %v)", p.client.GetModel(), models)
	}
	return true
}

// ListModels implements model.ModelLister.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, p.classifyError(err)
	}
	return models, nil
}

func (p *OllamaProvider) Name() string {
	return string(ProviderTypeOllama)
}

func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// classifyError is the single place Ollama errors are normalized.
func (p *OllamaProvider) classifyError(err error) *model.Error {
	backend := string(ProviderTypeOllama)

	var statusErr api.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		name := p.client.GetModel()
		return model.NewError(model.KindNoCompatibleModel, backend,
			fmt.Sprintf("Model %q not found. Pull the model first: ollama pull %s", name, name), err)
	}

	if isUnreachable(err) {
		return model.NewError(model.KindUnreachable, backend,
			fmt.Sprintf("Cannot connect to Ollama at %s. Make sure Ollama is running.", p.client.BaseURL()), err)
	}

	return model.NewError(model.KindUnknown, backend, fmt.Sprintf("Ollama error: %v", err), err)
}
