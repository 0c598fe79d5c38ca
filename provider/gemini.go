package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"baselinedev/config"
	"baselinedev/model"

	"google.golang.org/genai"
)

// GeminiFallbackModels are tried, in order, after the configured model when
// the API reports a model as missing.
var GeminiFallbackModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro",
}

const (
	geminiGreetingUser  = "Hello"
	geminiGreetingModel = "Hello! How can I help you with web features today?"
)

type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGeminiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// GeminiProvider implements model.Provider on the Gemini API, walking a
// chain of candidate models until one exists for the caller's key.
type GeminiProvider struct {
	mu        sync.Mutex
	models    geminiModels
	model     string
	baseURL   string
	fallbacks []string
	secrets   model.SecretStore
}

// NewGeminiProvider creates a Gemini adapter. baseURL may be empty.
func NewGeminiProvider(baseURL, modelName string, secrets model.SecretStore) *GeminiProvider {
	if modelName == "" {
		modelName = config.DefaultGeminiModel
	}

	return &GeminiProvider{
		model:     modelName,
		baseURL:   baseURL,
		fallbacks: GeminiFallbackModels,
		secrets:   secrets,
	}
}

func (p *GeminiProvider) ensureModels(ctx context.Context) (geminiModels, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.models != nil {
		return p.models, nil
	}

	apiKey := ""
	if p.secrets != nil {
		apiKey = strings.TrimSpace(p.secrets.Get(config.KeyGemini))
	}
	if apiKey == "" {
		return nil, missingKeyError(string(ProviderTypeGemini), "Gemini")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	client, err := newGeminiClient(ctx, clientCfg)
	if err != nil {
		return nil, model.NewError(model.KindUnknown, string(ProviderTypeGemini),
			fmt.Sprintf("Failed to initialize Gemini client: %v", err), err)
	}
	p.models = client.Models

	config.Debugf("[Gemini] client ready (model=%s)", p.model)
	return p.models, nil
}

// candidates returns the configured model followed by the fallbacks, without
// duplicates.
func (p *GeminiProvider) candidates() []string {
	seen := make(map[string]bool, len(p.fallbacks)+1)
	out := make([]string, 0, len(p.fallbacks)+1)
	for _, name := range append([]string{p.model}, p.fallbacks...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// SendMessage implements model.Provider. All turns but the last form the
// history; the last is the active prompt.
func (p *GeminiProvider) SendMessage(ctx context.Context, messages []model.Message) (string, error) {
	system, turns := model.SplitSystem(messages)
	if len(turns) == 0 {
		return "", model.NewError(model.KindUnknown, string(ProviderTypeGemini), "No messages to send", nil)
	}

	models, err := p.ensureModels(ctx)
	if err != nil {
		return "", err
	}

	contents := buildGeminiHistory(turns[:len(turns)-1])
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: turns[len(turns)-1].Content}},
	})

	var genCfg *genai.GenerateContentConfig
	if system != "" {
		genCfg = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		}
	}

	tried := p.candidates()
	for _, candidate := range tried {
		resp, err := models.GenerateContent(ctx, candidate, contents, genCfg)
		if err == nil {
			config.Debugf("[Gemini] reply from %s", candidate)
			text := extractGeminiText(resp)
			if text == "" {
				return "No response from Gemini", nil
			}
			return text, nil
		}

		if isGeminiModelNotFound(err) {
			config.Debugf("[Gemini] model %s not available, trying next: %v", candidate, err)
			continue
		}

		return "", classifyGeminiError(err)
	}

	return "", model.NewError(model.KindNoCompatibleModel, string(ProviderTypeGemini),
		fmt.Sprintf("No compatible Gemini model found. Tried: %s", strings.Join(tried, ", ")), nil)
}

// TestConnection implements model.Provider with a one-turn probe.
func (p *GeminiProvider) TestConnection(ctx context.Context) bool {
	_, err := p.SendMessage(ctx, probeMessage)
	if err != nil {
		config.Debugf("[Gemini] connection test failed: %v", err)
		return false
	}
	return true
}

func (p *GeminiProvider) Name() string {
	return string(ProviderTypeGemini)
}

func (p *GeminiProvider) GetModel() string {
	return p.model
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// isGeminiModelNotFound matches on error text; the API has no stable code
// for an unknown model. Unrelated errors mentioning "not found" also match.
func isGeminiModelNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "404") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "is not found for API version")
}

// classifyGeminiError is the single place Gemini errors are normalized.
func classifyGeminiError(err error) *model.Error {
	backend := string(ProviderTypeGemini)
	msg := err.Error()

	var kind model.ErrorKind
	switch {
	case strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "API key not valid"):
		kind = model.KindAuthInvalid
	case strings.Contains(msg, "RATE_LIMIT_EXCEEDED") || strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		kind = model.KindRateLimited
	case isUnreachable(err):
		kind = model.KindUnreachable
	default:
		kind = model.KindUnknown
	}

	return model.NewError(kind, backend, userMessage(kind, "Gemini", err), err)
}
