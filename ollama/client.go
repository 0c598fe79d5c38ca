package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "codellama"

	// GenerateTimeout bounds a single non-streaming completion.
	GenerateTimeout = 60 * time.Second
	// ListTimeout bounds a model listing, which doubles as a reachability probe.
	ListTimeout = 5 * time.Second
)

// Client wraps the Ollama API client for one endpoint and model.
type Client struct {
	client *api.Client
	model  string
}

func NewClient(baseURL, model string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &Client{
		client: api.NewClient(parsedURL, http.DefaultClient),
		model:  model,
	}, nil
}

// Generate runs a single non-streaming completion for prompt and returns the
// full response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, GenerateTimeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: &stream,
	}

	var out strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", err
	}

	return out.String(), nil
}

// ListModels returns the names of the models installed on the daemon.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ListTimeout)
	defer cancel()

	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(resp.Models))
	for i, m := range resp.Models {
		names[i] = m.Name
	}
	return names, nil
}

func (c *Client) GetModel() string {
	return c.model
}

// HasModel reports whether model appears in installed. A name without a tag
// matches its ":latest" form and vice versa.
func HasModel(installed []string, model string) bool {
	want := normalizeModelName(model)
	for _, name := range installed {
		if normalizeModelName(name) == want {
			return true
		}
	}
	return false
}

func normalizeModelName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.Contains(name, ":") {
		name += ":latest"
	}
	return name
}
