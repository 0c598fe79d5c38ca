package provider

import (
	"context"
	"fmt"
	"sync"

	"baselinedev/config"
	"baselinedev/model"
	"baselinedev/ollama"
)

// Factory builds an adapter from a Config. NewProvider is the default.
type Factory func(cfg Config, secrets model.SecretStore) (model.Provider, error)

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithFactory replaces the adapter factory.
func WithFactory(f Factory) RouterOption {
	return func(r *Router) {
		r.factory = f
	}
}

// Router owns at most one live adapter and rebuilds it whenever the
// configured backend changes. It never retains conversation state.
type Router struct {
	mu       sync.Mutex
	settings func() Settings
	secrets  model.SecretStore
	factory  Factory

	current model.Provider
	key     Config
}

// NewRouter creates a Router that reads settings on every call, so config
// edits take effect without rebuilding the router.
func NewRouter(settings func() Settings, secrets model.SecretStore, opts ...RouterOption) *Router {
	r := &Router{
		settings: settings,
		secrets:  secrets,
		factory:  NewProvider,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the cached adapter when the adapter config is unchanged,
// otherwise builds and caches a new one.
func (r *Router) Resolve() (model.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := r.settings().AdapterConfig()
	if r.current != nil && r.key == cfg {
		return r.current, nil
	}

	p, err := r.factory(cfg, r.secrets)
	if err != nil {
		config.Debugf("[Router] failed to build adapter %s: %v", cfg.Type, err)
		return nil, err
	}

	if r.current != nil {
		config.Debugf("[Router] backend changed %s -> %s", r.key.Type, cfg.Type)
	}
	r.current = p
	r.key = cfg
	config.Debugf("[Router] using %s (model=%s)", cfg.Type, p.GetModel())

	return p, nil
}

// SendMessage sends the conversation to the configured backend.
func (r *Router) SendMessage(ctx context.Context, messages []model.Message) (string, error) {
	p, err := r.Resolve()
	if err != nil {
		return "", err
	}
	return p.SendMessage(ctx, messages)
}

// TestConnection reports whether the configured backend is usable. Errors,
// including an unknown backend, are reported as false.
func (r *Router) TestConnection(ctx context.Context) bool {
	p, err := r.Resolve()
	if err != nil {
		return false
	}
	return p.TestConnection(ctx)
}

// Reset discards the cached adapter. The next call rebuilds it and re-reads
// credentials. Call it after a key or backend change.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = nil
	r.key = Config{}
	config.Debugf("[Router] reset")
}

// CurrentType returns the configured backend type.
func (r *Router) CurrentType() ProviderType {
	return r.settings().AdapterConfig().Type
}

// ListLocalModels lists models installed on the local daemon. It fails for
// backends that cannot enumerate models.
func (r *Router) ListLocalModels(ctx context.Context) ([]string, error) {
	p, err := r.Resolve()
	if err != nil {
		return nil, err
	}

	lister, ok := p.(model.ModelLister)
	if !ok {
		return nil, fmt.Errorf("backend %s does not list local models", p.Name())
	}
	return lister.ListModels(ctx)
}

// MissingModelWarning returns a warning when the configured local model is
// not installed, or "" when there is nothing to report. Listing failures
// are swallowed.
func (r *Router) MissingModelWarning(ctx context.Context) string {
	if r.CurrentType() != ProviderTypeOllama {
		return ""
	}

	models, err := r.ListLocalModels(ctx)
	if err != nil {
		config.Debugf("[Router] model listing failed: %v", err)
		return ""
	}

	p, err := r.Resolve()
	if err != nil {
		return ""
	}

	name := p.GetModel()
	if ollama.HasModel(models, name) {
		return ""
	}
	return fmt.Sprintf("Model %q is not installed. Available models: %v. Run: ollama pull %s", name, models, name)
}
