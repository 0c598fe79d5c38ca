package provider

import (
	"context"
	"fmt"

	"baselinedev/config"
)

type memorySecrets map[string]string

func (m memorySecrets) Get(key string) string {
	return m[key]
}

func (m memorySecrets) Set(key, value string) error {
	m[key] = value
	return nil
}

// ValidateAPIKey checks apiKey against backend by running TestConnection on
// a throwaway adapter. The key is never written to the real secret store.
// Used before persisting a new key.
func ValidateAPIKey(ctx context.Context, backend, apiKey string, settings Settings) (bool, error) {
	t := MapProviderIDToType(backend)

	credKey, err := config.CredentialKeyFor(string(t))
	if err != nil {
		return false, err
	}
	if apiKey == "" {
		return false, fmt.Errorf("API key is empty")
	}

	settings.Model = string(t)
	p, err := NewProvider(settings.AdapterConfig(), memorySecrets{credKey: apiKey})
	if err != nil {
		return false, err
	}

	valid := p.TestConnection(ctx)
	config.Debugf("[Provider] API key validation for %s: valid=%v", t, valid)
	return valid, nil
}
