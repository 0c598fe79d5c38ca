package testutil

import (
	"context"
	"sync"

	"baselinedev/model"
)

// MockProvider implements model.Provider and model.ModelLister for testing
type MockProvider struct {
	// Configurable responses
	SendMessageFunc    func(ctx context.Context, messages []model.Message) (string, error)
	TestConnectionFunc func(ctx context.Context) bool
	ListModelsFunc     func(ctx context.Context) ([]string, error)

	// State
	name         string
	currentModel string

	mu    sync.Mutex
	calls [][]model.Message
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(name, modelName string) *MockProvider {
	mock := &MockProvider{
		name:         name,
		currentModel: modelName,
	}
	mock.SendMessageFunc = mock.defaultSendMessage
	mock.TestConnectionFunc = mock.defaultTestConnection
	mock.ListModelsFunc = mock.defaultListModels
	return mock
}

func (m *MockProvider) defaultSendMessage(ctx context.Context, messages []model.Message) (string, error) {
	// Default: echo the last turn
	if len(messages) == 0 {
		return "Mock response", nil
	}
	return "Mock response: " + messages[len(messages)-1].Content, nil
}

func (m *MockProvider) defaultTestConnection(ctx context.Context) bool {
	return true
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]string, error) {
	return []string{"mock-model-1", "mock-model-2"}, nil
}

func (m *MockProvider) SendMessage(ctx context.Context, messages []model.Message) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.mu.Unlock()
	return m.SendMessageFunc(ctx, messages)
}

func (m *MockProvider) TestConnection(ctx context.Context) bool {
	return m.TestConnectionFunc(ctx)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]string, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

// Calls returns the conversations passed to SendMessage, in order.
func (m *MockProvider) Calls() [][]model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]model.Message(nil), m.calls...)
}

// MemorySecretStore implements model.SecretStore in memory and counts reads.
type MemorySecretStore struct {
	mu     sync.Mutex
	values map[string]string
	reads  int
}

func NewMemorySecretStore(values map[string]string) *MemorySecretStore {
	s := &MemorySecretStore{values: make(map[string]string)}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *MemorySecretStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.values[key]
}

func (s *MemorySecretStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Reads returns how many times Get was called.
func (s *MemorySecretStore) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
