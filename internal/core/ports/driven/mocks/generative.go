package mocks

import (
	"context"
	"sync"
)

// MockGenerativeService is a mock implementation of GenerativeService for
// testing. By default it echoes a canned response; GenerateFn overrides the
// behavior per test.
type MockGenerativeService struct {
	mu      sync.Mutex
	prompts []string

	GenerateFn func(prompt string) (string, error)
	Response   string
	Err        error
}

// NewMockGenerativeService creates a new MockGenerativeService
func NewMockGenerativeService() *MockGenerativeService {
	return &MockGenerativeService{Response: "mock response"}
}

func (m *MockGenerativeService) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockGenerativeService) Model() string {
	return "mock-generative-model"
}

func (m *MockGenerativeService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockGenerativeService) Close() error {
	return nil
}

// Prompts returns every prompt received, in arrival order.
func (m *MockGenerativeService) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
