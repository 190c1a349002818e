package mocks

import (
	"context"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// MockAcquirer is a mock implementation of Acquirer for testing
type MockAcquirer struct {
	kind    domain.ProjectKind
	Content *driven.RawContent
	Err     error
}

// NewMockAcquirer creates a mock acquirer for a project kind.
func NewMockAcquirer(kind domain.ProjectKind) *MockAcquirer {
	return &MockAcquirer{
		kind: kind,
		Content: &driven.RawContent{
			Content:  "Mock content. It has two sentences.",
			MimeType: "text/plain",
		},
	}
}

func (m *MockAcquirer) Acquire(ctx context.Context, project *domain.Project) (*driven.RawContent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Content, nil
}

func (m *MockAcquirer) Kind() domain.ProjectKind {
	return m.kind
}

// MockAcquirerFactory is a mock implementation of AcquirerFactory for testing
type MockAcquirerFactory struct {
	acquirers map[domain.ProjectKind]driven.Acquirer
}

// NewMockAcquirerFactory creates a factory pre-loaded with mock acquirers
// for web and pdf projects.
func NewMockAcquirerFactory() *MockAcquirerFactory {
	return &MockAcquirerFactory{
		acquirers: map[domain.ProjectKind]driven.Acquirer{
			domain.ProjectKindWeb: NewMockAcquirer(domain.ProjectKindWeb),
			domain.ProjectKindPDF: NewMockAcquirer(domain.ProjectKindPDF),
		},
	}
}

// Set replaces the acquirer for a kind.
func (m *MockAcquirerFactory) Set(kind domain.ProjectKind, a driven.Acquirer) {
	m.acquirers[kind] = a
}

func (m *MockAcquirerFactory) Create(kind domain.ProjectKind) (driven.Acquirer, error) {
	a, ok := m.acquirers[kind]
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	return a, nil
}
