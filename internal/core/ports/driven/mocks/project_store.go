package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// MockProjectStore is an in-memory mock implementation of ProjectStore for testing
type MockProjectStore struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project

	SaveErr error
}

// NewMockProjectStore creates a new MockProjectStore
func NewMockProjectStore() *MockProjectStore {
	return &MockProjectStore{
		projects: make(map[string]*domain.Project),
	}
}

func (m *MockProjectStore) Save(ctx context.Context, project *domain.Project) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *project
	m.projects[project.ID] = &cp
	return nil
}

func (m *MockProjectStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProjectStore) ListByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			cp := *p
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockProjectStore) UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.Error = errMsg
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MockProjectStore) UpdateContent(ctx context.Context, id string, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Content = content
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MockProjectStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}
