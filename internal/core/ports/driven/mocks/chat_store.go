package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// MockChatStore is an in-memory mock implementation of ChatStore for testing
type MockChatStore struct {
	mu       sync.Mutex
	chats    map[string]*domain.Chat // projectID -> chat
	messages map[string][]*domain.Message

	CreateMessageErr error
}

// NewMockChatStore creates a new MockChatStore
func NewMockChatStore() *MockChatStore {
	return &MockChatStore{
		chats:    make(map[string]*domain.Chat),
		messages: make(map[string][]*domain.Message),
	}
}

func (m *MockChatStore) FindOrCreateChat(ctx context.Context, projectID string) (*domain.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chat, ok := m.chats[projectID]; ok {
		return chat, nil
	}
	chat := &domain.Chat{
		ID:        domain.GenerateID(),
		ProjectID: projectID,
		CreatedAt: time.Now(),
	}
	m.chats[projectID] = chat
	return chat, nil
}

func (m *MockChatStore) CreateMessage(ctx context.Context, chatID string, role domain.MessageRole, content string) (*domain.Message, error) {
	if m.CreateMessageErr != nil {
		return nil, m.CreateMessageErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := &domain.Message{
		ID:        domain.GenerateID(),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	m.messages[chatID] = append(m.messages[chatID], msg)
	return msg, nil
}

func (m *MockChatStore) ListMessages(ctx context.Context, chatID string, limit int) ([]*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[chatID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]*domain.Message(nil), msgs...), nil
}

func (m *MockChatStore) DeleteByProject(ctx context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chat, ok := m.chats[projectID]; ok {
		delete(m.messages, chat.ID)
		delete(m.chats, projectID)
	}
	return nil
}
