package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore implements driven.ChatStore using PostgreSQL
type ChatStore struct {
	db *DB
}

// NewChatStore creates a new ChatStore
func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

// FindOrCreateChat returns the chat for a project, creating it if absent.
// The unique constraint on project_id makes concurrent creates converge on
// one row.
func (s *ChatStore) FindOrCreateChat(ctx context.Context, projectID string) (*domain.Chat, error) {
	insert := `
		INSERT INTO chats (id, project_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, insert, domain.GenerateID(), projectID, time.Now()); err != nil {
		return nil, err
	}

	var chat domain.Chat
	query := `SELECT id, project_id, created_at FROM chats WHERE project_id = $1`
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(
		&chat.ID,
		&chat.ProjectID,
		&chat.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &chat, nil
}

// CreateMessage appends a message to a chat
func (s *ChatStore) CreateMessage(ctx context.Context, chatID string, role domain.MessageRole, content string) (*domain.Message, error) {
	msg := &domain.Message{
		ID:        domain.GenerateID(),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO messages (id, chat_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ChatID,
		string(msg.Role),
		msg.Content,
		msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// ListMessages retrieves messages for a chat in chronological order
func (s *ChatStore) ListMessages(ctx context.Context, chatID string, limit int) ([]*domain.Message, error) {
	// Take the newest rows, then flip to chronological order
	query := `
		SELECT id, chat_id, role, content, created_at
		FROM (
			SELECT id, chat_id, role, content, created_at
			FROM messages
			WHERE chat_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var msg domain.Message
		err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.Role,
			&msg.Content,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// DeleteByProject removes the chat and messages for a project.
// Messages cascade from the chat row.
func (s *ChatStore) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE project_id = $1`, projectID)
	return err
}
