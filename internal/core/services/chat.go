package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driving"
	"github.com/nexuslabs/nexus-core/internal/retrieval"
)

// Retriever answers a query against one vector namespace.
type Retriever interface {
	Retrieve(ctx context.Context, namespace, query string) (*retrieval.Result, error)
}

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// chatService implements the ChatService interface
type chatService struct {
	projectStore driven.ProjectStore
	chatStore    driven.ChatStore
	retriever    Retriever
	logger       *slog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	projectStore driven.ProjectStore,
	chatStore driven.ChatStore,
	retriever Retriever,
	logger *slog.Logger,
) driving.ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		projectStore: projectStore,
		chatStore:    chatStore,
		retriever:    retriever,
		logger:       logger,
	}
}

// Ask persists the question, runs the retrieval pipeline and persists the
// answer. Any retrieval failure becomes the generic no-answer message; the
// end user never sees internal error detail.
func (s *chatService) Ask(ctx context.Context, userID, projectID, question string) (*domain.Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrInvalidInput
	}

	project, err := s.ownedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != domain.ProjectStatusReady {
		return nil, domain.ErrProjectNotReady
	}

	chat, err := s.chatStore.FindOrCreateChat(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.chatStore.CreateMessage(ctx, chat.ID, domain.MessageRoleUser, question); err != nil {
		return nil, err
	}

	answer := domain.NoAnswerMessage
	result, err := s.retriever.Retrieve(ctx, project.Namespace, question)
	if err != nil {
		s.logger.Warn("retrieval failed", "project_id", projectID, "error", err)
	} else if result.Answer != "" {
		answer = result.Answer
	}

	return s.chatStore.CreateMessage(ctx, chat.ID, domain.MessageRoleSystem, answer)
}

// History retrieves the chat messages for a project in order
func (s *chatService) History(ctx context.Context, userID, projectID string, limit int) ([]*domain.Message, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	chat, err := s.chatStore.FindOrCreateChat(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.chatStore.ListMessages(ctx, chat.ID, limit)
}

func (s *chatService) ownedProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	project, err := s.projectStore.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return project, nil
}
