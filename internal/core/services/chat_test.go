package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven/mocks"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driving"
	"github.com/nexuslabs/nexus-core/internal/retrieval"
)

// stubRetriever returns a canned retrieval result.
type stubRetriever struct {
	result *retrieval.Result
	err    error

	namespaces []string
	queries    []string
}

func (s *stubRetriever) Retrieve(ctx context.Context, namespace, query string) (*retrieval.Result, error) {
	s.namespaces = append(s.namespaces, namespace)
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type chatFixture struct {
	projectStore *mocks.MockProjectStore
	chatStore    *mocks.MockChatStore
	retriever    *stubRetriever
	svc          driving.ChatService
}

func newChatFixture(t *testing.T) (*chatFixture, *domain.Project) {
	t.Helper()

	f := &chatFixture{
		projectStore: mocks.NewMockProjectStore(),
		chatStore:    mocks.NewMockChatStore(),
		retriever:    &stubRetriever{result: &retrieval.Result{Answer: "Paris is the capital of France."}},
	}
	f.svc = NewChatService(f.projectStore, f.chatStore, f.retriever, nil)

	project := &domain.Project{
		ID:        domain.GenerateID(),
		UserID:    "user-1",
		Name:      "Geography",
		Kind:      domain.ProjectKindWeb,
		Namespace: "web-ns",
		Status:    domain.ProjectStatusReady,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := f.projectStore.Save(context.Background(), project); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return f, project
}

func TestChatService_Ask(t *testing.T) {
	ctx := context.Background()
	f, project := newChatFixture(t)

	msg, err := f.svc.Ask(ctx, "user-1", project.ID, "What is the capital of France?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if msg.Role != domain.MessageRoleSystem {
		t.Errorf("Expected system role, got %s", msg.Role)
	}
	if msg.Content != "Paris is the capital of France." {
		t.Errorf("Unexpected answer: %q", msg.Content)
	}

	if len(f.retriever.namespaces) != 1 || f.retriever.namespaces[0] != "web-ns" {
		t.Errorf("Expected retrieval against web-ns, got %v", f.retriever.namespaces)
	}

	// Both the question and the answer are persisted
	history, err := f.svc.History(ctx, "user-1", project.ID, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(history))
	}
	if history[0].Role != domain.MessageRoleUser {
		t.Errorf("Expected user message first, got %s", history[0].Role)
	}
}

func TestChatService_Ask_RetrievalFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	f, project := newChatFixture(t)
	f.retriever.err = errors.New("embedding service down")

	msg, err := f.svc.Ask(ctx, "user-1", project.ID, "anything?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if msg.Content != domain.NoAnswerMessage {
		t.Errorf("Expected fallback message, got %q", msg.Content)
	}
}

func TestChatService_Ask_EmptyAnswerFallsBack(t *testing.T) {
	ctx := context.Background()
	f, project := newChatFixture(t)
	f.retriever.result = &retrieval.Result{Answer: ""}

	msg, err := f.svc.Ask(ctx, "user-1", project.ID, "anything?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if msg.Content != domain.NoAnswerMessage {
		t.Errorf("Expected fallback message, got %q", msg.Content)
	}
}

func TestChatService_Ask_ProjectNotReady(t *testing.T) {
	ctx := context.Background()
	f, project := newChatFixture(t)

	for _, status := range []domain.ProjectStatus{
		domain.ProjectStatusPending,
		domain.ProjectStatusProcessing,
		domain.ProjectStatusFailed,
	} {
		if err := f.projectStore.UpdateStatus(ctx, project.ID, status, ""); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		_, err := f.svc.Ask(ctx, "user-1", project.ID, "too soon?")
		if !errors.Is(err, domain.ErrProjectNotReady) {
			t.Errorf("Status %s: expected ErrProjectNotReady, got %v", status, err)
		}
	}
}

func TestChatService_Ask_EmptyQuestion(t *testing.T) {
	ctx := context.Background()
	f, project := newChatFixture(t)

	_, err := f.svc.Ask(ctx, "user-1", project.ID, "   ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestChatService_Ask_NotOwner(t *testing.T) {
	ctx := context.Background()
	f, project := newChatFixture(t)

	_, err := f.svc.Ask(ctx, "intruder", project.ID, "let me in?")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if len(f.retriever.queries) != 0 {
		t.Error("Retrieval should not run for a forbidden project")
	}
}

func TestChatService_Ask_UnknownProject(t *testing.T) {
	ctx := context.Background()
	f, _ := newChatFixture(t)

	_, err := f.svc.Ask(ctx, "user-1", "no-such-project", "hello?")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestChatService_History_NotOwner(t *testing.T) {
	ctx := context.Background()
	f, project := newChatFixture(t)

	_, err := f.svc.History(ctx, "intruder", project.ID, 10)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestChatService_History_EmptyChat(t *testing.T) {
	ctx := context.Background()
	f, project := newChatFixture(t)

	history, err := f.svc.History(ctx, "user-1", project.ID, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("Expected empty history, got %d messages", len(history))
	}
}
