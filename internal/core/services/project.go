package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driving"
)

// Ensure projectService implements ProjectService
var _ driving.ProjectService = (*projectService)(nil)

// projectService implements the ProjectService interface
type projectService struct {
	projectStore driven.ProjectStore
	chatStore    driven.ChatStore
	vectorIndex  driven.VectorIndex
	taskQueue    driven.TaskQueue
	extractor    driven.TextExtractor
	logger       *slog.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectStore driven.ProjectStore,
	chatStore driven.ChatStore,
	vectorIndex driven.VectorIndex,
	taskQueue driven.TaskQueue,
	extractor driven.TextExtractor,
	logger *slog.Logger,
) driving.ProjectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &projectService{
		projectStore: projectStore,
		chatStore:    chatStore,
		vectorIndex:  vectorIndex,
		taskQueue:    taskQueue,
		extractor:    extractor,
		logger:       logger,
	}
}

// CreateWebProject records a web project and enqueues its ingestion
func (s *projectService) CreateWebProject(ctx context.Context, userID string, req driving.CreateWebProjectRequest) (*domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	parsed, err := url.Parse(req.SourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: source url must be http(s)", domain.ErrInvalidInput)
	}

	project := newProject(userID, name, domain.ProjectKindWeb)
	project.SourceURL = parsed.String()

	if err := s.projectStore.Save(ctx, project); err != nil {
		return nil, err
	}

	return s.enqueueIngest(ctx, project)
}

// CreatePDFProject extracts the PDF text, records the project and enqueues
// its ingestion
func (s *projectService) CreatePDFProject(ctx context.Context, userID string, req driving.CreatePDFProjectRequest) (*domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || userID == "" || req.File == nil || req.Size <= 0 {
		return nil, domain.ErrInvalidInput
	}

	text, err := s.extractor.ExtractText(req.File, req.Size)
	if err != nil {
		return nil, fmt.Errorf("extracting pdf text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	project := newProject(userID, name, domain.ProjectKindPDF)
	project.Content = text

	if err := s.projectStore.Save(ctx, project); err != nil {
		return nil, err
	}
	if err := s.projectStore.UpdateContent(ctx, project.ID, text); err != nil {
		return nil, err
	}

	return s.enqueueIngest(ctx, project)
}

// enqueueIngest queues the background ingestion for a freshly saved project.
// A queue failure marks the project failed rather than leaving it pending
// forever.
func (s *projectService) enqueueIngest(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	task := domain.NewIngestTask(project.ID)
	if err := s.taskQueue.Enqueue(ctx, task); err != nil {
		s.logger.Error("failed to enqueue ingest task", "project_id", project.ID, "error", err)
		_ = s.projectStore.UpdateStatus(ctx, project.ID, domain.ProjectStatusFailed, "processing failed")
		return nil, err
	}

	s.logger.Info("project created", "project_id", project.ID, "kind", project.Kind, "task_id", task.ID)
	return project, nil
}

// Get retrieves a project the user owns
func (s *projectService) Get(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	project, err := s.projectStore.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return project, nil
}

// List retrieves all projects for a user, newest first
func (s *projectService) List(ctx context.Context, userID string) ([]*domain.Project, error) {
	return s.projectStore.ListByUser(ctx, userID)
}

// Delete removes a project, its chat and its vector namespace
func (s *projectService) Delete(ctx context.Context, userID, projectID string) error {
	project, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return err
	}

	if err := s.vectorIndex.DeleteNamespace(ctx, project.Namespace); err != nil {
		// Orphaned vectors are harmless; the namespace is never queried again.
		s.logger.Warn("failed to delete vector namespace", "namespace", project.Namespace, "error", err)
	}
	if err := s.chatStore.DeleteByProject(ctx, projectID); err != nil {
		s.logger.Warn("failed to delete project chat", "project_id", projectID, "error", err)
	}

	return s.projectStore.Delete(ctx, projectID)
}

// newProject builds a pending project with its own vector namespace.
func newProject(userID, name string, kind domain.ProjectKind) *domain.Project {
	id := domain.GenerateID()
	now := time.Now()
	return &domain.Project{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Kind:      kind,
		Namespace: fmt.Sprintf("%s-%s", kind, id),
		Status:    domain.ProjectStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
