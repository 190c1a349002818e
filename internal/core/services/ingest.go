package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driving"
)

// Chunker turns a document into embedded chunks.
type Chunker interface {
	ProcessText(ctx context.Context, text string) (*domain.ChunkingResult, error)
}

// Ensure ingestService implements Ingestor
var _ driving.Ingestor = (*ingestService)(nil)

// ingestService runs the write path for a project: acquire the content,
// normalise it, chunk and embed it, and index the chunks under the project's
// vector namespace. A distributed lock keeps concurrent runs for the same
// project out.
type ingestService struct {
	projectStore driven.ProjectStore
	acquirers    driven.AcquirerFactory
	normalisers  driven.NormaliserRegistry
	chunker      Chunker
	vectorIndex  driven.VectorIndex
	lock         driven.DistributedLock
	lockTTL      time.Duration
	logger       *slog.Logger
}

// NewIngestService creates a new Ingestor
func NewIngestService(
	projectStore driven.ProjectStore,
	acquirers driven.AcquirerFactory,
	normalisers driven.NormaliserRegistry,
	chunker Chunker,
	vectorIndex driven.VectorIndex,
	lock driven.DistributedLock,
	logger *slog.Logger,
) driving.Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestService{
		projectStore: projectStore,
		acquirers:    acquirers,
		normalisers:  normalisers,
		chunker:      chunker,
		vectorIndex:  vectorIndex,
		lock:         lock,
		lockTTL:      10 * time.Minute,
		logger:       logger,
	}
}

// IngestProject processes one project end to end
func (s *ingestService) IngestProject(ctx context.Context, projectID string) (*domain.IngestResult, error) {
	lockName := "ingest:" + projectID
	acquired, err := s.lock.Acquire(ctx, lockName, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquiring ingest lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrIngestInProgress
	}
	defer func() {
		_ = s.lock.Release(context.WithoutCancel(ctx), lockName)
	}()

	project, err := s.projectStore.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.projectStore.UpdateStatus(ctx, projectID, domain.ProjectStatusProcessing, ""); err != nil {
		return nil, err
	}

	result, err := s.run(ctx, project)
	if err != nil {
		// The stored failure message stays generic; detail goes to the log.
		s.logger.Error("ingestion failed", "project_id", projectID, "error", err)
		_ = s.projectStore.UpdateStatus(ctx, projectID, domain.ProjectStatusFailed, "processing failed")
		return nil, err
	}

	if err := s.projectStore.UpdateStatus(ctx, projectID, domain.ProjectStatusReady, ""); err != nil {
		return nil, err
	}

	s.logger.Info("ingestion complete",
		"project_id", projectID,
		"sentences", result.Sentences,
		"chunks", result.Chunks,
		"took", result.Took)
	return result, nil
}

func (s *ingestService) run(ctx context.Context, project *domain.Project) (*domain.IngestResult, error) {
	started := time.Now()

	text, err := s.acquireText(ctx, project)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	chunked, err := s.chunker.ProcessText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("chunking: %w", err)
	}

	records := make([]domain.VectorRecord, 0, len(chunked.Chunks))
	for i, chunk := range chunked.Chunks {
		if i >= len(chunked.ChunkEmbeddings) || len(chunked.ChunkEmbeddings[i]) == 0 {
			continue
		}
		records = append(records, domain.VectorRecord{
			ID:     contentHash(chunk.Text),
			Values: chunked.ChunkEmbeddings[i],
			Metadata: map[string]string{
				"text": chunk.Text,
			},
		})
	}

	if err := s.vectorIndex.Upsert(ctx, project.Namespace, records); err != nil {
		return nil, fmt.Errorf("indexing chunks: %w", err)
	}

	sentences := 0
	if n := len(chunked.Chunks); n > 0 {
		sentences = chunked.Chunks[n-1].EndIndex + 1
	}

	return &domain.IngestResult{
		ProjectID:      project.ID,
		Sentences:      sentences,
		Chunks:         len(chunked.Chunks),
		ChunksUpserted: len(records),
		Took:           time.Since(started),
	}, nil
}

// acquireText fetches and normalises the project's raw content. PDF projects
// already carry extracted text; web projects go through their acquirer and
// the scrape cache behind it.
func (s *ingestService) acquireText(ctx context.Context, project *domain.Project) (string, error) {
	acquirer, err := s.acquirers.Create(project.Kind)
	if err != nil {
		return "", err
	}

	raw, err := acquirer.Acquire(ctx, project)
	if err != nil {
		return "", fmt.Errorf("acquiring content: %w", err)
	}

	text := raw.Content
	if n := s.normalisers.Get(raw.MimeType); n != nil {
		text = n.Normalise(raw.Content, raw.MimeType)
	}

	// Persist the extracted text so re-ingestion and inspection don't
	// re-fetch the source.
	if project.Kind == domain.ProjectKindWeb {
		if err := s.projectStore.UpdateContent(ctx, project.ID, text); err != nil {
			s.logger.Warn("failed to persist extracted text", "project_id", project.ID, "error", err)
		}
	}

	return text, nil
}

// contentHash derives the idempotent vector ID for a chunk.
func contentHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
