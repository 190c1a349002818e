package driving

import (
	"context"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// Ingestor runs the write path for a project: acquire, chunk, embed, index.
type Ingestor interface {
	// IngestProject processes one project end to end
	IngestProject(ctx context.Context, projectID string) (*domain.IngestResult, error)
}
