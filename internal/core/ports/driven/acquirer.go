package driven

import (
	"context"
	"io"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// RawContent is document text as acquired, before normalisation.
type RawContent struct {
	Content  string
	Title    string
	MimeType string
}

// Acquirer fetches the raw content for a project.
// Web projects are scraped from their source URL; PDF projects already carry
// text extracted at upload time.
type Acquirer interface {
	// Acquire returns the raw content for a project
	Acquire(ctx context.Context, project *domain.Project) (*RawContent, error)

	// Kind returns the project kind this acquirer handles
	Kind() domain.ProjectKind
}

// AcquirerFactory selects the acquirer for a project kind.
type AcquirerFactory interface {
	// Create returns an acquirer for the given kind
	Create(kind domain.ProjectKind) (Acquirer, error)
}

// TextExtractor extracts plain text from an uploaded binary document.
type TextExtractor interface {
	// ExtractText reads the document and returns its text content
	ExtractText(r io.ReaderAt, size int64) (string, error)
}
