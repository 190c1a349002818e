package domain

import "time"

// ProjectKind identifies how a project's content is acquired
type ProjectKind string

const (
	// ProjectKindWeb projects are scraped from a source URL
	ProjectKindWeb ProjectKind = "web"
	// ProjectKindPDF projects carry text extracted from an uploaded PDF
	ProjectKindPDF ProjectKind = "pdf"
)

// ProjectStatus tracks the ingestion lifecycle of a project
type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusProcessing ProjectStatus = "processing"
	ProjectStatusReady      ProjectStatus = "ready"
	ProjectStatusFailed     ProjectStatus = "failed"
)

// Project is a user-owned document collection: one scraped web page or one
// uploaded PDF, chunked and indexed under its own vector namespace.
type Project struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Name      string        `json:"name"`
	Kind      ProjectKind   `json:"kind"`
	SourceURL string        `json:"source_url,omitempty"` // URL for web projects, blob URL for PDFs
	Namespace string        `json:"namespace"`            // vector index namespace
	Content   string        `json:"-"`                    // extracted text (set at upload for PDFs, at ingest for web)
	Status    ProjectStatus `json:"status"`
	Error     string        `json:"error,omitempty"` // generic failure message, never internal detail
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IngestResult summarises one ingestion run.
type IngestResult struct {
	ProjectID      string        `json:"project_id"`
	Sentences      int           `json:"sentences"`
	Chunks         int           `json:"chunks"`
	ChunksUpserted int           `json:"chunks_upserted"`
	Took           time.Duration `json:"took"`
}
