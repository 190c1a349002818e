package acquire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
	"github.com/nexuslabs/nexus-core/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.Acquirer      = (*PDFAcquirer)(nil)
	_ driven.TextExtractor = (*PDFTextExtractor)(nil)
)

// mimeTypePDFExtract marks text already extracted from a PDF so the
// normaliser registry can apply PDF-specific cleanup.
const mimeTypePDFExtract = "text/x-pdf-extract"

// PDFAcquirer serves PDF projects. Text extraction happens once at upload
// time, so acquiring just hands back the stored content.
type PDFAcquirer struct{}

// NewPDFAcquirer creates a PDF acquirer.
func NewPDFAcquirer() *PDFAcquirer {
	return &PDFAcquirer{}
}

// Kind returns the project kind this acquirer handles.
func (a *PDFAcquirer) Kind() domain.ProjectKind {
	return domain.ProjectKindPDF
}

// Acquire returns the text extracted when the PDF was uploaded.
func (a *PDFAcquirer) Acquire(_ context.Context, project *domain.Project) (*driven.RawContent, error) {
	if strings.TrimSpace(project.Content) == "" {
		return nil, domain.ErrEmptyDocument
	}

	return &driven.RawContent{
		Content:  project.Content,
		Title:    project.Name,
		MimeType: mimeTypePDFExtract,
	}, nil
}

// PDFTextExtractor extracts plain text from uploaded PDF documents.
type PDFTextExtractor struct{}

// NewPDFTextExtractor creates a PDF text extractor.
func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{}
}

// ExtractText reads the PDF and returns its text content, pages separated by
// form feeds.
func (e *PDFTextExtractor) ExtractText(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to decode rather than losing the document
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\f")
		}
		sb.WriteString(text)
	}

	result := sb.String()
	if strings.TrimSpace(result) == "" {
		return "", domain.ErrEmptyDocument
	}

	return result, nil
}

// ExtractTextFromBytes is a convenience wrapper for in-memory uploads.
func (e *PDFTextExtractor) ExtractTextFromBytes(data []byte) (string, error) {
	return e.ExtractText(bytes.NewReader(data), int64(len(data)))
}
