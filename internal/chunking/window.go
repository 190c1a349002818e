package chunking

import (
	"strings"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// BuildSentenceUnits wraps each sentence in a context window spanning
// bufferSize neighbours on either side, clamped at the document edges. The
// window text, not the bare sentence, is what gets embedded for boundary
// detection.
func BuildSentenceUnits(sentences []string, bufferSize int) []domain.SentenceUnit {
	if bufferSize < 0 {
		bufferSize = 0
	}

	units := make([]domain.SentenceUnit, len(sentences))
	for i, s := range sentences {
		lo := i - bufferSize
		if lo < 0 {
			lo = 0
		}
		hi := i + bufferSize
		if hi > len(sentences)-1 {
			hi = len(sentences) - 1
		}

		units[i] = domain.SentenceUnit{
			Text:       s,
			Index:      i,
			WindowText: strings.Join(sentences[lo:hi+1], " "),
		}
	}
	return units
}
