package chunking

import (
	"strings"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// AssembleChunks groups consecutive sentence units into chunks split at the
// given boundary indices. A boundary at index i closes the chunk ending with
// unit i. Every unit lands in exactly one chunk, ranges are contiguous, and
// the final chunk always runs through the last unit.
func AssembleChunks(units []domain.SentenceUnit, boundaries []int) []domain.Chunk {
	if len(units) == 0 {
		return nil
	}

	isBoundary := make(map[int]struct{}, len(boundaries))
	for _, b := range boundaries {
		if b >= 0 && b < len(units)-1 {
			isBoundary[b] = struct{}{}
		}
	}

	var chunks []domain.Chunk
	start := 0
	for i := range units {
		_, cut := isBoundary[i]
		if !cut && i != len(units)-1 {
			continue
		}

		texts := make([]string, 0, i-start+1)
		for j := start; j <= i; j++ {
			texts = append(texts, units[j].Text)
		}
		chunks = append(chunks, domain.Chunk{
			Text:       strings.Join(texts, " "),
			StartIndex: start,
			EndIndex:   i,
		})
		start = i + 1
	}
	return chunks
}
