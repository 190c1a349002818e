package chunking

import (
	"math"
	"sort"

	"github.com/nexuslabs/nexus-core/internal/core/domain"
)

// ComputeDistances fills DistanceToNext on each unit with the cosine
// distance between its window embedding and its successor's. Pairs where
// either side is missing an embedding are left nil. Returns the defined
// distances in order.
func ComputeDistances(units []domain.SentenceUnit) []float64 {
	var distances []float64
	for i := 0; i < len(units)-1; i++ {
		if units[i].WindowEmbedding == nil || units[i+1].WindowEmbedding == nil {
			units[i].DistanceToNext = nil
			continue
		}
		d := CosineDistance(units[i].WindowEmbedding, units[i+1].WindowEmbedding)
		units[i].DistanceToNext = &d
		distances = append(distances, d)
	}
	return distances
}

// Percentile returns the p-th percentile of values using linear
// interpolation between the two nearest ranks. p is clamped to [0, 100].
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// DetectBoundaries returns the indices i where the distance between unit i
// and unit i+1 strictly exceeds the percentile threshold of all defined
// distances. A boundary at i means unit i ends a chunk. Returns
// ErrNoBoundarySignal when no pair has a defined distance.
func DetectBoundaries(units []domain.SentenceUnit, percentileThreshold float64) ([]int, error) {
	distances := make([]float64, 0, len(units))
	for i := 0; i < len(units)-1; i++ {
		if units[i].DistanceToNext != nil {
			distances = append(distances, *units[i].DistanceToNext)
		}
	}
	if len(distances) == 0 {
		return nil, domain.ErrNoBoundarySignal
	}

	threshold := Percentile(distances, percentileThreshold)

	var boundaries []int
	for i := 0; i < len(units)-1; i++ {
		if d := units[i].DistanceToNext; d != nil && *d > threshold {
			boundaries = append(boundaries, i)
		}
	}
	return boundaries, nil
}
