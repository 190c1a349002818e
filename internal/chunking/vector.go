package chunking

import "math"

// CosineSimilarity computes the cosine similarity between two vectors.
// A zero-norm vector has similarity 0 with anything, including itself.
// Mismatched dimensions also yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance is 1 - CosineSimilarity.
func CosineDistance(a, b []float32) float64 {
	return 1 - CosineSimilarity(a, b)
}

// MeanVector reduces a list of equal-dimension vectors to their element-wise
// arithmetic mean. An empty input returns an empty vector, the "no
// representative vector" sentinel; callers must check for emptiness.
func MeanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return []float32{}
	}

	dims := len(vectors[0])
	sums := make([]float64, dims)
	for _, v := range vectors {
		for i := 0; i < dims && i < len(v); i++ {
			sums[i] += float64(v[i])
		}
	}

	mean := make([]float32, dims)
	for i, s := range sums {
		mean[i] = float32(s / float64(len(vectors)))
	}
	return mean
}
