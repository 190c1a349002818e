package chunking

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"zero norm left", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"zero norm right", []float32{1, 1}, []float32{0, 0}, 0.0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
		{"both empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	v := []float32{0.3, -1.7, 2.2, 0.01}
	got := CosineSimilarity(v, v)
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("expected self-similarity 1.0, got %f", got)
	}
}

func TestCosineDistance(t *testing.T) {
	d := CosineDistance([]float32{1, 0}, []float32{0, 1})
	if math.Abs(d-1.0) > 1e-9 {
		t.Errorf("expected distance 1.0 for orthogonal vectors, got %f", d)
	}

	d = CosineDistance([]float32{2, 2}, []float32{2, 2})
	if math.Abs(d) > 1e-6 {
		t.Errorf("expected distance 0 for identical vectors, got %f", d)
	}
}

func TestMeanVector(t *testing.T) {
	got := MeanVector([][]float32{
		{1, 2, 3},
		{3, 4, 5},
	})
	want := []float32{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d dims, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("dim %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestMeanVector_Single(t *testing.T) {
	got := MeanVector([][]float32{{0.5, -0.5}})
	if len(got) != 2 || got[0] != 0.5 || got[1] != -0.5 {
		t.Errorf("expected input vector back, got %v", got)
	}
}

func TestMeanVector_Empty(t *testing.T) {
	got := MeanVector(nil)
	if got == nil {
		t.Fatal("expected empty vector, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected empty vector, got %v", got)
	}
}
