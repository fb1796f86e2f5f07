package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-5)
		})
	}
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5.0, Norm([]float32{3, 4}), 1e-5)
	assert.Equal(t, float32(0), Norm(nil))
	assert.Equal(t, float32(0), Norm([]float32{0, 0}))
}

func TestCosineSimilarity(t *testing.T) {
	s := float32(math.Sqrt2 / 2)

	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"Scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"Orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"Opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"Diagonal", []float32{0.7071, 0.7071}, []float32{1, 0}, s},
		{"DiagonalNegative", []float32{0.7071, 0.7071}, []float32{-1, 0}, -s},
		{"ZeroLeft", []float32{0, 0}, []float32{1, 0}, 0},
		{"ZeroRight", []float32{1, 0}, []float32{0, 0}, 0},
		{"Tiny", []float32{1e-12, 0}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-4)
			assert.GreaterOrEqual(t, got, float32(-1))
			assert.LessOrEqual(t, got, float32(1))
		})
	}
}

func TestCosineSimilarityMatchesReference(t *testing.T) {
	a := make([]float32, 67)
	b := make([]float32, 67)
	for i := range a {
		a[i] = float32(math.Sin(float64(i)))
		b[i] = float32(math.Cos(float64(i) * 0.5))
	}

	want := float64(Dot(a, b)) / (math.Sqrt(float64(Dot(a, a))) * math.Sqrt(float64(Dot(b, b))))
	assert.InDelta(t, want, CosineSimilarity(a, b), 1e-4)
	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarityWithNorm(a, b, Norm(a)))
}

func TestCosineSimilarityWithNormUsesGivenNorm(t *testing.T) {
	a := []float32{3, 4}
	b := []float32{6, 8}

	assert.InDelta(t, 1.0, CosineSimilarityWithNorm(a, b, 5), 1e-6)
	// dot = 50, |b| = 10: a norm of 10 halves the score.
	assert.InDelta(t, 0.5, CosineSimilarityWithNorm(a, b, 10), 1e-6)
	assert.Equal(t, float32(0), CosineSimilarityWithNorm(a, b, 0))
}

func TestNormMatchesReference(t *testing.T) {
	for _, n := range []int{1, 3, 4, 7, 16, 33, 129} {
		v := make([]float32, n)
		for i := range v {
			v[i] = float32(i%5) - 1.5
		}

		want := math.Sqrt(float64(Dot(v, v)))
		assert.InDeltaf(t, want, Norm(v), 1e-4, "len %d", n)
	}
}
