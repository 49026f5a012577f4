package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.InDelta(t, -0.5, Mean([]float64{-2, 1}), 1e-12)
}

func TestRanks(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{
			name: "strictly increasing",
			in:   []float64{10, 20, 30},
			want: []float64{1, 2, 3},
		},
		{
			name: "unsorted",
			in:   []float64{30, 10, 20},
			want: []float64{3, 1, 2},
		},
		{
			name: "ties get average rank",
			in:   []float64{1, 2, 2, 3},
			want: []float64{1, 2.5, 2.5, 4},
		},
		{
			name: "all equal",
			in:   []float64{5, 5, 5},
			want: []float64{2, 2, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ranks(tt.in))
		})
	}
}

func TestSpearman(t *testing.T) {
	t.Run("perfect monotone agreement", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		y := []float64{10, 20, 30, 40, 50}
		assert.InDelta(t, 1.0, Spearman(x, y), 1e-12)
	})

	t.Run("perfect inversion", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		y := []float64{50, 40, 30, 20, 10}
		assert.InDelta(t, -1.0, Spearman(x, y), 1e-12)
	})

	t.Run("monotone transform does not change rank correlation", func(t *testing.T) {
		x := []float64{0.1, 0.5, 0.2, 0.9}
		y := []float64{1, 25, 4, 81} // squares of 10x, same ordering
		assert.InDelta(t, 1.0, Spearman(x, y), 1e-12)
	})

	t.Run("known mixed ordering", func(t *testing.T) {
		// Rank vectors (1,2,3,4) vs (2,1,4,3): rho = 1 - 6*4/(4*15) = 0.6
		x := []float64{1, 2, 3, 4}
		y := []float64{2, 1, 4, 3}
		assert.InDelta(t, 0.6, Spearman(x, y), 1e-12)
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		assert.Equal(t, 0.0, Spearman([]float64{1}, []float64{2}))
		assert.Equal(t, 0.0, Spearman([]float64{1, 2}, []float64{3}))
		assert.Equal(t, 0.0, Spearman([]float64{1, 2, 3}, []float64{7, 7, 7}))
	})
}
