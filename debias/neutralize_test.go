package debias

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeutralize(t *testing.T) {
	tests := []struct {
		name        string
		u           []float64
		components  [][]float64
		want        []float64
		wantSkipped bool
	}{
		{
			name:       "unit direction",
			u:          []float64{0.5, 0.5, 0},
			components: [][]float64{{1, 0, 0}},
			want:       []float64{0, 0.5, 0},
		},
		{
			name:       "non unit direction",
			u:          []float64{0.5, 0.5, 0},
			components: [][]float64{{2, 0, 0}},
			want:       []float64{0, 0.5, 0},
		},
		{
			name:       "subspace",
			u:          []float64{1, 2, 3},
			components: [][]float64{{1, 0, 0}, {0, 1, 0}},
			want:       []float64{0, 0, 3},
		},
		{
			name:        "degenerate direction",
			u:           []float64{1, 2, 3},
			components:  [][]float64{{0, 0, 0}},
			want:        []float64{1, 2, 3},
			wantSkipped: true,
		},
		{
			name:        "one degenerate component",
			u:           []float64{1, 2, 3},
			components:  [][]float64{{0, 0, 0}, {0, 0, 1}},
			want:        []float64{1, 2, 0},
			wantSkipped: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped := Neutralize(tt.u, tt.components)
			assertVecInDelta(t, tt.want, got, tol)
			assert.Equal(t, tt.wantSkipped, skipped)
		})
	}
}

func TestNeutralize_DoesNotModifyInput(t *testing.T) {
	u := []float64{0.5, 0.5, 0}
	_, _ = Neutralize(u, [][]float64{{1, 0, 0}})
	assert.Equal(t, []float64{0.5, 0.5, 0}, u)
}

func TestProject(t *testing.T) {
	got := Project([]float64{1, 2, 3}, [][]float64{{1, 0, 0}, {0, 0, 0}, {0, 0, 2}})
	assertVecInDelta(t, []float64{1, 0, 3}, got, tol)
}

func TestNormalize(t *testing.T) {
	v := []float64{3, 4}
	assert.InDelta(t, 5.0, normalize(v), tol)
	assertVecInDelta(t, []float64{0.6, 0.8}, v, tol)

	zero := []float64{0, 0}
	assert.Equal(t, 1.0, normalize(zero))
	assert.Equal(t, []float64{0, 0}, zero)
}

func TestNeutralizeInto_Restore(t *testing.T) {
	components := [][]float64{{0.6, 0.8, 0}, {0, 0, 0}, {0, 0, 1}}
	u := []float64{1.5, -2, 0.25}

	v := append([]float64(nil), u...)
	coef := make([]float64, len(components))
	skipped := neutralizeInto(v, coef, components)
	assert.True(t, skipped)
	assertVecInDelta(t, []float64{-0.7, 0, 0.25}, coef, tol)
	assertVecInDelta(t, []float64{1.92, -1.44, 0}, v, tol)

	want, _ := Neutralize(u, components)
	assert.Equal(t, want, v)

	n := normalize(v)
	restoreInto(v, coef, n, components)
	assertVecInDelta(t, u, v, tol)
}
