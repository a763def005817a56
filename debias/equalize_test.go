package debias

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func neutralPart(x []float64, components [][]float64) []float64 {
	out, _ := Neutralize(x, components)
	return out
}

func TestEqualize_Pair(t *testing.T) {
	v := [][]float64{{1, 0, 0}}
	out, skipped := Equalize([][]float64{{1, 0.2, 0}, {-0.6, 0.2, 0}}, v)
	require.False(t, skipped)
	require.Len(t, out, 2)

	z := math.Sqrt(0.96)
	assertVecInDelta(t, []float64{z, 0.2, 0}, out[0], tol)
	assertVecInDelta(t, []float64{-z, 0.2, 0}, out[1], tol)
}

func TestEqualize_PairSymmetry(t *testing.T) {
	v := [][]float64{{0.6, 0.8, 0, 0}}
	a := []float64{0.3, 0.1, 0.2, -0.1}
	b := []float64{-0.1, -0.2, 0.25, 0.05}

	out, _ := Equalize([][]float64{a, b}, v)

	pa := floats.Dot(out[0], v[0])
	pb := floats.Dot(out[1], v[0])
	assert.InDelta(t, math.Abs(pa), math.Abs(pb), tol)
	assert.InDelta(t, -pa, pb, tol)
	assert.InDelta(t, norm(out[0]), norm(out[1]), tol)
	assert.InDelta(t, 1.0, norm(out[0]), tol)
	assertVecInDelta(t, neutralPart(out[0], v), neutralPart(out[1], v), tol)
	// a sits on the positive side of v before and after
	assert.Greater(t, pa, 0.0)
}

func TestEqualize_Idempotent(t *testing.T) {
	v := [][]float64{{0.6, 0.8, 0, 0}}
	once, _ := Equalize([][]float64{{0.3, 0.1, 0.2, -0.1}, {-0.1, -0.2, 0.25, 0.05}}, v)
	twice, _ := Equalize(once, v)

	for i := range once {
		assertVecInDelta(t, once[i], twice[i], 1e-9)
	}
}

func TestEqualize_DegenerateFallback(t *testing.T) {
	v := [][]float64{{1, 0, 0}}
	// both members project to 0.5 on v
	out, skipped := Equalize([][]float64{{0.5, 0.1, 0}, {0.5, -0.1, 0}}, v)
	require.False(t, skipped)

	assertVecInDelta(t, []float64{1, 0, 0}, out[0], tol)
	assertVecInDelta(t, []float64{-1, 0, 0}, out[1], tol)
	for _, x := range out {
		for _, c := range x {
			assert.False(t, math.IsNaN(c) || math.IsInf(c, 0))
		}
	}
}

func TestEqualize_NoUsableComponent(t *testing.T) {
	members := [][]float64{{1, 2}, {3, 4}}
	out, skipped := Equalize(members, [][]float64{{0, 0}})

	assert.True(t, skipped)
	assert.Equal(t, members, out)
	out[0][0] = 9
	assert.Equal(t, 1.0, members[0][0])
}

func TestEqualize_LargeNeutralComponent(t *testing.T) {
	// ||ν|| > 1 leaves no room on the bias axis
	out, _ := Equalize([][]float64{{0.5, 2, 0}, {-0.5, 2, 0}}, [][]float64{{1, 0, 0}})
	assertVecInDelta(t, []float64{0, 2, 0}, out[0], tol)
	assertVecInDelta(t, []float64{0, 2, 0}, out[1], tol)
}

func TestEqualize_Group(t *testing.T) {
	B := [][]float64{{1, 0, 0, 0}, {0, 1, 0, 0}}
	members := [][]float64{
		{0.40, 0.10, 0.20, 0.05},
		{-0.20, 0.30, 0.25, 0.00},
		{-0.10, -0.35, 0.15, 0.10},
	}

	out, skipped := Equalize(members, B)
	require.False(t, skipped)
	require.Len(t, out, 3)

	nu := neutralPart(out[0], B)
	for i, x := range out {
		assert.InDelta(t, 1.0, norm(x), tol, "member %d", i)
		assertVecInDelta(t, nu, neutralPart(x, B), tol)
	}
}

func TestEqualize_BalancedGroupIdempotent(t *testing.T) {
	B := [][]float64{{1, 0, 0}, {0, 1, 0}}
	r := 0.4
	members := make([][]float64, 3)
	for i, deg := range []float64{90, 210, 330} {
		rad := deg * math.Pi / 180
		members[i] = []float64{r * math.Cos(rad), r * math.Sin(rad), 0.3}
	}

	once, _ := Equalize(members, B)
	twice, _ := Equalize(once, B)
	for i := range once {
		assertVecInDelta(t, once[i], twice[i], 1e-9)
	}
}

func TestEqualize_UsesReferenceDirections(t *testing.T) {
	v := [][]float64{{1, 0, 0}}
	reference := [][]float64{{0.8, 0.2, 0}, {-0.8, 0.2, 0}}
	neutralized := [][]float64{{0, 0.2, 0}, {0, 0.2, 0}}

	out, _ := equalize(neutralized, reference, v)
	z := math.Sqrt(1 - 0.04)
	assertVecInDelta(t, []float64{z, 0.2, 0}, out[0], tol)
	assertVecInDelta(t, []float64{-z, 0.2, 0}, out[1], tol)
}

func TestEqualize_UnbalancedGroupMovesOnReapply(t *testing.T) {
	B := [][]float64{{1, 0, 0}, {0, 1, 0}}
	members := [][]float64{{0.9, 0.1, 0.2}, {0.1, 0.5, 0.3}, {-0.3, -0.2, 0.1}}

	once, _ := Equalize(members, B)
	twice, _ := Equalize(once, B)

	moved := 0.0
	for i := range once {
		assert.InDelta(t, 1.0, norm(twice[i]), tol, "member %d", i)
		assertVecInDelta(t, neutralPart(once[i], B), neutralPart(twice[i], B), tol)
		for j := range once[i] {
			moved = math.Max(moved, math.Abs(once[i][j]-twice[i][j]))
		}
	}
	assert.InDelta(t, 0.1059, moved, 1e-3)
}
