package debias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/debias/embedding"
	"github.com/YuminosukeSato/debias/pkg/errors"
)

func TestDeviations(t *testing.T) {
	vs := toySpace(t)

	X, err := Deviations(vs, [][]string{{"he", "she"}, {"doctor", "he"}})
	require.NoError(t, err)

	r, c := X.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 3, c)
	assertVecInDelta(t, []float64{1, 0, 0}, X.RawRowView(0), tol)
	assertVecInDelta(t, []float64{-1, 0, 0}, X.RawRowView(1), tol)
	assertVecInDelta(t, []float64{-0.25, 0.25, 0}, X.RawRowView(2), tol)
	assertVecInDelta(t, []float64{0.25, -0.25, 0}, X.RawRowView(3), tol)
}

func TestEstimateSubspace_Binary(t *testing.T) {
	vs := toySpace(t)

	sub, err := EstimateSubspace(vs, [][]string{{"he", "she"}}, 1, "gender")
	require.NoError(t, err)

	require.Len(t, sub.Components, 1)
	assertVecInDelta(t, []float64{1, 0, 0}, sub.Components[0], tol)
	assert.InDelta(t, 1.0, sub.ExplainedVariance[0], tol)
	assert.Equal(t, 2, sub.NSamples)
	assert.Empty(t, sub.Degenerate)
}

func TestEstimateSubspace_SignFollowsFirstWord(t *testing.T) {
	vs := toySpace(t)

	sub, err := EstimateSubspace(vs, [][]string{{"she", "he"}}, 1, "gender")
	require.NoError(t, err)
	assertVecInDelta(t, []float64{-1, 0, 0}, sub.Components[0], tol)
}

func TestEstimateSubspace_UnitDirection(t *testing.T) {
	vs := genderSpace(t)

	sub, err := EstimateSubspace(vs, genderDefinitional, 1, "gender")
	require.NoError(t, err)

	v := sub.Components[0]
	assert.InDelta(t, 1.0, norm(v), tol)
	// the definitional pairs differ mostly along the first axis
	assert.Greater(t, v[0], 0.9)
	assert.Greater(t, sub.ExplainedVariance[0], 0.9)
}

func TestEstimateSubspace_Multiclass(t *testing.T) {
	vs, err := embedding.FromVectors(
		[]string{"a", "b", "c"},
		[][]float64{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}},
	)
	require.NoError(t, err)

	sub, err := EstimateSubspace(vs, [][]string{{"a", "b", "c"}}, 2, "religion")
	require.NoError(t, err)
	require.Len(t, sub.Components, 2)

	for i, c := range sub.Components {
		assert.InDelta(t, 1.0, norm(c), tol, "component %d", i)
		// the group spans the xy plane only
		assert.InDelta(t, 0.0, c[2], tol, "component %d", i)
	}
	assert.InDelta(t, 0.0, floats.Dot(sub.Components[0], sub.Components[1]), tol)
	assert.InDelta(t, 1.0, floats.Sum(sub.ExplainedVariance), 1e-6)
}

func TestEstimateSubspace_ClampsComponents(t *testing.T) {
	vs := toySpace(t)

	// two deviation rows in three dimensions
	sub, err := EstimateSubspace(vs, [][]string{{"he", "she"}}, 5, "gender")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(sub.Components), 2)
}

func TestEstimateSubspace_MissingWord(t *testing.T) {
	vs := toySpace(t)

	_, err := EstimateSubspace(vs, [][]string{{"he", "she"}, {"man", "woman"}}, 1, "gender")
	require.Error(t, err)

	var missing *errors.MissingWordError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "man", missing.Word)
	assert.Equal(t, errors.SourceDefinitional, missing.Source)
	assert.Equal(t, 1, missing.SetIndex)
}

func TestEstimateSubspace_Degenerate(t *testing.T) {
	warnings := captureWarnings(t)
	vs := toySpace(t)

	sub, err := EstimateSubspace(vs, [][]string{{"he", "he"}}, 1, "gender")
	require.NoError(t, err)

	assert.Equal(t, []int{0}, sub.Degenerate)
	assert.Equal(t, []float64{0, 0, 0}, sub.Components[0])

	got := warnings()
	require.Len(t, got, 1)
	var w *errors.DegenerateDirectionWarning
	require.True(t, errors.As(got[0], &w))
	assert.Equal(t, "gender", w.Criterion)
	assert.Equal(t, "fit", w.Stage)
}

func TestEstimateSubspace_InvalidK(t *testing.T) {
	_, err := EstimateSubspace(toySpace(t), [][]string{{"he", "she"}}, 0, "gender")
	assert.Error(t, err)

	_, err = EstimateSubspace(toySpace(t), nil, 1, "gender")
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
