package debias

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/debias/embedding"
	"github.com/YuminosukeSato/debias/pkg/errors"
	"github.com/YuminosukeSato/debias/pkg/log"
)

const tol = 1e-9

// toySpace is the three-word space from the reference scenario.
func toySpace(t *testing.T) *embedding.KeyedVectors {
	t.Helper()
	vs, err := embedding.FromVectors(
		[]string{"he", "she", "doctor"},
		[][]float64{{1, 0, 0}, {-1, 0, 0}, {0.5, 0.5, 0}},
	)
	require.NoError(t, err)
	return vs
}

// genderSpace has two definitional pairs, one equalize pair and two
// occupations, none of them axis aligned.
func genderSpace(t *testing.T) *embedding.KeyedVectors {
	t.Helper()
	vs, err := embedding.FromMap(
		[]string{"he", "she", "man", "woman", "doctor", "nurse", "king", "queen"},
		map[string][]float64{
			"he":     {0.50, 0.05, 0.00, 0.10},
			"she":    {-0.45, 0.05, 0.03, 0.10},
			"man":    {0.40, -0.05, 0.05, 0.00},
			"woman":  {-0.40, -0.03, 0.05, 0.02},
			"doctor": {0.20, 0.25, 0.05, 0.15},
			"nurse":  {-0.25, 0.20, 0.10, 0.05},
			"king":   {0.30, 0.15, -0.20, 0.10},
			"queen":  {-0.25, 0.15, -0.18, 0.12},
		},
	)
	require.NoError(t, err)
	return vs
}

var (
	genderDefinitional = [][]string{{"he", "she"}, {"man", "woman"}}
	genderEqualize     = [][]string{{"king", "queen"}}
	genderSpecific     = []string{"he", "she", "man", "woman"}
)

func vector(t *testing.T, vs embedding.VectorSpace, word string) []float64 {
	t.Helper()
	v, ok := vs.Vector(word)
	require.True(t, ok, "word %q missing", word)
	return v
}

func assertVecInDelta(t *testing.T, want, got []float64, delta float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func snapshot(vs embedding.VectorSpace) map[string][]float64 {
	out := make(map[string][]float64, vs.Len())
	for _, w := range vs.Words() {
		v, _ := vs.Vector(w)
		out[w] = v
	}
	return out
}

func norm(v []float64) float64 {
	return floats.Norm(v, 2)
}

// captureWarnings routes errors.Warn into a slice for the duration of the test.
func captureWarnings(t *testing.T) func() []error {
	t.Helper()
	var (
		mu       sync.Mutex
		warnings []error
	)
	errors.SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, w)
	})
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })
	return func() []error {
		mu.Lock()
		defer mu.Unlock()
		return append([]error(nil), warnings...)
	}
}

func quietLogger() Option {
	return WithLogger(log.NewNopLogger())
}
