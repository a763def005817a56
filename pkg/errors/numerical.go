package errors

import (
	"math"
)

// Epsilon is the threshold below which norms and squared norms are treated as zero.
const Epsilon = 1e-10

// NearZero reports whether |v| is below Epsilon.
func NearZero(v float64) bool {
	return math.Abs(v) < Epsilon
}

// CheckVector returns a NumericalInstabilityError if vec contains NaN or Inf.
func CheckVector(operation, word string, vec []float64) error {
	for _, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, word, vec)
		}
	}
	return nil
}

// CheckMatrix checks all values in a matrix for numerical instability.
func CheckMatrix(operation string, matrix interface{ At(int, int) float64 }, rows, cols int) error {
	var unstable []float64

	for i := 0; i < rows && len(unstable) == 0; i++ {
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				unstable = append(unstable, v)
				if len(unstable) >= 10 {
					break
				}
			}
		}
	}

	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, "", unstable)
	}
	return nil
}

// SafeDivide performs division with protection against division by zero.
// Returns 0 if denominator is close to zero.
func SafeDivide(numerator, denominator float64) float64 {
	if NearZero(denominator) {
		return 0
	}
	return numerator / denominator
}

// SafeSqrt returns sqrt(max(0, v)).
func SafeSqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
