package debias

import (
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/debias/pkg/errors"
)

// Project returns the projection of u onto the span of components, summing
// (b·u)/(b·b) b over every non-degenerate row b.
func Project(u []float64, components [][]float64) []float64 {
	out := make([]float64, len(u))
	for _, b := range components {
		bb := floats.Dot(b, b)
		if errors.NearZero(bb) {
			continue
		}
		floats.AddScaled(out, floats.Dot(b, u)/bb, b)
	}
	return out
}

// Neutralize は u からバイアス部分空間への射影を取り除いたベクトルを返す。
//
//	u' = u − Σ_j ((b_j·u)/(b_j·b_j)) b_j
//
// ノルムがほぼ0の成分は割り算をせずにスキップし、skipped を true にする。
// u 自体は変更しない。
func Neutralize(u []float64, components [][]float64) (out []float64, skipped bool) {
	out = append([]float64(nil), u...)
	skipped = neutralizeInto(out, make([]float64, len(components)), components)
	return out, skipped
}

// neutralizeInto removes the projection from v in place. coef must have one
// slot per component and receives the removed coefficient (b·v)/(b·b), or 0
// for a degenerate component. Every coefficient is taken against the input v.
func neutralizeInto(v, coef []float64, components [][]float64) (skipped bool) {
	for j, b := range components {
		bb := floats.Dot(b, b)
		if errors.NearZero(bb) {
			coef[j] = 0
			skipped = true
			continue
		}
		coef[j] = floats.Dot(b, v) / bb
	}
	for j, b := range components {
		if coef[j] != 0 {
			floats.AddScaled(v, -coef[j], b)
		}
	}
	return skipped
}

// restoreInto undoes neutralizeInto followed by a rescale by 1/norm. The
// result matches the input up to floating-point rounding.
func restoreInto(v, coef []float64, norm float64, components [][]float64) {
	floats.Scale(norm, v)
	for j, b := range components {
		if coef[j] != 0 {
			floats.AddScaled(v, coef[j], b)
		}
	}
}

// normalize rescales v to unit length in place and returns the norm it
// divided by. Zero vectors are left as is and report 1.
func normalize(v []float64) float64 {
	n := floats.Norm(v, 2)
	if errors.NearZero(n) {
		return 1
	}
	floats.Scale(1/n, v)
	return n
}
