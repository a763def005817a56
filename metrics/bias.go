// Package metrics scores how strongly a vector space encodes a bias direction
// and how far a transform moved the vocabulary.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/debias/embedding"
	"github.com/YuminosukeSato/debias/pkg/errors"
)

// DirectBias は中立語とバイアス方向のコサイン類似度の絶対値を c 乗して平均する。
// c=1 が一般的で、c が大きいほど強い偏りだけを数える。
func DirectBias(vs embedding.VectorSpace, direction []float64, words []string, c float64) (float64, error) {
	if len(words) == 0 {
		return 0, errors.NewValueError("DirectBias", "no words to score")
	}
	if len(direction) != vs.Dim() {
		return 0, errors.NewDimensionError("DirectBias", vs.Dim(), len(direction), 1)
	}
	if c <= 0 {
		return 0, errors.NewValidationError("c", "must be positive", c)
	}
	gNorm := floats.Norm(direction, 2)
	if errors.NearZero(gNorm) {
		return 0, errors.NewValueError("DirectBias", "bias direction has zero norm")
	}

	// DirectBias = (1/n) * Σ|cos(w, g)|^c
	var sum float64
	for _, w := range words {
		v, ok := vs.Vector(w)
		if !ok {
			return 0, errors.NewMissingWordError(w, errors.SourceTarget, -1)
		}
		vNorm := floats.Norm(v, 2)
		if errors.NearZero(vNorm) {
			continue // ゼロベクトルは偏りなしとして数える
		}
		cos := floats.Dot(v, direction) / (vNorm * gNorm)
		sum += math.Pow(math.Abs(cos), c)
	}
	return sum / float64(len(words)), nil
}

// Displacement は original から debiased への各単語の移動量の二乗平均を返す。
// words が空の場合は original の全語彙を使う。
func Displacement(original, debiased embedding.VectorSpace, words []string) (float64, error) {
	if original.Dim() != debiased.Dim() {
		return 0, errors.NewDimensionError("Displacement", original.Dim(), debiased.Dim(), 1)
	}
	if len(words) == 0 {
		words = original.Words()
	}
	if len(words) == 0 {
		return 0, errors.NewValueError("Displacement", "empty vocabulary")
	}

	diff := make([]float64, original.Dim())
	var sum float64
	for _, w := range words {
		before, ok := original.Vector(w)
		if !ok {
			return 0, errors.NewMissingWordError(w, errors.SourceTarget, -1)
		}
		after, ok := debiased.Vector(w)
		if !ok {
			return 0, errors.NewMissingWordError(w, errors.SourceTarget, -1)
		}
		floats.SubTo(diff, after, before)
		sum += floats.Dot(diff, diff)
	}
	return sum / float64(len(words)), nil
}

// ProjectionBias adapts DirectBias to the BiasMeasurer interface of the
// debias package. C defaults to 1.
type ProjectionBias struct {
	Direction []float64
	Words     []string
	C         float64
}

// Measure scores vs with DirectBias.
func (p ProjectionBias) Measure(vs embedding.VectorSpace) (float64, error) {
	c := p.C
	if c == 0 {
		c = 1
	}
	return DirectBias(vs, p.Direction, p.Words, c)
}
