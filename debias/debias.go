package debias

import (
	"github.com/YuminosukeSato/debias/embedding"
	"github.com/YuminosukeSato/debias/pkg/errors"
)

// Debiaser is implemented by HardDebias and MulticlassHardDebias.
type Debiaser interface {
	TransformInPlace(vs embedding.VectorSpace, opts ...TransformOption) error
	TransformToCopy(vs embedding.VectorSpace, opts ...TransformOption) (embedding.VectorSpace, error)
	Transform(vs embedding.VectorSpace, toCopy bool, opts ...TransformOption) (embedding.VectorSpace, error)
	FittedTransform() (*FittedTransform, error)
	IsFitted() bool
}

var (
	_ Debiaser = (*HardDebias)(nil)
	_ Debiaser = (*MulticlassHardDebias)(nil)
)

// FromFitted rebuilds a fitted estimator from a FittedTransform, typically
// one read back with LoadFittedTransform. The estimator type follows
// f.ModelName. opts apply as for the constructors; WithNormalize is taken
// from f instead.
func FromFitted(f *FittedTransform, opts ...Option) (Debiaser, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	switch f.ModelName {
	case "HardDebias":
		if f.NComponents() != 1 {
			return nil, errors.NewValidationError("Components", "HardDebias needs exactly one component", f.NComponents())
		}
		h := NewHardDebias(opts...)
		h.store(f)
		return h, nil
	case "MulticlassHardDebias":
		m := NewMulticlassHardDebias(opts...)
		m.store(f)
		return m, nil
	default:
		return nil, errors.NewValueError("debias.FromFitted", "unknown model name "+f.ModelName)
	}
}

// BiasMeasurer computes a scalar bias score for a vector space, such as a
// WEAT effect size. Implementations live outside this package.
type BiasMeasurer interface {
	Measure(vs embedding.VectorSpace) (float64, error)
}

// MeasureReduction scores original and debiased with m.
func MeasureReduction(m BiasMeasurer, original, debiased embedding.VectorSpace) (before, after float64, err error) {
	before, err = m.Measure(original)
	if err != nil {
		return 0, 0, errors.Wrap(err, "measure original space")
	}
	after, err = m.Measure(debiased)
	if err != nil {
		return 0, 0, errors.Wrap(err, "measure debiased space")
	}
	return before, after, nil
}
