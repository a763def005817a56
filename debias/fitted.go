package debias

import (
	"io"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/debias/core/model"
	"github.com/YuminosukeSato/debias/pkg/errors"
)

// DefaultCriterion is used when Fit is called with an empty criterion name.
const DefaultCriterion = "bias"

// FittedTransform は Fit の結果で、生成後は変更されない。
// 複数の transform 呼び出しから同時に読み取ってよい。
// エクスポートされたフィールドは gob での保存に使われる。推定器は受け取るときも
// 返すときもディープコピーするので、呼び出し側が値を書き換えても学習結果には影響しない。
type FittedTransform struct {
	ModelName         string
	Criterion         string
	Dim               int
	Components        [][]float64
	ExplainedVariance []float64
	Degenerate        []int
	EqualizeSets      [][]string
	Normalize         bool
	NSamples          int
}

// clone returns a deep copy that shares no slices with f.
func (f *FittedTransform) clone() *FittedTransform {
	c := *f
	c.Components = make([][]float64, len(f.Components))
	for i, row := range f.Components {
		c.Components[i] = slices.Clone(row)
	}
	c.ExplainedVariance = slices.Clone(f.ExplainedVariance)
	c.Degenerate = slices.Clone(f.Degenerate)
	c.EqualizeSets = copySets(f.EqualizeSets)
	return &c
}

// NComponents returns the number of bias subspace components.
func (f *FittedTransform) NComponents() int {
	return len(f.Components)
}

// BiasDirection returns a copy of the first component.
func (f *FittedTransform) BiasDirection() []float64 {
	if len(f.Components) == 0 {
		return nil
	}
	return append([]float64(nil), f.Components[0]...)
}

// Subspace returns the components as a k × d matrix.
func (f *FittedTransform) Subspace() *mat.Dense {
	return componentsDense(f.Components)
}

// IsDegenerate reports whether any component was degenerate at fit time.
func (f *FittedTransform) IsDegenerate() bool {
	return len(f.Degenerate) > 0
}

// firstDegenerate returns the index of the first zero component, or -1.
func (f *FittedTransform) firstDegenerate() int {
	if len(f.Degenerate) > 0 {
		return f.Degenerate[0]
	}
	for j, c := range f.Components {
		if errors.NearZero(floats.Dot(c, c)) {
			return j
		}
	}
	return -1
}

func (f *FittedTransform) validate() error {
	if f == nil {
		return errors.NewValueError("FittedTransform", "nil fitted transform")
	}
	if f.Dim <= 0 {
		return errors.NewValidationError("Dim", "must be positive", f.Dim)
	}
	if len(f.Components) == 0 {
		return errors.NewModelError("FittedTransform", "no bias components", errors.ErrEmptyData)
	}
	for _, c := range f.Components {
		if len(c) != f.Dim {
			return errors.NewDimensionError("FittedTransform", f.Dim, len(c), 1)
		}
		if err := errors.CheckVector("FittedTransform", "", c); err != nil {
			return err
		}
	}
	return nil
}

// Save writes f to filename with encoding/gob.
func (f *FittedTransform) Save(filename string) error {
	return model.SaveModel(f, filename)
}

// SaveTo writes f to w with encoding/gob.
func (f *FittedTransform) SaveTo(w io.Writer) error {
	return model.SaveModelToWriter(f, w)
}

// LoadFittedTransform reads a FittedTransform written by Save.
func LoadFittedTransform(filename string) (*FittedTransform, error) {
	var f FittedTransform
	if err := model.LoadModel(&f, filename); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ReadFittedTransform reads a FittedTransform written by SaveTo.
func ReadFittedTransform(r io.Reader) (*FittedTransform, error) {
	var f FittedTransform
	if err := model.LoadModelFromReader(&f, r); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}
