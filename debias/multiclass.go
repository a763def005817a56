package debias

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/debias/embedding"
	"github.com/YuminosukeSato/debias/pkg/errors"
)

// MulticlassHardDebias は多値のバイアス（例: 宗教、人種）を除去する推定器。
// 定義グループから k 次元のバイアス部分空間を推定し、
// 中和はその部分空間全体への射影を取り除く。
type MulticlassHardDebias struct {
	estimator
}

// NewMulticlassHardDebias creates an unfitted MulticlassHardDebias.
func NewMulticlassHardDebias(opts ...Option) *MulticlassHardDebias {
	return &MulticlassHardDebias{estimator: newEstimator("MulticlassHardDebias", opts)}
}

// Fit estimates the bias subspace from definitionalSets, groups of two or
// more words whose sizes may differ. The subspace has max(group size) − 1
// components unless WithNComponents says otherwise.
func (m *MulticlassHardDebias) Fit(vs embedding.VectorSpace, definitionalSets, equalizeSets [][]string, criterionName string) error {
	if err := validateSetSizes("definitional_sets", definitionalSets, 2, 0); err != nil {
		return err
	}
	if err := validateSetSizes("equalize_sets", equalizeSets, 2, 0); err != nil {
		return err
	}
	if m.opts.nComponents < 0 {
		return errors.NewValidationError("n_components", "must not be negative", m.opts.nComponents)
	}

	k := m.opts.nComponents
	if k == 0 {
		for _, set := range definitionalSets {
			k = max(k, len(set)-1)
		}
	}
	return m.fit(vs, definitionalSets, equalizeSets, criterionName, k)
}

// TransformInPlace neutralizes the selected words of vs against the whole
// subspace and equalizes the fitted groups, writing into vs.
func (m *MulticlassHardDebias) TransformInPlace(vs embedding.VectorSpace, opts ...TransformOption) error {
	return m.transformInPlace(vs, opts)
}

// TransformToCopy is TransformInPlace applied to a deep copy of vs.
func (m *MulticlassHardDebias) TransformToCopy(vs embedding.VectorSpace, opts ...TransformOption) (embedding.VectorSpace, error) {
	return m.transformToCopy(vs, opts)
}

// Transform dispatches on toCopy like HardDebias.Transform.
func (m *MulticlassHardDebias) Transform(vs embedding.VectorSpace, toCopy bool, opts ...TransformOption) (embedding.VectorSpace, error) {
	return m.transform(vs, toCopy, opts)
}

// FittedTransform returns a copy of the result of the last successful Fit.
func (m *MulticlassHardDebias) FittedTransform() (*FittedTransform, error) {
	return m.fittedCopy()
}

// BiasSubspace returns the k × d basis, one orthonormal component per row.
// Degenerate components are zero rows.
func (m *MulticlassHardDebias) BiasSubspace() (*mat.Dense, error) {
	f, err := m.current("BiasSubspace")
	if err != nil {
		return nil, err
	}
	return f.Subspace(), nil
}
