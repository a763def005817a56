package debias

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/YuminosukeSato/debias/embedding"
)

// HardDebias は二値のバイアス（例: 性別）を除去する Hard Debias 推定器。
//
// Fit で定義ペアから1本のバイアス方向を推定し、TransformInPlace / TransformToCopy で
// 対象語の中和と均等化ペアの再配置を行う。
//
//	hd := debias.NewHardDebias()
//	err := hd.Fit(vs, [][]string{{"he", "she"}, {"man", "woman"}}, [][]string{{"king", "queen"}}, "gender")
//	out, err := hd.TransformToCopy(vs, debias.WithIgnore("he", "she"))
type HardDebias struct {
	estimator
}

// NewHardDebias creates an unfitted HardDebias.
func NewHardDebias(opts ...Option) *HardDebias {
	return &HardDebias{estimator: newEstimator("HardDebias", opts)}
}

// Fit estimates the bias direction from definitionalPairs and stores
// equalizePairs for later transforms. Every set must hold exactly two words.
// A failed Fit leaves any previous fit in place.
func (h *HardDebias) Fit(vs embedding.VectorSpace, definitionalPairs, equalizePairs [][]string, criterionName string) error {
	if err := validateSetSizes("definitional_pairs", definitionalPairs, 2, 2); err != nil {
		return err
	}
	if err := validateSetSizes("equalize_pairs", equalizePairs, 2, 2); err != nil {
		return err
	}
	if h.opts.caseVariants {
		equalizePairs = expandCaseVariants(vs, equalizePairs)
	}
	return h.fit(vs, definitionalPairs, equalizePairs, criterionName, 1)
}

// TransformInPlace neutralizes the selected words of vs and equalizes the
// fitted pairs, writing into vs. On error vs is left unchanged.
func (h *HardDebias) TransformInPlace(vs embedding.VectorSpace, opts ...TransformOption) error {
	return h.transformInPlace(vs, opts)
}

// TransformToCopy is TransformInPlace applied to a deep copy of vs, which is
// returned. vs itself is never modified.
func (h *HardDebias) TransformToCopy(vs embedding.VectorSpace, opts ...TransformOption) (embedding.VectorSpace, error) {
	return h.transformToCopy(vs, opts)
}

// Transform dispatches to TransformToCopy when toCopy is true and to
// TransformInPlace otherwise, returning vs itself in the latter case.
func (h *HardDebias) Transform(vs embedding.VectorSpace, toCopy bool, opts ...TransformOption) (embedding.VectorSpace, error) {
	return h.transform(vs, toCopy, opts)
}

// FittedTransform returns a copy of the result of the last successful Fit.
func (h *HardDebias) FittedTransform() (*FittedTransform, error) {
	return h.fittedCopy()
}

// BiasDirection returns a copy of the unit bias direction.
func (h *HardDebias) BiasDirection() ([]float64, error) {
	f, err := h.current("BiasDirection")
	if err != nil {
		return nil, err
	}
	return f.BiasDirection(), nil
}

// expandCaseVariants adds the lower, Title and UPPER forms of every pair.
// The pair as written is always kept; added forms must exist in vs.
func expandCaseVariants(vs embedding.VectorSpace, pairs [][]string) [][]string {
	title := cases.Title(language.Und)
	forms := []func(string) string{
		strings.ToLower,
		title.String,
		strings.ToUpper,
	}

	seen := make(map[[2]string]struct{}, len(pairs)*4)
	out := make([][]string, 0, len(pairs)*4)
	add := func(a, b string, required bool) {
		key := [2]string{a, b}
		if _, dup := seen[key]; dup {
			return
		}
		if !required && !(vs.Contains(a) && vs.Contains(b)) {
			return
		}
		seen[key] = struct{}{}
		out = append(out, []string{a, b})
	}
	for _, p := range pairs {
		add(p[0], p[1], true)
		for _, form := range forms {
			add(form(p[0]), form(p[1]), false)
		}
	}
	return out
}
