package debias

import (
	"fmt"
	"slices"
	"time"

	"github.com/YuminosukeSato/debias/core/model"
	"github.com/YuminosukeSato/debias/embedding"
	"github.com/YuminosukeSato/debias/pkg/errors"
	"github.com/YuminosukeSato/debias/pkg/log"
)

// estimator は HardDebias と MulticlassHardDebias に共通する状態と処理を持つ。
type estimator struct {
	name   string
	state  *model.StateManager
	fitted *FittedTransform // state のロックで保護される
	opts   settings
	logger log.Logger
}

func newEstimator(name string, opts []Option) estimator {
	s := newSettings(opts)
	return estimator{
		name:   name,
		state:  model.NewStateManager(),
		opts:   s,
		logger: s.logger.With(log.ModelNameKey, name, log.EstimatorIDKey, s.id),
	}
}

// fit estimates a k-component subspace and replaces the fitted transform
// only when every step succeeds.
func (e *estimator) fit(vs embedding.VectorSpace, definitional, equalize [][]string, criterion string, k int) error {
	start := time.Now()
	if criterion == "" {
		criterion = DefaultCriterion
	}
	if len(definitional) == 0 {
		return errors.NewModelError(e.name+".Fit", "empty definitional sets", errors.ErrEmptyData)
	}
	for i, set := range equalize {
		for _, w := range set {
			if !vs.Contains(w) {
				return errors.NewMissingWordError(w, errors.SourceEqualize, i)
			}
		}
	}

	sub, err := EstimateSubspace(vs, definitional, k, criterion)
	if err != nil {
		e.logger.Error("fit failed", log.OperationKey, log.OperationFit, log.ErrAttrKey, err)
		return err
	}

	f := &FittedTransform{
		ModelName:         e.name,
		Criterion:         criterion,
		Dim:               vs.Dim(),
		Components:        sub.Components,
		ExplainedVariance: sub.ExplainedVariance,
		Degenerate:        sub.Degenerate,
		EqualizeSets:      copySets(equalize),
		Normalize:         e.opts.normalize,
		NSamples:          sub.NSamples,
	}
	e.store(f)

	e.logger.Info("bias subspace estimated",
		log.OperationKey, log.OperationFit,
		log.CriterionKey, criterion,
		log.ComponentsKey, len(sub.Components),
		log.ExplainedVarianceKey, sub.ExplainedVariance,
		log.SamplesKey, sub.NSamples,
		log.FeaturesKey, f.Dim,
		log.EqualizeSetsKey, len(f.EqualizeSets),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// store keeps a private copy of f.
func (e *estimator) store(f *FittedTransform) {
	f = f.clone()
	_ = e.state.WithStateMut(func() error {
		e.fitted = f
		e.state.Fitted = true
		e.state.Criterion = f.Criterion
		e.state.NFeatures = f.Dim
		e.state.NSamples = f.NSamples
		return nil
	})
}

// current returns the fitted transform or a NotFittedError naming method.
func (e *estimator) current(method string) (*FittedTransform, error) {
	var f *FittedTransform
	_ = e.state.WithState(func() error {
		if e.state.Fitted {
			f = e.fitted
		}
		return nil
	})
	if f == nil {
		return nil, errors.NewNotFittedError(e.name, method)
	}
	return f, nil
}

func (e *estimator) transformInPlace(vs embedding.VectorSpace, opts []TransformOption) error {
	f, err := e.current("TransformInPlace")
	if err != nil {
		e.logger.Warn("transform rejected", log.ErrorCodeKey, log.ErrorNotFitted)
		return err
	}
	if err := transformInPlace(f, &e.opts, e.logger.With(log.CriterionKey, f.Criterion), vs, opts); err != nil {
		e.logger.Error("transform failed", log.OperationKey, log.OperationTransform, log.ErrAttrKey, err)
		return err
	}
	return nil
}

func (e *estimator) transformToCopy(vs embedding.VectorSpace, opts []TransformOption) (embedding.VectorSpace, error) {
	f, err := e.current("TransformToCopy")
	if err != nil {
		e.logger.Warn("transform rejected", log.ErrorCodeKey, log.ErrorNotFitted)
		return nil, err
	}
	out, err := transformToCopy(f, &e.opts, e.logger.With(log.CriterionKey, f.Criterion), vs, opts)
	if err != nil {
		e.logger.Error("transform failed", log.OperationKey, log.OperationTransform, log.ErrAttrKey, err)
		return nil, err
	}
	return out, nil
}

func (e *estimator) transform(vs embedding.VectorSpace, toCopy bool, opts []TransformOption) (embedding.VectorSpace, error) {
	if toCopy {
		return e.transformToCopy(vs, opts)
	}
	if err := e.transformInPlace(vs, opts); err != nil {
		return nil, err
	}
	return vs, nil
}

// State returns the estimator's fit state.
func (e *estimator) State() model.ModelState {
	return e.state.GetState()
}

// IsFitted reports whether Fit has succeeded at least once.
func (e *estimator) IsFitted() bool {
	return e.state.IsFitted()
}

func copySets(sets [][]string) [][]string {
	if sets == nil {
		return nil
	}
	out := make([][]string, len(sets))
	for i, s := range sets {
		out[i] = slices.Clone(s)
	}
	return out
}

// fittedCopy returns a copy of the fitted transform that callers may modify.
func (e *estimator) fittedCopy() (*FittedTransform, error) {
	f, err := e.current("FittedTransform")
	if err != nil {
		return nil, err
	}
	return f.clone(), nil
}

// validateSetSizes checks lo <= len(set) <= hi for every set. hi <= 0 means no upper bound.
func validateSetSizes(param string, sets [][]string, lo, hi int) error {
	for i, s := range sets {
		if len(s) < lo || (hi > 0 && len(s) > hi) {
			return errors.NewValidationError(param, fmt.Sprintf("set %d has %d words", i, len(s)), s)
		}
	}
	return nil
}
