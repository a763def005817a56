package debias

import (
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/debias/core/parallel"
	"github.com/YuminosukeSato/debias/embedding"
	"github.com/YuminosukeSato/debias/performance"
	"github.com/YuminosukeSato/debias/pkg/errors"
	"github.com/YuminosukeSato/debias/pkg/log"
)

// batchRows is the number of target rows read, neutralized and written per
// batch. progressChunk must be a multiple of it.
const batchRows = 2000

// resolvedWordBytes covers the vocabulary listing and the resolved target
// list built for every target word.
const resolvedWordBytes = 32

// transformStats summarizes one transform call for logging.
type transformStats struct {
	targets   int
	equalized int
	skipped   int
}

// resolve validates vs against f and returns the neutralization targets.
// Nothing is read beyond vocabulary membership.
func (f *FittedTransform) resolve(vs embedding.VectorSpace, cfg *transformConfig) ([]string, error) {
	if vs.Dim() != f.Dim {
		return nil, errors.NewDimensionError(f.ModelName+".Transform", f.Dim, vs.Dim(), 1)
	}
	targets, err := cfg.selector().Resolve(vs)
	if err != nil {
		return nil, err
	}
	for i, set := range f.EqualizeSets {
		for _, w := range set {
			if !vs.Contains(w) {
				return nil, errors.NewMissingWordError(w, errors.SourceEqualize, i)
			}
		}
	}
	return targets, nil
}

// equalizeWords lists every equalize member once, in first-appearance order.
func (f *FittedTransform) equalizeWords() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, set := range f.EqualizeSets {
		for _, w := range set {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

// workingBytes estimates what apply allocates besides the space itself for
// targets words and eqWords equalize members. With undo the per-word rollback
// record (one coefficient per component plus a norm) is kept for the whole
// call, otherwise only for one batch.
func (f *FittedTransform) workingBytes(targets, eqWords int, undo bool) int64 {
	d := int64(f.Dim)
	k := int64(len(f.Components))
	rows := int64(min(targets, batchRows))

	b := rows * d * performance.Float64Bytes
	b += int64(targets) * resolvedWordBytes
	b += int64(eqWords) * (3*d*performance.Float64Bytes + 2*performance.WordIndexBytes)
	if undo {
		b += int64(targets) * (k + 1) * performance.Float64Bytes
	} else {
		b += rows * (k + 1) * performance.Float64Bytes
	}
	return b
}

// readVector copies the vector of word into dst, through VectorTo when vs
// offers it.
func readVector(vs embedding.VectorSpace, word string, dst []float64) bool {
	if r, ok := vs.(embedding.VectorReader); ok {
		return r.VectorTo(dst, word)
	}
	v, ok := vs.Vector(word)
	if !ok || len(v) != len(dst) {
		return false
	}
	copy(dst, v)
	return true
}

// pass is one transform call over vs.
//
// Inputs are validated before the first write. Targets are then neutralized
// and written batch by batch into a reused buffer, and the equalize members,
// a small set, are written last. With undo a failed write or a non-finite
// result restores everything already written: equalize members from their
// saved originals, neutralized words from their removed coefficients (exact
// up to floating-point rounding).
type pass struct {
	f         *FittedTransform
	vs        embedding.VectorSpace
	cfg       *transformConfig
	threshold int
	undo      bool
	op        string

	targets  []string
	eqWords  []string
	eqOrig   map[string][]float64
	eqTarget map[string]bool
	record   []float64 // (k coefficients, norm) per target, or per batch row without undo
}

func (p *pass) slot(j, i int) []float64 {
	k := len(p.f.Components)
	at := i
	if p.undo {
		at = j
	}
	return p.record[at*(k+1) : (at+1)*(k+1)]
}

// validate reads every input once and checks that it is finite.
func (p *pass) validate(buf []float64) error {
	p.eqWords = p.f.equalizeWords()
	p.eqOrig = make(map[string][]float64, len(p.eqWords))
	for _, w := range p.eqWords {
		v, ok := p.vs.Vector(w)
		if !ok {
			return errors.NewMissingWordError(w, errors.SourceEqualize, -1)
		}
		if err := errors.CheckVector(p.op, w, v); err != nil {
			return err
		}
		p.eqOrig[w] = v
	}

	p.eqTarget = make(map[string]bool, len(p.eqWords))
	for _, w := range p.targets {
		if _, ok := p.eqOrig[w]; ok {
			p.eqTarget[w] = true
			continue
		}
		if !readVector(p.vs, w, buf) {
			return errors.NewMissingWordError(w, errors.SourceTarget, -1)
		}
		if err := errors.CheckVector(p.op, w, buf); err != nil {
			return err
		}
	}
	return nil
}

// neutralize streams the targets that are not equalize members. It returns
// how many vectors were written.
func (p *pass) neutralize(buf []float64) (int, error) {
	d := p.f.Dim
	k := len(p.f.Components)
	total := len(p.targets)
	written := 0

	p.cfg.report(StageNeutralize, 0, total)
	for start := 0; start < total; start += batchRows {
		end := min(start+batchRows, total)
		parallel.ForEachRow(end-start, p.threshold, func(i int) {
			j := start + i
			w := p.targets[j]
			if p.eqTarget[w] {
				return
			}
			row := buf[i*d : (i+1)*d]
			readVector(p.vs, w, row)
			rec := p.slot(j, i)
			neutralizeInto(row, rec[:k], p.f.Components)
			rec[k] = 1
			if p.f.Normalize {
				rec[k] = normalize(row)
			}
		})

		for i := 0; i < end-start; i++ {
			j := start + i
			w := p.targets[j]
			if p.eqTarget[w] {
				continue
			}
			row := buf[i*d : (i+1)*d]
			if err := errors.CheckVector(p.op, w, row); err != nil {
				return written, p.rollback(err, j, 0)
			}
			if err := p.vs.SetVector(w, row); err != nil {
				return written, p.rollback(errors.Wrapf(err, "write vector %q", w), j, 0)
			}
			written++
		}
		if end%progressChunk == 0 || end == total {
			p.cfg.report(StageNeutralize, end, total)
		}
	}
	return written, nil
}

// equalize computes the equalize sets from the saved originals and writes the
// members. It reports whether a set fell back for lack of a usable component.
func (p *pass) equalize() (degenerate bool, err error) {
	k := len(p.f.Components)
	current := make(map[string][]float64, len(p.eqWords))
	coef := make([]float64, k)
	for _, w := range p.eqWords {
		v := append([]float64(nil), p.eqOrig[w]...)
		if p.eqTarget[w] {
			neutralizeInto(v, coef, p.f.Components)
			if p.f.Normalize {
				normalize(v)
			}
		}
		current[w] = v
	}

	for i, set := range p.f.EqualizeSets {
		members := make([][]float64, len(set))
		originals := make([][]float64, len(set))
		for j, w := range set {
			members[j] = current[w]
			originals[j] = p.eqOrig[w]
		}
		eq, sk := equalize(members, originals, p.f.Components)
		degenerate = degenerate || sk
		for j, w := range set {
			if err := errors.CheckVector(p.op, w, eq[j]); err != nil {
				return degenerate, p.rollback(err, len(p.targets), 0)
			}
			current[w] = eq[j]
		}
		p.cfg.report(StageEqualize, i+1, len(p.f.EqualizeSets))
	}

	for n, w := range p.eqWords {
		if err := p.vs.SetVector(w, current[w]); err != nil {
			return degenerate, p.rollback(errors.Wrapf(err, "write vector %q", w), len(p.targets), n)
		}
	}
	return degenerate, nil
}

// rollback restores the first eqWritten equalize members and every
// neutralized target before position upTo. Without undo it returns cause
// unchanged; the caller discards the space.
func (p *pass) rollback(cause error, upTo, eqWritten int) error {
	if !p.undo {
		return cause
	}
	var failed error
	for _, w := range p.eqWords[:eqWritten] {
		if err := p.vs.SetVector(w, p.eqOrig[w]); err != nil {
			failed = errors.CombineErrors(failed, errors.Wrapf(err, "restore vector %q", w))
		}
	}

	k := len(p.f.Components)
	row := make([]float64, p.f.Dim)
	for j, w := range p.targets[:upTo] {
		if p.eqTarget[w] {
			continue
		}
		if !readVector(p.vs, w, row) {
			failed = errors.CombineErrors(failed, errors.NewMissingWordError(w, errors.SourceTarget, -1))
			continue
		}
		rec := p.slot(j, 0)
		restoreInto(row, rec[:k], rec[k], p.f.Components)
		if err := p.vs.SetVector(w, row); err != nil {
			failed = errors.CombineErrors(failed, errors.Wrapf(err, "restore vector %q", w))
		}
	}
	if failed != nil {
		return errors.CombineErrors(cause, errors.Wrap(failed, "rollback incomplete"))
	}
	return cause
}

// apply neutralizes targets and equalizes the stored sets on vs. The caller
// owns any locking. undo keeps what is needed to restore vs on failure.
func (f *FittedTransform) apply(vs embedding.VectorSpace, targets []string, cfg *transformConfig, threshold int, undo bool) (transformStats, error) {
	stats := transformStats{targets: len(targets)}
	k := len(f.Components)
	p := &pass{
		f:         f,
		vs:        vs,
		cfg:       cfg,
		threshold: threshold,
		undo:      undo,
		op:        f.ModelName + ".Transform",
		targets:   targets,
	}

	rows := min(len(targets), batchRows)
	buf := make([]float64, max(rows, 1)*f.Dim)
	if err := p.validate(buf); err != nil {
		return stats, err
	}
	if undo {
		p.record = make([]float64, len(targets)*(k+1))
	} else {
		p.record = make([]float64, rows*(k+1))
	}

	written, err := p.neutralize(buf)
	if err != nil {
		return stats, err
	}
	if len(targets) > 0 && hasDegenerate(f.Components) {
		stats.skipped = len(targets)
		errors.Warn(errors.NewDegenerateDirectionWarning(StageNeutralize, f.Criterion, f.firstDegenerate(), 0))
	}

	degenerate, err := p.equalize()
	if err != nil {
		return stats, err
	}
	stats.equalized = len(f.EqualizeSets)
	if degenerate {
		errors.Warn(errors.NewDegenerateDirectionWarning(StageEqualize, f.Criterion, f.firstDegenerate(), 0))
	}

	written += len(p.eqWords)
	cfg.report(StageCommit, written, written)
	return stats, nil
}

func hasDegenerate(components [][]float64) bool {
	for _, b := range components {
		if errors.NearZero(floats.Dot(b, b)) {
			return true
		}
	}
	return false
}

// transformInPlace は vs を直接書き換える。vs が sync.Locker を実装していれば
// 呼び出しの間ロックを保持する。
func transformInPlace(f *FittedTransform, s *settings, logger log.Logger, vs embedding.VectorSpace, opts []TransformOption) error {
	start := time.Now()
	cfg := newTransformConfig(opts)

	if l, ok := vs.(sync.Locker); ok {
		l.Lock()
		defer l.Unlock()
	}

	targets, err := f.resolve(vs, cfg)
	if err != nil {
		return err
	}
	logger.Debug("transform started",
		log.OperationKey, log.OperationTransform,
		log.CopyKey, false,
		log.VocabularyKey, vs.Len(),
		log.TargetsKey, len(targets),
	)

	stats, err := f.apply(vs, targets, cfg, s.parallelThreshold, true)
	if err != nil {
		return err
	}
	logTransform(logger, stats, false, start)
	return nil
}

// copyBytes is what transformToCopy reserves from the memory budget.
func (f *FittedTransform) copyBytes(vs embedding.VectorSpace, targets int) int64 {
	return performance.CloneBytes(vs.Len(), vs.Dim()) + f.workingBytes(targets, len(f.equalizeWords()), false)
}

// transformToCopy は vs を複製してから複製側を書き換える。vs は変更されない。
// 予算には複製と作業領域の両方を予約する。
func transformToCopy(f *FittedTransform, s *settings, logger log.Logger, vs embedding.VectorSpace, opts []TransformOption) (embedding.VectorSpace, error) {
	start := time.Now()
	cfg := newTransformConfig(opts)
	op := f.ModelName + ".TransformToCopy"

	targets, err := f.resolve(vs, cfg)
	if err != nil {
		return nil, err
	}

	size := f.copyBytes(vs, len(targets))
	if s.budget != nil {
		if err := s.budget.Reserve(op, size); err != nil {
			logger.Warn("vector space copy refused",
				log.DataSizeKey, size,
				log.ErrorCodeKey, log.ErrorInsufficientMem,
				log.SuggestionKey, "use TransformInPlace",
			)
			return nil, err
		}
		defer s.budget.Release(size)
	}

	clone, err := cloneLocked(vs)
	if err != nil {
		return nil, err
	}
	stats, err := f.apply(clone, targets, cfg, s.parallelThreshold, false)
	if err != nil {
		return nil, err
	}
	logTransform(logger.With(log.MemoryUsageKey, size), stats, true, start)
	return clone, nil
}

func cloneLocked(vs embedding.VectorSpace) (embedding.VectorSpace, error) {
	if l, ok := vs.(sync.Locker); ok {
		l.Lock()
		defer l.Unlock()
	}
	return vs.Clone()
}

func logTransform(logger log.Logger, stats transformStats, copied bool, start time.Time) {
	logger.Info("transform finished",
		log.OperationKey, log.OperationTransform,
		log.CopyKey, copied,
		log.TargetsKey, stats.targets,
		log.EqualizeSetsKey, stats.equalized,
		log.SkippedKey, stats.skipped,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
}
