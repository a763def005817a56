package debias

import (
	"github.com/oklog/ulid/v2"

	"github.com/YuminosukeSato/debias/core/parallel"
	"github.com/YuminosukeSato/debias/performance"
	"github.com/YuminosukeSato/debias/pkg/log"
)

// settings holds estimator-level configuration. It is fixed at construction.
type settings struct {
	logger            log.Logger
	id                string
	nComponents       int
	normalize         bool
	caseVariants      bool
	budget            *performance.MemoryBudget
	parallelThreshold int
}

func newSettings(opts []Option) settings {
	s := settings{
		parallelThreshold: parallel.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	if s.id == "" {
		s.id = ulid.Make().String()
	}
	return s
}

// Option configures an estimator.
type Option func(*settings)

// WithLogger sets the logger. Defaults to log.GetLogger().
func WithLogger(l log.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithEstimatorID overrides the generated ULID used in log records.
func WithEstimatorID(id string) Option {
	return func(s *settings) {
		s.id = id
	}
}

// WithNComponents fixes the number of bias subspace components for
// MulticlassHardDebias. 0 means max(group size) − 1. HardDebias ignores it.
func WithNComponents(k int) Option {
	return func(s *settings) {
		s.nComponents = k
	}
}

// WithNormalize rescales every neutralized vector to unit length.
func WithNormalize(normalize bool) Option {
	return func(s *settings) {
		s.normalize = normalize
	}
}

// WithCaseVariants expands each binary equalize pair with its lower, Title and
// UPPER case forms at fit time. Forms missing from the vocabulary are dropped.
func WithCaseVariants(enable bool) Option {
	return func(s *settings) {
		s.caseVariants = enable
	}
}

// WithMemoryBudget makes TransformToCopy reserve the clone size from b first.
func WithMemoryBudget(b *performance.MemoryBudget) Option {
	return func(s *settings) {
		s.budget = b
	}
}

// WithParallelThreshold sets the target count above which neutralization
// fans out across CPUs.
func WithParallelThreshold(n int) Option {
	return func(s *settings) {
		s.parallelThreshold = n
	}
}

// transformConfig is built fresh for every transform call.
type transformConfig struct {
	target   Selector
	ignore   []string
	progress func(Progress)
}

func newTransformConfig(opts []TransformOption) *transformConfig {
	c := &transformConfig{target: All()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *transformConfig) selector() Selector {
	return c.target.Except(c.ignore...)
}

func (c *transformConfig) report(stage string, done, total int) {
	if c.progress != nil {
		c.progress(Progress{Stage: stage, Done: done, Total: total})
	}
}

// TransformOption configures a single transform call.
type TransformOption func(*transformConfig)

// WithTarget restricts neutralization to the words chosen by sel.
func WithTarget(sel Selector) TransformOption {
	return func(c *transformConfig) {
		c.target = sel
	}
}

// WithIgnore excludes words from neutralization. Equalization still applies
// to them when they belong to an equalize set.
func WithIgnore(words ...string) TransformOption {
	return func(c *transformConfig) {
		c.ignore = append(c.ignore, words...)
	}
}

// WithProgress registers a callback invoked synchronously from the calling
// goroutine as the transform advances.
func WithProgress(fn func(Progress)) TransformOption {
	return func(c *transformConfig) {
		c.progress = fn
	}
}
