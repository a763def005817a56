// Package config loads debiasing jobs from YAML files.
//
// A job names the bias criterion, the definitional and equalize word sets and
// the transform selection:
//
//	algorithm: hard
//	criterion: gender
//	definitional: [[he, she], [man, woman]]
//	equalize: [[king, queen]]
//	ignore: [he, she, man, woman]
//	copy: true
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/debias/debias"
	"github.com/YuminosukeSato/debias/embedding"
	"github.com/YuminosukeSato/debias/pkg/errors"
)

// Supported algorithm names.
const (
	AlgorithmHard       = "hard"
	AlgorithmMulticlass = "multiclass"
)

// WordVector is one inline vocabulary entry.
type WordVector struct {
	Word   string    `yaml:"word"`
	Vector []float64 `yaml:"vector"`
}

// Config is one debiasing job.
type Config struct {
	Algorithm    string       `yaml:"algorithm"`
	Criterion    string       `yaml:"criterion"`
	Definitional [][]string   `yaml:"definitional"`
	Equalize     [][]string   `yaml:"equalize,omitempty"`
	Target       []string     `yaml:"target,omitempty"`
	Ignore       []string     `yaml:"ignore,omitempty"`
	Copy         *bool        `yaml:"copy,omitempty"`
	NComponents  int          `yaml:"n_components,omitempty"`
	Normalize    bool         `yaml:"normalize,omitempty"`
	CaseVariants bool         `yaml:"case_variants,omitempty"`
	LogLevel     string       `yaml:"log_level,omitempty"`
	Vectors      []WordVector `yaml:"vectors,omitempty"`
}

// Load reads and validates a job file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write config %s", path)
}

func applyDefaults(cfg *Config) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmHard
	}
	if cfg.Criterion == "" {
		cfg.Criterion = debias.DefaultCriterion
	}
	if cfg.Copy == nil {
		copyDefault := true
		cfg.Copy = &copyDefault
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks set sizes for the chosen algorithm. Vocabulary membership
// is checked later by Fit and the transforms.
func (c *Config) Validate() error {
	var lo, hi int
	switch c.Algorithm {
	case AlgorithmHard:
		lo, hi = 2, 2
	case AlgorithmMulticlass:
		lo, hi = 2, 0
	default:
		return errors.NewValidationError("algorithm", "must be hard or multiclass", c.Algorithm)
	}
	if len(c.Definitional) == 0 {
		return errors.NewValidationError("definitional", "at least one set is required", c.Definitional)
	}
	groups := []struct {
		name string
		sets [][]string
	}{
		{"definitional", c.Definitional},
		{"equalize", c.Equalize},
	}
	for _, g := range groups {
		for _, s := range g.sets {
			if len(s) < lo || (hi > 0 && len(s) > hi) {
				return errors.NewValidationError(g.name, "wrong set size for "+c.Algorithm, s)
			}
		}
	}
	if c.NComponents < 0 {
		return errors.NewValidationError("n_components", "must not be negative", c.NComponents)
	}
	return nil
}

// CopyEnabled reports whether the transform should run on a copy.
func (c *Config) CopyEnabled() bool {
	return c.Copy == nil || *c.Copy
}

// EstimatorOptions converts the estimator settings of c. extra options are
// appended after them.
func (c *Config) EstimatorOptions(extra ...debias.Option) []debias.Option {
	opts := []debias.Option{
		debias.WithNormalize(c.Normalize),
		debias.WithCaseVariants(c.CaseVariants),
		debias.WithNComponents(c.NComponents),
	}
	return append(opts, extra...)
}

// TransformOptions converts target and ignore into transform options.
func (c *Config) TransformOptions(extra ...debias.TransformOption) []debias.TransformOption {
	sel := debias.All()
	if len(c.Target) > 0 {
		sel = debias.Only(c.Target...)
	}
	opts := []debias.TransformOption{debias.WithTarget(sel)}
	if len(c.Ignore) > 0 {
		opts = append(opts, debias.WithIgnore(c.Ignore...))
	}
	return append(opts, extra...)
}

// NewDebiaser builds the estimator named by Algorithm and fits it on vs.
func (c *Config) NewDebiaser(vs embedding.VectorSpace, extra ...debias.Option) (debias.Debiaser, error) {
	opts := c.EstimatorOptions(extra...)
	switch c.Algorithm {
	case AlgorithmMulticlass:
		m := debias.NewMulticlassHardDebias(opts...)
		if err := m.Fit(vs, c.Definitional, c.Equalize, c.Criterion); err != nil {
			return nil, err
		}
		return m, nil
	default:
		h := debias.NewHardDebias(opts...)
		if err := h.Fit(vs, c.Definitional, c.Equalize, c.Criterion); err != nil {
			return nil, err
		}
		return h, nil
	}
}

// VectorSpace builds an in-memory space from the inline vectors.
func (c *Config) VectorSpace() (*embedding.KeyedVectors, error) {
	if len(c.Vectors) == 0 {
		return nil, errors.NewModelError("config.VectorSpace", "no inline vectors", errors.ErrEmptyData)
	}
	words := make([]string, len(c.Vectors))
	vectors := make([][]float64, len(c.Vectors))
	for i, wv := range c.Vectors {
		words[i] = wv.Word
		vectors[i] = wv.Vector
	}
	return embedding.FromVectors(words, vectors)
}
