package debias

import (
	"fmt"

	"github.com/YuminosukeSato/debias/embedding"
	"github.com/YuminosukeSato/debias/pkg/errors"
)

type selectorKind int

const (
	selectAll selectorKind = iota
	selectOnly
	selectAllExcept
)

// Selector chooses the words a transform neutralizes. It is one of
// All, Only(words) or AllExcept(words), optionally refined with Except.
// The zero value selects every word.
type Selector struct {
	kind    selectorKind
	include []string
	exclude []string
}

// All selects the whole vocabulary in VectorSpace.Words order.
func All() Selector {
	return Selector{kind: selectAll}
}

// Only selects exactly words, in the given order. Duplicates are dropped.
func Only(words ...string) Selector {
	return Selector{kind: selectOnly, include: append([]string(nil), words...)}
}

// AllExcept selects the whole vocabulary minus words.
func AllExcept(words ...string) Selector {
	return Selector{kind: selectAllExcept, exclude: append([]string(nil), words...)}
}

// Except returns a copy of s that additionally excludes words.
func (s Selector) Except(words ...string) Selector {
	if len(words) == 0 {
		return s
	}
	out := Selector{
		kind:    s.kind,
		include: s.include,
		exclude: make([]string, 0, len(s.exclude)+len(words)),
	}
	out.exclude = append(append(out.exclude, s.exclude...), words...)
	if out.kind == selectAll {
		out.kind = selectAllExcept
	}
	return out
}

// Resolve turns s into the ordered list of words to process. Every included
// or excluded word must exist in vs.
func (s Selector) Resolve(vs embedding.VectorSpace) ([]string, error) {
	for _, w := range s.include {
		if !vs.Contains(w) {
			return nil, errors.NewMissingWordError(w, errors.SourceTarget, -1)
		}
	}
	excluded := make(map[string]struct{}, len(s.exclude))
	for _, w := range s.exclude {
		if !vs.Contains(w) {
			return nil, errors.NewMissingWordError(w, errors.SourceIgnore, -1)
		}
		excluded[w] = struct{}{}
	}

	base := s.include
	if s.kind != selectOnly {
		base = vs.Words()
	}

	// 語彙は重複を持たないので、重複除去は Only のときだけ行う
	var seen map[string]struct{}
	if s.kind == selectOnly {
		seen = make(map[string]struct{}, len(base))
	}
	out := make([]string, 0, len(base))
	for _, w := range base {
		if _, skip := excluded[w]; skip {
			continue
		}
		if seen != nil {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
		}
		out = append(out, w)
	}
	return out, nil
}

func (s Selector) String() string {
	switch s.kind {
	case selectOnly:
		if len(s.exclude) > 0 {
			return fmt.Sprintf("Only(%d words).Except(%d words)", len(s.include), len(s.exclude))
		}
		return fmt.Sprintf("Only(%d words)", len(s.include))
	case selectAllExcept:
		return fmt.Sprintf("AllExcept(%d words)", len(s.exclude))
	default:
		return "All"
	}
}
