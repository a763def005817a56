package embedding

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/debias/pkg/errors"
)

// KeyedVectors is an in-memory VectorSpace. Vectors are rows of a *mat.Dense
// in insertion order.
//
// Element access is guarded by an RWMutex. Lock/Unlock additionally provide an
// exclusive mutation session, taken by in-place transforms so two of them
// cannot interleave on the same space.
type KeyedVectors struct {
	mu      sync.RWMutex
	session sync.Mutex

	dim   int
	words []string
	index map[string]int
	data  *mat.Dense
}

// minRowCapacity is the first allocation made by Add on an empty space.
const minRowCapacity = 16

// NewKeyedVectors creates an empty space of the given dimensionality.
func NewKeyedVectors(dim int) (*KeyedVectors, error) {
	if dim <= 0 {
		return nil, errors.NewValidationError("dim", "must be positive", dim)
	}
	return &KeyedVectors{
		dim:   dim,
		index: make(map[string]int),
	}, nil
}

// FromVectors builds a space from parallel word and vector slices.
func FromVectors(words []string, vectors [][]float64) (*KeyedVectors, error) {
	if len(words) == 0 {
		return nil, errors.NewModelError("embedding.FromVectors", "empty vocabulary", errors.ErrEmptyData)
	}
	if len(words) != len(vectors) {
		return nil, errors.NewDimensionError("embedding.FromVectors", len(words), len(vectors), 0)
	}

	kv, err := NewKeyedVectors(len(vectors[0]))
	if err != nil {
		return nil, err
	}
	data := make([]float64, 0, len(words)*kv.dim)
	for i, w := range words {
		if len(vectors[i]) != kv.dim {
			return nil, errors.NewDimensionError("embedding.FromVectors", kv.dim, len(vectors[i]), 1)
		}
		if _, dup := kv.index[w]; dup {
			return nil, errors.Wrapf(errors.ErrDuplicateWord, "word %q", w)
		}
		kv.index[w] = i
		data = append(data, vectors[i]...)
	}
	kv.words = append([]string(nil), words...)
	kv.data = mat.NewDense(len(words), kv.dim, data)
	return kv, nil
}

// FromMap builds a space from a map, ordering words as given by order.
// Every word in order must be a key of vectors.
func FromMap(order []string, vectors map[string][]float64) (*KeyedVectors, error) {
	rows := make([][]float64, len(order))
	for i, w := range order {
		v, ok := vectors[w]
		if !ok {
			return nil, errors.NewMissingWordError(w, "vocabulary", -1)
		}
		rows[i] = v
	}
	return FromVectors(order, rows)
}

// Add appends a new word. Adding an existing word is an error.
//
// Row storage grows geometrically, so building a space word by word costs
// amortized O(Dim) per call. Bulk loads should still prefer FromVectors,
// which allocates the matrix once.
func (kv *KeyedVectors) Add(word string, vec []float64) error {
	if len(vec) != kv.dim {
		return errors.NewDimensionError("KeyedVectors.Add", kv.dim, len(vec), 1)
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	if _, dup := kv.index[word]; dup {
		return errors.Wrapf(errors.ErrDuplicateWord, "word %q", word)
	}

	n := len(kv.words)
	capRows := 0
	if kv.data != nil {
		capRows, _ = kv.data.Caps()
	}
	if n+1 > capRows {
		// 容量を倍にして既存の行を移す
		backing := mat.NewDense(max(2*capRows, minRowCapacity), kv.dim, nil)
		if n > 0 {
			backing.Slice(0, n, 0, kv.dim).(*mat.Dense).Copy(kv.data)
		}
		kv.data = backing.Slice(0, n+1, 0, kv.dim).(*mat.Dense)
	} else {
		kv.data = kv.data.Slice(0, n+1, 0, kv.dim).(*mat.Dense)
	}
	kv.data.SetRow(n, vec)

	kv.index[word] = n
	kv.words = append(kv.words, word)
	return nil
}

// Dim implements VectorSpace.
func (kv *KeyedVectors) Dim() int { return kv.dim }

// Len implements VectorSpace.
func (kv *KeyedVectors) Len() int {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	return len(kv.words)
}

// Contains implements VectorSpace.
func (kv *KeyedVectors) Contains(word string) bool {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	_, ok := kv.index[word]
	return ok
}

// Vector implements VectorSpace.
func (kv *KeyedVectors) Vector(word string) ([]float64, bool) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	i, ok := kv.index[word]
	if !ok {
		return nil, false
	}
	return mat.Row(nil, i, kv.data), true
}

// VectorTo implements VectorReader. dst must have length Dim.
func (kv *KeyedVectors) VectorTo(dst []float64, word string) bool {
	if len(dst) != kv.dim {
		return false
	}
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	i, ok := kv.index[word]
	if !ok {
		return false
	}
	mat.Row(dst, i, kv.data)
	return true
}

// Words implements VectorSpace. The order is insertion order.
func (kv *KeyedVectors) Words() []string {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	return append([]string(nil), kv.words...)
}

// SetVector implements VectorSpace.
func (kv *KeyedVectors) SetVector(word string, vec []float64) error {
	if len(vec) != kv.dim {
		return errors.NewDimensionError("KeyedVectors.SetVector", kv.dim, len(vec), 1)
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	i, ok := kv.index[word]
	if !ok {
		return errors.NewMissingWordError(word, "vocabulary", -1)
	}
	kv.data.SetRow(i, vec)
	return nil
}

// Clone implements VectorSpace. An allocation panic during the copy is
// reported as an InsufficientMemoryError.
func (kv *KeyedVectors) Clone() (VectorSpace, error) {
	return kv.CloneKeyed()
}

// CloneKeyed is Clone with a concrete result type.
func (kv *KeyedVectors) CloneKeyed() (clone *KeyedVectors, err error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	required := int64(len(kv.words)) * int64(kv.dim) * 8
	err = errors.SafeExecute("KeyedVectors.Clone", func() error {
		c := &KeyedVectors{
			dim:   kv.dim,
			words: append([]string(nil), kv.words...),
			index: make(map[string]int, len(kv.index)),
		}
		for w, i := range kv.index {
			c.index[w] = i
		}
		if kv.data != nil {
			c.data = mat.DenseCopyOf(kv.data)
		}
		clone = c
		return nil
	})
	if err != nil {
		return nil, errors.NewInsufficientMemoryError("KeyedVectors.Clone", required, -1, err)
	}
	return clone, nil
}

// Matrix returns a copy of the underlying rows (Len × Dim) in Words() order.
func (kv *KeyedVectors) Matrix() *mat.Dense {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	if kv.data == nil {
		return nil
	}
	return mat.DenseCopyOf(kv.data)
}

// Lock starts an exclusive mutation session.
func (kv *KeyedVectors) Lock() { kv.session.Lock() }

// Unlock ends the session started by Lock.
func (kv *KeyedVectors) Unlock() { kv.session.Unlock() }
