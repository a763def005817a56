// Package embedding defines the word vector space contract consumed by the
// debiasing estimators and an in-memory implementation of it.
//
// Loading models from disk or the network is left to callers: build a
// KeyedVectors from whatever source they use, or implement VectorSpace over
// their own storage.
package embedding

// VectorSpace is a mapping from case-sensitive words to dense vectors that all
// share Dim() components.
type VectorSpace interface {
	// Dim returns the dimensionality shared by every vector.
	Dim() int

	// Len returns the vocabulary size.
	Len() int

	// Contains reports whether word is in the vocabulary.
	Contains(word string) bool

	// Vector returns a copy of the vector for word, or false if absent.
	Vector(word string) ([]float64, bool)

	// Words enumerates the vocabulary in a stable order.
	Words() []string

	// Clone returns a deep copy that shares no storage with the receiver.
	Clone() (VectorSpace, error)

	// SetVector replaces the vector of an existing word.
	SetVector(word string, vec []float64) error
}

// VectorReader is implemented by spaces that can copy a vector into a
// caller-owned buffer. Transforms use it to stream over large vocabularies
// without allocating one slice per word.
type VectorReader interface {
	// VectorTo copies the vector for word into dst, which must have length
	// Dim, and reports whether word exists.
	VectorTo(dst []float64, word string) bool
}

var _ VectorReader = (*KeyedVectors)(nil)
