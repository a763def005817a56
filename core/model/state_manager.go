// Package model provides estimator state management and persistence shared by
// the debiasing estimators.
package model

import (
	"sync"

	"github.com/YuminosukeSato/debias/pkg/errors"
)

// StateManager manages the fitted state of an estimator in a thread-safe manner.
// Exported fields exist for gob encoding.
type StateManager struct {
	Fitted bool
	mu     sync.RWMutex

	// NFeatures is the embedding dimensionality seen during Fit.
	NFeatures int
	// NSamples is the number of deviation rows used to estimate the subspace.
	NSamples int
	// Criterion names the bias criterion of the last Fit.
	Criterion string
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// State returns NotFitted or Fitted.
func (s *StateManager) State() EstimatorState {
	if s.IsFitted() {
		return Fitted
	}
	return NotFitted
}

// SetFitted marks the model as fitted with the given metadata.
func (s *StateManager) SetFitted(criterion string, nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
	s.Criterion = criterion
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.Criterion = ""
	s.NFeatures = 0
	s.NSamples = 0
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// RequireFitted returns a NotFittedError if the model has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// ModelState represents the complete state of an estimator.
type ModelState struct {
	Fitted    bool   `json:"fitted"`
	Criterion string `json:"criterion,omitempty"`
	NFeatures int    `json:"n_features,omitempty"`
	NSamples  int    `json:"n_samples,omitempty"`
}

// GetState returns the current state as a ModelState struct.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{
		Fitted:    s.Fitted,
		Criterion: s.Criterion,
		NFeatures: s.NFeatures,
		NSamples:  s.NSamples,
	}
}

// WithState executes fn with the state locked for reading.
func (s *StateManager) WithState(fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn()
}

// WithStateMut executes fn with the state locked for writing.
func (s *StateManager) WithStateMut(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
