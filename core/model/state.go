// Package model holds the pieces every minwls estimator shares: fitted-state
// tracking and the JSON envelope models are exported in.
//
// Estimators compose a *StateManager rather than embedding a base type:
//
//	type MyModel struct {
//		state *model.StateManager
//	}
//
//	func (m *MyModel) Fit(X, y mat.Matrix) error {
//		// training logic
//		m.state.SetFitted()
//		return nil
//	}
package model

import "sync"

// StateManager tracks whether an estimator is fitted and the shape it was
// fitted on. It is safe for concurrent use.
type StateManager struct {
	mu        sync.RWMutex
	fitted    bool
	nFeatures int
	nSamples  int
}

// NewStateManager returns an unfitted state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted reports whether SetFitted has been called since the last Reset.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the estimator as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	s.fitted = true
	s.mu.Unlock()
}

// SetDimensions records the training shape. nSamples is 0 when unknown,
// e.g. for a model loaded from disk.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	s.nFeatures = nFeatures
	s.nSamples = nSamples
	s.mu.Unlock()
}

// Dimensions returns the recorded training shape.
func (s *StateManager) Dimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// Reset returns to the unfitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
	s.mu.Unlock()
}
