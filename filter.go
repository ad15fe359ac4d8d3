package fixkalman

import (
	"github.com/go-estimation/fixkalman/fix"
	"github.com/go-estimation/fixkalman/matrix"
)

// Predictor advances filter state one time step.
type Predictor interface {
	// Predict performs the time update of the filter state
	Predict() error
	// PredictTuned performs the time update with a fading-memory factor lambda
	PredictTuned(lambda fix.Q16) error
}

// Estimator exposes the current state estimate of a filter.
type Estimator interface {
	// State returns the state vector estimate
	State() *matrix.Matrix
	// Cov returns the state covariance estimate
	Cov() *matrix.Matrix
}
