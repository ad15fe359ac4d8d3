// Package noise provides synthetic noise sources for measurement
// generation. It lives entirely in the float64 domain: noise is sampled
// at the system boundary and converted to fixed point together with the
// measurement it perturbs.
package noise

import "gonum.org/v1/gonum/mat"

// Noise is a source of random system or measurement noise.
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise source
	Reset() error
}
