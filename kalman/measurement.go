package kalman

import (
	"fmt"

	"github.com/go-estimation/fixkalman/matrix"
)

// Measurement bundles one measurement set for a filter with nx states.
//
// It owns the measurement vector z (nz x 1), the measurement
// transformation matrix H (nz x nx) and the measurement noise covariance
// R (nz x nz), plus the innovation covariance S (nz x nz) and Kalman
// gain Kg (nx x nz) scratch matrices which Correct recomputes from
// scratch on every call. Several Measurements with different nz may be
// used against one Filter, one per Correct call.
type Measurement struct {
	// nx is the number of states of the associated filter
	nx int
	// nz is the number of measurements in this set
	nz int
	// z is the measurement vector
	z matrix.Matrix
	// h is the measurement transformation matrix
	h matrix.Matrix
	// r is the measurement noise covariance matrix
	r matrix.Matrix
	// s is the innovation covariance scratch matrix
	s matrix.Matrix
	// kg is the Kalman gain scratch matrix
	kg matrix.Matrix
}

// NewMeasurement creates a new Measurement for a filter with nx states
// observing nz values and zero-fills its matrices.
// It returns error if the dimensions are not positive or exceed the
// matrix capacity.
func NewMeasurement(nx, nz int) (*Measurement, error) {
	if nx <= 0 || nx > matrix.Cap {
		return nil, fmt.Errorf("invalid state count: %d", nx)
	}
	if nz <= 0 || nz > matrix.Cap {
		return nil, fmt.Errorf("invalid measurement count: %d", nz)
	}

	m := &Measurement{nx: nx, nz: nz}

	z, err := matrix.New(nz, 1)
	if err != nil {
		return nil, err
	}
	m.z = *z

	h, err := matrix.New(nz, nx)
	if err != nil {
		return nil, err
	}
	m.h = *h

	r, err := matrix.New(nz, nz)
	if err != nil {
		return nil, err
	}
	m.r, m.s = *r, *r

	kg, err := matrix.New(nx, nz)
	if err != nil {
		return nil, err
	}
	m.kg = *kg

	return m, nil
}

// Dims returns the state and measurement counts of the measurement.
func (m *Measurement) Dims() (nx, nz int) {
	return m.nx, m.nz
}

// Vec returns a mutable view of the measurement vector z.
func (m *Measurement) Vec() *matrix.Matrix {
	return &m.z
}

// OutputMatrix returns a mutable view of the measurement transformation
// matrix H.
func (m *Measurement) OutputMatrix() *matrix.Matrix {
	return &m.h
}

// NoiseCov returns a mutable view of the measurement noise covariance R.
func (m *Measurement) NoiseCov() *matrix.Matrix {
	return &m.r
}

// InnovationCov returns a read view of the innovation covariance S
// computed by the last Correct call.
func (m *Measurement) InnovationCov() *matrix.Matrix {
	return &m.s
}

// Gain returns a read view of the Kalman gain Kg computed by the last
// Correct call.
func (m *Measurement) Gain() *matrix.Matrix {
	return &m.kg
}
