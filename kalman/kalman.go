// Package kalman implements a linear Kalman filter over bounded
// fixed-point matrices. All arithmetic is integer backed, so given
// identical inputs the filter produces bit-identical estimates on every
// platform. The filter mutates its state in place; it holds no locks and
// a single Filter must not be shared across goroutines without external
// synchronization.
package kalman

import (
	"errors"
	"fmt"

	filter "github.com/go-estimation/fixkalman"
	"github.com/go-estimation/fixkalman/fix"
	"github.com/go-estimation/fixkalman/matrix"
)

// ErrInvalidLambda is returned by PredictTuned when the fading-memory
// factor is not positive.
var ErrInvalidLambda = errors.New("kalman: tuning factor must be positive")

var (
	_ filter.Predictor = (*Filter)(nil)
	_ filter.Estimator = (*Filter)(nil)
)

// Filter is a fixed-point linear Kalman filter.
//
// It owns the state vector x (nx x 1), the state transition matrix A
// (nx x nx), the state covariance P (nx x nx, kept exactly symmetric),
// the process noise covariance Q (nx x nx) and, when control inputs are
// configured, the control matrix B (nx x nu) and input vector u (nu x 1).
// All matrices are zeroed at construction and populated by the caller
// through the accessor views.
type Filter struct {
	// nx is the number of states
	nx int
	// nu is the number of control inputs
	nu int
	// x is the state vector
	x matrix.Matrix
	// a is the state transition matrix
	a matrix.Matrix
	// p is the state covariance matrix
	p matrix.Matrix
	// q is the process noise covariance matrix
	q matrix.Matrix
	// b is the control matrix, unused when nu == 0
	b matrix.Matrix
	// u is the input vector, unused when nu == 0
	u matrix.Matrix
	// eye is the nx x nx identity, used by the Joseph form update
	eye matrix.Matrix
}

// New creates a new Filter with nx states and nu control inputs and
// zero-fills its matrices. nu may be 0 for a system without inputs.
// It returns error if the dimensions are not positive or exceed the
// matrix capacity.
func New(nx, nu int) (*Filter, error) {
	if nx <= 0 || nx > matrix.Cap {
		return nil, fmt.Errorf("invalid state count: %d", nx)
	}
	if nu < 0 || nu > matrix.Cap {
		return nil, fmt.Errorf("invalid input count: %d", nu)
	}

	k := &Filter{nx: nx, nu: nu}

	x, err := matrix.New(nx, 1)
	if err != nil {
		return nil, err
	}
	k.x = *x

	sq, err := matrix.New(nx, nx)
	if err != nil {
		return nil, err
	}
	k.a, k.p, k.q = *sq, *sq, *sq

	if nu > 0 {
		b, err := matrix.New(nx, nu)
		if err != nil {
			return nil, err
		}
		k.b = *b

		u, err := matrix.New(nu, 1)
		if err != nil {
			return nil, err
		}
		k.u = *u
	}

	eye, err := matrix.Eye(nx)
	if err != nil {
		return nil, err
	}
	k.eye = *eye

	return k, nil
}

// Dims returns the state and input counts of the filter.
func (k *Filter) Dims() (nx, nu int) {
	return k.nx, k.nu
}

// State returns a mutable view of the state vector x.
func (k *Filter) State() *matrix.Matrix {
	return &k.x
}

// SystemMatrix returns a mutable view of the state transition matrix A.
func (k *Filter) SystemMatrix() *matrix.Matrix {
	return &k.a
}

// Cov returns a mutable view of the state covariance matrix P.
// Callers populate it with SetSym so it starts out symmetric; Predict
// and Correct keep it exactly symmetric from then on.
func (k *Filter) Cov() *matrix.Matrix {
	return &k.p
}

// ProcessNoise returns a mutable view of the process noise covariance Q.
// Q is added to the covariance on every Predict; it is zero by default.
func (k *Filter) ProcessNoise() *matrix.Matrix {
	return &k.q
}

// ControlMatrix returns a mutable view of the control matrix B, or nil
// if the filter was created without inputs.
func (k *Filter) ControlMatrix() *matrix.Matrix {
	if k.nu == 0 {
		return nil
	}
	return &k.b
}

// Input returns a mutable view of the input vector u, or nil if the
// filter was created without inputs.
func (k *Filter) Input() *matrix.Matrix {
	if k.nu == 0 {
		return nil
	}
	return &k.u
}

// Predict performs the time update of the filter:
//
//	x = A*x + B*u
//	P = A*P*A' + Q
//
// It mutates x and P in place.
func (k *Filter) Predict() error {
	return k.PredictTuned(fix.One)
}

// PredictTuned performs the time update with a fading-memory factor
// lambda in (0, 1]:
//
//	x = A*x + B*u
//	P = 1/lambda^2 * (A*P*A') + Q
//
// lambda below 1 inflates the predicted uncertainty, biasing the filter
// toward recent measurements at the cost of estimator responsiveness.
// It returns ErrInvalidLambda if lambda is not positive.
func (k *Filter) PredictTuned(lambda fix.Q16) error {
	if lambda <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidLambda, lambda)
	}

	// x = A*x + B*u
	k.x.Mul(&k.a, &k.x)
	if k.nu > 0 {
		var bu matrix.Matrix
		bu.Mul(&k.b, &k.u)
		k.x.Add(&k.x, &bu)
	}

	// P = 1/lambda^2 * (A*P*A') + Q
	var ap matrix.Matrix
	ap.Mul(&k.a, &k.p)
	k.p.MulTrans(&ap, &k.a)
	k.p.Scale(fix.One.Div(lambda.Mul(lambda)), &k.p)
	k.p.Add(&k.p, &k.q)
	k.p.MirrorUpper()

	return nil
}

// Correct fuses the measurement m into the filter state:
//
//	S  = H*P*H' + R
//	Kg = P*H'*inv(S)
//	x  = x + Kg*(z - H*x)
//	P  = (I - Kg*H)*P*(I - Kg*H)' + Kg*R*Kg'
//
// The covariance update uses the Joseph form, which stays symmetric and
// positive semi-definite under fixed-point rounding where the naive
// P - Kg*H*P form erodes both over many cycles.
//
// It mutates x, P and the measurement scratch matrices S and Kg in
// place. It returns error if the measurement was built against a
// different state count, or if the innovation covariance is singular, in
// which case the returned error wraps matrix.ErrSingular and the filter
// state is left unchanged so the caller may skip the fusion cycle and
// keep predicting.
func (k *Filter) Correct(m *Measurement) error {
	if m.nx != k.nx {
		return fmt.Errorf("invalid measurement state count: %d != %d", m.nx, k.nx)
	}

	// S = H*P*H' + R
	var hp matrix.Matrix
	hp.Mul(&m.h, &k.p)
	m.s.MulTrans(&hp, &m.h)
	m.s.Add(&m.s, &m.r)
	m.s.MirrorUpper()

	var sInv matrix.Matrix
	if err := sInv.Invert(&m.s); err != nil {
		return fmt.Errorf("failed to invert innovation covariance: %w", err)
	}

	// Kg = P*H'*inv(S)
	var pht matrix.Matrix
	pht.MulTrans(&k.p, &m.h)
	m.kg.Mul(&pht, &sInv)

	// x = x + Kg*(z - H*x)
	var y matrix.Matrix
	y.Mul(&m.h, &k.x)
	y.Sub(&m.z, &y)
	y.Mul(&m.kg, &y)
	k.x.Add(&k.x, &y)

	// P = (I - Kg*H)*P*(I - Kg*H)' + Kg*R*Kg'
	var ikh matrix.Matrix
	ikh.Mul(&m.kg, &m.h)
	ikh.Sub(&k.eye, &ikh)

	var p matrix.Matrix
	p.Mul(&ikh, &k.p)
	p.MulTrans(&p, &ikh)

	var kr matrix.Matrix
	kr.Mul(&m.kg, &m.r)
	kr.MulTrans(&kr, &m.kg)

	k.p.Add(&p, &kr)
	k.p.MirrorUpper()

	return nil
}
