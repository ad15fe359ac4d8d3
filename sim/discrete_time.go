package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Discrete is a basic model of a linear, discrete-time, dynamical system
type Discrete struct {
	System
}

// NewDiscrete creates a linear discrete-time model based on the control
// theory equations:
//
//	x[n+1] = A*x[n] + B*u[n]
//	y[n]   = C*x[n] + D*u[n]
//
// A is required; B, C and D may be nil. A nil C defaults to the identity.
func NewDiscrete(A, B, C, D *mat.Dense) (*Discrete, error) {
	if A == nil {
		return nil, fmt.Errorf("system matrix must be defined for a model")
	}

	rows, cols := A.Dims()
	if rows != cols {
		return nil, fmt.Errorf("invalid system matrix dimensions: [%d x %d]", rows, cols)
	}

	return &Discrete{System: newSystem(A, B, C, D)}, nil
}

// Propagate returns the next internal state x of the system given an
// input vector u and a process noise vector wd; either may be nil.
func (d *Discrete) Propagate(x, u, wd mat.Vector) (mat.Vector, error) {
	nx, nu, _ := d.SystemDims()
	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("invalid input vector")
	}

	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector")
	}

	out := new(mat.Dense)
	out.Mul(d.A, x)

	if u != nil && d.B != nil {
		outU := new(mat.Dense)
		outU.Mul(d.B, u)

		out.Add(out, outU)
	}

	if wd != nil && wd.Len() == nx {
		out.Add(out, wd)
	}

	return out.ColView(0), nil
}

// Observe returns the output y of the system given internal state x,
// input vector u and a measurement noise vector wn; u and wn may be nil.
func (d *Discrete) Observe(x, u, wn mat.Vector) (mat.Vector, error) {
	nx, nu, ny := d.SystemDims()
	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("invalid input vector")
	}

	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector")
	}

	out := new(mat.Dense)
	out.Mul(d.C, x)

	if u != nil && d.D != nil {
		outU := new(mat.Dense)
		outU.Mul(d.D, u)

		out.Add(out, outU)
	}

	if wn != nil && wn.Len() == ny {
		out.Add(out, wn)
	}

	return out.ColView(0), nil
}
