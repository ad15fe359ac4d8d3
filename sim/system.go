// Package sim provides float64 truth-model simulation used to exercise
// the fixed-point filter: linear discrete-time plants that generate
// reference trajectories and noisy measurements, and plotting of the
// resulting series. The engine itself never depends on this package.
package sim

import (
	matrix "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// System defines a linear model of a plant using
// traditional matrices of modern control theory.
//
// It contains the system (A), input (B), observation/output (C) and
// feedthrough (D) matrices.
type System struct {
	// System/State matrix A
	A *mat.Dense
	// Control/Input matrix B
	B *mat.Dense
	// Observation/Output matrix C
	C *mat.Dense
	// Feedthrough matrix D
	D *mat.Dense
}

func newSystem(A, B, C, D *mat.Dense) System {
	sys := System{A: mat.DenseCopyOf(A)}
	if B != nil {
		sys.B = mat.DenseCopyOf(B)
	}
	if C != nil {
		sys.C = mat.DenseCopyOf(C)
	} else {
		// a plant without an explicit observation matrix exposes its
		// full state
		nx, _ := A.Dims()
		eye, _ := matrix.NewDenseValIdentity(nx, 1.0)
		sys.C = eye
	}
	if D != nil {
		sys.D = mat.DenseCopyOf(D)
	}
	return sys
}

// SystemDims returns internal state length (nx), input vector length
// (nu) and output vector length (ny).
func (s System) SystemDims() (nx, nu, ny int) {
	nx, _ = s.A.Dims()
	if s.B != nil {
		_, nu = s.B.Dims()
	}
	ny, _ = s.C.Dims()
	return nx, nu, ny
}

// SystemMatrix returns state propagation matrix A.
func (s System) SystemMatrix() mat.Matrix { return s.A }

// ControlMatrix returns state propagation control matrix B.
func (s System) ControlMatrix() mat.Matrix {
	if s.B == nil {
		return nil
	}
	return s.B
}

// OutputMatrix returns observation matrix C.
func (s System) OutputMatrix() mat.Matrix { return s.C }

// FeedForwardMatrix returns observation control matrix D.
func (s System) FeedForwardMatrix() mat.Matrix {
	if s.D == nil {
		return nil
	}
	return s.D
}
