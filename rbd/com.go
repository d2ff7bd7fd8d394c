package rbd

import (
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/mat"
)

// ComputeCoM returns the total mass-weighted center of mass in world
// frame. Bodies are treated as point masses at their own origin (see
// DESIGN.md's rbd/ entry); totalMass must be precomputed by the caller
// (see TotalMass) to avoid recomputing it every tick.
func ComputeCoM(mb *MultiBody, mbc *MultiBodyConfig, totalMass float64) spatial.Vec3 {
	var com spatial.Vec3
	for i := 0; i < mb.NrBodies(); i++ {
		com = com.Add(mbc.BodyPosW[i].Translation.Scale(mb.Body(i).Mass))
	}
	if totalMass < 1e-12 {
		return spatial.Vec3{}
	}
	return com.Scale(1 / totalMass)
}

// TotalMass sums every body's mass.
func TotalMass(mb *MultiBody) float64 {
	var m float64
	for i := 0; i < mb.NrBodies(); i++ {
		m += mb.Body(i).Mass
	}
	return m
}

// CoMJacobian computes d(CoM)/dq as a 3 x nrDof matrix, optionally
// scaling individual bodies' mass-fraction contributions by a per-body
// weight — the Go equivalent of original_source's
// CoMJacobianDummy, used by the manipulated-body task to down-weight the
// virtual manip body's pull on the whole-body CoM (spec.md §4.1
// ManipCoM/ManipMomentum, SPEC_FULL.md §10 Open Question #2).
type CoMJacobian struct {
	weights []float64 // per-body multiplier on mass/totalMass; nil means 1 for every body
}

// NewCoMJacobian builds a CoM Jacobian using each body's own mass
// fraction as its weight.
func NewCoMJacobian(mb *MultiBody) *CoMJacobian {
	return &CoMJacobian{}
}

// NewCoMJacobianDummy builds a CoM Jacobian with explicit per-body
// weights (length mb.NrBodies()), each multiplying that body's mass
// fraction — e.g. ManipWeight for the virtual manip body and 1.0 elsewhere.
func NewCoMJacobianDummy(weights []float64) *CoMJacobian {
	return &CoMJacobian{weights: weights}
}

// Jacobian returns the 3 x nrDof CoM Jacobian (linear rows only; the
// whole-body CoM has no intrinsic orientation).
func (cj *CoMJacobian) Jacobian(mb *MultiBody, mbc *MultiBodyConfig) *mat.Dense {
	total := TotalMass(mb)
	out := mat.NewDense(3, mb.NrDof(), nil)
	for i := 0; i < mb.NrBodies(); i++ {
		w := cj.weightFor(mb, i, total)
		if w == 0 {
			continue
		}
		jc := NewJacobian(mb, i)
		short := jc.Jacobian(mb, mbc, mbc.BodyPosW[i].Translation)
		full := FullJacobian(mb, jc, short)
		for r := 0; r < 3; r++ {
			for c := 0; c < mb.NrDof(); c++ {
				out.Set(r, c, out.At(r, c)+w*full.At(3+r, c))
			}
		}
	}
	return out
}

func (cj *CoMJacobian) weightFor(mb *MultiBody, bodyIdx int, totalMass float64) float64 {
	if totalMass < 1e-12 {
		return 0
	}
	frac := mb.Body(bodyIdx).Mass / totalMass
	if cj.weights != nil {
		return cj.weights[bodyIdx] * frac
	}
	return frac
}
