package rbd

import (
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/mat"
)

// ComputeCentroidalMomentum returns the robot's linear momentum and
// angular momentum about com, summed over the point-mass bodies (see
// DESIGN.md's rbd/ entry on the point-mass simplification).
func ComputeCentroidalMomentum(mb *MultiBody, mbc *MultiBodyConfig, com spatial.Vec3) ForceVec {
	var h ForceVec
	for i := 0; i < mb.NrBodies(); i++ {
		m := mb.Body(i).Mass
		v := mbc.BodyVel[i].Linear
		p := mbc.BodyPosW[i].Translation
		h.Linear = h.Linear.Add(v.Scale(m))
		h.Angular = h.Angular.Add(p.Sub(com).Cross(v.Scale(m)))
	}
	return h
}

// CentroidalMomentumMatrix computes the 6 x nrDof matrix A such that
// h == A * alpha, the Go equivalent of original_source's
// CentroidalMomentumMatrix used by MomentumTask.
type CentroidalMomentumMatrix struct{}

func NewCentroidalMomentumMatrix(mb *MultiBody) *CentroidalMomentumMatrix {
	return &CentroidalMomentumMatrix{}
}

// Matrix computes A at the given CoM.
func (cm *CentroidalMomentumMatrix) Matrix(mb *MultiBody, mbc *MultiBodyConfig, com spatial.Vec3) *mat.Dense {
	out := mat.NewDense(6, mb.NrDof(), nil)
	for i := 0; i < mb.NrBodies(); i++ {
		m := mb.Body(i).Mass
		if m == 0 {
			continue
		}
		jc := NewJacobian(mb, i)
		short := jc.Jacobian(mb, mbc, mbc.BodyPosW[i].Translation)
		full := FullJacobian(mb, jc, short)
		p := mbc.BodyPosW[i].Translation.Sub(com)
		skew := p.Skew()
		for c := 0; c < mb.NrDof(); c++ {
			linCol := spatial.Vec3{full.At(3, c), full.At(4, c), full.At(5, c)}
			// linear-momentum rows: m * J_linear
			out.Set(3, c, out.At(3, c)+m*linCol[0])
			out.Set(4, c, out.At(4, c)+m*linCol[1])
			out.Set(5, c, out.At(5, c)+m*linCol[2])
			// angular-momentum-about-CoM rows: m * skew(p-com) * J_linear
			ang := spatial.Vec3{
				skew[0][0]*linCol[0] + skew[0][1]*linCol[1] + skew[0][2]*linCol[2],
				skew[1][0]*linCol[0] + skew[1][1]*linCol[1] + skew[1][2]*linCol[2],
				skew[2][0]*linCol[0] + skew[2][1]*linCol[1] + skew[2][2]*linCol[2],
			}
			out.Set(0, c, out.At(0, c)+m*ang[0])
			out.Set(1, c, out.At(1, c)+m*ang[1])
			out.Set(2, c, out.At(2, c)+m*ang[2])
		}
	}
	return out
}
