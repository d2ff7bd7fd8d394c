package rbd

import (
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/mat"
)

// Jacobian computes the geometric Jacobian of a single body's frame, the
// Go equivalent of original_source's rbd::Jacobian. It caches the
// root-to-body joint path once at construction (the path never changes
// for a fixed topology) and is reused tick after tick.
//
// Columns are stacked in path order, angular rows 0-2 / linear rows 3-5,
// matching spec.md §6.2's "[angular;linear]" convention.
type Jacobian struct {
	bodyIdx int
	path    []int
	dof     int
}

// NewJacobian builds a Jacobian calculator for mb's body bodyIdx.
func NewJacobian(mb *MultiBody, bodyIdx int) *Jacobian {
	path := mb.JointsPath(bodyIdx)
	dof := 0
	for _, j := range path {
		dof += mb.Joint(j).Kind.DoF()
	}
	return &Jacobian{bodyIdx: bodyIdx, path: path, dof: dof}
}

// Dof returns the number of columns of the short (path-only) Jacobian.
func (jc *Jacobian) Dof() int { return jc.dof }

// Path returns the root-to-body joint index path this Jacobian was built for.
func (jc *Jacobian) Path() []int { return jc.path }

// Jacobian computes the short (path-only) 6 x Dof() geometric Jacobian at
// the given world point (typically mbc.BodyPosW[bodyIdx].Translation, or
// a contact/end-effector point rigidly attached to the body).
func (jc *Jacobian) Jacobian(mb *MultiBody, mbc *MultiBodyConfig, point spatial.Vec3) [][]float64 {
	J := make([][]float64, 6)
	for r := range J {
		J[r] = make([]float64, jc.dof)
	}
	col := 0
	for _, jIdx := range jc.path {
		frame := mbc.JointFrameW[jIdx]
		origin := frame.Translation
		rot := frame.Rotation
		switch mb.Joint(jIdx).Kind {
		case Fixed:
			// contributes zero columns
		case Rev:
			axis := rot.Apply(spatial.Vec3{0, 0, 1})
			setColumn(J, col, axis, axis.Cross(point.Sub(origin)))
			col++
		case Prism:
			axis := rot.Apply(spatial.Vec3{0, 0, 1})
			setColumn(J, col, spatial.Vec3{}, axis)
			col++
		case Spherical:
			for k := 0; k < 3; k++ {
				axis := rot.Apply(unitAxis(k))
				setColumn(J, col, axis, axis.Cross(point.Sub(origin)))
				col++
			}
		case Free:
			for k := 0; k < 3; k++ {
				axis := unitAxis(k) // free-flyer angular dof expressed directly in world axes
				setColumn(J, col, axis, axis.Cross(point.Sub(origin)))
				col++
			}
			for k := 0; k < 3; k++ {
				setColumn(J, col, spatial.Vec3{}, unitAxis(k))
				col++
			}
		}
	}
	return J
}

// Dot approximates the time derivative of the short Jacobian by a central
// finite difference over a small virtual time step, perturbing mbc's
// configuration forward and backward along its current alpha and
// restoring it afterwards. This mirrors the finite-difference gradient
// idiom the teacher's IK solver uses for its own Jacobian-free gradients,
// rather than a full analytic spatial-acceleration recursion (see
// DESIGN.md's Open Question #3).
func (jc *Jacobian) Dot(mb *MultiBody, mbc *MultiBodyConfig, point spatial.Vec3, dt float64) [][]float64 {
	saved := mbc.Clone()
	defer func() {
		mbc.Q = saved.Q
		mbc.BodyPosW = saved.BodyPosW
		mbc.JointFrameW = saved.JointFrameW
	}()

	stepQ(mb, mbc, dt)
	ForwardKinematics(mb, mbc)
	jPlus := jc.Jacobian(mb, mbc, point)

	mbc.Q = saved.Q
	stepQ(mb, mbc, -dt)
	ForwardKinematics(mb, mbc)
	jMinus := jc.Jacobian(mb, mbc, point)

	out := make([][]float64, 6)
	for r := range out {
		out[r] = make([]float64, jc.dof)
		for c := range out[r] {
			out[r][c] = (jPlus[r][c] - jMinus[r][c]) / (2 * dt)
		}
	}
	return out
}

// FullJacobian expands a short (path-only) Jacobian into the full 6 x
// mb.NrDof() matrix, zero outside the path's columns.
func FullJacobian(mb *MultiBody, jc *Jacobian, short [][]float64) *mat.Dense {
	full := mat.NewDense(6, mb.NrDof(), nil)
	col := 0
	for _, jIdx := range jc.path {
		base := mb.JointPosInDof(jIdx)
		dof := mb.Joint(jIdx).Kind.DoF()
		for k := 0; k < dof; k++ {
			for r := 0; r < 6; r++ {
				full.Set(r, base+k, short[r][col])
			}
			col++
		}
	}
	return full
}

func setColumn(J [][]float64, col int, angular, linear spatial.Vec3) {
	J[0][col], J[1][col], J[2][col] = angular[0], angular[1], angular[2]
	J[3][col], J[4][col], J[5][col] = linear[0], linear[1], linear[2]
}

func unitAxis(k int) spatial.Vec3 {
	var v spatial.Vec3
	v[k] = 1
	return v
}

// stepQ advances each joint's configuration by one Euler step of dt along
// its current alpha, in place — a small helper used only by Dot's
// finite-difference perturbation.
func stepQ(mb *MultiBody, mbc *MultiBodyConfig, dt float64) {
	newQ := make([][]float64, mb.NrJoints())
	for i := 0; i < mb.NrJoints(); i++ {
		newQ[i] = append([]float64(nil), mbc.Q[i]...)
		integrateJointQ(mb.Joint(i), newQ[i], mbc.Alpha[i], dt)
	}
	mbc.Q = newQ
}
