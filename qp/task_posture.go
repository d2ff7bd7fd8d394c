package qp

import (
	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// PostureTask drives every actuated joint towards a target configuration,
// used as the lowest-priority fallback task keeping the robot near a
// comfortable posture when no higher-priority task constrains a DoF.
// Grounded on original_source's PostureTask (Tasks.cpp:196-265): the
// root joint (fixed or free-flyer) is always excluded, one scalar
// residual per revolute/prismatic joint, a 3-vector rotation-error
// residual per spherical joint, and the Jacobian is the identity with
// the root's block zeroed.
//
// original_source dispatches on `joint.dof()==1` vs `==4` to distinguish
// revolute/prismatic from spherical; this module has an explicit Kind
// enum so it switches on Kind directly instead of re-deriving the joint
// type from a magic DoF count.
type PostureTask struct {
	baseTask
	target [][]float64 // per-joint target q, same shape as MultiBodyConfig.Q

	eval []float64
	jac  *mat.Dense
}

func NewPostureTask(mb *rbd.MultiBody, target [][]float64, weight float64, cfg Config) *PostureTask {
	n := mb.NrDof()
	jac := mat.NewDense(n, n, nil)
	rootDof := 0
	if mb.NrJoints() > 0 {
		rootDof = mb.Joint(0).Kind.DoF()
	}
	for i := rootDof; i < n; i++ {
		jac.Set(i, i, 1)
	}
	return &PostureTask{
		baseTask: newBaseTask(weight, cfg),
		target:   target,
		eval:     make([]float64, n),
		jac:      jac,
	}
}

// SetTarget updates the desired posture in place.
func (t *PostureTask) SetTarget(target [][]float64) { t.target = target }

func (t *PostureTask) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig) {
	for i := range t.eval {
		t.eval[i] = 0
	}
	if mb.NrJoints() < 2 {
		return
	}
	pos := mb.JointPosInDof(1)
	for i := 1; i < mb.NrJoints(); i++ {
		switch mb.Joint(i).Kind {
		case rbd.Rev, rbd.Prism:
			t.eval[pos] = t.target[i][0] - mbc.Q[i][0]
			pos++
		case rbd.Spherical:
			targetRot := spQuat(t.target[i])
			curRot := spQuat(mbc.Q[i])
			err := rbd.RotationError(curRot, targetRot, rotationErrorEps)
			t.eval[pos], t.eval[pos+1], t.eval[pos+2] = err[0], err[1], err[2]
			pos += 3
		case rbd.Fixed, rbd.Free:
			// no configuration to drive towards
		}
	}
}

func (t *PostureTask) Eval() []float64 { return t.eval }
func (t *PostureTask) Jac() *mat.Dense { return t.jac }

func spQuat(q []float64) spatial.Rotation {
	return spatial.RotationFromQuaternion(quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]})
}
