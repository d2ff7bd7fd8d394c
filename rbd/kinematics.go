package rbd

import (
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/num/quat"
)

// jointMotion returns the pose contributed by a joint's own motion (on
// top of its static Xt offset), given its current configuration q.
func jointMotion(j Joint, q []float64) spatial.Pose {
	switch j.Kind {
	case Fixed:
		return spatial.IdentityPose()
	case Rev:
		return spatial.NewPose(spatial.RotationFromAxisAngle(spatial.Vec3{0, 0, 1}, q[0]), spatial.Vec3{})
	case Prism:
		return spatial.NewTranslation(spatial.Vec3{0, 0, q[0]})
	case Spherical:
		return spatial.NewPose(spatial.RotationFromQuaternion(quatFromQ(q)), spatial.Vec3{})
	case Free:
		return spatial.NewPose(spatial.RotationFromQuaternion(quatFromQ(q)), spatial.Vec3{q[4], q[5], q[6]})
	default:
		return spatial.IdentityPose()
	}
}

func quatFromQ(q []float64) quat.Number {
	return quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]}
}

// ForwardKinematics refreshes mbc.BodyPosW and mbc.JointFrameW from the
// current mbc.Q, walking the tree root-to-leaf (bodies are stored in
// topological order: a body's parent always has a smaller index, which
// NewMultiBody/WithAddedBody both preserve).
func ForwardKinematics(mb *MultiBody, mbc *MultiBodyConfig) {
	for i := 0; i < mb.NrJoints(); i++ {
		parentPose := spatial.IdentityPose()
		if p := mb.Parent(i); p >= 0 {
			parentPose = mbc.BodyPosW[p]
		}
		jointFrame := parentPose.Mul(mb.Xt(i))
		mbc.JointFrameW[i] = jointFrame
		mbc.BodyPosW[i] = jointFrame.Mul(jointMotion(mb.Joint(i), mbc.Q[i]))
	}
}

// ForwardVelocity refreshes mbc.BodyVel from the current mbc.Alpha and
// the pose state ForwardKinematics just computed, using each body's own
// Jacobian (geometric, expressed in world axes) applied to the flattened
// alpha vector — see DESIGN.md's rbd/ entry for why this module resolves
// velocities through the Jacobian rather than a full spatial-velocity
// recursion.
func ForwardVelocity(mb *MultiBody, mbc *MultiBodyConfig) {
	alpha := AlphaVec(mb, mbc)
	for i := 0; i < mb.NrJoints(); i++ {
		jac := NewJacobian(mb, i)
		J := jac.Jacobian(mb, mbc, mbc.BodyPosW[i].Translation)
		mbc.BodyVel[i] = applyJacobian(J, jac.path, mb, alpha)
	}
}

func applyJacobian(J [][]float64, path []int, mb *MultiBody, alpha []float64) MotionVec {
	var v MotionVec
	col := 0
	for _, jIdx := range path {
		dof := mb.Joint(jIdx).Kind.DoF()
		base := mb.JointPosInDof(jIdx)
		for k := 0; k < dof; k++ {
			a := alpha[base+k]
			v.Angular[0] += J[0][col] * a
			v.Angular[1] += J[1][col] * a
			v.Angular[2] += J[2][col] * a
			v.Linear[0] += J[3][col] * a
			v.Linear[1] += J[4][col] * a
			v.Linear[2] += J[5][col] * a
			col++
		}
	}
	return v
}
