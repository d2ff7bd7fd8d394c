package rbd

import "github.com/Chunting/Tasks/spatial"

// MotionVec is a 6D spatial velocity/acceleration: 3 angular + 3 linear
// components, stacked [angular; linear] to match original_source's
// Eigen::Vector6d convention (rows 0-2 angular, rows 3-5 linear) carried
// over into spec.md §6.2's Jacobian stacking.
type MotionVec struct {
	Angular spatial.Vec3
	Linear  spatial.Vec3
}

func (m MotionVec) Add(o MotionVec) MotionVec {
	return MotionVec{Angular: m.Angular.Add(o.Angular), Linear: m.Linear.Add(o.Linear)}
}

// ForceVec is a 6D spatial force/momentum, same [angular; linear]
// stacking (angular = moment/angular-momentum, linear = force/linear
// momentum).
type ForceVec struct {
	Angular spatial.Vec3
	Linear  spatial.Vec3
}

// MultiBodyConfig is the mutable per-tick state of a MultiBody: joint
// configuration, velocity, acceleration, and torque, plus the world poses
// and spatial velocities ForwardKinematics/ForwardVelocity derive from
// them. Indexed exactly like original_source's MultiBodyConfig (q, alpha,
// alphaD, jointTorque, bodyPosW), one slice entry per joint/body.
type MultiBodyConfig struct {
	Q           [][]float64
	Alpha       [][]float64
	AlphaD      [][]float64
	JointTorque [][]float64

	BodyPosW   []spatial.Pose // world pose of each body's origin frame
	JointFrameW []spatial.Pose // world pose of each joint frame, prior to its own motion
	BodyVel    []MotionVec    // spatial velocity of each body, expressed in world axes at the body origin
}

// NewMultiBodyConfig allocates a zeroed configuration sized for mb, with
// every joint's rotational parameter (quaternion w component, for
// Spherical/Free joints) initialized to identity.
func NewMultiBodyConfig(mb *MultiBody) *MultiBodyConfig {
	n := mb.NrJoints()
	mbc := &MultiBodyConfig{
		Q:           make([][]float64, n),
		Alpha:       make([][]float64, n),
		AlphaD:      make([][]float64, n),
		JointTorque: make([][]float64, n),
		BodyPosW:    make([]spatial.Pose, n),
		JointFrameW: make([]spatial.Pose, n),
		BodyVel:     make([]MotionVec, n),
	}
	for i := 0; i < n; i++ {
		k := mb.Joint(i).Kind
		mbc.Q[i] = make([]float64, k.ParamSize())
		mbc.Alpha[i] = make([]float64, k.DoF())
		mbc.AlphaD[i] = make([]float64, k.DoF())
		mbc.JointTorque[i] = make([]float64, k.DoF())
		if k == Spherical || k == Free {
			mbc.Q[i][0] = 1 // identity quaternion
		}
	}
	return mbc
}

// Clone deep-copies a configuration (used by Jacobian.Dot to restore the
// configuration after its finite-difference perturbations).
func (mbc *MultiBodyConfig) Clone() *MultiBodyConfig {
	out := &MultiBodyConfig{
		Q:           make([][]float64, len(mbc.Q)),
		Alpha:       make([][]float64, len(mbc.Alpha)),
		AlphaD:      make([][]float64, len(mbc.AlphaD)),
		JointTorque: make([][]float64, len(mbc.JointTorque)),
		BodyPosW:    append([]spatial.Pose(nil), mbc.BodyPosW...),
		JointFrameW: append([]spatial.Pose(nil), mbc.JointFrameW...),
		BodyVel:     append([]MotionVec(nil), mbc.BodyVel...),
	}
	for i := range mbc.Q {
		out.Q[i] = append([]float64(nil), mbc.Q[i]...)
		out.Alpha[i] = append([]float64(nil), mbc.Alpha[i]...)
		out.AlphaD[i] = append([]float64(nil), mbc.AlphaD[i]...)
		out.JointTorque[i] = append([]float64(nil), mbc.JointTorque[i]...)
	}
	return out
}

// AlphaVec flattens per-joint velocities into the nrDof robot velocity
// vector alpha, in joint order — the α̇ spec.md's tasks and constraints
// read off MultiBodyConfig.
func AlphaVec(mb *MultiBody, mbc *MultiBodyConfig) []float64 {
	return ParamToVector(mb, mbc.Alpha, func(j Joint) int { return j.Kind.DoF() })
}

// AlphaDVec flattens per-joint accelerations into the nrDof vector α̈.
func AlphaDVec(mb *MultiBody, mbc *MultiBodyConfig) []float64 {
	return ParamToVector(mb, mbc.AlphaD, func(j Joint) int { return j.Kind.DoF() })
}

// ParamToVector concatenates a per-joint [][]float64 (sized per sizeOf)
// into one flat vector in joint order. Used for both DoF-sized
// (alpha/alphaD/jointTorque) and param-sized (q) layouts.
func ParamToVector(mb *MultiBody, per [][]float64, sizeOf func(Joint) int) []float64 {
	out := make([]float64, 0, mb.NrDof())
	for i := 0; i < mb.NrJoints(); i++ {
		out = append(out, per[i]...)
	}
	return out
}

// VectorToParam scatters a flat nrDof vector back into a per-joint
// [][]float64 of the given shape (mirroring rbd::vectorToParam).
func VectorToParam(mb *MultiBody, vec []float64, sizeOf func(Joint) int) [][]float64 {
	out := make([][]float64, mb.NrJoints())
	pos := 0
	for i := 0; i < mb.NrJoints(); i++ {
		n := sizeOf(mb.Joint(i))
		out[i] = append([]float64(nil), vec[pos:pos+n]...)
		pos += n
	}
	return out
}
