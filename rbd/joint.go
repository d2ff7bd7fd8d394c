package rbd

// Kind enumerates the joint types this module's kinematics oracle needs to
// drive every task/constraint in spec scope: a fixed (rigid, 0-DoF) weld,
// 1-DoF revolute/prismatic actuated joints, a 3-DoF spherical joint (3
// angular velocity components, 4-parameter quaternion position), and the
// 6-DoF free-flyer root used
// for floating-base robots and for the virtual manipulated-body joint.
//
// Revolute and prismatic joints are modeled about the local Z axis of
// their joint frame, matching the common convention for the arms and legs
// this controller targets (a robot with off-axis joints just carries a
// non-identity static Xt rotating its own Z into the desired axis).
type Kind int

const (
	Fixed Kind = iota
	Rev
	Prism
	Spherical
	Free
)

// String implements fmt.Stringer for log messages.
func (k Kind) String() string {
	switch k {
	case Fixed:
		return "Fixed"
	case Rev:
		return "Rev"
	case Prism:
		return "Prism"
	case Spherical:
		return "Spherical"
	case Free:
		return "Free"
	default:
		return "Unknown"
	}
}

// DoF returns the joint's velocity-space dimension (columns it contributes
// to a Jacobian / rows of alpha, alphaD, jointTorque).
func (k Kind) DoF() int {
	switch k {
	case Fixed:
		return 0
	case Rev, Prism:
		return 1
	case Spherical:
		return 3
	case Free:
		return 6
	default:
		return 0
	}
}

// ParamSize returns the joint's configuration-space dimension (length of
// its entry in q). Spherical and Free carry a redundant quaternion on top
// of their DoF, exactly as rbd::Joint does in original_source.
func (k Kind) ParamSize() int {
	switch k {
	case Fixed:
		return 0
	case Rev, Prism:
		return 1
	case Spherical:
		return 4
	case Free:
		return 7
	default:
		return 0
	}
}

// Joint is one joint of a MultiBody: its kind, a stable numeric ID (used by
// spec.md's ManipJointID tunable and by query helpers), and a name for
// logging/debugging.
type Joint struct {
	Kind Kind
	ID   int
	Name string
}

func NewJoint(kind Kind, id int, name string) Joint {
	return Joint{Kind: kind, ID: id, Name: name}
}
