package rbd

import "github.com/Chunting/Tasks/spatial"

// SerialJointSpec describes one joint+body pair of a serial chain built
// by NewSerialChain: the joint kind/ID/name, the static offset from the
// previous body's origin to this joint's frame, and the new body's
// mass/ID.
type SerialJointSpec struct {
	JointKind Kind
	JointID   int
	JointName string
	Xt        spatial.Pose
	BodyID    int
	BodyName  string
	BodyMass  float64
}

// NewSerialChain is a convenience builder, not present in
// original_source (which always receives a fully-built MultiBody from
// RBDyn's URDF/YAML parsers), for constructing the simple unbranched
// robots spec.md's worked scenarios describe — a root joint (commonly
// Fixed for a bolted-down arm or Free for a floating base) followed by a
// chain of actuated joints. Branching topologies (e.g. grafting a
// manipulated-body frame) go through MultiBody.WithAddedBody afterwards.
func NewSerialChain(root SerialJointSpec, rest ...SerialJointSpec) (*MultiBody, error) {
	specs := append([]SerialJointSpec{root}, rest...)
	bodies := make([]Body, len(specs))
	joints := make([]Joint, len(specs))
	parents := make([]int, len(specs))
	xt := make([]spatial.Pose, len(specs))
	for i, s := range specs {
		bodies[i] = NewBody(s.BodyName, s.BodyID, s.BodyMass)
		joints[i] = NewJoint(s.JointKind, s.JointID, s.JointName)
		xt[i] = s.Xt
		if i == 0 {
			parents[i] = -1
		} else {
			parents[i] = i - 1
		}
	}
	return NewMultiBody(bodies, joints, parents, xt)
}
