package rbd

import (
	"fmt"

	"github.com/Chunting/Tasks/spatial"
)

// MultiBody is the kinematic tree topology: one joint per body (the joint
// that connects it to its parent), stored as a parent index array and a
// static joint-transform (Xt) array alongside the bodies and joints; joint
// i's predecessor is parents[i] and its successor is body i. Body 0 is the
// tree root; its joint connects it to the implicit world frame (parent
// index -1).
//
// Branching (more than one body sharing a parent) is supported — this is
// exactly what the ManipCoM/ManipMomentum augmentation needs: a virtual
// zero-DoF body welded onto an existing contact body via Fixed joint,
// without disturbing the rest of the tree.
type MultiBody struct {
	bodies  []Body
	joints  []Joint
	parents []int // parents[i] = body index of the parent of body i, or -1 for the root
	xt      []spatial.Pose // static joint-frame offset from parent body to joint i

	jointPosInDof   []int // cumulative velocity-space offset of joint i
	jointPosInParam []int // cumulative configuration-space offset of joint i
	nrDof           int
	nrParam         int

	idToBody  map[int]int
	idToJoint map[int]int
}

// NewMultiBody builds a MultiBody from parallel per-body arrays. bodies[i]
// is connected to its parent by joints[i] via the static transform xt[i];
// parents[i] is the parent body index (-1 for the root).
func NewMultiBody(bodies []Body, joints []Joint, parents []int, xt []spatial.Pose) (*MultiBody, error) {
	n := len(bodies)
	if len(joints) != n || len(parents) != n || len(xt) != n {
		return nil, fmt.Errorf("rbd: NewMultiBody: mismatched array lengths (bodies=%d joints=%d parents=%d xt=%d)",
			n, len(joints), len(parents), len(xt))
	}
	mb := &MultiBody{
		bodies:    append([]Body(nil), bodies...),
		joints:    append([]Joint(nil), joints...),
		parents:   append([]int(nil), parents...),
		xt:        append([]spatial.Pose(nil), xt...),
		idToBody:  make(map[int]int, n),
		idToJoint: make(map[int]int, n),
	}
	mb.jointPosInDof = make([]int, n)
	mb.jointPosInParam = make([]int, n)
	dof, param := 0, 0
	for i := 0; i < n; i++ {
		mb.jointPosInDof[i] = dof
		mb.jointPosInParam[i] = param
		dof += joints[i].Kind.DoF()
		param += joints[i].Kind.ParamSize()
		mb.idToBody[bodies[i].ID] = i
		mb.idToJoint[joints[i].ID] = i
	}
	mb.nrDof = dof
	mb.nrParam = param
	return mb, nil
}

func (mb *MultiBody) NrBodies() int { return len(mb.bodies) }
func (mb *MultiBody) NrJoints() int { return len(mb.bodies) }
func (mb *MultiBody) NrDof() int    { return mb.nrDof }
func (mb *MultiBody) NrParam() int  { return mb.nrParam }

func (mb *MultiBody) Body(i int) Body   { return mb.bodies[i] }
func (mb *MultiBody) Joint(i int) Joint { return mb.joints[i] }
func (mb *MultiBody) Parent(i int) int  { return mb.parents[i] }
func (mb *MultiBody) Xt(i int) spatial.Pose { return mb.xt[i] }

func (mb *MultiBody) JointPosInDof(i int) int   { return mb.jointPosInDof[i] }
func (mb *MultiBody) JointPosInParam(i int) int { return mb.jointPosInParam[i] }

// BodyIndexByID returns the body index whose ID matches id, or -1.
func (mb *MultiBody) BodyIndexByID(id int) int {
	if idx, ok := mb.idToBody[id]; ok {
		return idx
	}
	return -1
}

// JointIndexByID returns the joint index whose ID matches id, or -1.
func (mb *MultiBody) JointIndexByID(id int) int {
	if idx, ok := mb.idToJoint[id]; ok {
		return idx
	}
	return -1
}

// JointsPath returns the ordered joint indices from the root down to (and
// including) the joint of body bodyIdx.
func (mb *MultiBody) JointsPath(bodyIdx int) []int {
	var path []int
	for i := bodyIdx; i >= 0; i = mb.parents[i] {
		path = append([]int{i}, path...)
	}
	return path
}

// WithAddedBody returns a new MultiBody with one extra body welded onto
// parentBodyIdx through the given joint and static offset. Used to graft
// the virtual manipulated-body frame (spec.md §4.1 ManipCoM/ManipMomentum,
// §6.2) onto whichever body the manipulated object is rigidly attached to.
func (mb *MultiBody) WithAddedBody(body Body, joint Joint, parentBodyIdx int, xt spatial.Pose) (*MultiBody, error) {
	if parentBodyIdx < 0 || parentBodyIdx >= len(mb.bodies) {
		return nil, fmt.Errorf("rbd: WithAddedBody: parent index %d out of range", parentBodyIdx)
	}
	bodies := append(append([]Body(nil), mb.bodies...), body)
	joints := append(append([]Joint(nil), mb.joints...), joint)
	parents := append(append([]int(nil), mb.parents...), parentBodyIdx)
	xts := append(append([]spatial.Pose(nil), mb.xt...), xt)
	return NewMultiBody(bodies, joints, parents, xts)
}
