package qp

import (
	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ProblemData is the registry SetProblemStructure populates: the robot
// topology, the registered contacts, and the decision-vector layout
// derived from them (spec.md §3.1, §6.1 SetProblemStructure). Everything
// here is recomputed whenever the structure changes (contacts added or
// removed, manipulated body attached/detached) and held fixed across the
// many per-tick Update() calls in between, exactly as original_source's
// QPSolver separates updateStructure from update.
type ProblemData struct {
	mb  *rbd.MultiBody
	uni []UnilateralContact
	bi  []BilateralContact

	// manipAttached/manipContact/manipBodyIdx model the ManipCoMTask/
	// ManipMomentumTask virtual-body graft (a 0-DoF weld onto the robot's
	// own tree, see AttachManipBody below). This is unrelated to the
	// free-flying manipulated object below; original_source keeps the two
	// completely separate (ManipCoMTask's weld is local state inside the
	// task, while the free-flyer lives on QPSolver's own Data member).
	manipAttached bool
	manipContact  BilateralContact
	manipBodyIdx  int

	// manipObject/manipObjectMBC model original_source's separate
	// data_.manipBody_/manipBodyConfig_: a free-flying rigid body (the
	// grasped/manipulated object) that is never grafted onto the robot's
	// tree. Its own 6-DoF acceleration occupies the last 6 rows of the
	// alpha-double-dot segment whenever robotToManipContacts is non-empty
	// (QPSolver.cpp's nrVars(): "alphaD_+=6 // Add the free flyer of the
	// manipulated body"), and postUpdate integrates it forward on its own,
	// independently of the robot's mb/mbc (QPSolver.cpp:540-547).
	manipObject          *rbd.MultiBody
	manipObjectMBC       *rbd.MultiBodyConfig
	robotToManipContacts []UnilateralContact // forces the robot exerts on the object
	manipToRobotContacts []UnilateralContact // forces the object exerts back on the robot (reaction side, kept for symmetry with original_source's pair; spec.md's force-balance constraint reads from robotToManipContacts only, see DESIGN.md)

	nAlpha       int
	nLambdaUni   int
	nLambdaBi    int
	nLambdaManip int
	nTau         int

	alphaBegin int
	uniBegin   int
	biBegin    int
	manipBegin int
	tauBegin   int
	nrVars     int
}

// SetProblemStructure (re)computes the decision-vector layout for mb and
// the given contact lists. This is the only place nrVars/segment offsets
// change; tasks and constraints registered afterwards read them back via
// the accessors below and must not outlive a structure change without
// being re-registered (spec.md §4.3 step 0 / §7(b)). robToManip/manipToRob
// mirror original_source's QPSolver::nrVars overload taking
// robotToManipBodyContacts/manipBodyToRobotContacts; pass nil for both when
// no free-flying manipulated object is being tracked this tick.
func SetProblemStructure(mb *rbd.MultiBody, uni []UnilateralContact, bi []BilateralContact, robToManip []UnilateralContact, manipToRob []UnilateralContact) *ProblemData {
	if err := validateContacts(mb, uni, bi, robToManip, manipToRob); err != nil {
		faultWrap("SetProblemStructure", err, "invalid contact registration")
	}
	d := &ProblemData{
		mb:                   mb,
		uni:                  append([]UnilateralContact(nil), uni...),
		bi:                   append([]BilateralContact(nil), bi...),
		robotToManipContacts: append([]UnilateralContact(nil), robToManip...),
		manipToRobotContacts: append([]UnilateralContact(nil), manipToRob...),
		manipBodyIdx:         -1,
	}
	d.recompute()
	return d
}

// AttachManipObject registers the free-flying manipulated object (a
// standalone 6-DoF multibody built with rbd.NewSerialChain and a single
// Free-joint root, never grafted onto the robot's own tree) whose own
// acceleration the solved alpha-double-dot's last 6 rows drive once
// robotToManipContacts is non-empty. Grounded on QPSolver::manipBody/
// manipBodyConfig (QPSolver.cpp:556-574).
func (d *ProblemData) AttachManipObject(object *rbd.MultiBody, objectMBC *rbd.MultiBodyConfig) {
	d.manipObject = object
	d.manipObjectMBC = objectMBC
}

// ManipObject returns the free-flying manipulated object's multibody and
// configuration, or nil if none has been attached via AttachManipObject.
func (d *ProblemData) ManipObject() (*rbd.MultiBody, *rbd.MultiBodyConfig) {
	return d.manipObject, d.manipObjectMBC
}

// RobotToManipContacts/ManipToRobotContacts expose the free-flyer contact
// lists set by SetProblemStructure.
func (d *ProblemData) RobotToManipContacts() []UnilateralContact { return d.robotToManipContacts }
func (d *ProblemData) ManipToRobotContacts() []UnilateralContact { return d.manipToRobotContacts }

// HasManipObject reports whether a free-flying manipulated object's
// acceleration is part of this tick's decision vector (robotToManipContacts
// non-empty), i.e. whether alphaD has been extended by 6 rows.
func (d *ProblemData) HasManipObject() bool { return len(d.robotToManipContacts) != 0 }

// ManipObjectAlphaBegin returns the decision-vector row where the
// manipulated object's own 6-row free-flyer acceleration begins (the last
// 6 rows of the alpha-double-dot segment, the Go equivalent of
// original_source's `res_.segment(data_.alphaD_-6, 6)`). Only meaningful
// when HasManipObject() is true.
func (d *ProblemData) ManipObjectAlphaBegin() int { return d.alphaBegin + d.nAlpha - 6 }

// AttachManipBody grafts the virtual manipulated-body frame onto
// carrierBodyIdx (see rbd.MultiBody.WithAddedBody) and stores manipContact
// as its weld contact, returning the
// augmented MultiBody the caller must use for all further kinematics
// calls, and the new body's index. realMass is the manipulated object's
// actual mass (used by CoMTask/MomentumTask-style residuals); cfg.
// ManipBodyID/ManipJointID are the arbitrary-but-unique IDs original_source
// hardcodes (see DESIGN.md's Open Question #1 — grounded on
// ManipCoMTask's constructor in Tasks.cpp, which passes 15000/42000 as
// ID labels, not physical quantities). The virtual body is 0-DoF, so
// nAlpha is unaffected. The stored manipContact is not counted in any
// lambda segment (see recompute); only the MultiBody and the new body
// index change.
func (d *ProblemData) AttachManipBody(mb *rbd.MultiBody, carrierBodyIdx int, realMass float64, offset spatial.Pose, manipContact BilateralContact, cfg Config) (*rbd.MultiBody, int, error) {
	augmented, err := mb.WithAddedBody(
		rbd.NewBody("manip", cfg.ManipBodyID, realMass),
		rbd.NewJoint(rbd.Fixed, cfg.ManipJointID, "manip-weld"),
		carrierBodyIdx,
		offset,
	)
	if err != nil {
		return nil, -1, errors.Wrap(err, "attach manip body")
	}
	manipBodyIdx := augmented.NrBodies() - 1
	d.mb = augmented
	d.manipAttached = true
	d.manipContact = manipContact
	d.manipBodyIdx = manipBodyIdx
	d.recompute()
	return augmented, manipBodyIdx, nil
}

// DetachManipBody removes the manipulated-body bookkeeping (the caller is
// responsible for reverting to the un-augmented MultiBody, since Go's
// rbd.MultiBody is immutable-by-construction and has no in-place removal).
func (d *ProblemData) DetachManipBody(mb *rbd.MultiBody) {
	d.mb = mb
	d.manipAttached = false
	d.manipContact = BilateralContact{}
	d.manipBodyIdx = -1
	d.recompute()
}

func (d *ProblemData) recompute() {
	d.nAlpha = d.mb.NrDof()
	d.nLambdaUni = 0
	for _, c := range d.uni {
		d.nLambdaUni += c.NrLambda()
	}
	d.nLambdaBi = 0
	for _, c := range d.bi {
		d.nLambdaBi += c.NrLambda()
	}
	// lambdaManip_ counts only the robot-to-manip-object contact
	// generators (QPSolver.cpp:190-196); the ManipCoMTask graft's weld
	// contact, if any, is a bilateral contact already folded into nLambdaBi
	// by the caller and plays no part in this count.
	d.nLambdaManip = 0
	for _, c := range d.robotToManipContacts {
		d.nLambdaManip += c.NrLambda()
	}
	if d.nLambdaManip != 0 {
		d.nAlpha += 6 // the manipulated object's own free-flyer acceleration
	}
	// actuated torques exclude the root joint's own DoF (a free-flyer or
	// fixed-base root is never itself actuated), matching
	// QPSolver.cpp's `torque_ = mb.nrDof() - mb.joint(0).dof()` — computed
	// off the robot's own nrDof, before any +6 for the manipulated
	// object's free-flyer, which is never itself actuated either.
	rootDof := 0
	if d.mb.NrJoints() > 0 {
		rootDof = d.mb.Joint(0).Kind.DoF()
	}
	d.nTau = d.mb.NrDof() - rootDof

	d.alphaBegin = 0
	d.uniBegin = d.alphaBegin + d.nAlpha
	d.biBegin = d.uniBegin + d.nLambdaUni
	d.manipBegin = d.biBegin + d.nLambdaBi
	d.tauBegin = d.manipBegin + d.nLambdaManip
	d.nrVars = d.tauBegin + d.nTau
}

func (d *ProblemData) MultiBody() *rbd.MultiBody        { return d.mb }
func (d *ProblemData) UnilateralContacts() []UnilateralContact { return d.uni }
func (d *ProblemData) BilateralContacts() []BilateralContact   { return d.bi }
func (d *ProblemData) ManipAttached() bool               { return d.manipAttached }
func (d *ProblemData) ManipBodyIndex() int                { return d.manipBodyIdx }

func (d *ProblemData) NrVars() int   { return d.nrVars }
func (d *ProblemData) NrAlpha() int  { return d.nAlpha }
func (d *ProblemData) NrTau() int    { return d.nTau }

func (d *ProblemData) AlphaBegin() int { return d.alphaBegin }
func (d *ProblemData) UniBegin() int   { return d.uniBegin }
func (d *ProblemData) BiBegin() int    { return d.biBegin }
func (d *ProblemData) ManipBegin() int { return d.manipBegin }
func (d *ProblemData) TauBegin() int   { return d.tauBegin }

// ContactLambdaPosition returns the offset, within the lambda segment (not
// within x — spec.md §4.7's worked example has the sole registered
// contact's body resolve to 0, not to uniBegin), where bodyID's force
// generators begin. Matches original_source's QPSolver::contactLambdaPosition
// (QPSolver.cpp:378-396), which walks uniCont_ then biCont_ comparing each
// contact point's bodyId field, not any registration tag. Callers wanting
// an absolute decision-vector column add d.UniBegin() (unilateral) or
// equivalent themselves. Returns -1 if bodyID names no registered
// contact point.
func (d *ProblemData) ContactLambdaPosition(bodyID int) int {
	pos := 0
	for _, c := range d.uni {
		if contactHasBody(c.Points, bodyID) {
			return pos
		}
		pos += c.NrLambda()
	}
	for _, c := range d.bi {
		if contactHasBody(c.Points, bodyID) {
			return pos
		}
		pos += c.NrLambda()
	}
	return -1
}

func contactHasBody(points []ContactPoint, bodyID int) bool {
	for _, p := range points {
		if p.BodyIndex == bodyID {
			return true
		}
	}
	return false
}

// validateContacts checks every contact point across the four registered
// lists against mb's body count and flags duplicate registration IDs
// within a list, combining every problem found into one error with
// multierr.Combine rather than failing on the first one — the same
// accumulate-then-report idiom rdk's nlopt solver setup uses to combine
// its SetFtolRel/SetLowerBounds/... errors (nloptInverseKinematics.go).
func validateContacts(mb *rbd.MultiBody, uni []UnilateralContact, bi []BilateralContact, robToManip []UnilateralContact, manipToRob []UnilateralContact) error {
	var errs []error
	check := func(label string, id int, points []ContactPoint, seen map[int]bool) {
		if seen[id] {
			errs = append(errs, errors.Errorf("%s contact id %d registered more than once", label, id))
		}
		seen[id] = true
		for _, p := range points {
			if p.BodyIndex < 0 || p.BodyIndex >= mb.NrBodies() {
				errs = append(errs, errors.Errorf("%s contact id %d: body index %d out of range", label, id, p.BodyIndex))
			}
		}
	}
	uniSeen, biSeen, rmSeen, mrSeen := map[int]bool{}, map[int]bool{}, map[int]bool{}, map[int]bool{}
	for _, c := range uni {
		check("unilateral", c.ID, c.Points, uniSeen)
	}
	for _, c := range bi {
		check("bilateral", c.ID, c.Points, biSeen)
	}
	for _, c := range robToManip {
		check("robot-to-manip", c.ID, c.Points, rmSeen)
	}
	for _, c := range manipToRob {
		check("manip-to-robot", c.ID, c.Points, mrSeen)
	}
	return multierr.Combine(errs...)
}
