package qp

import (
	"math"

	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
)

// Equality is a dense equality-row contributor, the Go equivalent of
// original_source's abstract Equality constraint registered via
// QPSolver::addEqualityConstraint. AEq/BEq need only be valid in their
// first NrEq() rows; MaxEq() is advertised up front so the assembler can
// size A1/b1 once and hold that allocation across ticks (spec.md §4.2,
// Invariant I-4).
type Equality interface {
	Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig, data *ProblemData)
	AEq() [][]float64
	BEq() []float64
	NrEq() int
	MaxEq() int
}

// Inequality is the Gx<=h analogue of Equality, matching
// QPSolver::addInequalityConstraint.
type Inequality interface {
	Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig, data *ProblemData)
	AInEq() [][]float64
	BInEq() []float64
	NrInEq() int
	MaxInEq() int
}

// Bound writes a run of variable bounds starting at BeginVar(), matching
// QPSolver::addBoundConstraint. Lower/Upper must be the same length; last
// write wins on overlap between two registered Bound constraints
// (spec.md §4.2 step 4).
type Bound interface {
	Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig, data *ProblemData)
	Lower() []float64
	Upper() []float64
	BeginVar() int
}

// ContactUnilateralConstraint turns a registered UnilateralContact's
// lambda segment into per-generator non-negativity bounds (lambda>=0, no
// upper cap), the standard friction-cone-generator constraint in this
// controller family. Grounded on original_source's UnilateralContact
// naming (QPSolver.cpp's lambdaUni_ accounting); the concrete QPConstraints
// class itself is not present in original_source/src, so the bound shape
// is supplemented per SPEC_FULL.md §6.
type ContactUnilateralConstraint struct {
	contactID int
	begin     int
	lower     []float64
	upper     []float64
}

// NewContactUnilateralConstraint builds the bound for the contact
// registered under contactID; begin is the absolute decision-vector column,
// typically data.UniBegin()+data.ContactLambdaPosition(bodyID) — note
// ContactLambdaPosition returns an offset within the lambda segment, not
// within x, and is keyed by body id rather than contactID — looked up once
// after SetProblemStructure.
func NewContactUnilateralConstraint(contactID, begin, nrLambda int) *ContactUnilateralConstraint {
	upper := make([]float64, nrLambda)
	for i := range upper {
		upper[i] = math.Inf(1)
	}
	return &ContactUnilateralConstraint{
		contactID: contactID,
		begin:     begin,
		lower:     make([]float64, nrLambda),
		upper:     upper,
	}
}

func (c *ContactUnilateralConstraint) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig, data *ProblemData) {
}
func (c *ContactUnilateralConstraint) Lower() []float64 { return c.lower }
func (c *ContactUnilateralConstraint) Upper() []float64 { return c.upper }
func (c *ContactUnilateralConstraint) BeginVar() int     { return c.begin }

// NewMotionConstraint bounds a contiguous run of the alpha-double-dot and
// tau segments from configured joint limits — a standard bound constraint
// in this controller family exercising spec.md §4.2's bound path beyond
// the bare interface. Grounded on the same "joint limits as box
// constraints" idiom original_source's QPSolver reserves row space for
// (torqueRes_ sizing in nrVars()), with the concrete limit values
// supplemented here. Limit slices are given per-joint (length nAlpha/nTau,
// in the same order the decision vector stores them); it returns two
// Bound values, one per segment, since a single Bound instance only ever
// writes one contiguous run (spec.md §4.2) and this constraint spans two
// disjoint ones — register both with Solver.AddBoundConstraint.
func NewMotionConstraint(data *ProblemData, alphaDLimits, tauLimits [][2]float64) (alphaDBound, tauBound Bound) {
	aLo, aHi := splitLimits(alphaDLimits, data.NrAlpha())
	tLo, tHi := splitLimits(tauLimits, data.NrTau())
	return &motionBound{begin: data.AlphaBegin(), lower: aLo, upper: aHi},
		&motionBound{begin: data.TauBegin(), lower: tLo, upper: tHi}
}

func splitLimits(limits [][2]float64, n int) ([]float64, []float64) {
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < len(limits) {
			lo[i], hi[i] = limits[i][0], limits[i][1]
		} else {
			lo[i], hi[i] = math.Inf(-1), math.Inf(1)
		}
	}
	return lo, hi
}

// motionBound is a static (never recomputed on Update) bound over one
// contiguous decision-vector segment.
type motionBound struct {
	begin        int
	lower, upper []float64
}

func (b *motionBound) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig, data *ProblemData) {}
func (b *motionBound) Lower() []float64                                                       { return b.lower }
func (b *motionBound) Upper() []float64                                                       { return b.upper }
func (b *motionBound) BeginVar() int                                                          { return b.begin }

// ContactAccelerationConstraint zeroes a rigid, non-slipping contact
// point's acceleration: J_point*alphaD + Jdot_point*alpha = 0. The
// standard contact-consistency equality in this controller family,
// exercising spec.md §4.2's AEq/BEq path with a nontrivial multi-row
// example. Grounded on rbd.Jacobian/rbd.Jacobian.Dot (themselves grounded
// on original_source's rbd::Jacobian usage within PositionTask et al.).
type ContactAccelerationConstraint struct {
	bodyIndex int
	point     spatial.Vec3
	jacCalc   *rbd.Jacobian
	alphaBegin, nAlpha int
	dt        float64

	aEq [][]float64
	bEq []float64
}

// NewContactAccelerationConstraint builds the constraint for a contact
// point rigidly fixed to bodyIndex. dt is the finite-difference step used
// by rbd.Jacobian.Dot (typically the controller's own tick period).
func NewContactAccelerationConstraint(mb *rbd.MultiBody, data *ProblemData, bodyIndex int, point spatial.Vec3, dt float64) *ContactAccelerationConstraint {
	return &ContactAccelerationConstraint{
		bodyIndex:  bodyIndex,
		point:      point,
		jacCalc:    rbd.NewJacobian(mb, bodyIndex),
		alphaBegin: data.AlphaBegin(),
		nAlpha:     data.NrAlpha(),
		dt:         dt,
	}
}

func (c *ContactAccelerationConstraint) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig, data *ProblemData) {
	worldPoint := mbc.BodyPosW[c.bodyIndex].TransformPoint(c.point)
	short := c.jacCalc.Jacobian(mb, mbc, worldPoint)
	shortDot := c.jacCalc.Dot(mb, mbc, worldPoint, c.dt)
	full := rbd.FullJacobian(mb, c.jacCalc, short)
	fullDot := rbd.FullJacobian(mb, c.jacCalc, shortDot)

	alpha := rbd.AlphaVec(mb, mbc)

	c.aEq = make([][]float64, 3)
	c.bEq = make([]float64, 3)
	for r := 0; r < 3; r++ {
		row := make([]float64, data.NrVars())
		var jdotAlpha float64
		for col := 0; col < c.nAlpha; col++ {
			row[c.alphaBegin+col] = full.At(r+3, col)
			jdotAlpha += fullDot.At(r+3, col) * alpha[col]
		}
		c.aEq[r] = row
		c.bEq[r] = -jdotAlpha
	}
}

func (c *ContactAccelerationConstraint) AEq() [][]float64 { return c.aEq }
func (c *ContactAccelerationConstraint) BEq() []float64   { return c.bEq }
func (c *ContactAccelerationConstraint) NrEq() int        { return 3 }
func (c *ContactAccelerationConstraint) MaxEq() int       { return 3 }

// ManipObjectMotionConstraint is the translational (Newton) part of the
// free-flying manipulated object's equation of motion (SPEC_FULL.md §5b):
// the linear rows of its acceleration block, times its mass, must equal
// the sum of RobotToManipContacts' force columns plus gravity,
// M*alphaD_obj_linear - sum(G_i*lambda_i) = M*g. It contributes 3 rows;
// the angular rows of the object's acceleration are not constrained. Grounded
// on QPSolver.cpp's nrVars(robToManip, manipToRob) overload and
// manipBody()/manipBodyConfig(); the concrete equation itself is
// supplemented here since its C++ source lives outside original_source's
// retrieval pack (only the registry shape is present there).
type ManipObjectMotionConstraint struct {
	mass     float64
	gravity  spatial.Vec3
	alphaBegin int
	contacts []UnilateralContact
	lambdaBegin int

	aEq [][]float64
	bEq []float64
}

// NewManipObjectMotionConstraint builds the constraint against data's
// free-flyer segment. mass is the manipulated object's own mass; gravity
// is the world-frame gravitational acceleration vector (typically
// {0,0,-9.81}).
func NewManipObjectMotionConstraint(data *ProblemData, mass float64, gravity spatial.Vec3) *ManipObjectMotionConstraint {
	return &ManipObjectMotionConstraint{
		mass:        mass,
		gravity:     gravity,
		alphaBegin:  data.ManipObjectAlphaBegin(),
		contacts:    data.RobotToManipContacts(),
		lambdaBegin: data.ManipBegin(),
	}
}

func (c *ManipObjectMotionConstraint) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig, data *ProblemData) {
	c.aEq = make([][]float64, 3)
	c.bEq = make([]float64, 3)
	for r := 0; r < 3; r++ {
		row := make([]float64, data.NrVars())
		// linear acceleration rows of the object's own free-flyer block
		// (columns alphaBegin+3..alphaBegin+5, see rbd's Free joint column
		// layout: 3 angular columns then 3 linear).
		row[c.alphaBegin+3+r] = c.mass

		col := c.lambdaBegin
		for _, contact := range c.contacts {
			for _, p := range contact.Points {
				for g := 0; g < p.NrGen; g++ {
					row[col] = -p.Generators[r*p.NrGen+g]
					col++
				}
			}
		}
		c.aEq[r] = row
		c.bEq[r] = c.mass * c.gravity[r]
	}
}

func (c *ManipObjectMotionConstraint) AEq() [][]float64 { return c.aEq }
func (c *ManipObjectMotionConstraint) BEq() []float64   { return c.bEq }
func (c *ManipObjectMotionConstraint) NrEq() int        { return 3 }
func (c *ManipObjectMotionConstraint) MaxEq() int       { return 3 }
