package qp

import (
	"math"

	"github.com/Chunting/Tasks/logging"
	"github.com/Chunting/Tasks/rbd"
)

// Solver is the per-tick QP assembler: it holds the registered tasks and
// constraints, the current ProblemData, and the active Backend, and drives
// the preUpdate/solve/postUpdate cycle original_source's QPSolver runs
// every control tick (spec.md §4.3-§4.6).
type Solver struct {
	cfg    Config
	data   *ProblemData
	logger logging.Logger

	tasks  []Task
	eq     []Equality
	ineq   []Inequality
	bounds []Bound

	backends map[string]Backend
	active   string

	// assembled problem, resized by SetProblemStructure and overwritten in
	// place every preUpdate.
	q  [][]float64
	c  []float64
	a1 [][]float64
	b1 []float64
	a2 [][]float64
	b2 []float64
	lo []float64
	hi []float64

	nrEqFilled   int
	nrIneqFilled int

	result []float64
	alphaD []float64
	lambda []float64
	tau    []float64
}

// NewSolver builds a Solver with both backends registered (qld and lssol),
// lssol active by default, matching original_source's QPSolver::update()
// default path.
func NewSolver(opts ...Option) *Solver {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	s := &Solver{
		cfg: cfg,
		backends: map[string]Backend{
			"qld":   NewQLDBackend(cfg.FeasibilityTolerances),
			"lssol": NewLSSOLBackend(),
		},
		active: "lssol",
		logger: solverLogger(cfg.Silent),
	}
	return s
}

func solverLogger(silent bool) logging.Logger {
	if silent {
		return logging.NewNopLogger()
	}
	return logging.NewLogger("qp.Solver")
}

// SetSilent toggles the solver's own log output (spec.md §10 supplement):
// solver-failure and structural-warning diagnostics are gated through it.
func (s *Solver) SetSilent(silent bool) {
	s.cfg.Silent = silent
	s.logger = solverLogger(silent)
}

// SelectBackend switches the active solve backend ("qld" or "lssol").
// Panics with a Fault if name isn't registered.
func (s *Solver) SelectBackend(name string) {
	if _, ok := s.backends[name]; !ok {
		fault("SelectBackend", "unknown backend %q", name)
	}
	s.active = name
}

// SetProblemStructure (re)computes the decision-vector layout and resizes
// the assembled-problem storage to match. Must be called before the first
// Update, and again whenever contacts or the manipulated object change
// (spec.md §4.4). robToManip/manipToRob may be nil when no free-flying
// manipulated object is tracked.
func (s *Solver) SetProblemStructure(mb *rbd.MultiBody, uni []UnilateralContact, bi []BilateralContact, robToManip []UnilateralContact, manipToRob []UnilateralContact) *ProblemData {
	s.data = SetProblemStructure(mb, uni, bi, robToManip, manipToRob)
	n := s.data.NrVars()

	s.q = newDense(n, n)
	s.c = make([]float64, n)
	s.lo = make([]float64, n)
	s.hi = make([]float64, n)

	maxEq, maxIneq := 0, 0
	for _, e := range s.eq {
		maxEq += e.MaxEq()
	}
	for _, in := range s.ineq {
		maxIneq += in.MaxInEq()
	}
	s.a1 = newDense(maxEq, n)
	s.b1 = make([]float64, maxEq)
	s.a2 = newDense(maxIneq, n)
	s.b2 = make([]float64, maxIneq)

	for _, backend := range s.backends {
		backend.Problem(n, maxEq, maxIneq)
	}
	return s.data
}

func newDense(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// ManipBody attaches the free-flying manipulated object's multibody and
// configuration to the current problem data, the Go equivalent of
// original_source's QPSolver::manipBody(const rbd::MultiBody&) setter.
// Must be called after SetProblemStructure.
func (s *Solver) ManipBody(object *rbd.MultiBody, objectMBC *rbd.MultiBodyConfig) {
	if s.data == nil {
		fault("ManipBody", "SetProblemStructure must be called first")
	}
	s.data.AttachManipObject(object, objectMBC)
}

// ManipBodyConfig returns the free-flying manipulated object's multibody
// and configuration previously set with ManipBody, the Go equivalent of
// original_source's QPSolver::manipBodyConfig() getter.
func (s *Solver) ManipBodyConfig() (*rbd.MultiBody, *rbd.MultiBodyConfig) {
	if s.data == nil {
		return nil, nil
	}
	return s.data.ManipObject()
}

// Data returns the current ProblemData, or nil before the first
// SetProblemStructure call.
func (s *Solver) Data() *ProblemData { return s.data }

// AddTask/RemoveTask register/unregister a soft-priority task.
func (s *Solver) AddTask(t Task) { s.tasks = append(s.tasks, t) }
func (s *Solver) RemoveTask(t Task) {
	for i, cur := range s.tasks {
		if cur == t {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// ResetTasks clears every registered task in one call, restoring
// original_source's QPSolver::resetTasks() (SPEC_FULL.md §8); dropped
// from spec.md's own §6.1 API list but trivial and low-risk to keep.
func (s *Solver) ResetTasks() { s.tasks = nil }

// structuralWarning logs a non-fatal diagnostic about a registration that
// leaves the assembled problem's row budget stale until SetProblemStructure
// is called again (spec.md §2's "structural-warning diagnostics").
func (s *Solver) structuralWarning(msg string) {
	if s.data != nil {
		s.logger.Warnw(msg)
	}
}

// AddEqualityConstraint/RemoveEqualityConstraint register/unregister an
// Equality constraint. Adding or removing one changes the maximum row
// budget, so SetProblemStructure must be called again afterwards (spec.md
// §4.2 Invariant I-4).
func (s *Solver) AddEqualityConstraint(e Equality) {
	s.eq = append(s.eq, e)
	s.structuralWarning("equality constraint added after SetProblemStructure; row budget is stale until SetProblemStructure runs again")
}
func (s *Solver) RemoveEqualityConstraint(e Equality) {
	for i, cur := range s.eq {
		if cur == e {
			s.eq = append(s.eq[:i], s.eq[i+1:]...)
			s.structuralWarning("equality constraint removed after SetProblemStructure; row budget is stale until SetProblemStructure runs again")
			return
		}
	}
}

func (s *Solver) AddInequalityConstraint(in Inequality) {
	s.ineq = append(s.ineq, in)
	s.structuralWarning("inequality constraint added after SetProblemStructure; row budget is stale until SetProblemStructure runs again")
}
func (s *Solver) RemoveInequalityConstraint(in Inequality) {
	for i, cur := range s.ineq {
		if cur == in {
			s.ineq = append(s.ineq[:i], s.ineq[i+1:]...)
			return
		}
	}
}

func (s *Solver) AddBoundConstraint(b Bound) { s.bounds = append(s.bounds, b) }
func (s *Solver) RemoveBoundConstraint(b Bound) {
	for i, cur := range s.bounds {
		if cur == b {
			s.bounds = append(s.bounds[:i], s.bounds[i+1:]...)
			return
		}
	}
}

// AddConstraint/RemoveConstraint register a value implementing one or more
// of Equality/Inequality/Bound in a single call, matching
// QPSolver::addConstraint's blanket registration of a Constraint object
// that may contribute to more than one row kind at once.
func (s *Solver) AddConstraint(v interface{}) {
	if e, ok := v.(Equality); ok {
		s.AddEqualityConstraint(e)
	}
	if in, ok := v.(Inequality); ok {
		s.AddInequalityConstraint(in)
	}
	if b, ok := v.(Bound); ok {
		s.AddBoundConstraint(b)
	}
}
func (s *Solver) RemoveConstraint(v interface{}) {
	if e, ok := v.(Equality); ok {
		s.RemoveEqualityConstraint(e)
	}
	if in, ok := v.(Inequality); ok {
		s.RemoveInequalityConstraint(in)
	}
	if b, ok := v.(Bound); ok {
		s.RemoveBoundConstraint(b)
	}
}

// preUpdate refreshes every registered constraint and task against the
// current mb/mbc, then rebuilds Q/c/A1/b1/A2/b2/lo/hi from scratch (spec.md
// §4.3):
//  1. Update() every equality, inequality, bound constraint and task.
//  2. Zero Q/c/A1/b1/A2/b2; reset lo=-inf, hi=+inf.
//  3. Stack each equality/inequality constraint's rows (first NrEq()/
//     NrInEq() of them) into A1/b1, A2/b2.
//  4. Write each bound constraint's [Lower,Upper) run at BeginVar(); a later
//     bound constraint overwrites an earlier one's overlapping rows.
//  5. For each task, accumulate weight*(J'J) into Q and
//     -weight*J'*(kp*e - kd*J*alpha) into c, the feedback-linearizing form
//     (SPEC_FULL.md §5, DESIGN.md Open Question #3).
//  6. Add DiagonalRegularization to any Q diagonal entry still smaller than
//     it in magnitude. This only lifts near-zero diagonal entries; Q is not
//     otherwise checked for positive-definiteness.
func (s *Solver) preUpdate(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig) {
	for _, e := range s.eq {
		e.Update(mb, mbc, s.data)
	}
	for _, in := range s.ineq {
		in.Update(mb, mbc, s.data)
	}
	for _, b := range s.bounds {
		b.Update(mb, mbc, s.data)
	}
	for _, t := range s.tasks {
		t.Update(mb, mbc)
	}

	n := s.data.NrVars()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s.q[i][j] = 0
		}
		s.c[i] = 0
		s.lo[i] = math.Inf(-1)
		s.hi[i] = math.Inf(1)
	}

	s.nrEqFilled = 0
	for _, e := range s.eq {
		rows := e.NrEq()
		if rows > e.MaxEq() {
			fault("preUpdate", "equality constraint wrote %d rows, exceeding its advertised max %d", rows, e.MaxEq())
		}
		aRows, bRow := e.AEq(), e.BEq()
		for r := 0; r < rows; r++ {
			copy(s.a1[s.nrEqFilled], aRows[r])
			s.b1[s.nrEqFilled] = bRow[r]
			s.nrEqFilled++
		}
	}

	s.nrIneqFilled = 0
	for _, in := range s.ineq {
		rows := in.NrInEq()
		if rows > in.MaxInEq() {
			fault("preUpdate", "inequality constraint wrote %d rows, exceeding its advertised max %d", rows, in.MaxInEq())
		}
		aRows, bRow := in.AInEq(), in.BInEq()
		for r := 0; r < rows; r++ {
			copy(s.a2[s.nrIneqFilled], aRows[r])
			s.b2[s.nrIneqFilled] = bRow[r]
			s.nrIneqFilled++
		}
	}

	for _, b := range s.bounds {
		begin := b.BeginVar()
		lower, upper := b.Lower(), b.Upper()
		for k := range lower {
			s.lo[begin+k] = lower[k]
			s.hi[begin+k] = upper[k]
		}
	}

	alphaBegin := s.data.AlphaBegin()
	alpha := rbd.AlphaVec(mb, mbc)
	for _, t := range s.tasks {
		e := t.Eval()
		jac := t.Jac()
		w := t.Weight()
		kp, kd := t.Gains()
		rows, cols := jac.Dims()

		jAlpha := make([]float64, rows)
		for r := 0; r < rows; r++ {
			var sum float64
			for col := 0; col < cols; col++ {
				sum += jac.At(r, col) * alpha[col]
			}
			jAlpha[r] = sum
		}
		desired := make([]float64, rows)
		for r := 0; r < rows; r++ {
			desired[r] = kp*e[r] - kd*jAlpha[r]
		}

		for r := 0; r < rows; r++ {
			for ci := 0; ci < cols; ci++ {
				jri := jac.At(r, ci)
				if jri == 0 {
					continue
				}
				s.c[alphaBegin+ci] -= w * jri * desired[r]
				for cj := 0; cj < cols; cj++ {
					jrj := jac.At(r, cj)
					if jrj == 0 {
						continue
					}
					s.q[alphaBegin+ci][alphaBegin+cj] += w * jri * jrj
				}
			}
		}
	}

	eps := s.cfg.DiagonalRegularization
	for i := 0; i < n; i++ {
		if math.Abs(s.q[i][i]) < eps {
			s.q[i][i] += eps
		}
	}
}

// Update runs one full control tick: preUpdate, solve with the active
// backend, postUpdate on success (spec.md §4.5). Returns a *SolveError if
// the backend could not find a feasible point.
func (s *Solver) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig, step float64) error {
	if s.data == nil {
		fault("Update", "SetProblemStructure must be called first")
	}
	if s.data.HasManipObject() {
		if obj, objMBC := s.data.ManipObject(); obj == nil || objMBC == nil {
			fault("Update", "robot-to-manip contacts registered but no manipulated object set with ManipBody")
		}
	}
	s.preUpdate(mb, mbc)

	backend := s.backends[s.active]
	ok := backend.Solve(s.q, s.c, s.a1[:s.nrEqFilled], s.b1[:s.nrEqFilled], s.a2[:s.nrIneqFilled], s.b2[:s.nrIneqFilled], s.lo, s.hi)
	if !ok {
		s.logger.Warnw("backend failed to converge", "backend", backend.Name())
		return &SolveError{Backend: backend.Name(), Mode: "no feasible point found"}
	}

	s.postUpdate(mb, mbc, backend.Result(), step)
	return nil
}

// postUpdate scatters the solved decision vector back into mbc and, if a
// free-flying manipulated object is attached, integrates it forward on its
// own (spec.md §4.6):
//  1. Cache the raw result.
//  2. Write the torque segment into mbc.JointTorque, with the root joint's
//     own entries left zero (a free-flyer or fixed base is never actuated).
//  3. Write the robot's own alpha-double-dot rows into mbc.AlphaD. If a
//     manipulated object is attached, its last 6 rows drive the object's
//     own free-flyer acceleration instead; the object is then
//     Euler-integrated forward by step and its forward kinematics/velocity
//     refreshed independently of the robot's mb/mbc.
//  4. Contact-force entries (lambda) are cached for query but never written
//     back into mbc.
func (s *Solver) postUpdate(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig, res []float64, step float64) {
	s.result = append(s.result[:0], res...)
	res = s.result

	d := s.data
	dof := func(j rbd.Joint) int { return j.Kind.DoF() }

	tauSeg := res[d.TauBegin() : d.TauBegin()+d.NrTau()]
	rootDof := 0
	if mb.NrJoints() > 0 {
		rootDof = mb.Joint(0).Kind.DoF()
	}
	fullTau := make([]float64, mb.NrDof())
	copy(fullTau[rootDof:], tauSeg)
	mbc.JointTorque = rbd.VectorToParam(mb, fullTau, dof)
	s.tau = tauSeg

	robotAlphaLen := mb.NrDof()
	alphaSeg := res[d.AlphaBegin() : d.AlphaBegin()+d.NrAlpha()]
	mbc.AlphaD = rbd.VectorToParam(mb, alphaSeg[:robotAlphaLen], dof)
	s.alphaD = alphaSeg

	lambdaLen := d.TauBegin() - d.UniBegin()
	s.lambda = res[d.UniBegin() : d.UniBegin()+lambdaLen]

	if d.HasManipObject() {
		manipObj, manipMBC := d.ManipObject()
		if manipObj != nil && manipMBC != nil {
			manipAlpha := res[d.ManipObjectAlphaBegin() : d.ManipObjectAlphaBegin()+6]
			manipMBC.AlphaD = rbd.VectorToParam(manipObj, manipAlpha, dof)
			rbd.EulerIntegration(manipObj, manipMBC, step)
			rbd.ForwardKinematics(manipObj, manipMBC)
			rbd.ForwardVelocity(manipObj, manipMBC)
		}
	}
}

// ContactLambdaPosition looks up bodyID's offset within the lambda segment
// (spec.md §4.7); delegates to ProblemData.ContactLambdaPosition. Add
// s.Data().UniBegin() to get an absolute decision-vector column.
func (s *Solver) ContactLambdaPosition(bodyID int) int { return s.data.ContactLambdaPosition(bodyID) }

func (s *Solver) NrVars() int             { return s.data.NrVars() }
func (s *Solver) NrEqConstraints() int    { return len(s.eq) }
func (s *Solver) NrIneqConstraints() int  { return len(s.ineq) }
func (s *Solver) NrBoundConstraints() int { return len(s.bounds) }
func (s *Solver) NrTasks() int            { return len(s.tasks) }

// NrConstraints returns the total registered constraint count across
// equality, inequality, and bound kinds, restoring original_source's
// QPSolver::nrConstraints() accessor (SPEC_FULL.md §8).
func (s *Solver) NrConstraints() int { return len(s.eq) + len(s.ineq) + len(s.bounds) }

// Result returns the last solved decision vector in full.
func (s *Solver) Result() []float64 { return s.result }

// AlphaDVec/LambdaVec/TorqueVec return the last solved tick's segments,
// sliced out of Result() (spec.md §6.1 query helpers).
func (s *Solver) AlphaDVec() []float64 { return s.alphaD }
func (s *Solver) LambdaVec() []float64 { return s.lambda }
func (s *Solver) TorqueVec() []float64 { return s.tau }
