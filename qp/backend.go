package qp

// Backend solves the dense QP a tick's assembled Q/c/A1/b1/A2/b2/lo/hi
// reduce to (spec.md §6.3/§9): min 0.5*x'Qx + c'x s.t. A1x=b1, A2x<=b2,
// lo<=x<=hi. Problem sizes the internal scratch storage for nVars
// variables, nEq equality rows, and nIneq inequality rows; Solve must be
// called with matching dimensions afterwards. Result returns the last
// successful solve's x.
//
// Two backends are provided, both grounded on curioloop-optimizer's
// slsqp.LSEI (SPEC_FULL.md §7): QLDBackend retries with a loosening
// feasibility tolerance the way original_source's updateQLD does;
// LSSOLBackend solves once with no tolerance, the way updateLSSOL does.
type Backend interface {
	Problem(nVars, nEq, nIneq int)
	// Solve attempts one solve at the given variable bounds/constraints.
	// tol is backend-specific: QLDBackend walks its own ladder internally
	// if tol is omitted, or tries only the given value(s) if provided;
	// LSSOLBackend ignores tol entirely.
	Solve(q [][]float64, c []float64, a1 [][]float64, b1 []float64, a2 [][]float64, b2 []float64, lo, hi []float64, tol ...float64) bool
	Result() []float64
	// Name identifies the backend for logging/error messages ("qld" or
	// "lssol"), matching spec.md §6.3's naming.
	Name() string
}
