package qp

import (
	"math"

	"github.com/curioloop/optimizer/slsqp"
	"gonum.org/v1/gonum/mat"
)

// lseiCore holds the scratch buffers shared by QLDBackend and LSSOLBackend;
// both reduce the assembled QP to slsqp.LSEI's
// min‖Ex-f‖² s.t. Cx=d, Gx>=h form (SPEC_FULL.md §7) and differ only in
// how they retry on infeasibility.
type lseiCore struct {
	nVars, nEq, nIneq int
	result            []float64
}

func (b *lseiCore) Problem(nVars, nEq, nIneq int) {
	b.nVars = nVars
	b.nEq = nEq
	b.nIneq = nIneq
	b.result = make([]float64, nVars)
}

func (b *lseiCore) Result() []float64 { return b.result }

// solveOnce Cholesky-factors Q into E (Q=R'R, E=R), solves R'f=-c by
// forward substitution, folds the box bounds lo<=x<=hi into extra G rows
// (LSEI has no native bound support), negates A2x<=b2 into Gx>=h form,
// and calls slsqp.LSEI once. tolSlack loosens every inequality (including
// the box-bound rows) by subtracting it from h, mirroring
// original_source's updateQLD relaxing feasibility by a growing margin.
// Every matrix handed to LSEI is laid out column-major. x is written only
// when LSEI reports a solution.
func solveOnce(q [][]float64, c []float64, a1 [][]float64, b1 []float64, a2 [][]float64, b2 []float64, lo, hi []float64, tolSlack float64, x []float64) bool {
	n := len(c)
	if n == 0 {
		return true
	}

	qDense := mat.NewSymDense(n, flattenSquare(q, n))
	var chol mat.Cholesky
	if ok := chol.Factorize(qDense); !ok {
		return false
	}
	var upper mat.TriDense
	chol.UTo(&upper)

	e := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			e[i+n*j] = upper.At(i, j)
		}
	}

	// solve R'f = -c by forward substitution (R' is lower triangular).
	f := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := -c[i]
		for k := 0; k < i; k++ {
			sum -= upper.At(k, i) * f[k]
		}
		f[i] = sum / upper.At(i, i)
	}

	mc := len(b1)
	cMat := flattenRows(a1, mc, n)
	d := append([]float64(nil), b1...)

	mg := len(b2)
	nBoundRows := 0
	for i := range lo {
		if !math.IsInf(lo[i], -1) {
			nBoundRows++
		}
		if !math.IsInf(hi[i], 1) {
			nBoundRows++
		}
	}
	mgTotal := mg + nBoundRows
	g := make([]float64, mgTotal*n)
	h := make([]float64, mgTotal)
	for r := 0; r < mg; r++ {
		for col := 0; col < n; col++ {
			g[r+mgTotal*col] = -a2[r][col]
		}
		h[r] = -b2[r] - tolSlack
	}
	row := mg
	for i := range lo {
		if !math.IsInf(lo[i], -1) {
			g[row+mgTotal*i] = 1
			h[row] = lo[i] - tolSlack
			row++
		}
		if !math.IsInf(hi[i], 1) {
			g[row+mgTotal*i] = -1
			h[row] = -hi[i] - tolSlack
			row++
		}
	}

	me := n
	w := make([]float64, 2*mc+me+(me+mgTotal)*(n-mc)+(n-mc+1)*(mgTotal+2)+2*mgTotal)
	jw := make([]int, maxInt(mgTotal, minInt(me, n-mc)))

	xs := make([]float64, n)
	_, mode := slsqp.LSEI(cMat, d, e, f, g, h, mc, mc, me, me, mgTotal, mgTotal, n, xs, w, jw, 0)
	if mode != slsqp.HasSolution {
		return false
	}
	copy(x, xs)
	return true
}

func flattenSquare(m [][]float64, n int) []float64 { return flattenRows(m, n, n) }

// flattenRows lays a rows x cols matrix out column-major (leading
// dimension rows), the layout every slsqp.LSEI matrix argument expects.
func flattenRows(m [][]float64, rows, cols int) []float64 {
	out := make([]float64, rows*cols)
	for i := 0; i < len(m) && i < rows; i++ {
		for j := 0; j < len(m[i]) && j < cols; j++ {
			out[i+rows*j] = m[i][j]
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// QLDBackend mirrors original_source's updateQLD: on infeasibility it
// retries with a loosening feasibility tolerance starting at 1e-8 and
// multiplying by 10 each attempt while it stays below 1e-3
// (QPSolver.cpp's `while(!success && iter<1e-3) { ...; iter*=10; }`).
type QLDBackend struct {
	lseiCore
	ladder []float64
}

// NewQLDBackend builds a QLDBackend with the given feasibility-tolerance
// ladder (typically cfg.FeasibilityTolerances).
func NewQLDBackend(ladder []float64) *QLDBackend {
	return &QLDBackend{ladder: append([]float64(nil), ladder...)}
}

func (b *QLDBackend) Name() string { return "qld" }

func (b *QLDBackend) Solve(q [][]float64, c []float64, a1 [][]float64, b1 []float64, a2 [][]float64, b2 []float64, lo, hi []float64, tol ...float64) bool {
	ladder := b.ladder
	if len(tol) > 0 {
		ladder = tol
	}
	for _, slack := range ladder {
		if solveOnce(q, c, a1, b1, a2, b2, lo, hi, slack, b.result) {
			return true
		}
	}
	return false
}

// LSSOLBackend mirrors original_source's updateLSSOL: a single
// unconditional solve with no tolerance relaxation. original_source's
// QPSolver::update() defaults to this path.
type LSSOLBackend struct {
	lseiCore
}

func NewLSSOLBackend() *LSSOLBackend { return &LSSOLBackend{} }

func (b *LSSOLBackend) Name() string { return "lssol" }

func (b *LSSOLBackend) Solve(q [][]float64, c []float64, a1 [][]float64, b1 []float64, a2 [][]float64, b2 []float64, lo, hi []float64, tol ...float64) bool {
	return solveOnce(q, c, a1, b1, a2, b2, lo, hi, 0, b.result)
}
