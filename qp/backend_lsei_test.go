package qp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestQLDBackendSolvesTrivialBoundedQP exercises QLDBackend directly
// (LSSOLBackend is already exercised indirectly through Solver.Update in
// solver_test.go): minimize x^2 subject to 0<=x<=1 should settle at x=0,
// within the feasible region, on the first rung of the tolerance ladder.
func TestQLDBackendSolvesTrivialBoundedQP(t *testing.T) {
	backend := NewQLDBackend(DefaultConfig().FeasibilityTolerances)
	backend.Problem(1, 0, 0)

	q := [][]float64{{2}}
	c := []float64{0}
	lo := []float64{0}
	hi := []float64{1}

	ok := backend.Solve(q, c, nil, nil, nil, nil, lo, hi)
	require.True(t, ok)
	require.InDelta(t, 0, backend.Result()[0], 1e-6)
	require.Equal(t, "qld", backend.Name())
}

// TestQLDBackendHonorsEqualityConstraint pins x=3 via an equality row and
// checks the result lands there, unbounded above/below otherwise.
func TestQLDBackendHonorsEqualityConstraint(t *testing.T) {
	backend := NewQLDBackend(DefaultConfig().FeasibilityTolerances)
	backend.Problem(1, 1, 0)

	q := [][]float64{{2}}
	c := []float64{0}
	a1 := [][]float64{{1}}
	b1 := []float64{3}
	lo := []float64{math.Inf(-1)}
	hi := []float64{math.Inf(1)}

	ok := backend.Solve(q, c, a1, b1, nil, nil, lo, hi)
	require.True(t, ok)
	require.InDelta(t, 3, backend.Result()[0], 1e-6)
}
