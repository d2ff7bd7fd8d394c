package qp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Fault is a programmer error: assembling the problem with a contradictory
// or out-of-range structure (a constraint reporting more rows than its
// advertised maximum, robot-to-manip contacts registered without a
// manipulated object set via Solver.ManipBody). These are bugs in the calling code, not solver
// failures, and are reported by panicking with a Fault value so a caller
// that truly wants to recover can type-assert on it — see spec.md §7(b)/(d).
// Cause, when set via faultWrap, is wrapped with github.com/pkg/errors the
// way rdk's nloptInverseKinematics.go wraps lower-level setup errors
// (errors.Wrap(err, "...")), so %+v on a Fault still prints the original
// stack.
type Fault struct {
	Op    string
	Msg   string
	Cause error
}

func (f *Fault) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("qp: %s: %s: %v", f.Op, f.Msg, f.Cause)
	}
	return fmt.Sprintf("qp: %s: %s", f.Op, f.Msg)
}

func (f *Fault) Unwrap() error { return f.Cause }

func fault(op, format string, args ...interface{}) {
	panic(&Fault{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// faultWrap panics with a Fault carrying cause as its wrapped error,
// attaching pkg/errors' stack-trace context the same way rdk's nlopt
// solver setup wraps a lower-level option error before returning it.
func faultWrap(op string, cause error, format string, args ...interface{}) {
	panic(&Fault{Op: op, Msg: fmt.Sprintf(format, args...), Cause: errors.Wrap(cause, op)})
}

// SolveError is returned by Solver.Update when the backend could not find
// a feasible/optimal point even after any configured tolerance retries.
type SolveError struct {
	Backend string
	Mode    string
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("qp: %s backend failed to converge: %s", e.Backend, e.Mode)
}
