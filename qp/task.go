package qp

import (
	"github.com/Chunting/Tasks/rbd"
	"gonum.org/v1/gonum/mat"
)

// Task is a single soft-priority objective (spec.md §4.1): on Update it
// recomputes its residual e (the "error" the task wants driven to zero)
// and its full nrDof-column Jacobian J against the current kinematic
// state, mirroring original_source's per-task `eval_`/`jacMat_` fields.
//
// The QP-facing synthesis (turning e, J, and a stiffness/damping pair
// into a quadratic cost contribution) is centralized in Solver.preUpdate
// rather than duplicated per task — see SPEC_FULL.md §5's Open Question
// decision on the feedback-linearizing form, since original_source's
// QP-facing task wrapper (QPTasks.cpp) is not present in original_source.
type Task interface {
	// Update recomputes Eval()/Jac() from the current mb/mbc state.
	Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig)
	// Eval returns the current task-space residual (desired - actual).
	Eval() []float64
	// Jac returns the nDim x mb.NrDof() Jacobian of the task-space
	// quantity with respect to the robot's joint velocities.
	Jac() *mat.Dense
	// Weight is this task's priority weight in the assembled objective.
	Weight() float64
	// Gains returns the proportional/derivative gains used to turn Eval()
	// into a desired task-space acceleration.
	Gains() (kp, kd float64)
}

// baseTask centralizes the weight/gain bookkeeping every concrete task
// embeds, matching how original_source's tasks each store their own
// copies of these fields.
type baseTask struct {
	weight float64
	kp, kd float64
}

func newBaseTask(weight float64, cfg Config) baseTask {
	return baseTask{weight: weight, kp: cfg.DefaultStiffness, kd: cfg.DefaultDamping}
}

func (b baseTask) Weight() float64       { return b.weight }
func (b baseTask) Gains() (float64, float64) { return b.kp, b.kd }

// SetGains overrides a task's default stiffness/damping.
func (b *baseTask) SetGains(kp, kd float64) { b.kp, b.kd = kp, kd }
