package qp

import (
	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/mat"
)

// ManipCoMTask drives the CoM of a virtual body representing a
// manipulated object (grafted onto the kinematic tree via
// ProblemData.AttachManipBody) towards a world target, computed against
// the manip-augmented tree's real mass distribution but with the virtual
// body's own Jacobian contribution down-weighted to ManipWeight — see
// DESIGN.md's Open Question #1/#2. Grounded on ManipCoMTask::update
// (Tasks.cpp:395-401).
type ManipCoMTask struct {
	baseTask
	target spatial.Vec3

	manipMB      *rbd.MultiBody
	manipBodyIdx int
	comJac       *rbd.CoMJacobian

	eval []float64
	jac  *mat.Dense
}

// NewManipCoMTask builds the task against the manip-augmented MultiBody
// manipMB (as returned by ProblemData.AttachManipBody). Its Jacobian has
// manipMB.NrDof() columns, which equals the original robot's nrDof since
// the virtual body is always 0-DoF. manipWeight scales the virtual body
// at manipBodyIdx's Jacobian contribution.
func NewManipCoMTask(manipMB *rbd.MultiBody, manipBodyIdx int, target spatial.Vec3, weight, manipWeight float64, cfg Config) *ManipCoMTask {
	weights := make([]float64, manipMB.NrBodies())
	for i := range weights {
		weights[i] = 1
	}
	weights[manipBodyIdx] = manipWeight
	return &ManipCoMTask{
		baseTask:     newBaseTask(weight, cfg),
		target:       target,
		manipMB:      manipMB,
		manipBodyIdx: manipBodyIdx,
		comJac:       rbd.NewCoMJacobianDummy(weights),
	}
}

func (t *ManipCoMTask) SetTarget(target spatial.Vec3) { t.target = target }

// Update takes the manip-augmented configuration (mbc extended with the
// virtual body's pose already refreshed by ForwardKinematics on manipMB —
// the caller is responsible for keeping q in sync across the original
// and augmented configs, since the virtual joint carries no state of its
// own).
func (t *ManipCoMTask) Update(manipMB *rbd.MultiBody, manipMBC *rbd.MultiBodyConfig) {
	total := rbd.TotalMass(manipMB)
	com := rbd.ComputeCoM(manipMB, manipMBC, total)
	e := t.target.Sub(com)
	t.eval = []float64{e[0], e[1], e[2]}
	t.jac = t.comJac.Jacobian(manipMB, manipMBC)
}

func (t *ManipCoMTask) Eval() []float64 { return t.eval }
func (t *ManipCoMTask) Jac() *mat.Dense { return t.jac }
