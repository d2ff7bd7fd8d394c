package qp

import (
	"github.com/Chunting/Tasks/rbd"
	"gonum.org/v1/gonum/mat"
)

// MomentumTask drives the whole-body centroidal momentum (linear +
// angular, stacked [angular;linear]) towards a target. Grounded on
// MomentumTask::update (Tasks.cpp:468-476).
type MomentumTask struct {
	baseTask
	target rbd.ForceVec

	matrix *rbd.CentroidalMomentumMatrix
	eval   []float64
	jac    *mat.Dense
}

func NewMomentumTask(mb *rbd.MultiBody, target rbd.ForceVec, weight float64, cfg Config) *MomentumTask {
	return &MomentumTask{
		baseTask: newBaseTask(weight, cfg),
		target:   target,
		matrix:   rbd.NewCentroidalMomentumMatrix(mb),
	}
}

func (t *MomentumTask) SetTarget(target rbd.ForceVec) { t.target = target }

func (t *MomentumTask) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig) {
	total := rbd.TotalMass(mb)
	com := rbd.ComputeCoM(mb, mbc, total)
	h := rbd.ComputeCentroidalMomentum(mb, mbc, com)
	t.eval = []float64{
		t.target.Angular[0] - h.Angular[0],
		t.target.Angular[1] - h.Angular[1],
		t.target.Angular[2] - h.Angular[2],
		t.target.Linear[0] - h.Linear[0],
		t.target.Linear[1] - h.Linear[1],
		t.target.Linear[2] - h.Linear[2],
	}
	t.jac = t.matrix.Matrix(mb, mbc, com)
}

func (t *MomentumTask) Eval() []float64 { return t.eval }
func (t *MomentumTask) Jac() *mat.Dense { return t.jac }

// ManipMomentumTask is MomentumTask's manip-augmented counterpart,
// grounded on ManipMomTask (Tasks.h:211-241) — same residual/Jacobian
// shape, computed against the manip-augmented tree instead of the bare
// robot, exactly as ManipCoMTask extends CoMTask.
type ManipMomentumTask struct {
	baseTask
	target rbd.ForceVec

	matrix *rbd.CentroidalMomentumMatrix
	eval   []float64
	jac    *mat.Dense
}

func NewManipMomentumTask(manipMB *rbd.MultiBody, target rbd.ForceVec, weight float64, cfg Config) *ManipMomentumTask {
	return &ManipMomentumTask{
		baseTask: newBaseTask(weight, cfg),
		target:   target,
		matrix:   rbd.NewCentroidalMomentumMatrix(manipMB),
	}
}

func (t *ManipMomentumTask) SetTarget(target rbd.ForceVec) { t.target = target }

func (t *ManipMomentumTask) Update(manipMB *rbd.MultiBody, manipMBC *rbd.MultiBodyConfig) {
	total := rbd.TotalMass(manipMB)
	com := rbd.ComputeCoM(manipMB, manipMBC, total)
	h := rbd.ComputeCentroidalMomentum(manipMB, manipMBC, com)
	t.eval = []float64{
		t.target.Angular[0] - h.Angular[0],
		t.target.Angular[1] - h.Angular[1],
		t.target.Angular[2] - h.Angular[2],
		t.target.Linear[0] - h.Linear[0],
		t.target.Linear[1] - h.Linear[1],
		t.target.Linear[2] - h.Linear[2],
	}
	t.jac = t.matrix.Matrix(manipMB, manipMBC, com)
}

func (t *ManipMomentumTask) Eval() []float64 { return t.eval }
func (t *ManipMomentumTask) Jac() *mat.Dense { return t.jac }
