package qp

import (
	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/mat"
)

// CoMTask drives the whole-body center of mass towards a fixed world
// target. Grounded on CoMTask::update (Tasks.cpp:307-311).
type CoMTask struct {
	baseTask
	target spatial.Vec3

	comJac *rbd.CoMJacobian
	eval   []float64
	jac    *mat.Dense
}

func NewCoMTask(mb *rbd.MultiBody, target spatial.Vec3, weight float64, cfg Config) *CoMTask {
	return &CoMTask{
		baseTask: newBaseTask(weight, cfg),
		target:   target,
		comJac:   rbd.NewCoMJacobian(mb),
	}
}

func (t *CoMTask) SetTarget(target spatial.Vec3) { t.target = target }

func (t *CoMTask) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig) {
	total := rbd.TotalMass(mb)
	com := rbd.ComputeCoM(mb, mbc, total)
	e := t.target.Sub(com)
	t.eval = []float64{e[0], e[1], e[2]}
	t.jac = t.comJac.Jacobian(mb, mbc)
}

func (t *CoMTask) Eval() []float64 { return t.eval }
func (t *CoMTask) Jac() *mat.Dense { return t.jac }
