package qp

import (
	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/mat"
)

// PositionTask drives a point rigidly attached to a body towards a fixed
// world-frame target position. Grounded on original_source's
// PositionTask::update (Tasks.cpp:76-81): eval_ = pos_ - (point_*bodyPosW).translation().
type PositionTask struct {
	baseTask
	bodyIndex int
	point     spatial.Vec3
	target    spatial.Vec3

	jacCalc *rbd.Jacobian
	eval    []float64
	jac     *mat.Dense
}

// NewPositionTask targets world position target for the point (expressed
// in the body's own frame) attached to bodyIndex.
func NewPositionTask(mb *rbd.MultiBody, bodyIndex int, point, target spatial.Vec3, weight float64, cfg Config) *PositionTask {
	return &PositionTask{
		baseTask:  newBaseTask(weight, cfg),
		bodyIndex: bodyIndex,
		point:     point,
		target:    target,
		jacCalc:   rbd.NewJacobian(mb, bodyIndex),
	}
}

// SetTarget updates the desired position in place (spec.md's tasks are
// mutable between ticks; the registration itself doesn't change).
func (t *PositionTask) SetTarget(target spatial.Vec3) { t.target = target }

func (t *PositionTask) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig) {
	worldPoint := mbc.BodyPosW[t.bodyIndex].TransformPoint(t.point)
	e := t.target.Sub(worldPoint)
	t.eval = []float64{e[0], e[1], e[2]}

	short := t.jacCalc.Jacobian(mb, mbc, worldPoint)
	full := rbd.FullJacobian(mb, t.jacCalc, short)
	t.jac = mat.NewDense(3, mb.NrDof(), nil)
	for c := 0; c < mb.NrDof(); c++ {
		t.jac.Set(0, c, full.At(3, c))
		t.jac.Set(1, c, full.At(4, c))
		t.jac.Set(2, c, full.At(5, c))
	}
}

func (t *PositionTask) Eval() []float64  { return t.eval }
func (t *PositionTask) Jac() *mat.Dense  { return t.jac }
