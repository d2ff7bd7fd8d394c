package qp

import (
	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/mat"
)

// LinVelocityTask drives the linear velocity of a point rigidly attached
// to a body towards a target world-frame velocity. Grounded on
// LinVelocityTask::update (Tasks.cpp:555-561): actual point velocity is
// obtained by rigid-body velocity transport (v_point = v_body +
// omega_body x (p_point - p_body)) from the body's own spatial velocity,
// which this module tracks directly in world axes (see rbd's
// ForwardVelocity) rather than via a body-frame-to-world transform.
type LinVelocityTask struct {
	baseTask
	bodyIndex int
	point     spatial.Vec3
	target    spatial.Vec3

	jacCalc *rbd.Jacobian
	eval    []float64
	jac     *mat.Dense
}

func NewLinVelocityTask(mb *rbd.MultiBody, bodyIndex int, point, target spatial.Vec3, weight float64, cfg Config) *LinVelocityTask {
	return &LinVelocityTask{
		baseTask:  newBaseTask(weight, cfg),
		bodyIndex: bodyIndex,
		point:     point,
		target:    target,
		jacCalc:   rbd.NewJacobian(mb, bodyIndex),
	}
}

func (t *LinVelocityTask) SetTarget(target spatial.Vec3) { t.target = target }

func (t *LinVelocityTask) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig) {
	worldPoint := mbc.BodyPosW[t.bodyIndex].TransformPoint(t.point)
	bodyOrigin := mbc.BodyPosW[t.bodyIndex].Translation
	bv := mbc.BodyVel[t.bodyIndex]
	actual := bv.Linear.Add(bv.Angular.Cross(worldPoint.Sub(bodyOrigin)))
	e := t.target.Sub(actual)
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

func (t *LinVelocityTask) Eval() []float64 { return t.eval }
func (t *LinVelocityTask) Jac() *mat.Dense  { return t.jac }
