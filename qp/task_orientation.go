package qp

import (
	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/mat"
)

// rotationErrorEps is the small-angle regularization threshold
// original_source passes to every sva::rotationError call (Tasks.cpp,
// e.g. line 159: `sva::rotationError(..., 1e-7)`).
const rotationErrorEps = 1e-7

// OrientationTask drives a body's orientation towards a fixed world-frame
// target. Grounded on OrientationTask::update (Tasks.cpp:157-162).
type OrientationTask struct {
	baseTask
	bodyIndex int
	target    spatial.Rotation

	jacCalc *rbd.Jacobian
	eval    []float64
	jac     *mat.Dense
}

func NewOrientationTask(mb *rbd.MultiBody, bodyIndex int, target spatial.Rotation, weight float64, cfg Config) *OrientationTask {
	return &OrientationTask{
		baseTask:  newBaseTask(weight, cfg),
		bodyIndex: bodyIndex,
		target:    target,
		jacCalc:   rbd.NewJacobian(mb, bodyIndex),
	}
}

func (t *OrientationTask) SetTarget(target spatial.Rotation) { t.target = target }

func (t *OrientationTask) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig) {
	cur := mbc.BodyPosW[t.bodyIndex].Rotation
	e := rbd.RotationError(cur, t.target, rotationErrorEps)
	t.eval = []float64{e[0], e[1], e[2]}

	point := mbc.BodyPosW[t.bodyIndex].Translation
	short := t.jacCalc.Jacobian(mb, mbc, point)
	full := rbd.FullJacobian(mb, t.jacCalc, short)
	t.jac = mat.NewDense(3, mb.NrDof(), nil)
	for c := 0; c < mb.NrDof(); c++ {
		t.jac.Set(0, c, full.At(0, c))
		t.jac.Set(1, c, full.At(1, c))
		t.jac.Set(2, c, full.At(2, c))
	}
}

func (t *OrientationTask) Eval() []float64 { return t.eval }
func (t *OrientationTask) Jac() *mat.Dense { return t.jac }
