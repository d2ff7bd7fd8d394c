package qp

import (
	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/mat"
)

// OrientationTrackingTask reorients a body so a chosen body-fixed axis
// points at a moving world-frame target, while only a named subset of
// the path's joints ("tracking joints") are allowed to contribute —
// every other joint's Jacobian columns on the path are zeroed. Grounded
// on OrientationTrackingTask (Tasks.cpp:595-692) — e.g. a camera/gripper
// that must keep facing a tracked point using only its own wrist joints,
// not the whole arm.
type OrientationTrackingTask struct {
	baseTask
	bodyIndex    int
	bodyPoint    spatial.Vec3
	bodyAxis     spatial.Vec3
	trackedPoint spatial.Vec3
	zeroCols     map[int]bool

	jacCalc *rbd.Jacobian
	eval    []float64
	jac     *mat.Dense
}

// NewOrientationTrackingTask builds the task for mb's body bodyIndex.
// trackingJointIdx lists the joint indices (as returned by
// mb.JointIndexByID) allowed to move this task's tracked axis; every
// other joint along the path from root to the body is held out of this
// task's Jacobian.
func NewOrientationTrackingTask(mb *rbd.MultiBody, bodyIndex int, bodyPoint, bodyAxis, trackedPoint spatial.Vec3, trackingJointIdx []int, weight float64, cfg Config) *OrientationTrackingTask {
	jacCalc := rbd.NewJacobian(mb, bodyIndex)
	tracking := make(map[int]bool, len(trackingJointIdx))
	for _, j := range trackingJointIdx {
		tracking[j] = true
	}
	zeroCols := make(map[int]bool)
	col := 0
	for _, jIdx := range jacCalc.Path() {
		dof := mb.Joint(jIdx).Kind.DoF()
		if !tracking[jIdx] {
			for k := 0; k < dof; k++ {
				zeroCols[col+k] = true
			}
		}
		col += dof
	}
	return &OrientationTrackingTask{
		baseTask:     newBaseTask(weight, cfg),
		bodyIndex:    bodyIndex,
		bodyPoint:    bodyPoint,
		bodyAxis:     bodyAxis,
		trackedPoint: trackedPoint,
		zeroCols:     zeroCols,
		jacCalc:      jacCalc,
	}
}

func (t *OrientationTrackingTask) SetTrackedPoint(p spatial.Vec3) { t.trackedPoint = p }

func (t *OrientationTrackingTask) Update(mb *rbd.MultiBody, mbc *rbd.MultiBodyConfig) {
	bodyTf := mbc.BodyPosW[t.bodyIndex]
	worldPoint := bodyTf.TransformPoint(t.bodyPoint)
	desDir := t.trackedPoint.Sub(worldPoint).Normalized()
	curDir := bodyTf.Rotation.Apply(t.bodyAxis).Normalized()

	targetOri := spatial.RotationBetween(curDir, desDir)
	e := rbd.RotationError(bodyTf.Rotation, targetOri.Mul(bodyTf.Rotation), rotationErrorEps)
	t.eval = []float64{e[0], e[1], e[2]}

	short := t.jacCalc.Jacobian(mb, mbc, worldPoint)
	for col := range t.zeroCols {
		short[0][col], short[1][col], short[2][col] = 0, 0, 0
	}
	full := rbd.FullJacobian(mb, t.jacCalc, short)
	t.jac = mat.NewDense(3, mb.NrDof(), nil)
	for c := 0; c < mb.NrDof(); c++ {
		t.jac.Set(0, c, full.At(0, c))
		t.jac.Set(1, c, full.At(1, c))
		t.jac.Set(2, c, full.At(2, c))
	}
}

func (t *OrientationTrackingTask) Eval() []float64 { return t.eval }
func (t *OrientationTrackingTask) Jac() *mat.Dense  { return t.jac }
