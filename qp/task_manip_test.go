package qp

import (
	"testing"

	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
	"github.com/stretchr/testify/require"
)

func manipAugmentedArm(t *testing.T) (*rbd.MultiBody, int) {
	t.Helper()
	mb := planarArm(t)
	manip, err := mb.WithAddedBody(
		rbd.NewBody("manip", 15000, 2.0),
		rbd.NewJoint(rbd.Fixed, 42000, "manip-weld"),
		2,
		spatial.NewTranslation(spatial.Vec3{0.1, 0, 0}),
	)
	require.NoError(t, err)
	return manip, manip.NrBodies() - 1
}

func TestManipCoMTaskDrivesVirtualBodyTowardsTarget(t *testing.T) {
	manip, manipIdx := manipAugmentedArm(t)
	mbc := rbd.NewMultiBodyConfig(manip)
	rbd.ForwardKinematics(manip, mbc)

	cfg := DefaultConfig()
	target := spatial.Vec3{2, 1, 0}
	task := NewManipCoMTask(manip, manipIdx, target, 1.0, 1e-3, cfg)
	task.Update(manip, mbc)

	require.Len(t, task.Eval(), 3)
	rows, cols := task.Jac().Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, manip.NrDof(), cols)

	before := append([]float64(nil), task.Eval()...)
	newTarget := spatial.Vec3{5, 5, 5}
	task.SetTarget(newTarget)
	task.Update(manip, mbc)
	require.NotEqual(t, before, task.Eval())
}

func TestManipMomentumTaskMatchesMomentumTaskShape(t *testing.T) {
	manip, _ := manipAugmentedArm(t)
	mbc := rbd.NewMultiBodyConfig(manip)
	rbd.ForwardKinematics(manip, mbc)
	rbd.ForwardVelocity(manip, mbc)

	cfg := DefaultConfig()
	target := rbd.ForceVec{}
	task := NewManipMomentumTask(manip, target, 1.0, cfg)
	task.Update(manip, mbc)

	require.Len(t, task.Eval(), 6)
	rows, cols := task.Jac().Dims()
	require.Equal(t, 6, rows)
	require.Equal(t, manip.NrDof(), cols)

	task.SetTarget(rbd.ForceVec{Linear: spatial.Vec3{1, 0, 0}})
	task.Update(manip, mbc)
	require.Len(t, task.Eval(), 6)
}
