package qp

import (
	"math"
	"testing"

	"github.com/Chunting/Tasks/rbd"
	"github.com/Chunting/Tasks/spatial"
	"github.com/stretchr/testify/require"
)

func TestNewMotionConstraintSplitsAlphaDAndTauSegments(t *testing.T) {
	mb := planarArm(t)
	data := SetProblemStructure(mb, nil, nil, nil, nil)

	alphaDLimits := [][2]float64{{-1, 1}, {-2, 2}}
	tauLimits := [][2]float64{{-10, 10}, {-20, 20}}
	alphaDBound, tauBound := NewMotionConstraint(data, alphaDLimits, tauLimits)

	require.Equal(t, data.AlphaBegin(), alphaDBound.BeginVar())
	require.Equal(t, []float64{-1, -2}, alphaDBound.Lower())
	require.Equal(t, []float64{1, 2}, alphaDBound.Upper())

	require.Equal(t, data.TauBegin(), tauBound.BeginVar())
	require.Equal(t, []float64{-10, -20}, tauBound.Lower())
	require.Equal(t, []float64{10, 20}, tauBound.Upper())
}

func TestNewMotionConstraintDefaultsUnspecifiedJointsToUnbounded(t *testing.T) {
	mb := planarArm(t)
	data := SetProblemStructure(mb, nil, nil, nil, nil)

	alphaDBound, _ := NewMotionConstraint(data, [][2]float64{{-1, 1}}, nil)
	require.Equal(t, math.Inf(-1), alphaDBound.Lower()[1])
	require.Equal(t, math.Inf(1), alphaDBound.Upper()[1])
}

func TestContactAccelerationConstraintZeroesRigidContactPoint(t *testing.T) {
	mb := planarArm(t)
	mbc := rbd.NewMultiBodyConfig(mb)
	mbc.Alpha[1][0] = 0.3
	rbd.ForwardKinematics(mb, mbc)
	rbd.ForwardVelocity(mb, mbc)

	data := SetProblemStructure(mb, nil, nil, nil, nil)
	c := NewContactAccelerationConstraint(mb, data, 2, spatial.Vec3{}, 0.01)
	c.Update(mb, mbc, data)

	require.Equal(t, 3, c.NrEq())
	require.Equal(t, 3, c.MaxEq())
	require.Len(t, c.AEq(), 3)
	require.Len(t, c.BEq(), 3)
	for _, row := range c.AEq() {
		require.Len(t, row, data.NrVars())
	}
}
