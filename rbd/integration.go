package rbd

import (
	"math"

	"github.com/Chunting/Tasks/spatial"
	"gonum.org/v1/gonum/num/quat"
)

// EulerIntegration advances mbc one step forward in place: velocity is
// updated from the current acceleration, then configuration from the
// updated velocity (semi-implicit Euler, the same order original_source's
// eulerIntegration uses). Quaternion-carrying joints (Spherical, Free)
// integrate their rotational velocity through the quaternion exponential
// map and renormalize, instead of naively adding into the quaternion
// components, to avoid drifting off the unit sphere over many ticks.
func EulerIntegration(mb *MultiBody, mbc *MultiBodyConfig, step float64) {
	for i := 0; i < mb.NrJoints(); i++ {
		for k := range mbc.Alpha[i] {
			mbc.Alpha[i][k] += step * mbc.AlphaD[i][k]
		}
		integrateJointQ(mb.Joint(i), mbc.Q[i], mbc.Alpha[i], step)
	}
}

// integrateJointQ advances one joint's q in place by step along alpha.
func integrateJointQ(j Joint, q []float64, alpha []float64, step float64) {
	switch j.Kind {
	case Fixed:
		// no configuration
	case Rev, Prism:
		q[0] += step * alpha[0]
	case Spherical:
		integrateQuat(q, spatial.Vec3{alpha[0], alpha[1], alpha[2]}, step)
	case Free:
		integrateQuat(q, spatial.Vec3{alpha[0], alpha[1], alpha[2]}, step)
		q[4] += step * alpha[3]
		q[5] += step * alpha[4]
		q[6] += step * alpha[5]
	}
}

// integrateQuat rotates the quaternion stored in q[0:4] by the angular
// velocity omega over step, via the exponential map, renormalizing to
// counter floating-point drift.
func integrateQuat(q []float64, omega spatial.Vec3, step float64) {
	theta := omega.Norm() * step
	var delta quat.Number
	if theta < 1e-9 {
		delta = quat.Number{Real: 1}
	} else {
		axis := omega.Normalized()
		half := theta / 2
		s := math.Sin(half)
		delta = quat.Number{Real: math.Cos(half), Imag: axis[0] * s, Jmag: axis[1] * s, Kmag: axis[2] * s}
	}
	cur := quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]}
	next := quat.Mul(cur, delta)
	n := math.Sqrt(next.Real*next.Real + next.Imag*next.Imag + next.Jmag*next.Jmag + next.Kmag*next.Kmag)
	if n < 1e-12 {
		q[0], q[1], q[2], q[3] = 1, 0, 0, 0
		return
	}
	q[0], q[1], q[2], q[3] = next.Real/n, next.Imag/n, next.Jmag/n, next.Kmag/n
}
