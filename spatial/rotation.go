package spatial

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Rotation is a 3x3 orthonormal rotation matrix, row-major.
type Rotation [3][3]float64

// Identity returns the identity rotation.
func Identity() Rotation {
	return Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Apply rotates v by r.
func (r Rotation) Apply(v Vec3) Vec3 {
	return Vec3{
		r[0][0]*v[0] + r[0][1]*v[1] + r[0][2]*v[2],
		r[1][0]*v[0] + r[1][1]*v[1] + r[1][2]*v[2],
		r[2][0]*v[0] + r[2][1]*v[1] + r[2][2]*v[2],
	}
}

// Transpose returns the transpose (== inverse, for a valid rotation) of r.
func (r Rotation) Transpose() Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = r[j][i]
		}
	}
	return out
}

// Mul composes two rotations: (r*o).Apply(v) == r.Apply(o.Apply(v)).
func (r Rotation) Mul(o Rotation) Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += r[i][k] * o[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// Quaternion returns the unit quaternion (w,x,y,z) representing r.
func (r Rotation) Quaternion() quat.Number {
	tr := r[0][0] + r[1][1] + r[2][2]
	switch {
	case tr > 0:
		s := 0.5 / math.Sqrt(tr+1.0)
		return quat.Number{
			Real: 0.25 / s,
			Imag: (r[2][1] - r[1][2]) * s,
			Jmag: (r[0][2] - r[2][0]) * s,
			Kmag: (r[1][0] - r[0][1]) * s,
		}
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		s := 2.0 * math.Sqrt(1.0+r[0][0]-r[1][1]-r[2][2])
		return quat.Number{
			Real: (r[2][1] - r[1][2]) / s,
			Imag: 0.25 * s,
			Jmag: (r[0][1] + r[1][0]) / s,
			Kmag: (r[0][2] + r[2][0]) / s,
		}
	case r[1][1] > r[2][2]:
		s := 2.0 * math.Sqrt(1.0+r[1][1]-r[0][0]-r[2][2])
		return quat.Number{
			Real: (r[0][2] - r[2][0]) / s,
			Imag: (r[0][1] + r[1][0]) / s,
			Jmag: 0.25 * s,
			Kmag: (r[1][2] + r[2][1]) / s,
		}
	default:
		s := 2.0 * math.Sqrt(1.0+r[2][2]-r[0][0]-r[1][1])
		return quat.Number{
			Real: (r[1][0] - r[0][1]) / s,
			Imag: (r[0][2] + r[2][0]) / s,
			Jmag: (r[1][2] + r[2][1]) / s,
			Kmag: 0.25 * s,
		}
	}
}

// RotationFromQuaternion builds a rotation matrix from a (non-necessarily
// normalized) quaternion.
func RotationFromQuaternion(q quat.Number) Rotation {
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n < 1e-12 {
		return Identity()
	}
	w, x, y, z := q.Real/n, q.Imag/n, q.Jmag/n, q.Kmag/n
	return Rotation{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
}

// RotationFromAxisAngle builds a rotation of angle theta about unit-ish
// axis (normalized internally).
func RotationFromAxisAngle(axis Vec3, theta float64) Rotation {
	a := axis.Normalized()
	half := theta / 2
	s := math.Sin(half)
	return RotationFromQuaternion(quat.Number{
		Real: math.Cos(half),
		Imag: a[0] * s,
		Jmag: a[1] * s,
		Kmag: a[2] * s,
	})
}

// RotationBetween returns the minimal rotation taking unit-ish vector a
// onto unit-ish vector b (shortest-arc quaternion construction), used by
// tasks that need to reorient a body axis towards a target direction.
func RotationBetween(a, b Vec3) Rotation {
	an, bn := a.Normalized(), b.Normalized()
	axis := an.Cross(bn)
	w := an.Dot(bn) + 1
	if w < 1e-9 {
		// a and b are nearly opposite; pick any axis orthogonal to a.
		ortho := Vec3{1, 0, 0}
		if math.Abs(an[0]) > 0.9 {
			ortho = Vec3{0, 1, 0}
		}
		axis = an.Cross(ortho)
		w = 0
	}
	return RotationFromQuaternion(quat.Number{Real: w, Imag: axis[0], Jmag: axis[1], Kmag: axis[2]})
}

// RotationError returns the angle-axis (log-map) residual between the
// current rotation Ra and the desired rotation Rb, i.e. the rotation
// vector that rotates Ra towards Rb. Near the identity (norm of the error
// quaternion's vector part below eps) the small-angle linearization
// 2*vec(q_err) is used directly to avoid the 0/0 singularity in
// atan2(|vec|, w)/|vec|.
func RotationError(ra, rb Rotation, eps float64) Vec3 {
	qa := ra.Quaternion()
	qb := rb.Quaternion()
	// error quaternion rotating ra to rb: qErr = qb * conj(qa)
	qErr := quat.Mul(qb, quat.Conj(qa))
	if qErr.Real < 0 {
		qErr = quat.Scale(-1, qErr)
	}
	v := Vec3{qErr.Imag, qErr.Jmag, qErr.Kmag}
	n := v.Norm()
	if n < eps {
		return v.Scale(2)
	}
	angle := 2 * math.Atan2(n, qErr.Real)
	return v.Scale(angle / n)
}
