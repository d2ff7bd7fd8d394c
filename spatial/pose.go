package spatial

// Pose is a rigid spatial transform, the Go equivalent of SpaceVecAlg's
// PTransformd used throughout original_source: a rotation plus a
// translation, composing body-to-world (or body-to-point) frames.
type Pose struct {
	Rotation    Rotation
	Translation Vec3
}

// NewPose builds a pose from a rotation and translation.
func NewPose(r Rotation, t Vec3) Pose { return Pose{Rotation: r, Translation: t} }

// NewTranslation builds a pure-translation pose (identity rotation).
func NewTranslation(t Vec3) Pose { return Pose{Rotation: Identity(), Translation: t} }

// IdentityPose returns the identity pose.
func IdentityPose() Pose { return Pose{Rotation: Identity()} }

// Mul composes two poses: p.Mul(o) applies o first, then p (p*o).
func (p Pose) Mul(o Pose) Pose {
	return Pose{
		Rotation:    p.Rotation.Mul(o.Rotation),
		Translation: p.Rotation.Apply(o.Translation).Add(p.Translation),
	}
}

// Inverse returns the inverse transform.
func (p Pose) Inverse() Pose {
	rt := p.Rotation.Transpose()
	return Pose{
		Rotation:    rt,
		Translation: rt.Apply(p.Translation).Scale(-1),
	}
}

// TransformPoint maps a point expressed in this pose's local frame into
// the parent frame: world = R*local + t.
func (p Pose) TransformPoint(local Vec3) Vec3 {
	return p.Rotation.Apply(local).Add(p.Translation)
}

// TransformVector maps a free vector (no translation contribution).
func (p Pose) TransformVector(v Vec3) Vec3 {
	return p.Rotation.Apply(v)
}
