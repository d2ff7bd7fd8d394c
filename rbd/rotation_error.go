package rbd

import "github.com/Chunting/Tasks/spatial"

// RotationError exposes spec.md §6.2's rotationError(Ra, Rb, eps) -> R^3
// oracle entry point, delegating to the spatial package's log-map
// implementation so qp's tasks only need to import rbd.
func RotationError(ra, rb spatial.Rotation, eps float64) spatial.Vec3 {
	return spatial.RotationError(ra, rb, eps)
}
