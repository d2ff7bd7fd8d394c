package qp

import "github.com/Chunting/Tasks/spatial"

// ContactPoint is a single contact location on a body: an offset from the
// body origin and the set of friction-cone generator columns the contact
// force is expressed in (spec.md §3.2), matching original_source's
// ContactPoint{Offset, Generators} fields.
type ContactPoint struct {
	BodyIndex int
	Offset    spatial.Vec3
	// Generators is a 3 x nrGen matrix (one column per generator, world
	// frame) spanning the admissible contact-force cone at this point.
	// Stored flattened row-major, 3 rows.
	Generators []float64
	NrGen      int
}

func (p ContactPoint) generatorsCols() int { return p.NrGen }

// UnilateralContact is a contact whose force must lie inside (a
// polyhedral approximation of) a friction cone — every generator
// coefficient is constrained non-negative. Mirrors original_source's
// UnilateralContact.
type UnilateralContact struct {
	ID     int
	Points []ContactPoint
}

// NrLambda returns the number of scalar force-generator coefficients this
// contact contributes to the decision vector (sum of each point's
// generator count).
func (c UnilateralContact) NrLambda() int {
	n := 0
	for _, p := range c.Points {
		n += p.generatorsCols()
	}
	return n
}

// BilateralContact is a rigid (welded/grasped) contact whose force is
// unconstrained in sign — e.g. a closed kinematic loop or a firmly
// grasped manipulated object. Mirrors original_source's BilateralContact.
type BilateralContact struct {
	ID     int
	Points []ContactPoint
}

func (c BilateralContact) NrLambda() int {
	n := 0
	for _, p := range c.Points {
		n += p.generatorsCols()
	}
	return n
}
