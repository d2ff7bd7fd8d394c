package qp

import "math"

// Config carries the tunables SPEC_FULL.md §10 resolves as named,
// overridable defaults instead of the magic numbers original_source
// hardcodes in Tasks.cpp's ManipCoMTask/ManipMomentumTask constructors
// (body id 15000, joint id 42000, weight 0.001).
type Config struct {
	// ManipBodyID is the ID assigned to the virtual manipulated-body
	// frame grafted onto the kinematic tree (an arbitrary-but-unique
	// label, not a physical quantity). Original default: 15000.
	ManipBodyID int
	// ManipJointID is the ID assigned to the virtual weld joint
	// connecting the manipulated body to its carrying contact body.
	// Original default: 42000.
	ManipJointID int
	// ManipWeight is the CoMJacobianDummy weight assigned to the virtual
	// body's own column contributions, trading off "the manipulated
	// object's own Jacobian sensitivity counts fully" (weight 1) against
	// "only the real bodies' sensitivity counts" (weight near 0); it does
	// not affect CoMTask's mass-weighted residual, only its Jacobian.
	// Original default: 0.001.
	ManipWeight float64

	// DefaultStiffness/DefaultDamping seed Kp/Kd for tasks that don't
	// specify their own (SPEC_FULL.md §5). Damping defaults to critical
	// damping for the default stiffness (2*sqrt(Kp)).
	DefaultStiffness float64
	DefaultDamping   float64

	// DiagonalRegularization is added, after all tasks are accumulated, to
	// every diagonal entry of the assembled Q whose magnitude is below it,
	// matching original_source's DIAG_CONSTANT (1e-5) in QPSolver.cpp. It
	// covers decision variables no task touches; Q is not otherwise checked
	// for positive-definiteness.
	DiagonalRegularization float64

	// FeasibilityTolerances is the retry ladder a tolerance-accepting
	// backend (qld-style) walks through on infeasibility, starting tight
	// and loosening, mirroring QPSolver.cpp's updateQLD loop.
	FeasibilityTolerances []float64

	Silent bool
}

// DefaultConfig returns the tunables used when a Solver isn't otherwise
// configured.
func DefaultConfig() Config {
	stiffness := 100.0
	return Config{
		ManipBodyID:            15000,
		ManipJointID:           42000,
		ManipWeight:            1e-3,
		DefaultStiffness:       stiffness,
		DefaultDamping:         2 * math.Sqrt(stiffness),
		DiagonalRegularization: 1e-5,
		FeasibilityTolerances:  []float64{1e-8, 1e-7, 1e-6, 1e-5, 1e-4},
	}
}

// Option configures a Solver at construction time.
type Option func(*Config)

// WithSilent suppresses the solver's own log output (spec.md §10
// supplement), useful for tests and library embedding where the caller
// owns logging policy.
func WithSilent(silent bool) Option {
	return func(c *Config) { c.Silent = silent }
}

// WithManipTunables overrides the manipulated-body id/joint-id/weight
// defaults.
func WithManipTunables(bodyID, jointID int, weight float64) Option {
	return func(c *Config) {
		c.ManipBodyID = bodyID
		c.ManipJointID = jointID
		c.ManipWeight = weight
	}
}

// WithStiffness overrides the default task Kp/Kd used when a task doesn't
// specify its own.
func WithStiffness(kp, kd float64) Option {
	return func(c *Config) {
		c.DefaultStiffness = kp
		c.DefaultDamping = kd
	}
}

// WithFeasibilityTolerances overrides the qld-style backend's retry
// ladder.
func WithFeasibilityTolerances(tolerances []float64) Option {
	return func(c *Config) {
		c.FeasibilityTolerances = append([]float64(nil), tolerances...)
	}
}
