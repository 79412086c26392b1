package ikconfig

import "fmt"

// Validate checks cfg for problems a host should surface before handing it
// to a solver, without touching any bone data (it has none: that is the
// skeleton's job). Grounded on the original implementation's
// `_validate_property`, without any editor/UI dependency. Returns one
// error per problem found, or nil if cfg looks sound.
func (cfg *Config) Validate() []error {

	var errs []error

	if cfg.RootBone == "" {
		errs = append(errs, fmt.Errorf("root_bone is required"))
	}

	seenPinBones := make(map[string]bool, len(cfg.Pins))
	for i, p := range cfg.Pins {
		if p.Bone == "" {
			errs = append(errs, fmt.Errorf("pins[%d]: bone is required", i))
			continue
		}
		if seenPinBones[p.Bone] {
			errs = append(errs, fmt.Errorf("pins[%d]: duplicate pin on bone %q", i, p.Bone))
		}
		seenPinBones[p.Bone] = true
		if p.Weight < 0 {
			errs = append(errs, fmt.Errorf("pins[%d]: weight must be >= 0, got %g", i, p.Weight))
		}
		if p.DepthFalloff < 0 || p.DepthFalloff > 1 {
			errs = append(errs, fmt.Errorf("pins[%d]: depth_falloff must be in [0,1], got %g", i, p.DepthFalloff))
		}
	}

	seenConstraintBones := make(map[string]bool, len(cfg.Constraints))
	for i, c := range cfg.Constraints {
		if c.Bone == "" {
			errs = append(errs, fmt.Errorf("constraints[%d]: bone is required", i))
			continue
		}
		if seenConstraintBones[c.Bone] {
			errs = append(errs, fmt.Errorf("constraints[%d]: duplicate constraint on bone %q", i, c.Bone))
		}
		seenConstraintBones[c.Bone] = true

		if c.TwistTo < c.TwistFrom {
			errs = append(errs, fmt.Errorf(
				"constraints[%d]: twist_to (%g) < twist_from (%g) on bone %q; if wraparound is intended, add tau explicitly",
				i, c.TwistTo, c.TwistFrom, c.Bone))
		}
		for j, cone := range c.Cones {
			if cone.Radius <= 0 {
				errs = append(errs, fmt.Errorf(
					"constraints[%d].cones[%d]: radius must be > 0 on bone %q, got %g",
					i, j, c.Bone, cone.Radius))
			}
		}
	}

	if cfg.IterationsPerFrame < 0 {
		errs = append(errs, fmt.Errorf("iterations_per_frame must be >= 0, got %d", cfg.IterationsPerFrame))
	}
	if cfg.StabilizationPasses < 0 {
		errs = append(errs, fmt.Errorf("stabilization_passes must be >= 0, got %d", cfg.StabilizationPasses))
	}

	return errs
}
