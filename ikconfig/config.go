// Package ikconfig is the plain serializable record of a solver setup:
// which skeleton, which bones are pinned to what, which bones carry
// Kusudama constraints, and the iteration/damping knobs that govern the
// solve. It is kept separate from the runtime ik package so a host can
// load, edit, and persist a rig's IK configuration without touching the
// solver's arena.
package ikconfig

import (
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// PinConfig configures one effector.
type PinConfig struct {
	ID              uuid.UUID `yaml:"id"`
	Bone            string    `yaml:"bone"`
	Target          string    `yaml:"target"` // host-interpreted target handle name
	UseNodeRotation bool      `yaml:"use_node_rotation"`
	Weight          float32   `yaml:"weight"`
	PriorityX       float32   `yaml:"priority_x"`
	PriorityY       float32   `yaml:"priority_y"`
	PriorityZ       float32   `yaml:"priority_z"`
	DepthFalloff    float32   `yaml:"depth_falloff"`
}

// NewPin creates a PinConfig for bone with a fresh stable identity and
// the library's default direction priorities (X and Z tracked, Y not).
func NewPin(bone string) PinConfig {

	return PinConfig{
		ID:              uuid.New(),
		Bone:            bone,
		UseNodeRotation: true,
		Weight:          1,
		PriorityX:       1,
		PriorityZ:       1,
	}
}

// ConeConfig configures one LimitCone of a constraint.
type ConeConfig struct {
	CenterX float32 `yaml:"center_x"`
	CenterY float32 `yaml:"center_y"`
	CenterZ float32 `yaml:"center_z"`
	Radius  float32 `yaml:"radius"`
}

// ConstraintConfig configures one bone's Kusudama.
type ConstraintConfig struct {
	ID             uuid.UUID    `yaml:"id"`
	Bone           string       `yaml:"bone"`
	TwistFrom      float32      `yaml:"twist_from"`
	TwistTo        float32      `yaml:"twist_to"`
	Cones          []ConeConfig `yaml:"cones"`
	FlipHandedness bool         `yaml:"flip_handedness"`
}

// NewConstraint creates an unconstrained ConstraintConfig for bone with a
// fresh stable identity.
func NewConstraint(bone string) ConstraintConfig {

	return ConstraintConfig{
		ID:   uuid.New(),
		Bone: bone,
	}
}

// Config is the full serializable setup of a Solver: which skeleton and
// bone range it drives, its iteration/damping knobs, and its pins and
// constraints. Mirrors spec.md §6's configuration-surface table field for
// field.
type Config struct {
	Skeleton            string             `yaml:"skeleton"`
	RootBone            string             `yaml:"root_bone"`
	TipBone             string             `yaml:"tip_bone,omitempty"`
	IterationsPerFrame  int                `yaml:"iterations_per_frame"`
	DefaultDamp         float32            `yaml:"default_damp"`
	StabilizationPasses int                `yaml:"stabilization_passes"`
	TimeBudgetMillis    int64              `yaml:"time_budget_millis,omitempty"`
	Pins                []PinConfig        `yaml:"pins"`
	Constraints         []ConstraintConfig `yaml:"constraints"`
}

// Load reads and parses a Config from a yaml file at path.
func Load(path string) (*Config, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path as yaml, creating or truncating the file.
func (cfg *Config) Save(path string) error {

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
