package ikconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPinHasDefaultsAndUniqueIDs(t *testing.T) {

	a := NewPin("wrist")
	b := NewPin("wrist")

	assert.Equal(t, "wrist", a.Bone)
	assert.Equal(t, float32(1), a.Weight)
	assert.True(t, a.UseNodeRotation)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewConstraintIsUnconstrainedByDefault(t *testing.T) {

	c := NewConstraint("elbow")
	assert.Equal(t, "elbow", c.Bone)
	assert.Empty(t, c.Cones)
	assert.False(t, c.FlipHandedness)
}

func TestConfigSaveLoadRoundTrips(t *testing.T) {

	cfg := &Config{
		RootBone:            "shoulder",
		IterationsPerFrame:  5,
		DefaultDamp:         0.25,
		StabilizationPasses: 2,
		Pins:                []PinConfig{NewPin("wrist")},
		Constraints: []ConstraintConfig{
			{
				ID:        NewConstraint("elbow").ID,
				Bone:      "elbow",
				TwistFrom: -0.5,
				TwistTo:   0.5,
				Cones:     []ConeConfig{{CenterY: 1, Radius: 0.3}},
			},
		},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "rig.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.RootBone, loaded.RootBone)
	assert.Equal(t, cfg.IterationsPerFrame, loaded.IterationsPerFrame)
	assert.InDelta(t, cfg.DefaultDamp, loaded.DefaultDamp, 1e-6)
	require.Len(t, loaded.Pins, 1)
	assert.Equal(t, cfg.Pins[0].Bone, loaded.Pins[0].Bone)
	require.Len(t, loaded.Constraints, 1)
	assert.Equal(t, cfg.Constraints[0].Bone, loaded.Constraints[0].Bone)
	require.Len(t, loaded.Constraints[0].Cones, 1)
	assert.InDelta(t, 0.3, loaded.Constraints[0].Cones[0].Radius, 1e-6)
}

func TestLoadMissingFileReturnsError(t *testing.T) {

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
