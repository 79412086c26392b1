package ik

import (
	"testing"

	"github.com/V-Sekai/many-bone-ik-sub000/math32"
	"github.com/stretchr/testify/assert"
)

func TestNewEffectorDefaultsTrackXAndZ(t *testing.T) {

	b := NewBone("b", nil, 0.2)
	e := NewEffector(b)

	assert.Equal(t, float32(1), e.Weight())
	assert.True(t, e.UseNodeRotation())
	assert.Equal(t, 5, e.HeadingCount()) // tip/target + X axis pair + Z axis pair
}

func TestEffectorHeadingCountGrowsWithPriorities(t *testing.T) {

	b := NewBone("b", nil, 0.2)
	e := NewEffector(b)
	e.SetDirectionPriorities(0, 0, 0)
	assert.Equal(t, 1, e.HeadingCount())

	e.SetDirectionPriorities(1, 1, 1)
	assert.Equal(t, 7, e.HeadingCount())
}

func TestEffectorUseNodeRotationFalseZerosPriority(t *testing.T) {

	b := NewBone("b", nil, 0.2)
	e := NewEffector(b)
	e.SetDirectionPriorities(1, 1, 1)
	e.SetUseNodeRotation(false)
	assert.Equal(t, 1, e.HeadingCount())
}

func TestEffectorDepthFalloffClamped(t *testing.T) {

	b := NewBone("b", nil, 0.2)
	e := NewEffector(b)
	e.SetDepthFalloff(-1)
	assert.Equal(t, float32(0), e.DepthFalloff())
	e.SetDepthFalloff(5)
	assert.Equal(t, float32(1), e.DepthFalloff())
}

func TestEffectorUpdateTargetHeadingsFirstEntryIsToTarget(t *testing.T) {

	b := NewBone("b", nil, 0.2)
	e := NewEffector(b)
	e.SetDirectionPriorities(0, 0, 0)
	e.SetTargetTransform(Transform{Origin: math32.Vector3{X: 3, Y: 0, Z: 0}, Rotation: *math32.NewQuaternion(0, 0, 0, 1)})

	headings := make([]math32.Vector3, e.HeadingCount())
	weights := []float32{1}
	next := e.UpdateTargetHeadings(headings, 0, b, weights)

	assert.Equal(t, 1, next)
	assert.InDelta(t, 3, headings[0].X, 1e-5)
}

func TestEffectorUpdateTipHeadingsFirstEntryIsToTip(t *testing.T) {

	b := NewBone("b", nil, 0.2)
	pose := NewTransform()
	pose.Origin = math32.Vector3{X: 0, Y: 2, Z: 0}
	b.SetGlobalPose(pose)

	e := NewEffector(b)
	e.SetDirectionPriorities(0, 0, 0)
	e.SetTargetTransform(NewTransform())

	headings := make([]math32.Vector3, e.HeadingCount())
	next := e.UpdateTipHeadings(headings, 0, b)

	assert.Equal(t, 1, next)
	assert.InDelta(t, 2, headings[0].Y, 1e-5)
}
