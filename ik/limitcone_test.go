package ik

import (
	"testing"

	"github.com/V-Sekai/many-bone-ik-sub000/math32"
	"github.com/stretchr/testify/assert"
)

func TestGetOrthogonalIsPerpendicular(t *testing.T) {

	cases := []math32.Vector3{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 1},
		{X: 3, Y: -2, Z: 0.5},
	}
	for _, in := range cases {
		ortho := GetOrthogonal(in)
		assert.InDelta(t, 0, in.Dot(&ortho), 1e-4)
	}
}

func TestLimitConeControlPointIsNormalized(t *testing.T) {

	c := NewLimitCone(math32.Vector3{X: 3, Y: 0, Z: 0}, 0.3)
	cp := c.ControlPoint()
	assert.InDelta(t, 1, cp.Length(), 1e-5)
}

func TestLimitConeDetermineIfInBoundsAtControlPoint(t *testing.T) {

	c := NewLimitCone(math32.Vector3{X: 0, Y: 0, Z: 1}, 0.4)
	assert.True(t, c.DetermineIfInBounds(nil, c.ControlPoint()))
}

func TestLimitConeDetermineIfOutOfBoundsOppositeDirection(t *testing.T) {

	c := NewLimitCone(math32.Vector3{X: 0, Y: 0, Z: 1}, 0.2)
	assert.False(t, c.DetermineIfInBounds(nil, math32.Vector3{X: 0, Y: 0, Z: -1}))
}

func TestLimitConeClosestToConeReportsInBounds(t *testing.T) {

	c := NewLimitCone(math32.Vector3{X: 0, Y: 0, Z: 1}, 0.5)
	p, in := c.ClosestToCone(math32.Vector3{X: 0, Y: 0, Z: 1})
	assert.True(t, in)
	assert.InDelta(t, 1, p.Z, 1e-5)
}

func TestLimitConeClosestToConeProjectsOutOfBounds(t *testing.T) {

	c := NewLimitCone(math32.Vector3{X: 0, Y: 0, Z: 1}, 0.1)
	p, in := c.ClosestToCone(math32.Vector3{X: 1, Y: 0, Z: 0})
	assert.False(t, in)
	assert.InDelta(t, 1, p.Length(), 1e-4)
	cp := c.ControlPoint()
	assert.InDelta(t, math32.Cos(0.1), cp.Dot(&p), 1e-3)
}

func TestLimitConeUpdateTangentHandlesBuildsCorridor(t *testing.T) {

	a := NewLimitCone(math32.Vector3{X: 1, Y: 0, Z: 0}, 0.3)
	b := NewLimitCone(math32.Vector3{X: 0, Y: 1, Z: 0}, 0.3)
	a.UpdateTangentHandles(b)
	b.UpdateTangentHandles(nil)

	assert.True(t, a.hasTangentCircles)
	assert.False(t, b.hasTangentCircles)
	assert.Greater(t, a.tangentRadius, float32(0))
}

func TestLimitConeGetClosestPathPointStaysNormalized(t *testing.T) {

	a := NewLimitCone(math32.Vector3{X: 1, Y: 0, Z: 0}, 0.3)
	b := NewLimitCone(math32.Vector3{X: 0, Y: 1, Z: 0}, 0.3)
	a.UpdateTangentHandles(b)
	b.UpdateTangentHandles(nil)

	mid := math32.Vector3{X: 1, Y: 1, Z: 0}
	mid.Normalize()
	p := a.GetClosestPathPoint(b, mid)
	assert.InDelta(t, 1, p.Length(), 1e-3)
}
