package ik

import (
	"testing"

	"github.com/V-Sekai/many-bone-ik-sub000/math32"
	"github.com/stretchr/testify/assert"
)

func TestKusudamaUnconstrainedAllowsEverything(t *testing.T) {

	k := NewKusudama()
	p, bound := k.LocalPointInLimits(math32.Vector3{X: 1, Y: 2, Z: 3})
	assert.Equal(t, float32(1), bound)
	assert.InDelta(t, 1, p.Length(), 1e-5)
}

func TestKusudamaSingleConeInBounds(t *testing.T) {

	k := NewKusudama()
	k.AddLimitCone(math32.Vector3{X: 0, Y: 0, Z: 1}, 0.4)
	k.orientationallyConstrained = true

	_, bound := k.LocalPointInLimits(math32.Vector3{X: 0, Y: 0, Z: 1})
	assert.Equal(t, float32(1), bound)
}

func TestKusudamaSingleConeOutOfBoundsRectifiesToBoundary(t *testing.T) {

	k := NewKusudama()
	k.AddLimitCone(math32.Vector3{X: 0, Y: 0, Z: 1}, 0.2)
	k.orientationallyConstrained = true

	nearest, bound := k.LocalPointInLimits(math32.Vector3{X: 1, Y: 0, Z: 0})
	assert.Equal(t, float32(-1), bound)
	cp := math32.Vector3{X: 0, Y: 0, Z: 1}
	assert.InDelta(t, math32.Cos(0.2), cp.Dot(&nearest), 1e-3)
}

func TestKusudamaAxialLimitsSetsRange(t *testing.T) {

	k := NewKusudama()
	k.SetAxialLimits(0.1, 1.0)
	assert.True(t, k.IsAxiallyConstrained())
	assert.InDelta(t, 0.1, k.MinAxialAngle(), 1e-6)
	assert.InDelta(t, 1.0, k.AxialRange(), 1e-6)
}

func TestKusudamaUpdateRotationalFreedomUnconstrainedIsOne(t *testing.T) {

	k := NewKusudama()
	k.UpdateRotationalFreedom()
	assert.InDelta(t, 1, k.RotationalFreedom(), 1e-6)
}

func TestKusudamaUpdateRotationalFreedomShrinksWithCones(t *testing.T) {

	k := NewKusudama()
	k.AddLimitCone(math32.Vector3{X: 0, Y: 0, Z: 1}, 0.1)
	k.orientationallyConstrained = true
	k.UpdateTangentRadii()
	k.UpdateRotationalFreedom()
	assert.Less(t, k.RotationalFreedom(), float32(1))
}

func TestSwingTwistRecomposesRotation(t *testing.T) {

	axis := math32.Vector3{X: 0, Y: 1, Z: 0}
	q := math32.NewQuaternion(0, 0, 0, 1)
	q.SetFromAxisAngle(&axis, 1.1)

	swing, twist := SwingTwist(*q, axis)

	var recomposed math32.Quaternion
	recomposed.MultiplyQuaternions(&swing, &twist)
	recomposed.Normalize()

	assert.InDelta(t, 1, math32.Abs(recomposed.Dot(q)), 1e-3)
}

func TestSwingTwistPureTwistHasNoSwingComponent(t *testing.T) {

	axis := math32.Vector3{X: 0, Y: 1, Z: 0}
	q := math32.NewQuaternion(0, 0, 0, 1)
	q.SetFromAxisAngle(&axis, 0.7)

	swing, _ := SwingTwist(*q, axis)
	assert.InDelta(t, 1, math32.Abs(swing.W), 1e-3)
}

func TestKusudamaSetAxesToOrientationSnapPullsHeadingInBounds(t *testing.T) {

	limiting := NewNode("limiting")
	toSet := NewNode("toSet")
	toSet.SetParent(limiting)

	local := NewTransform()
	axis := math32.Vector3{X: 1, Y: 0, Z: 0}
	local.Rotation.SetFromAxisAngle(&axis, math32.Pi/2) // tips +Y heading toward +Z
	toSet.SetLocal(local)

	k := NewKusudama()
	k.AddLimitCone(math32.Vector3{X: 0, Y: 1, Z: 0}, 0.1)
	k.orientationallyConstrained = true

	k.SetAxesToOrientationSnap(toSet, limiting)

	heading := toSet.YAxis()
	cone := k.cones[0].ControlPoint()
	assert.GreaterOrEqual(t, heading.Dot(&cone), math32.Cos(0.1)-1e-3)
}
