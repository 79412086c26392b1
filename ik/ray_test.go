package ik

import (
	"testing"

	"github.com/V-Sekai/many-bone-ik-sub000/math32"
	"github.com/stretchr/testify/assert"
)

func TestRay3DHeadingIsNormalized(t *testing.T) {

	r := NewRay3D(math32.Vector3{}, math32.Vector3{X: 5, Y: 0, Z: 0})
	h := r.Heading()
	assert.InDelta(t, 1, h.X, 1e-6)
	assert.InDelta(t, 0, h.Y, 1e-6)
}

func TestRay3DP1IsOneUnitAlongHeading(t *testing.T) {

	r := NewRay3D(math32.Vector3{X: 1, Y: 1, Z: 1}, math32.Vector3{X: 1, Y: 1, Z: 2})
	p1 := r.P1()
	o := r.Origin()
	var diff math32.Vector3
	diff.SubVectors(&p1, &o)
	assert.InDelta(t, 1, diff.Length(), 1e-5)
}

func TestRay3DElongateExtendsPastP1(t *testing.T) {

	r := NewRay3D(math32.Vector3{}, math32.Vector3{X: 0, Y: 1, Z: 0})
	end := r.Elongate(2)
	assert.InDelta(t, 3, end.Y, 1e-5)
}

func TestRay3DClosestPointT(t *testing.T) {

	r := NewRay3D(math32.Vector3{}, math32.Vector3{X: 1, Y: 0, Z: 0})
	tParam, closest := r.ClosestPointT(math32.Vector3{X: 4, Y: 2, Z: 0})
	assert.InDelta(t, 4, tParam, 1e-5)
	assert.InDelta(t, 4, closest.X, 1e-5)
	assert.InDelta(t, 0, closest.Y, 1e-5)
}

func TestRay3DIntersectsSphereBothRoots(t *testing.T) {

	r := NewRay3D(math32.Vector3{X: -5}, math32.Vector3{X: 5})
	n, p1, p2 := r.IntersectsSphereBoth(math32.Vector3{}, 1)
	assert.Equal(t, 2, n)
	assert.InDelta(t, -1, p1.X, 1e-4)
	assert.InDelta(t, 1, p2.X, 1e-4)
}

func TestRay3DIntersectsSphereMiss(t *testing.T) {

	r := NewRay3D(math32.Vector3{X: -5, Y: 10}, math32.Vector3{X: 5, Y: 10})
	n, _, _ := r.IntersectsSphereBoth(math32.Vector3{}, 1)
	assert.Equal(t, 0, n)
}

func TestRay3DIntersectPlaneThreePoints(t *testing.T) {

	r := NewRay3D(math32.Vector3{X: 0, Y: 0, Z: -5}, math32.Vector3{X: 0, Y: 0, Z: 5})
	hit := r.IntersectPlaneThreePoints(
		math32.Vector3{X: -1, Y: -1, Z: 0},
		math32.Vector3{X: 1, Y: -1, Z: 0},
		math32.Vector3{X: 0, Y: 1, Z: 0},
	)
	assert.InDelta(t, 0, hit.Z, 1e-4)
}
