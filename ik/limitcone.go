package ik

import (
	"github.com/V-Sekai/many-bone-ik-sub000/math32"
)

// LimitCone is one spherical cap of a Kusudama's ordered sequence,
// together with the tangent circle connecting it to the next cone in
// the sequence. Grounded on the original implementation's LimitCone;
// the cushion/soft-limit machinery it also carries is not implemented
// here (see the Kusudama type's doc comment for why).
type LimitCone struct {
	controlPoint math32.Vector3
	radius       float32
	radiusCosine float32

	tangentCenter1    math32.Vector3
	tangentCenter2    math32.Vector3
	tangentRadius     float32
	tangentRadiusCos  float32
	hasTangentCircles bool
}

// NewLimitCone creates a LimitCone centered on direction (need not be
// normalized) spanning radius radians.
func NewLimitCone(direction math32.Vector3, radius float32) *LimitCone {

	c := &LimitCone{}
	c.controlPoint = direction
	c.controlPoint.Normalize()
	if radius < 1e-12 {
		radius = 1e-12
	}
	c.radius = radius
	c.radiusCosine = math32.Cos(radius)

	c.tangentCenter1 = GetOrthogonal(c.controlPoint)
	c.tangentCenter1.Normalize()
	c.tangentCenter2 = c.tangentCenter1
	c.tangentCenter2.MultiplyScalar(-1)
	return c
}

// ControlPoint returns the cone's central direction.
func (c *LimitCone) ControlPoint() math32.Vector3 {

	return c.controlPoint
}

// Radius returns the cone's angular radius in radians.
func (c *LimitCone) Radius() float32 {

	return c.radius
}

// GetOrthogonal returns an arbitrary unit vector orthogonal to in,
// picking the numerically best-conditioned pair of components to base
// the cross on. Grounded on the original implementation's
// LimitCone::get_orthogonal.
func GetOrthogonal(in math32.Vector3) math32.Vector3 {

	threshold := in.Length() * 0.6

	if threshold > 0 {
		if math32.Abs(in.X) <= threshold {
			inverse := 1 / math32.Sqrt(in.Y*in.Y+in.Z*in.Z)
			return math32.Vector3{X: 0, Y: inverse * in.Z, Z: -inverse * in.Y}
		} else if math32.Abs(in.Y) <= threshold {
			inverse := 1 / math32.Sqrt(in.X*in.X+in.Z*in.Z)
			return math32.Vector3{X: -inverse * in.Z, Y: 0, Z: inverse * in.X}
		}
		inverse := 1 / math32.Sqrt(in.X*in.X+in.Y*in.Y)
		return math32.Vector3{X: inverse * in.Y, Y: -inverse * in.X, Z: 0}
	}
	return math32.Vector3{}
}

// UpdateTangentHandles computes this cone's tangent circle against
// next, the following cone in its Kusudama's sequence (nil if this is
// the last cone). Grounded on the original implementation's
// LimitCone::update_tangent_and_cushion_handles, stripped of its
// cushion-mode branch.
func (c *LimitCone) UpdateTangentHandles(next *LimitCone) {

	c.controlPoint.Normalize()
	if next == nil {
		c.hasTangentCircles = false
		return
	}

	radA := c.radius
	radB := next.radius

	A := c.controlPoint
	B := next.controlPoint

	var arcNormal math32.Vector3
	arcNormal.CrossVectors(&A, &B)

	tRadius := (math32.Pi - (radA + radB)) / 2

	boundaryPlusTangentRadiusA := radA + tRadius
	boundaryPlusTangentRadiusB := radB + tRadius

	scaledAxisA := A
	scaledAxisA.MultiplyScalar(math32.Cos(boundaryPlusTangentRadiusA))

	var q1 math32.Quaternion
	q1.SetFromAxisAngle(&arcNormal, boundaryPlusTangentRadiusA)
	planeDir1A := A
	planeDir1A.ApplyQuaternion(&q1)

	var q2 math32.Quaternion
	q2.SetFromAxisAngle(&A, math32.Pi/2)
	planeDir2A := planeDir1A
	planeDir2A.ApplyQuaternion(&q2)

	scaledAxisB := B
	scaledAxisB.MultiplyScalar(math32.Cos(boundaryPlusTangentRadiusB))

	var q3 math32.Quaternion
	q3.SetFromAxisAngle(&arcNormal, boundaryPlusTangentRadiusB)
	planeDir1B := B
	planeDir1B.ApplyQuaternion(&q3)

	var q4 math32.Quaternion
	q4.SetFromAxisAngle(&B, math32.Pi/2)
	planeDir2B := planeDir1B
	planeDir2B.ApplyQuaternion(&q4)

	r1B := NewRay3D(planeDir1B, scaledAxisB)
	r2B := NewRay3D(planeDir1B, planeDir2B)
	r1B.Elongate(99)
	r2B.Elongate(99)

	intersection1 := r1B.IntersectPlaneThreePoints(scaledAxisA, planeDir1A, planeDir2A)
	intersection2 := r2B.IntersectPlaneThreePoints(scaledAxisA, planeDir1A, planeDir2A)

	intersectionRay := NewRay3D(intersection1, intersection2)
	intersectionRay.Elongate(99)

	n, s1, s2 := intersectionRay.IntersectsSphereBoth(math32.Vector3{}, 1)

	if n > 0 {
		c.tangentCenter1 = s1
		c.tangentCenter2 = s2
	} else {
		c.tangentCenter1 = GetOrthogonal(c.controlPoint)
		c.tangentCenter1.Normalize()
		c.tangentCenter2 = c.tangentCenter1
		c.tangentCenter2.MultiplyScalar(-1)
	}

	c.tangentRadius = tRadius
	c.tangentRadiusCos = math32.Cos(tRadius)
	c.hasTangentCircles = true
}

// DetermineIfInBounds reports whether input (a unit direction) lies
// within the union of this cone, next (if any), and the tangent
// corridor connecting them. Grounded on the original implementation's
// LimitCone::determine_if_in_bounds.
func (c *LimitCone) DetermineIfInBounds(next *LimitCone, input math32.Vector3) bool {

	if c.controlPoint.Dot(&input) >= c.radiusCosine {
		return true
	}
	if next != nil {
		nextCP := next.controlPoint
		if nextCP.Dot(&input) >= next.radiusCosine {
			return true
		}
	}
	if next == nil {
		return false
	}

	inTan1 := c.tangentCenter1.Dot(&input) > c.tangentRadiusCos
	if inTan1 {
		return false
	}
	inTan2 := c.tangentCenter2.Dot(&input) > c.tangentRadiusCos
	if inTan2 {
		return false
	}

	var c1xc2 math32.Vector3
	c1xc2.CrossVectors(&c.controlPoint, &next.controlPoint)
	c1c2dir := input.Dot(&c1xc2)

	if c1c2dir < 0 {
		var c1xt1, t1xc2 math32.Vector3
		c1xt1.CrossVectors(&c.controlPoint, &c.tangentCenter1)
		t1xc2.CrossVectors(&c.tangentCenter1, &next.controlPoint)
		return input.Dot(&c1xt1) > 0 && input.Dot(&t1xc2) > 0
	}
	var t2xc1, c2xt2 math32.Vector3
	t2xc1.CrossVectors(&c.tangentCenter2, &c.controlPoint)
	c2xt2.CrossVectors(&next.controlPoint, &c.tangentCenter2)
	return input.Dot(&t2xc1) > 0 && input.Dot(&c2xt2) > 0
}

// GetOnGreatTangentTriangle returns the point on the tangent corridor
// between this cone and next that is closest to input, with true; it
// returns the zero vector and false if input is not within either
// tangent triangle. Grounded on the original
// implementation's LimitCone::get_on_great_tangent_triangle.
func (c *LimitCone) GetOnGreatTangentTriangle(next *LimitCone, input math32.Vector3) (math32.Vector3, bool) {

	var c1xc2 math32.Vector3
	c1xc2.CrossVectors(&c.controlPoint, &next.controlPoint)
	c1c2dir := input.Dot(&c1xc2)

	if c1c2dir < 0 {
		var c1xt1, t1xc2 math32.Vector3
		c1xt1.CrossVectors(&c.controlPoint, &c.tangentCenter1)
		t1xc2.CrossVectors(&c.tangentCenter1, &next.controlPoint)
		if input.Dot(&c1xt1) > 0 && input.Dot(&t1xc2) > 0 {
			toNextCos := input.Dot(&c.tangentCenter1)
			if toNextCos > c.tangentRadiusCos {
				var planeNormal math32.Vector3
				planeNormal.CrossVectors(&c.tangentCenter1, &input)
				planeNormal.Normalize()
				var q math32.Quaternion
				q.SetFromAxisAngle(&planeNormal, c.tangentRadius)
				p := c.tangentCenter1
				p.ApplyQuaternion(&q)
				return p, true
			}
			return input, true
		}
		return math32.Vector3{}, false
	}

	var t2xc1, c2xt2 math32.Vector3
	t2xc1.CrossVectors(&c.tangentCenter2, &c.controlPoint)
	c2xt2.CrossVectors(&next.controlPoint, &c.tangentCenter2)
	if input.Dot(&t2xc1) > 0 && input.Dot(&c2xt2) > 0 {
		if input.Dot(&c.tangentCenter2) > c.tangentRadiusCos {
			var planeNormal math32.Vector3
			planeNormal.CrossVectors(&c.tangentCenter2, &input)
			planeNormal.Normalize()
			var q math32.Quaternion
			q.SetFromAxisAngle(&planeNormal, c.tangentRadius)
			p := c.tangentCenter2
			p.ApplyQuaternion(&q)
			return p, true
		}
		return input, true
	}
	return math32.Vector3{}, false
}

// ClosestCone returns whichever of this cone's and next's control point
// is closer to input.
func (c *LimitCone) ClosestCone(next *LimitCone, input math32.Vector3) math32.Vector3 {

	if input.Dot(&c.controlPoint) > input.Dot(&next.controlPoint) {
		return c.controlPoint
	}
	return next.controlPoint
}

// ClosestToCone returns the point on this cone's boundary closest to
// input, and whether input was already inside the cone. Grounded on the
// original implementation's LimitCone::closest_to_cone.
func (c *LimitCone) ClosestToCone(input math32.Vector3) (math32.Vector3, bool) {

	if input.Dot(&c.controlPoint) > c.radiusCosine {
		return input, true
	}

	var axis math32.Vector3
	axis.CrossVectors(&c.controlPoint, &input)
	axis.Normalize()

	var q math32.Quaternion
	q.SetFromAxisAngle(&axis, c.radius)
	p := c.controlPoint
	p.ApplyQuaternion(&q)
	return p, false
}

// ClosestPointOnClosestCone returns the point on whichever of this cone
// and next is closer to input that lies on that cone's boundary.
func (c *LimitCone) ClosestPointOnClosestCone(next *LimitCone, input math32.Vector3) math32.Vector3 {

	closestToFirst, in := c.ClosestToCone(input)
	if in {
		return closestToFirst
	}
	closestToSecond, in := next.ClosestToCone(input)
	if in {
		return closestToSecond
	}

	cosToFirst := input.Dot(&closestToFirst)
	cosToSecond := input.Dot(&closestToSecond)
	if cosToFirst > cosToSecond {
		return closestToFirst
	}
	return closestToSecond
}

// GetClosestCollision returns the point input must be rotated to in
// order to stay within bounds relative to this cone and next: a point
// on the tangent corridor if input is within it, otherwise the closest
// point on whichever cone boundary is nearer.
func (c *LimitCone) GetClosestCollision(next *LimitCone, input math32.Vector3) math32.Vector3 {

	if p, ok := c.GetOnGreatTangentTriangle(next, input); ok {
		return p
	}
	return c.ClosestPointOnClosestCone(next, input)
}

// GetClosestPathPoint returns the nearest in-bounds point to input along
// the path formed by this cone, the tangent corridor, and next.
// Grounded on the original implementation's LimitCone::get_closest_path_point.
func (c *LimitCone) GetClosestPathPoint(next *LimitCone, input math32.Vector3) math32.Vector3 {

	if p, ok := c.getOnPathSequence(next, input); ok {
		return p
	}
	return c.ClosestCone(next, input)
}

// getOnPathSequence projects input onto the plane through the origin
// spanned by this cone's and next's control points, provided input lies
// within the tangent-corridor side being traversed. Grounded on the
// original implementation's LimitCone::get_on_path_sequence.
func (c *LimitCone) getOnPathSequence(next *LimitCone, input math32.Vector3) (math32.Vector3, bool) {

	var c1xc2 math32.Vector3
	c1xc2.CrossVectors(&c.controlPoint, &next.controlPoint)
	c1c2dir := input.Dot(&c1xc2)

	if c1c2dir < 0 {
		var c1xt1, t1xc2 math32.Vector3
		c1xt1.CrossVectors(&c.controlPoint, &c.tangentCenter1)
		t1xc2.CrossVectors(&c.tangentCenter1, &next.controlPoint)
		if input.Dot(&c1xt1) > 0 && input.Dot(&t1xc2) > 0 {
			ray := NewRay3D(c.tangentCenter1, input)
			p := ray.IntersectPlaneThreePoints(math32.Vector3{}, c.controlPoint, next.controlPoint)
			p.Normalize()
			return p, true
		}
		return math32.Vector3{}, false
	}

	var t2xc1, c2xt2 math32.Vector3
	t2xc1.CrossVectors(&c.tangentCenter2, &c.controlPoint)
	c2xt2.CrossVectors(&next.controlPoint, &c.tangentCenter2)
	if input.Dot(&t2xc1) > 0 && input.Dot(&c2xt2) > 0 {
		ray := NewRay3D(c.tangentCenter2, input)
		p := ray.IntersectPlaneThreePoints(math32.Vector3{}, c.controlPoint, next.controlPoint)
		p.Normalize()
		return p, true
	}
	return math32.Vector3{}, false
}
