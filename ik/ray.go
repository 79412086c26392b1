package ik

import (
	"github.com/V-Sekai/many-bone-ik-sub000/math32"
)

// Ray3D extends math32.Ray with the handful of operations the cone
// tangent-circle construction needs beyond the generic ray/plane/sphere
// primitives: a normalized direction accessor, an elongated-endpoint helper, and
// a closest-point helper that also reports the parameter along the ray.
// Grounded on the original implementation's ray_3d helper alongside
// math32's generic Ray.
type Ray3D struct {
	math32.Ray
}

// NewRay3D creates a ray from p1 toward p2.
func NewRay3D(p1, p2 math32.Vector3) *Ray3D {

	dir := p2
	dir.Sub(&p1)
	dir.Normalize()
	r := &Ray3D{}
	r.Set(&p1, &dir)
	return r
}

// Heading returns the direction from the ray's point 0 to its point 1,
// i.e. its normalized direction vector.
func (r *Ray3D) Heading() math32.Vector3 {

	return r.Direction()
}

// SetHeading reorients this ray so that its direction equals h (h need
// not be normalized).
func (r *Ray3D) SetHeading(h math32.Vector3) {

	d := h
	d.Normalize()
	o := r.Origin()
	r.Set(&o, &d)
}

// Elongate returns the point amt units beyond point 1 along this ray's
// heading (at parameter 1+amt). The ray itself is not modified.
func (r *Ray3D) Elongate(amt float32) math32.Vector3 {

	return *r.At(1+amt, nil)
}

// P1 returns the ray's conventional "point 1", one unit of direction
// from the origin — the construction used throughout the Kusudama cone
// geometry, which treats rays as finite two-point segments rather than
// infinite half-lines.
func (r *Ray3D) P1() math32.Vector3 {

	return *r.At(1, nil)
}

// ClosestPointT returns the ray parameter t at which the ray is closest
// to point, along with the closest point itself.
func (r *Ray3D) ClosestPointT(point math32.Vector3) (float32, math32.Vector3) {

	o := r.Origin()
	d := r.Direction()
	var toPoint math32.Vector3
	toPoint.SubVectors(&point, &o)
	t := toPoint.Dot(&d)
	closest := *r.At(t, nil)
	return t, closest
}

// IntersectPlaneThreePoints returns this ray's intersection with the
// plane defined by three coplanar points ta, tb, tc. Grounded on the
// original implementation's Ray3D::intersectsPlane (triangle-defined
// plane rather than normal+constant) used throughout the tangent-circle
// construction.
func (r *Ray3D) IntersectPlaneThreePoints(ta, tb, tc math32.Vector3) math32.Vector3 {

	var plane math32.Plane
	plane.SetFromCoplanarPoints(&ta, &tb, &tc)
	p := r.IntersectPlane(&plane, nil)
	if p == nil {
		return math32.Vector3{X: math32.NaN(), Y: math32.NaN(), Z: math32.NaN()}
	}
	return *p
}

// IntersectsSphereBoth returns both intersection points of this ray's
// infinite line with the sphere of the given center and radius, along
// with how many of them lie at or ahead of the origin (0, 1 or 2). When
// the line meets the sphere both points are always filled in, even if
// the count is 0 or 1; with a count of 1 the first point is the one
// ahead of the origin. When the line misses the sphere the count is 0
// and both points are zero vectors. Grounded on the original
// implementation's Ray3D::intersectsSphere, which — unlike
// math32.Ray.IntersectSphere — treats the ray as a full line, a property
// the cone tangent-circle construction relies on.
func (r *Ray3D) IntersectsSphereBoth(center math32.Vector3, radius float32) (int, math32.Vector3, math32.Vector3) {

	p1 := r.Origin()
	p2 := r.P1()
	direction := p2
	direction.Sub(&p1)
	e := direction
	e.Normalize()

	var h math32.Vector3
	h.SubVectors(&center, &p1)

	lf := e.Dot(&h)
	radpow := radius * radius
	hdh := h.LengthSq()
	lfpow := lf * lf
	s := radpow - hdh + lfpow
	if s < 0 {
		return 0, math32.Vector3{}, math32.Vector3{}
	}
	s = math32.Sqrt(s)

	result := 2
	if lf < s {
		if lf+s >= 0 {
			s = -s
			result = 1
		} else {
			result = 0
		}
	}

	var s1, s2 math32.Vector3
	s1.Copy(&e).MultiplyScalar(lf - s).Add(&p1)
	s2.Copy(&e).MultiplyScalar(lf + s).Add(&p1)
	return result, s1, s2
}
