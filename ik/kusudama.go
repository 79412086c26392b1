package ik

import (
	"github.com/V-Sekai/many-bone-ik-sub000/math32"
)

// Kusudama is a swing-twist joint constraint: an ordered sequence of
// LimitCones connected by tangent-circle corridors restricts swing
// (the bone's heading), and a separate [minAxialAngle, minAxialAngle+range)
// window restricts twist about the heading axis. Grounded on the
// original implementation's IKKusudama, with its cushion/soft-limit
// machinery left out: rectification here is always a hard snap to the
// nearest in-bounds orientation, never a cushioned partial correction
// (see the Open Questions recorded in the repository's design notes).
type Kusudama struct {
	cones []*LimitCone

	minAxialAngle float32
	axialRange    float32

	axiallyConstrained       bool
	orientationallyConstrained bool

	rotationalFreedom float32
}

// NewKusudama creates an empty, fully unconstrained Kusudama.
func NewKusudama() *Kusudama {

	return &Kusudama{
		axiallyConstrained:         false,
		orientationallyConstrained: false,
		axialRange:                 math32.Pi * 2,
	}
}

// AddLimitCone appends a cone centered on direction (in the constraint's
// local frame) with the given angular radius to the end of the sequence.
func (k *Kusudama) AddLimitCone(direction math32.Vector3, radius float32) *LimitCone {

	c := NewLimitCone(direction, radius)
	k.cones = append(k.cones, c)
	return c
}

// Cones returns the ordered limit cone sequence.
func (k *Kusudama) Cones() []*LimitCone {

	return k.cones
}

// SetAxialLimits sets the twist window to [minAngle, minAngle+rangeAngle)
// modulo tau, and enables axial constraint.
func (k *Kusudama) SetAxialLimits(minAngle, rangeAngle float32) {

	k.minAxialAngle = minAngle
	k.axialRange = toTau(rangeAngle)
	k.axiallyConstrained = true
	k.updateConstraint()
}

// MinAxialAngle returns the start of the twist window.
func (k *Kusudama) MinAxialAngle() float32 {

	return k.minAxialAngle
}

// AxialRange returns the width of the twist window.
func (k *Kusudama) AxialRange() float32 {

	return k.axialRange
}

// IsAxiallyConstrained reports whether twist is constrained.
func (k *Kusudama) IsAxiallyConstrained() bool {

	return k.axiallyConstrained
}

// IsOrientationallyConstrained reports whether swing is constrained.
func (k *Kusudama) IsOrientationallyConstrained() bool {

	return k.orientationallyConstrained
}

// UpdateTangentRadii recomputes every cone's tangent circle against its
// successor. Must be called whenever the cone sequence changes.
func (k *Kusudama) UpdateTangentRadii() {

	for i, cone := range k.cones {
		var next *LimitCone
		if i < len(k.cones)-1 {
			next = k.cones[i+1]
		}
		cone.UpdateTangentHandles(next)
	}
}

// UpdateRotationalFreedom recomputes the cached rotational-freedom
// estimate: the fraction of the full orientation space this constraint
// still permits, used as a rough per-bone stiffness/slack heuristic.
// Grounded on the original implementation's IKKusudama::update_rotational_freedom.
func (k *Kusudama) UpdateRotationalFreedom() {

	axialHyperArea := float32(1)
	if k.axiallyConstrained {
		axialHyperArea = k.axialRange / (2 * math32.Pi)
	}

	var coneSurfaceRatio float32
	for _, c := range k.cones {
		coneSurfaceRatio += (c.Radius() * 2) / (2 * math32.Pi)
	}
	if k.orientationallyConstrained {
		if coneSurfaceRatio > 1 {
			coneSurfaceRatio = 1
		}
	} else {
		coneSurfaceRatio = 1
	}
	k.rotationalFreedom = axialHyperArea * coneSurfaceRatio
}

// RotationalFreedom returns the cached value from UpdateRotationalFreedom.
func (k *Kusudama) RotationalFreedom() float32 {

	return k.rotationalFreedom
}

func (k *Kusudama) updateConstraint() {

	k.UpdateTangentRadii()
	k.UpdateRotationalFreedom()
}

// LocalPointInLimits tests whether the local-space direction point lies
// within this Kusudama's swing limits, returning the nearest in-bounds
// point and a signed bound score: positive (specifically 1) means point
// was already in bounds and is returned unchanged, negative means point
// was out of bounds and the returned vector is the nearest admissible
// direction. Grounded on the original implementation's
// IKKusudama::_local_point_in_limits.
func (k *Kusudama) LocalPointInLimits(point math32.Vector3) (math32.Vector3, float32) {

	point.Normalize()

	if len(k.cones) == 0 {
		return point, 1
	}

	closestCos := float32(-2)
	var closest math32.Vector3
	haveClosest := false

	for i, cone := range k.cones {
		var next *LimitCone
		if i < len(k.cones)-1 {
			next = k.cones[i+1]
		}
		if cone.DetermineIfInBounds(next, point) {
			return point, 1
		}
		collision, in := cone.ClosestToCone(point)
		if in {
			return point, 1
		}
		thisCos := collision.Dot(&point)
		if !haveClosest || thisCos > closestCos {
			closest = collision
			closestCos = thisCos
			haveClosest = true
		}
	}

	for i := 0; i < len(k.cones)-1; i++ {
		curr := k.cones[i]
		next := k.cones[i+1]
		collision, ok := curr.GetOnGreatTangentTriangle(next, point)
		if !ok {
			continue
		}
		thisCos := collision.Dot(&point)
		if math32.Abs(thisCos-1) < 1e-6 {
			return point, 1
		}
		if thisCos > closestCos {
			closest = collision
			closestCos = thisCos
		}
	}

	return closest, -1
}

// SetAxesToOrientationSnap rectifies toSet's heading (its local +Y axis)
// against this Kusudama's swing limits, expressed in limitingAxes's
// frame, by rotating toSet's local rotation just enough to bring its
// heading back in bounds. A no-op if the heading is already within
// limits. Grounded on the original implementation's
// IKKusudama::set_axes_to_orientation_snap.
func (k *Kusudama) SetAxesToOrientationSnap(toSet, limitingAxes *Node) {

	boneOrigin := toSet.Global().Origin
	headingWorld := toSet.YAxis()
	var headingPoint math32.Vector3
	headingPoint.AddVectors(&boneOrigin, &headingWorld)

	localHeading := limitingAxes.ToLocal(headingPoint)

	inLimits, bound := k.LocalPointInLimits(localHeading)
	if bound >= 0 {
		return
	}

	constrainedWorld := limitingAxes.ToGlobal(inLimits)

	var boneHeading, constrainedHeading math32.Vector3
	boneHeading.SubVectors(&headingPoint, &boneOrigin)
	constrainedHeading.SubVectors(&constrainedWorld, &boneOrigin)
	boneHeading.Normalize()
	constrainedHeading.Normalize()

	var rectify math32.Quaternion
	rectify.SetFromUnitVectors(&boneHeading, &constrainedHeading)
	toSet.RotateLocalWithGlobal(rectify)
}

// SwingTwist decomposes rotation into a swing (rotation that takes axis
// to its rotated image) and a twist about axis, such that
// rotation == swing * twist (MultiplyQuaternions convention: result =
// a*b applied as a then b as a whole reads right-to-left as usual
// quaternion composition). axis must be a unit vector.
//
// The original implementation's get_swing_twist builds the twist term
// by projecting rotation's vector part onto axis, but then computes
// swing as twist composed with its own conjugate, which collapses to
// the identity quaternion for any unit twist — clearly not the intended
// decomposition. This reimplements the standard projection-based
// swing-twist split: twist is built from axis scaled by the same
// projection, and swing is recovered as rotation * inverse(twist).
func SwingTwist(rotation math32.Quaternion, axis math32.Vector3) (swing, twist math32.Quaternion) {

	rotAxis := math32.Vector3{X: rotation.X, Y: rotation.Y, Z: rotation.Z}
	d := rotAxis.Dot(&axis)

	twist.Set(axis.X*d, axis.Y*d, axis.Z*d, rotation.W)
	twist.Normalize()
	if d < 0 {
		twist.X, twist.Y, twist.Z, twist.W = -twist.X, -twist.Y, -twist.Z, -twist.W
	}

	var invTwist math32.Quaternion
	invTwist.Copy(&twist).Inverse()
	swing.MultiplyQuaternions(&rotation, &invTwist)
	return swing, twist
}

// SetSnapToTwistLimit rectifies toSet's twist (its rotation about
// limitingAxes's local +Y) back within this Kusudama's axial window, if
// it currently falls outside it. Grounded on the original
// implementation's IKKusudama::set_snap_to_twist_limit.
func (k *Kusudama) SetSnapToTwistLimit(toSet, limitingAxes *Node) {

	if !k.axiallyConstrained {
		return
	}

	limitRot := limitingAxes.Global().Rotation
	var invLimitRot math32.Quaternion
	invLimitRot.Copy(&limitRot).Inverse()

	setRot := toSet.Global().Rotation
	var alignRot math32.Quaternion
	alignRot.MultiplyQuaternions(&invLimitRot, &setRot)

	yAxis := math32.NewVector3(0, 1, 0)
	_, twist := SwingTwist(alignRot, *yAxis)

	axis, angle := quaternionToAxisAngle(twist)
	angleDelta := toTau(angle * axis.Y * -1)

	tau := float32(2 * math32.Pi)
	fromMinToAngle := toTau(signedAngleDifference(angleDelta, tau-k.minAxialAngle))
	if !(fromMinToAngle < tau-k.axialRange) {
		return
	}

	distToMin := math32.Abs(signedAngleDifference(angleDelta, tau-k.minAxialAngle))
	distToMax := math32.Abs(signedAngleDifference(angleDelta, tau-(k.minAxialAngle+k.axialRange)))

	turnDiff := float32(1)
	if distToMin < distToMax {
		turnDiff *= fromMinToAngle
	} else {
		turnDiff *= k.axialRange - (tau - fromMinToAngle)
	}

	setYAxis := toSet.YAxis()
	setYAxis.Normalize()
	var rot math32.Quaternion
	rot.SetFromAxisAngle(&setYAxis, turnDiff)
	rot.Normalize()
	toSet.RotateLocalWithGlobal(rot)
}

// toTau folds angle (radians) into [0, 2*pi).
func toTau(angle float32) float32 {

	result := angle
	if angle < 0 {
		result = 2*math32.Pi + angle
	}
	return math32.Mod(result, 2*math32.Pi)
}

// signedAngleDifference returns the signed shortest angular distance
// from super to minAngle, in (-pi, pi].
func signedAngleDifference(minAngle, super float32) float32 {

	d := math32.Mod(math32.Abs(minAngle-super), 2*math32.Pi)
	r := d
	if d > math32.Pi {
		r = 2*math32.Pi - d
	}
	diff := minAngle - super
	sign := float32(-1)
	if (diff >= 0 && diff <= math32.Pi) || (diff <= -math32.Pi && diff >= -2*math32.Pi) {
		sign = 1
	}
	return r * sign
}

// quaternionToAxisAngle extracts an axis and angle (radians) from a unit
// quaternion.
func quaternionToAxisAngle(q math32.Quaternion) (math32.Vector3, float32) {

	if q.W > 1 {
		q.Normalize()
	}
	angle := 2 * math32.Acos(q.W)
	s := math32.Sqrt(1 - q.W*q.W)
	if s < 1e-6 {
		return math32.Vector3{X: 1, Y: 0, Z: 0}, angle
	}
	return math32.Vector3{X: q.X / s, Y: q.Y / s, Z: q.Z / s}, angle
}
