package ik

import "github.com/V-Sekai/many-bone-ik-sub000/math32"

// Effector pins a bone to a moving target: the solver tries to bring
// the bone's tip (and, depending on DirectionPriorities, its local
// axes) into alignment with the target's world transform. Grounded on
// the original implementation's IKEffector3D.
type Effector struct {
	bone *Bone

	targetHandle    TargetHandle
	useNodeRotation bool

	targetTransform Transform
	weight          float32
	priority        math32.Vector3 // per-axis >0 enables that axis's two heading points
	depthFalloff    float32        // scales the weights of pins below this bone when gathered into this pin's segment; ~0: left out, 1: full weight
}

// NewEffector creates a weight-1 effector pinning bone, with the
// default direction priority (X and Z axes tracked, Y not) carried over
// from the original implementation.
func NewEffector(bone *Bone) *Effector {

	return &Effector{
		bone:            bone,
		weight:          1,
		priority:        math32.Vector3{X: 1, Y: 0, Z: 1},
		useNodeRotation: true,
	}
}

// SetTargetHandle sets the opaque host handle this pin's target
// resolves through.
func (e *Effector) SetTargetHandle(h TargetHandle) {

	e.targetHandle = h
}

// TargetHandle returns this pin's target handle.
func (e *Effector) TargetHandle() TargetHandle {

	return e.targetHandle
}

// SetUseNodeRotation sets whether this pin's target axis directions
// participate in the alignment. When false, only the target's origin
// is used and direction priorities are ignored regardless of how they
// are set.
func (e *Effector) SetUseNodeRotation(use bool) {

	e.useNodeRotation = use
}

// UseNodeRotation reports whether this pin's target rotation is used.
func (e *Effector) UseNodeRotation() bool {

	return e.useNodeRotation
}

// effectivePriority returns DirectionPriorities, or the zero vector if
// UseNodeRotation is false.
func (e *Effector) effectivePriority() math32.Vector3 {

	if !e.useNodeRotation {
		return math32.Vector3{}
	}
	return e.priority
}

// Bone returns the bone this effector pins.
func (e *Effector) Bone() *Bone {

	return e.bone
}

// SetTargetTransform sets the world-space transform this effector
// pulls its bone toward.
func (e *Effector) SetTargetTransform(t Transform) {

	e.targetTransform = t
}

// TargetTransform returns this effector's current target transform.
func (e *Effector) TargetTransform() Transform {

	return e.targetTransform
}

// SetWeight sets this pin's overall influence on the solve.
func (e *Effector) SetWeight(w float32) {

	e.weight = w
}

// Weight returns this pin's overall influence on the solve.
func (e *Effector) Weight() float32 {

	return e.weight
}

// SetDirectionPriorities sets, per axis, whether that axis's heading is
// included in the alignment (not merely the tip position). A value >0
// on an axis enables it.
func (e *Effector) SetDirectionPriorities(x, y, z float32) {

	e.priority.X, e.priority.Y, e.priority.Z = x, y, z
}

// DirectionPriorities returns the per-axis priority vector set by
// SetDirectionPriorities.
func (e *Effector) DirectionPriorities() math32.Vector3 {

	return e.priority
}

// SetDepthFalloff sets the factor, clamped to [0,1], by which the
// weights of pins in segments below this pinned bone are scaled when
// they are gathered into this pin's segment (0: they are left out,
// 1: full weight). This pin's own weight is not scaled by it.
func (e *Effector) SetDepthFalloff(d float32) {

	if d < 0 {
		d = 0
	}
	if d > 1 {
		d = 1
	}
	e.depthFalloff = d
}

// DepthFalloff returns this pin's depth falloff.
func (e *Effector) DepthFalloff() float32 {

	return e.depthFalloff
}

// HeadingCount returns how many heading points this effector
// contributes to a segment's heading arrays: one for the tip/target
// origin, plus two per enabled priority axis.
func (e *Effector) HeadingCount() int {

	p := e.effectivePriority()
	n := 1
	if p.X > 0 {
		n += 2
	}
	if p.Y > 0 {
		n += 2
	}
	if p.Z > 0 {
		n += 2
	}
	return n
}

// UpdateTargetHeadings appends this effector's target headings (world
// offsets from forBone's origin to the target's origin and, per enabled
// priority axis, to points one unit along and against that axis) to
// headings starting at index. The origin heading is not scaled; both
// headings of an axis are multiplied by max(weights[i], 1), where i is
// the index of that axis's "along" heading. Returns the
// next free index. Grounded on the
// original implementation's IKEffector3D::update_effector_target_headings.
func (e *Effector) UpdateTargetHeadings(headings []math32.Vector3, index int, forBone *Bone, weights []float32) int {

	boneOrigin := forBone.GetGlobalPose().Origin
	targetOrigin := e.targetTransform.Origin

	var toTarget math32.Vector3
	toTarget.SubVectors(&targetOrigin, &boneOrigin)
	headings[index] = toTarget
	index++

	appendAxis := func(axis math32.Vector3) {
		w := weights[index]
		if w < 1 {
			w = 1
		}
		worldAxis := axis
		worldAxis.ApplyQuaternion(&e.targetTransform.Rotation)

		var plus math32.Vector3
		plus.AddVectors(&worldAxis, &targetOrigin)
		plus.Sub(&boneOrigin)
		plus.MultiplyScalar(w)
		headings[index] = plus
		index++

		var minus math32.Vector3
		minus.SubVectors(&targetOrigin, &worldAxis)
		minus.Sub(&boneOrigin)
		minus.MultiplyScalar(w)
		headings[index] = minus
		index++
	}

	p := e.effectivePriority()
	if p.X > 0 {
		appendAxis(math32.Vector3{X: 1})
	}
	if p.Y > 0 {
		appendAxis(math32.Vector3{Y: 1})
	}
	if p.Z > 0 {
		appendAxis(math32.Vector3{Z: 1})
	}
	return index
}

// UpdateTipHeadings appends this effector's current tip headings (the
// bone's own origin and, per enabled priority axis, points one
// (distance-scaled) unit along and against that axis) to headings
// starting at index. Returns the next free index. Grounded on the
// original implementation's IKEffector3D::update_effector_tip_headings.
func (e *Effector) UpdateTipHeadings(headings []math32.Vector3, index int, forBone *Bone) int {

	tip := e.bone.GetGlobalPose()
	boneOrigin := forBone.GetGlobalPose().Origin

	var toTip math32.Vector3
	toTip.SubVectors(&tip.Origin, &boneOrigin)
	headings[index] = toTip
	index++

	var diff math32.Vector3
	diff.SubVectors(&e.targetTransform.Origin, &boneOrigin)
	distance := diff.Length()
	scaleBy := float32(1)
	if distance > 1 {
		scaleBy = distance
	}

	appendAxis := func(axis math32.Vector3) {
		worldAxis := axis
		worldAxis.ApplyQuaternion(&tip.Rotation)

		var plus math32.Vector3
		plus.Copy(&worldAxis).MultiplyScalar(scaleBy).Add(&tip.Origin)
		plus.Sub(&boneOrigin)
		headings[index] = plus
		index++

		var minus math32.Vector3
		minus.Copy(&worldAxis).MultiplyScalar(-scaleBy)
		minus.Add(&tip.Origin)
		minus.Sub(&boneOrigin)
		headings[index] = minus
		index++
	}

	p := e.effectivePriority()
	if p.X > 0 {
		appendAxis(math32.Vector3{X: 1})
	}
	if p.Y > 0 {
		appendAxis(math32.Vector3{Y: 1})
	}
	if p.Z > 0 {
		appendAxis(math32.Vector3{Z: 1})
	}
	return index
}
