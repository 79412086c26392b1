package ik

import (
	"github.com/V-Sekai/many-bone-ik-sub000/math32"
)

// Bone is one link of the shadow skeleton: its own dirty-flag-propagating
// transform (the skeleton-aligned pose), a separate bone-direction
// transform used to orient constraint cones consistently even when the
// skeleton-aligned pose doesn't point down the bone, an optional
// Kusudama swing-twist constraint, and an optional pinned IKEffector.
// Grounded on the original implementation's IKBone3D.
type Bone struct {
	name   string
	parent *Bone
	children []*Bone

	transform          *Node // skeleton-aligned pose, parented to parent.transform
	boneDirection      *Node // points from this bone's origin toward its average child, parented to transform
	constraintTransform *Node // frame constraints are expressed in, parented like transform

	constraint *Kusudama
	pin        *Effector

	defaultDampening float32
	stiffness        float32 // [0,1]; effective clamp = dampening*(1-stiffness)
}

// NewBone creates a bone named name with the given default damping
// angle (radians), parented to parent (nil for a root).
func NewBone(name string, parent *Bone, defaultDampening float32) *Bone {

	b := &Bone{
		name:             name,
		defaultDampening: defaultDampening,
	}
	b.transform = NewNode(name)
	b.boneDirection = NewNode(name + ".direction")
	b.constraintTransform = NewNode(name + ".constraint")
	b.boneDirection.SetParent(b.transform)

	if parent != nil {
		b.SetParent(parent)
	}
	return b
}

// Name returns this bone's name.
func (b *Bone) Name() string {

	return b.name
}

// SetParent attaches this bone under parent, parenting its transforms
// to match. Grounded on the original implementation's IKBone3D::set_parent.
func (b *Bone) SetParent(parent *Bone) {

	b.parent = parent
	parent.children = append(parent.children, b)
	b.transform.SetParent(parent.transform)
	b.constraintTransform.SetParent(parent.transform)
}

// Parent returns this bone's parent, or nil if it is the chain root.
func (b *Bone) Parent() *Bone {

	return b.parent
}

// Children returns this bone's direct children.
func (b *Bone) Children() []*Bone {

	return b.children
}

// Transform returns this bone's skeleton-aligned pose node.
func (b *Bone) Transform() *Node {

	return b.transform
}

// BoneDirectionTransform returns the node whose local +Y points from
// this bone's origin toward its average child (or a fallback direction
// for a childless bone).
func (b *Bone) BoneDirectionTransform() *Node {

	return b.boneDirection
}

// ConstraintTransform returns the frame this bone's Kusudama constraint
// (if any) is expressed in.
func (b *Bone) ConstraintTransform() *Node {

	return b.constraintTransform
}

// Constraint returns this bone's swing-twist constraint, or nil.
func (b *Bone) Constraint() *Kusudama {

	return b.constraint
}

// AddConstraint attaches a Kusudama constraint to this bone.
func (b *Bone) AddConstraint(k *Kusudama) {

	b.constraint = k
}

// Pin returns this bone's pinned effector, or nil.
func (b *Bone) Pin() *Effector {

	return b.pin
}

// IsPinned reports whether this bone has a pinned effector.
func (b *Bone) IsPinned() bool {

	return b.pin != nil
}

// CreatePin attaches a new Effector, with weight 1, to this bone.
func (b *Bone) CreatePin() *Effector {

	b.pin = NewEffector(b)
	return b.pin
}

// CosHalfDampen returns the half-angle damping clamp used by this bone's
// per-iteration rotation clamp, adjusted by its stiffness: a stiffer
// bone (closer to 1) rotates less per iteration than its configured
// damping alone would allow.
func (b *Bone) CosHalfDampen() float32 {

	effective := b.defaultDampening * (1 - b.stiffness)
	return math32.Cos(effective / 2)
}

// DefaultDampening returns this bone's configured per-iteration damping
// angle (radians) before the stiffness adjustment.
func (b *Bone) DefaultDampening() float32 {

	return b.defaultDampening
}

// SetDefaultDampening sets this bone's per-iteration damping angle.
func (b *Bone) SetDefaultDampening(d float32) {

	b.defaultDampening = d
}

// Stiffness returns this bone's stiffness in [0,1].
func (b *Bone) Stiffness() float32 {

	return b.stiffness
}

// SetStiffness sets this bone's stiffness, clamped to [0,1].
func (b *Bone) SetStiffness(s float32) {

	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	b.stiffness = s
}

// SetPose sets this bone's local skeleton-aligned transform.
func (b *Bone) SetPose(t Transform) {

	b.transform.SetLocal(t)
}

// GetPose returns this bone's local skeleton-aligned transform.
func (b *Bone) GetPose() Transform {

	return b.transform.Local()
}

// SetGlobalPose sets this bone's world-space skeleton-aligned
// transform, keeping the constraint transform's origin in sync with it
// (the constraint frame tracks the bone's position but keeps its own
// orientation). Grounded on the original implementation's
// IKBone3D::set_global_pose.
func (b *Bone) SetGlobalPose(t Transform) {

	b.transform.SetGlobal(t)
	local := b.constraintTransform.Local()
	local.Origin = b.transform.Local().Origin
	b.constraintTransform.SetLocal(local)
}

// GetGlobalPose returns this bone's world-space skeleton-aligned
// transform.
func (b *Bone) GetGlobalPose() Transform {

	return b.transform.Global()
}

// SetInitialPose copies provider's current local bone pose into this
// bone's transform, establishing the shadow skeleton's starting state
// for a solve.
func (b *Bone) SetInitialPose(provider SkeletonProvider) {

	t, ok := provider.BonePose(b.name)
	if !ok {
		return
	}
	b.SetPose(t)
}

// SetSkeletonBonePose writes this bone's current local pose back to
// provider as a full-strength, non-persistent override, completing the
// shadow-skeleton round trip.
func (b *Bone) SetSkeletonBonePose(provider SkeletonProvider) {

	provider.SetBonePose(b.name, b.GetPose(), 1, false)
}

// UpdateDefaultBoneDirection recomputes boneDirection's orientation so
// its local +Y points toward the centroid of this bone's children (or,
// for a childless bone, falls back first to the parent's bone-direction
// heading and then to the parent's aligned +Y). Grounded on the
// original implementation's IKBone3D::update_default_bone_direction_transform.
func (b *Bone) UpdateDefaultBoneDirection() {

	var childCentroid math32.Vector3
	n := 0
	for _, c := range b.children {
		childCentroid.Add(ptr(c.transform.Global().Origin))
		n++
	}
	boneOrigin := b.transform.Global().Origin
	if n > 0 {
		childCentroid.MultiplyScalar(1 / float32(n))
		childCentroid.Sub(&boneOrigin)
	}

	if n == 0 || childCentroid.LengthSq() < 1e-12 {
		if b.parent == nil {
			return
		}
		fallback := b.parent.boneDirection.YAxis()
		if fallback.LengthSq() < 1e-12 {
			fallback = b.parent.transform.YAxis()
		}
		childCentroid = fallback
	}

	if childCentroid.LengthSq() < 1e-12 {
		return
	}
	childCentroid.Normalize()

	boneDirection := b.boneDirection.YAxis()
	boneDirection.Normalize()

	var q math32.Quaternion
	q.SetFromUnitVectors(&boneDirection, &childCentroid)
	b.boneDirection.RotateLocalWithGlobal(q)
}

func ptr(v math32.Vector3) *math32.Vector3 {

	return &v
}

// UpdateDefaultConstraintTransform aligns this bone's constraint frame
// with its parent's bone-direction frame, recentered at this bone's
// origin. Grounded on the original implementation's
// IKBone3D::update_default_constraint_transform.
func (b *Bone) UpdateDefaultConstraintTransform() {

	if b.parent == nil {
		return
	}
	parentDir := b.parent.boneDirection.Global()
	parentDir.Origin = b.boneDirection.Global().Origin
	b.constraintTransform.SetGlobal(parentDir)
}
