package ik

import (
	"testing"

	"github.com/V-Sekai/many-bone-ik-sub000/math32"
	"github.com/stretchr/testify/assert"
)

func TestNewBoneWithoutParentIsRoot(t *testing.T) {

	b := NewBone("root", nil, 0.2)
	assert.Nil(t, b.Parent())
	assert.Empty(t, b.Children())
}

func TestBoneSetParentLinksBothWays(t *testing.T) {

	parent := NewBone("parent", nil, 0.2)
	child := NewBone("child", parent, 0.2)

	assert.Same(t, parent, child.Parent())
	assert.Contains(t, parent.Children(), child)
}

func TestBoneCreatePinMarksPinned(t *testing.T) {

	b := NewBone("b", nil, 0.2)
	assert.False(t, b.IsPinned())
	pin := b.CreatePin()
	assert.True(t, b.IsPinned())
	assert.Same(t, pin, b.Pin())
}

func TestBoneStiffnessClampsToUnitRange(t *testing.T) {

	b := NewBone("b", nil, 0.2)
	b.SetStiffness(-1)
	assert.Equal(t, float32(0), b.Stiffness())
	b.SetStiffness(2)
	assert.Equal(t, float32(1), b.Stiffness())
}

func TestBoneCosHalfDampenReflectsStiffness(t *testing.T) {

	b := NewBone("b", nil, 1.0)
	unstiffened := b.CosHalfDampen()
	b.SetStiffness(1)
	stiffened := b.CosHalfDampen()
	// Fully stiff means the effective clamp angle is 0, so cos(half) -> 1.
	assert.InDelta(t, 1, stiffened, 1e-5)
	assert.Less(t, unstiffened, stiffened)
}

func TestBoneSetPoseGetPoseRoundTrips(t *testing.T) {

	b := NewBone("b", nil, 0.2)
	pose := NewTransform()
	pose.Origin = math32.Vector3{X: 1, Y: 2, Z: 3}
	b.SetPose(pose)

	got := b.GetPose()
	assert.InDelta(t, 1, got.Origin.X, 1e-6)
	assert.InDelta(t, 2, got.Origin.Y, 1e-6)
	assert.InDelta(t, 3, got.Origin.Z, 1e-6)
}

func TestBoneUpdateDefaultBoneDirectionTowardChildCentroid(t *testing.T) {

	root := NewBone("root", nil, 0.2)
	rootPose := NewTransform()
	root.SetPose(rootPose)

	child := NewBone("child", root, 0.2)
	childPose := NewTransform()
	childPose.Origin = math32.Vector3{X: 0, Y: -1, Z: 0}
	child.SetGlobalPose(childPose)

	root.UpdateDefaultBoneDirection()

	heading := root.BoneDirectionTransform().YAxis()
	assert.Less(t, heading.Y, float32(0))
}

func TestBoneUpdateDefaultBoneDirectionFallsBackWhenChildless(t *testing.T) {

	root := NewBone("root", nil, 0.2)
	leaf := NewBone("leaf", root, 0.2)

	root.UpdateDefaultBoneDirection()
	leaf.UpdateDefaultBoneDirection()

	// A childless bone falls back to a continuation of its parent's
	// bone direction (or the parent's own +Y if the parent has none),
	// so its direction transform's heading stays a well-formed unit axis.
	heading := leaf.BoneDirectionTransform().YAxis()
	assert.InDelta(t, 1, heading.Length(), 1e-5)
}

type fakeSkeleton struct {
	pose map[string]Transform
	set  map[string]Transform
}

func newFakeSkeleton() *fakeSkeleton {

	return &fakeSkeleton{pose: make(map[string]Transform), set: make(map[string]Transform)}
}

func (f *fakeSkeleton) BoneNames() []string                { return nil }
func (f *fakeSkeleton) ParentName(string) (string, bool)   { return "", false }
func (f *fakeSkeleton) RestLocalPose(n string) (Transform, bool) {
	t, ok := f.pose[n]
	return t, ok
}
func (f *fakeSkeleton) BonePose(n string) (Transform, bool) {
	t, ok := f.pose[n]
	return t, ok
}
func (f *fakeSkeleton) SetBonePose(n string, t Transform, strength float32, persistent bool) {
	f.set[n] = t
}
func (f *fakeSkeleton) GlobalTransform() Transform { return NewTransform() }

func TestBoneSetInitialPoseReadsFromProvider(t *testing.T) {

	sk := newFakeSkeleton()
	pose := NewTransform()
	pose.Origin = math32.Vector3{X: 9, Y: 0, Z: 0}
	sk.pose["b"] = pose

	b := NewBone("b", nil, 0.2)
	b.SetInitialPose(sk)

	assert.InDelta(t, 9, b.GetPose().Origin.X, 1e-6)
}

func TestBoneSetSkeletonBonePoseWritesFullStrength(t *testing.T) {

	sk := newFakeSkeleton()
	b := NewBone("b", nil, 0.2)
	pose := NewTransform()
	pose.Origin = math32.Vector3{X: 4, Y: 0, Z: 0}
	b.SetPose(pose)

	b.SetSkeletonBonePose(sk)

	written := sk.set["b"]
	assert.InDelta(t, 4, written.Origin.X, 1e-6)
}
