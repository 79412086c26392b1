package ik

import (
	"testing"

	"github.com/V-Sekai/many-bone-ik-sub000/math32"
	"github.com/stretchr/testify/assert"
)

func TestNodeGlobalIdentityChain(t *testing.T) {

	root := NewNode("root")
	child := NewNode("child")
	child.SetParent(root)

	local := NewTransform()
	local.Origin = math32.Vector3{X: 1, Y: 0, Z: 0}
	child.SetLocal(local)

	g := child.Global()
	assert.InDelta(t, 1, g.Origin.X, 1e-6)
	assert.InDelta(t, 0, g.Origin.Y, 1e-6)
	assert.InDelta(t, 0, g.Origin.Z, 1e-6)
}

func TestNodeGlobalComposesThroughParent(t *testing.T) {

	root := NewNode("root")
	rootLocal := NewTransform()
	rootLocal.Origin = math32.Vector3{X: 5, Y: 0, Z: 0}
	root.SetLocal(rootLocal)

	child := NewNode("child")
	child.SetParent(root)
	childLocal := NewTransform()
	childLocal.Origin = math32.Vector3{X: 0, Y: 2, Z: 0}
	child.SetLocal(childLocal)

	g := child.Global()
	assert.InDelta(t, 5, g.Origin.X, 1e-6)
	assert.InDelta(t, 2, g.Origin.Y, 1e-6)
}

func TestNodeSetLocalDirtiesDescendants(t *testing.T) {

	root := NewNode("root")
	child := NewNode("child")
	grandchild := NewNode("grandchild")
	child.SetParent(root)
	grandchild.SetParent(child)

	_ = grandchild.Global() // force a clean cache
	assert.False(t, grandchild.globalDirty)

	moved := NewTransform()
	moved.Origin = math32.Vector3{X: 3, Y: 0, Z: 0}
	root.SetLocal(moved)

	assert.True(t, grandchild.globalDirty)
	g := grandchild.Global()
	assert.InDelta(t, 3, g.Origin.X, 1e-6)
}

func TestNodeSetGlobalRoundTrips(t *testing.T) {

	root := NewNode("root")
	rootLocal := NewTransform()
	rootLocal.Origin = math32.Vector3{X: 1, Y: 1, Z: 1}
	root.SetLocal(rootLocal)

	child := NewNode("child")
	child.SetParent(root)

	want := NewTransform()
	want.Origin = math32.Vector3{X: 4, Y: 5, Z: 6}
	child.SetGlobal(want)

	got := child.Global()
	assert.InDelta(t, want.Origin.X, got.Origin.X, 1e-5)
	assert.InDelta(t, want.Origin.Y, got.Origin.Y, 1e-5)
	assert.InDelta(t, want.Origin.Z, got.Origin.Z, 1e-5)
}

func TestNodeToLocalToGlobalInverse(t *testing.T) {

	n := NewNode("n")
	local := NewTransform()
	local.Origin = math32.Vector3{X: 2, Y: 3, Z: 4}
	n.SetLocal(local)

	p := math32.Vector3{X: 1, Y: 1, Z: 1}
	world := n.ToGlobal(p)
	back := n.ToLocal(world)

	assert.InDelta(t, p.X, back.X, 1e-5)
	assert.InDelta(t, p.Y, back.Y, 1e-5)
	assert.InDelta(t, p.Z, back.Z, 1e-5)
}

func TestNodeRotateLocalWithGlobalNoParent(t *testing.T) {

	n := NewNode("n")
	q := math32.NewQuaternion(0, 0, 0, 1)
	q.SetFromAxisAngle(math32.NewVector3(0, 1, 0), math32.Pi/2)

	n.RotateLocalWithGlobal(*q)

	got := n.Local().Rotation
	assert.InDelta(t, 1, got.Length(), 1e-5)
}
