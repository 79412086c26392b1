// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ik

import (
	"github.com/V-Sekai/many-bone-ik-sub000/math32"
)

// Transform is a rigid transform: a rotation
// quaternion and an origin vector. It is the value type exchanged at
// Node's public boundary; internally a Node composes transforms through
// a math32.Matrix4 the same way core.Node does.
type Transform struct {
	Rotation math32.Quaternion
	Origin   math32.Vector3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {

	var t Transform
	t.Rotation.SetIdentity()
	return t
}

// Compose folds rotation and translation into a 4x4 matrix.
func (t *Transform) Compose() *math32.Matrix4 {

	m := math32.NewMatrix4()
	one := math32.NewVector3(1, 1, 1)
	m.Compose(&t.Origin, &t.Rotation, one)
	return m
}

// DecomposeMatrix extracts a Transform's rotation and origin from m,
// discarding any scale component.
func DecomposeMatrix(m *math32.Matrix4) Transform {

	var t Transform
	var scale math32.Vector3
	m.Decompose(&t.Origin, &t.Rotation, &scale)
	return t
}

// Node is a member of the shadow skeleton's transform tree. It mirrors
// core.Node's dirty-flag-propagating design (lazy matrix rebuild guarded
// by matNeedsUpdate/rotNeedsUpdate) but generalizes it with an explicit
// global dirty flag: core.Node's UpdateMatrixWorld always walks and
// recomputes the whole subtree unconditionally, which is wasteful and
// order-sensitive for a solver that repeatedly nudges single bones deep
// in the chain. Node instead marks every descendant's world transform
// dirty on SetLocal and recomputes Global lazily, composing up through
// parents only as far as still-valid ancestors.
type Node struct {
	name     string
	parent   *Node
	children []*Node

	local  Transform
	global Transform

	localDirty  bool // local needs recompose from local.Rotation/Origin (always consistent; kept for symmetry with core.Node)
	globalDirty bool // global is stale and must be recomputed from parent.Global() * local
}

// NewNode creates a Node at the identity transform with no parent.
func NewNode(name string) *Node {

	n := new(Node)
	n.name = name
	n.local = NewTransform()
	n.global = NewTransform()
	return n
}

// Name returns this node's name.
func (n *Node) Name() string {

	return n.name
}

// SetParent attaches this node as a child of p, detaching it from any
// previous parent. Passing nil detaches the node into a new root.
func (n *Node) SetParent(p *Node) {

	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = p
	if p != nil {
		p.children = append(p.children, n)
	}
	n.markGlobalDirty()
}

// Parent returns this node's parent, or nil if it is a root.
func (n *Node) Parent() *Node {

	return n.parent
}

// Children returns this node's direct children.
func (n *Node) Children() []*Node {

	return n.children
}

func (n *Node) removeChild(c *Node) {

	for i, ch := range n.children {
		if ch == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// SetLocal sets this node's local transform and marks this node's and
// every descendant's global transform dirty, per the invariant that a
// local change must invalidate every cached global pose downstream of
// it.
func (n *Node) SetLocal(t Transform) {

	n.local = t
	n.markGlobalDirty()
}

// Local returns this node's local transform (relative to its parent).
func (n *Node) Local() Transform {

	return n.local
}

// markGlobalDirty marks this node and all of its descendants' global
// transform as stale. Descendants are always dirty whenever an ancestor
// changes, so once a node is found already dirty the recursion can stop:
// everything under it is already marked.
func (n *Node) markGlobalDirty() {

	if n.globalDirty {
		return
	}
	n.globalDirty = true
	for _, c := range n.children {
		c.markGlobalDirty()
	}
}

// Global returns this node's transform in world space, recomputing it
// (and, transitively, any stale ancestors) only if it is currently
// dirty.
func (n *Node) Global() Transform {

	if !n.globalDirty {
		return n.global
	}
	if n.parent == nil {
		n.global = n.local
	} else {
		parentGlobal := n.parent.Global()
		pm := parentGlobal.Compose()
		lm := n.local.Compose()
		var world math32.Matrix4
		world.MultiplyMatrices(pm, lm)
		n.global = DecomposeMatrix(&world)
	}
	n.globalDirty = false
	return n.global
}

// SetGlobal sets this node's transform in world space, converting it to
// an equivalent local transform relative to the current parent.
func (n *Node) SetGlobal(t Transform) {

	if n.parent == nil {
		n.SetLocal(t)
		return
	}
	parentGlobal := n.parent.Global()
	pm := parentGlobal.Compose()
	var inv math32.Matrix4
	inv.GetInverse(pm)
	wm := t.Compose()
	var lm math32.Matrix4
	lm.MultiplyMatrices(&inv, wm)
	n.SetLocal(DecomposeMatrix(&lm))
}

// ToLocal converts a point given in world space into this node's local
// space.
func (n *Node) ToLocal(worldPoint math32.Vector3) math32.Vector3 {

	g := n.Global()
	gm := g.Compose()
	var inv math32.Matrix4
	inv.GetInverse(gm)
	p := worldPoint
	p.ApplyMatrix4(&inv)
	return p
}

// ToGlobal converts a point given in this node's local space into world
// space.
func (n *Node) ToGlobal(localPoint math32.Vector3) math32.Vector3 {

	g := n.Global()
	gm := g.Compose()
	p := localPoint
	p.ApplyMatrix4(gm)
	return p
}

// RotateLocalWithGlobal rotates this node's local rotation by q expressed
// in its parent's global space:
//
//	new_rot = inverse(parent_global_rotation) * q * parent_global_rotation
//	new_rot = new_rot * local_rotation
//
// grounded on the original implementation's ik_transform rotate-local-
// with-global operation. The quaternion multiplication convention used
// throughout this package is math32.Quaternion.MultiplyQuaternions's:
// result = a * b, Hamilton product, applied consistently here and in the
// swing-twist decomposition so composed rotations never silently flip
// handedness partway through a solve.
func (n *Node) RotateLocalWithGlobal(q math32.Quaternion) {

	var parentGlobalRot math32.Quaternion
	if n.parent != nil {
		parentGlobalRot = n.parent.Global().Rotation
	} else {
		parentGlobalRot.SetIdentity()
	}

	var invParent math32.Quaternion
	invParent.Copy(&parentGlobalRot).Inverse()

	var newRot math32.Quaternion
	newRot.MultiplyQuaternions(&invParent, &q)
	newRot.MultiplyQuaternions(&newRot, &parentGlobalRot)
	newRot.MultiplyQuaternions(&newRot, &n.local.Rotation)
	newRot.Normalize()

	n.local.Rotation = newRot
	n.markGlobalDirty()
}

// YAxis returns this node's local +Y basis vector in world space.
func (n *Node) YAxis() math32.Vector3 {

	g := n.Global()
	v := math32.NewVector3(0, 1, 0)
	v.ApplyQuaternion(&g.Rotation)
	return *v
}
