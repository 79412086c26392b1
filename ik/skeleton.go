package ik

// SkeletonProvider is the host's skeleton data structure, as seen by
// the solver: a read/write surface over bone topology and pose, with no
// knowledge of IK. Grounded on the external interface contract the
// original implementation expects from Godot's Skeleton3D.
type SkeletonProvider interface {
	// BoneNames returns every bone name the provider knows about, in a
	// stable order (parents before children is not required; the
	// solver derives topology from ParentName).
	BoneNames() []string

	// ParentName returns the name of bone's parent, and false if bone
	// is a root.
	ParentName(bone string) (string, bool)

	// RestLocalPose returns bone's bind-pose local transform.
	RestLocalPose(bone string) (Transform, bool)

	// BonePose returns bone's current local transform.
	BonePose(bone string) (Transform, bool)

	// SetBonePose writes bone's local transform back as a pose
	// override. strength scales how strongly it applies in [0,1];
	// persistent marks whether the override should survive past this
	// frame in hosts that otherwise reset pose overrides every frame.
	SetBonePose(bone string, t Transform, strength float32, persistent bool)

	// GlobalTransform returns the skeleton node's own world transform,
	// the frame the solver's shadow tree roots into.
	GlobalTransform() Transform
}

// TargetHandle is an opaque reference to a pin's target, typically a
// stable handle into the host's scene graph. Its zero value denotes no
// target.
type TargetHandle interface{}

// TargetProvider resolves a pin's target handle to a current world
// transform. Grounded on the original implementation's target-node
// resolution in IKEffector3D::update_goal_transform.
type TargetProvider interface {
	// ResolveGlobalTransform returns handle's current world transform,
	// and false if handle no longer resolves to anything (the pin then
	// falls back to its bone's own current global transform).
	ResolveGlobalTransform(handle TargetHandle) (Transform, bool)
}
