package ik

import (
	"testing"

	"github.com/V-Sekai/many-bone-ik-sub000/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSkeleton struct {
	names   []string
	parents map[string]string
	local   map[string]Transform
}

func newStubSkeleton() *stubSkeleton {

	return &stubSkeleton{parents: make(map[string]string), local: make(map[string]Transform)}
}

func (s *stubSkeleton) add(name, parent string, origin math32.Vector3) {

	s.names = append(s.names, name)
	if parent != "" {
		s.parents[name] = parent
	}
	t := NewTransform()
	t.Origin = origin
	s.local[name] = t
}

func (s *stubSkeleton) BoneNames() []string { return s.names }
func (s *stubSkeleton) ParentName(bone string) (string, bool) {
	p, ok := s.parents[bone]
	return p, ok
}
func (s *stubSkeleton) RestLocalPose(bone string) (Transform, bool) {
	t, ok := s.local[bone]
	return t, ok
}
func (s *stubSkeleton) BonePose(bone string) (Transform, bool) {
	t, ok := s.local[bone]
	return t, ok
}
func (s *stubSkeleton) SetBonePose(bone string, t Transform, strength float32, persistent bool) {
	s.local[bone] = t
}
func (s *stubSkeleton) GlobalTransform() Transform { return NewTransform() }

type stubTargets struct {
	byName map[string]Transform
	misses map[string]bool
}

func (t *stubTargets) ResolveGlobalTransform(handle TargetHandle) (Transform, bool) {

	name, _ := handle.(string)
	if t.misses[name] {
		return Transform{}, false
	}
	tr, ok := t.byName[name]
	return tr, ok
}

func threeBoneArm() *stubSkeleton {

	sk := newStubSkeleton()
	sk.add("shoulder", "", math32.Vector3{})
	sk.add("elbow", "shoulder", math32.Vector3{X: 0, Y: -1, Z: 0})
	sk.add("wrist", "elbow", math32.Vector3{X: 0, Y: -1, Z: 0})
	return sk
}

func TestSolverExecuteWithNoSkeletonWarnsAndNoops(t *testing.T) {

	s := NewSolver()
	err := s.Execute(1.0 / 60)
	require.Error(t, err)
	var solveErr *SolveError
	assert.ErrorAs(t, err, &solveErr)
	assert.Equal(t, ErrInvalidSkeletonHandle, solveErr.Kind)
}

func TestSolverExecuteRejectsUnknownRootBone(t *testing.T) {

	sk := threeBoneArm()
	s := NewSolver()
	s.SetSkeleton(sk)
	s.SetRootBone("nonexistent")

	err := s.Execute(1.0 / 60)
	require.Error(t, err)
}

func TestSolverExecuteMovesWristTowardPin(t *testing.T) {

	sk := threeBoneArm()
	targets := &stubTargets{byName: map[string]Transform{
		"hand": {Origin: math32.Vector3{X: 1, Y: -1.2, Z: 0}, Rotation: *math32.NewQuaternion(0, 0, 0, 1)},
	}}

	s := NewSolver()
	s.SetSkeleton(sk)
	s.SetTargetProvider(targets)
	s.SetRootBone("shoulder")
	s.SetIterationsPerFrame(15)
	s.SetDefaultDamp(0.4)
	s.AddPin(PinSpec{Bone: "wrist", Target: "hand", UseNodeRotation: false, Weight: 1})

	before, _ := sk.BonePose("wrist")

	for i := 0; i < 6; i++ {
		require.NoError(t, s.Execute(1.0/60))
	}

	after, _ := sk.BonePose("wrist")
	assert.NotEqual(t, before.Origin, after.Origin)
}

func TestSolverExecuteNoPinsWarnsNoEffectivePins(t *testing.T) {

	sk := threeBoneArm()
	s := NewSolver()
	s.SetSkeleton(sk)
	s.SetRootBone("shoulder")

	require.NoError(t, s.Execute(1.0/60))

	found := false
	for _, w := range s.Warnings() {
		var se *SolveError
		if assert.ErrorAs(t, w, &se) && se.Kind == ErrNoEffectivePins {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSolverExecuteUnresolvedPinTargetWarns(t *testing.T) {

	sk := threeBoneArm()
	targets := &stubTargets{byName: map[string]Transform{}, misses: map[string]bool{"hand": true}}

	s := NewSolver()
	s.SetSkeleton(sk)
	s.SetTargetProvider(targets)
	s.SetRootBone("shoulder")
	s.AddPin(PinSpec{Bone: "wrist", Target: "hand", Weight: 1})

	require.NoError(t, s.Execute(1.0/60))

	foundWarning := false
	for _, w := range s.Warnings() {
		var se *SolveError
		if assert.ErrorAs(t, w, &se) && se.Kind == ErrUnresolvedPinTarget {
			foundWarning = true
		}
	}
	assert.True(t, foundWarning)
}

func TestSolverExecuteWithExpiredTimeBudgetSucceeds(t *testing.T) {

	sk := threeBoneArm()
	targets := &stubTargets{byName: map[string]Transform{
		"hand": {Origin: math32.Vector3{X: 0.5, Y: -1.8, Z: 0}, Rotation: *math32.NewQuaternion(0, 0, 0, 1)},
	}}

	s := NewSolver()
	s.SetSkeleton(sk)
	s.SetTargetProvider(targets)
	s.SetRootBone("shoulder")
	s.SetIterationsPerFrame(1000)
	s.SetTimeBudget(1) // nanoseconds: expires immediately
	s.AddPin(PinSpec{Bone: "wrist", Target: "hand", Weight: 1})

	require.NoError(t, s.Execute(1.0/60))
}

func TestSolverFlipHandednessMirrorsConeControlPoints(t *testing.T) {

	sk := threeBoneArm()
	s := NewSolver()
	s.SetSkeleton(sk)
	s.SetRootBone("shoulder")
	s.AddConstraint(ConstraintSpec{
		Bone:           "elbow",
		Cones:          []ConeSpec{{Center: math32.Vector3{X: 0.6, Y: 0, Z: 0.8}, Radius: 0.2}},
		FlipHandedness: true,
	})

	require.NoError(t, s.Execute(1.0/60))

	elbow := s.bones["elbow"]
	require.NotNil(t, elbow.Constraint())
	cones := elbow.Constraint().Cones()
	require.Len(t, cones, 1)

	// 180 degrees about +Z negates X and Y, leaves Z alone.
	got := cones[0].ControlPoint()
	assert.InDelta(t, -0.6, got.X, 1e-5)
	assert.InDelta(t, 0, got.Y, 1e-5)
	assert.InDelta(t, 0.8, got.Z, 1e-5)
}
