package ik

import (
	"time"

	"github.com/V-Sekai/many-bone-ik-sub000/ikconfig"
	"github.com/V-Sekai/many-bone-ik-sub000/ikutil/dispatch"
	"github.com/V-Sekai/many-bone-ik-sub000/ikutil/logger"
	"github.com/V-Sekai/many-bone-ik-sub000/math32"
)

var solverLog = logger.New("SOLVER", logger.Default)

// PinSpec configures one effector before a rebuild. Grounded on
// spec.md's configuration surface (§6) and the original
// implementation's IKEffectorTemplate.
type PinSpec struct {
	Bone            string
	Target          TargetHandle
	UseNodeRotation bool
	Weight          float32
	PriorityX       float32
	PriorityY       float32
	PriorityZ       float32
	DepthFalloff    float32
}

// ConeSpec configures one LimitCone of a constraint.
type ConeSpec struct {
	Center math32.Vector3
	Radius float32
}

// ConstraintSpec configures one bone's Kusudama before a rebuild.
type ConstraintSpec struct {
	Bone           string
	TwistFrom      float32
	TwistTo        float32
	Cones          []ConeSpec
	FlipHandedness bool
}

// Solver is the top-level iteration driver: it owns the shadow bone
// tree, refreshes it from a SkeletonProvider and TargetProvider each
// tick, and runs the segmented solve. Grounded on the original
// implementation's EWBIK/SkeletonModification3D.
type Solver struct {
	skeleton SkeletonProvider
	targets  TargetProvider

	rootBoneName string
	tipBoneName  string

	iterationsPerFrame  int
	defaultDamp         float32
	stabilizationPasses int
	timeBudget          time.Duration

	pins        []PinSpec
	constraints []ConstraintSpec

	dirty    bool
	bones    map[string]*Bone
	boneList []*Bone
	root     *Segment

	warnings []error
	lastErr  error

	events *dispatch.Dispatcher
}

// NewSolver creates a solver with one iteration per frame and a
// default damp (per-iteration rotation-angle clamp) of ~11 degrees.
func NewSolver() *Solver {

	return &Solver{
		iterationsPerFrame: 1,
		defaultDamp:        0.2,
		dirty:              true,
		events:             dispatch.New(),
	}
}

// Events returns the solver's lifecycle event dispatcher (rebuild,
// warning, execute-complete).
func (s *Solver) Events() *dispatch.Dispatcher {

	return s.events
}

// SetSkeleton sets the host skeleton this solver drives and schedules
// a rebuild.
func (s *Solver) SetSkeleton(sk SkeletonProvider) {

	s.skeleton = sk
	s.dirty = true
}

// SetTargetProvider sets the collaborator used to resolve pin target
// handles each tick.
func (s *Solver) SetTargetProvider(t TargetProvider) {

	s.targets = t
}

// SetRootBone sets the upper bound of the IK subtree and schedules a
// rebuild.
func (s *Solver) SetRootBone(name string) {

	s.rootBoneName = name
	s.dirty = true
}

// SetTipBone sets the lower bound used only during auto-segmentation
// (empty means "all pinned descendants") and schedules a rebuild.
func (s *Solver) SetTipBone(name string) {

	s.tipBoneName = name
	s.dirty = true
}

// SetIterationsPerFrame sets how many outer solver iterations Execute
// performs.
func (s *Solver) SetIterationsPerFrame(n int) {

	if n < 1 {
		n = 1
	}
	s.iterationsPerFrame = n
}

// SetDefaultDamp sets the per-bone clamp on the rotation angle each
// bone may turn per iteration, used when a bone has no more specific
// damp of its own.
func (s *Solver) SetDefaultDamp(angle float32) {

	s.defaultDamp = angle
}

// SetStabilizationPasses sets the per-bone stabilization retry count
// and schedules a rebuild (the segment tree caches this value).
func (s *Solver) SetStabilizationPasses(n int) {

	s.stabilizationPasses = n
	s.dirty = true
}

// SetTimeBudget sets an optional wall-clock budget: the iteration loop
// exits early, between iterations, once exceeded. Zero disables the
// check.
func (s *Solver) SetTimeBudget(d time.Duration) {

	s.timeBudget = d
}

// AddPin appends a pin spec and schedules a rebuild.
func (s *Solver) AddPin(p PinSpec) {

	s.pins = append(s.pins, p)
	s.dirty = true
}

// RemovePin removes the pin at index i and schedules a rebuild.
func (s *Solver) RemovePin(i int) {

	if i < 0 || i >= len(s.pins) {
		return
	}
	s.pins = append(s.pins[:i], s.pins[i+1:]...)
	s.dirty = true
}

// AddConstraint appends a constraint spec and schedules a rebuild.
func (s *Solver) AddConstraint(c ConstraintSpec) {

	s.constraints = append(s.constraints, c)
	s.dirty = true
}

// Configure replaces this solver's root/tip bone, iteration knobs, pins,
// and constraints from cfg in one step and schedules a rebuild. It does
// not call cfg.Validate itself — a host that wants pre-flight diagnostics
// calls that first and decides what to do with the result. Target handles
// are taken as cfg's pin target strings verbatim; the solver's
// TargetProvider is responsible for interpreting them.
func (s *Solver) Configure(cfg *ikconfig.Config) {

	s.rootBoneName = cfg.RootBone
	s.tipBoneName = cfg.TipBone
	s.SetIterationsPerFrame(cfg.IterationsPerFrame)
	s.defaultDamp = cfg.DefaultDamp
	s.stabilizationPasses = cfg.StabilizationPasses
	s.timeBudget = time.Duration(cfg.TimeBudgetMillis) * time.Millisecond

	s.pins = s.pins[:0]
	for _, p := range cfg.Pins {
		s.pins = append(s.pins, PinSpec{
			Bone:            p.Bone,
			Target:          p.Target,
			UseNodeRotation: p.UseNodeRotation,
			Weight:          p.Weight,
			PriorityX:       p.PriorityX,
			PriorityY:       p.PriorityY,
			PriorityZ:       p.PriorityZ,
			DepthFalloff:    p.DepthFalloff,
		})
	}

	s.constraints = s.constraints[:0]
	for _, c := range cfg.Constraints {
		cones := make([]ConeSpec, len(c.Cones))
		for i, cone := range c.Cones {
			cones[i] = ConeSpec{
				Center: math32.Vector3{X: cone.CenterX, Y: cone.CenterY, Z: cone.CenterZ},
				Radius: cone.Radius,
			}
		}
		s.constraints = append(s.constraints, ConstraintSpec{
			Bone:           c.Bone,
			TwistFrom:      c.TwistFrom,
			TwistTo:        c.TwistTo,
			Cones:          cones,
			FlipHandedness: c.FlipHandedness,
		})
	}

	s.dirty = true
}

// Err returns the error from the most recent Execute call, or nil.
func (s *Solver) Err() error {

	return s.lastErr
}

// Warnings returns the non-fatal conditions observed during the most
// recent Execute call.
func (s *Solver) Warnings() []error {

	return s.warnings
}

func (s *Solver) warn(err error) {

	s.warnings = append(s.warnings, err)
	s.events.Dispatch(dispatch.EventWarning, err)
	solverLog.Warn("%v", err)
}

// Execute runs a single frame's solve: rebuilding the shadow skeleton
// if dirty, refreshing shadow poses and pin targets from the host,
// running iterationsPerFrame segment solves, and writing the result
// back. Grounded on the original implementation's EWBIK::execute.
func (s *Solver) Execute(dt float32) error {

	s.warnings = nil
	s.lastErr = nil

	if s.skeleton == nil || s.rootBoneName == "" {
		err := newSolveError(ErrInvalidSkeletonHandle, s.rootBoneName)
		s.lastErr = err
		s.warn(err)
		return err
	}

	if s.dirty {
		if err := s.rebuild(); err != nil {
			s.lastErr = err
			return err
		}
		s.dirty = false
		s.events.Dispatch(dispatch.EventRebuild, s)
	}

	for _, b := range s.boneList {
		t, ok := s.skeleton.BonePose(b.Name())
		if !ok {
			continue
		}
		b.SetPose(t)
	}
	for _, b := range s.boneList {
		if b.IsPinned() {
			s.refreshPinTarget(b)
		}
	}

	var deadline time.Time
	if s.timeBudget > 0 {
		deadline = time.Now().Add(s.timeBudget)
	}
	for i := 0; i < s.iterationsPerFrame; i++ {
		if s.timeBudget > 0 && time.Now().After(deadline) {
			break
		}
		s.root.SegmentSolver(s.defaultDamp, false)
	}

	for _, name := range s.root.NonConvergentBones() {
		s.warn(newSolveError(ErrQCPNonConvergent, name))
	}

	for _, b := range s.boneList {
		b.SetSkeletonBonePose(s.skeleton)
	}

	s.events.Dispatch(dispatch.EventExecuteComplete, s)
	return nil
}

// refreshPinTarget resolves bone's pin target through the solver's
// TargetProvider, falling back to the bone's own current global
// transform (the pin "holds") if the handle fails to resolve.
func (s *Solver) refreshPinTarget(bone *Bone) {

	eff := bone.Pin()
	if s.targets != nil {
		if t, ok := s.targets.ResolveGlobalTransform(eff.TargetHandle()); ok {
			eff.SetTargetTransform(t)
			return
		}
	}
	s.warn(newSolveError(ErrUnresolvedPinTarget, bone.Name()))
	eff.SetTargetTransform(bone.GetGlobalPose())
}

// rebuild reconstructs the shadow bone tree, segment tree, and
// constraints from the current skeleton topology, pins, and
// constraints. Grounded on the original implementation's
// EWBIK::skeleton_changed.
func (s *Solver) rebuild() error {

	names := s.skeleton.BoneNames()
	byName := make(map[string]bool, len(names))
	for _, n := range names {
		byName[n] = true
	}
	if !byName[s.rootBoneName] {
		return newSolveError(ErrBoneNotFound, s.rootBoneName)
	}
	if s.tipBoneName != "" && !byName[s.tipBoneName] {
		return newSolveError(ErrBoneNotFound, s.tipBoneName)
	}

	bones := make(map[string]*Bone, len(names))
	var build func(name string) *Bone
	build = func(name string) *Bone {
		if b, ok := bones[name]; ok {
			return b
		}
		b := NewBone(name, nil, s.defaultDamp)
		bones[name] = b
		if parent, ok := s.skeleton.ParentName(name); ok && byName[parent] {
			b.SetParent(build(parent))
		}
		return b
	}
	for _, n := range names {
		build(n)
	}

	rootBone, ok := bones[s.rootBoneName]
	if !ok {
		return newSolveError(ErrBoneNotFound, s.rootBoneName)
	}

	subtree := make(map[string]*Bone)
	var collect func(b *Bone)
	collect = func(b *Bone) {
		if s.tipBoneName != "" && b.Name() == s.tipBoneName {
			subtree[b.Name()] = b
			return
		}
		subtree[b.Name()] = b
		for _, c := range b.Children() {
			collect(c)
		}
	}
	collect(rootBone)

	for _, p := range s.pins {
		b, ok := subtree[p.Bone]
		if !ok {
			s.warn(newSolveError(ErrBoneNotFound, p.Bone))
			continue
		}
		eff := b.CreatePin()
		eff.SetTargetHandle(p.Target)
		eff.SetUseNodeRotation(p.UseNodeRotation)
		weight := p.Weight
		if weight == 0 {
			weight = 1
		}
		eff.SetWeight(weight)
		eff.SetDirectionPriorities(p.PriorityX, p.PriorityY, p.PriorityZ)
		eff.SetDepthFalloff(p.DepthFalloff)
	}

	for _, b := range subtree {
		b.UpdateDefaultBoneDirection()
	}
	for _, b := range subtree {
		b.UpdateDefaultConstraintTransform()
	}

	for _, c := range s.constraints {
		b, ok := subtree[c.Bone]
		if !ok {
			s.warn(newSolveError(ErrBoneNotFound, c.Bone))
			continue
		}
		var flipRot *math32.Quaternion
		if c.FlipHandedness {
			flipRot = math32.NewQuaternion(0, 0, 0, 1)
			flipRot.SetFromAxisAngle(math32.NewVector3(0, 0, 1), math32.Pi)
		}

		k := NewKusudama()
		for _, cone := range c.Cones {
			if cone.Radius < 0 || cone.Radius > math32.Pi {
				s.warn(newSolveError(ErrDegenerateCone, c.Bone))
				continue
			}
			center := cone.Center
			if flipRot != nil {
				center.ApplyQuaternion(flipRot)
			}
			k.AddLimitCone(center, cone.Radius)
		}
		if len(k.Cones()) > 0 {
			k.orientationallyConstrained = true
		}
		k.SetAxialLimits(c.TwistFrom, c.TwistTo-c.TwistFrom)
		b.AddConstraint(k)
	}

	root := GenerateSegments(rootBone)
	root.SetStabilizationPasses(s.stabilizationPasses)
	root.UpdatePinnedList()

	if len(root.effectors) == 0 {
		s.warn(newSolveError(ErrNoEffectivePins, s.rootBoneName))
	}

	var flat []*Bone
	for _, b := range subtree {
		flat = append(flat, b)
	}

	s.bones = subtree
	s.boneList = flat
	s.root = root
	return nil
}
