package ik

import "github.com/V-Sekai/many-bone-ik-sub000/math32"

const depthFalloffEpsilon = 1e-6

// Segment is a maximal single-child run of bones between a root and a
// tip, where a tip is either a pinned bone or a branch point with two
// or more children whose subtrees reach a pin. Each branch child (and
// each child reachable below a pinned tip) gets its own child Segment.
// Grounded on the original implementation's IKBoneChain, adjusted per
// the governing per-bone update order (root bones are solved by the
// parent segment's pass, never their own).
type Segment struct {
	root, tip *Bone
	bones     []*Bone // tip..root inclusive, in that order
	parent    *Segment
	children  []*Segment

	effectors []*Effector
	weights   []float32

	targetHeadings []math32.Vector3
	tipHeadings    []math32.Vector3

	qcp *QCP

	stabilizationPasses int

	// nonConvergentBones names this segment's own bones whose most
	// recent QCP fit exhausted its iteration cap without converging.
	// Reset and repopulated on every SegmentSolver call.
	nonConvergentBones []string
}

// hasPinDescendant reports whether bone or any bone in its subtree
// carries a pin.
func hasPinDescendant(bone *Bone) bool {

	if bone.IsPinned() {
		return true
	}
	for _, c := range bone.Children() {
		if hasPinDescendant(c) {
			return true
		}
	}
	return false
}

// GenerateSegments builds the segment tree rooted at root. Grounded on
// the original implementation's IKBoneChain::generate_skeleton_segments.
func GenerateSegments(root *Bone) *Segment {

	return buildSegment(root, nil)
}

func buildSegment(root *Bone, parent *Segment) *Segment {

	seg := &Segment{root: root, parent: parent, qcp: NewQCP()}

	temp := root
	for !temp.IsPinned() {
		var branching []*Bone
		for _, c := range temp.Children() {
			if hasPinDescendant(c) {
				branching = append(branching, c)
			}
		}
		if len(branching) != 1 {
			break
		}
		temp = branching[0]
	}
	seg.tip = temp

	for b := seg.tip; ; b = b.Parent() {
		seg.bones = append(seg.bones, b)
		if b == seg.root {
			break
		}
	}
	// A child segment's root is its parent segment's tip, shared between
	// the two segments.
	if parent != nil {
		seg.root = parent.tip
		seg.bones = append(seg.bones, parent.tip)
	}

	for _, c := range seg.tip.Children() {
		if hasPinDescendant(c) {
			seg.children = append(seg.children, buildSegment(c, seg))
		}
	}
	return seg
}

// Root returns this segment's root bone.
func (s *Segment) Root() *Bone {

	return s.root
}

// Tip returns this segment's tip bone.
func (s *Segment) Tip() *Bone {

	return s.tip
}

// Children returns this segment's child segments.
func (s *Segment) Children() []*Segment {

	return s.children
}

// Bones returns this segment's bones, ordered tip to root inclusive.
func (s *Segment) Bones() []*Bone {

	return s.bones
}

// SetStabilizationPasses sets how many extra retry attempts
// UpdateOptimalRotation takes per bone. Each retry applies its rotation
// on top of the previous ones; the first retry whose fit RMSD is higher
// than the best so far is undone and ends the retries.
func (s *Segment) SetStabilizationPasses(n int) {

	s.stabilizationPasses = n
	for _, c := range s.children {
		c.SetStabilizationPasses(n)
	}
}

// UpdatePinnedList rebuilds this segment's (and, recursively, its
// descendants') effector list and per-heading weight buffer. Must be
// called once after any structural edit (pin or constraint added or
// removed) before solving. Grounded on the original implementation's
// IKBoneChain::update_pinned_list, with its apparent double-counting
// of descendant effectors (a full-tree rescan layered on top of the
// already-accumulated child lists) corrected to a single traversal.
func (s *Segment) UpdatePinnedList() {

	falloff := float32(1)
	if s.tip.IsPinned() {
		falloff = s.tip.Pin().DepthFalloff()
	}

	s.effectors = s.effectors[:0]
	s.weights = s.weights[:0]

	for _, child := range s.children {
		child.UpdatePinnedList()
		if falloff > depthFalloffEpsilon {
			s.effectors = append(s.effectors, child.effectors...)
			for _, w := range child.weights {
				s.weights = append(s.weights, w*falloff)
			}
		}
	}

	if s.tip.IsPinned() {
		eff := s.tip.Pin()
		s.effectors = append(s.effectors, eff)
		for i := 0; i < eff.HeadingCount(); i++ {
			s.weights = append(s.weights, eff.Weight())
		}
	}

	n := len(s.weights)
	s.targetHeadings = make([]math32.Vector3, n)
	s.tipHeadings = make([]math32.Vector3, n)
}

// UpdateOptimalRotation runs one QCP fit for bone against this
// segment's current effector headings, clamps the result by damping,
// applies it to bone's shadow transform, and snaps to bone's Kusudama
// limits if it has one. Returns the weighted RMSD of the fit (useful
// for stabilization passes). Grounded on the original implementation's
// IKBoneChain::update_optimal_rotation / set_optimal_rotation.
func (s *Segment) UpdateOptimalRotation(bone *Bone, damping float32, translate bool) float32 {

	if len(s.effectors) == 0 {
		return 0
	}

	best := s.attemptOptimalRotation(bone, damping, translate)
	for pass := 0; pass < s.stabilizationPasses; pass++ {
		saved := bone.Transform().Local()
		candidateRMSD := s.attemptOptimalRotation(bone, damping, translate)
		if candidateRMSD > best {
			bone.Transform().SetLocal(saved)
			break
		}
		best = candidateRMSD
	}
	return best
}

func (s *Segment) attemptOptimalRotation(bone *Bone, damping float32, translate bool) float32 {

	index := 0
	for _, eff := range s.effectors {
		index = eff.UpdateTargetHeadings(s.targetHeadings, index, bone, s.weights)
	}
	index = 0
	for _, eff := range s.effectors {
		index = eff.UpdateTipHeadings(s.tipHeadings, index, bone)
	}

	if translate {
		damping = math32.Pi
	}

	q := s.qcp.WeightedSuperpose(s.tipHeadings, s.targetHeadings, s.weights, translate)
	if !s.qcp.Converged() {
		s.nonConvergentBones = append(s.nonConvergentBones, bone.Name())
	}

	// The per-bone clamp always folds in stiffness: a caller-supplied
	// damping overrides the bone's own default angle, but never bypasses
	// the bone's stiffness setting. Grounded on SPEC_FULL.md §C.3.
	clampAngle := damping
	if clampAngle <= 0 {
		clampAngle = bone.DefaultDampening()
	}
	clampAngle *= 1 - bone.Stiffness()
	q = clampToAngle(q, clampAngle)

	bone.Transform().RotateLocalWithGlobal(q)
	if translate {
		t := s.qcp.GetTranslation()
		pose := bone.GetGlobalPose()
		pose.Origin.Add(&t)
		bone.SetGlobalPose(pose)
	}

	if k := bone.Constraint(); k != nil {
		k.SetAxesToOrientationSnap(bone.Transform(), bone.ConstraintTransform())
		k.SetSnapToTwistLimit(bone.Transform(), bone.ConstraintTransform())
	}

	return s.qcp.GetRMSD()
}

// SegmentSolver recurses into child segments first (post-order), then
// updates every bone in this segment from tip toward root, excluding
// this segment's own root bone: the root is shared with the parent
// segment (or, for the overall chain root, is the fixed anchor) and is
// updated by that parent's own pass instead. Grounded on the governing
// per-bone update order; see UpdatePinnedList's doc comment for the one
// deliberate deviation from the original implementation's bone-chain
// traversal.
func (s *Segment) SegmentSolver(damping float32, translate bool) {

	for _, child := range s.children {
		child.SegmentSolver(damping, translate)
	}

	s.nonConvergentBones = s.nonConvergentBones[:0]
	if len(s.effectors) == 0 {
		return
	}
	for i := 0; i < len(s.bones)-1; i++ {
		s.UpdateOptimalRotation(s.bones[i], damping, translate)
	}
}

// NonConvergentBones returns the names of every bone in this segment's
// subtree whose most recent QCP fit exhausted its iteration cap without
// converging.
func (s *Segment) NonConvergentBones() []string {

	names := append([]string(nil), s.nonConvergentBones...)
	for _, c := range s.children {
		names = append(names, c.NonConvergentBones()...)
	}
	return names
}

// clampToAngle clamps q's rotation angle to at most angle (radians),
// preserving its axis and sign. Grounded on the original
// implementation's IKBoneChain::clamp_to_angle.
func clampToAngle(q math32.Quaternion, angle float32) math32.Quaternion {

	return clampToQuadranceAngle(q, math32.Cos(0.5*angle))
}

// clampToQuadranceAngle clamps q so that its half-angle cosine is at
// least cosHalfAngle, rescaling the vector part to match and
// preserving q.W's sign. Grounded on the original implementation's
// IKBoneChain::clamp_to_quadrance_angle.
func clampToQuadranceAngle(q math32.Quaternion, cosHalfAngle float32) math32.Quaternion {

	newCoeff := 1 - cosHalfAngle*cosHalfAngle
	currentCoeff := q.X*q.X + q.Y*q.Y + q.Z*q.Z
	if newCoeff > currentCoeff {
		return q
	}

	composite := math32.Sqrt(newCoeff / currentCoeff)
	result := q
	result.X *= composite
	result.Y *= composite
	result.Z *= composite
	if q.W < 0 {
		result.W = -cosHalfAngle
	} else {
		result.W = cosHalfAngle
	}
	return result
}
