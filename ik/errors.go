package ik

import "fmt"

// ErrorKind classifies a solve-time failure or warning condition.
// Grounded on the original implementation's ERR_FAIL_* contract-check
// sites in ewbik.cpp, mapped onto explicit error values per spec.md §7.
type ErrorKind int

const (
	// ErrInvalidSkeletonHandle means Execute was called with no
	// skeleton set, or with no root bone name set.
	ErrInvalidSkeletonHandle ErrorKind = iota
	// ErrBoneNotFound means a configured root, tip, pin, or constraint
	// bone name has no matching bone on the current skeleton.
	ErrBoneNotFound
	// ErrNoEffectivePins means the shadow skeleton rebuilt with no
	// reachable pin anywhere under the root bone.
	ErrNoEffectivePins
	// ErrDegenerateCone means a configured Kusudama cone has a radius
	// outside [0, pi].
	ErrDegenerateCone
	// ErrQCPNonConvergent means the QCP eigenvalue Newton iteration hit
	// its iteration cap without converging.
	ErrQCPNonConvergent
	// ErrUnresolvedPinTarget means a pin's target handle failed to
	// resolve; the solver falls back to holding that pin at the bone's
	// current pose, but still reports the condition.
	ErrUnresolvedPinTarget
)

func (k ErrorKind) String() string {

	switch k {
	case ErrInvalidSkeletonHandle:
		return "invalid skeleton handle"
	case ErrBoneNotFound:
		return "bone not found"
	case ErrNoEffectivePins:
		return "no effective pins"
	case ErrDegenerateCone:
		return "degenerate cone"
	case ErrQCPNonConvergent:
		return "QCP non-convergent"
	case ErrUnresolvedPinTarget:
		return "unresolved pin target"
	default:
		return "unknown error"
	}
}

// SolveError reports a classified solve-time failure, optionally
// naming the bone involved.
type SolveError struct {
	Kind ErrorKind
	Bone string
	Err  error
}

func (e *SolveError) Error() string {

	if e.Bone != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Bone, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Bone)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *SolveError) Unwrap() error {

	return e.Err
}

func newSolveError(kind ErrorKind, bone string) *SolveError {

	return &SolveError{Kind: kind, Bone: bone}
}
