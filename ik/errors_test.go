package ik

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolveErrorMessageIncludesBoneWhenSet(t *testing.T) {

	err := newSolveError(ErrBoneNotFound, "wrist")
	assert.Contains(t, err.Error(), "bone not found")
	assert.Contains(t, err.Error(), "wrist")
}

func TestSolveErrorMessageOmitsBoneWhenUnset(t *testing.T) {

	err := newSolveError(ErrInvalidSkeletonHandle, "")
	assert.Equal(t, "invalid skeleton handle", err.Error())
}

func TestSolveErrorUnwrapsUnderlyingCause(t *testing.T) {

	cause := errors.New("boom")
	err := &SolveError{Kind: ErrQCPNonConvergent, Bone: "elbow", Err: cause}
	assert.ErrorIs(t, err, cause)
}

func TestErrorKindStringUnknownFallback(t *testing.T) {

	assert.Equal(t, "unknown error", ErrorKind(999).String())
}
