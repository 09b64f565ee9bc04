// Package kernel holds the training and validation feature vectors,
// evaluates the kernel function k(i,j), materializes cached kernel
// rows, and maintains the response vector r incrementally as alpha is
// updated.
//
// ERROR PRIORITY (documented, enforced in tests): configuration errors
// (bad kind, non-positive gamma, index out of [0,size)) are returned
// from constructors/accessors; nothing in this package panics on
// caller-supplied data — see matrix/errors.go in the teacher for the
// convention this mirrors.
package kernel

import "errors"

var (
	// ErrUnknownKind indicates an unrecognized kernel kind was requested.
	ErrUnknownKind = errors.New("kernel: unknown kernel kind")

	// ErrBadGamma indicates a non-positive gamma was supplied for the
	// Gaussian kernel.
	ErrBadGamma = errors.New("kernel: gamma must be > 0")

	// ErrSizeMismatch indicates len(vectors) != len(labels), or a
	// slice argument (alpha, r, output) of the wrong length.
	ErrSizeMismatch = errors.New("kernel: vectors and labels length mismatch")

	// ErrBadTrainingSize indicates trainingSize is out of [0, len(vectors)].
	ErrBadTrainingSize = errors.New("kernel: trainingSize out of range")

	// ErrIndexOutOfRange indicates an index argument fell outside the
	// valid [0,size) or [0,trainingSize) window for the call.
	ErrIndexOutOfRange = errors.New("kernel: index out of range")

	// ErrNegativeCache indicates a negative row-cache capacity.
	ErrNegativeCache = errors.New("kernel: cache capacity must be >= 0")
)
