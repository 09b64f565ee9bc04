// Package optimizer implements the coordinate-style update algorithms
// that drive a kernel.Engine: SMO, Perceptron, Stochastic Batch
// Perceptron (SBP), and Sparsifier, each in biased and unbiased
// variants.
//
// Every variant exposes the shared Optimizer interface (Iterate,
// Evaluate, Support, GetAlphas, Bias, NormSquared, ...) and shares
// the same dirty/fresh derived-scalar discipline: any successful
// Iterate marks cached scalars dirty (NaN sentinel); the next accessor
// call recomputes and freshens them.
package optimizer

import "errors"

// ERROR PRIORITY (documented, enforced in tests): configuration errors
// (bad hyperparameter, label/prediction length mismatch) are returned
// from constructors; nothing in this package panics on caller-supplied
// data, matching kernel/errors.go's convention.
var (
	// ErrBadLambda indicates a non-positive regularization parameter.
	ErrBadLambda = errors.New("optimizer: lambda must be > 0")

	// ErrBadMu indicates a non-positive Perceptron margin parameter.
	ErrBadMu = errors.New("optimizer: mu must be > 0")

	// ErrBadNu indicates an SBP rate parameter outside (0,1).
	ErrBadNu = errors.New("optimizer: nu must be in (0,1)")

	// ErrBadWSquared indicates a non-positive Sparsifier target norm.
	ErrBadWSquared = errors.New("optimizer: target norm^2 must be > 0")

	// ErrBadEta indicates a non-positive Sparsifier step size.
	ErrBadEta = errors.New("optimizer: eta must be > 0")

	// ErrBadEpsilon indicates a negative Sparsifier tolerance.
	ErrBadEpsilon = errors.New("optimizer: epsilon must be >= 0")

	// ErrTargetLengthMismatch indicates the Sparsifier's teacher
	// prediction vector g does not have exactly TrainingSize() entries.
	ErrTargetLengthMismatch = errors.New("optimizer: target prediction vector length must equal training size")

	// ErrNilKernel indicates a nil kernel.Engine was supplied to a
	// constructor.
	ErrNilKernel = errors.New("optimizer: kernel must not be nil")

	// ErrNoTrainingExamples indicates a kernel with TrainingSize()==0.
	ErrNoTrainingExamples = errors.New("optimizer: kernel has no training examples")

	// ErrSnapshotLengthMismatch indicates Restore was given alpha or
	// response slices whose lengths do not match the kernel's T and N.
	ErrSnapshotLengthMismatch = errors.New("optimizer: snapshot alpha/response length mismatch")

	// ErrBadIterations indicates Restore was given a negative
	// iteration counter.
	ErrBadIterations = errors.New("optimizer: iteration counter must be >= 0")
)
