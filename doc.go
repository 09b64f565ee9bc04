// Package issvm trains and evaluates binary kernel support-vector
// classifiers, and — most distinctively — produces sparse
// approximations of a pre-trained dense classifier to within a target
// norm and optimality gap.
//
// The optimization engine is organized as small sibling packages, each
// owning one concern:
//
//	vector/      — sparse, span, and dense feature vectors with inner
//	               product and squared norm
//	kernel/      — linear and Gaussian kernel evaluation, an LRU row
//	               cache, and incremental response bookkeeping
//	waterlevel/  — the margin/bias water-filling solver (biased and
//	               unbiased forms)
//	optimizer/   — SMO, Perceptron, Stochastic Batch Perceptron, and
//	               Sparsifier, each in biased and unbiased variants
//	numsum/      — hierarchical partial sums with bounded round-off
//	prng/        — deterministic seeded LCG and lagged-Fibonacci
//	               generators
//	dataset/     — labeled sparse-text dataset and prediction-vector
//	               parsing, support-set output
//	model/       — versioned binary model archive, optionally gzipped
//
// The cmd/issvm binary wires them together: init builds a model from a
// dataset, optimize drives Iterate until a gap criterion or iteration
// cap, and evaluate / recalculate / write-support operate on a saved
// model.
//
//	go get github.com/katalvlaran/issvm
package issvm
