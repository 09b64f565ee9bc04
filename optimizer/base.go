package optimizer

import (
	"math"

	"github.com/katalvlaran/issvm/kernel"
	"github.com/katalvlaran/issvm/prng"
	"github.com/katalvlaran/issvm/vector"
)

// state holds the fields shared by every optimizer variant: the owning
// kernel reference, the training alpha vector (length T), the response
// vector r (length N), and the iteration counter. Each variant embeds
// state and adds its own lazily-computed, NaN-sentinel derived scalars
// (bias, normSquared, kappa, ...), per SPEC_FULL.md §4.4.6.
type state struct {
	kernel *kernel.Engine
	alpha  []float64
	r      []float64
	iter   int
}

func newState(k *kernel.Engine) *state {
	return &state{
		kernel: k,
		alpha:  make([]float64, k.TrainingSize()),
		r:      make([]float64, k.Size()),
	}
}

// TrainingSize returns T.
func (s *state) TrainingSize() int { return s.kernel.TrainingSize() }

// Iterations returns the number of completed Iterate calls.
func (s *state) Iterations() int { return s.iter }

// Snapshot returns copies of the raw alpha, the raw response vector,
// and the iteration counter — the mutable state a model archive
// persists. Note the raw alpha is not the variant's reported
// classifier: Perceptron and SBP normalize theirs in GetAlphas.
func (s *state) Snapshot() (alpha, responses []float64, iterations int) {
	alpha = make([]float64, len(s.alpha))
	copy(alpha, s.alpha)
	responses = make([]float64, len(s.r))
	copy(responses, s.r)
	return alpha, responses, s.iter
}

// restore overwrites alpha, r, and the iteration counter with a
// previously serialized snapshot. Variants wrap this with their own
// cache invalidation (and, for SBP, accumulator reseeding).
func (s *state) restore(alpha, r []float64, iterations int) error {
	if len(alpha) != len(s.alpha) || len(r) != len(s.r) {
		return ErrSnapshotLengthMismatch
	}
	if iterations < 0 {
		return ErrBadIterations
	}
	copy(s.alpha, alpha)
	copy(s.r, r)
	s.iter = iterations
	return nil
}

// ValidationSize returns N-T.
func (s *state) ValidationSize() int { return s.kernel.Size() - s.kernel.TrainingSize() }

// GetAlphas returns a copy of the training alpha vector.
func (s *state) GetAlphas() []float64 {
	out := make([]float64, len(s.alpha))
	copy(out, s.alpha)
	return out
}

// getValidationResponses returns r (or -r per label sign) over the
// validation range [T,N).
func (s *state) getValidationResponses() []float64 {
	t := s.kernel.TrainingSize()
	labels := s.kernel.Labels()
	out := make([]float64, len(s.r)-t)
	for i := t; i < len(s.r); i++ {
		sign := 1.0
		if labels[i] < 0 {
			sign = -1.0
		}
		out[i-t] = sign * s.r[i]
	}
	return out
}

// normSquaredFromAlphaR computes ||w||^2 = sum_i alpha_i*r_i over the
// training range, the shared formula behind every variant's
// NormSquared() accessor (testable property in SPEC_FULL.md §8).
func (s *state) normSquaredFromAlphaR() float64 {
	var sum float64
	for i, a := range s.alpha {
		sum += a * s.r[i]
	}
	return sum
}

// recalculate rebuilds r from alpha exactly via the kernel, correcting
// any drift accumulated over a long run of incremental SetAlpha calls.
// Callers must mark their derived scalars dirty afterward.
func (s *state) recalculate() error {
	return s.kernel.RecalculateResponses(s.alpha, s.r)
}

// evaluate delegates to the kernel's external-vector evaluation.
func (s *state) evaluate(x vector.Vector) (float64, error) {
	return s.kernel.Evaluate(x, s.alpha)
}

// Optimizer is the shared contract implemented by every variant
// (SMO, Perceptron, SBP, Sparsifier, each biased/unbiased).
type Optimizer interface {
	// TrainingSize returns T.
	TrainingSize() int
	// ValidationSize returns N-T.
	ValidationSize() int
	// GetAlphas returns a copy of the training alpha vector the variant
	// reports (normalized for Perceptron, averaged for SBP, raw otherwise).
	GetAlphas() []float64
	// Bias returns the lazily-computed bias term (0 for unbiased
	// variants).
	Bias() float64
	// NormSquared returns the lazily-computed ||w||^2.
	NormSquared() float64
	// GetValidationResponses returns r (or -r per label sign) over the
	// validation range, for computing validation accuracy/AUC.
	GetValidationResponses() []float64
	// Evaluate returns the classifier's output on an external vector x,
	// using the variant's reported alphas (normalized or averaged where
	// the variant does so) plus the bias for biased variants.
	Evaluate(rng prng.Source, x vector.Vector) (float64, error)
	// Iterate performs one coordinate-style update step.
	Iterate(rng prng.Source) error
	// Recalculate rebuilds r from alpha exactly and marks derived
	// scalars dirty.
	Recalculate() error
	// Iterations returns the number of completed Iterate calls.
	Iterations() int
	// Snapshot returns copies of the raw alpha, raw response vector,
	// and iteration counter for serialization; the counterpart of
	// Restore.
	Snapshot() (alpha, responses []float64, iterations int)
	// Restore overwrites alpha, r, and the iteration counter from a
	// previously serialized snapshot (model.Archive) and marks derived
	// scalars dirty. Lengths must be exactly T and N.
	Restore(alpha, r []float64, iterations int) error
	// Support returns the indices i with alpha_i != 0, their alpha
	// values, and the shared bias, for rendering the support-set text
	// format (dataset.WriteSupport).
	Support() (indices []int, alphas []float64, bias float64)
}

// dirty is the NaN sentinel marking a derived scalar as needing
// recomputation, per SPEC_FULL.md §4.4.6.
var dirty = math.NaN()

func isDirty(v float64) bool { return math.IsNaN(v) }

// clamp restricts v to [lo,hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// supportFromAlpha is the shared Support() implementation: every
// variant that stores a plain alpha vector (all but Perceptron's
// normalized report) can use it directly.
func supportFromAlpha(alpha []float64, bias float64) (indices []int, alphas []float64, b float64) {
	for i, a := range alpha {
		if a != 0 {
			indices = append(indices, i)
			alphas = append(alphas, a)
		}
	}
	return indices, alphas, bias
}
