package optimizer

import (
	"math"

	"github.com/katalvlaran/issvm/kernel"
	"github.com/katalvlaran/issvm/prng"
	"github.com/katalvlaran/issvm/vector"
	"github.com/katalvlaran/issvm/waterlevel"
)

// Sparsifier approximates a pre-trained dense classifier with a sparse
// alpha supported on few training examples (§4.4.5): given the dense
// model's raw training-point predictions g, it pushes the responses of
// under-matched support points toward their clipped targets
// min(1,y_i*g_i), subject to a norm-squared budget W^2.
type Sparsifier struct {
	*state
	biased   bool
	wSquared float64
	eta      float64
	epsilon  float64
	kMax     float64
	target   []float64 // g[0..T)

	normSq   float64 // NaN = dirty
	kappaSum float64 // NaN = dirty; 0.5*(kappaPlus+kappaMinus), biased only
	bias     float64 // NaN = dirty; biased only
	lastGap  float64
}

// NewSparsifier constructs a Sparsifier targeting norm^2 wSquared with
// step size eta and tolerance epsilon, matching the dense classifier's
// per-training-point predictions target (length must equal k.TrainingSize()).
func NewSparsifier(k *kernel.Engine, biased bool, wSquared, eta, epsilon float64, target []float64) (*Sparsifier, error) {
	if k == nil {
		return nil, ErrNilKernel
	}
	if k.TrainingSize() == 0 {
		return nil, ErrNoTrainingExamples
	}
	if wSquared <= 0 {
		return nil, ErrBadWSquared
	}
	if eta <= 0 {
		return nil, ErrBadEta
	}
	if epsilon < 0 {
		return nil, ErrBadEpsilon
	}
	if len(target) != k.TrainingSize() {
		return nil, ErrTargetLengthMismatch
	}
	g := make([]float64, len(target))
	copy(g, target)
	return &Sparsifier{
		state:    newState(k),
		biased:   biased,
		wSquared: wSquared,
		eta:      eta,
		epsilon:  epsilon,
		kMax:     k.MaxTrainingDiagonal(),
		target:   g,

		normSq:   dirty,
		kappaSum: dirty,
		bias:     dirty,
	}, nil
}

// Restore overwrites alpha, r, and the iteration counter from a
// serialized snapshot and invalidates every derived scalar. lastGap
// restarts at 0; the driver's warm start (at least two iterations
// before consulting LastGap) makes the restart value unobservable.
func (o *Sparsifier) Restore(alpha, r []float64, iterations int) error {
	if err := o.restore(alpha, r, iterations); err != nil {
		return err
	}
	o.lastGap = 0
	o.markDirty()
	return nil
}

func (o *Sparsifier) markDirty() {
	o.normSq, o.kappaSum, o.bias = dirty, dirty, dirty
}

// NormSquared returns ||w||^2 = sum_i alpha_i*r_i (<=W^2 after any
// projection).
func (o *Sparsifier) NormSquared() float64 {
	if isDirty(o.normSq) {
		o.normSq = o.normSquaredFromAlphaR()
	}
	return o.normSq
}

// LastGap returns the step size (or, after a projection, the largest
// single-coordinate change the projection caused) of the most recent
// Iterate call — the external driver's stopping signal.
func (o *Sparsifier) LastGap() float64 { return o.lastGap }

// freshenBias computes (kappaPlus,kappaMinus) from the *current*
// water-level computation over the margin-oriented support responses,
// with total slack 0 — the degenerate case that returns the tightest
// (min-of-each-side) threshold, i.e. the classic "midpoint between the
// closest correctly-classified support points on each side" bias
// estimator. This total is not made explicit in SPEC_FULL.md §4.4.5;
// using 0 is the documented resolution in DESIGN.md.
func (o *Sparsifier) freshenBias() {
	if !o.biased {
		return
	}
	if !isDirty(o.bias) {
		return
	}
	labels := o.kernel.Labels()
	t := o.TrainingSize()
	p, q, _, _ := marginArrays(labels, o.r, t)
	if len(p) == 0 || len(q) == 0 {
		o.bias, o.kappaSum = 0, 0
		return
	}
	kappaPlus, kappaMinus := waterlevel.Biased(p, q, 0)
	o.kappaSum = 0.5 * (kappaPlus + kappaMinus)
	o.bias = 0.5 * (kappaPlus - kappaMinus)
}

// Bias returns 0 for the unbiased variant, or the lazily-computed
// current-water-level bias for the biased variant.
func (o *Sparsifier) Bias() float64 {
	if !o.biased {
		return 0
	}
	o.freshenBias()
	return o.bias
}

// noCandidate is the sentinel index meaning "no support index's slack
// exceeded epsilon", per SPEC_FULL.md §4.4.5's "both = T means no
// candidate" rule.
func (o *Sparsifier) noCandidate() int { return o.TrainingSize() }

// Iterate performs one Sparsifier step (§4.4.5): scans every training
// index against its target slack (biased: one per side; unbiased: a
// single global worst), applies a fixed-size step through SetAlpha,
// then projects back onto the ||w||^2<=W^2 ball. Unlike the other
// variants, alpha starts at all zero and Iterate itself grows the
// support; it does not require a pre-existing nonzero alpha.
func (o *Sparsifier) Iterate(_ prng.Source) error {
	if o.biased {
		return o.iterateBiased()
	}
	return o.iterateUnbiased()
}

func (o *Sparsifier) iterateBiased() error {
	labels := o.kernel.Labels()
	t := o.TrainingSize()
	none := o.noCandidate()
	posIdx, negIdx := none, none
	bestPos, bestNeg := o.epsilon, o.epsilon

	for i := 0; i < t; i++ {
		if labels[i] > 0 {
			target := math.Min(1, o.target[i])
			if target <= 0 {
				continue
			}
			slack := target - o.r[i]
			if slack > bestPos {
				bestPos = slack
				posIdx = i
			}
		} else {
			target := math.Min(1, -o.target[i])
			if target <= 0 {
				continue
			}
			slack := target + o.r[i]
			if slack > bestNeg {
				bestNeg = slack
				negIdx = i
			}
		}
	}

	if posIdx == none && negIdx == none {
		o.lastGap = 0
		return nil
	}

	etaEff := o.eta / o.kMax
	if posIdx != none {
		if err := o.kernel.SetAlpha(o.alpha, o.r, posIdx, o.alpha[posIdx]+etaEff); err != nil {
			return err
		}
	}
	if negIdx != none {
		if err := o.kernel.SetAlpha(o.alpha, o.r, negIdx, o.alpha[negIdx]-etaEff); err != nil {
			return err
		}
	}
	o.iter++
	o.lastGap = etaEff
	o.markDirty()
	o.project()
	return nil
}

func (o *Sparsifier) iterateUnbiased() error {
	labels := o.kernel.Labels()
	t := o.TrainingSize()
	none := o.noCandidate()
	worstIdx := none
	best := o.epsilon

	for i := 0; i < t; i++ {
		target := math.Min(1, labels[i]*o.target[i])
		slack := target - labels[i]*o.r[i]
		if slack > best {
			best = slack
			worstIdx = i
		}
	}

	if worstIdx == none {
		o.lastGap = 0
		return nil
	}

	etaEff := o.eta / o.kMax
	step := etaEff
	if labels[worstIdx] < 0 {
		step = -etaEff
	}
	if err := o.kernel.SetAlpha(o.alpha, o.r, worstIdx, o.alpha[worstIdx]+step); err != nil {
		return err
	}
	o.iter++
	o.lastGap = etaEff
	o.markDirty()
	o.project()
	return nil
}

// project scales alpha and r down to exactly W^2 whenever the current
// ||w||^2 exceeds it, recording the largest single-coordinate absolute
// change the projection caused as the step's gap (superseding the
// pre-projection etaEff gap recorded by the caller).
func (o *Sparsifier) project() {
	n2 := o.normSquaredFromAlphaR()
	if n2 <= o.wSquared {
		o.normSq = n2
		return
	}
	s := math.Sqrt(o.wSquared / n2)
	maxChange := 0.0
	for _, a := range o.alpha {
		change := absf((1 - s) * a)
		if change > maxChange {
			maxChange = change
		}
	}
	for i := range o.alpha {
		o.alpha[i] *= s
	}
	for i := range o.r {
		o.r[i] *= s
	}
	o.normSq = o.wSquared
	o.lastGap = maxChange
}

// Evaluate returns the raw classifier output on x, plus bias for the
// biased variant.
func (o *Sparsifier) Evaluate(_ prng.Source, x vector.Vector) (float64, error) {
	v, err := o.evaluate(x)
	if err != nil {
		return 0, err
	}
	return v + o.Bias(), nil
}

// Recalculate rebuilds r from alpha and invalidates derived scalars.
func (o *Sparsifier) Recalculate() error {
	if err := o.recalculate(); err != nil {
		return err
	}
	o.markDirty()
	return nil
}

// Support returns the nonzero-alpha support indices/values and bias.
func (o *Sparsifier) Support() ([]int, []float64, float64) {
	return supportFromAlpha(o.alpha, o.Bias())
}

// GetValidationResponses returns r (or -r per label) over validation,
// shifted by bias for the biased variant.
func (o *Sparsifier) GetValidationResponses() []float64 {
	out := o.getValidationResponses()
	if !o.biased {
		return out
	}
	b := o.Bias()
	labels := o.kernel.Labels()
	t := o.TrainingSize()
	for i := range out {
		sign := 1.0
		if labels[t+i] < 0 {
			sign = -1.0
		}
		out[i] += sign * b
	}
	return out
}
