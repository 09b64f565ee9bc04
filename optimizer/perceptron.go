package optimizer

import (
	"math"

	"github.com/katalvlaran/issvm/kernel"
	"github.com/katalvlaran/issvm/prng"
	"github.com/katalvlaran/issvm/vector"
)

// Perceptron implements the margin-tracking Norma-style update (§4.4.3):
// each iterate finds the worst-margin training example(s) and, if the
// scaled margin mu*sqrt(||w||^2) does not already dominate them, takes
// a unit step. The reported classifier is alpha/sqrt(||w||^2).
type Perceptron struct {
	*state
	biased bool
	mu     float64

	normSq      float64 // NaN = dirty
	kappaPlus   float64 // biased only
	kappaMinus  float64 // biased only
	kappaSingle float64 // unbiased only
}

// NewPerceptron constructs a Perceptron optimizer with margin
// parameter mu>0.
func NewPerceptron(k *kernel.Engine, biased bool, mu float64) (*Perceptron, error) {
	if k == nil {
		return nil, ErrNilKernel
	}
	if k.TrainingSize() == 0 {
		return nil, ErrNoTrainingExamples
	}
	if mu <= 0 {
		return nil, ErrBadMu
	}
	return &Perceptron{
		state:  newState(k),
		biased: biased,
		mu:     mu,

		normSq:      dirty,
		kappaPlus:   dirty,
		kappaMinus:  dirty,
		kappaSingle: dirty,
	}, nil
}

// Restore overwrites alpha, r, and the iteration counter from a
// serialized snapshot and invalidates every derived scalar.
func (o *Perceptron) Restore(alpha, r []float64, iterations int) error {
	if err := o.restore(alpha, r, iterations); err != nil {
		return err
	}
	o.markDirty()
	return nil
}

func (o *Perceptron) markDirty() {
	o.normSq, o.kappaPlus, o.kappaMinus, o.kappaSingle = dirty, dirty, dirty, dirty
}

// NormSquared returns ||w||^2 = sum_i alpha_i*r_i.
func (o *Perceptron) NormSquared() float64 {
	if isDirty(o.normSq) {
		o.normSq = o.normSquaredFromAlphaR()
	}
	return o.normSq
}

// worstMargins scans every training index and returns, for the biased
// variant, the worst positive-side margin (smallest r_i among
// positive-label i) and worst negative-side margin (largest r_j among
// negative-label j, i.e. smallest -r_j). The unbiased variant's single
// global worst margin y_i*r_i comes from worstMarginUnbiased.
func (o *Perceptron) worstMargins() (posIdx, negIdx int, kappaPlus, kappaMinus float64) {
	labels := o.kernel.Labels()
	t := o.TrainingSize()
	kappaPlus, kappaMinus = math.Inf(1), math.Inf(1)
	posIdx, negIdx = -1, -1
	worstNegR := math.Inf(-1)
	for i := 0; i < t; i++ {
		if labels[i] > 0 {
			if o.r[i] < kappaPlus {
				kappaPlus = o.r[i]
				posIdx = i
			}
		} else {
			if o.r[i] > worstNegR {
				worstNegR = o.r[i]
				negIdx = i
			}
		}
	}
	if negIdx >= 0 {
		kappaMinus = -worstNegR
	}
	return
}

func (o *Perceptron) worstMarginUnbiased() (idx int, kappa float64) {
	labels := o.kernel.Labels()
	t := o.TrainingSize()
	idx = -1
	kappa = math.Inf(1)
	for i := 0; i < t; i++ {
		margin := labels[i] * o.r[i]
		if margin < kappa {
			kappa = margin
			idx = i
		}
	}
	return
}

// Bias returns 0 for the unbiased variant, or -0.5*(kappaPlus-kappaMinus)
// for the biased variant, using the worst-margin search.
func (o *Perceptron) Bias() float64 {
	if !o.biased {
		return 0
	}
	o.freshenKappa()
	if math.IsInf(o.kappaPlus, 0) || math.IsInf(o.kappaMinus, 0) {
		return 0
	}
	return -0.5 * (o.kappaPlus - o.kappaMinus)
}

func (o *Perceptron) freshenKappa() {
	if o.biased {
		if isDirty(o.kappaPlus) {
			_, _, kp, km := o.worstMargins()
			o.kappaPlus, o.kappaMinus = kp, km
		}
		return
	}
	if isDirty(o.kappaSingle) {
		_, k := o.worstMarginUnbiased()
		o.kappaSingle = k
	}
}

// Iterate performs one Perceptron step: if the scaled margin already
// dominates the worst-case example(s), no step is taken.
func (o *Perceptron) Iterate(_ prng.Source) error {
	threshold := o.mu * math.Sqrt(o.NormSquared())
	labels := o.kernel.Labels()

	if o.biased {
		posIdx, negIdx, kappaPlus, kappaMinus := o.worstMargins()
		if posIdx < 0 || negIdx < 0 {
			return nil
		}
		if threshold > kappaPlus+kappaMinus {
			return nil
		}
		if err := o.kernel.SetAlpha(o.alpha, o.r, posIdx, o.alpha[posIdx]+1); err != nil {
			return err
		}
		if err := o.kernel.SetAlpha(o.alpha, o.r, negIdx, o.alpha[negIdx]-1); err != nil {
			return err
		}
		o.iter++
		o.markDirty()
		return nil
	}

	idx, kappa := o.worstMarginUnbiased()
	if idx < 0 {
		return nil
	}
	if threshold > kappa {
		return nil
	}
	step := 1.0
	if labels[idx] < 0 {
		step = -1.0
	}
	if err := o.kernel.SetAlpha(o.alpha, o.r, idx, o.alpha[idx]+step); err != nil {
		return err
	}
	o.iter++
	o.markDirty()
	return nil
}

// normalizer returns 1/sqrt(||w||^2), or 0 if ||w||^2 is 0 (no support
// yet — the reported classifier is then identically 0).
func (o *Perceptron) normalizer() float64 {
	n2 := o.NormSquared()
	if n2 <= 0 {
		return 0
	}
	return 1 / math.Sqrt(n2)
}

// Evaluate returns alpha/sqrt(||w||^2) dotted with k(x,.), plus bias for
// the biased variant.
func (o *Perceptron) Evaluate(_ prng.Source, x vector.Vector) (float64, error) {
	v, err := o.evaluate(x)
	if err != nil {
		return 0, err
	}
	out := v * o.normalizer()
	if o.biased {
		out += o.Bias()
	}
	return out, nil
}

// Recalculate rebuilds r from alpha and invalidates derived scalars.
func (o *Perceptron) Recalculate() error {
	if err := o.recalculate(); err != nil {
		return err
	}
	o.markDirty()
	return nil
}

// GetAlphas returns the reported classifier's coefficients,
// alpha/sqrt(||w||^2), not the raw internal alpha — consistent with
// "the reported classifier is alpha/sqrt(||w||^2)" in SPEC_FULL.md
// §4.4.3.
func (o *Perceptron) GetAlphas() []float64 {
	raw := o.state.GetAlphas()
	n := o.normalizer()
	for i := range raw {
		raw[i] *= n
	}
	return raw
}

// Support returns the reported (normalized) support coefficients.
func (o *Perceptron) Support() ([]int, []float64, float64) {
	return supportFromAlpha(o.GetAlphas(), o.Bias())
}

// GetValidationResponses returns the normalized, signed validation
// responses, shifted by bias for the biased variant.
func (o *Perceptron) GetValidationResponses() []float64 {
	out := o.getValidationResponses()
	n := o.normalizer()
	labels := o.kernel.Labels()
	t := o.TrainingSize()
	b := 0.0
	if o.biased {
		b = o.Bias()
	}
	for i := range out {
		out[i] *= n
		if o.biased {
			sign := 1.0
			if labels[t+i] < 0 {
				sign = -1.0
			}
			out[i] += sign * b
		}
	}
	return out
}
