package optimizer

import (
	"github.com/katalvlaran/issvm/kernel"
	"github.com/katalvlaran/issvm/prng"
	"github.com/katalvlaran/issvm/vector"
)

// SMO implements the L2-regularized hinge-loss single-coordinate update
// (unbiased, §4.4.1) and its pair-update, bias-carrying extension
// (biased, §4.4.2). Both variants share one struct with a biased flag,
// mirroring kernel.Engine's Kind-flag design rather than a type per
// variant (SPEC_FULL.md §3).
type SMO struct {
	*state
	biased bool
	lambda float64
	upper  float64 // box bound, 1/(lambda*T)

	bias        float64 // NaN = dirty
	normSq      float64
	avgLoss     float64
	sumAbsAlpha float64
}

// NewSMO constructs an SMO optimizer over k with L2 regularization
// lambda>0. biased selects the pair-update, bias-carrying variant.
func NewSMO(k *kernel.Engine, biased bool, lambda float64) (*SMO, error) {
	if k == nil {
		return nil, ErrNilKernel
	}
	if k.TrainingSize() == 0 {
		return nil, ErrNoTrainingExamples
	}
	if lambda <= 0 {
		return nil, ErrBadLambda
	}
	return &SMO{
		state:  newState(k),
		biased: biased,
		lambda: lambda,
		upper:  1 / (lambda * float64(k.TrainingSize())),

		bias:        dirty,
		normSq:      dirty,
		avgLoss:     dirty,
		sumAbsAlpha: dirty,
	}, nil
}

// Restore overwrites alpha, r, and the iteration counter from a
// serialized snapshot and invalidates every derived scalar.
func (o *SMO) Restore(alpha, r []float64, iterations int) error {
	if err := o.restore(alpha, r, iterations); err != nil {
		return err
	}
	o.markDirty()
	return nil
}

func (o *SMO) markDirty() {
	o.bias, o.normSq, o.avgLoss, o.sumAbsAlpha = dirty, dirty, dirty, dirty
}

// Bias returns 0 for the unbiased variant, or the lazily-computed mean
// of (y_i-r_i) over strictly-interior support indices (0<|alpha_i|<upper)
// for the biased variant.
func (o *SMO) Bias() float64 {
	if !o.biased {
		return 0
	}
	if isDirty(o.bias) {
		o.freshen()
	}
	return o.bias
}

// NormSquared returns ||w||^2 = sum_i alpha_i*r_i.
func (o *SMO) NormSquared() float64 {
	if isDirty(o.normSq) {
		o.freshen()
	}
	return o.normSq
}

// AverageLoss returns the lazily-computed (1/T)*sum_i max(0,1-y_i*(r_i+b)).
func (o *SMO) AverageLoss() float64 {
	if isDirty(o.avgLoss) {
		o.freshen()
	}
	return o.avgLoss
}

// SumAbsAlpha returns the lazily-computed sum_i |alpha_i|.
func (o *SMO) SumAbsAlpha() float64 {
	if isDirty(o.sumAbsAlpha) {
		o.freshen()
	}
	return o.sumAbsAlpha
}

// Primal returns 0.5*lambda*||w||^2 + AverageLoss().
func (o *SMO) Primal() float64 {
	return 0.5*o.lambda*o.NormSquared() + o.AverageLoss()
}

func (o *SMO) freshen() {
	labels := o.kernel.Labels()
	var sumAbs, lossSum, interiorSum float64
	var interiorCount int
	b := 0.0
	if o.biased {
		// First pass: compute bias from interior support (needed before
		// loss can be evaluated at r_i+b).
		for i, a := range o.alpha {
			sumAbs += absf(a)
			if absf(a) > 0 && absf(a) < o.upper {
				interiorSum += labels[i] - o.r[i]
				interiorCount++
			}
		}
		if interiorCount > 0 {
			b = interiorSum / float64(interiorCount)
		}
	} else {
		for _, a := range o.alpha {
			sumAbs += absf(a)
		}
	}
	for i, y := range labels[:len(o.alpha)] {
		margin := y * (o.r[i] + b)
		loss := 1 - margin
		if loss > 0 {
			lossSum += loss
		}
	}
	o.bias = b
	o.sumAbsAlpha = sumAbs
	o.avgLoss = lossSum / float64(len(o.alpha))
	o.normSq = o.normSquaredFromAlphaR()
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// clipSigned restricts v to [0,upper] when y>0, or [-upper,0] when y<0 —
// the unbiased SMO box |alpha_i|<=upper with sign(alpha_i)=y_i.
func clipSigned(v, y, upper float64) float64 {
	if y > 0 {
		return clamp(v, 0, upper)
	}
	return clamp(v, -upper, 0)
}

// Iterate performs one SMO update: unbiased scans every training index
// for the single best-gain coordinate move (§4.4.1); biased performs
// the two-variable pair update (§4.4.2).
func (o *SMO) Iterate(_ prng.Source) error {
	if o.biased {
		return o.iterateBiased()
	}
	return o.iterateUnbiased()
}

func (o *SMO) iterateUnbiased() error {
	labels := o.kernel.Labels()
	t := o.TrainingSize()
	bestGain := 0.0
	bestI := -1
	bestNew := 0.0
	for i := 0; i < t; i++ {
		diag, err := o.kernel.Diagonal(i)
		if err != nil {
			return err
		}
		if diag == 0 {
			continue
		}
		grad := labels[i] - o.r[i]
		delta := grad / diag
		newAlpha := clipSigned(o.alpha[i]+delta, labels[i], o.upper)
		actualDelta := newAlpha - o.alpha[i]
		gain := actualDelta * (grad - 0.5*actualDelta*diag)
		if gain > bestGain {
			bestGain = gain
			bestI = i
			bestNew = newAlpha
		}
	}
	if bestI < 0 {
		return nil
	}
	if err := o.kernel.SetAlpha(o.alpha, o.r, bestI, bestNew); err != nil {
		return err
	}
	o.iter++
	o.markDirty()
	return nil
}

func (o *SMO) iterateBiased() error {
	labels := o.kernel.Labels()
	t := o.TrainingSize()

	// index1: argmax |y_i-r_i| among indices with a feasible update
	// direction (not already pinned against the box in the direction
	// the gradient wants to move it).
	index1 := -1
	best := 0.0
	for i := 0; i < t; i++ {
		grad := labels[i] - o.r[i]
		if grad > 0 && o.alpha[i] >= o.upper {
			continue // already at upper bound, can't increase further
		}
		if grad < 0 && o.alpha[i] <= -o.upper {
			continue // already at lower bound, can't decrease further
		}
		if absf(grad) > best {
			best = absf(grad)
			index1 = i
		}
	}
	if index1 < 0 {
		return nil
	}

	row1, err := o.kernel.Row(index1)
	if err != nil {
		return err
	}
	defer row1.Release()

	k11, err := o.kernel.Diagonal(index1)
	if err != nil {
		return err
	}
	grad1 := labels[index1] - o.r[index1]
	alpha1 := o.alpha[index1]

	index2 := -1
	bestGain := 0.0
	bestDelta := 0.0
	for j := 0; j < t; j++ {
		if j == index1 {
			continue
		}
		k22, err := o.kernel.Diagonal(j)
		if err != nil {
			return err
		}
		k12 := row1.Data[j]
		denom := k11 + k22 - 2*k12
		if denom <= 0 {
			continue
		}
		grad2 := labels[j] - o.r[j]
		numerator := grad1 - grad2
		delta := clamp(numerator/denom, -o.upper, o.upper)

		alpha2 := o.alpha[j]
		lo1, hi1 := -o.upper-alpha1, o.upper-alpha1
		lo2, hi2 := alpha2-o.upper, alpha2+o.upper
		lo, hi := lo1, hi1
		if lo2 > lo {
			lo = lo2
		}
		if hi2 < hi {
			hi = hi2
		}
		delta = clamp(delta, lo, hi)

		gain := delta * (numerator - 0.5*delta*denom)
		if gain > bestGain {
			bestGain = gain
			index2 = j
			bestDelta = delta
		}
	}
	if index2 < 0 {
		return nil
	}

	newAlpha1 := alpha1 + bestDelta
	newAlpha2 := o.alpha[index2] - bestDelta

	if err := o.kernel.SetAlphaWithRow(o.alpha, o.r, index1, newAlpha1, row1.Data); err != nil {
		return err
	}
	if err := o.kernel.SetAlpha(o.alpha, o.r, index2, newAlpha2); err != nil {
		return err
	}
	o.iter++
	o.markDirty()
	return nil
}

// Evaluate returns the raw classifier output on x, plus bias for the
// biased variant.
func (o *SMO) Evaluate(_ prng.Source, x vector.Vector) (float64, error) {
	v, err := o.evaluate(x)
	if err != nil {
		return 0, err
	}
	return v + o.Bias(), nil
}

// Recalculate rebuilds r from alpha and invalidates derived scalars.
func (o *SMO) Recalculate() error {
	if err := o.recalculate(); err != nil {
		return err
	}
	o.markDirty()
	return nil
}

// Support returns the nonzero-alpha support indices/values and bias.
func (o *SMO) Support() ([]int, []float64, float64) {
	return supportFromAlpha(o.alpha, o.Bias())
}

// GetValidationResponses returns r (or -r per label) over validation,
// shifted by bias for the biased variant.
func (o *SMO) GetValidationResponses() []float64 {
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
