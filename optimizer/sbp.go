package optimizer

import (
	"math"

	"github.com/katalvlaran/issvm/kernel"
	"github.com/katalvlaran/issvm/numsum"
	"github.com/katalvlaran/issvm/prng"
	"github.com/katalvlaran/issvm/vector"
	"github.com/katalvlaran/issvm/waterlevel"
)

// SBP implements the Stochastic Batch Perceptron (§4.4.4): each iterate
// computes a water level over the current responses with slack budget
// nu*T, samples uniformly from the below-threshold indices on each
// side, takes a step of size eta = f(k_max, iteration), and projects
// alpha/r back inside the unit ball. The running alpha/r sums (via
// numsum.Sum) accumulate every iterate's snapshot for the reported,
// averaged classifier.
//
// "iterations" in the step-size formulas (SPEC_FULL.md §4.4.4) is read
// as the 1-based count of completed Iterate calls (this call included),
// avoiding a division by zero on the biased variant's first call.
type SBP struct {
	*state
	biased bool
	nu     float64
	kMax   float64

	alphaSum *numsum.Sum
	rSum     *numsum.Sum

	normSq     float64 // NaN = dirty; running ||w||^2<=1 after projection
	kappaTotal float64 // NaN = dirty
	biasCache  float64 // NaN = dirty
}

// NewSBP constructs an SBP optimizer with rate parameter nu in (0,1).
func NewSBP(k *kernel.Engine, biased bool, nu float64) (*SBP, error) {
	if k == nil {
		return nil, ErrNilKernel
	}
	if k.TrainingSize() == 0 {
		return nil, ErrNoTrainingExamples
	}
	if nu <= 0 || nu >= 1 {
		return nil, ErrBadNu
	}
	return &SBP{
		state:  newState(k),
		biased: biased,
		nu:     nu,
		kMax:   k.MaxTrainingDiagonal(),

		alphaSum: numsum.New(k.TrainingSize()),
		rSum:     numsum.New(k.Size()),

		normSq:     dirty,
		kappaTotal: dirty,
		biasCache:  dirty,
	}, nil
}

// Restore overwrites alpha, r, and the iteration counter from a
// serialized snapshot and invalidates every derived scalar. The model
// archive stores only the current iterate, not the running-average
// accumulators, so the averaged classifier restarts as iterations
// copies of the restored snapshot (one scaled Add) — the averaged
// report stays continuous with the restored state; see DESIGN.md.
func (o *SBP) Restore(alpha, r []float64, iterations int) error {
	if err := o.restore(alpha, r, iterations); err != nil {
		return err
	}
	o.alphaSum = numsum.New(len(o.alpha))
	o.rSum = numsum.New(len(o.r))
	if iterations > 0 {
		scaled := make([]float64, len(o.alpha))
		for i, v := range o.alpha {
			scaled[i] = v * float64(iterations)
		}
		o.alphaSum.Add(scaled)
		scaledR := make([]float64, len(o.r))
		for i, v := range o.r {
			scaledR[i] = v * float64(iterations)
		}
		o.rSum.Add(scaledR)
	}
	o.markDirty()
	return nil
}

func (o *SBP) markDirty() {
	o.normSq, o.kappaTotal, o.biasCache = dirty, dirty, dirty
}

// NormSquared returns the running ||w||^2 (<=1 after any projection).
func (o *SBP) NormSquared() float64 {
	if isDirty(o.normSq) {
		o.normSq = o.normSquaredFromAlphaR()
	}
	return o.normSq
}

// marginArrays splits the training responses into the positive-side
// and negative-side margin-oriented terrains used throughout this
// package: p_i = r_i for positive-label i, q_j = -r_j for
// negative-label j, so "larger is better" on both sides (matches the
// convention recovered from scenario 6's bias = -0.5*(kappaPlus-kappaMinus),
// see DESIGN.md).
func marginArrays(labels, r []float64, t int) (p, q []float64, pIdx, qIdx []int) {
	for i := 0; i < t; i++ {
		if labels[i] > 0 {
			p = append(p, r[i])
			pIdx = append(pIdx, i)
		} else {
			q = append(q, -r[i])
			qIdx = append(qIdx, i)
		}
	}
	return
}

// Iterate performs one SBP update: biased samples one positive-side and
// one negative-side index below the current water level; unbiased
// samples a single index below the unbiased water level.
func (o *SBP) Iterate(rng prng.Source) error {
	t := o.TrainingSize()
	labels := o.kernel.Labels()
	totalCurrent := o.nu * float64(t)

	if o.biased {
		p, q, pIdx, qIdx := marginArrays(labels, o.r, t)
		if len(p) == 0 || len(q) == 0 {
			return nil
		}
		kappaPlus, kappaMinus := waterlevel.Biased(p, q, totalCurrent)

		var belowP, belowQ []int
		for k, v := range p {
			if v < kappaPlus {
				belowP = append(belowP, pIdx[k])
			}
		}
		for k, v := range q {
			if v < kappaMinus {
				belowQ = append(belowQ, qIdx[k])
			}
		}
		if len(belowP) == 0 || len(belowQ) == 0 {
			return nil
		}
		posIdx := belowP[rng.UniformInt(len(belowP)-1)]
		negIdx := belowQ[rng.UniformInt(len(belowQ)-1)]

		o.iter++
		eta := 0.5 / math.Sqrt(o.kMax*float64(o.iter))

		if err := o.kernel.SetAlpha(o.alpha, o.r, posIdx, o.alpha[posIdx]+eta); err != nil {
			return err
		}
		if err := o.kernel.SetAlpha(o.alpha, o.r, negIdx, o.alpha[negIdx]-eta); err != nil {
			return err
		}
		o.project()
		o.accumulate()
		o.markDirty()
		return nil
	}

	margin := make([]float64, t)
	for i := 0; i < t; i++ {
		margin[i] = labels[i] * o.r[i]
	}
	kappa := waterlevel.Unbiased(margin, totalCurrent)
	var below []int
	for i, v := range margin {
		if v < kappa {
			below = append(below, i)
		}
	}
	if len(below) == 0 {
		return nil
	}
	idx := below[rng.UniformInt(len(below)-1)]

	o.iter++
	eta := 1 / math.Sqrt(o.kMax*float64(o.iter+1))
	step := eta
	if labels[idx] < 0 {
		step = -eta
	}
	if err := o.kernel.SetAlpha(o.alpha, o.r, idx, o.alpha[idx]+step); err != nil {
		return err
	}
	o.project()
	o.accumulate()
	o.markDirty()
	return nil
}

// project scales alpha and r by 1/sqrt(||w||^2) whenever ||w||^2
// exceeds 1, the unit-ball projection in SPEC_FULL.md §4.4.4 step 4.
func (o *SBP) project() {
	n2 := o.normSquaredFromAlphaR()
	if n2 <= 1 {
		o.normSq = n2
		return
	}
	s := 1 / math.Sqrt(n2)
	for i := range o.alpha {
		o.alpha[i] *= s
	}
	for i := range o.r {
		o.r[i] *= s
	}
	o.normSq = 1
}

func (o *SBP) accumulate() {
	o.alphaSum.Add(o.alpha)
	o.rSum.Add(o.r)
}

// kappaTotalAndBias re-runs the water-level solver on the accumulated
// (summed, not averaged) responses with the proportionally-scaled
// budget nu*T*iterations, per "Reported classifier: (sum_t alpha_t)/
// kappa_total" in SPEC_FULL.md §4.4.4 step 5.
func (o *SBP) kappaTotalAndBias() (kappaTotal, bias float64) {
	if o.iter == 0 {
		return 1, 0
	}
	t := o.TrainingSize()
	labels := o.kernel.Labels()
	rSum := o.rSum.Get()
	totalAveraged := o.nu * float64(t) * float64(o.iter)

	if o.biased {
		p, q, _, _ := marginArrays(labels, rSum, t)
		if len(p) == 0 || len(q) == 0 {
			return 1, 0
		}
		kp, km := waterlevel.Biased(p, q, totalAveraged)
		return 0.5 * (kp + km), -0.5 * (kp - km)
	}
	margin := make([]float64, t)
	for i := 0; i < t; i++ {
		margin[i] = labels[i] * rSum[i]
	}
	return waterlevel.Unbiased(margin, totalAveraged), 0
}

func (o *SBP) freshen() {
	if !isDirty(o.kappaTotal) {
		return
	}
	o.kappaTotal, o.biasCache = o.kappaTotalAndBias()
}

// Bias returns 0 for the unbiased variant, or the lazily-computed bias
// from the averaged classifier's water level.
func (o *SBP) Bias() float64 {
	if !o.biased {
		return 0
	}
	o.freshen()
	return o.biasCache
}

// reportedAlphas returns (sum_t alpha_t)/kappa_total, the averaged
// reported classifier.
func (o *SBP) reportedAlphas() []float64 {
	o.freshen()
	sum := o.alphaSum.Get()
	if o.kappaTotal == 0 {
		return sum
	}
	out := make([]float64, len(sum))
	for i, v := range sum {
		out[i] = v / o.kappaTotal
	}
	return out
}

// GetAlphas returns the averaged, kappa-normalized reported alpha.
func (o *SBP) GetAlphas() []float64 { return o.reportedAlphas() }

// Support returns the averaged reported support.
func (o *SBP) Support() ([]int, []float64, float64) {
	return supportFromAlpha(o.reportedAlphas(), o.Bias())
}

// GetValidationResponses returns the averaged, kappa-normalized,
// signed validation responses, shifted by bias for the biased variant.
func (o *SBP) GetValidationResponses() []float64 {
	o.freshen()
	t := o.TrainingSize()
	labels := o.kernel.Labels()
	rSum := o.rSum.Get()
	out := make([]float64, len(rSum)-t)
	k := o.kappaTotal
	if k == 0 {
		k = 1
	}
	for i := t; i < len(rSum); i++ {
		sign := 1.0
		if labels[i] < 0 {
			sign = -1.0
		}
		out[i-t] = sign*rSum[i]/k + sign*o.biasCache
	}
	return out
}

// Evaluate returns the averaged reported classifier's output on x.
func (o *SBP) Evaluate(_ prng.Source, x vector.Vector) (float64, error) {
	alphas := o.reportedAlphas()
	v, err := o.kernel.Evaluate(x, alphas)
	if err != nil {
		return 0, err
	}
	return v + o.Bias(), nil
}

// Recalculate rebuilds r from alpha and invalidates derived scalars.
// The running alpha/r accumulators are left untouched: they represent
// the history of past iterates, which recalculation of the current r
// does not revise.
func (o *SBP) Recalculate() error {
	if err := o.recalculate(); err != nil {
		return err
	}
	o.markDirty()
	return nil
}
