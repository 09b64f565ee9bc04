// Package numsum provides a hierarchical accumulator for summing a long
// sequence of length-N vectors with bounded per-element round-off error,
// used by the Stochastic Batch Perceptron optimizer to maintain its
// running alpha and response averages.
//
// Plain running sums accumulate O(K) round-off error over K additions.
// Sum instead cascades into tiers of TERMS additions each, bounding the
// error to O(log_TERMS(K)) — the same "bounded, tiered storage for a
// running computation" discipline the teacher's dtw package applies to
// its DP memory modes.
package numsum

// TERMS is the number of additions a tier absorbs before cascading into
// the next tier.
const TERMS = 256

// Sum accumulates a sequence of length-N float64 vectors. Add is O(N)
// amortized; Get is O(N * tiers), tiers growing as O(log_TERMS(K)) for
// K calls to Add.
type Sum struct {
	n      int
	tiers  [][]float64
	counts []int
}

// New returns a Sum ready to accumulate vectors of length n.
func New(n int) *Sum {
	return &Sum{n: n}
}

// Add folds v (length n) into the accumulator. Panics if len(v) != n.
func (s *Sum) Add(v []float64) {
	if len(v) != s.n {
		panic("numsum: Add: length mismatch")
	}
	s.ensureTier(0)
	tier := 0
	for {
		acc := s.tiers[tier]
		for i := 0; i < s.n; i++ {
			acc[i] += v[i]
		}
		s.counts[tier]++
		if s.counts[tier] < TERMS {
			return
		}
		// Cascade: reset this tier, carry its full value into the next.
		carried := make([]float64, s.n)
		copy(carried, acc)
		for i := range acc {
			acc[i] = 0
		}
		s.counts[tier] = 0
		tier++
		s.ensureTier(tier)
		v = carried
	}
}

// ensureTier grows the tier list so index idx is valid.
func (s *Sum) ensureTier(idx int) {
	for len(s.tiers) <= idx {
		s.tiers = append(s.tiers, make([]float64, s.n))
		s.counts = append(s.counts, 0)
	}
}

// Get materializes the accumulated total by cascading all tiers into a
// single fresh buffer. Does not mutate the accumulator.
func (s *Sum) Get() []float64 {
	out := make([]float64, s.n)
	for _, tier := range s.tiers {
		for i := 0; i < s.n; i++ {
			out[i] += tier[i]
		}
	}
	return out
}

// Reset clears all accumulated state, retaining the configured length.
func (s *Sum) Reset() {
	s.tiers = nil
	s.counts = nil
}
