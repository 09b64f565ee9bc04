// Package waterlevel implements the volume-preserving threshold search
// used by the SBP and Sparsifier optimizers: given a "terrain" of response
// values and a total slack budget, find the water surface level that
// pours exactly that much volume onto the terrain.
//
// Unbiased: find kappa such that
//
//	sum(max(0, kappa - a_i)) == total
//
// (total<=0 degenerates to min(a), per the spec).
//
// Biased: given positive-side and negative-side terrains p, q and a
// shared total budget, find (kappaPlus, kappaMinus) maximizing
// (kappaPlus+kappaMinus)/2 subject to the combined slack constraint and
// equal index counts below each side's threshold.
package waterlevel

import (
	"math"
	"sort"
)

// Unbiased returns the water level kappa covering terrain a with volume
// total: the unique kappa such that sum(max(0,kappa-a_i)) == total, with
// total<=0 returning min(a). a must be non-empty.
//
// Implementation: sort a ascending, then scan candidate covered-counts
// k=1..n; for a fixed k the only self-consistent kappa is
// (total+prefix[k])/k, and the correct k is the one for which that
// kappa falls in [sorted[k-1], sorted[k]) (sorted[n] treated as +Inf).
// This is the sorted-scan equivalent of the spec's quickselect-style
// partition descent (see SPEC_FULL.md §4.3).
//
// Complexity: O(n log n).
func Unbiased(a []float64, total float64) float64 {
	n := len(a)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), a...)
	sort.Float64s(sorted)

	if total <= 0 {
		return sorted[0]
	}

	var prefix float64
	for k := 1; k <= n; k++ {
		prefix += sorted[k-1]
		kappa := (total + prefix) / float64(k)
		upper := math.Inf(1)
		if k < n {
			upper = sorted[k]
		}
		if kappa >= sorted[k-1] && kappa <= upper {
			return kappa
		}
	}
	// Unreachable for finite total and non-empty a: the k==n case has
	// upper==+Inf and kappa>=sorted[n-1] always holds since total>0.
	return sorted[n-1]
}

// Biased returns (kappaPlus, kappaMinus) maximizing (kappaPlus+kappaMinus)/2
// subject to:
//
//	sum(max(0,kappaPlus-p_i)) + sum(max(0,kappaMinus-q_j)) == total
//
// and equal index counts among p and q below their respective
// thresholds. p and q may be empty.
//
// Implementation mirrors Unbiased: scan the shared covered-count
// k=1..min(len(p),len(q)); for a fixed k the combined budget equation
// fixes S = kappaPlus+kappaMinus = (total+prefixP[k]+prefixQ[k])/k, and
// k is valid when S fits within [pLower+qLower, pUpper+qUpper]. The
// budget is then split as evenly as possible between kappaPlus and
// kappaMinus, clamped to each side's [lower,upper] pivot bounds — the
// "delta bounded by the next-larger element" rule in the spec.
//
// Complexity: O((m+n) log(m+n)).
func Biased(p, q []float64, total float64) (kappaPlus, kappaMinus float64) {
	sp := append([]float64(nil), p...)
	sq := append([]float64(nil), q...)
	sort.Float64s(sp)
	sort.Float64s(sq)
	m, n := len(sp), len(sq)

	maxK := m
	if n < maxK {
		maxK = n
	}

	if total <= 0 {
		lo := bound(sp, 0)
		lo2 := bound(sq, 0)
		if math.IsInf(lo, -1) {
			lo = 0
		}
		if math.IsInf(lo2, -1) {
			lo2 = 0
		}
		return lo, lo2
	}

	// k==0 cannot exhaust a positive total (nothing is below either
	// threshold), so the scan starts at one covered element per side.
	var prefixP, prefixQ float64
	for k := 1; k <= maxK; k++ {
		prefixP += sp[k-1]
		prefixQ += sq[k-1]
		pLower, pUpper := pivotBounds(sp, k)
		qLower, qUpper := pivotBounds(sq, k)

		s := (total + prefixP + prefixQ) / float64(k)

		if s >= pLower+qLower && s <= pUpper+qUpper {
			return split(s, pLower, pUpper, qLower, qUpper)
		}
	}
	// Fallback: use the full-coverage pivot (always feasible for
	// total>0 since both uppers are +Inf there).
	pLower, pUpper := pivotBounds(sp, maxK)
	qLower, qUpper := pivotBounds(sq, maxK)
	s := (total + prefixP + prefixQ) / float64(maxOne(maxK))
	return split(s, pLower, pUpper, qLower, qUpper)
}

// pivotBounds returns the [lower,upper] window a threshold must fall in
// to have exactly k elements of sorted strictly below it: lower is the
// k-th smallest element (or -Inf if k==0), upper is the (k+1)-th
// smallest (or +Inf if k==len(sorted)).
func pivotBounds(sorted []float64, k int) (lower, upper float64) {
	lower = bound(sorted, k-1)
	upper = bound(sorted, k)
	return
}

// bound returns sorted[idx] if in range, -Inf below the array, or +Inf
// above it.
func bound(sorted []float64, idx int) float64 {
	if idx < 0 {
		return math.Inf(-1)
	}
	if idx >= len(sorted) {
		return math.Inf(1)
	}
	return sorted[idx]
}

func maxOne(k int) int {
	if k == 0 {
		return 1
	}
	return k
}

// split divides budget s between kappaPlus and kappaMinus as evenly as
// possible while respecting each side's [lower,upper] pivot bounds.
func split(s, pLower, pUpper, qLower, qUpper float64) (kappaPlus, kappaMinus float64) {
	half := s / 2
	kappaPlus = clamp(half, pLower, pUpper)
	kappaMinus = s - kappaPlus
	if kappaMinus < qLower {
		kappaMinus = qLower
		kappaPlus = s - kappaMinus
	} else if kappaMinus > qUpper {
		kappaMinus = qUpper
		kappaPlus = s - kappaMinus
	}
	return
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
