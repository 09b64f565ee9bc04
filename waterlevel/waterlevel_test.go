package waterlevel_test

import (
	"testing"

	"github.com/katalvlaran/issvm/waterlevel"
	"github.com/stretchr/testify/assert"
)

// TestUnbiasedDegenerateZeroTotal verifies T=0 returns min(a).
func TestUnbiasedDegenerateZeroTotal(t *testing.T) {
	got := waterlevel.Unbiased([]float64{5, 2, 9}, 0)
	assert.Equal(t, 2.0, got)
}

// TestUnbiasedScenario5 is the spec's literal scenario 5:
// a=(0,1,3), T=2 => kappa=1.5.
func TestUnbiasedScenario5(t *testing.T) {
	got := waterlevel.Unbiased([]float64{0, 1, 3}, 2)
	assert.InDelta(t, 1.5, got, 1e-9)
}

// TestUnbiasedVolumeContract verifies sum(max(0,kappa-a_i)) == total for
// a handful of totals within the feasible range, and that kappa >= the
// max of elements it covers.
func TestUnbiasedVolumeContract(t *testing.T) {
	a := []float64{0, 1, 3, 4, 10}
	for _, total := range []float64{0.5, 2, 5, 9} {
		kappa := waterlevel.Unbiased(a, total)
		var volume float64
		maxCovered := -1e18
		for _, v := range a {
			if kappa > v {
				volume += kappa - v
				if v > maxCovered {
					maxCovered = v
				}
			}
		}
		assert.InDelta(t, total, volume, 1e-6, "total=%v", total)
		if maxCovered > -1e18 {
			assert.GreaterOrEqual(t, kappa, maxCovered)
		}
	}
}

// TestBiasedScenario6 is the spec's literal scenario 6:
// p=(0,2), q=(0,2), T=2 => kappaPlus=kappaMinus=1, bias=0.
func TestBiasedScenario6(t *testing.T) {
	kp, km := waterlevel.Biased([]float64{0, 2}, []float64{0, 2}, 2)
	assert.InDelta(t, 1.0, kp, 1e-9)
	assert.InDelta(t, 1.0, km, 1e-9)
	bias := -0.5 * (kp - km)
	assert.InDelta(t, 0.0, bias, 1e-9)
}

// TestBiasedEqualCounts verifies the count of p-elements below kappaPlus
// equals the count of q-elements below kappaMinus.
func TestBiasedEqualCounts(t *testing.T) {
	p := []float64{-1, 0, 2, 5}
	q := []float64{-2, 1, 3}
	kp, km := waterlevel.Biased(p, q, 3)

	countBelow := func(vals []float64, kappa float64) int {
		n := 0
		for _, v := range vals {
			if v < kappa {
				n++
			}
		}
		return n
	}
	assert.Equal(t, countBelow(p, kp), countBelow(q, km))
}

// TestBiasedSmallTotalHighTerrain checks the budget is fully spent even
// when total is smaller than the sum of the minima (the level rises
// above both single elements, covering one per side).
func TestBiasedSmallTotalHighTerrain(t *testing.T) {
	kp, km := waterlevel.Biased([]float64{10}, []float64{10}, 1)
	assert.InDelta(t, 10.5, kp, 1e-9)
	assert.InDelta(t, 10.5, km, 1e-9)
}

// TestBiasedAsymmetric verifies asymmetric terrains still satisfy the
// combined slack budget.
func TestBiasedAsymmetric(t *testing.T) {
	p := []float64{0, 1, 2}
	q := []float64{-5}
	total := 4.0
	kp, km := waterlevel.Biased(p, q, total)

	var used float64
	for _, v := range p {
		if kp > v {
			used += kp - v
		}
	}
	for _, v := range q {
		if km > v {
			used += km - v
		}
	}
	assert.InDelta(t, total, used, 1e-6)
}
