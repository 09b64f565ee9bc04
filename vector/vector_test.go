package vector_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/issvm/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSparse_AppendOrder verifies that Append enforces strictly
// increasing indices and drops zero values.
func TestSparse_AppendOrder(t *testing.T) {
	sp := vector.NewSparse()
	sp.Append(0, 1.0)
	sp.Append(3, 0) // dropped
	sp.Append(5, 2.0)

	assert.Equal(t, 6, sp.Dimension(), "dimension is one past last stored index")
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 2}, sp.Dense(), "dense materialization zero-fills gaps")
}

// TestSparse_NonMonotonePanics ensures a non-increasing index panics.
func TestSparse_NonMonotonePanics(t *testing.T) {
	sp := vector.NewSparse()
	sp.Append(5, 1.0)
	assert.Panics(t, func() { sp.Append(5, 2.0) }, "equal index must panic")
	assert.Panics(t, func() { sp.Append(2, 2.0) }, "decreasing index must panic")
}

// TestInnerProductSymmetry checks u.v == v.u across all nine pair
// combinations of Sparse, Span, and Dense.
func TestInnerProductSymmetry(t *testing.T) {
	sp1 := vector.NewSparse()
	sp1.Append(0, 1)
	sp1.Append(2, 3)
	sp1.Append(7, -1)

	sp2 := vector.NewSparse()
	sp2.Append(1, 2)
	sp2.Append(2, 4)
	sp2.Append(7, 5)

	span1 := vector.NewSpanFromSparse(sp1, 2)
	span2 := vector.NewSpanFromSparse(sp2, 2)

	dense1 := vector.NewDense(sp1.Dense())
	dense2 := vector.NewDense(sp2.Dense())

	forms1 := map[string]vector.Vector{"sparse": sp1, "span": span1, "dense": dense1}
	forms2 := map[string]vector.Vector{"sparse": sp2, "span": span2, "dense": dense2}

	for n1, u := range forms1 {
		for n2, v := range forms2 {
			uv := u.InnerProduct(v)
			vu := v.InnerProduct(u)
			assert.InDelta(t, uv, vu, 1e-9, "%s.InnerProduct(%s) must equal reverse", n1, n2)
		}
	}
}

// TestNormSquaredAgreesAcrossForms verifies the three representations of
// the same logical vector produce identical NormSquared.
func TestNormSquaredAgreesAcrossForms(t *testing.T) {
	sp := vector.NewSparse()
	sp.Append(0, 2)
	sp.Append(4, -3)
	sp.Append(9, 1)

	span := vector.NewSpanFromSparse(sp, 3)
	dense := vector.NewDense(sp.Dense())

	want := sp.NormSquared()
	assert.InDelta(t, want, span.NormSquared(), 1e-9)
	assert.InDelta(t, want, dense.NormSquared(), 1e-9)
	assert.InDelta(t, 14.0, want, 1e-9, "2^2 + (-3)^2 + 1^2 = 14")
}

// TestSparseDenseRoundTrip verifies Sparse -> Dense -> Sparse preserves
// the original (index, value) pairs, excluding zeros.
func TestSparseDenseRoundTrip(t *testing.T) {
	sp := vector.NewSparse()
	sp.Append(1, 1.5)
	sp.Append(3, -2.5)
	sp.Append(10, 4)

	d := vector.NewDense(sp.Dense())
	back := d.ToSparse()

	require.Equal(t, sp.Dense(), back.Dense(), "round-trip must preserve materialized values")
}

// TestSpanCoalescing verifies runs merge across gaps <= skip and split
// on larger gaps.
func TestSpanCoalescing(t *testing.T) {
	sp := vector.NewSparse()
	sp.Append(0, 1)
	sp.Append(2, 2) // gap of 1 zero, within skip=2
	sp.Append(10, 3) // gap of 7 zeros, exceeds skip=2

	span := vector.NewSpanFromSparse(sp, 2)
	require.Len(t, span.Dense(), 11)

	want := []float64{1, 0, 2, 0, 0, 0, 0, 0, 0, 0, 3}
	assert.Equal(t, want, span.Dense())
}

// TestScaleByZeroClearsSparse verifies Scale(0) drops all stored
// entries, matching the "zero scale clears sparse/span" invariant.
func TestScaleByZeroClearsSparse(t *testing.T) {
	sp := vector.NewSparse()
	sp.Append(0, 1)
	sp.Append(1, 2)
	sp.Scale(0)
	assert.Equal(t, 0, sp.Dimension())
}

// TestDenseScale verifies in-place scaling of a Dense vector.
func TestDenseScale(t *testing.T) {
	d := vector.NewDense([]float64{1, 2, 3})
	d.Scale(2)
	assert.Equal(t, []float64{2, 4, 6}, d.Dense())
	assert.False(t, math.IsNaN(d.NormSquared()))
}
