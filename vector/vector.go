package vector

// Vector is the common contract implemented by Sparse, Span, and Dense.
//
// All three forms are semantically equal when interpreted as infinite
// zero-extended vectors: NormSquared and InnerProduct must agree across
// any pair of forms, and Dimension reports one past the last stored
// nonzero/run/cell.
type Vector interface {
	// Dimension returns the index just past the last stored nonzero
	// (Sparse), run (Span), or cell (Dense). Complexity: O(1).
	Dimension() int

	// NormSquared returns sum(v_i^2). Complexity: O(nnz) for
	// Sparse/Span, O(dimension) for Dense.
	NormSquared() float64

	// InnerProduct returns sum(this_i * other_i) against any Vector
	// implementation. Complexity: see package doc for the walk used by
	// each pairing.
	InnerProduct(other Vector) float64

	// Dense materializes a full []float64 of length Dimension(). Sparse
	// and Span allocate fresh storage; Dense returns its backing slice
	// without copying.
	Dense() []float64

	// Scale multiplies every stored value by s in place. Complexity:
	// O(nnz) for Sparse/Span, O(dimension) for Dense. Scale never
	// divides and does not panic.
	Scale(s float64)
}

// innerDenseLoop computes sum(d[i]*other_i) via a direct indexed walk,
// used by Dense x {Sparse,Span,Dense}.
func innerDenseLoop(d []float64, other Vector) float64 {
	switch o := other.(type) {
	case *Dense:
		n := len(d)
		if len(o.data) < n {
			n = len(o.data)
		}
		var sum float64
		for i := 0; i < n; i++ {
			sum += d[i] * o.data[i]
		}
		return sum
	case *Sparse:
		var sum float64
		for k, idx := range o.idx {
			if int(idx) < len(d) {
				sum += d[idx] * o.val[k]
			}
		}
		return sum
	case *Span:
		var sum float64
		for r, start := range o.starts {
			run := o.runs[r]
			for i, v := range run {
				pos := int(start) + i
				if pos < len(d) {
					sum += d[pos] * v
				}
			}
		}
		return sum
	default:
		dn := other.Dense()
		return innerDenseLoop(d, &Dense{data: dn})
	}
}
