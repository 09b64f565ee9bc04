package vector

// Dense is a contiguous array of values starting at index 0.
type Dense struct {
	data []float64
}

// NewDense wraps an existing slice as a Dense vector; the slice is
// retained, not copied.
func NewDense(data []float64) *Dense {
	return &Dense{data: data}
}

// Dimension returns len(data).
func (d *Dense) Dimension() int { return len(d.data) }

// NormSquared returns sum(v_i^2).
func (d *Dense) NormSquared() float64 {
	var sum float64
	for _, v := range d.data {
		sum += v * v
	}
	return sum
}

// InnerProduct computes sum(this_i * other_i) via a direct indexed loop
// regardless of the other operand's representation.
func (d *Dense) InnerProduct(other Vector) float64 {
	return innerDenseLoop(d.data, other)
}

// Dense returns the backing slice directly (no copy, per the "zeros
// filled lazily" contract — Dense already stores every cell).
func (d *Dense) Dense() []float64 { return d.data }

// Scale multiplies every value by s in place.
func (d *Dense) Scale(scale float64) {
	for i := range d.data {
		d.data[i] *= scale
	}
}

// ToSparse converts to a Sparse vector, dropping zero cells.
func (d *Dense) ToSparse() *Sparse {
	return fromDenseSlice(d.data)
}
