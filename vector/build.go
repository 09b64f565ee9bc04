package vector

// FromPairs builds the Vector representation with the smallest estimated
// total-bytes footprint for the given (index, value) pairs, per the
// cost-heuristic storage policy: Sparse costs 12 bytes/entry (int32+
// float64... rounded), Span costs 8 bytes/cell plus a small per-run
// overhead, Dense costs 8 bytes/cell across the full dimension. pairs
// must have strictly increasing indices (panics otherwise, via Append).
func FromPairs(pairs []struct {
	Index int
	Value float64
}, skip int) Vector {
	sp := NewSparse()
	for _, p := range pairs {
		sp.Append(p.Index, p.Value)
	}
	if len(pairs) == 0 {
		return sp
	}

	dim := sp.Dimension()
	nnz := len(sp.idx)

	sparseBytes := nnz * 12
	denseBytes := dim * 8

	span := NewSpanFromSparse(sp, skip)
	spanBytes := 0
	for _, run := range span.runs {
		spanBytes += len(run)*8 + 8 // 8 bytes overhead per run (start index)
	}

	best := sparseBytes
	choice := 0 // 0=sparse, 1=span, 2=dense
	if spanBytes < best {
		best = spanBytes
		choice = 1
	}
	if denseBytes < best {
		choice = 2
	}

	switch choice {
	case 1:
		return span
	case 2:
		return NewDense(sp.Dense())
	default:
		return sp
	}
}
