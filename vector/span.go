package vector

// DefaultSkip is the default gap-bridging threshold used by
// NewSpanFromSparse: a gap of at most DefaultSkip implicit zeros between
// two runs is bridged with padding zeros rather than starting a new run.
// It is a space/time heuristic, not a correctness requirement.
const DefaultSkip = 5

// Span is an ordered sequence of (startIndex, values) runs, each run a
// contiguous dense segment. Runs are separated by at least one implicit
// zero not bridged by the skip threshold at construction time.
type Span struct {
	starts []int32
	runs   [][]float64
}

// NewSpan returns an empty Span vector.
func NewSpan() *Span {
	return &Span{}
}

// AppendRun appends a new contiguous run starting at startIndex. Like
// Sparse.Append, startIndex must exceed the end of the previous run;
// violating this is a programmer error and panics.
func (s *Span) AppendRun(startIndex int, values []float64) {
	if startIndex < 0 {
		panic("vector: Span.AppendRun: negative index")
	}
	if n := len(s.starts); n > 0 {
		prevEnd := int(s.starts[n-1]) + len(s.runs[n-1])
		if startIndex < prevEnd {
			nonMonotoneIndex("Span.AppendRun", prevEnd-1, startIndex)
		}
	}
	if len(values) == 0 {
		return
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	s.starts = append(s.starts, int32(startIndex))
	s.runs = append(s.runs, cp)
}

// NewSpanFromSparse builds a Span from a Sparse vector, coalescing runs
// across gaps of length <= skip implicit zeros. skip <= 0 uses
// DefaultSkip.
func NewSpanFromSparse(sp *Sparse, skip int) *Span {
	if skip <= 0 {
		skip = DefaultSkip
	}
	out := NewSpan()
	n := len(sp.idx)
	for i := 0; i < n; {
		start := int(sp.idx[i])
		values := []float64{sp.val[i]}
		j := i + 1
		for j < n {
			gap := int(sp.idx[j]) - (start + len(values))
			if gap > skip {
				break
			}
			for g := 0; g < gap; g++ {
				values = append(values, 0)
			}
			values = append(values, sp.val[j])
			j++
		}
		out.starts = append(out.starts, int32(start))
		out.runs = append(out.runs, values)
		i = j
	}
	return out
}

// Dimension returns one past the last index covered by the final run.
func (s *Span) Dimension() int {
	if len(s.starts) == 0 {
		return 0
	}
	last := len(s.starts) - 1
	return int(s.starts[last]) + len(s.runs[last])
}

// NormSquared returns sum(v_i^2) over all stored cells (including the
// zeros bridged inside a run).
func (s *Span) NormSquared() float64 {
	var sum float64
	for _, run := range s.runs {
		for _, v := range run {
			sum += v * v
		}
	}
	return sum
}

// InnerProduct computes sum(this_i * other_i) via an interval walk
// against another Span, delegates to Sparse's interval walk against
// Sparse, and to the dense indexed loop against Dense.
func (s *Span) InnerProduct(other Vector) float64 {
	switch o := other.(type) {
	case *Span:
		return spanSpanInner(s, o)
	case *Sparse:
		return sparseSpanInner(o, s)
	case *Dense:
		return innerDenseLoop(o.data, s)
	default:
		return spanSpanInner(s, NewSpanFromSparse(fromDenseSlice(other.Dense()), DefaultSkip))
	}
}

func spanSpanInner(a, b *Span) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.starts) && j < len(b.starts) {
		aStart, aRun := int(a.starts[i]), a.runs[i]
		bStart, bRun := int(b.starts[j]), b.runs[j]
		aEnd := aStart + len(aRun)
		bEnd := bStart + len(bRun)

		lo := aStart
		if bStart > lo {
			lo = bStart
		}
		hi := aEnd
		if bEnd < hi {
			hi = bEnd
		}
		for pos := lo; pos < hi; pos++ {
			sum += aRun[pos-aStart] * bRun[pos-bStart]
		}

		if aEnd <= bEnd {
			i++
		} else {
			j++
		}
	}
	return sum
}

// Runs returns the stored (startIndex, values) runs, in ascending
// order. The returned slices are read-only views; callers must not
// mutate them.
func (s *Span) Runs() ([]int32, [][]float64) {
	return s.starts, s.runs
}

// Dense materializes a zero-filled []float64 of length Dimension().
func (s *Span) Dense() []float64 {
	d := make([]float64, s.Dimension())
	for r, start := range s.starts {
		copy(d[start:], s.runs[r])
	}
	return d
}

// Scale multiplies every stored value by s in place. s == 0 clears all
// runs.
func (s *Span) Scale(scale float64) {
	if scale == 0 {
		s.starts = s.starts[:0]
		s.runs = s.runs[:0]
		return
	}
	for _, run := range s.runs {
		for i := range run {
			run[i] *= scale
		}
	}
}

// ToSparse converts back to a Sparse vector, dropping any zeros that
// were used only as bridge padding.
func (s *Span) ToSparse() *Sparse {
	sp := NewSparse()
	for r, start := range s.starts {
		for i, v := range s.runs[r] {
			if v != 0 {
				sp.idx = append(sp.idx, int32(int(start)+i))
				sp.val = append(sp.val, v)
			}
		}
	}
	return sp
}
