package vector_test

import (
	"testing"

	"github.com/katalvlaran/issvm/vector"
)

// buildSparse fills a Sparse vector with n entries at stride-spaced
// indices and predictable values.
func buildSparse(n, stride int) *vector.Sparse {
	sp := vector.NewSparse()
	for i := 0; i < n; i++ {
		sp.Append(i*stride, float64(i%7+1))
	}
	return sp
}

// BenchmarkSparseSparseInner benchmarks the merge-walk inner product on
// two overlapping 10k-entry sparse vectors.
func BenchmarkSparseSparseInner(b *testing.B) {
	u := buildSparse(10000, 3)
	v := buildSparse(10000, 2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = u.InnerProduct(v)
	}
}

// BenchmarkSparseSpanInner benchmarks the interval walk against a Span
// built from the same data.
func BenchmarkSparseSpanInner(b *testing.B) {
	u := buildSparse(10000, 3)
	v := vector.NewSpanFromSparse(buildSparse(10000, 2), vector.DefaultSkip)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = u.InnerProduct(v)
	}
}

// BenchmarkDenseDenseInner benchmarks the direct indexed loop.
func BenchmarkDenseDenseInner(b *testing.B) {
	u := vector.NewDense(buildSparse(10000, 1).Dense())
	v := vector.NewDense(buildSparse(10000, 1).Dense())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = u.InnerProduct(v)
	}
}
