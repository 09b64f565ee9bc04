// Package vector provides sparse, span, and dense feature-vector
// representations that are semantically equal when interpreted as
// infinite zero-extended vectors.
//
// All three forms support NormSquared, InnerProduct, and lossless
// conversion between each other. Sparse and Span drop zero values;
// Dense stores every cell from index 0 up to Dimension()-1.
package vector

import "errors"

// Sentinel errors for vector package operations.
//
// ERROR PRIORITY: a non-monotone index is a precondition violation and
// panics (see §7 of the design doc). No function in this package
// returns these sentinels.
var (
	// ErrEmptyRuns indicates a Span was constructed with zero runs where
	// at least one was required by the caller.
	ErrEmptyRuns = errors.New("vector: span has no runs")

	// ErrNegativeIndex indicates a negative feature index was supplied.
	ErrNegativeIndex = errors.New("vector: feature index must be >= 0")
)

// nonMonotoneIndex panics with a descriptive message; Append with a
// non-increasing index is a programmer error, not a recoverable one.
func nonMonotoneIndex(method string, last, got int) {
	panic("vector: " + method + ": index " + itoa(got) + " must be > last stored index " + itoa(last))
}

// divideByZero panics; scaling by 1/0 is a programmer error.
func divideByZero(method string) {
	panic("vector: " + method + ": division by zero")
}

// itoa avoids importing strconv in this tiny hot file; kept local so the
// panic path never allocates via fmt.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
