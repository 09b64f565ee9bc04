// Package dataset parses the labeled sparse-text dataset format and the
// prediction-vector format, and renders the support-set text output.
//
// One example per line: `label [featureIndex:value]*`, fields separated
// by any whitespace or commas, `#` or `%` starting a comment that runs
// to end of line. A feature written without an index inherits
// previous-index+1 (starting at 0); zero values are dropped; blank and
// comment-only lines are skipped. Lines may be up to 1 MiB.
package dataset

import "errors"

// ERROR PRIORITY (documented, enforced in tests): every malformed-input
// condition is a configuration error returned with the offending line
// number wrapped in; nothing in this package panics.
var (
	// ErrBadLabel indicates a line whose first field does not parse as
	// a floating-point label.
	ErrBadLabel = errors.New("dataset: malformed label")

	// ErrZeroLabel indicates a zero label; the classifier ignores label
	// magnitude but the sign must be defined.
	ErrZeroLabel = errors.New("dataset: label must be nonzero")

	// ErrBadFeature indicates a feature field that parses as neither
	// index:value nor a bare value.
	ErrBadFeature = errors.New("dataset: malformed feature field")

	// ErrNonMonotoneIndex indicates feature indices on a line that are
	// not strictly increasing (or a negative index).
	ErrNonMonotoneIndex = errors.New("dataset: feature indices must be non-negative and strictly increasing")

	// ErrLineTooLong indicates a line exceeding the 1 MiB limit.
	ErrLineTooLong = errors.New("dataset: line exceeds 1 MiB")

	// ErrEmpty indicates a dataset file with no examples.
	ErrEmpty = errors.New("dataset: no examples found")

	// ErrPredictionCount indicates a prediction-vector file whose value
	// count does not match the expected training size.
	ErrPredictionCount = errors.New("dataset: prediction count does not match training size")

	// ErrBadPrediction indicates a non-blank prediction line that does
	// not parse as a floating-point number.
	ErrBadPrediction = errors.New("dataset: malformed prediction value")
)
