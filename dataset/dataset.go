package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/katalvlaran/issvm/vector"
)

// maxLineBytes is the longest accepted input line.
const maxLineBytes = 1 << 20

// Load reads the labeled sparse-text dataset format from r and returns
// the parsed feature vectors and labels in file order. Each vector's
// storage form (sparse, span, or dense) is chosen per example by the
// smallest-footprint heuristic in vector.FromPairs.
func Load(r io.Reader) ([]vector.Vector, []float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		vectors []vector.Vector
		labels  []float64
		lineNo  int
	)
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		fields := splitFields(line)
		if len(fields) == 0 {
			continue
		}
		label, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, ErrBadLabel)
		}
		if label == 0 {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, ErrZeroLabel)
		}
		v, err := parseFeatures(fields[1:])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		vectors = append(vectors, v)
		labels = append(labels, label)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo+1, ErrLineTooLong)
		}
		return nil, nil, fmt.Errorf("dataset: read: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil, ErrEmpty
	}
	return vectors, labels, nil
}

// parseFeatures parses the feature fields of one line. A field is
// either index:value or a bare value inheriting previous-index+1
// (starting at 0). Zero values advance the running index but are not
// stored.
func parseFeatures(fields []string) (vector.Vector, error) {
	pairs := make([]struct {
		Index int
		Value float64
	}, 0, len(fields))
	prev := -1
	for _, f := range fields {
		index := prev + 1
		valueStr := f
		if colon := strings.IndexByte(f, ':'); colon >= 0 {
			idx, err := strconv.Atoi(f[:colon])
			if err != nil {
				return nil, ErrBadFeature
			}
			index = idx
			valueStr = f[colon+1:]
		}
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, ErrBadFeature
		}
		if index <= prev || index < 0 {
			return nil, ErrNonMonotoneIndex
		}
		prev = index
		if value == 0 {
			continue
		}
		pairs = append(pairs, struct {
			Index int
			Value float64
		}{index, value})
	}
	return vector.FromPairs(pairs, vector.DefaultSkip), nil
}

// stripComment cuts line at the first '#' or '%'.
func stripComment(line string) string {
	if i := strings.IndexAny(line, "#%"); i >= 0 {
		return line[:i]
	}
	return line
}

// splitFields splits on any whitespace or commas, dropping empties.
func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// LoadPredictions reads the prediction-vector text format (one float
// per non-blank line, '#'/'%' comments) and requires exactly
// trainingSize values.
func LoadPredictions(r io.Reader, trainingSize int) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		out    []float64
		lineNo int
	)
	for scanner.Scan() {
		lineNo++
		fields := splitFields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		if len(fields) > 1 {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrBadPrediction)
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrBadPrediction)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read predictions: %w", err)
	}
	if len(out) != trainingSize {
		return nil, fmt.Errorf("got %d values, want %d: %w", len(out), trainingSize, ErrPredictionCount)
	}
	return out, nil
}
