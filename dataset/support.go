package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/issvm/kernel"
	"github.com/katalvlaran/issvm/optimizer"
	"github.com/katalvlaran/issvm/vector"
)

// WriteSupport writes one line per support index (alpha_i != 0) in the
// format `bias  alpha  featureVector`, where the vector is rendered in
// the form native to its storage representation (see FormatVector).
func WriteSupport(w io.Writer, opt optimizer.Optimizer, eng *kernel.Engine) error {
	indices, alphas, bias := opt.Support()
	bw := bufio.NewWriter(w)
	for k, i := range indices {
		v, err := eng.Vector(i)
		if err != nil {
			return fmt.Errorf("dataset: support index %d: %w", i, err)
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n",
			formatFloat(bias), formatFloat(alphas[k]), FormatVector(v)); err != nil {
			return fmt.Errorf("dataset: write support: %w", err)
		}
	}
	return bw.Flush()
}

// FormatVector renders v in its storage representation's native text
// form: `index:value` pairs for Sparse, `start-end:[v,v,...]` runs for
// Span, and comma-separated cells for Dense.
func FormatVector(v vector.Vector) string {
	var sb strings.Builder
	switch t := v.(type) {
	case *vector.Sparse:
		idx, val := t.Pairs()
		for k := range idx {
			if k > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(int(idx[k])))
			sb.WriteByte(':')
			sb.WriteString(formatFloat(val[k]))
		}
	case *vector.Span:
		starts, runs := t.Runs()
		for k := range starts {
			if k > 0 {
				sb.WriteByte(' ')
			}
			start := int(starts[k])
			sb.WriteString(strconv.Itoa(start))
			sb.WriteByte('-')
			sb.WriteString(strconv.Itoa(start + len(runs[k]) - 1))
			sb.WriteString(":[")
			for j, x := range runs[k] {
				if j > 0 {
					sb.WriteByte(',')
				}
				sb.WriteString(formatFloat(x))
			}
			sb.WriteByte(']')
		}
	default:
		for j, x := range v.Dense() {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(formatFloat(x))
		}
	}
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
