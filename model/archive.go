package model

import (
	"bufio"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/katalvlaran/issvm/kernel"
	"github.com/katalvlaran/issvm/optimizer"
	"github.com/katalvlaran/issvm/vector"
)

// Version is the archive format version this package writes.
const Version = 1

// Kernel kind names as serialized.
const (
	KernelLinear   = "linear"
	KernelGaussian = "gaussian"
)

// Optimizer names as serialized (and as accepted on the CLI).
const (
	OptSMO        = "smo"
	OptPerceptron = "perceptron"
	OptSBP        = "sbp"
	OptSparsifier = "sparsifier"
)

// Archive is the serialized form of a trained kernel + optimizer pair:
// the kernel's vectors, labels, and hyperparameters; the optimizer's
// name, hyperparameters, alpha, responses, and iteration counter; and
// the Sparsifier's target-prediction array when applicable.
type Archive struct {
	Version   int
	Kernel    KernelSnapshot
	Optimizer OptimizerSnapshot
}

// KernelSnapshot captures everything kernel.New needs.
type KernelSnapshot struct {
	Kind         string
	Gamma        float64
	CacheSize    int
	TrainingSize int
	Labels       []float64
	Vectors      []VectorSnapshot
}

// VectorSnapshot is one feature vector in canonical sparse pair form;
// the storage-form footprint heuristic is re-applied on rebuild.
type VectorSnapshot struct {
	Indices []int32
	Values  []float64
}

// OptimizerSpec names an optimizer variant and its construction-time
// hyperparameters: Params is [lambda] for smo, [mu] for perceptron,
// [nu] for sbp, and [wSquared, eta, epsilon] for sparsifier (which
// additionally carries Target, the dense model's training predictions).
type OptimizerSpec struct {
	Name   string
	Biased bool
	Params []float64
	Target []float64
}

// OptimizerSnapshot is an OptimizerSpec plus the mutable state restored
// on load.
type OptimizerSnapshot struct {
	OptimizerSpec
	Alpha      []float64
	Responses  []float64
	Iterations int
}

// New snapshots eng and spec into a fresh Archive with zeroed optimizer
// state; call Capture to record the optimizer's current alpha/r/iter
// before saving.
func New(eng *kernel.Engine, spec OptimizerSpec) *Archive {
	kind := KernelLinear
	if eng.KernelKind() == kernel.Gaussian {
		kind = KernelGaussian
	}
	labels := make([]float64, eng.Size())
	copy(labels, eng.Labels())
	vecs := make([]VectorSnapshot, eng.Size())
	for i := range vecs {
		v, _ := eng.Vector(i)
		vecs[i] = snapshotVector(v)
	}
	return &Archive{
		Version: Version,
		Kernel: KernelSnapshot{
			Kind:         kind,
			Gamma:        eng.Gamma(),
			CacheSize:    eng.CacheCapacity(),
			TrainingSize: eng.TrainingSize(),
			Labels:       labels,
			Vectors:      vecs,
		},
		Optimizer: OptimizerSnapshot{OptimizerSpec: spec},
	}
}

// Capture records opt's current raw alpha, responses, and iteration
// counter into the archive. The kernel snapshot is immutable and
// untouched.
func (a *Archive) Capture(opt optimizer.Optimizer) {
	a.Optimizer.Alpha, a.Optimizer.Responses, a.Optimizer.Iterations = opt.Snapshot()
}

// Build reconstructs the kernel engine and optimizer the archive
// describes, restoring the optimizer's serialized state when present.
func (a *Archive) Build() (*kernel.Engine, optimizer.Optimizer, error) {
	if a.Version != Version {
		return nil, nil, fmt.Errorf("version %d: %w", a.Version, ErrBadVersion)
	}

	var kind kernel.Kind
	switch a.Kernel.Kind {
	case KernelLinear:
		kind = kernel.Linear
	case KernelGaussian:
		kind = kernel.Gaussian
	default:
		return nil, nil, fmt.Errorf("%q: %w", a.Kernel.Kind, ErrUnknownKernel)
	}

	vecs := make([]vector.Vector, len(a.Kernel.Vectors))
	for i, snap := range a.Kernel.Vectors {
		vecs[i] = snap.rebuild()
	}
	eng, err := kernel.New(vecs, a.Kernel.Labels, a.Kernel.TrainingSize, kind,
		kernel.WithGamma(a.Kernel.Gamma), kernel.WithCacheSize(a.Kernel.CacheSize))
	if err != nil {
		return nil, nil, fmt.Errorf("model: rebuild kernel: %w", err)
	}

	opt, err := BuildOptimizer(eng, a.Optimizer.OptimizerSpec)
	if err != nil {
		return nil, nil, err
	}
	if a.Optimizer.Alpha != nil {
		if err := opt.Restore(a.Optimizer.Alpha, a.Optimizer.Responses, a.Optimizer.Iterations); err != nil {
			return nil, nil, fmt.Errorf("model: restore optimizer state: %w", err)
		}
	}
	return eng, opt, nil
}

// BuildOptimizer constructs the optimizer variant spec names over eng.
// Used both by Build and by the CLI's init path.
func BuildOptimizer(eng *kernel.Engine, spec OptimizerSpec) (optimizer.Optimizer, error) {
	switch spec.Name {
	case OptSMO:
		if len(spec.Params) != 1 {
			return nil, fmt.Errorf("smo wants [lambda]: %w", ErrBadParams)
		}
		return optimizer.NewSMO(eng, spec.Biased, spec.Params[0])
	case OptPerceptron:
		if len(spec.Params) != 1 {
			return nil, fmt.Errorf("perceptron wants [mu]: %w", ErrBadParams)
		}
		return optimizer.NewPerceptron(eng, spec.Biased, spec.Params[0])
	case OptSBP:
		if len(spec.Params) != 1 {
			return nil, fmt.Errorf("sbp wants [nu]: %w", ErrBadParams)
		}
		return optimizer.NewSBP(eng, spec.Biased, spec.Params[0])
	case OptSparsifier:
		if len(spec.Params) != 3 {
			return nil, fmt.Errorf("sparsifier wants [wSquared eta epsilon]: %w", ErrBadParams)
		}
		return optimizer.NewSparsifier(eng, spec.Biased,
			spec.Params[0], spec.Params[1], spec.Params[2], spec.Target)
	default:
		return nil, fmt.Errorf("%q: %w", spec.Name, ErrUnknownOptimizer)
	}
}

func snapshotVector(v vector.Vector) VectorSnapshot {
	var sp *vector.Sparse
	switch t := v.(type) {
	case *vector.Sparse:
		sp = t
	case *vector.Span:
		sp = t.ToSparse()
	case *vector.Dense:
		sp = t.ToSparse()
	default:
		d := vector.NewDense(v.Dense())
		sp = d.ToSparse()
	}
	idx, val := sp.Pairs()
	indices := make([]int32, len(idx))
	copy(indices, idx)
	values := make([]float64, len(val))
	copy(values, val)
	return VectorSnapshot{Indices: indices, Values: values}
}

func (s VectorSnapshot) rebuild() vector.Vector {
	pairs := make([]struct {
		Index int
		Value float64
	}, len(s.Indices))
	for k := range s.Indices {
		pairs[k].Index = int(s.Indices[k])
		pairs[k].Value = s.Values[k]
	}
	return vector.FromPairs(pairs, vector.DefaultSkip)
}

// Save gob-encodes a to w, gzip-wrapping the stream when compress is
// true.
func Save(w io.Writer, a *Archive, compress bool) error {
	if compress {
		gz := gzip.NewWriter(w)
		if err := gob.NewEncoder(gz).Encode(a); err != nil {
			return fmt.Errorf("model: encode: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("model: gzip close: %w", err)
		}
		return nil
	}
	if err := gob.NewEncoder(w).Encode(a); err != nil {
		return fmt.Errorf("model: encode: %w", err)
	}
	return nil
}

// Load gob-decodes an Archive from r, auto-detecting gzip wrapping via
// the two-byte magic header.
func Load(r io.Reader) (*Archive, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("model: read header: %w", err)
	}
	var src io.Reader = br
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("model: gzip open: %w", err)
		}
		defer gz.Close()
		src = gz
	}
	var a Archive
	if err := gob.NewDecoder(src).Decode(&a); err != nil {
		return nil, fmt.Errorf("model: decode: %w", err)
	}
	if a.Version != Version {
		return nil, fmt.Errorf("version %d: %w", a.Version, ErrBadVersion)
	}
	return &a, nil
}
