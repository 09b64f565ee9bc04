package kernel

import (
	"math"
	"sync"

	"github.com/katalvlaran/issvm/vector"
)

// Engine holds the owned training+validation vectors, labels, kernel
// hyperparameters, a bounded LRU row cache, and exposes the inner
// -product/row/response-update operations every optimizer drives.
//
// Engine is a single struct parameterized by a Kind flag rather than a
// per-kernel interface hierarchy: with only two kernel kinds in a closed
// set, this mirrors the teacher's core.Graph design (a single struct
// plus directed/weighted/... flags) rather than introducing a type
// hierarchy for a two-way switch.
type Engine struct {
	mu sync.Mutex // guards the row cache only; vectors/labels are immutable after New

	kind         Kind
	gamma        float64
	parallelism  int
	vectors      []vector.Vector
	labels       []float64
	trainingSize int
	size         int

	normSq []float64 // ||x_i||^2, Gaussian only; nil for Linear
	diag   []float64 // k(i,i) per vector, both kinds

	cache *rowCache
}

// New constructs an Engine over vectors/labels with the first
// trainingSize entries treated as training examples and the remainder
// as validation. Returns ErrSizeMismatch, ErrBadTrainingSize,
// ErrUnknownKind, ErrBadGamma, or ErrNegativeCache on invalid input.
func New(vectors []vector.Vector, labels []float64, trainingSize int, kind Kind, opts ...Option) (*Engine, error) {
	if len(vectors) != len(labels) {
		return nil, ErrSizeMismatch
	}
	if trainingSize < 0 || trainingSize > len(vectors) {
		return nil, ErrBadTrainingSize
	}
	if kind != Linear && kind != Gaussian {
		return nil, ErrUnknownKind
	}
	cfg := newConfig(opts...)
	if kind == Gaussian && cfg.gamma <= 0 {
		return nil, ErrBadGamma
	}
	if cfg.cacheSize < 0 {
		return nil, ErrNegativeCache
	}

	e := &Engine{
		kind:         kind,
		gamma:        cfg.gamma,
		parallelism:  cfg.parallelism,
		vectors:      vectors,
		labels:       labels,
		trainingSize: trainingSize,
		size:         len(vectors),
		diag:         make([]float64, len(vectors)),
		cache:        newRowCache(cfg.cacheSize),
	}
	if kind == Gaussian {
		e.normSq = make([]float64, len(vectors))
		for i, v := range vectors {
			e.normSq[i] = v.NormSquared()
		}
	}
	for i, v := range vectors {
		e.diag[i] = e.kernelOf(i, i, v, v)
	}
	return e, nil
}

// Size returns N, the total number of owned vectors (training+validation).
func (e *Engine) Size() int { return e.size }

// KernelKind returns the kernel function this Engine evaluates.
func (e *Engine) KernelKind() Kind { return e.kind }

// Gamma returns the Gaussian hyperparameter (0 for Linear).
func (e *Engine) Gamma() float64 { return e.gamma }

// CacheCapacity returns the row-cache capacity the Engine was
// constructed with (0 = caching disabled).
func (e *Engine) CacheCapacity() int { return e.cache.capacity }

// TrainingSize returns T, the number of training vectors.
func (e *Engine) TrainingSize() int { return e.trainingSize }

// Labels returns the label slice (shared, not copied; callers must not
// mutate it).
func (e *Engine) Labels() []float64 { return e.labels }

// Vector returns the owned feature vector at index i in [0,Size()),
// used by callers that need to render the underlying representation
// (e.g. writing the support set). The returned Vector is shared, not
// copied.
func (e *Engine) Vector(i int) (vector.Vector, error) {
	if i < 0 || i >= e.size {
		return nil, ErrIndexOutOfRange
	}
	return e.vectors[i], nil
}

// MaxTrainingDiagonal returns max_i k(x_i,x_i) over the training range
// [0,TrainingSize()), used by SBP and Sparsifier as k_max.
func (e *Engine) MaxTrainingDiagonal() float64 {
	max := 0.0
	for i := 0; i < e.trainingSize; i++ {
		if e.diag[i] > max {
			max = e.diag[i]
		}
	}
	return max
}

// kernelOf evaluates k(xi,xj) given already-resolved vectors, used
// internally to avoid a second slice index in hot loops.
func (e *Engine) kernelOf(i, j int, xi, xj vector.Vector) float64 {
	inner := xi.InnerProduct(xj)
	if e.kind == Linear {
		return inner
	}
	// Gaussian: exp(gamma*(2*inner - ||xi||^2 - ||xj||^2)).
	exponent := e.gamma * (2*inner - e.normSq[i] - e.normSq[j])
	v := math.Exp(exponent)
	if math.IsInf(v, 0) {
		return 0 // an exponent that overflows to +Inf is mapped to 0
	}
	return v
}

// KernelInnerProduct returns k(x_i,x_j) for i,j in [0,Size()). Returns
// ErrIndexOutOfRange if either index is out of bounds.
func (e *Engine) KernelInnerProduct(i, j int) (float64, error) {
	if i < 0 || i >= e.size || j < 0 || j >= e.size {
		return 0, ErrIndexOutOfRange
	}
	if i == j {
		return e.diag[i], nil
	}
	return e.kernelOf(i, j, e.vectors[i], e.vectors[j]), nil
}

// Diagonal returns k(x_i,x_i), precomputed at construction.
func (e *Engine) Diagonal(i int) (float64, error) {
	if i < 0 || i >= e.size {
		return 0, ErrIndexOutOfRange
	}
	return e.diag[i], nil
}

// RowHandle wraps a materialized kernel column K[:,i] of length Size().
// Callers must call Release once done reading; until released, the
// cache will not reuse the handle's backing buffer for another index.
type RowHandle struct {
	engine *Engine
	entry  *cacheEntry
	Data   []float64
}

// Release signals the Engine's row cache that this handle's buffer may
// now be reused for eviction. Safe to call multiple times.
func (h *RowHandle) Release() {
	if h.entry == nil {
		return
	}
	h.engine.mu.Lock()
	h.entry.refcount--
	h.engine.mu.Unlock()
	h.entry = nil
}

// Row returns a handle to the length-N array K[:,i] for i in
// [0,TrainingSize()), using and populating the row cache. Returns
// ErrIndexOutOfRange if i is out of the training range.
//
// Complexity: O(N) on a cache miss (parallelized per SPEC_FULL.md §4.2),
// O(1) on a hit.
func (e *Engine) Row(i int) (*RowHandle, error) {
	if i < 0 || i >= e.trainingSize {
		return nil, ErrIndexOutOfRange
	}

	e.mu.Lock()
	if entry, ok := e.cache.lookup(i); ok {
		entry.refcount++
		e.mu.Unlock()
		return &RowHandle{engine: e, entry: entry, Data: entry.data}, nil
	}
	buf := e.cache.acquireBuffer(e.size)
	e.mu.Unlock()

	xi := e.vectors[i]
	parallelFor(e.size, e.parallelism, func(lo, hi int) {
		for j := lo; j < hi; j++ {
			if j == i {
				buf[j] = e.diag[i]
				continue
			}
			buf[j] = e.kernelOf(i, j, xi, e.vectors[j])
		}
	})

	e.mu.Lock()
	entry := e.cache.insert(i, buf)
	entry.refcount++
	e.mu.Unlock()
	return &RowHandle{engine: e, entry: entry, Data: buf}, nil
}

// SetAlpha updates alpha[i] to newAlpha and applies the corresponding
// response delta to r: r += (newAlpha-alpha[i]) * K[:,i]. i must be in
// [0,TrainingSize()). Reads alpha[i] and the needed row before writing
// alpha[i] last, per the ordering contract in SPEC_FULL.md §5.
func (e *Engine) SetAlpha(alpha, r []float64, i int, newAlpha float64) error {
	row, err := e.Row(i)
	if err != nil {
		return err
	}
	defer row.Release()
	return e.SetAlphaWithRow(alpha, r, i, newAlpha, row.Data)
}

// SetAlphaWithRow is SetAlpha given a caller-supplied precomputed row
// (e.g. one already fetched this iteration for a different purpose),
// avoiding a redundant cache lookup.
func (e *Engine) SetAlphaWithRow(alpha, r []float64, i int, newAlpha float64, row []float64) error {
	if i < 0 || i >= e.trainingSize {
		return ErrIndexOutOfRange
	}
	delta := newAlpha - alpha[i]
	if delta != 0 {
		for j := 0; j < e.size; j++ {
			r[j] += delta * row[j]
		}
	}
	alpha[i] = newAlpha
	return nil
}

// RecalculateResponses rebuilds r from scratch as sum_j alpha[j]*K[:,j]
// over the training support (j with alpha[j]!=0), used to correct
// drift accumulated over long runs of incremental SetAlpha calls.
//
// Complexity: O(T_active * N), parallelized over [0,N) per output
// index, per SPEC_FULL.md §4.2/§5.
func (e *Engine) RecalculateResponses(alpha, r []float64) error {
	if len(alpha) != e.trainingSize || len(r) != e.size {
		return ErrSizeMismatch
	}
	support := make([]int, 0, e.trainingSize)
	for j := 0; j < e.trainingSize; j++ {
		if alpha[j] != 0 {
			support = append(support, j)
		}
	}
	parallelFor(e.size, e.parallelism, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			var sum float64
			xi := e.vectors[i]
			for _, j := range support {
				sum += alpha[j] * e.kernelOf(j, i, e.vectors[j], xi)
			}
			r[i] = sum
		}
	})
	return nil
}

// Evaluate returns sum_j alpha[j]*k(x,x_j) for an external vector x
// against the training support.
func (e *Engine) Evaluate(x vector.Vector, alpha []float64) (float64, error) {
	if len(alpha) != e.trainingSize {
		return 0, ErrSizeMismatch
	}
	var sum float64
	for j := 0; j < e.trainingSize; j++ {
		if alpha[j] == 0 {
			continue
		}
		inner := x.InnerProduct(e.vectors[j])
		var k float64
		if e.kind == Linear {
			k = inner
		} else {
			exponent := e.gamma * (2*inner - x.NormSquared() - e.normSq[j])
			k = math.Exp(exponent)
		}
		sum += alpha[j] * k
	}
	return sum, nil
}

// EvaluateDataset evaluates Evaluate for every vector in [0,Size()),
// parallelized per SPEC_FULL.md §4.2/§5. out must have length Size().
func (e *Engine) EvaluateDataset(alpha []float64, out []float64) error {
	if len(alpha) != e.trainingSize || len(out) != e.size {
		return ErrSizeMismatch
	}
	var firstErr error
	var errMu sync.Mutex
	parallelFor(e.size, e.parallelism, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			v, err := e.Evaluate(e.vectors[i], alpha)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			out[i] = v
		}
	})
	return firstErr
}
