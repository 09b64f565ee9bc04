package kernel

// Kind selects the kernel function evaluated by an Engine.
type Kind int

const (
	// Linear is k(x,y) = <x,y>.
	Linear Kind = iota

	// Gaussian is k(x,y) = exp(gamma*(2<x,y> - ||x||^2 - ||y||^2)), gamma>0.
	Gaussian
)

// config holds Engine construction options.
type config struct {
	gamma       float64
	cacheSize   int
	parallelism int
}

// Option configures an Engine at construction time.
type Option func(*config)

// WithGamma sets the Gaussian kernel's gamma hyperparameter (ignored for
// Linear).
func WithGamma(gamma float64) Option {
	return func(c *config) { c.gamma = gamma }
}

// WithCacheSize sets the row-cache capacity (0 disables caching).
func WithCacheSize(n int) Option {
	return func(c *config) { c.cacheSize = n }
}

// WithParallelism sets the number of goroutines used by the parallel-for
// regions (Row materialization batches, RecalculateResponses,
// EvaluateDataset). n==1 disables parallelism; n<=0 (the default when
// unset) uses runtime.GOMAXPROCS(0).
func WithParallelism(n int) Option {
	return func(c *config) { c.parallelism = n }
}

func newConfig(opts ...Option) config {
	c := config{gamma: 0, cacheSize: 0, parallelism: 0}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
