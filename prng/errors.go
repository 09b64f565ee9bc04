// Package prng provides deterministic seeded pseudo-random generators:
// a 32/64-bit linear congruential generator and a 4-tap lagged
// Fibonacci generator, plus uniform integer and uniform float samplers
// built on top of either. Determinism given an identical seed is a hard
// contract — no generator in this package reads wall-clock time.
package prng

import "errors"

// ErrNegativeBound indicates UniformInt was asked to sample on [0,bound]
// with a negative bound.
var ErrNegativeBound = errors.New("prng: bound must be >= 0")
