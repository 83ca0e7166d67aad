package rlwe

import (
	"fmt"
	"sync"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// Arena is a pool of scratch polynomials used as temporary buffers by the
// [Encryptor], [Decryptor] and [Evaluator] of a [Context].
// Polynomials are pooled by number of moduli.
// An Arena is safe for concurrent use.
type Arena struct {
	n     int
	pools sync.Map // int -> *sync.Pool
}

// NewArena returns a new [Arena] of polynomials of degree N.
func NewArena(N int) *Arena {
	if !IsPowerOfTwo(N) {
		panic(fmt.Errorf("cannot NewArena: N=%d is not a power of two", N))
	}
	return &Arena{n: N}
}

// N returns the degree of the polynomials of the arena.
func (a *Arena) N() int {
	return a.n
}

func (a *Arena) pool(count int) *sync.Pool {
	if p, ok := a.pools.Load(count); ok {
		return p.(*sync.Pool)
	}
	n := a.n
	p, _ := a.pools.LoadOrStore(count, &sync.Pool{
		New: func() any {
			pol := ring.NewPoly(n, count-1)
			return &pol
		},
	})
	return p.(*sync.Pool)
}

// GetBuffPoly returns a polynomial with count moduli whose coefficients are unspecified.
// After use, the polynomial should be recycled with [Arena.RecycleBuffPoly].
func (a *Arena) GetBuffPoly(count int) *ring.Poly {
	if count < 1 {
		panic(fmt.Errorf("cannot GetBuffPoly: count=%d must be at least one", count))
	}
	return a.pool(count).Get().(*ring.Poly)
}

// RecycleBuffPoly returns the polynomial to the arena.
// The polynomial must not be used after calling this method.
func (a *Arena) RecycleBuffPoly(pol *ring.Poly) {
	if pol == nil || len(pol.Coeffs) == 0 || len(pol.Coeffs[0]) != a.n {
		return
	}
	a.pool(len(pol.Coeffs)).Put(pol)
}
