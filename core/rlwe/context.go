package rlwe

import (
	"fmt"
	"math"
	"math/big"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// ContextOption configures a [Context].
type ContextOption func(*Context)

// WithArena sets the scratch [Arena] of the context.
// The arena can be shared between contexts of the same ring degree.
func WithArena(arena *Arena) ContextOption {
	return func(ctx *Context) {
		ctx.arena = arena
	}
}

// levelData stores the precomputed values of one level of the modulus chain.
type levelData struct {
	ringQ *ring.Ring
	q     *big.Int
	qHalf *big.Int
	logQ  float64
	delta *big.Int // floor(Q/T), Exact only
}

// Context is the validated, precomputed form of a [ParameterSet]:
// the ring and the modulus of every level of the chain.
// A Context is read-only after creation and safe for concurrent use.
type Context struct {
	params ParameterSet
	ringQ  *ring.Ring
	levels []levelData
	xs, xe Distribution
	arena  *Arena
	digest [8]byte
}

// NewContext validates params and precomputes the level chain.
// It returns a nil context and an error wrapping [ErrInvalidParameters]
// if the parameters are invalid. No randomness is consumed.
func NewContext(params ParameterSet, opts ...ContextOption) (ctx *Context, err error) {

	if err = params.Validate(); err != nil {
		return nil, fmt.Errorf("cannot NewContext: %w", err)
	}

	ringQ, err := ring.NewRing(params.N(), params.q)
	if err != nil {
		return nil, fmt.Errorf("cannot NewContext: %w: %w", ErrInvalidParameters, err)
	}

	ctx = &Context{
		params: NewParameterSet(params.scheme, params.n, params.q, params.t),
		ringQ:  ringQ,
		levels: make([]levelData, params.QCount()),
		xs:     NewDistribution(DefaultXs),
		xe:     NewDistribution(DefaultXe),
		digest: params.Digest(),
	}

	for level := range ctx.levels {
		count := params.QCount() - level
		Q := bigQ(params.q[:count])
		ld := levelData{
			ringQ: ringQ.AtLevel(count - 1),
			q:     Q,
			qHalf: new(big.Int).Rsh(Q, 1),
			logQ:  Log2Big(Q),
		}
		if params.scheme == Exact {
			ld.delta = new(big.Int).Quo(Q, new(big.Int).SetUint64(params.t))
		}
		ctx.levels[level] = ld
	}

	for _, opt := range opts {
		opt(ctx)
	}

	if ctx.arena == nil {
		ctx.arena = NewArena(params.N())
	}

	if ctx.arena.N() != params.N() {
		return nil, fmt.Errorf("cannot NewContext: arena degree %d does not match N=%d", ctx.arena.N(), params.N())
	}

	return
}

// Parameters returns a copy of the parameters of the context.
func (ctx *Context) Parameters() ParameterSet {
	return NewParameterSet(ctx.params.scheme, ctx.params.n, ctx.params.q, ctx.params.t)
}

// Scheme returns the scheme of the context.
func (ctx *Context) Scheme() Scheme {
	return ctx.params.scheme
}

// N returns the ring degree.
func (ctx *Context) N() int {
	return ctx.params.n
}

// T returns the plaintext modulus.
func (ctx *Context) T() uint64 {
	return ctx.params.t
}

// MaxLevel returns the deepest level of the chain.
func (ctx *Context) MaxLevel() int {
	return len(ctx.levels) - 1
}

// Arena returns the scratch arena of the context.
func (ctx *Context) Arena() *Arena {
	return ctx.arena
}

// Digest returns the digest of the parameters of the context.
func (ctx *Context) Digest() [8]byte {
	return ctx.digest
}

// Xs returns the distribution of the secret.
func (ctx *Context) Xs() Distribution {
	return ctx.xs
}

// Xe returns the distribution of the error.
func (ctx *Context) Xe() Distribution {
	return ctx.xe
}

// RingQ returns the ring of the full modulus chain.
func (ctx *Context) RingQ() *ring.Ring {
	return ctx.ringQ
}

// RingAt returns the ring of the given level.
func (ctx *Context) RingAt(level int) *ring.Ring {
	return ctx.levelData(level).ringQ
}

// QAt returns the product of the moduli of the given level.
func (ctx *Context) QAt(level int) *big.Int {
	return new(big.Int).Set(ctx.levelData(level).q)
}

// LogQAt returns log2 of the modulus of the given level.
func (ctx *Context) LogQAt(level int) float64 {
	return ctx.levelData(level).logQ
}

// DeltaAt returns floor(Q/T) at the given level, or nil for the [Approximate] scheme.
func (ctx *Context) DeltaAt(level int) *big.Int {
	if d := ctx.levelData(level).delta; d != nil {
		return new(big.Int).Set(d)
	}
	return nil
}

// LastModulusAt returns the modulus dropped when leaving the given level.
func (ctx *Context) LastModulusAt(level int) uint64 {
	ctx.levelData(level)
	return ctx.params.q[len(ctx.params.q)-1-level]
}

// ModuliCountAt returns the number of moduli of the given level.
func (ctx *Context) ModuliCountAt(level int) int {
	ctx.levelData(level)
	return len(ctx.params.q) - level
}

// DefaultScale returns the scale assigned to new plaintexts: 1 for [Exact],
// and for [Approximate] the power of two closest to the last modulus of the chain,
// so that the scale is stable across a product followed by a rescale.
func (ctx *Context) DefaultScale() float64 {
	if ctx.params.scheme == Exact {
		return 1
	}
	if len(ctx.params.q) == 1 {
		return math.Exp2(math.Round(math.Log2(float64(ctx.params.q[0])) / 2))
	}
	return math.Exp2(math.Round(math.Log2(float64(ctx.params.q[len(ctx.params.q)-1]))))
}

func (ctx *Context) levelData(level int) levelData {
	if level < 0 || level >= len(ctx.levels) {
		// Sanity check, callers validate levels first.
		panic(fmt.Errorf("level %d is not in [0, %d]", level, len(ctx.levels)-1))
	}
	return ctx.levels[level]
}

// checkLevel returns an error if level is not a level of the chain.
func (ctx *Context) checkLevel(level int) error {
	if level < 0 || level > ctx.MaxLevel() {
		return fmt.Errorf("%w: level %d is not in [0, %d]", ErrLevelMismatch, level, ctx.MaxLevel())
	}
	return nil
}

// checkElement returns an error if the element was not produced under the
// scheme of the context or does not have the shape of its level.
func (ctx *Context) checkElement(md *MetaData, polys ...ring.Poly) error {
	if md.Scheme != ctx.params.scheme {
		return fmt.Errorf("%w: element scheme %s does not match context scheme %s", ErrSchemeMismatch, md.Scheme, ctx.params.scheme)
	}
	if err := ctx.checkLevel(md.Level); err != nil {
		return err
	}
	count := ctx.ModuliCountAt(md.Level)
	for i := range polys {
		if len(polys[i].Coeffs) != count || len(polys[i].Coeffs[0]) != ctx.params.n {
			return fmt.Errorf("%w: polynomial %d does not match the shape of level %d", ErrLevelMismatch, i, md.Level)
		}
	}
	return nil
}
