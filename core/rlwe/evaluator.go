package rlwe

import (
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// ScaleTolerance is the relative tolerance under which two scales are considered equal.
const ScaleTolerance = 1e-9

// Evaluator is a struct that holds the necessary elements to execute the
// homomorphic operations of a linear function: plaintext products, additions
// and rescaling. It holds no key.
// An Evaluator is safe for concurrent use on distinct outputs.
//
// Every method checks its operands before writing on its output, so that a
// failed call leaves all its arguments unchanged.
type Evaluator struct {
	ctx *Context
}

// NewEvaluator creates a new [Evaluator].
func NewEvaluator(ctx *Context) *Evaluator {
	return &Evaluator{ctx: ctx}
}

// MulPlain multiplies ct by pt and writes the result on out, at the level of ct.
// The operands must be at the same level. For [Approximate], the output scale is the
// product of the input scales and the operation fails at the last level of the chain,
// since the product could not be rescaled.
func (eval Evaluator) MulPlain(ct *Ciphertext, pt *Plaintext, out *Ciphertext) (err error) {

	ctx := eval.ctx

	if err = eval.checkOperands(ct, pt, out); err != nil {
		return fmt.Errorf("cannot MulPlain: %w", err)
	}

	level := ct.Level
	scale := 1.0

	if ctx.Scheme() == Approximate {

		if level == ctx.MaxLevel() {
			return fmt.Errorf("cannot MulPlain: %w: ciphertext is at the last level %d", ErrModulusChainExhausted, level)
		}

		scale = ct.Scale * pt.Scale

		if math.Log2(scale) >= ctx.LogQAt(level)-1 {
			return fmt.Errorf("cannot MulPlain: %w: log2(scale)=%.2f does not fit in log2(Q)=%.2f", ErrScaleOutOfBounds, math.Log2(scale), ctx.LogQAt(level))
		}
	}

	ringQ := ctx.RingAt(level)

	buff := ctx.arena.GetBuffPoly(ctx.ModuliCountAt(level))
	defer ctx.arena.RecycleBuffPoly(buff)

	eval.liftPlaintext(pt, *buff)
	ringQ.MForm(*buff, *buff)

	md := MetaData{
		Scheme:       ctx.Scheme(),
		Level:        level,
		Scale:        scale,
		IsNTT:        true,
		NoiseBound:   ctx.mulPlainNoiseBound(&ct.MetaData, &pt.MetaData),
		MessageBound: ct.MessageBound * pt.PlainNorm,
	}

	eval.resize(out, level)

	for i := range ct.Value {
		ringQ.MulCoeffsMontgomery(ct.Value[i], *buff, out.Value[i])
	}

	out.MetaData = md

	return
}

// MulPlainNew multiplies ct by pt and returns the result on a new ciphertext.
func (eval Evaluator) MulPlainNew(ct *Ciphertext, pt *Plaintext) (out *Ciphertext, err error) {
	out = &Ciphertext{}
	if err = eval.MulPlain(ct, pt, out); err != nil {
		return nil, err
	}
	return
}

// Rescale divides an [Approximate] ciphertext by the last modulus of its level,
// rounding to the nearest, and writes the result on out one level deeper.
// The scale is divided by the same modulus, and must not drop below 1.
func (eval Evaluator) Rescale(ct, out *Ciphertext) (err error) {

	ctx := eval.ctx

	if ctx.Scheme() != Approximate {
		return fmt.Errorf("cannot Rescale: %w: not defined for the %s scheme", ErrSchemeMismatch, ctx.Scheme())
	}

	if err = eval.checkDrop(ct, out); err != nil {
		return fmt.Errorf("cannot Rescale: %w", err)
	}

	q := ctx.LastModulusAt(ct.Level)

	if ct.Scale < float64(q) {
		return fmt.Errorf("cannot Rescale: %w: scale 2^%.2f is smaller than the dropped modulus 2^%.2f", ErrScaleOutOfBounds, math.Log2(ct.Scale), math.Log2(float64(q)))
	}

	md := ct.MetaData
	md.Level++
	md.Scale /= float64(q)
	md.NoiseBound = ctx.dropModulusNoiseBound(&ct.MetaData, q)
	md.MessageBound /= float64(q)

	eval.divRoundByLastModulus(ct, out)

	out.MetaData = md

	return
}

// RescaleNew rescales ct and returns the result on a new ciphertext.
func (eval Evaluator) RescaleNew(ct *Ciphertext) (out *Ciphertext, err error) {
	out = &Ciphertext{}
	if err = eval.Rescale(ct, out); err != nil {
		return nil, err
	}
	return
}

// ModSwitch drops the last modulus of the level of ct without changing the
// message and writes the result on out one level deeper. For [Exact], the
// ciphertext is divided by the dropped modulus with rounding, which also divides
// the noise. For [Approximate], the last residue is discarded.
func (eval Evaluator) ModSwitch(ct, out *Ciphertext) (err error) {

	ctx := eval.ctx

	if err = eval.checkDrop(ct, out); err != nil {
		return fmt.Errorf("cannot ModSwitch: %w", err)
	}

	md := ct.MetaData
	md.Level++

	switch ctx.Scheme() {
	case Exact:
		q := ctx.LastModulusAt(ct.Level)
		md.NoiseBound = ctx.dropModulusNoiseBound(&ct.MetaData, q)
		eval.divRoundByLastModulus(ct, out)
	default:
		count := ctx.ModuliCountAt(md.Level)
		if out != ct {
			eval.resize(out, md.Level)
			for i := range ct.Value {
				copyPoly(out.Value[i], ct.Value[i])
			}
		} else {
			for i := range out.Value {
				out.Value[i].Coeffs = out.Value[i].Coeffs[:count]
			}
		}
	}

	out.MetaData = md

	return
}

// Add adds a and b and writes the result on out.
// The operands must share the same level and scale.
func (eval Evaluator) Add(a, b, out *Ciphertext) (err error) {

	if out == nil {
		return fmt.Errorf("cannot Add: output ciphertext is nil")
	}

	if err = eval.checkAdd(a, b); err != nil {
		return fmt.Errorf("cannot Add: %w", err)
	}

	md := a.MetaData
	md.NoiseBound = a.NoiseBound + b.NoiseBound
	md.MessageBound = a.MessageBound + b.MessageBound

	eval.resize(out, a.Level)

	ringQ := eval.ctx.RingAt(a.Level)
	for i := range a.Value {
		ringQ.Add(a.Value[i], b.Value[i], out.Value[i])
	}

	out.MetaData = md

	return
}

// AddNew adds a and b and returns the result on a new ciphertext.
func (eval Evaluator) AddNew(a, b *Ciphertext) (out *Ciphertext, err error) {
	out = &Ciphertext{}
	if err = eval.Add(a, b, out); err != nil {
		return nil, err
	}
	return
}

// AddMany returns the sum of the ciphertexts on a new ciphertext.
// All the ciphertexts must share the same level and scale.
func (eval Evaluator) AddMany(cts []*Ciphertext) (sum *Ciphertext, err error) {

	if len(cts) == 0 {
		return nil, fmt.Errorf("cannot AddMany: %w", ErrEmptyInput)
	}

	for i := range cts {
		if cts[i] == nil {
			return nil, fmt.Errorf("cannot AddMany: ciphertext %d is nil", i)
		}
		if err = eval.checkAdd(cts[0], cts[i]); err != nil {
			return nil, fmt.Errorf("cannot AddMany: ciphertext %d: %w", i, err)
		}
	}

	sum = cts[0].CopyNew()

	for _, ct := range cts[1:] {
		if err = eval.Add(sum, ct, sum); err != nil {
			// Sanity check, the operands were checked above.
			panic(err)
		}
	}

	return
}

// AddPlain adds pt to ct and writes the result on out.
// The operands must be at the same level; for [Approximate] they must also share the same scale.
// An [Exact] plaintext is lifted by Delta_l = floor(Q_l/T).
func (eval Evaluator) AddPlain(ct *Ciphertext, pt *Plaintext, out *Ciphertext) (err error) {

	ctx := eval.ctx

	if err = eval.checkOperands(ct, pt, out); err != nil {
		return fmt.Errorf("cannot AddPlain: %w", err)
	}

	if ctx.Scheme() == Approximate && !scalesEqual(ct.Scale, pt.Scale) {
		return fmt.Errorf("cannot AddPlain: %w: %v != %v", ErrScaleMismatch, ct.Scale, pt.Scale)
	}

	level := ct.Level
	ringQ := ctx.RingAt(level)

	md := ct.MetaData
	md.NoiseBound += pt.NoiseBound
	md.MessageBound += pt.MessageBound

	eval.resize(out, level)
	if out != ct {
		copyPoly(out.Value[1], ct.Value[1])
	}

	switch ctx.Scheme() {
	case Exact:
		// the sum of the messages is reduced modulo T by Delta*T = -(Q mod T)
		md.NoiseBound += float64(ctx.T())
		buff := ctx.arena.GetBuffPoly(ctx.ModuliCountAt(level))
		defer ctx.arena.RecycleBuffPoly(buff)
		ringQ.MulScalarBigint(pt.Value, ctx.levels[level].delta, *buff)
		ringQ.NTT(*buff, *buff)
		ringQ.Add(ct.Value[0], *buff, out.Value[0])
	default:
		ringQ.Add(ct.Value[0], pt.Value, out.Value[0])
	}

	out.MetaData = md

	return
}

// liftPlaintext writes on out the plaintext as a polynomial modulo Q_l in the NTT domain.
// Exact coefficients are centered in (-T/2, T/2].
func (eval Evaluator) liftPlaintext(pt *Plaintext, out ring.Poly) {

	ctx := eval.ctx

	if ctx.Scheme() == Approximate {
		copyPoly(out, pt.Value)
		return
	}

	T := ctx.T()
	half := T >> 1
	moduli := ctx.params.q

	for i := range out.Coeffs {
		qi := moduli[i]
		src, dst := pt.Value.Coeffs[i], out.Coeffs[i]
		for j, c := range src {
			if c > half {
				dst[j] = qi - (T - c)
			} else {
				dst[j] = c
			}
		}
	}

	ctx.RingAt(pt.Level).NTT(out, out)
}

// divRoundByLastModulus writes round(ct/q_last) on out, one level deeper.
func (eval Evaluator) divRoundByLastModulus(ct, out *Ciphertext) {

	ctx := eval.ctx
	level := ct.Level
	count := ctx.ModuliCountAt(level)
	ringQ := ctx.RingAt(level)

	buff := ctx.arena.GetBuffPoly(count)
	defer ctx.arena.RecycleBuffPoly(buff)

	Value := make([]ring.Poly, len(ct.Value))
	for i := range ct.Value {
		Value[i] = ring.NewPoly(ctx.N(), count-1)
		ringQ.DivRoundByLastModulusNTT(ct.Value[i], *buff, Value[i])
		Value[i].Coeffs = Value[i].Coeffs[:count-1]
	}

	out.Value = Value
}

// resize makes out a degree one ciphertext of the shape of the given level.
func (eval Evaluator) resize(out *Ciphertext, level int) {
	count := eval.ctx.ModuliCountAt(level)
	if len(out.Value) == 2 && len(out.Value[0].Coeffs) == count && len(out.Value[1].Coeffs) == count {
		return
	}
	out.Value = []ring.Poly{
		ring.NewPoly(eval.ctx.N(), count-1),
		ring.NewPoly(eval.ctx.N(), count-1),
	}
}

func (eval Evaluator) checkCiphertext(ct *Ciphertext) error {
	return eval.ctx.CheckCiphertext(ct)
}

// checkOperands checks a ciphertext-plaintext pair.
func (eval Evaluator) checkOperands(ct *Ciphertext, pt *Plaintext, out *Ciphertext) error {

	if out == nil {
		return fmt.Errorf("output ciphertext is nil")
	}

	if err := eval.checkCiphertext(ct); err != nil {
		return err
	}

	if pt == nil {
		return fmt.Errorf("plaintext is nil")
	}

	if pt.Scheme != eval.ctx.Scheme() {
		return fmt.Errorf("%w: plaintext scheme %s does not match context scheme %s", ErrSchemeMismatch, pt.Scheme, eval.ctx.Scheme())
	}

	if ct.Level != pt.Level {
		return fmt.Errorf("%w: ciphertext level %d != plaintext level %d", ErrLevelMismatch, ct.Level, pt.Level)
	}

	if err := eval.ctx.checkElement(&pt.MetaData, pt.Value); err != nil {
		return err
	}

	if want := eval.ctx.Scheme() == Approximate; pt.IsNTT != want {
		return fmt.Errorf("%w: plaintext IsNTT=%t but the %s scheme expects %t", ErrInvalidEncoding, pt.IsNTT, eval.ctx.Scheme(), want)
	}

	return nil
}

// checkDrop checks an operation that drops the last modulus.
func (eval Evaluator) checkDrop(ct, out *Ciphertext) error {

	if out == nil {
		return fmt.Errorf("output ciphertext is nil")
	}

	if err := eval.checkCiphertext(ct); err != nil {
		return err
	}

	if ct.Level == eval.ctx.MaxLevel() {
		return fmt.Errorf("%w: ciphertext is at the last level %d", ErrModulusChainExhausted, ct.Level)
	}

	return nil
}

// checkAdd checks a ciphertext-ciphertext pair.
func (eval Evaluator) checkAdd(a, b *Ciphertext) error {

	if err := eval.checkCiphertext(a); err != nil {
		return err
	}

	if err := eval.checkCiphertext(b); err != nil {
		return err
	}

	if a.Level != b.Level {
		return fmt.Errorf("%w: %d != %d", ErrLevelMismatch, a.Level, b.Level)
	}

	if !scalesEqual(a.Scale, b.Scale) {
		return fmt.Errorf("%w: %v != %v", ErrScaleMismatch, a.Scale, b.Scale)
	}

	return nil
}

// scalesEqual returns true if a and b are equal up to [ScaleTolerance].
func scalesEqual(a, b float64) bool {
	return math.Abs(a-b) <= ScaleTolerance*math.Max(math.Abs(a), math.Abs(b))
}
