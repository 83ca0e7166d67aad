// Package he implements scheme agnostic functionalities for the Exact and
// Approximate homomorphic encryption schemes: a common encoding interface
// and the evaluation interface used by linear functions.
package he

import (
	"fmt"

	"github.com/linhe/linhe/core/rlwe"
	"github.com/linhe/linhe/schemes/bfv"
	"github.com/linhe/linhe/schemes/ckks"
)

// DefaultIntegerBase is the base of the integer encoder selected by [NewEncoder].
const DefaultIntegerBase = 2

// Encoder defines a set of common and scheme agnostic method provided by an Encoder struct.
//
// The accepted types of values depend on the scheme:
//
//   - Exact: int, int64, uint64, *big.Int; decoding to *int64 or *big.Int.
//   - Approximate: float64, []float64, []complex128; decoding to *float64, []float64 or []complex128.
type Encoder interface {
	Encode(values any, pt *rlwe.Plaintext) (err error)
	Decode(pt *rlwe.Plaintext, values any) (err error)
}

// Evaluator defines the set of homomorphic operations needed to evaluate a linear function.
type Evaluator interface {
	MulPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext, out *rlwe.Ciphertext) (err error)
	MulPlainNew(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (out *rlwe.Ciphertext, err error)
	Rescale(ct, out *rlwe.Ciphertext) (err error)
	RescaleNew(ct *rlwe.Ciphertext) (out *rlwe.Ciphertext, err error)
	ModSwitch(ct, out *rlwe.Ciphertext) (err error)
	Add(a, b, out *rlwe.Ciphertext) (err error)
	AddNew(a, b *rlwe.Ciphertext) (out *rlwe.Ciphertext, err error)
	AddMany(cts []*rlwe.Ciphertext) (sum *rlwe.Ciphertext, err error)
	AddPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext, out *rlwe.Ciphertext) (err error)
}

var _ Evaluator = (*rlwe.Evaluator)(nil)

// NewEncoder returns the [Encoder] of the scheme of the context:
// a [bfv.IntegerEncoder] of base [DefaultIntegerBase] for [rlwe.Exact]
// and a [ckks.Encoder] for [rlwe.Approximate].
func NewEncoder(ctx *rlwe.Context) (Encoder, error) {
	return NewEncoderWithBase(ctx, DefaultIntegerBase)
}

// NewEncoderWithBase is as [NewEncoder], with the base of the integer encoder.
// The base is ignored for [rlwe.Approximate].
func NewEncoderWithBase(ctx *rlwe.Context, base uint64) (ecd Encoder, err error) {
	switch ctx.Scheme() {
	case rlwe.Exact:
		if ecd, err = bfv.NewIntegerEncoder(ctx, base); err != nil {
			return nil, fmt.Errorf("cannot NewEncoder: %w", err)
		}
	case rlwe.Approximate:
		if ecd, err = ckks.NewEncoder(ctx); err != nil {
			return nil, fmt.Errorf("cannot NewEncoder: %w", err)
		}
	default:
		return nil, fmt.Errorf("cannot NewEncoder: %w: unknown scheme %s", rlwe.ErrInvalidParameters, ctx.Scheme())
	}
	return
}

// NewPlaintext allocates a new [rlwe.Plaintext] at the given level and scale, in
// the representation expected by the encoder of the scheme of the context.
// A scale of zero selects the default scale; the scale is ignored for [rlwe.Exact].
func NewPlaintext(ctx *rlwe.Context, level int, scale float64) *rlwe.Plaintext {
	if ctx.Scheme() == rlwe.Exact {
		return bfv.NewPlaintext(ctx, level)
	}
	return ckks.NewPlaintext(ctx, level, scale)
}
