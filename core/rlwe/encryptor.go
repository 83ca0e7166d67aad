package rlwe

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/ring"
	"github.com/tuneinsight/lattigo/v6/utils/sampling"

	"github.com/linhe/linhe/utils/entropy"
)

// Encryptor is a type for encrypting [Plaintext].
// It stores either a public key or a secret key; the latter
// gives smaller noise and is used when the client is the only party to encrypt.
// An Encryptor is safe for concurrent use if its randomness source is.
type Encryptor struct {
	ctx *Context
	pk  *PublicKey
	sk  *SecretKey
	src entropy.Source
}

// NewEncryptor creates a new [Encryptor] from either a [*PublicKey] or a [*SecretKey].
// Every encryption draws a fresh seed from src.
func NewEncryptor(ctx *Context, key any, src entropy.Source) (*Encryptor, error) {

	enc := &Encryptor{ctx: ctx, src: src}

	switch key := key.(type) {
	case *PublicKey:
		if key == nil || len(key.Value[0].Coeffs) != ctx.params.QCount() || len(key.Value[1].Coeffs) != ctx.params.QCount() {
			return nil, fmt.Errorf("cannot NewEncryptor: %w: public key does not match the parameters", ErrParametersMismatch)
		}
		enc.pk = key
	case *SecretKey:
		if key == nil || len(key.Value.Coeffs) != ctx.params.QCount() {
			return nil, fmt.Errorf("cannot NewEncryptor: %w: secret key does not match the parameters", ErrParametersMismatch)
		}
		enc.sk = key
	default:
		return nil, fmt.Errorf("cannot NewEncryptor: key must be either *rlwe.PublicKey or *rlwe.SecretKey but have %T", key)
	}

	return enc, nil
}

// Encrypt encrypts the input plaintext on a new ciphertext at level 0 with the
// scale of the plaintext. [Exact] plaintexts are lifted by Delta_0 = floor(Q/T).
// The output is probabilistic: encrypting twice the same plaintext yields
// different ciphertexts.
func (enc Encryptor) Encrypt(pt *Plaintext) (ct *Ciphertext, err error) {

	ctx := enc.ctx

	if err = ctx.CheckPlaintext(pt); err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	if pt.Level != 0 {
		return nil, fmt.Errorf("cannot Encrypt: %w: plaintext level %d must be 0", ErrLevelMismatch, pt.Level)
	}

	if want := ctx.Scheme() == Approximate; pt.IsNTT != want {
		return nil, fmt.Errorf("cannot Encrypt: %w: plaintext IsNTT=%t but the %s scheme expects %t", ErrInvalidEncoding, pt.IsNTT, ctx.Scheme(), want)
	}

	prng, err := entropy.NewPRNG(enc.src)
	if err != nil {
		return nil, fmt.Errorf("cannot Encrypt: %w", err)
	}

	ct = ctx.NewCiphertext(0)

	if enc.pk != nil {
		enc.encryptZeroPk(prng, ct)
	} else {
		enc.encryptZeroSk(prng, ct)
	}

	ringQ := ctx.RingAt(0)
	c0 := ct.Value[0]

	switch ctx.Scheme() {
	case Exact:
		buff := ctx.arena.GetBuffPoly(ctx.ModuliCountAt(0))
		defer ctx.arena.RecycleBuffPoly(buff)
		ringQ.MulScalarBigint(pt.Value, ctx.levels[0].delta, *buff)
		ringQ.NTT(*buff, *buff)
		ringQ.Add(c0, *buff, c0)
	default:
		ringQ.Add(c0, pt.Value, c0)
	}

	ct.Scale = pt.Scale
	ct.NoiseBound = ctx.freshNoiseBound(enc.pk != nil) + pt.NoiseBound
	if ctx.Scheme() == Exact {
		// Delta*T = -(Q mod T) on the coefficients stored as T-|m|
		ct.NoiseBound += float64(ctx.T())
	}
	ct.MessageBound = pt.MessageBound

	return ct, nil
}

// encryptZeroPk generates an encryption of zero under the public key:
// (u*pk0 + e0, u*pk1 + e1) with u ternary.
func (enc Encryptor) encryptZeroPk(prng sampling.PRNG, ct *Ciphertext) {

	ctx := enc.ctx
	levelQ := ct.Level
	ringQ := ctx.RingAt(levelQ)

	xs, xe := enc.samplers(prng, ringQ)

	buffQ0 := ctx.arena.GetBuffPoly(ctx.ModuliCountAt(levelQ))
	defer ctx.arena.RecycleBuffPoly(buffQ0)

	xs.Read(*buffQ0)
	ringQ.NTT(*buffQ0, *buffQ0)

	c0, c1 := ct.Value[0], ct.Value[1]

	// ct0 = NTT(u*pk0)
	ringQ.MulCoeffsMontgomery(*buffQ0, enc.pk.Value[0], c0)
	// ct1 = NTT(u*pk1)
	ringQ.MulCoeffsMontgomery(*buffQ0, enc.pk.Value[1], c1)

	// c0
	xe.Read(*buffQ0)
	ringQ.NTT(*buffQ0, *buffQ0)
	ringQ.Add(c0, *buffQ0, c0)

	// c1
	xe.Read(*buffQ0)
	ringQ.NTT(*buffQ0, *buffQ0)
	ringQ.Add(c1, *buffQ0, c1)
}

// encryptZeroSk generates an encryption of zero under the secret key: (-a*s + e, a).
func (enc Encryptor) encryptZeroSk(prng sampling.PRNG, ct *Ciphertext) {

	ctx := enc.ctx
	levelQ := ct.Level
	ringQ := ctx.RingAt(levelQ)

	_, xe := enc.samplers(prng, ringQ)

	c0, c1 := ct.Value[0], ct.Value[1]

	ring.NewUniformSampler(prng, ringQ).Read(c1)

	ringQ.MulCoeffsMontgomery(c1, enc.sk.Value, c0)
	ringQ.Neg(c0, c0)

	e := ctx.arena.GetBuffPoly(ctx.ModuliCountAt(levelQ))
	defer ctx.arena.RecycleBuffPoly(e)
	xe.Read(*e)
	ringQ.NTT(*e, *e)
	ringQ.Add(c0, *e, c0)
}

func (enc Encryptor) samplers(prng sampling.PRNG, ringQ *ring.Ring) (xs, xe ring.Sampler) {
	var err error
	if xs, err = ring.NewSampler(prng, ringQ, enc.ctx.Xs().DistributionParameters, false); err != nil {
		// Sanity check, the distribution is fixed.
		panic(fmt.Errorf("cannot NewSampler: %w", err))
	}
	if xe, err = ring.NewSampler(prng, ringQ, enc.ctx.Xe().DistributionParameters, false); err != nil {
		// Sanity check, the distribution is fixed.
		panic(fmt.Errorf("cannot NewSampler: %w", err))
	}
	return
}
