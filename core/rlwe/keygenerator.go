package rlwe

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/ring"

	"github.com/linhe/linhe/utils/entropy"
)

// KeyGenerator is a structure that stores the elements required to create new keys.
// Every generated key draws a fresh seed from the randomness source.
type KeyGenerator struct {
	ctx *Context
	src entropy.Source
}

// NewKeyGenerator creates a new [KeyGenerator] drawing its randomness from src.
func NewKeyGenerator(ctx *Context, src entropy.Source) *KeyGenerator {
	return &KeyGenerator{ctx: ctx, src: src}
}

// GenSecretKey generates a new ternary [SecretKey].
func (kgen KeyGenerator) GenSecretKey() (sk *SecretKey, err error) {

	prng, err := entropy.NewPRNG(kgen.src)
	if err != nil {
		return nil, fmt.Errorf("cannot GenSecretKey: %w", err)
	}

	ringQ := kgen.ctx.RingQ()

	ts, err := ring.NewSampler(prng, ringQ, kgen.ctx.Xs().DistributionParameters, false)
	if err != nil {
		// Sanity check, the distribution is fixed.
		panic(fmt.Errorf("cannot GenSecretKey: %w", err))
	}

	sk = kgen.ctx.NewSecretKey()
	ts.Read(sk.Value)
	ringQ.NTT(sk.Value, sk.Value)
	ringQ.MForm(sk.Value, sk.Value)

	return
}

// GenPublicKey generates a new [PublicKey] from the provided [SecretKey].
// Each call returns a different public key.
func (kgen KeyGenerator) GenPublicKey(sk *SecretKey) (pk *PublicKey, err error) {

	if sk == nil || len(sk.Value.Coeffs) != kgen.ctx.params.QCount() {
		return nil, fmt.Errorf("cannot GenPublicKey: %w: secret key does not match the parameters", ErrParametersMismatch)
	}

	prng, err := entropy.NewPRNG(kgen.src)
	if err != nil {
		return nil, fmt.Errorf("cannot GenPublicKey: %w", err)
	}

	ringQ := kgen.ctx.RingQ()

	xe, err := ring.NewSampler(prng, ringQ, kgen.ctx.Xe().DistributionParameters, false)
	if err != nil {
		// Sanity check, the distribution is fixed.
		panic(fmt.Errorf("cannot GenPublicKey: %w", err))
	}

	pk = kgen.ctx.NewPublicKey()

	// pk1 = a, sampled directly in the NTT domain
	ring.NewUniformSampler(prng, ringQ).Read(pk.Value[1])

	// pk0 = -a*s + e
	ringQ.MulCoeffsMontgomery(pk.Value[1], sk.Value, pk.Value[0])
	ringQ.Neg(pk.Value[0], pk.Value[0])

	e := kgen.ctx.arena.GetBuffPoly(kgen.ctx.params.QCount())
	defer kgen.ctx.arena.RecycleBuffPoly(e)
	xe.Read(*e)
	ringQ.NTT(*e, *e)
	ringQ.Add(pk.Value[0], *e, pk.Value[0])

	ringQ.MForm(pk.Value[0], pk.Value[0])
	ringQ.MForm(pk.Value[1], pk.Value[1])

	return
}

// GenKeyPair generates a new [SecretKey] and a matching [PublicKey].
func (kgen KeyGenerator) GenKeyPair() (sk *SecretKey, pk *PublicKey, err error) {
	if sk, err = kgen.GenSecretKey(); err != nil {
		return nil, nil, err
	}
	if pk, err = kgen.GenPublicKey(sk); err != nil {
		return nil, nil, err
	}
	return
}
