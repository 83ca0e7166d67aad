// Package linear evaluates linear functions over encrypted data: a client
// encrypts its inputs, a server computes the weighted sum of the ciphertexts
// with plaintext weights it owns, and the client decrypts the result.
package linear

import (
	"fmt"
	"math"
	"math/big"

	"github.com/linhe/linhe/core/rlwe"
	"github.com/linhe/linhe/he"
	"github.com/linhe/linhe/utils/entropy"
)

// Client is a struct storing the necessary elements
// to encode, encrypt and decrypt values.
type Client struct {
	*rlwe.Context
	he.Encoder
	*rlwe.Encryptor
	*rlwe.Decryptor
	pk  *rlwe.PublicKey
	cfg Config
	log Logger
}

// NewClient instantiates a new client: it generates a key pair from src,
// which is also the source of the randomness of the encryptions.
func NewClient(params rlwe.ParameterSet, src entropy.Source, cfg Config, opts ...Option) (c *Client, err error) {

	o := newOptions(opts)

	if err = cfg.Validate(params); err != nil {
		return nil, fmt.Errorf("cannot NewClient: %w", err)
	}

	ctx, err := o.newContext(params)
	if err != nil {
		return nil, fmt.Errorf("cannot NewClient: %w", err)
	}

	ecd, err := he.NewEncoderWithBase(ctx, cfg.IntegerBase)
	if err != nil {
		return nil, fmt.Errorf("cannot NewClient: %w", err)
	}

	sk, pk, err := rlwe.NewKeyGenerator(ctx, src).GenKeyPair()
	if err != nil {
		return nil, fmt.Errorf("cannot NewClient: %w", err)
	}

	var key any = pk
	if cfg.Symmetric {
		key = sk
	}

	enc, err := rlwe.NewEncryptor(ctx, key, src)
	if err != nil {
		return nil, fmt.Errorf("cannot NewClient: %w", err)
	}

	dec, err := rlwe.NewDecryptor(ctx, sk)
	if err != nil {
		return nil, fmt.Errorf("cannot NewClient: %w", err)
	}

	o.logger.PrintFormatted("client: %s parameters, logN=%d, logQ=%.2f, #Q=%d", params.Scheme(), params.LogN(), params.LogQ(), params.QCount())

	return &Client{
		Context:   ctx,
		Encoder:   ecd,
		Encryptor: enc,
		Decryptor: dec,
		pk:        pk,
		cfg:       cfg,
		log:       o.logger,
	}, nil
}

// PublicKey returns the public key of the client.
func (c Client) PublicKey() *rlwe.PublicKey {
	return c.pk
}

// EncryptValues encodes and encrypts each value on its own ciphertext, at level 0.
// Exact values must be integers.
func (c Client) EncryptValues(values []float64) (cts []*rlwe.Ciphertext, err error) {

	if len(values) == 0 {
		return nil, fmt.Errorf("cannot EncryptValues: %w", rlwe.ErrEmptyInput)
	}

	pts := make([]*rlwe.Plaintext, len(values))
	for i, v := range values {
		if pts[i], err = encodeScalar(c.Context, c.Encoder, v, 0, c.cfg.scale(c.Context)); err != nil {
			return nil, fmt.Errorf("cannot EncryptValues: value %d: %w", i, err)
		}
	}

	cts = make([]*rlwe.Ciphertext, len(values))
	for i := range pts {
		if cts[i], err = c.Encrypt(pts[i]); err != nil {
			return nil, fmt.Errorf("cannot EncryptValues: %w", err)
		}
	}

	c.log.PrintFormatted("client: encrypted %d values, noise budget %.2f bits", len(cts), c.NoiseBudget(cts[0]))

	return
}

// Decrypt decrypts and decodes the ciphertext.
// A warning is logged if the noise budget of the ciphertext is exhausted, or if
// the scale of an Approximate ciphertext no longer exceeds its noise, in which
// case the result is meaningless but still returned.
func (c Client) Decrypt(ct *rlwe.Ciphertext) (v float64, err error) {

	if err = c.CheckCiphertext(ct); err != nil {
		return 0, fmt.Errorf("cannot Decrypt: %w", err)
	}

	budget := c.NoiseBudget(ct)

	if c.Scheme() == rlwe.Exact {
		if budget, err = c.InvariantNoiseBudget(ct); err != nil {
			return 0, fmt.Errorf("cannot Decrypt: %w", err)
		}
	}

	switch {
	case budget <= 0:
		c.log.PrintFormatted("client: warning: noise budget exhausted (%.2f bits), decryption is likely incorrect", budget)
	case c.Scheme() == rlwe.Approximate && c.Precision(ct) <= 0:
		c.log.PrintFormatted("client: warning: precision exhausted (%.2f bits at scale 2^%.2f), decryption is likely incorrect", c.Precision(ct), ct.LogScale())
	default:
		c.log.PrintFormatted("client: decrypting at level %d, noise budget %.2f bits", ct.Level, budget)
	}

	pt, err := c.Decryptor.Decrypt(ct)
	if err != nil {
		return 0, fmt.Errorf("cannot Decrypt: %w", err)
	}

	if v, err = decodeScalar(c.Context, c.Encoder, pt); err != nil {
		return 0, fmt.Errorf("cannot Decrypt: %w", err)
	}

	return
}

// encodeScalar encodes v on a new plaintext at the given level and scale.
func encodeScalar(ctx *rlwe.Context, ecd he.Encoder, v float64, level int, scale float64) (pt *rlwe.Plaintext, err error) {

	pt = he.NewPlaintext(ctx, level, scale)

	if ctx.Scheme() == rlwe.Exact {
		if math.Trunc(v) != v || math.Abs(v) >= 0x1p63 {
			return nil, fmt.Errorf("%w: %v is not an int64", rlwe.ErrInvalidEncoding, v)
		}
		err = ecd.Encode(int64(v), pt)
	} else {
		err = ecd.Encode(v, pt)
	}

	return
}

// decodeScalar decodes the first value of pt. Exact values are decoded as
// integers of arbitrary size and rounded to the nearest float64, which is
// infinite if they exceed its range.
func decodeScalar(ctx *rlwe.Context, ecd he.Encoder, pt *rlwe.Plaintext) (v float64, err error) {

	if ctx.Scheme() == rlwe.Exact {
		i := new(big.Int)
		if err = ecd.Decode(pt, i); err != nil {
			return
		}
		v, _ = new(big.Float).SetInt(i).Float64()
		return v, nil
	}

	err = ecd.Decode(pt, &v)
	return
}
