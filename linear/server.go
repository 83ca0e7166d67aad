package linear

import (
	"fmt"
	"math"

	"github.com/linhe/linhe/core/rlwe"
	"github.com/linhe/linhe/he"
)

// Server is a struct storing the necessary elements
// for the server-side evaluation of the linear function.
// It holds no key material.
type Server struct {
	*rlwe.Context
	he.Encoder
	he.Evaluator
	cfg Config
	log Logger
}

// NewServer instantiates a new server.
func NewServer(params rlwe.ParameterSet, cfg Config, opts ...Option) (s *Server, err error) {

	o := newOptions(opts)

	if err = cfg.Validate(params); err != nil {
		return nil, fmt.Errorf("cannot NewServer: %w", err)
	}

	ctx, err := o.newContext(params)
	if err != nil {
		return nil, fmt.Errorf("cannot NewServer: %w", err)
	}

	ecd, err := he.NewEncoderWithBase(ctx, cfg.IntegerBase)
	if err != nil {
		return nil, fmt.Errorf("cannot NewServer: %w", err)
	}

	return &Server{
		Context:   ctx,
		Encoder:   ecd,
		Evaluator: rlwe.NewEvaluator(ctx),
		cfg:       cfg,
		log:       o.logger,
	}, nil
}

// WeightedSum evaluates sum_i weights[i] * cts[i].
//
// Each ciphertext is multiplied by its weight encoded at its level; for the
// Approximate scheme the product is rescaled. The products are then summed.
// Exact weights must be integers. The input ciphertexts are not modified.
// For the Approximate scheme, an error wrapping [rlwe.ErrScaleOutOfBounds] is
// returned if the rescaled scale no longer exceeds the noise of the result.
func (s Server) WeightedSum(cts []*rlwe.Ciphertext, weights []float64) (sum *rlwe.Ciphertext, err error) {

	if len(cts) == 0 {
		return nil, fmt.Errorf("cannot WeightedSum: %w", rlwe.ErrEmptyInput)
	}

	if len(weights) != len(cts) {
		return nil, fmt.Errorf("cannot WeightedSum: %w: %d weights for %d ciphertexts", ErrLengthMismatch, len(weights), len(cts))
	}

	scale := s.cfg.scale(s.Context)

	products := make([]*rlwe.Ciphertext, len(cts))
	for i := range cts {

		if cts[i] == nil {
			return nil, fmt.Errorf("cannot WeightedSum: %w: ciphertext %d is nil", rlwe.ErrEmptyInput, i)
		}

		pt, err := encodeScalar(s.Context, s.Encoder, weights[i], cts[i].Level, scale)
		if err != nil {
			return nil, fmt.Errorf("cannot WeightedSum: weight %d: %w", i, err)
		}

		if products[i], err = s.MulPlainNew(cts[i], pt); err != nil {
			return nil, fmt.Errorf("cannot WeightedSum: %w", err)
		}

		if s.Scheme() == rlwe.Approximate {
			if err = s.Rescale(products[i], products[i]); err != nil {
				return nil, fmt.Errorf("cannot WeightedSum: %w", err)
			}
		}
	}

	if sum, err = s.AddMany(products); err != nil {
		return nil, fmt.Errorf("cannot WeightedSum: %w", err)
	}

	if s.Scheme() == rlwe.Approximate && s.Precision(sum) <= 0 {
		return nil, fmt.Errorf("cannot WeightedSum: %w: scale 2^%.2f does not exceed the noise bound 2^%.2f", rlwe.ErrScaleOutOfBounds, sum.LogScale(), math.Log2(sum.NoiseBound))
	}

	s.log.PrintFormatted("server: weighted sum of %d ciphertexts at level %d, noise budget %.2f bits", len(cts), sum.Level, s.NoiseBudget(sum))

	return
}

// Affine evaluates sum_i weights[i] * cts[i] + bias.
// The bias is encoded at the level and scale of the weighted sum.
func (s Server) Affine(cts []*rlwe.Ciphertext, weights []float64, bias float64) (res *rlwe.Ciphertext, err error) {

	if res, err = s.WeightedSum(cts, weights); err != nil {
		return nil, fmt.Errorf("cannot Affine: %w", err)
	}

	pt, err := encodeScalar(s.Context, s.Encoder, bias, res.Level, res.Scale)
	if err != nil {
		return nil, fmt.Errorf("cannot Affine: bias: %w", err)
	}

	if err = s.AddPlain(res, pt, res); err != nil {
		return nil, fmt.Errorf("cannot Affine: %w", err)
	}

	return
}
