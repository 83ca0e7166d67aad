package rlwe

import (
	"errors"

	"github.com/linhe/linhe/utils/entropy"
)

var (
	// ErrInvalidParameters is returned when a [ParameterSet] fails validation.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrLevelMismatch is returned when the operands of an operation are not at the same level.
	ErrLevelMismatch = errors.New("level mismatch")

	// ErrScaleMismatch is returned when the operands of an addition do not share the same scale.
	ErrScaleMismatch = errors.New("scale mismatch")

	// ErrModulusChainExhausted is returned when an operation needs a modulus that is no longer available.
	ErrModulusChainExhausted = errors.New("modulus chain exhausted")

	// ErrInsufficientEntropy is returned when the randomness source fails.
	ErrInsufficientEntropy = entropy.ErrInsufficientEntropy

	// ErrEmptyInput is returned by accumulations over zero operands.
	ErrEmptyInput = errors.New("empty input")

	// ErrSchemeMismatch is returned when an operand was produced under the other scheme
	// or when an operation is not defined for the scheme.
	ErrSchemeMismatch = errors.New("scheme mismatch")

	// ErrScaleOutOfBounds is returned when a product scale no longer fits in the modulus of its level.
	ErrScaleOutOfBounds = errors.New("scale out of bounds")

	// ErrTooManyValues is returned when more values than slots are given to an encoder.
	ErrTooManyValues = errors.New("too many values")

	// ErrInvalidEncoding is returned when a value cannot be represented by an encoder.
	ErrInvalidEncoding = errors.New("invalid encoding")

	// ErrMalformed is returned when a serialized object cannot be parsed.
	ErrMalformed = errors.New("malformed data")

	// ErrParametersMismatch is returned when a serialized object was produced under another parameter set.
	ErrParametersMismatch = errors.New("parameters mismatch")
)
