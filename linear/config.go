package linear

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/linhe/linhe/core/rlwe"
	"github.com/linhe/linhe/he"
)

// ErrLengthMismatch is returned when the number of weights differs from the number of ciphertexts.
var ErrLengthMismatch = errors.New("length mismatch")

// Config is the configuration of a [Client] and of a [Server].
// It has public fields and can be read from a JSON file.
type Config struct {
	// Scale is the scale of the Approximate plaintexts. Zero selects the default scale of the parameters.
	Scale float64 `json:"scale"`

	// IntegerBase is the base of the Exact integer encoder.
	IntegerBase uint64 `json:"integer_base"`

	// Symmetric makes the client encrypt with its secret key instead of its public key.
	Symmetric bool `json:"symmetric"`
}

// DefaultConfig returns the default [Config]: default scale, base-2 integer
// encoding and public-key encryption.
func DefaultConfig() Config {
	return Config{
		IntegerBase: he.DefaultIntegerBase,
	}
}

// ReadConfig reads a JSON [Config] from r. Omitted fields keep the values of [DefaultConfig].
func ReadConfig(r io.Reader) (cfg Config, err error) {
	cfg = DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err = dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("cannot ReadConfig: %w", err)
	}
	return
}

// Validate returns an error if the configuration cannot be used with the parameters.
func (cfg Config) Validate(params rlwe.ParameterSet) error {
	if math.IsNaN(cfg.Scale) || math.IsInf(cfg.Scale, 0) || cfg.Scale < 0 {
		return fmt.Errorf("%w: invalid scale %v", rlwe.ErrScaleOutOfBounds, cfg.Scale)
	}
	if params.Scheme() == rlwe.Approximate && cfg.Scale != 0 && math.Log2(cfg.Scale) >= params.LogQ()-1 {
		return fmt.Errorf("%w: scale 2^%.2f exceeds the modulus 2^%.2f", rlwe.ErrScaleOutOfBounds, math.Log2(cfg.Scale), params.LogQ())
	}
	return nil
}

// scale returns the configured scale, or the default scale of the context.
func (cfg Config) scale(ctx *rlwe.Context) float64 {
	if cfg.Scale == 0 || ctx.Scheme() == rlwe.Exact {
		return ctx.DefaultScale()
	}
	return cfg.Scale
}

// Option is a functional option of [NewClient] and [NewServer].
type Option func(*options)

type options struct {
	logger Logger
	arena  *rlwe.Arena
}

// WithLogger sets the [Logger] of the client or server.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithArena makes the context share the given [rlwe.Arena].
func WithArena(arena *rlwe.Arena) Option {
	return func(o *options) {
		o.arena = arena
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: Discard()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) newContext(params rlwe.ParameterSet) (*rlwe.Context, error) {
	if o.arena != nil {
		return rlwe.NewContext(params, rlwe.WithArena(o.arena))
	}
	return rlwe.NewContext(params)
}
