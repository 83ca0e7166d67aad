package linear

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/linhe/linhe/core/rlwe"
	"github.com/linhe/linhe/schemes"
	"github.com/linhe/linhe/utils/entropy"
)

var flagParamString = flag.String("params", "", "specify the test cryptographic parameters as a JSON string. Overrides -short.")

func testString(params rlwe.ParameterSet, opname string) string {
	return fmt.Sprintf("%s/%s/logN=%d/Qi=%d",
		opname,
		params.Scheme(),
		params.LogN(),
		params.QCount())
}

func newSource(t testing.TB, key string) entropy.Source {
	src, err := entropy.NewSeeded([]byte(key))
	require.NoError(t, err)
	return src
}

func testParameters(t *testing.T) (params []rlwe.ParameterSet) {

	lits := []rlwe.ParametersLiteral{schemes.ExactTestInsecure, schemes.ApproximateTestInsecure}

	if !testing.Short() {
		lits = append(lits, rlwe.ExampleExactLogN12, rlwe.ExampleApproximateLogN12)
	}

	if *flagParamString != "" {
		var jsonParams rlwe.ParametersLiteral
		if err := json.Unmarshal([]byte(*flagParamString), &jsonParams); err != nil {
			t.Fatal(err)
		}
		lits = []rlwe.ParametersLiteral{jsonParams} // the custom test suite reads the parameters from the -params flag
	}

	for _, lit := range lits {
		p, err := rlwe.NewParametersFromLiteral(lit)
		require.NoError(t, err)
		params = append(params, p)
	}

	return
}

func TestLinear(t *testing.T) {

	for _, params := range testParameters(t) {

		client, err := NewClient(params, newSource(t, "client"), DefaultConfig())
		require.NoError(t, err)

		server, err := NewServer(params, DefaultConfig())
		require.NoError(t, err)

		inputs := []float64{3, 4, 5, 6, 7, 8}
		weights := []float64{1, 2, -1, -2, 1, 2}

		t.Run(testString(params, "WeightedSum"), func(t *testing.T) {

			cts, err := client.EncryptValues(inputs)
			require.NoError(t, err)

			res, err := server.WeightedSum(cts, weights)
			require.NoError(t, err)

			if params.Scheme() == rlwe.Exact {
				require.Greater(t, client.NoiseBudget(res), 0.0)
			}

			have, err := client.Decrypt(res)
			require.NoError(t, err)
			require.InDelta(t, 17, have, 1e-2)

			if params.Scheme() == rlwe.Approximate {
				require.Equal(t, 1, res.Level)
			} else {
				require.Equal(t, 0, res.Level)
			}
		})

		t.Run(testString(params, "Affine"), func(t *testing.T) {

			cts, err := client.EncryptValues(inputs)
			require.NoError(t, err)

			res, err := server.Affine(cts, weights, -20)
			require.NoError(t, err)

			have, err := client.Decrypt(res)
			require.NoError(t, err)
			require.InDelta(t, -3, have, 1e-2)
		})

		t.Run(testString(params, "Transport"), func(t *testing.T) {

			cts, err := client.EncryptValues(inputs)
			require.NoError(t, err)

			var wire bytes.Buffer
			for _, ct := range cts {
				_, err := client.WriteCiphertext(&wire, ct)
				require.NoError(t, err)
			}

			received := make([]*rlwe.Ciphertext, len(cts))
			for i := range received {
				received[i], _, err = server.ReadCiphertext(&wire)
				require.NoError(t, err)
				require.True(t, cts[i].Equal(received[i]))
			}
			require.Zero(t, wire.Len())

			res, err := server.WeightedSum(received, weights)
			require.NoError(t, err)

			data, err := server.MarshalCiphertext(res)
			require.NoError(t, err)

			back, err := client.UnmarshalCiphertext(data)
			require.NoError(t, err)

			have, err := client.Decrypt(back)
			require.NoError(t, err)
			require.InDelta(t, 17, have, 1e-2)
		})

		t.Run(testString(params, "Errors"), func(t *testing.T) {

			_, err := client.EncryptValues(nil)
			require.ErrorIs(t, err, rlwe.ErrEmptyInput)

			_, err = server.WeightedSum(nil, nil)
			require.ErrorIs(t, err, rlwe.ErrEmptyInput)

			cts, err := client.EncryptValues(inputs[:2])
			require.NoError(t, err)

			_, err = server.WeightedSum(cts, weights)
			require.ErrorIs(t, err, ErrLengthMismatch)

			if params.Scheme() == rlwe.Exact {
				_, err = client.EncryptValues([]float64{1.5})
				require.ErrorIs(t, err, rlwe.ErrInvalidEncoding)

				_, err = server.WeightedSum(cts, []float64{1, 0.5})
				require.ErrorIs(t, err, rlwe.ErrInvalidEncoding)
			}
		})
	}
}

func TestScenarios(t *testing.T) {

	t.Run("Exact", func(t *testing.T) {

		params, err := rlwe.NewParametersFromLiteral(rlwe.ExampleExactLogN12)
		require.NoError(t, err)

		client, err := NewClient(params, entropy.System(), DefaultConfig())
		require.NoError(t, err)

		server, err := NewServer(params, DefaultConfig())
		require.NoError(t, err)

		cts, err := client.EncryptValues([]float64{3, 4, 5, 6, 7, 8})
		require.NoError(t, err)

		res, err := server.WeightedSum(cts, []float64{1, 2, -1, -2, 1, 2})
		require.NoError(t, err)

		have, err := client.Decrypt(res)
		require.NoError(t, err)
		require.Equal(t, 17.0, have)
	})

	t.Run("Approximate", func(t *testing.T) {

		params, err := rlwe.NewParametersFromLiteral(rlwe.ExampleApproximateLogN12)
		require.NoError(t, err)

		cfg := DefaultConfig()
		cfg.Scale = math.Exp2(30)

		client, err := NewClient(params, entropy.System(), cfg)
		require.NoError(t, err)

		server, err := NewServer(params, cfg)
		require.NoError(t, err)

		inputs := make([]float64, 10)
		weights := make([]float64, 10)
		var want float64
		for i := range inputs {
			inputs[i] = 1.1 * float64(i)
			weights[i] = 2
			if i&1 == 1 {
				weights[i] = -1
			}
			want += inputs[i] * weights[i]
		}
		require.InDelta(t, 16.5, want, 1e-9)

		cts, err := client.EncryptValues(inputs)
		require.NoError(t, err)
		require.Equal(t, cfg.Scale, cts[0].Scale)

		res, err := server.WeightedSum(cts, weights)
		require.NoError(t, err)

		have, err := client.Decrypt(res)
		require.NoError(t, err)
		require.InEpsilon(t, want, have, 1e-5)
	})

	t.Run("Approximate/LargeLastModulus", func(t *testing.T) {

		// The last modulus of the chain is larger than the scale: after the
		// rescale, the scale 2^60/2^50 is smaller than the noise.
		params, err := rlwe.NewParametersFromLiteral(rlwe.ParametersLiteral{
			Scheme: rlwe.Approximate,
			LogN:   13,
			LogQ:   []int{50, 30, 50},
		})
		require.NoError(t, err)

		cfg := DefaultConfig()
		cfg.Scale = math.Exp2(30)

		var out bytes.Buffer

		client, err := NewClient(params, newSource(t, "client"), cfg, WithLogger(NewLogger(&out, true)))
		require.NoError(t, err)

		server, err := NewServer(params, cfg)
		require.NoError(t, err)

		inputs := make([]float64, 10)
		weights := make([]float64, 10)
		for i := range inputs {
			inputs[i] = 1.1 * float64(i)
			weights[i] = 2
			if i&1 == 1 {
				weights[i] = -1
			}
		}

		cts, err := client.EncryptValues(inputs)
		require.NoError(t, err)

		_, err = server.WeightedSum(cts, weights)
		require.ErrorIs(t, err, rlwe.ErrScaleOutOfBounds)

		pt, err := encodeScalar(server.Context, server.Encoder, 2, 0, cfg.Scale)
		require.NoError(t, err)

		prod, err := server.MulPlainNew(cts[1], pt)
		require.NoError(t, err)
		require.NoError(t, server.Rescale(prod, prod))
		require.InDelta(t, 10, prod.LogScale(), 0.1)
		require.LessOrEqual(t, client.Precision(prod), 0.0)

		_, err = client.Decrypt(prod)
		require.NoError(t, err)
		require.Contains(t, out.String(), "precision exhausted")
	})

	t.Run("ModulusChainTooLarge", func(t *testing.T) {

		Q, err := rlwe.GenModuli(11, []int{30})
		require.NoError(t, err)

		params := rlwe.NewParameterSet(rlwe.Exact, 1024, Q, 257)

		client, err := NewClient(params, newSource(t, "client"), DefaultConfig())
		require.ErrorIs(t, err, rlwe.ErrInvalidParameters)
		require.Nil(t, client)

		server, err := NewServer(params, DefaultConfig())
		require.ErrorIs(t, err, rlwe.ErrInvalidParameters)
		require.Nil(t, server)
	})
}

func TestClient(t *testing.T) {

	params, err := rlwe.NewParametersFromLiteral(schemes.ExactTestInsecure)
	require.NoError(t, err)

	t.Run(testString(params, "Deterministic"), func(t *testing.T) {

		c0, err := NewClient(params, newSource(t, "seed"), DefaultConfig())
		require.NoError(t, err)

		c1, err := NewClient(params, newSource(t, "seed"), DefaultConfig())
		require.NoError(t, err)

		require.True(t, c0.PublicKey().Equal(c1.PublicKey()))

		ct0, err := c0.EncryptValues([]float64{42})
		require.NoError(t, err)

		ct1, err := c1.EncryptValues([]float64{42})
		require.NoError(t, err)

		require.True(t, ct0[0].Equal(ct1[0]))

		// Fresh randomness per call.
		ct2, err := c0.EncryptValues([]float64{42})
		require.NoError(t, err)
		require.False(t, ct0[0].Equal(ct2[0]))
	})

	t.Run(testString(params, "Symmetric"), func(t *testing.T) {

		cfg := DefaultConfig()
		cfg.Symmetric = true

		client, err := NewClient(params, newSource(t, "symmetric"), cfg)
		require.NoError(t, err)

		cts, err := client.EncryptValues([]float64{-7})
		require.NoError(t, err)

		have, err := client.Decrypt(cts[0])
		require.NoError(t, err)
		require.Equal(t, -7.0, have)
	})

	t.Run(testString(params, "InsufficientEntropy"), func(t *testing.T) {
		_, err := NewClient(params, iotest.ErrReader(fmt.Errorf("depleted")), DefaultConfig())
		require.ErrorIs(t, err, rlwe.ErrInsufficientEntropy)
	})

	t.Run(testString(params, "ParametersMismatch"), func(t *testing.T) {

		client, err := NewClient(params, newSource(t, "client"), DefaultConfig())
		require.NoError(t, err)

		other, err := rlwe.NewParametersFromLiteral(schemes.ExactTestInsecureSmallT)
		require.NoError(t, err)

		server, err := NewServer(other, DefaultConfig())
		require.NoError(t, err)

		cts, err := client.EncryptValues([]float64{1})
		require.NoError(t, err)

		data, err := client.MarshalCiphertext(cts[0])
		require.NoError(t, err)

		_, err = server.UnmarshalCiphertext(data)
		require.ErrorIs(t, err, rlwe.ErrParametersMismatch)
	})

	t.Run(testString(params, "InvalidCiphertext"), func(t *testing.T) {

		client, err := NewClient(params, newSource(t, "client"), DefaultConfig())
		require.NoError(t, err)

		_, err = client.Decrypt(nil)
		require.ErrorIs(t, err, rlwe.ErrMalformed)

		cts, err := client.EncryptValues([]float64{1})
		require.NoError(t, err)
		cts[0].Level = params.MaxLevel() + 6

		_, err = client.Decrypt(cts[0])
		require.ErrorIs(t, err, rlwe.ErrLevelMismatch)
	})

	t.Run(testString(params, "Logger/BudgetExhausted"), func(t *testing.T) {

		var out bytes.Buffer

		alice, err := NewClient(params, newSource(t, "alice"), DefaultConfig())
		require.NoError(t, err)

		bob, err := NewClient(params, newSource(t, "bob"), DefaultConfig(), WithLogger(NewLogger(&out, true)))
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(out.String(), Prefix))

		cts, err := alice.EncryptValues([]float64{1})
		require.NoError(t, err)

		// Decrypting under the wrong key leaves no budget.
		_, err = bob.Decrypt(cts[0])
		require.NoError(t, err)
		require.Contains(t, out.String(), "noise budget exhausted")
	})
}

func TestConfig(t *testing.T) {

	t.Run("ReadConfig", func(t *testing.T) {

		cfg, err := ReadConfig(strings.NewReader(`{"scale": 1073741824, "symmetric": true}`))
		require.NoError(t, err)
		require.Equal(t, Config{Scale: 1 << 30, IntegerBase: 2, Symmetric: true}, cfg)

		cfg, err = ReadConfig(strings.NewReader(`{"integer_base": 0}`))
		require.NoError(t, err)
		require.Equal(t, uint64(0), cfg.IntegerBase)

		_, err = ReadConfig(strings.NewReader(`{"scal": 1}`))
		require.Error(t, err)
	})

	t.Run("Validate", func(t *testing.T) {

		params, err := rlwe.NewParametersFromLiteral(schemes.ApproximateTestInsecure)
		require.NoError(t, err)

		require.NoError(t, DefaultConfig().Validate(params))
		require.ErrorIs(t, Config{Scale: -1}.Validate(params), rlwe.ErrScaleOutOfBounds)
		require.ErrorIs(t, Config{Scale: math.Exp2(60)}.Validate(params), rlwe.ErrScaleOutOfBounds)

		_, err = NewServer(params, Config{Scale: math.NaN()})
		require.ErrorIs(t, err, rlwe.ErrScaleOutOfBounds)
	})

	t.Run("IntegerBase", func(t *testing.T) {

		params, err := rlwe.NewParametersFromLiteral(schemes.ExactTestInsecure)
		require.NoError(t, err)

		for _, base := range []uint64{0, 3} {

			cfg := DefaultConfig()
			cfg.IntegerBase = base

			client, err := NewClient(params, newSource(t, "base"), cfg)
			require.NoError(t, err)

			server, err := NewServer(params, cfg)
			require.NoError(t, err)

			cts, err := client.EncryptValues([]float64{3, 4, 5, 6, 7, 8})
			require.NoError(t, err)

			res, err := server.WeightedSum(cts, []float64{1, 2, -1, -2, 1, 2})
			require.NoError(t, err)

			have, err := client.Decrypt(res)
			require.NoError(t, err)
			require.Equal(t, 17.0, have)
		}

		cfg := DefaultConfig()
		cfg.IntegerBase = 4
		_, err = NewServer(params, cfg)
		require.ErrorIs(t, err, rlwe.ErrInvalidEncoding)
	})
}
