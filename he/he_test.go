package he

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linhe/linhe/core/rlwe"
	"github.com/linhe/linhe/schemes"
	"github.com/linhe/linhe/schemes/bfv"
	"github.com/linhe/linhe/schemes/ckks"
	"github.com/linhe/linhe/utils/entropy"
)

func testString(ctx *rlwe.Context, opname string) string {
	return fmt.Sprintf("%s/%s/logN=%d/Qi=%d",
		opname,
		ctx.Scheme(),
		ctx.Parameters().LogN(),
		ctx.Parameters().QCount())
}

func newTestContext(t *testing.T, lit rlwe.ParametersLiteral) *rlwe.Context {
	params, err := rlwe.NewParametersFromLiteral(lit)
	require.NoError(t, err)
	ctx, err := rlwe.NewContext(params)
	require.NoError(t, err)
	return ctx
}

func TestNewEncoder(t *testing.T) {

	exact := newTestContext(t, schemes.ExactTestInsecure)
	approx := newTestContext(t, schemes.ApproximateTestInsecure)

	t.Run(testString(exact, "NewEncoder"), func(t *testing.T) {
		ecd, err := NewEncoder(exact)
		require.NoError(t, err)
		require.IsType(t, &bfv.IntegerEncoder{}, ecd)
		require.Equal(t, uint64(DefaultIntegerBase), ecd.(*bfv.IntegerEncoder).Base())

		ecd, err = NewEncoderWithBase(exact, 3)
		require.NoError(t, err)
		require.Equal(t, uint64(3), ecd.(*bfv.IntegerEncoder).Base())

		_, err = NewEncoderWithBase(exact, 4)
		require.ErrorIs(t, err, rlwe.ErrInvalidEncoding)
	})

	t.Run(testString(approx, "NewEncoder"), func(t *testing.T) {
		ecd, err := NewEncoder(approx)
		require.NoError(t, err)
		require.IsType(t, &ckks.Encoder{}, ecd)
	})
}

func TestEncoder(t *testing.T) {

	for _, lit := range []rlwe.ParametersLiteral{schemes.ExactTestInsecure, schemes.ApproximateTestInsecure} {

		ctx := newTestContext(t, lit)

		ecd, err := NewEncoder(ctx)
		require.NoError(t, err)

		src, err := entropy.NewSeeded([]byte("he"))
		require.NoError(t, err)

		sk, pk, err := rlwe.NewKeyGenerator(ctx, src).GenKeyPair()
		require.NoError(t, err)

		enc, err := rlwe.NewEncryptor(ctx, pk, src)
		require.NoError(t, err)

		dec, err := rlwe.NewDecryptor(ctx, sk)
		require.NoError(t, err)

		var eval Evaluator = rlwe.NewEvaluator(ctx)

		t.Run(testString(ctx, "Encoder/EncryptAddDecrypt"), func(t *testing.T) {

			a, b := NewPlaintext(ctx, 0, 0), NewPlaintext(ctx, 0, 0)

			switch ctx.Scheme() {
			case rlwe.Exact:
				require.NoError(t, ecd.Encode(big.NewInt(-40), a))
				require.NoError(t, ecd.Encode(42, b))
			default:
				require.NoError(t, ecd.Encode(-40.5, a))
				require.NoError(t, ecd.Encode(42.75, b))
			}

			ctA, err := enc.Encrypt(a)
			require.NoError(t, err)

			ctB, err := enc.Encrypt(b)
			require.NoError(t, err)

			sum, err := eval.AddNew(ctA, ctB)
			require.NoError(t, err)

			pt, err := dec.Decrypt(sum)
			require.NoError(t, err)

			switch ctx.Scheme() {
			case rlwe.Exact:
				var have int64
				require.NoError(t, ecd.Decode(pt, &have))
				require.Equal(t, int64(2), have)
			default:
				var have float64
				require.NoError(t, ecd.Decode(pt, &have))
				require.InDelta(t, 2.25, have, 1e-2)
			}
		})
	}
}
