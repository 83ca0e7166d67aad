package ckks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linhe/linhe/core/rlwe"
)

func BenchmarkCKKS(b *testing.B) {

	params, err := rlwe.NewParametersFromLiteral(rlwe.ExampleApproximateLogN13)
	require.NoError(b, err)

	tc, err := genTestParams(params)
	require.NoError(b, err)

	benchEncoder(tc, b)
}

func benchEncoder(tc *testContext, b *testing.B) {

	ctx := tc.ctx
	slots := tc.encoder.Slots()
	values := newTestVector(slots, -1, 1)
	pt := NewPlaintext(ctx, 0, 0)

	b.Run(GetTestName(ctx, "Encoder/Encode/Scalar"), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := tc.encoder.Encode(1.5, pt); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run(GetTestName(ctx, "Encoder/Encode/Complex"), func(b *testing.B) {
		buff := make([]complex128, slots)
		for i := 0; i < b.N; i++ {
			copy(buff, values)
			if err := tc.encoder.Encode(buff, pt); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run(GetTestName(ctx, "Encoder/Decode/Complex"), func(b *testing.B) {
		have := make([]complex128, slots)
		for i := 0; i < b.N; i++ {
			if err := tc.encoder.Decode(pt, have); err != nil {
				b.Fatal(err)
			}
		}
	})
}
