package rlwe

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func BenchmarkRLWE(b *testing.B) {

	var err error

	defaultParamsLiteral := testSecure

	if *flagParamString != "" {
		var jsonParams ParametersLiteral
		if err = json.Unmarshal([]byte(*flagParamString), &jsonParams); err != nil {
			b.Fatal(err)
		}
		defaultParamsLiteral = []ParametersLiteral{jsonParams} // the custom test suite reads the parameters from the -params flag
	}

	for _, paramsLit := range defaultParamsLiteral {

		params, err := NewParametersFromLiteral(paramsLit)
		require.NoError(b, err)

		tc, err := NewTestContext(params)
		require.NoError(b, err)

		for _, testSet := range []func(tc *TestContext, b *testing.B){
			benchKeyGenerator,
			benchEncryptor,
			benchEvaluator,
		} {
			testSet(tc, b)
			runtime.GC()
		}
	}
}

func benchKeyGenerator(tc *TestContext, b *testing.B) {

	kgen := tc.kgen

	b.Run(testString(tc.ctx, 0, "KeyGenerator/GenSecretKey"), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := kgen.GenSecretKey(); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run(testString(tc.ctx, 0, "KeyGenerator/GenPublicKey"), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := kgen.GenPublicKey(tc.sk); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func benchEncryptor(tc *TestContext, b *testing.B) {

	pt := newTestPlaintext(tc, 0, tc.ctx.DefaultScale(), 1, 2, 3)

	b.Run(testString(tc.ctx, 0, "Encryptor/Encrypt/Pk"), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := tc.enc.Encrypt(pt); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run(testString(tc.ctx, 0, "Encryptor/Encrypt/Sk"), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := tc.encS.Encrypt(pt); err != nil {
				b.Fatal(err)
			}
		}
	})

	ct, err := tc.enc.Encrypt(pt)
	require.NoError(b, err)

	b.Run(testString(tc.ctx, 0, "Decryptor/Decrypt"), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := tc.dec.Decrypt(ct); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func benchEvaluator(tc *TestContext, b *testing.B) {

	ctx := tc.ctx
	eval := tc.eval
	pt := newTestPlaintext(tc, 0, ctx.DefaultScale(), 3)

	ct, err := tc.enc.Encrypt(pt)
	require.NoError(b, err)

	out := ctx.NewCiphertext(0)

	b.Run(testString(ctx, 0, "Evaluator/MulPlain"), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := eval.MulPlain(ct, pt, out); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run(testString(ctx, 0, "Evaluator/Add"), func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := eval.Add(ct, ct, out); err != nil {
				b.Fatal(err)
			}
		}
	})

	if ctx.Scheme() == Approximate {
		prod, err := eval.MulPlainNew(ct, pt)
		require.NoError(b, err)
		b.Run(testString(ctx, 0, "Evaluator/Rescale"), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := eval.RescaleNew(prod); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
