package rlwe

var (
	// ExampleExactLogN12 is an example [Exact] parameter set with N=4096, a 109-bit
	// modulus chain of three moduli and the plaintext modulus T=65537.
	ExampleExactLogN12 = ParametersLiteral{
		Scheme: Exact,
		LogN:   12,
		LogQ:   []int{36, 36, 37},
		T:      65537,
	}

	// ExampleApproximateLogN12 is an example [Approximate] parameter set with N=4096
	// and an 80-bit modulus chain: a 50-bit base modulus and one 30-bit modulus
	// consumed by the rescale following a plaintext product at scale 2^30.
	ExampleApproximateLogN12 = ParametersLiteral{
		Scheme: Approximate,
		LogN:   12,
		LogQ:   []int{50, 30},
	}

	// ExampleApproximateLogN13 is an example [Approximate] parameter set with N=8192
	// and room for three rescales at scale 2^40.
	ExampleApproximateLogN13 = ParametersLiteral{
		Scheme: Approximate,
		LogN:   13,
		LogQ:   []int{60, 40, 40, 40},
	}
)
