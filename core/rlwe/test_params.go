package rlwe

var (
	// testInsecure are small parameters used for the sole purpose of fast testing.
	testInsecure = []ParametersLiteral{
		{
			Scheme: Exact,
			LogN:   10,
			LogQ:   []int{27},
			T:      257,
		},
		{
			Scheme: Approximate,
			LogN:   11,
			LogQ:   []int{30, 24},
		},
	}

	// testSecure are the parameters of the linear pipeline.
	testSecure = []ParametersLiteral{
		ExampleExactLogN12,
		ExampleApproximateLogN12,
	}
)
