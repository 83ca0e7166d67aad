// Package schemes contains the encoders of the implemented cryptosystems.
package schemes

import (
	"github.com/linhe/linhe/core/rlwe"
)

var (
	// ExactTestInsecure are insecure parameters used for the sole purpose of fast testing.
	ExactTestInsecure = rlwe.ParametersLiteral{
		Scheme: rlwe.Exact,
		LogN:   11,
		LogQ:   []int{30, 24},
		T:      65537,
	}

	// ExactTestInsecureSmallT are insecure parameters with a small plaintext modulus,
	// used for the sole purpose of fast testing.
	ExactTestInsecureSmallT = rlwe.ParametersLiteral{
		Scheme: rlwe.Exact,
		LogN:   10,
		LogQ:   []int{27},
		T:      257,
	}

	// ApproximateTestInsecure are insecure parameters used for the sole purpose of fast testing.
	ApproximateTestInsecure = rlwe.ParametersLiteral{
		Scheme: rlwe.Approximate,
		LogN:   11,
		LogQ:   []int{30, 24},
	}

	ExactTestParams = []rlwe.ParametersLiteral{ExactTestInsecure, ExactTestInsecureSmallT}

	ApproximateTestParams = []rlwe.ParametersLiteral{ApproximateTestInsecure}
)
