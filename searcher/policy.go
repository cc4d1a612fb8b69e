package searcher

import "math"

// puct holds the parent-dependent part of the PUCT exploration term so that
// scoring a node's children only pays for it once.
type puct struct {
	numerator float64
}

func newPUCT(init, base, totalSimulations float64) puct {
	if base <= 0 {
		panic("puct base must be positive")
	}
	bias := init + math.Log((1+totalSimulations+base)/base)
	return puct{numerator: bias * math.Sqrt(totalSimulations)}
}

func (p puct) evaluate(policy, count float64) float64 {
	// U = (init + ln((1+N+base)/base)) * p * sqrt(N) / (1+n)
	return p.numerator * policy / (1 + count)
}
