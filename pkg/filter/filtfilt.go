package filter

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// FiltFilt applies the cascade forward and then backward, so the result has
// zero phase and the squared magnitude response of the cascade.
//
// The signal is extended at both ends by odd reflection and every pass
// starts from the steady state of its first sample, which keeps the edges
// free of start-up transients. The output has the length of the input.
func FiltFilt(coeffs []biquad.Coefficients, input []float64) []float64 {
	output := make([]float64, len(input))
	copy(output, input)
	if len(coeffs) == 0 || len(input) == 0 {
		return output
	}

	padLength := min(3*(2*len(coeffs)+1), len(input)-1)
	padded := oddExtend(input, padLength)

	chain := biquad.NewChain(coeffs)
	chain.SetState(steadyState(coeffs, padded[0]))
	chain.ProcessBlock(padded)

	reverse(padded)
	chain.Reset()
	chain.SetState(steadyState(coeffs, padded[0]))
	chain.ProcessBlock(padded)
	reverse(padded)

	copy(output, padded[padLength:padLength+len(input)])
	return output
}

// dcGain returns H(1) of the section, or 0 if it has a pole at DC.
func dcGain(c biquad.Coefficients) float64 {
	den := 1 + c.A1 + c.A2
	if den == 0 {
		return 0
	}
	return (c.B0 + c.B1 + c.B2) / den
}

// steadyState returns the transposed direct form II state every section is
// in after a constant input x has been applied forever.
func steadyState(coeffs []biquad.Coefficients, x float64) [][2]float64 {
	states := make([][2]float64, len(coeffs))
	for i, c := range coeffs {
		y := dcGain(c) * x
		d1 := c.B2*x - c.A2*y
		d0 := c.B1*x - c.A1*y + d1
		states[i] = [2]float64{d0, d1}
		x = y
	}
	return states
}

func oddExtend(x []float64, n int) []float64 {
	out := make([]float64, 0, len(x)+2*n)
	first, last := x[0], x[len(x)-1]
	for i := n; i >= 1; i-- {
		out = append(out, 2*first-x[i])
	}
	out = append(out, x...)
	for i := 1; i <= n; i++ {
		out = append(out, 2*last-x[len(x)-1-i])
	}
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
