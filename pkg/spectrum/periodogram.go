// Package spectrum implements the spectral estimates used by the noise gate:
// a windowed periodogram and the search for the bins forming a spectral peak.
package spectrum

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/xaionaro-go/speechprep/pkg/window"
)

type PowerSpectrum struct {
	// Frequencies of the bins in Hz.
	Frequencies []float64

	// Power is the one-sided power spectral density, one value per bin.
	Power []float64
}

// Periodogram estimates the power spectral density of a frame.
//
// The frame has its mean removed, is multiplied by win and transformed; the
// squared magnitudes are scaled to a density (per Hz) and folded into a
// one-sided spectrum of len(frame)/2+1 bins. A nil win means a rectangular
// window.
func Periodogram(
	frame []float64,
	sampleRate float64,
	win []float64,
) (PowerSpectrum, error) {
	n := len(frame)
	if n == 0 {
		return PowerSpectrum{}, fmt.Errorf("empty frame")
	}
	if sampleRate <= 0 {
		return PowerSpectrum{}, fmt.Errorf("sample rate must be positive: got %v", sampleRate)
	}
	if win == nil {
		win = window.Rectangular(n)
	}
	if len(win) != n {
		return PowerSpectrum{}, fmt.Errorf("window length %d does not match frame length %d", len(win), n)
	}

	mean := stat.Mean(frame, nil)
	windowed := make([]float64, n)
	for i, v := range frame {
		windowed[i] = (v - mean) * win[i]
	}

	coeffs := fft.FFTReal(windowed)

	scale := window.SumOfSquares(win) * sampleRate
	bins := n/2 + 1
	result := PowerSpectrum{
		Frequencies: make([]float64, bins),
		Power:       make([]float64, bins),
	}
	for k := 0; k < bins; k++ {
		result.Frequencies[k] = float64(k) * sampleRate / float64(n)
		if scale == 0 {
			continue
		}
		mag := cmplx.Abs(coeffs[k])
		p := mag * mag / scale
		isNyquist := n%2 == 0 && k == n/2
		if k != 0 && !isNyquist {
			p *= 2
		}
		result.Power[k] = p
	}
	return result, nil
}
