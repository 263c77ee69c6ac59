// Package analysis computes summary statistics of a signal, used to log and
// report what the pipeline did to a file.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"github.com/brettbuddin/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/xaionaro-go/speechprep/pkg/audio"
)

// DefaultFFTSize is the length of the chunks the spectrum is averaged over.
// It must be a power of two.
const DefaultFFTSize = 4096

type Report struct {
	Samples           int              `yaml:"samples"`
	SampleRate        audio.SampleRate `yaml:"sample_rate"`
	Duration          time.Duration    `yaml:"duration"`
	RMS               float64          `yaml:"rms"`
	Peak              float64          `yaml:"peak"`
	DominantFrequency float64          `yaml:"dominant_frequency"`
}

func (r Report) String() string {
	return fmt.Sprintf("samples:%d duration:%v rms:%.5f peak:%.5f dominant:%.1fHz",
		r.Samples, r.Duration, r.RMS, r.Peak, r.DominantFrequency)
}

func Analyze(signal audio.Signal) (Report, error) {
	return AnalyzeWithFFTSize(signal, DefaultFFTSize)
}

// AnalyzeWithFFTSize is Analyze with a custom power-of-two FFT length of at
// least 2.
func AnalyzeWithFFTSize(signal audio.Signal, fftSize int) (Report, error) {
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return Report{}, fmt.Errorf("FFT size must be a power of two and at least 2: %d", fftSize)
	}

	report := Report{
		Samples:    signal.Len(),
		SampleRate: signal.SampleRate,
		Duration:   signal.Duration(),
	}
	if signal.Len() == 0 {
		return report, nil
	}

	report.RMS = floats.Norm(signal.Samples, 2) / math.Sqrt(float64(signal.Len()))
	report.Peak = math.Max(floats.Max(signal.Samples), -floats.Min(signal.Samples))

	power, err := averagePowerSpectrum(signal.Samples, fftSize)
	if err != nil {
		return Report{}, err
	}
	// DC is skipped, the dominant frequency is an oscillation.
	if bin := floats.MaxIdx(power[1:]) + 1; power[bin] > 0 {
		report.DominantFrequency = float64(bin) * float64(signal.SampleRate) / float64(fftSize)
	}
	return report, nil
}

func averagePowerSpectrum(samples []float64, fftSize int) ([]float64, error) {
	power := make([]float64, fftSize/2+1)
	coeffs := make([]complex128, fftSize)
	for start := 0; start < len(samples); start += fftSize {
		chunk := samples[start:min(start+fftSize, len(samples))]
		for i := range coeffs {
			coeffs[i] = 0
		}
		for i, v := range chunk {
			coeffs[i] = complex(v, 0)
		}
		if err := fourier.Forward(coeffs); err != nil {
			return nil, fmt.Errorf("unable to compute the FFT: %w", err)
		}
		for i := range power {
			m := cmplx.Abs(coeffs[i])
			power[i] += m * m
		}
	}
	return power, nil
}
