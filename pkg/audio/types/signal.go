package types

import (
	"time"
)

type SampleRate uint32

type Channel uint16

// Signal is a mono sequence of samples in [-1, 1] at a fixed sample rate.
//
// Stages never modify the Samples of a Signal they receive; each of them
// produces a new Signal.
type Signal struct {
	Samples    []float64
	SampleRate SampleRate
}

func NewSignal(samples []float64, sampleRate SampleRate) Signal {
	return Signal{
		Samples:    samples,
		SampleRate: sampleRate,
	}
}

func (s Signal) Len() int {
	return len(s.Samples)
}

func (s Signal) Duration() time.Duration {
	if s.SampleRate == 0 {
		return 0
	}
	return time.Duration(int64(len(s.Samples)) * int64(time.Second) / int64(s.SampleRate))
}

// WithSamples returns a Signal with the same sample rate and the given samples.
func (s Signal) WithSamples(samples []float64) Signal {
	return Signal{
		Samples:    samples,
		SampleRate: s.SampleRate,
	}
}

func (s Signal) Clone() Signal {
	samples := make([]float64, len(s.Samples))
	copy(samples, s.Samples)
	return s.WithSamples(samples)
}
