// Package filter implements the static equalization stages: a zero-phase
// Butterworth bandpass and a first-order pre-emphasis.
package filter

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/xaionaro-go/speechprep/pkg/audio"
)

type BandpassConfig struct {
	Enabled bool `yaml:"enabled"`

	// LowCutoff is the highpass edge in Hz. Zero disables it.
	LowCutoff float64 `yaml:"low_cutoff"`

	// HighCutoff is the lowpass edge in Hz. Zero, or a value at or above the
	// Nyquist frequency, disables it.
	HighCutoff float64 `yaml:"high_cutoff"`

	// Order is the Butterworth order of each edge.
	Order int `yaml:"order"`
}

// DefaultBandpassConfig keeps the speech band.
func DefaultBandpassConfig() BandpassConfig {
	return BandpassConfig{
		Enabled:    true,
		LowCutoff:  80,
		HighCutoff: 8000,
		Order:      4,
	}
}

func (cfg BandpassConfig) Validate() error {
	if cfg.Order <= 0 {
		return fmt.Errorf("filter order must be positive: %d", cfg.Order)
	}
	if cfg.LowCutoff < 0 || cfg.HighCutoff < 0 {
		return fmt.Errorf("cutoff frequencies must not be negative: %v, %v", cfg.LowCutoff, cfg.HighCutoff)
	}
	if cfg.LowCutoff > 0 && cfg.HighCutoff > 0 && cfg.LowCutoff >= cfg.HighCutoff {
		return fmt.Errorf("low cutoff %v must be below high cutoff %v", cfg.LowCutoff, cfg.HighCutoff)
	}
	return nil
}

// Sections returns the cascade realising the bandpass at the sample rate.
// Edges outside (0, sampleRate/2) are skipped.
func (cfg BandpassConfig) Sections(sampleRate audio.SampleRate) []biquad.Coefficients {
	sr := float64(sampleRate)
	var sections []biquad.Coefficients
	if validEdge(cfg.LowCutoff, sr) {
		sections = append(sections, design.ButterworthHP(cfg.LowCutoff, cfg.Order, sr)...)
	}
	if validEdge(cfg.HighCutoff, sr) {
		sections = append(sections, design.ButterworthLP(cfg.HighCutoff, cfg.Order, sr)...)
	}
	return sections
}

func validEdge(freq, sampleRate float64) bool {
	return sampleRate > 0 && freq > 0 && freq < sampleRate/2
}

// Bandpass returns the zero-phase bandpass filtered signal.
func Bandpass(signal audio.Signal, cfg BandpassConfig) (audio.Signal, error) {
	if err := cfg.Validate(); err != nil {
		return audio.Signal{}, fmt.Errorf("invalid bandpass config: %w", err)
	}
	return signal.WithSamples(FiltFilt(cfg.Sections(signal.SampleRate), signal.Samples)), nil
}
