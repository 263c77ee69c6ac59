package filter

import (
	"fmt"

	"github.com/xaionaro-go/speechprep/pkg/audio"
)

type PreEmphasisConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Coefficient float64 `yaml:"coefficient"`
}

func DefaultPreEmphasisConfig() PreEmphasisConfig {
	return PreEmphasisConfig{
		Enabled:     true,
		Coefficient: 0.60,
	}
}

func (cfg PreEmphasisConfig) Validate() error {
	if cfg.Coefficient < 0 || cfg.Coefficient >= 1 {
		return fmt.Errorf("pre-emphasis coefficient must be in [0, 1): %v", cfg.Coefficient)
	}
	return nil
}

// PreEmphasize computes y[n] = x[n] - coef*x[n-1]. The sample preceding x[0]
// is extrapolated as 2*x[0] - x[1] (x[0] for single-sample signals).
func PreEmphasize(samples []float64, coef float64) []float64 {
	output := make([]float64, len(samples))
	if len(samples) == 0 {
		return output
	}

	prev := samples[0]
	if len(samples) > 1 {
		prev = 2*samples[0] - samples[1]
	}
	for i, x := range samples {
		output[i] = x - coef*prev
		prev = x
	}
	return output
}

func PreEmphasis(signal audio.Signal, cfg PreEmphasisConfig) (audio.Signal, error) {
	if err := cfg.Validate(); err != nil {
		return audio.Signal{}, fmt.Errorf("invalid pre-emphasis config: %w", err)
	}
	return signal.WithSamples(PreEmphasize(signal.Samples, cfg.Coefficient)), nil
}
