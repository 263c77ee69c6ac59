package overlapadd

import (
	"fmt"

	"github.com/xaionaro-go/speechprep/pkg/window"
)

// WindowingConfig configures the fixed windowing stage: overlap-add with
// unity frame weights.
type WindowingConfig struct {
	Enabled     bool        `yaml:"enabled"`
	FrameLength int         `yaml:"frame_length"`
	HopLength   int         `yaml:"hop_length"`
	Window      window.Type `yaml:"window"`
	TailPolicy  TailPolicy  `yaml:"tail_policy"`
}

func DefaultWindowingConfig() WindowingConfig {
	return WindowingConfig{
		Enabled:     true,
		FrameLength: 512,
		HopLength:   512 / 4,
		Window:      window.TypeHamming,
		TailPolicy:  TailDrop,
	}
}

func (cfg WindowingConfig) Validate() error {
	if cfg.FrameLength <= 0 {
		return fmt.Errorf("frame length must be positive: %d", cfg.FrameLength)
	}
	if cfg.HopLength <= 0 || cfg.HopLength > cfg.FrameLength {
		return fmt.Errorf("hop length must be in (0, %d]: %d", cfg.FrameLength, cfg.HopLength)
	}
	return nil
}

// ApplyWindowing runs the samples through the windowing stage.
func ApplyWindowing(
	samples []float64,
	cfg WindowingConfig,
) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid windowing config: %w", err)
	}
	w, err := window.Generate(cfg.Window, cfg.FrameLength)
	if err != nil {
		return nil, fmt.Errorf("unable to generate the window: %w", err)
	}
	return Reconstruct(samples, Config{
		FrameLength: cfg.FrameLength,
		HopLength:   cfg.HopLength,
		Window:      w,
		TailPolicy:  cfg.TailPolicy,
		Epsilon:     1e-10,
	}, nil)
}
