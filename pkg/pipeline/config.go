package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/xaionaro-go/speechprep/pkg/audio"
	"github.com/xaionaro-go/speechprep/pkg/filter"
	"github.com/xaionaro-go/speechprep/pkg/noisesuppression/implementations/noisegate"
	"github.com/xaionaro-go/speechprep/pkg/overlapadd"
)

type BatchConfig struct {
	// Pattern is the glob the input file names must match.
	Pattern string `yaml:"pattern"`

	// Limit is the maximal amount of files processed per run; 0 means all.
	Limit int `yaml:"limit"`

	// Concurrency is the amount of files processed in parallel.
	Concurrency int `yaml:"concurrency"`
}

func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Pattern:     "IS0*.wav",
		Limit:       5,
		Concurrency: 1,
	}
}

type DenoiseConfig struct {
	Enabled          bool `yaml:"enabled"`
	noisegate.Config `yaml:",inline"`
}

// VADConfig configures the search for the voice onset reported for every
// file. The frames are classified with the denoise settings.
type VADConfig struct {
	Enabled             bool          `yaml:"enabled"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
	MinDuration         time.Duration `yaml:"min_duration"`
}

func DefaultVADConfig() VADConfig {
	return VADConfig{
		Enabled:             true,
		ConfidenceThreshold: 0.5,
		MinDuration:         100 * time.Millisecond,
	}
}

func (cfg VADConfig) Validate() error {
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in [0, 1]: %v", cfg.ConfidenceThreshold)
	}
	if cfg.MinDuration < 0 {
		return fmt.Errorf("minimal voice duration must not be negative: %v", cfg.MinDuration)
	}
	return nil
}

type Config struct {
	Batch BatchConfig `yaml:"batch"`

	// SampleRate is the processing (and output) rate; 0 keeps the rate of
	// every input file.
	SampleRate audio.SampleRate `yaml:"sample_rate"`

	// OutputBitDepth is the bit depth of the written WAV files.
	OutputBitDepth int `yaml:"output_bit_depth"`
	// OutputFloat writes IEEE float samples instead of integer PCM and
	// requires OutputBitDepth 32.
	OutputFloat bool `yaml:"output_float,omitempty"`

	// WriteReport enables writing the analysis of every file next to its
	// output.
	WriteReport bool `yaml:"write_report"`

	VAD         VADConfig                  `yaml:"vad"`
	Denoise     DenoiseConfig              `yaml:"denoise"`
	Bandpass    filter.BandpassConfig      `yaml:"bandpass"`
	PreEmphasis filter.PreEmphasisConfig   `yaml:"pre_emphasis"`
	Windowing   overlapadd.WindowingConfig `yaml:"windowing"`
}

func DefaultConfig() Config {
	return Config{
		Batch:          DefaultBatchConfig(),
		OutputBitDepth: 16,
		VAD:            DefaultVADConfig(),
		Denoise: DenoiseConfig{
			Enabled: true,
			Config:  noisegate.DefaultConfig(),
		},
		Bandpass:    filter.DefaultBandpassConfig(),
		PreEmphasis: filter.DefaultPreEmphasisConfig(),
		Windowing:   overlapadd.DefaultWindowingConfig(),
	}
}

func (cfg Config) Validate() error {
	if _, err := filepath.Match(cfg.Batch.Pattern, ""); err != nil || cfg.Batch.Pattern == "" {
		return fmt.Errorf("invalid file pattern %q", cfg.Batch.Pattern)
	}
	if cfg.Batch.Limit < 0 {
		return fmt.Errorf("limit must not be negative: %d", cfg.Batch.Limit)
	}
	if cfg.Batch.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive: %d", cfg.Batch.Concurrency)
	}
	if _, err := cfg.outputPCMFormat(); err != nil {
		return err
	}
	if cfg.VAD.Enabled {
		if err := cfg.VAD.Validate(); err != nil {
			return fmt.Errorf("invalid VAD config: %w", err)
		}
	}
	if cfg.Denoise.Enabled || cfg.VAD.Enabled {
		if err := cfg.Denoise.Config.Validate(); err != nil {
			return fmt.Errorf("invalid denoise config: %w", err)
		}
	}
	if cfg.Bandpass.Enabled {
		if err := cfg.Bandpass.Validate(); err != nil {
			return fmt.Errorf("invalid bandpass config: %w", err)
		}
	}
	if cfg.PreEmphasis.Enabled {
		if err := cfg.PreEmphasis.Validate(); err != nil {
			return fmt.Errorf("invalid pre-emphasis config: %w", err)
		}
	}
	if cfg.Windowing.Enabled {
		if err := cfg.Windowing.Validate(); err != nil {
			return fmt.Errorf("invalid windowing config: %w", err)
		}
	}
	return nil
}

func (cfg Config) outputPCMFormat() (audio.PCMFormat, error) {
	if cfg.OutputFloat {
		return audio.PCMFormatFromBitDepthFloat(cfg.OutputBitDepth)
	}
	return audio.PCMFormatFromBitDepth(cfg.OutputBitDepth)
}
