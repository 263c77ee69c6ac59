package noisegate

import (
	"fmt"
	"math"
	"time"

	"github.com/xaionaro-go/speechprep/pkg/audio"
	"github.com/xaionaro-go/speechprep/pkg/overlapadd"
	"github.com/xaionaro-go/speechprep/pkg/spectrum"
)

type Config struct {
	// FrameDuration is the analysis window length.
	FrameDuration time.Duration `yaml:"frame_duration"`

	// OverlapRatio is the fraction of a frame shared with the next one, in
	// [0, 1).
	OverlapRatio float64 `yaml:"overlap_ratio"`

	// ThresholdRatio multiplies the estimated noise floor to get the gate
	// threshold.
	ThresholdRatio float64 `yaml:"threshold_ratio"`

	// SearchWidth bounds the walk around the fundamental peak, in bins.
	SearchWidth int `yaml:"search_width"`

	// KaiserBeta is the shape of the periodogram analysis window.
	KaiserBeta float64 `yaml:"kaiser_beta"`

	// ZeroThresholdGain is the gain of frames whose threshold is zero or
	// undefined (e.g. digital silence).
	ZeroThresholdGain float64 `yaml:"zero_threshold_gain"`

	TailPolicy overlapadd.TailPolicy `yaml:"tail_policy"`
}

func DefaultConfig() Config {
	return Config{
		FrameDuration:     25 * time.Millisecond,
		OverlapRatio:      0.5,
		ThresholdRatio:    2.0,
		SearchWidth:       spectrum.DefaultSearchWidth,
		KaiserBeta:        38,
		ZeroThresholdGain: 1.0,
		TailPolicy:        overlapadd.TailDrop,
	}
}

func (cfg Config) Validate() error {
	if cfg.FrameDuration <= 0 {
		return fmt.Errorf("frame duration must be positive: %v", cfg.FrameDuration)
	}
	if cfg.OverlapRatio < 0 || cfg.OverlapRatio >= 1 {
		return fmt.Errorf("overlap ratio must be in [0, 1): %v", cfg.OverlapRatio)
	}
	if cfg.ThresholdRatio < 0 || math.IsNaN(cfg.ThresholdRatio) {
		return fmt.Errorf("threshold ratio must not be negative: %v", cfg.ThresholdRatio)
	}
	if cfg.SearchWidth <= 0 {
		return fmt.Errorf("search width must be positive: %d", cfg.SearchWidth)
	}
	if cfg.KaiserBeta < 0 {
		return fmt.Errorf("kaiser beta must not be negative: %v", cfg.KaiserBeta)
	}
	if cfg.ZeroThresholdGain < 0 || cfg.ZeroThresholdGain > 1 {
		return fmt.Errorf("zero-threshold gain must be in [0, 1]: %v", cfg.ZeroThresholdGain)
	}
	return nil
}

// FrameLength returns the analysis frame length in samples (at least 1).
func (cfg Config) FrameLength(sampleRate audio.SampleRate) int {
	return max(1, int(math.Round(cfg.FrameDuration.Seconds()*float64(sampleRate))))
}

// HopLength returns the distance between frame starts in samples (at least 1).
func (cfg Config) HopLength(sampleRate audio.SampleRate) int {
	return max(1, int(math.Round(float64(cfg.FrameLength(sampleRate))*(1-cfg.OverlapRatio))))
}
