package noisegate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/xaionaro-go/speechprep/pkg/spectrum"
	"github.com/xaionaro-go/speechprep/pkg/window"
)

// FrameStats describes the classification of one frame.
type FrameStats struct {
	FundamentalBin int
	NoiseFloor     float64
	Threshold      float64
	RMS            float64
	Gain           float64
}

// Classifier derives a gain for a frame from the ratio of its RMS to a
// threshold set relative to the frame's own noise floor.
//
// The noise floor is the square root of the median power of the spectrum
// with the fundamental peak (the highest bin and its monotonic skirt)
// removed.
type Classifier struct {
	Config Config
	window []float64
}

func NewClassifier(cfg Config) *Classifier {
	return &Classifier{
		Config: cfg,
	}
}

func (c *Classifier) analysisWindow(size int) []float64 {
	if len(c.window) != size {
		c.window = window.Kaiser(size, c.Config.KaiserBeta, true)
	}
	return c.window
}

// Classify computes the gain of the frame. It never fails: degenerate frames
// get Config.ZeroThresholdGain.
func (c *Classifier) Classify(frame []float64, sampleRate float64) FrameStats {
	stats := FrameStats{
		RMS:  rms(frame),
		Gain: c.Config.ZeroThresholdGain,
	}
	if len(frame) == 0 || sampleRate <= 0 {
		return stats
	}

	ps, err := spectrum.Periodogram(frame, sampleRate, c.analysisWindow(len(frame)))
	if err != nil {
		return stats
	}

	stats.FundamentalBin = floats.MaxIdx(ps.Power)
	noise := make([]float64, len(ps.Power))
	copy(noise, ps.Power)
	for _, idx := range spectrum.PeakNeighborhood(ps.Power, stats.FundamentalBin, c.Config.SearchWidth) {
		noise[idx] = 0
	}

	noiseMedian, ok := nonZeroMedian(noise)
	if !ok {
		return stats
	}

	stats.NoiseFloor = math.Sqrt(noiseMedian)
	stats.Threshold = stats.NoiseFloor * c.Config.ThresholdRatio
	stats.Gain = Gain(stats.RMS, stats.Threshold, c.Config.ZeroThresholdGain)
	return stats
}

// ClassifyFrame is a convenience wrapper returning only the gain.
func ClassifyFrame(frame []float64, sampleRate float64, cfg Config) float64 {
	return NewClassifier(cfg).Classify(frame, sampleRate).Gain
}

// Gain maps a frame RMS to a gain: frames above the threshold pass unchanged,
// the others are attenuated by the squared ratio of RMS to threshold.
// A zero (or invalid) threshold yields zeroThresholdGain.
func Gain(rms, threshold, zeroThresholdGain float64) float64 {
	if !(threshold > 0) || math.IsInf(threshold, 0) {
		return zeroThresholdGain
	}
	if rms > threshold {
		return 1
	}
	ratio := rms / threshold
	return ratio * ratio
}

func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(frame, frame) / float64(len(frame)))
}

// nonZeroMedian returns the median of the non-zero values; the median of an
// even amount of values is the mean of the two middle ones.
func nonZeroMedian(values []float64) (float64, bool) {
	nonZero := make([]float64, 0, len(values))
	for _, v := range values {
		if v != 0 {
			nonZero = append(nonZero, v)
		}
	}
	if len(nonZero) == 0 {
		return 0, false
	}
	sort.Float64s(nonZero)
	mid := len(nonZero) / 2
	if len(nonZero)%2 == 1 {
		return nonZero[mid], true
	}
	return (nonZero[mid-1] + nonZero[mid]) / 2, true
}
