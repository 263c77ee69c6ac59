// Package noisegate implements an adaptive noise gate: every frame is
// attenuated by a gain derived from its own spectral noise floor, and the
// gains are blended by Hann-windowed overlap-add.
package noisegate

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/speechprep/pkg/audio"
	"github.com/xaionaro-go/speechprep/pkg/noisesuppression"
	"github.com/xaionaro-go/speechprep/pkg/overlapadd"
	"github.com/xaionaro-go/speechprep/pkg/window"
)

// Summary describes what Denoise did to a signal.
type Summary struct {
	Frames      int
	GatedFrames int
	MeanGain    float64
}

type NoiseGate struct {
	Config Config
}

var _ noisesuppression.NoiseSuppression = (*NoiseGate)(nil)

func New(cfg Config) (*NoiseGate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid noise gate config: %w", err)
	}
	return &NoiseGate{
		Config: cfg,
	}, nil
}

func (g *NoiseGate) Close() error {
	return nil
}

// FrameStats classifies every complete frame of the signal.
func (g *NoiseGate) FrameStats(
	ctx context.Context,
	signal audio.Signal,
) ([]FrameStats, error) {
	frameLength := g.Config.FrameLength(signal.SampleRate)
	hopLength := g.Config.HopLength(signal.SampleRate)
	classifier := NewClassifier(g.Config)

	frames := overlapadd.Frames(signal.Samples, frameLength, hopLength)
	stats := make([]FrameStats, len(frames))
	for idx, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats[idx] = classifier.Classify(frame, float64(signal.SampleRate))
	}
	return stats, nil
}

// Gains returns the gain of every complete frame of the signal.
func (g *NoiseGate) Gains(
	ctx context.Context,
	signal audio.Signal,
) ([]float64, error) {
	stats, err := g.FrameStats(ctx, signal)
	if err != nil {
		return nil, err
	}
	gains := make([]float64, len(stats))
	for idx := range stats {
		gains[idx] = stats[idx].Gain
	}
	return gains, nil
}

// Denoise returns the gated signal, of the same length and sample rate as the
// input. Samples not covered by any complete frame follow Config.TailPolicy.
// The only error it may return is the one of the context.
func (g *NoiseGate) Denoise(
	ctx context.Context,
	signal audio.Signal,
) (audio.Signal, Summary, error) {
	var summary Summary
	gains, err := g.Gains(ctx, signal)
	if err != nil {
		return audio.Signal{}, summary, err
	}

	frameLength := g.Config.FrameLength(signal.SampleRate)
	output, err := overlapadd.Reconstruct(signal.Samples, overlapadd.Config{
		FrameLength: frameLength,
		HopLength:   g.Config.HopLength(signal.SampleRate),
		Window:      window.Hann(frameLength),
		TailPolicy:  g.Config.TailPolicy,
	}, gains)
	if err != nil {
		return audio.Signal{}, summary, fmt.Errorf("unable to reconstruct the signal: %w", err)
	}

	summary.Frames = len(gains)
	var sum float64
	for _, gain := range gains {
		sum += gain
		if gain < 1 {
			summary.GatedFrames++
		}
	}
	if len(gains) > 0 {
		summary.MeanGain = sum / float64(len(gains))
	}
	return signal.WithSamples(output), summary, nil
}

func (g *NoiseGate) SuppressNoise(
	ctx context.Context,
	input audio.Signal,
) (_ret audio.Signal, _err error) {
	logger.Tracef(ctx, "SuppressNoise")
	defer func() { logger.Tracef(ctx, "/SuppressNoise: %v", _err) }()

	output, summary, err := g.Denoise(ctx, input)
	if err != nil {
		return audio.Signal{}, err
	}
	logger.Debugf(ctx, "noise gate: frames:%d gated:%d mean_gain:%.4f",
		summary.Frames, summary.GatedFrames, summary.MeanGain)
	return output, nil
}
