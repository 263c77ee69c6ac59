// Package noisegate implements voice activity detection on top of the noise
// gate: the gain of a frame is the confidence it contains voice.
package noisegate

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/xaionaro-go/speechprep/pkg/audio"
	"github.com/xaionaro-go/speechprep/pkg/noisesuppression/implementations/noisegate"
	"github.com/xaionaro-go/speechprep/pkg/vad"
)

type VAD struct {
	NoiseGate *noisegate.NoiseGate
}

var _ vad.VAD = (*VAD)(nil)

func NewVAD(cfg noisegate.Config) (*VAD, error) {
	gate, err := noisegate.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the noise gate: %w", err)
	}
	return &VAD{
		NoiseGate: gate,
	}, nil
}

func (v *VAD) Close() error {
	return v.NoiseGate.Close()
}

// Confidence is the gain of the frame, except for digital silence which never
// contains voice whatever the gain of zero-threshold frames is.
func Confidence(stats noisegate.FrameStats) float64 {
	if stats.RMS == 0 {
		return 0
	}
	return stats.Gain
}

func (v *VAD) FindNextVoice(
	ctx context.Context,
	signal audio.Signal,
	confidenceThreshold float64,
	minDuration time.Duration,
) (float64, time.Duration, error) {
	stats, err := v.NoiseGate.FrameStats(ctx, signal)
	if err != nil {
		return 0, -1, err
	}
	if len(stats) == 0 || signal.SampleRate == 0 {
		return 0, -1, nil
	}

	hopDuration := time.Duration(int64(v.NoiseGate.Config.HopLength(signal.SampleRate)) * int64(time.Second) / int64(signal.SampleRate))
	logger.Debugf(ctx, "frames:%d hop:%v", len(stats), hopDuration)

	var maxConfidence float64
	var foundVoiceFor time.Duration
	firstVoiceDetection := time.Duration(-1)
	for pos, frameStats := range stats {
		voiceConfidence := Confidence(frameStats)
		if voiceConfidence > maxConfidence {
			maxConfidence = voiceConfidence
		}

		if voiceConfidence >= confidenceThreshold {
			foundVoiceFor += hopDuration
			if firstVoiceDetection < 0 {
				firstVoiceDetection = hopDuration * time.Duration(pos)
			}
		}

		if firstVoiceDetection >= 0 && foundVoiceFor >= minDuration {
			break
		}
	}
	return maxConfidence, firstVoiceDetection, nil
}
