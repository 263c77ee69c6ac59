// Package vad finds where the voice starts in a signal.
package vad

import (
	"context"
	"io"
	"time"

	"github.com/xaionaro-go/speechprep/pkg/audio"
)

type VAD interface {
	io.Closer

	// FindNextVoice returns the highest voice confidence seen and the offset of
	// the first frame with confidence of at least confidenceThreshold. The
	// search stops once confident frames amount to minDuration. The offset is
	// negative if no voice was found.
	FindNextVoice(
		ctx context.Context,
		signal audio.Signal,
		confidenceThreshold float64,
		minDuration time.Duration,
	) (float64, time.Duration, error)
}
