package noisesuppression

import (
	"context"
	"io"

	"github.com/xaionaro-go/speechprep/pkg/audio"
)

type NoiseSuppression interface {
	io.Closer

	// SuppressNoise returns a new signal of the same length and sample rate
	// with the noise attenuated. The input is not modified.
	SuppressNoise(ctx context.Context, input audio.Signal) (audio.Signal, error)
}
