package types

import (
	"context"
	"io"
)

// PCM is a decoded (or to be encoded) interleaved multichannel buffer with
// samples in [-1, 1].
type PCM struct {
	Samples    []float64
	Channels   Channel
	SampleRate SampleRate
	PCMFormat  PCMFormat
}

func (p PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / int(p.Channels)
}

type Decoder interface {
	Decode(ctx context.Context, r io.ReadSeeker) (*PCM, error)
}

type Encoder interface {
	Encode(ctx context.Context, w io.WriteSeeker, pcm *PCM) error
}
