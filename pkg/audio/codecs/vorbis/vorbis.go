// Package vorbis registers an Ogg Vorbis decoder.
package vorbis

import (
	"context"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
	"github.com/xaionaro-go/speechprep/pkg/audio/registry"
	"github.com/xaionaro-go/speechprep/pkg/audio/types"
)

const (
	Priority = 50
)

func init() {
	registry.RegisterCodecFactory(Priority, CodecFactory{})
}

type CodecFactory struct{}

func (CodecFactory) Extensions() []string {
	return []string{".ogg", ".oga"}
}

func (CodecFactory) NewDecoder() (types.Decoder, error) {
	return Decoder{}, nil
}

func (CodecFactory) NewEncoder() (types.Encoder, error) {
	return nil, fmt.Errorf("encoding Ogg Vorbis is not supported")
}

type Decoder struct{}

var _ types.Decoder = Decoder{}

func (Decoder) Decode(
	ctx context.Context,
	r io.ReadSeeker,
) (*types.PCM, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode Ogg Vorbis: %w", err)
	}
	if format.Channels <= 0 {
		return nil, fmt.Errorf("invalid amount of channels: %d", format.Channels)
	}

	samples := make([]float64, len(data))
	for idx, v := range data {
		samples[idx] = float64(v)
	}
	return &types.PCM{
		Samples:    samples,
		Channels:   types.Channel(format.Channels),
		SampleRate: types.SampleRate(format.SampleRate),
		PCMFormat:  types.PCMFormatFloat32LE,
	}, nil
}
