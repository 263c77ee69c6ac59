// Package wav registers a RIFF/WAVE PCM codec backed by go-audio.
package wav

import (
	"context"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/xaionaro-go/speechprep/pkg/audio/registry"
	"github.com/xaionaro-go/speechprep/pkg/audio/types"
)

const (
	Priority = 50

	wavFormatPCM       = 1
	wavFormatIEEEFloat = 3
)

func init() {
	registry.RegisterCodecFactory(Priority, CodecFactory{})
}

type CodecFactory struct{}

func (CodecFactory) Extensions() []string {
	return []string{".wav", ".wave"}
}

func (CodecFactory) NewDecoder() (types.Decoder, error) {
	return Codec{}, nil
}

func (CodecFactory) NewEncoder() (types.Encoder, error) {
	return Codec{}, nil
}

type Codec struct{}

var (
	_ types.Decoder = Codec{}
	_ types.Encoder = Codec{}
)

func (Codec) Decode(
	ctx context.Context,
	r io.ReadSeeker,
) (*types.PCM, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	var pcmFormat types.PCMFormat
	var err error
	switch decoder.WavAudioFormat {
	case wavFormatPCM:
		pcmFormat, err = types.PCMFormatFromBitDepth(int(decoder.BitDepth))
	case wavFormatIEEEFloat:
		pcmFormat, err = types.PCMFormatFromBitDepthFloat(int(decoder.BitDepth))
	default:
		return nil, fmt.Errorf("unsupported WAV audio format %d", decoder.WavAudioFormat)
	}
	if err != nil {
		return nil, err
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to read the PCM buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("WAV file has no channels")
	}

	samples := make([]float64, len(buf.Data))
	for idx, v := range buf.Data {
		samples[idx] = pcmFormat.IntToFloat64(v)
	}
	return &types.PCM{
		Samples:    samples,
		Channels:   types.Channel(buf.Format.NumChannels),
		SampleRate: types.SampleRate(buf.Format.SampleRate),
		PCMFormat:  pcmFormat,
	}, nil
}

func (Codec) Encode(
	ctx context.Context,
	w io.WriteSeeker,
	pcm *types.PCM,
) error {
	switch pcm.PCMFormat {
	case types.PCMFormatU8, types.PCMFormatS16LE, types.PCMFormatS24LE, types.PCMFormatS32LE, types.PCMFormatFloat32LE:
	default:
		return fmt.Errorf("unsupported PCM format for WAV encoding: %v", pcm.PCMFormat)
	}
	if pcm.Channels == 0 {
		return fmt.Errorf("zero channels")
	}

	data := make([]int, len(pcm.Samples))
	for idx, v := range pcm.Samples {
		data[idx] = pcm.PCMFormat.Float64ToInt(v)
	}

	bitDepth := pcm.PCMFormat.BitDepth()
	audioFormat := wavFormatPCM
	if pcm.PCMFormat.IsFloat() {
		// go-audio writes 32-bit samples verbatim, so the float bits pass
		// through unchanged.
		audioFormat = wavFormatIEEEFloat
	}
	encoder := wav.NewEncoder(
		w,
		int(pcm.SampleRate),
		bitDepth,
		int(pcm.Channels),
		audioFormat,
	)
	err := encoder.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(pcm.Channels),
			SampleRate:  int(pcm.SampleRate),
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return fmt.Errorf("unable to write the samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("unable to finalize the WAV header: %w", err)
	}
	return nil
}
