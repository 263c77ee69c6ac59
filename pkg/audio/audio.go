// Package audio provides the signal type shared by all the processing stages
// and loading/saving of signals from/to audio files.
package audio

import (
	"errors"

	"github.com/xaionaro-go/speechprep/pkg/audio/types"
)

type (
	Signal     = types.Signal
	SampleRate = types.SampleRate
	Channel    = types.Channel
	PCMFormat  = types.PCMFormat
	PCM        = types.PCM
)

const (
	PCMFormatUndefined = types.PCMFormatUndefined
	PCMFormatU8        = types.PCMFormatU8
	PCMFormatS16LE     = types.PCMFormatS16LE
	PCMFormatS24LE     = types.PCMFormatS24LE
	PCMFormatS32LE     = types.PCMFormatS32LE
	PCMFormatFloat32LE = types.PCMFormatFloat32LE
)

var (
	// ErrInvalidInput is returned for missing, empty or non-existent paths.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIO is returned when a file cannot be read, written or decoded, or a
	// directory cannot be created.
	ErrIO = errors.New("I/O failure")
)

func NewSignal(samples []float64, sampleRate SampleRate) Signal {
	return types.NewSignal(samples, sampleRate)
}

func PCMFormatFromBitDepth(bitDepth int) (PCMFormat, error) {
	return types.PCMFormatFromBitDepth(bitDepth)
}

func PCMFormatFromBitDepthFloat(bitDepth int) (PCMFormat, error) {
	return types.PCMFormatFromBitDepthFloat(bitDepth)
}
