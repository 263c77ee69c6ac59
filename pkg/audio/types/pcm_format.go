package types

import (
	"fmt"
	"math"
)

type PCMFormat uint

const (
	PCMFormatUndefined = PCMFormat(iota)
	PCMFormatU8
	PCMFormatS16LE
	PCMFormatS24LE
	PCMFormatS32LE
	PCMFormatFloat32LE
	EndOfPCMFormat
)

func PCMFormatFromBitDepth(bitDepth int) (PCMFormat, error) {
	switch bitDepth {
	case 8:
		return PCMFormatU8, nil
	case 16:
		return PCMFormatS16LE, nil
	case 24:
		return PCMFormatS24LE, nil
	case 32:
		return PCMFormatS32LE, nil
	default:
		return PCMFormatUndefined, fmt.Errorf("unsupported PCM bit depth: %d", bitDepth)
	}
}

// PCMFormatFromBitDepthFloat is PCMFormatFromBitDepth for IEEE float
// samples; only 32 bits are supported.
func PCMFormatFromBitDepthFloat(bitDepth int) (PCMFormat, error) {
	if bitDepth != 32 {
		return PCMFormatUndefined, fmt.Errorf("unsupported float PCM bit depth: %d", bitDepth)
	}
	return PCMFormatFloat32LE, nil
}

func (f PCMFormat) String() string {
	switch f {
	case PCMFormatUndefined:
		return "undefined"
	case PCMFormatU8:
		return "u8"
	case PCMFormatS16LE:
		return "s16le"
	case PCMFormatS24LE:
		return "s24le"
	case PCMFormatS32LE:
		return "s32le"
	case PCMFormatFloat32LE:
		return "f32le"
	default:
		return fmt.Sprintf("unknown_format_%d", uint(f))
	}
}

// Size returns the size of a single sample in bytes.
func (f PCMFormat) Size() uint {
	switch f {
	case PCMFormatU8:
		return 1
	case PCMFormatS16LE:
		return 2
	case PCMFormatS24LE:
		return 3
	case PCMFormatS32LE, PCMFormatFloat32LE:
		return 4
	default:
		return 0
	}
}

func (f PCMFormat) BitDepth() int {
	return int(f.Size()) * 8
}

func (f PCMFormat) IsFloat() bool {
	return f == PCMFormatFloat32LE
}

// IntToFloat64 converts an integer sample value of the format into [-1, 1].
// For float formats the integer holds the bits of the sample.
func (f PCMFormat) IntToFloat64(v int) float64 {
	switch f {
	case PCMFormatU8:
		return (float64(v) - 128) / 128
	case PCMFormatS16LE:
		return float64(v) / 32768
	case PCMFormatS24LE:
		return float64(v) / 8388608
	case PCMFormatS32LE:
		return float64(v) / 2147483648
	case PCMFormatFloat32LE:
		// v carries the IEEE 754 bits
		return float64(math.Float32frombits(uint32(int32(v))))
	default:
		panic(fmt.Sprintf("format %v has no integer representation", f))
	}
}

// Float64ToInt converts a sample into the integer representation of the
// format, clipping it to the representable range.
func (f PCMFormat) Float64ToInt(v float64) int {
	if math.IsNaN(v) {
		v = 0
	}
	switch f {
	case PCMFormatU8:
		return clip(math.Round(v*128+128), 0, 255)
	case PCMFormatS16LE:
		return clip(math.Round(v*32768), -32768, 32767)
	case PCMFormatS24LE:
		return clip(math.Round(v*8388608), -8388608, 8388607)
	case PCMFormatS32LE:
		return clip(math.Round(v*2147483648), -2147483648, 2147483647)
	case PCMFormatFloat32LE:
		return int(int32(math.Float32bits(float32(math.Max(-1, math.Min(1, v))))))
	default:
		panic(fmt.Sprintf("format %v has no integer representation", f))
	}
}

func clip(v float64, lo, hi int) int {
	if v < float64(lo) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}
