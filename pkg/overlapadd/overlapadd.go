// Package overlapadd frames a signal, weights each frame and reconstructs it
// by overlap-add normalized by the accumulated window weight.
package overlapadd

import (
	"fmt"
	"strings"
)

const DefaultEpsilon = 1e-8

// TailPolicy defines the output at samples that received no window weight:
// the tail shorter than one frame and zero-valued window end points.
type TailPolicy int

const (
	// TailDrop leaves such samples silent.
	TailDrop = TailPolicy(iota)

	// TailPassThrough copies the input at such samples.
	TailPassThrough
)

func (p TailPolicy) String() string {
	switch p {
	case TailDrop:
		return "drop"
	case TailPassThrough:
		return "pass-through"
	default:
		return fmt.Sprintf("unknown_tail_policy_%d", int(p))
	}
}

func (p TailPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *TailPolicy) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "drop", "":
		*p = TailDrop
	case "pass-through", "passthrough":
		*p = TailPassThrough
	default:
		return fmt.Errorf("unknown tail policy %q", string(b))
	}
	return nil
}

// Set implements pflag.Value.
func (p *TailPolicy) Set(s string) error {
	return p.UnmarshalText([]byte(s))
}

// Type implements pflag.Value.
func (p *TailPolicy) Type() string {
	return "tail-policy"
}

type Config struct {
	FrameLength int
	HopLength   int

	// Window is the taper applied to every frame, len(Window) must equal
	// FrameLength. Nil means rectangular.
	Window []float64

	TailPolicy TailPolicy

	// Epsilon is the accumulated weight at or below which a sample is
	// considered uncovered. Zero means DefaultEpsilon.
	Epsilon float64
}

func (cfg Config) Validate() error {
	if cfg.FrameLength <= 0 {
		return fmt.Errorf("frame length must be positive: %d", cfg.FrameLength)
	}
	if cfg.HopLength <= 0 {
		return fmt.Errorf("hop length must be positive: %d", cfg.HopLength)
	}
	if cfg.Window != nil && len(cfg.Window) != cfg.FrameLength {
		return fmt.Errorf("window length %d does not match frame length %d", len(cfg.Window), cfg.FrameLength)
	}
	if cfg.Epsilon < 0 {
		return fmt.Errorf("epsilon must not be negative: %v", cfg.Epsilon)
	}
	return nil
}

// FrameCount returns the amount of complete frames of frameLength, hopLength
// apart, fitting into signalLength samples.
func FrameCount(signalLength, frameLength, hopLength int) int {
	if frameLength <= 0 || hopLength <= 0 || signalLength < frameLength {
		return 0
	}
	return 1 + (signalLength-frameLength)/hopLength
}

// Frames returns the complete frames of the signal as subslices of it.
func Frames(signal []float64, frameLength, hopLength int) [][]float64 {
	count := FrameCount(len(signal), frameLength, hopLength)
	frames := make([][]float64, count)
	for idx := range frames {
		start := idx * hopLength
		frames[idx] = signal[start : start+frameLength : start+frameLength]
	}
	return frames
}

// Reconstruct overlap-adds the windowed frames of signal, each multiplied by
// its entry of frameWeights, and divides the sum by the accumulated window
// weight.
//
// A nil frameWeights means unity weight for every frame; frames beyond
// len(frameWeights) also get unity weight. The output has the length of
// signal.
func Reconstruct(
	signal []float64,
	cfg Config,
	frameWeights []float64,
) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	epsilon := cfg.Epsilon
	if epsilon == 0 {
		epsilon = DefaultEpsilon
	}

	output := make([]float64, len(signal))
	norm := make([]float64, len(signal))
	for frameIdx, frame := range Frames(signal, cfg.FrameLength, cfg.HopLength) {
		weight := 1.0
		if frameIdx < len(frameWeights) {
			weight = frameWeights[frameIdx]
		}
		start := frameIdx * cfg.HopLength
		for i, v := range frame {
			w := 1.0
			if cfg.Window != nil {
				w = cfg.Window[i]
			}
			output[start+i] += v * weight * w
			norm[start+i] += w
		}
	}

	for i := range output {
		if norm[i] > epsilon {
			output[i] /= norm[i]
			continue
		}
		switch cfg.TailPolicy {
		case TailPassThrough:
			output[i] = signal[i]
		default:
			output[i] = 0
		}
	}
	return output, nil
}
