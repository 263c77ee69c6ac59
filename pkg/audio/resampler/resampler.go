package resampler

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/resample"

	"github.com/xaionaro-go/speechprep/pkg/audio/types"
)

// OutputLen is the amount of samples Resample produces for inputLen samples:
// ceil(inputLen * outRate / inRate).
func OutputLen(inputLen int, inRate, outRate types.SampleRate) int {
	if inputLen <= 0 || inRate == 0 {
		return 0
	}
	return int((uint64(inputLen)*uint64(outRate) + uint64(inRate) - 1) / uint64(inRate))
}

// Resample converts mono samples from one sample rate to another with a
// band-limited polyphase FIR, so downsampling does not alias. The filter
// delay is compensated: output sample i corresponds to input time
// i/outRate.
func Resample(
	input []float64,
	inRate types.SampleRate,
	outRate types.SampleRate,
) ([]float64, error) {
	if inRate == 0 || outRate == 0 {
		return nil, fmt.Errorf("sample rates must be positive: %d -> %d", inRate, outRate)
	}
	if inRate == outRate {
		output := make([]float64, len(input))
		copy(output, input)
		return output, nil
	}
	if len(input) == 0 {
		return []float64{}, nil
	}

	r, err := resample.NewRational(int(outRate), int(inRate), resample.WithQuality(resample.QualityBest))
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the resampler %d -> %d: %w", inRate, outRate, err)
	}
	up, down := r.Ratio()

	// group delay of the linear-phase prototype, in the upsampled domain
	delay := float64(len(r.Prototype())-1) / 2
	skip := int(math.Round(delay / float64(down)))
	pad := int(math.Ceil((delay+2*float64(down))/float64(up))) + 1

	padded := make([]float64, len(input)+pad)
	copy(padded, input)
	filtered := r.Process(padded)

	outLen := OutputLen(len(input), inRate, outRate)
	output := make([]float64, outLen)
	if skip < len(filtered) {
		copy(output, filtered[skip:])
	}
	return output, nil
}
