package planar

import (
	"fmt"

	"github.com/xaionaro-go/speechprep/pkg/audio/types"
)

// Planarize converts interleaved samples (L R L R ...) into one slice per
// channel.
func Planarize(channels types.Channel, interleaved []float64) ([][]float64, error) {
	if channels == 0 {
		return nil, fmt.Errorf("the amount of channels is zero")
	}
	if len(interleaved)%int(channels) != 0 {
		return nil, fmt.Errorf("expected a message length that is a multiple of %d, but received %d", channels, len(interleaved))
	}

	samplesPerChan := len(interleaved) / int(channels)
	planes := make([][]float64, channels)
	for ch := range planes {
		plane := make([]float64, samplesPerChan)
		for samplePos := range plane {
			plane[samplePos] = interleaved[samplePos*int(channels)+ch]
		}
		planes[ch] = plane
	}
	return planes, nil
}

// Unplanarize is the inverse of Planarize.
func Unplanarize(planes [][]float64) ([]float64, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("no channels provided")
	}
	samplesPerChan := len(planes[0])
	for ch, plane := range planes {
		if len(plane) != samplesPerChan {
			return nil, fmt.Errorf("the lengths of channel 0 and channel %d are not equal: %d != %d", ch, samplesPerChan, len(plane))
		}
	}

	channels := len(planes)
	output := make([]float64, samplesPerChan*channels)
	for ch, plane := range planes {
		for samplePos, v := range plane {
			output[samplePos*channels+ch] = v
		}
	}
	return output, nil
}

// Downmix averages interleaved channels into a single mono channel.
func Downmix(interleaved []float64, channels types.Channel) ([]float64, error) {
	if channels == 1 {
		output := make([]float64, len(interleaved))
		copy(output, interleaved)
		return output, nil
	}

	planes, err := Planarize(channels, interleaved)
	if err != nil {
		return nil, fmt.Errorf("unable to planarize: %w", err)
	}

	output := make([]float64, len(planes[0]))
	for _, plane := range planes {
		for samplePos, v := range plane {
			output[samplePos] += v
		}
	}
	for samplePos := range output {
		output[samplePos] /= float64(channels)
	}
	return output, nil
}
