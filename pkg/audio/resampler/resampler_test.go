package resampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaionaro-go/speechprep/pkg/audio/types"
)

func sine(n int, freq, sampleRate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func rms(samples []float64) float64 {
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestResample(t *testing.T) {
	t.Run("Identity_44100", func(t *testing.T) {
		data := make([]float64, 100)
		for i := range data {
			data[i] = float64(i) / 100
		}
		out, err := Resample(data, 44100, 44100)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	})

	t.Run("OutputLength", func(t *testing.T) {
		for _, c := range []struct {
			inRate, outRate types.SampleRate
			inLen, outLen   int
		}{
			{44100, 16000, 60 * 44100, 60 * 16000},
			{16000, 44100, 60 * 16000, 60 * 44100},
			{44100, 22050, 100, 50},
			{8000, 16000, 4, 8},
			{16000, 8000, 3, 2},
		} {
			out, err := Resample(make([]float64, c.inLen), c.inRate, c.outRate)
			require.NoError(t, err)
			assert.Len(t, out, c.outLen, "%d -> %d", c.inRate, c.outRate)
			assert.Equal(t, c.outLen, OutputLen(c.inLen, c.inRate, c.outRate))
		}
	})

	t.Run("Empty", func(t *testing.T) {
		out, err := Resample(nil, 44100, 16000)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("ToneIsPreservedAndAligned", func(t *testing.T) {
		const freq = 100
		in := sine(44100, freq, 44100)
		out, err := Resample(in, 44100, 16000)
		require.NoError(t, err)
		require.Len(t, out, 16000)

		expected := sine(16000, freq, 16000)
		for i := 1000; i < 15000; i++ {
			require.InDelta(t, expected[i], out[i], 0.05, "sample %d", i)
		}
	})

	t.Run("AboveNyquistIsFilteredOut", func(t *testing.T) {
		in := sine(44100, 12000, 44100)
		out, err := Resample(in, 44100, 16000)
		require.NoError(t, err)
		assert.Less(t, rms(out[1000:15000]), 0.05*rms(in))
	})

	t.Run("ZeroRate", func(t *testing.T) {
		_, err := Resample([]float64{1}, 0, 16000)
		require.Error(t, err)
	})
}
