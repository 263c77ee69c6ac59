package spectrum

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/xaionaro-go/speechprep/pkg/window"
)

func TestPeriodogram(t *testing.T) {
	const (
		sampleRate = 16000.0
		n          = 400
	)

	t.Run("SinePeak", func(t *testing.T) {
		frame := make([]float64, n)
		for i := range frame {
			frame[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / sampleRate)
		}
		ps, err := Periodogram(frame, sampleRate, window.Kaiser(n, 38, true))
		require.NoError(t, err)
		require.Len(t, ps.Power, n/2+1)
		require.Len(t, ps.Frequencies, n/2+1)
		peak := floats.MaxIdx(ps.Power)
		assert.Equal(t, 1000.0, ps.Frequencies[peak])
		for _, p := range ps.Power {
			require.GreaterOrEqual(t, p, 0.0)
		}
	})

	t.Run("ParsevalRectangular", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for _, size := range []int{256, 255} {
			frame := make([]float64, size)
			for i := range frame {
				frame[i] = rng.NormFloat64()
			}
			ps, err := Periodogram(frame, sampleRate, nil)
			require.NoError(t, err)

			mean := floats.Sum(frame) / float64(size)
			var variance float64
			for _, v := range frame {
				variance += (v - mean) * (v - mean)
			}
			variance /= float64(size)

			assert.InDelta(t, variance, floats.Sum(ps.Power)*sampleRate/float64(size), 1e-9, "size %d", size)
		}
	})

	t.Run("ConstantFrameIsZero", func(t *testing.T) {
		frame := make([]float64, 64)
		for i := range frame {
			frame[i] = 0.3
		}
		ps, err := Periodogram(frame, sampleRate, window.Kaiser(64, 38, true))
		require.NoError(t, err)
		for _, p := range ps.Power {
			require.InDelta(t, 0, p, 1e-20)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := Periodogram(nil, sampleRate, nil)
		require.Error(t, err)
		_, err = Periodogram([]float64{1, 2}, 0, nil)
		require.Error(t, err)
		_, err = Periodogram([]float64{1, 2}, sampleRate, []float64{1})
		require.Error(t, err)
	})
}
