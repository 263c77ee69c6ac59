package filter

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaionaro-go/speechprep/pkg/audio"
)

func sine(n int, freq, amplitude, sampleRate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

func middleRMS(x []float64) float64 {
	x = x[len(x)/4 : 3*len(x)/4]
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestSteadyState(t *testing.T) {
	lp := design.ButterworthLP(1000, 4, 16000)
	hp := design.ButterworthHP(1000, 4, 16000)
	for _, c := range lp {
		assert.InDelta(t, 1, dcGain(c), 1e-9)
	}
	for _, c := range hp {
		assert.InDelta(t, 0, dcGain(c), 1e-9)
	}
	assert.Equal(t, 0.0, dcGain(biquad.Coefficients{B0: 1, A1: -1}))

	// A chain started from the steady state of x keeps producing its DC
	// response to x without a transient.
	const x = 0.3
	chain := biquad.NewChain(lp)
	chain.SetState(steadyState(lp, x))
	for i := 0; i < 100; i++ {
		require.InDelta(t, x, chain.ProcessSample(x), 1e-12, "sample %d", i)
	}
}

func TestBandpassSections(t *testing.T) {
	cfg := DefaultBandpassConfig()
	require.NoError(t, cfg.Validate())

	// 8 kHz is the Nyquist frequency at 16 kHz, so only the highpass is left.
	assert.Len(t, cfg.Sections(16000), 2)
	assert.Len(t, cfg.Sections(22050), 4)

	cfg.LowCutoff = 0
	assert.Len(t, cfg.Sections(22050), 2)

	cfg.HighCutoff = 20000
	assert.Empty(t, cfg.Sections(22050))

	cfg = DefaultBandpassConfig()
	cfg.Order = 3
	assert.Len(t, cfg.Sections(22050), 4)
}

func TestBandpassConfigValidate(t *testing.T) {
	for name, cfg := range map[string]BandpassConfig{
		"order":    {LowCutoff: 80, HighCutoff: 8000},
		"negative": {LowCutoff: -1, HighCutoff: 8000, Order: 4},
		"inverted": {LowCutoff: 8000, HighCutoff: 80, Order: 4},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
			_, err := Bandpass(audio.NewSignal([]float64{1, 2}, 16000), cfg)
			assert.Error(t, err)
		})
	}
}

func TestFiltFilt(t *testing.T) {
	t.Run("ConstantThroughHighpass", func(t *testing.T) {
		input := make([]float64, 1000)
		for i := range input {
			input[i] = 0.25
		}
		output := FiltFilt(design.ButterworthHP(80, 4, 16000), input)
		require.Len(t, output, len(input))
		for _, v := range output {
			require.InDelta(t, 0, v, 1e-9)
		}
	})

	t.Run("ConstantThroughLowpass", func(t *testing.T) {
		input := make([]float64, 1000)
		for i := range input {
			input[i] = 0.25
		}
		output := FiltFilt(design.ButterworthLP(1000, 4, 16000), input)
		for _, v := range output {
			require.InDelta(t, 0.25, v, 1e-9)
		}
	})

	t.Run("NoSections", func(t *testing.T) {
		input := []float64{1, 2, 3}
		assert.Equal(t, input, FiltFilt(nil, input))
	})

	t.Run("Short", func(t *testing.T) {
		coeffs := design.ButterworthHP(80, 4, 16000)
		assert.Empty(t, FiltFilt(coeffs, nil))
		assert.Len(t, FiltFilt(coeffs, []float64{0.5}), 1)
		assert.Len(t, FiltFilt(coeffs, []float64{0.5, -0.5}), 2)
	})
}

func TestBandpass(t *testing.T) {
	const sampleRate = 22050
	cfg := DefaultBandpassConfig()

	for _, tc := range []struct {
		name     string
		freq     float64
		minRatio float64
		maxRatio float64
	}{
		{"passband", 1000, 0.99, 1.01},
		{"belowBand", 20, 0, 0.01},
		{"aboveBand", 10000, 0, 0.1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			input := sine(sampleRate, tc.freq, 0.5, sampleRate)
			orig := append([]float64(nil), input...)

			output, err := Bandpass(audio.NewSignal(input, sampleRate), cfg)
			require.NoError(t, err)
			require.Len(t, output.Samples, len(input))
			assert.Equal(t, orig, input)

			ratio := middleRMS(output.Samples) / middleRMS(input)
			assert.GreaterOrEqual(t, ratio, tc.minRatio)
			assert.LessOrEqual(t, ratio, tc.maxRatio)
		})
	}
}

func TestPreEmphasize(t *testing.T) {
	assert.InDeltaSlice(t, []float64{1, 1.4, 1.8}, PreEmphasize([]float64{1, 2, 3}, 0.6), 1e-12)
	assert.InDeltaSlice(t, []float64{0.2}, PreEmphasize([]float64{0.5}, 0.6), 1e-12)
	assert.Empty(t, PreEmphasize(nil, 0.6))

	input := []float64{0.1, -0.2, 0.3}
	assert.Equal(t, input, PreEmphasize(input, 0))

	cfg := DefaultPreEmphasisConfig()
	require.NoError(t, cfg.Validate())
	signal, err := PreEmphasis(audio.NewSignal([]float64{1, 2, 3}, 8000), cfg)
	require.NoError(t, err)
	assert.Equal(t, audio.SampleRate(8000), signal.SampleRate)

	cfg.Coefficient = 1
	_, err = PreEmphasis(audio.NewSignal([]float64{1}, 8000), cfg)
	assert.Error(t, err)
}
