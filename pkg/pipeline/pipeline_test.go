package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xaionaro-go/speechprep/pkg/audio"
	"github.com/xaionaro-go/speechprep/pkg/audio/codecs/wav"
	"github.com/xaionaro-go/speechprep/pkg/separator"
)

const testSampleRate = 16000

func writeSpeechLike(t *testing.T, path string, seed int64) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	samples := make([]float64, testSampleRate/2)
	for i := range samples {
		samples[i] = 0.4*math.Sin(2*math.Pi*220*float64(i)/testSampleRate) + 0.02*rng.NormFloat64()
	}
	require.NoError(t, audio.Save(context.Background(), path, audio.NewSignal(samples, testSampleRate), audio.SaveOptions{}))
}

type failingSeparator struct {
	separator.Dummy
	failOn string
}

func (s *failingSeparator) Separate(ctx context.Context, inputPath string) (separator.Result, error) {
	if strings.Contains(filepath.Base(inputPath), s.failOn) {
		return separator.Result{}, &separator.ToolError{Command: "fake", ExitCode: 1, Stderr: "boom"}
	}
	return s.Dummy.Separate(ctx, inputPath)
}

func TestOutputName(t *testing.T) {
	for input, expected := range map[string]string{
		"/data/IS01_spk1_take3.wav": "IS01_spk1_cleaned.wav",
		"IS02_spk.wav":              "IS02_spk_cleaned.wav",
		"IS03.wav":                  "IS03_cleaned.wav",
		"dir/IS04_a_b_c.flac":       "IS04_a_cleaned.wav",
	} {
		assert.Equal(t, expected, OutputName(input), input)
	}
}

func TestReportPath(t *testing.T) {
	assert.Equal(t, "/out/IS01_a_cleaned.report.yaml", ReportPath("/out/IS01_a_cleaned.wav"))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	for name, mutate := range map[string]func(*Config){
		"pattern":     func(c *Config) { c.Batch.Pattern = "[" },
		"emptyPatern": func(c *Config) { c.Batch.Pattern = "" },
		"limit":       func(c *Config) { c.Batch.Limit = -1 },
		"concurrency": func(c *Config) { c.Batch.Concurrency = 0 },
		"bitDepth":    func(c *Config) { c.OutputBitDepth = 12 },
		"floatDepth":  func(c *Config) { c.OutputFloat = true },
		"denoise":     func(c *Config) { c.Denoise.OverlapRatio = 1 },
		"bandpass":    func(c *Config) { c.Bandpass.Order = 0 },
		"preEmphasis": func(c *Config) { c.PreEmphasis.Coefficient = 2 },
		"windowing":   func(c *Config) { c.Windowing.HopLength = 0 },
		"vad":         func(c *Config) { c.VAD.ConfidenceThreshold = 2 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			_, err := New(cfg, nil, nil)
			assert.Error(t, err)
		})
	}

	cfg := DefaultConfig()
	cfg.Bandpass.Enabled = false
	cfg.Bandpass.Order = 0
	assert.NoError(t, cfg.Validate())
}

func TestProcessFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	input := filepath.Join(dir, "IS01_spk_take.wav")
	writeSpeechLike(t, input, 1)

	t.Run("AllStages", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.WriteReport = true
		p, err := New(cfg, nil, nil)
		require.NoError(t, err)
		defer p.Close()

		output := filepath.Join(dir, "all.wav")
		report, err := p.ProcessFile(ctx, input, output)
		require.NoError(t, err)
		assert.Equal(t, input, report.Vocals)
		assert.Equal(t, report.Before.Samples, report.After.Samples)
		require.NotNil(t, report.Voice)
		assert.Equal(t, time.Duration(0), report.Voice.FirstVoice)
		assert.Equal(t, 1.0, report.Voice.MaxConfidence)

		loaded, err := audio.Load(ctx, output, audio.LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, audio.SampleRate(testSampleRate), loaded.SampleRate)
		assert.Equal(t, testSampleRate/2, loaded.Len())

		b, err := os.ReadFile(ReportPath(output))
		require.NoError(t, err)
		var decoded FileReport
		require.NoError(t, yaml.Unmarshal(b, &decoded))
		assert.Equal(t, *report, decoded)
	})

	t.Run("NoStages", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Denoise.Enabled = false
		cfg.Bandpass.Enabled = false
		cfg.PreEmphasis.Enabled = false
		cfg.Windowing.Enabled = false
		cfg.VAD.Enabled = false
		p, err := New(cfg, nil, nil)
		require.NoError(t, err)

		output := filepath.Join(dir, "none.wav")
		report, err := p.ProcessFile(ctx, input, output)
		require.NoError(t, err)
		assert.Nil(t, report.Voice)
		assert.NoFileExists(t, ReportPath(output))

		expected, err := audio.Load(ctx, input, audio.LoadOptions{})
		require.NoError(t, err)
		actual, err := audio.Load(ctx, output, audio.LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, expected.Samples, actual.Samples)
	})

	t.Run("Resampled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SampleRate = 8000
		p, err := New(cfg, nil, nil)
		require.NoError(t, err)

		output := filepath.Join(dir, "8k.wav")
		report, err := p.ProcessFile(ctx, input, output)
		require.NoError(t, err)
		assert.Equal(t, audio.SampleRate(8000), report.After.SampleRate)
	})

	t.Run("FloatOutput", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.OutputBitDepth = 32
		cfg.OutputFloat = true
		p, err := New(cfg, nil, nil)
		require.NoError(t, err)

		output := filepath.Join(dir, "float.wav")
		_, err = p.ProcessFile(ctx, input, output)
		require.NoError(t, err)

		f, err := os.Open(output)
		require.NoError(t, err)
		defer f.Close()
		pcm, err := wav.Codec{}.Decode(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, audio.PCMFormatFloat32LE, pcm.PCMFormat)
	})

	t.Run("Errors", func(t *testing.T) {
		p, err := New(DefaultConfig(), nil, nil)
		require.NoError(t, err)

		_, err = p.ProcessFile(ctx, filepath.Join(dir, "missing.wav"), filepath.Join(dir, "x.wav"))
		assert.ErrorIs(t, err, audio.ErrInvalidInput)

		_, err = p.ProcessFile(ctx, input, filepath.Join(dir, "no", "such", "dir.wav"))
		assert.ErrorIs(t, err, audio.ErrIO)

		p, err = New(DefaultConfig(), &failingSeparator{failOn: "IS01"}, nil)
		require.NoError(t, err)
		_, err = p.ProcessFile(ctx, input, filepath.Join(dir, "x.wav"))
		assert.ErrorIs(t, err, separator.ErrToolFailure)

		cancelledCtx, cancelFn := context.WithCancel(ctx)
		cancelFn()
		_, err = p.ProcessFile(cancelledCtx, input, filepath.Join(dir, "x.wav"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func prepareBatch(t *testing.T) (string, []string) {
	t.Helper()
	inputDir := t.TempDir()
	var matching []string
	for i, name := range []string{
		"IS07_spk_a.wav",
		"IS03_spk_a.wav",
		"IS01_spk_a.wav",
		"IS05_spk_a.wav",
		"IS02_spk_a.wav",
		"IS06_spk_a.wav",
		"IS04_spk_a.wav",
	} {
		path := filepath.Join(inputDir, name)
		writeSpeechLike(t, path, int64(i))
		matching = append(matching, path)
	}
	for i, name := range []string{"IT01_spk_a.wav", "readme.wav", "IS01_spk_notes.txt"} {
		writeSpeechLike(t, filepath.Join(inputDir, "tmp.wav"), int64(100+i))
		require.NoError(t, os.Rename(filepath.Join(inputDir, "tmp.wav"), filepath.Join(inputDir, name)))
	}
	require.NoError(t, os.Mkdir(filepath.Join(inputDir, "IS00_dir.wav"), 0755))
	return inputDir, matching
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestListInputs(t *testing.T) {
	inputDir, _ := prepareBatch(t)

	inputs, err := ListInputs(inputDir, DefaultBatchConfig())
	require.NoError(t, err)
	require.Len(t, inputs, 5)
	for i, input := range inputs {
		assert.Equal(t, filepath.Join(inputDir, []string{
			"IS01_spk_a.wav", "IS02_spk_a.wav", "IS03_spk_a.wav", "IS04_spk_a.wav", "IS05_spk_a.wav",
		}[i]), input)
	}

	inputs, err = ListInputs(inputDir, BatchConfig{Pattern: "IS0*.wav"})
	require.NoError(t, err)
	assert.Len(t, inputs, 7)
}

func TestProcessDir(t *testing.T) {
	ctx := context.Background()

	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("Concurrency%d", concurrency), func(t *testing.T) {
			inputDir, _ := prepareBatch(t)
			outputDir := filepath.Join(t.TempDir(), "out")

			cfg := DefaultConfig()
			cfg.Batch.Concurrency = concurrency
			p, err := New(cfg, nil, nil)
			require.NoError(t, err)

			report, err := p.ProcessDir(ctx, inputDir, outputDir)
			require.NoError(t, err)
			require.NoError(t, report.Err())
			assert.NotEmpty(t, report.RunID)
			assert.Len(t, report.Succeeded(), 5)
			assert.Equal(t, []string{
				"IS01_spk_cleaned.wav",
				"IS02_spk_cleaned.wav",
				"IS03_spk_cleaned.wav",
				"IS04_spk_cleaned.wav",
				"IS05_spk_cleaned.wav",
			}, listNames(t, outputDir))
		})
	}

	t.Run("PartialFailure", func(t *testing.T) {
		inputDir, _ := prepareBatch(t)
		require.NoError(t, os.WriteFile(filepath.Join(inputDir, "IS02_spk_a.wav"), []byte("garbage"), 0644))
		outputDir := t.TempDir()

		reg := prometheus.NewRegistry()
		metrics, err := NewMetrics(reg)
		require.NoError(t, err)

		p, err := New(DefaultConfig(), &failingSeparator{failOn: "IS04"}, metrics)
		require.NoError(t, err)

		report, err := p.ProcessDir(ctx, inputDir, outputDir)
		require.NoError(t, err)
		require.Len(t, report.Results, 5)

		failed := report.Failed()
		require.Len(t, failed, 2)
		assert.Equal(t, filepath.Join(inputDir, "IS02_spk_a.wav"), failed[0].Input)
		assert.ErrorIs(t, failed[0].Err, audio.ErrIO)
		assert.Equal(t, filepath.Join(inputDir, "IS04_spk_a.wav"), failed[1].Input)
		assert.ErrorIs(t, failed[1].Err, separator.ErrToolFailure)
		assert.Error(t, report.Err())

		assert.Equal(t, []string{
			"IS01_spk_cleaned.wav",
			"IS03_spk_cleaned.wav",
			"IS05_spk_cleaned.wav",
		}, listNames(t, outputDir))

		assert.Equal(t, 3.0, testutil.ToFloat64(metrics.FilesProcessed))
		assert.Equal(t, 2.0, testutil.ToFloat64(metrics.FilesFailed))
		assert.Equal(t, 1, testutil.CollectAndCount(metrics.FileDuration))
		assert.Greater(t, testutil.CollectAndCount(metrics.StageDuration), 1)
	})

	t.Run("OutputCollision", func(t *testing.T) {
		inputDir := t.TempDir()
		writeSpeechLike(t, filepath.Join(inputDir, "IS01_spk_a.wav"), 1)
		writeSpeechLike(t, filepath.Join(inputDir, "IS01_spk_b.wav"), 2)

		p, err := New(DefaultConfig(), nil, nil)
		require.NoError(t, err)
		report, err := p.ProcessDir(ctx, inputDir, t.TempDir())
		require.NoError(t, err)
		assert.Len(t, report.Succeeded(), 1)
		require.Len(t, report.Failed(), 1)
		assert.Equal(t, filepath.Join(inputDir, "IS01_spk_b.wav"), report.Failed()[0].Input)
	})

	t.Run("Cancelled", func(t *testing.T) {
		inputDir, _ := prepareBatch(t)
		p, err := New(DefaultConfig(), nil, nil)
		require.NoError(t, err)

		cancelledCtx, cancelFn := context.WithCancel(ctx)
		cancelFn()
		report, err := p.ProcessDir(cancelledCtx, inputDir, t.TempDir())
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, report.Succeeded())
	})

	t.Run("BadDirectories", func(t *testing.T) {
		p, err := New(DefaultConfig(), nil, nil)
		require.NoError(t, err)

		_, err = p.ProcessDir(ctx, filepath.Join(t.TempDir(), "missing"), t.TempDir())
		assert.ErrorIs(t, err, audio.ErrInvalidInput)

		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		_, err = p.ProcessDir(ctx, t.TempDir(), filepath.Join(file, "out"))
		assert.ErrorIs(t, err, audio.ErrIO)
	})
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)

	var nilMetrics *Metrics
	nilMetrics.observeFile(0, errors.New("x"))
	nilMetrics.observeStage(StageLoad, 0)
	nilMetrics.observeGateRatio(1)

	m, err := NewMetrics(nil)
	require.NoError(t, err)
	m.observeFile(0, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesProcessed))
}
