// Package pipeline chains the preprocessing stages of a speech recording:
// vocal separation, noise gating, bandpass, pre-emphasis and windowing.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/xaionaro-go/speechprep/pkg/analysis"
	"github.com/xaionaro-go/speechprep/pkg/audio"
	_ "github.com/xaionaro-go/speechprep/pkg/audio/codecs/wav"
	"github.com/xaionaro-go/speechprep/pkg/filter"
	"github.com/xaionaro-go/speechprep/pkg/noisesuppression"
	"github.com/xaionaro-go/speechprep/pkg/noisesuppression/implementations/noisegate"
	"github.com/xaionaro-go/speechprep/pkg/overlapadd"
	"github.com/xaionaro-go/speechprep/pkg/separator"
	"github.com/xaionaro-go/speechprep/pkg/vad"
	vadnoisegate "github.com/xaionaro-go/speechprep/pkg/vad/implementations/noisegate"
)

const (
	StageSeparate    = "separate"
	StageLoad        = "load"
	StageVAD         = "vad"
	StageDenoise     = "denoise"
	StageBandpass    = "bandpass"
	StagePreEmphasis = "pre_emphasis"
	StageWindowing   = "windowing"
	StageSave        = "save"
)

type VoiceReport struct {
	// FirstVoice is the offset of the voice onset, negative if none was found.
	FirstVoice    time.Duration `yaml:"first_voice"`
	MaxConfidence float64       `yaml:"max_confidence"`
}

// FileReport describes the processing of a single file.
type FileReport struct {
	Input  string          `yaml:"input"`
	Vocals string          `yaml:"vocals"`
	Output string          `yaml:"output"`
	Voice  *VoiceReport    `yaml:"voice,omitempty"`
	Before analysis.Report `yaml:"before"`
	After  analysis.Report `yaml:"after"`
}

type Pipeline struct {
	Config           Config
	Separator        separator.Separator
	NoiseSuppression noisesuppression.NoiseSuppression
	VAD              vad.VAD
	Metrics          *Metrics

	outputPCMFormat audio.PCMFormat
}

// New returns a Pipeline using sep to isolate the vocals; a nil sep means
// the input is used as is. metrics may be nil.
func New(
	cfg Config,
	sep separator.Separator,
	metrics *Metrics,
) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	pcmFormat, err := cfg.outputPCMFormat()
	if err != nil {
		return nil, err
	}
	if sep == nil {
		sep = separator.NewDummy()
	}

	var ns noisesuppression.NoiseSuppression = noisesuppression.NewDummy()
	if cfg.Denoise.Enabled {
		ns, err = noisegate.New(cfg.Denoise.Config)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize the noise gate: %w", err)
		}
	}

	var voiceDetector vad.VAD
	if cfg.VAD.Enabled {
		voiceDetector, err = vadnoisegate.NewVAD(cfg.Denoise.Config)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize the VAD: %w", err)
		}
	}

	return &Pipeline{
		Config:           cfg,
		Separator:        sep,
		NoiseSuppression: ns,
		VAD:              voiceDetector,
		Metrics:          metrics,
		outputPCMFormat:  pcmFormat,
	}, nil
}

func (p *Pipeline) Close() error {
	var mErr *multierror.Error
	if err := p.NoiseSuppression.Close(); err != nil {
		mErr = multierror.Append(mErr, fmt.Errorf("unable to close the noise suppression: %w", err))
	}
	if p.VAD != nil {
		if err := p.VAD.Close(); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to close the VAD: %w", err))
		}
	}
	if err := p.Separator.Close(); err != nil {
		mErr = multierror.Append(mErr, fmt.Errorf("unable to close the separator: %w", err))
	}
	return mErr.ErrorOrNil()
}

func (p *Pipeline) stage(
	ctx context.Context,
	name string,
	fn func() error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Tracef(ctx, "stage %s", name)
	startedAt := time.Now()
	err := fn()
	p.Metrics.observeStage(name, time.Since(startedAt))
	logger.Tracef(ctx, "/stage %s: %v (%v)", name, err, time.Since(startedAt))
	if err != nil {
		return fmt.Errorf("stage %s failed: %w", name, err)
	}
	return nil
}

// ProcessFile runs inputPath through all the enabled stages and writes the
// result to outputPath (a WAV file).
func (p *Pipeline) ProcessFile(
	ctx context.Context,
	inputPath string,
	outputPath string,
) (_ret *FileReport, _err error) {
	logger.Tracef(ctx, "ProcessFile(ctx, '%s', '%s')", inputPath, outputPath)
	defer func() { logger.Tracef(ctx, "/ProcessFile(ctx, '%s', '%s'): %v", inputPath, outputPath, _err) }()

	startedAt := time.Now()
	defer func() { p.Metrics.observeFile(time.Since(startedAt), _err) }()

	report := &FileReport{
		Input:  inputPath,
		Output: outputPath,
	}

	var separated separator.Result
	if err := p.stage(ctx, StageSeparate, func() (err error) {
		separated, err = p.Separator.Separate(ctx, inputPath)
		return
	}); err != nil {
		return nil, err
	}
	report.Vocals = separated.VocalsPath

	var signal audio.Signal
	if err := p.stage(ctx, StageLoad, func() (err error) {
		signal, err = audio.Load(ctx, separated.VocalsPath, audio.LoadOptions{SampleRate: p.Config.SampleRate})
		return
	}); err != nil {
		return nil, err
	}

	var err error
	report.Before, err = analysis.Analyze(signal)
	if err != nil {
		return nil, fmt.Errorf("unable to analyze the input: %w", err)
	}
	logger.Debugf(ctx, "input: %s", report.Before)

	if p.VAD != nil {
		if err := p.stage(ctx, StageVAD, func() error {
			confidence, firstVoice, err := p.VAD.FindNextVoice(ctx, signal, p.Config.VAD.ConfidenceThreshold, p.Config.VAD.MinDuration)
			if err != nil {
				return err
			}
			report.Voice = &VoiceReport{
				FirstVoice:    firstVoice,
				MaxConfidence: confidence,
			}
			logger.Debugf(ctx, "voice: first:%v confidence:%.3f", firstVoice, confidence)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if err := p.stage(ctx, StageDenoise, func() error {
		denoised, err := p.NoiseSuppression.SuppressNoise(ctx, signal)
		if err != nil {
			return err
		}
		if report.Before.RMS > 0 {
			if after, err := analysis.Analyze(denoised); err == nil {
				p.Metrics.observeGateRatio(after.RMS / report.Before.RMS)
			}
		}
		signal = denoised
		return nil
	}); err != nil {
		return nil, err
	}

	if p.Config.Bandpass.Enabled {
		if err := p.stage(ctx, StageBandpass, func() (err error) {
			signal, err = filter.Bandpass(signal, p.Config.Bandpass)
			return
		}); err != nil {
			return nil, err
		}
	}

	if p.Config.PreEmphasis.Enabled {
		if err := p.stage(ctx, StagePreEmphasis, func() (err error) {
			signal, err = filter.PreEmphasis(signal, p.Config.PreEmphasis)
			return
		}); err != nil {
			return nil, err
		}
	}

	if p.Config.Windowing.Enabled {
		if err := p.stage(ctx, StageWindowing, func() error {
			samples, err := overlapadd.ApplyWindowing(signal.Samples, p.Config.Windowing)
			if err != nil {
				return err
			}
			signal = signal.WithSamples(samples)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	report.After, err = analysis.Analyze(signal)
	if err != nil {
		return nil, fmt.Errorf("unable to analyze the output: %w", err)
	}
	logger.Debugf(ctx, "output: %s", report.After)

	if err := p.stage(ctx, StageSave, func() error {
		return audio.Save(ctx, outputPath, signal, audio.SaveOptions{PCMFormat: p.outputPCMFormat})
	}); err != nil {
		return nil, err
	}

	if p.Config.WriteReport {
		if err := writeReport(ReportPath(outputPath), report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// ReportPath returns where the report of the file written to outputPath is
// stored.
func ReportPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".report.yaml"
}

func writeReport(path string, report *FileReport) error {
	b, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("unable to serialize the report: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("%w: unable to write the report '%s': %v", audio.ErrIO, path, err)
	}
	return nil
}
