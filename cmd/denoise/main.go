package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"

	"github.com/xaionaro-go/speechprep/pkg/analysis"
	"github.com/xaionaro-go/speechprep/pkg/audio"
	_ "github.com/xaionaro-go/speechprep/pkg/audio/codecs/vorbis"
	_ "github.com/xaionaro-go/speechprep/pkg/audio/codecs/wav"
	"github.com/xaionaro-go/speechprep/pkg/noisesuppression/implementations/noisegate"
)

func main() {
	cfg := noisegate.DefaultConfig()

	loggerLevel := logger.LevelDebug
	pflag.Var(&loggerLevel, "log-level", "Log level")
	pflag.DurationVar(&cfg.FrameDuration, "frame-duration", cfg.FrameDuration, "analysis frame duration")
	pflag.Float64Var(&cfg.OverlapRatio, "overlap", cfg.OverlapRatio, "frame overlap ratio, in [0, 1)")
	pflag.Float64Var(&cfg.ThresholdRatio, "threshold-ratio", cfg.ThresholdRatio, "gate threshold relative to the noise floor")
	pflag.Float64Var(&cfg.ZeroThresholdGain, "zero-threshold-gain", cfg.ZeroThresholdGain, "gain of frames with no measurable noise floor")
	pflag.Var(&cfg.TailPolicy, "tail-policy", "samples not covered by a complete frame: drop or pass-through")
	sampleRate := pflag.Uint32("sample-rate", 0, "resample the input to this rate, 0 keeps the native one")
	bitDepth := pflag.Int("bit-depth", 16, "bit depth of the output WAV file")
	floatOutput := pflag.Bool("float", false, "write IEEE float samples, requires --bit-depth 32")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()

	if pflag.NArg() != 2 {
		panic(fmt.Errorf("expected exactly two arguments: <input-file> <output-file>"))
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func() { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	pcmFormatFromBitDepth := audio.PCMFormatFromBitDepth
	if *floatOutput {
		pcmFormatFromBitDepth = audio.PCMFormatFromBitDepthFloat
	}
	pcmFormat, err := pcmFormatFromBitDepth(*bitDepth)
	assertNoError(err)

	gate, err := noisegate.New(cfg)
	assertNoError(err)
	defer gate.Close()

	input, err := audio.Load(ctx, pflag.Arg(0), audio.LoadOptions{SampleRate: audio.SampleRate(*sampleRate)})
	assertNoError(err)

	output, summary, err := gate.Denoise(ctx, input)
	assertNoError(err)

	before, err := analysis.Analyze(input)
	assertNoError(err)
	after, err := analysis.Analyze(output)
	assertNoError(err)
	logger.Infof(ctx, "frames:%d gated:%d mean_gain:%.4f", summary.Frames, summary.GatedFrames, summary.MeanGain)
	logger.Infof(ctx, "before: %s", before)
	logger.Infof(ctx, "after: %s", after)

	err = audio.Save(ctx, pflag.Arg(1), output, audio.SaveOptions{PCMFormat: pcmFormat})
	assertNoError(err)
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
