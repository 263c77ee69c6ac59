package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"

	"github.com/xaionaro-go/speechprep/pkg/audio"
	_ "github.com/xaionaro-go/speechprep/pkg/audio/codecs/vorbis"
	_ "github.com/xaionaro-go/speechprep/pkg/audio/codecs/wav"
	"github.com/xaionaro-go/speechprep/pkg/config"
	"github.com/xaionaro-go/speechprep/pkg/pipeline"
	"github.com/xaionaro-go/speechprep/pkg/separator"
	"github.com/xaionaro-go/speechprep/pkg/separator/implementations/audioseparator"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "", "path to a YAML config file")
	inputDir := pflag.String("input-dir", "", "directory with the recordings to process")
	outputDir := pflag.String("output-dir", "", "directory to write the cleaned recordings to")
	pattern := pflag.String("pattern", "", "glob the input file names must match (overrides the config)")
	limit := pflag.Int("limit", 0, "maximal amount of files to process, 0 means all (overrides the config)")
	concurrency := pflag.Int("concurrency", 0, "amount of files processed in parallel (overrides the config)")
	sampleRate := pflag.Uint32("sample-rate", 0, "processing sample rate, 0 keeps the native one (overrides the config)")
	writeReport := pflag.Bool("write-report", false, "write a YAML report next to every output (overrides the config)")
	var separatorKind config.SeparatorKind
	pflag.Var(&separatorKind, "separator", "vocal separator: audio-separator or none (overrides the config)")
	metricsAddr := pflag.String("metrics-listen-addr", "", "an address to serve Prometheus metrics on (overrides the config)")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	logFile := pflag.String("log-file", "", "a file to append a copy of the log to (overrides the config)")
	dumpConfig := pflag.Bool("dump-config", false, "print the effective config and exit")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	assertNoError(err)

	flags := pflag.CommandLine
	if flags.Changed("pattern") {
		cfg.Pipeline.Batch.Pattern = *pattern
	}
	if flags.Changed("limit") {
		cfg.Pipeline.Batch.Limit = *limit
	}
	if flags.Changed("concurrency") {
		cfg.Pipeline.Batch.Concurrency = *concurrency
	}
	if flags.Changed("sample-rate") {
		cfg.Pipeline.SampleRate = audio.SampleRate(*sampleRate)
	}
	if flags.Changed("write-report") {
		cfg.Pipeline.WriteReport = *writeReport
	}
	if flags.Changed("separator") {
		cfg.Separator.Kind = separatorKind
	}
	if flags.Changed("metrics-listen-addr") {
		cfg.MetricsListenAddr = *metricsAddr
	}
	if flags.Changed("log-file") {
		cfg.LogFile = *logFile
	}
	assertNoError(cfg.Validate())

	l, closeLog, err := newLogger(loggerLevel, os.Stderr, cfg.LogFile)
	assertNoError(err)
	defer closeLog()
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *dumpConfig {
		assertNoError(cfg.Write(os.Stdout))
		return
	}

	if *inputDir == "" || *outputDir == "" {
		panic(fmt.Errorf("--input-dir and --output-dir are required"))
	}

	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancelFn()

	if *netPprofAddr != "" {
		observability.Go(ctx, func() { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := pipeline.NewMetrics(reg)
	assertNoError(err)
	if cfg.MetricsListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		observability.Go(ctx, func() { l.Error(http.ListenAndServe(cfg.MetricsListenAddr, mux)) })
	}

	var sep separator.Separator
	switch cfg.Separator.Kind {
	case config.SeparatorKindAudioSeparator:
		sep, err = audioseparator.New(cfg.Separator.Config)
		assertNoError(err)
	default:
		sep = separator.NewDummy()
	}

	p, err := pipeline.New(cfg.Pipeline, sep, metrics)
	assertNoError(err)
	defer func() {
		if err := p.Close(); err != nil {
			logger.Error(ctx, err)
		}
	}()

	report, err := p.ProcessDir(ctx, *inputDir, *outputDir)
	assertNoError(err)
	if err := report.Err(); err != nil {
		logger.Errorf(ctx, "%d of %d files failed: %v", len(report.Failed()), len(report.Results), err)
	}
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
