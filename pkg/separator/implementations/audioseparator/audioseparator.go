// Package audioseparator runs the external "audio-separator" tool to split a
// recording into vocals and instrumental tracks.
package audioseparator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/datacounter"

	"github.com/xaionaro-go/speechprep/pkg/audio"
	"github.com/xaionaro-go/speechprep/pkg/separator"
)

const (
	// maxReportedOutput is how much of the tail of stdout and stderr is kept
	// for the logs and the returned error.
	maxReportedOutput = 4096

	// waitDelay bounds waiting for the output pipes after the process is
	// killed, in case it left children holding them.
	waitDelay = 10 * time.Second
)

type AudioSeparator struct {
	Config Config

	tempDirsLocker sync.Mutex
	tempDirs       []string
}

var _ separator.Separator = (*AudioSeparator)(nil)

func New(cfg Config) (*AudioSeparator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audio-separator config: %w", err)
	}
	return &AudioSeparator{
		Config: cfg,
	}, nil
}

// Close removes the temporary output directories.
func (s *AudioSeparator) Close() error {
	s.tempDirsLocker.Lock()
	defer s.tempDirsLocker.Unlock()
	var mErr *multierror.Error
	for _, dir := range s.tempDirs {
		if err := os.RemoveAll(dir); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to remove '%s': %w", dir, err))
		}
	}
	s.tempDirs = nil
	return mErr.ErrorOrNil()
}

func (s *AudioSeparator) outputDir() (string, error) {
	if s.Config.OutputDir != "" {
		if err := os.MkdirAll(s.Config.OutputDir, 0755); err != nil {
			return "", fmt.Errorf("%w: unable to create the output directory '%s': %v", audio.ErrIO, s.Config.OutputDir, err)
		}
		return s.Config.OutputDir, nil
	}

	dir, err := os.MkdirTemp("", "speechprep-separated-")
	if err != nil {
		return "", fmt.Errorf("%w: unable to create a temporary directory: %v", audio.ErrIO, err)
	}
	s.tempDirsLocker.Lock()
	s.tempDirs = append(s.tempDirs, dir)
	s.tempDirsLocker.Unlock()
	return dir, nil
}

func (s *AudioSeparator) Separate(
	ctx context.Context,
	inputPath string,
) (_ret separator.Result, _err error) {
	logger.Tracef(ctx, "Separate(ctx, '%s')", inputPath)
	defer func() { logger.Tracef(ctx, "/Separate(ctx, '%s'): %v %v", inputPath, _ret, _err) }()

	if inputPath == "" || inputPath == "/" {
		return separator.Result{}, fmt.Errorf("%w: invalid input file path '%s'", audio.ErrInvalidInput, inputPath)
	}
	if info, err := os.Stat(inputPath); err != nil || info.IsDir() {
		return separator.Result{}, fmt.Errorf("%w: input file '%s' does not exist", audio.ErrInvalidInput, inputPath)
	}

	outputDir, err := s.outputDir()
	if err != nil {
		return separator.Result{}, err
	}

	if s.Config.Timeout > 0 {
		var cancelFn context.CancelFunc
		ctx, cancelFn = context.WithTimeout(ctx, s.Config.Timeout)
		defer cancelFn()
	}

	args := s.Config.args(inputPath, outputDir)
	logger.Debugf(ctx, "running: %s %s", s.Config.Binary, strings.Join(args, " "))

	stdout := newTailWriter(maxReportedOutput)
	stderr := newTailWriter(maxReportedOutput)
	stdoutCounter := datacounter.NewWriterCounter(stdout)
	stderrCounter := datacounter.NewWriterCounter(stderr)
	cmd := exec.CommandContext(ctx, s.Config.Binary, args...)
	cmd.Stdout = stdoutCounter
	cmd.Stderr = stderrCounter
	cmd.Env = os.Environ()
	cmd.WaitDelay = waitDelay

	err = cmd.Run()
	logger.Debugf(ctx, "%s finished: stdout:%d bytes, stderr:%d bytes", s.Config.Binary, stdoutCounter.Count(), stderrCounter.Count())
	if truncated := stderrCounter.Count() - uint64(len(stderr.buf)); truncated > 0 {
		logger.Debugf(ctx, "%s: only the last %d bytes of stderr are kept, %d bytes dropped", s.Config.Binary, len(stderr.buf), truncated)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return separator.Result{}, fmt.Errorf("%w: %s was interrupted: %v", separator.ErrToolFailure, s.Config.Binary, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Errorf(ctx, "%s stdout: %s", s.Config.Binary, stdout.String())
			return separator.Result{}, &separator.ToolError{
				Command:  s.Config.Binary,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		return separator.Result{}, fmt.Errorf("%w: unable to run %s: %v", separator.ErrToolFailure, s.Config.Binary, err)
	}

	vocals, instrumental := s.Config.OutputPaths(inputPath, outputDir)
	for _, path := range []string{vocals, instrumental} {
		if _, err := os.Stat(path); err != nil {
			return separator.Result{}, fmt.Errorf("%w: expected output '%s' was not created", separator.ErrToolFailure, path)
		}
	}

	return separator.Result{
		VocalsPath:       vocals,
		InstrumentalPath: instrumental,
	}, nil
}
