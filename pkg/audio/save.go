package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/speechprep/pkg/audio/registry"
)

type SaveOptions struct {
	// PCMFormat defaults to PCMFormatS16LE.
	PCMFormat PCMFormat
}

// Save encodes signal into the file at path using the encoder registered for
// the file extension. The parent directory must exist.
func Save(
	ctx context.Context,
	path string,
	signal Signal,
	opts SaveOptions,
) (_err error) {
	logger.Tracef(ctx, "Save(%q)", path)
	defer func() { logger.Tracef(ctx, "/Save(%q): %v", path, _err) }()

	if path == "" {
		return fmt.Errorf("%w: empty file path", ErrInvalidInput)
	}
	if signal.SampleRate == 0 {
		return fmt.Errorf("%w: signal has zero sample rate", ErrInvalidInput)
	}
	if opts.PCMFormat == 0 {
		opts.PCMFormat = PCMFormatS16LE
	}

	factories := registry.CodecFactoriesForExtension(filepath.Ext(path))
	if len(factories) == 0 {
		return fmt.Errorf("%w: no encoder registered for extension %q", ErrIO, filepath.Ext(path))
	}
	encoder, err := factories[0].NewEncoder()
	if err != nil {
		return fmt.Errorf("%w: unable to initialize an encoder for %q: %w", ErrIO, path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: unable to create %q: %w", ErrIO, path, err)
	}

	err = encoder.Encode(ctx, f, &PCM{
		Samples:    signal.Samples,
		Channels:   1,
		SampleRate: signal.SampleRate,
		PCMFormat:  opts.PCMFormat,
	})
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: unable to write %q: %w", ErrIO, path, err)
	}
	return nil
}
