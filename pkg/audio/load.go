package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/speechprep/pkg/audio/planar"
	"github.com/xaionaro-go/speechprep/pkg/audio/registry"
	"github.com/xaionaro-go/speechprep/pkg/audio/resampler"
)

type LoadOptions struct {
	// SampleRate is the rate to resample to; zero keeps the native rate.
	SampleRate SampleRate
}

// Load decodes the audio file at path into a mono Signal.
//
// Multichannel audio is downmixed by averaging the channels.
func Load(
	ctx context.Context,
	path string,
	opts LoadOptions,
) (_ret Signal, _err error) {
	logger.Tracef(ctx, "Load(%q)", path)
	defer func() { logger.Tracef(ctx, "/Load(%q): %v", path, _err) }()

	if path == "" {
		return Signal{}, fmt.Errorf("%w: empty file path", ErrInvalidInput)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Signal{}, fmt.Errorf("%w: file %q does not exist", ErrInvalidInput, path)
		}
		return Signal{}, fmt.Errorf("%w: unable to open %q: %w", ErrIO, path, err)
	}
	defer f.Close()

	factories := registry.CodecFactoriesForExtension(filepath.Ext(path))
	if len(factories) == 0 {
		return Signal{}, fmt.Errorf("%w: no decoder registered for extension %q", ErrIO, filepath.Ext(path))
	}

	var mErr *multierror.Error
	for _, factory := range factories {
		decoder, err := factory.NewDecoder()
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize a decoder %T: %w", factory, err))
			continue
		}
		if _, err := f.Seek(0, 0); err != nil {
			return Signal{}, fmt.Errorf("%w: unable to seek %q: %w", ErrIO, path, err)
		}
		pcm, err := decoder.Decode(ctx, f)
		logger.Debugf(ctx, "decoding %q with %T result is %v", path, decoder, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to decode with %T: %w", decoder, err))
			continue
		}
		return fromPCM(ctx, pcm, opts)
	}
	return Signal{}, fmt.Errorf("%w: unable to decode %q: %w", ErrIO, path, mErr.ErrorOrNil())
}

func fromPCM(
	ctx context.Context,
	pcm *PCM,
	opts LoadOptions,
) (Signal, error) {
	if pcm.Channels == 0 {
		return Signal{}, fmt.Errorf("%w: decoded audio has zero channels", ErrIO)
	}
	if pcm.SampleRate == 0 {
		return Signal{}, fmt.Errorf("%w: decoded audio has zero sample rate", ErrIO)
	}
	mono, err := planar.Downmix(pcm.Samples, pcm.Channels)
	if err != nil {
		return Signal{}, fmt.Errorf("%w: unable to downmix: %w", ErrIO, err)
	}
	signal := NewSignal(mono, pcm.SampleRate)
	if opts.SampleRate == 0 || opts.SampleRate == pcm.SampleRate {
		return signal, nil
	}

	logger.Debugf(ctx, "resampling %d -> %d", pcm.SampleRate, opts.SampleRate)
	resampled, err := resampler.Resample(signal.Samples, pcm.SampleRate, opts.SampleRate)
	if err != nil {
		return Signal{}, fmt.Errorf("unable to resample %d -> %d: %w", pcm.SampleRate, opts.SampleRate, err)
	}
	return NewSignal(resampled, opts.SampleRate), nil
}
