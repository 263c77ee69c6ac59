package audioseparator

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultBinary       = "audio-separator"
	DefaultModel        = "UVR-MDX-NET-Inst_HQ_3.onnx"
	DefaultOutputFormat = "wav"
	DefaultTimeout      = 30 * time.Minute
)

type Config struct {
	// Binary is the executable name or path of the tool.
	Binary string `yaml:"binary"`

	// Model is the model file name passed to the tool.
	Model string `yaml:"model"`

	// OutputDir is where the separated tracks are written. Empty means a
	// temporary directory per input, removed on Close.
	OutputDir string `yaml:"output_dir,omitempty"`

	// OutputFormat is the extension of the separated tracks. It must be
	// something the audio loader can decode.
	OutputFormat string `yaml:"output_format"`

	// Timeout bounds a single invocation. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`

	// ExtraArgs are appended to the command line.
	ExtraArgs []string `yaml:"extra_args,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Binary:       DefaultBinary,
		Model:        DefaultModel,
		OutputFormat: DefaultOutputFormat,
		Timeout:      DefaultTimeout,
	}
}

func (cfg Config) Validate() error {
	if cfg.Binary == "" {
		return fmt.Errorf("the separator binary is not set")
	}
	if cfg.Model == "" {
		return fmt.Errorf("the separation model is not set")
	}
	if cfg.OutputFormat == "" || strings.ContainsAny(cfg.OutputFormat, `/\.`) {
		return fmt.Errorf("invalid output format %q", cfg.OutputFormat)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %v", cfg.Timeout)
	}
	return nil
}

// OutputPaths returns the paths the tool writes the vocals and instrumental
// tracks of inputPath to.
func (cfg Config) OutputPaths(inputPath, outputDir string) (vocals, instrumental string) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	model := strings.TrimSuffix(cfg.Model, filepath.Ext(cfg.Model))
	vocals = filepath.Join(outputDir, fmt.Sprintf("%s_(Vocals)_%s.%s", base, model, cfg.OutputFormat))
	instrumental = filepath.Join(outputDir, fmt.Sprintf("%s_(Instrumental)_%s.%s", base, model, cfg.OutputFormat))
	return
}

func (cfg Config) args(inputPath, outputDir string) []string {
	args := []string{
		inputPath,
		"--model_filename", cfg.Model,
		"--output_dir", outputDir,
		"--output_format", cfg.OutputFormat,
	}
	return append(args, cfg.ExtraArgs...)
}
