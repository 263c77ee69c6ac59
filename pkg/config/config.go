// Package config loads the configuration of the speechprep tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xaionaro-go/speechprep/pkg/pipeline"
	"github.com/xaionaro-go/speechprep/pkg/separator/implementations/audioseparator"
)

type SeparatorKind string

const (
	SeparatorKindNone           = SeparatorKind("none")
	SeparatorKindAudioSeparator = SeparatorKind("audio-separator")
)

func (k SeparatorKind) Validate() error {
	switch k {
	case SeparatorKindNone, SeparatorKindAudioSeparator:
		return nil
	default:
		return fmt.Errorf("unknown separator %q", string(k))
	}
}

// String, Set and Type make SeparatorKind a pflag.Value.
func (k SeparatorKind) String() string {
	return string(k)
}

func (k *SeparatorKind) Set(s string) error {
	v := SeparatorKind(s)
	if err := v.Validate(); err != nil {
		return err
	}
	*k = v
	return nil
}

func (*SeparatorKind) Type() string {
	return "separator"
}

type SeparatorConfig struct {
	Kind                  SeparatorKind `yaml:"kind"`
	audioseparator.Config `yaml:",inline"`
}

type Config struct {
	Pipeline  pipeline.Config `yaml:"pipeline"`
	Separator SeparatorConfig `yaml:"separator"`

	// MetricsListenAddr is where Prometheus metrics are served; empty
	// disables the endpoint.
	MetricsListenAddr string `yaml:"metrics_listen_addr"`

	// LogFile receives a copy of everything logged to stderr; empty
	// disables it. The file is appended to.
	LogFile string `yaml:"log_file,omitempty"`
}

func Default() Config {
	return Config{
		Pipeline: pipeline.DefaultConfig(),
		Separator: SeparatorConfig{
			Kind:   SeparatorKindAudioSeparator,
			Config: audioseparator.DefaultConfig(),
		},
	}
}

func (cfg Config) Validate() error {
	if err := cfg.Pipeline.Validate(); err != nil {
		return fmt.Errorf("invalid pipeline config: %w", err)
	}
	if err := cfg.Separator.Kind.Validate(); err != nil {
		return err
	}
	if cfg.Separator.Kind == SeparatorKindAudioSeparator {
		if err := cfg.Separator.Config.Validate(); err != nil {
			return fmt.Errorf("invalid separator config: %w", err)
		}
	}
	return nil
}

// Read parses YAML from r over the defaults; fields missing in the input
// keep their default values.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("unable to parse the config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the config file at path; an empty path means the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read the config file '%s': %w", path, err)
	}
	return Read(bytes.NewReader(b))
}

// Write serializes the config as YAML.
func (cfg Config) Write(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("unable to serialize the config: %w", err)
	}
	return encoder.Close()
}
