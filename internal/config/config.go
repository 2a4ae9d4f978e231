// Package config holds the qrscan CLI and server configuration.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	qrscan "github.com/ericlevine/qrscan"
	"github.com/ericlevine/qrscan/binarizer"
	"github.com/ericlevine/qrscan/charset"
)

// Config is the complete qrscan configuration, loadable from a YAML file,
// QRSCAN_* environment variables and command-line flags.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Decode DecodeConfig `mapstructure:"decode" yaml:"decode" json:"decode"`
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// DecodeConfig controls the decoding pipeline.
type DecodeConfig struct {
	TryHarder    bool          `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
	PureBarcode  bool          `mapstructure:"pure_barcode" yaml:"pure_barcode" json:"pure_barcode"`
	AlsoInverted bool          `mapstructure:"also_inverted" yaml:"also_inverted" json:"also_inverted"`
	AlsoMirrored bool          `mapstructure:"also_mirrored" yaml:"also_mirrored" json:"also_mirrored"`
	CharacterSet string        `mapstructure:"character_set" yaml:"character_set" json:"character_set"`
	Binarizers   []string      `mapstructure:"binarizers" yaml:"binarizers" json:"binarizers"`
	MaxDimension int           `mapstructure:"max_dimension" yaml:"max_dimension" json:"max_dimension"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// OutputConfig controls how the decode command prints results.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host" json:"host"`
	Port            int           `mapstructure:"port" yaml:"port" json:"port"`
	MaxUploadMB     int           `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Decode: DecodeConfig{
			Binarizers:   []string{"hybrid", "histogram"},
			MaxDimension: 2048,
			Timeout:      10 * time.Second,
		},
		Output: OutputConfig{Format: "text"},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			MaxUploadMB:     20,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{"text", "json", "yaml"}
)

// Validate checks every field for a usable value.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}
	if len(c.Decode.Binarizers) == 0 {
		return fmt.Errorf("decode.binarizers must name at least one of: %s", strings.Join(binarizer.Names(), ", "))
	}
	for _, name := range c.Decode.Binarizers {
		if !slices.Contains(binarizer.Names(), strings.ToLower(name)) {
			return fmt.Errorf("invalid binarizer: %s (must be one of: %s)", name, strings.Join(binarizer.Names(), ", "))
		}
	}
	if c.Decode.CharacterSet != "" {
		if _, err := charset.Lookup(c.Decode.CharacterSet); err != nil {
			return fmt.Errorf("invalid decode.character_set: %w", err)
		}
	}
	if c.Decode.MaxDimension < 0 {
		return fmt.Errorf("invalid decode.max_dimension: %d (must be 0 or positive)", c.Decode.MaxDimension)
	}
	if c.Decode.Timeout < 0 {
		return fmt.Errorf("invalid decode.timeout: %s", c.Decode.Timeout)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid server max_upload_mb: %d (must be positive)", c.Server.MaxUploadMB)
	}
	return nil
}

// DecodeOptions converts the decode settings to library options.
func (d DecodeConfig) DecodeOptions() *qrscan.DecodeOptions {
	return &qrscan.DecodeOptions{
		TryHarder:       d.TryHarder,
		PureBarcode:     d.PureBarcode,
		AlsoInverted:    d.AlsoInverted,
		AlsoMirrored:    d.AlsoMirrored,
		CharacterSet:    d.CharacterSet,
		PossibleFormats: []qrscan.Format{qrscan.FormatQRCode},
	}
}
