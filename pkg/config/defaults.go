package config

import (
	"strings"

	"github.com/marmos91/smbcopy/pkg/sanitize"
)

// Default values.
const (
	DefaultLogLevel   = "WARN"
	DefaultLogFormat  = "text"
	DefaultLogOutput  = "stderr"
	DefaultOutput     = "table"
	DefaultBufferSize = ByteSize(1 << 20)
)

// setDefaults registers every key with viper so environment variables are
// picked up even when no config file exists.
func setDefaults(v viperSetter) {
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("logging.output", DefaultLogOutput)
	v.SetDefault("sanitize.invalid_chars", sanitize.DefaultInvalid)
	v.SetDefault("sanitize.replacement", string(sanitize.DefaultReplacement))
	v.SetDefault("prompt.assume_yes", false)
	v.SetDefault("copy.prune_skipped", false)
	v.SetDefault("copy.follow_renamed_dirs", false)
	v.SetDefault("copy.buffer_size", DefaultBufferSize.String())
	v.SetDefault("output.summary", false)
	v.SetDefault("output.format", DefaultOutput)
	v.SetDefault("smb.runtime_dir", "")
}

type viperSetter interface {
	SetDefault(key string, value any)
}

// ApplyDefaults sets default values for any unspecified configuration fields
// and normalizes the ones with more than one spelling.
//
// Zero values are replaced with defaults; explicit values are preserved.
// Booleans default to false and need no handling.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applySanitizeDefaults(&cfg.Sanitize)
	applyCopyDefaults(&cfg.Copy)
	applyOutputDefaults(&cfg.Output)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = DefaultLogLevel
	}
	cfg.Level = strings.ToUpper(strings.TrimSpace(cfg.Level))
	if cfg.Level == "WARNING" {
		cfg.Level = "WARN"
	}

	if cfg.Format == "" {
		cfg.Format = DefaultLogFormat
	}
	cfg.Format = strings.ToLower(cfg.Format)

	if cfg.Output == "" {
		cfg.Output = DefaultLogOutput
	}
}

func applySanitizeDefaults(cfg *SanitizeConfig) {
	if cfg.InvalidChars == "" {
		cfg.InvalidChars = sanitize.DefaultInvalid
	}
	if cfg.Replacement == "" {
		cfg.Replacement = string(sanitize.DefaultReplacement)
	}
}

func applyCopyDefaults(cfg *CopyConfig) {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultBufferSize
	}
}

func applyOutputDefaults(cfg *OutputConfig) {
	if cfg.Format == "" {
		cfg.Format = DefaultOutput
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format == "yml" {
		cfg.Format = "yaml"
	}
}

// GetDefaultConfig returns a Config with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
