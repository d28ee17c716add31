package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/marmos91/smbcopy/pkg/sanitize"
)

// EnvPrefix prefixes every environment override, e.g. SMBCOPY_LOGGING_LEVEL.
const EnvPrefix = "SMBCOPY"

// Config represents the smbcopy configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (SMBCOPY_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
//
// Every field has a default that reproduces the plain two argument
// behaviour, so a missing file is not an error.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Sanitize controls which characters are rewritten in entry names
	Sanitize SanitizeConfig `mapstructure:"sanitize" yaml:"sanitize"`

	// Prompt controls how renames are confirmed
	Prompt PromptConfig `mapstructure:"prompt" yaml:"prompt"`

	// Copy controls the copy pass
	Copy CopyConfig `mapstructure:"copy" yaml:"copy"`

	// Output controls the optional run summary
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// SMB controls how smb:// destinations map to local mounts
	SMB SMBConfig `mapstructure:"smb" yaml:"smb"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// SanitizeConfig configures the name sanitization rule.
type SanitizeConfig struct {
	// InvalidChars lists every character that is replaced, e.g. `"':`
	InvalidChars string `mapstructure:"invalid_chars" validate:"required" yaml:"invalid_chars"`

	// Replacement is the single character written in place of each invalid one
	Replacement string `mapstructure:"replacement" validate:"required,len=1" yaml:"replacement"`
}

// Rule builds the sanitize.Rule described by c.
func (c SanitizeConfig) Rule() (sanitize.Rule, error) {
	r := []rune(c.Replacement)
	if len(r) != 1 {
		return sanitize.Rule{}, fmt.Errorf("sanitize.replacement must be a single character, got %q", c.Replacement)
	}
	return sanitize.NewRule(c.InvalidChars, r[0])
}

// PromptConfig configures rename confirmation.
type PromptConfig struct {
	// AssumeYes approves every rename without asking
	AssumeYes bool `mapstructure:"assume_yes" yaml:"assume_yes"`
}

// CopyConfig configures the copy pass.
type CopyConfig struct {
	// PruneSkipped leaves out the whole subtree of a declined directory
	// instead of only the directory entry itself
	PruneSkipped bool `mapstructure:"prune_skipped" yaml:"prune_skipped"`

	// FollowRenamedDirs copies entries below a renamed directory into the
	// renamed directory instead of under the original name
	FollowRenamedDirs bool `mapstructure:"follow_renamed_dirs" yaml:"follow_renamed_dirs"`

	// BufferSize is the per-file copy buffer
	// Supports human-readable formats: "1MiB", "256KB", or a plain number
	// Default: 1MiB
	BufferSize ByteSize `mapstructure:"buffer_size" validate:"min=4096,max=268435456" yaml:"buffer_size"`
}

// OutputConfig configures the run summary.
type OutputConfig struct {
	// Summary prints totals after the copy
	Summary bool `mapstructure:"summary" yaml:"summary"`

	// Format of the summary
	// Valid values: table, json, yaml
	Format string `mapstructure:"format" validate:"required,oneof=table json yaml" yaml:"format"`
}

// SMBConfig configures smb:// destination resolution.
type SMBConfig struct {
	// RuntimeDir is the directory holding the gvfs mounts
	// Default: empty, meaning /run/user/<uid>
	RuntimeDir string `mapstructure:"runtime_dir" yaml:"runtime_dir,omitempty"`
}

// Binding ties a config key to a command line flag. The flag wins only when
// the user set it explicitly.
type Binding struct {
	Key  string
	Flag *pflag.Flag
}

// Load loads configuration from file, environment, flags, and defaults.
//
// configPath may be empty to use the default location. A missing file is
// not an error. The returned config has defaults applied and is validated.
func Load(configPath string, bindings ...Binding) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)
	setDefaults(v)

	for _, b := range bindings {
		if b.Flag == nil {
			continue
		}
		if err := v.BindPFlag(b.Key, b.Flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", b.Flag.Name, err)
		}
	}

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// SMBCOPY_COPY_BUFFER_SIZE=4MiB overrides copy.buffer_size
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	// $XDG_CONFIG_HOME/smbcopy/config.{yaml,toml}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "smbcopy")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "smbcopy")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
