package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/smbcopy/pkg/sanitize"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolate points the default config location at an empty directory.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestDefaults(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, sanitize.DefaultInvalid, cfg.Sanitize.InvalidChars)
	assert.Equal(t, "-", cfg.Sanitize.Replacement)
	assert.False(t, cfg.Prompt.AssumeYes)
	assert.False(t, cfg.Copy.PruneSkipped)
	assert.False(t, cfg.Copy.FollowRenamedDirs)
	assert.Equal(t, ByteSize(1<<20), cfg.Copy.BufferSize)
	assert.False(t, cfg.Output.Summary)
	assert.Equal(t, "table", cfg.Output.Format)
	require.NoError(t, Validate(cfg))

	rule, err := cfg.Sanitize.Rule()
	require.NoError(t, err)
	assert.Equal(t, sanitize.Default(), rule)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
logging:
  level: debug
  format: json
sanitize:
  invalid_chars: "?*:"
  replacement: "_"
prompt:
  assume_yes: true
copy:
  prune_skipped: true
  follow_renamed_dirs: true
  buffer_size: 256KiB
output:
  summary: true
  format: yml
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "?*:", cfg.Sanitize.InvalidChars)
	assert.Equal(t, "_", cfg.Sanitize.Replacement)
	assert.True(t, cfg.Prompt.AssumeYes)
	assert.True(t, cfg.Copy.PruneSkipped)
	assert.True(t, cfg.Copy.FollowRenamedDirs)
	assert.Equal(t, ByteSize(256*1024), cfg.Copy.BufferSize)
	assert.True(t, cfg.Output.Summary)
	assert.Equal(t, "yaml", cfg.Output.Format)

	rule, err := cfg.Sanitize.Rule()
	require.NoError(t, err)
	assert.Equal(t, "a_b_c", rule.Apply("a?b*c"))
}

func TestLoadTOML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[copy]\nbuffer_size = 8192\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ByteSize(8192), cfg.Copy.BufferSize)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SMBCOPY_LOGGING_LEVEL", "info")
	t.Setenv("SMBCOPY_PROMPT_ASSUME_YES", "true")
	t.Setenv("SMBCOPY_COPY_BUFFER_SIZE", "64KB")

	path := writeConfig(t, "logging:\n  level: ERROR\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.True(t, cfg.Prompt.AssumeYes)
	assert.Equal(t, ByteSize(64000), cfg.Copy.BufferSize)
}

func TestLoadFlagBindings(t *testing.T) {
	isolate(t)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("yes", false, "")
	flags.String("output", "table", "")
	require.NoError(t, flags.Parse([]string{"--yes"}))

	path := writeConfig(t, "output:\n  format: json\n")
	cfg, err := Load(path,
		Binding{Key: "prompt.assume_yes", Flag: flags.Lookup("yes")},
		Binding{Key: "output.format", Flag: flags.Lookup("output")},
		Binding{Key: "copy.prune_skipped", Flag: nil},
	)
	require.NoError(t, err)

	assert.True(t, cfg.Prompt.AssumeYes, "explicit flag wins")
	assert.Equal(t, "json", cfg.Output.Format, "unset flag does not override the file")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"LogLevel", "logging:\n  level: LOUD\n", "logging.level"},
		{"LogFormat", "logging:\n  format: xml\n", "logging.format"},
		{"OutputFormat", "output:\n  format: csv\n", "output.format"},
		{"Replacement", "sanitize:\n  replacement: \"--\"\n", "sanitize.replacement"},
		{"ReplacementIsInvalid", "sanitize:\n  invalid_chars: \"-:\"\n", "sanitize"},
		{"BufferTooSmall", "copy:\n  buffer_size: 10\n", "copy.buffer_size"},
		{"BufferUnparsable", "copy:\n  buffer_size: lots\n", "buffer"},
		{"Syntax", "logging: [\n", "failed to read config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDefaultLocation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "smbcopy"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "smbcopy", "config.yaml"), []byte("output:\n  summary: true\n"), 0o644))

	assert.Equal(t, filepath.Join(dir, "smbcopy", "config.yaml"), GetDefaultConfigPath())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Output.Summary)
}

func TestByteSize(t *testing.T) {
	n, err := ParseByteSize("1MiB")
	require.NoError(t, err)
	assert.Equal(t, ByteSize(1<<20), n)
	assert.Equal(t, "1.0 MiB", n.String())
	assert.Equal(t, 1<<20, n.Int())

	_, err = ParseByteSize("many")
	assert.Error(t, err)

	out, err := yaml.Marshal(struct {
		Size ByteSize `yaml:"size"`
	}{n})
	require.NoError(t, err)
	assert.Equal(t, "size: 1.0 MiB\n", string(out))
}

func TestConfigKey(t *testing.T) {
	assert.Equal(t, "copy.buffer_size", configKey("Config.Copy.BufferSize"))
	assert.Equal(t, "logging.level", configKey("Config.Logging.Level"))
}
