package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winddc/winddc/internal/config"
	"github.com/winddc/winddc/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.New().Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, config.BackendDXVA2, cfg.DDC.Backend)
	assert.True(t, cfg.HDR.Enabled)
	assert.False(t, cfg.Brightness.AllowExtended)
	assert.Equal(t, config.DefaultStep, cfg.Brightness.Step)
	assert.True(t, cfg.Hotkeys.Enabled)
	assert.Equal(t, config.DefaultDetectTimeout, cfg.Detect.Timeout)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
ddc:
  backend: DDCCI
hdr:
  enabled: false
brightness:
  allow_extended: true
  step: 10
detect:
  timeout: 3s
`)
	cfg, err := config.New(config.WithFile(path)).Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, config.BackendDDCCI, cfg.DDC.Backend)
	assert.False(t, cfg.HDR.Enabled)
	assert.True(t, cfg.Brightness.AllowExtended)
	assert.Equal(t, 10, cfg.Brightness.Step)
	assert.Equal(t, 3*time.Second, cfg.Detect.Timeout)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "brightness:\n  step: 10\n")
	t.Setenv("WINDDC_BRIGHTNESS_STEP", "20")

	cfg, err := config.New(config.WithFile(path)).Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Brightness.Step)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "ddc:\n  backend: dxva2\nhdr:\n  enabled: true\n")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("ddc-backend", config.BackendDXVA2, "")
	fs.Bool("hdr", true, "")
	require.NoError(t, fs.Parse([]string{"--ddc-backend=ddcci", "--hdr=false"}))

	l := config.New(config.WithFile(path))
	require.NoError(t, l.BindFlags(fs))
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, config.BackendDDCCI, cfg.DDC.Backend)
	assert.False(t, cfg.HDR.Enabled)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.New(config.WithFile(filepath.Join(t.TempDir(), "nope.yaml"))).Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadInvalidFormat(t *testing.T) {
	path := writeConfig(t, "brightness: [unterminated\n")
	_, err := config.New(config.WithFile(path)).Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "ddc:\n  backend: i2c\n"},
		{"zero step", "brightness:\n  step: 0\n"},
		{"huge step", "brightness:\n  step: 500\n"},
		{"negative timeout", "detect:\n  timeout: -1s\n"},
		{"bad level", "log:\n  level: shouty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.New(config.WithFile(writeConfig(t, tt.content))).Load()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
		})
	}
}
