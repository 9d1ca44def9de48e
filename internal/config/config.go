// Package config loads winddc settings from a YAML file, WINDDC_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/logger"
)

const (
	EnvPrefix = "WINDDC"

	BackendDXVA2 = "dxva2"
	BackendDDCCI = "ddcci"

	DefaultLogLevel      = "info"
	DefaultStep          = 5
	DefaultDetectTimeout = 10 * time.Second
)

type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	DDC        DDCConfig        `mapstructure:"ddc"`
	HDR        HDRConfig        `mapstructure:"hdr"`
	Brightness BrightnessConfig `mapstructure:"brightness"`
	Hotkeys    HotkeysConfig    `mapstructure:"hotkeys"`
	Detect     DetectConfig     `mapstructure:"detect"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type DDCConfig struct {
	// Backend selects the DDC/CI channel: "dxva2" talks to the enumerated
	// physical handles directly, "ddcci" goes through the ddcci library.
	Backend string `mapstructure:"backend"`
}

type HDRConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type BrightnessConfig struct {
	AllowExtended bool `mapstructure:"allow_extended"`
	Step          int  `mapstructure:"step"`
}

type HotkeysConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type DetectConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"log-file":    "log.file",
	"ddc-backend": "ddc.backend",
	"hdr":         "hdr.enabled",
	"extended":    "brightness.allow_extended",
}

// Loader owns a viper instance; it is not safe for concurrent use apart from
// the Watch callback, which viper serializes.
type Loader struct {
	v    *viper.Viper
	path string
}

type Option func(*Loader)

// WithFile reads path instead of the default location. A missing explicit
// file is an error; a missing default file is not.
func WithFile(path string) Option {
	return func(l *Loader) { l.path = path }
}

func New(opts ...Option) *Loader {
	l := &Loader{v: viper.New()}
	for _, opt := range opts {
		opt(l)
	}

	v := l.v
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("ddc.backend", BackendDXVA2)
	v.SetDefault("hdr.enabled", true)
	v.SetDefault("brightness.allow_extended", false)
	v.SetDefault("brightness.step", DefaultStep)
	v.SetDefault("hotkeys.enabled", true)
	v.SetDefault("detect.timeout", DefaultDetectTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if l.path != "" {
		v.SetConfigFile(l.path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir := Dir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}
	return l
}

// Dir is the directory holding the default config file.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "winddc")
}

// BindFlags lets any of the known flags present in fs override the file.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return errors.Wrap(errors.ErrInvalidConfig, "bind flag "+name, err)
		}
	}
	return nil
}

// Load reads the config file (if any) and returns the validated result.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrReadConfig, "config.Load", err)
		}
		logger.Debug().Msg("config: no config file, using defaults")
	} else {
		logger.Debug().Str("file", l.v.ConfigFileUsed()).Msg("config: loaded")
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, "config.Unmarshal", err)
	}
	cfg.DDC.Backend = strings.ToLower(strings.TrimSpace(cfg.DDC.Backend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch re-reads the file on every change and hands valid results to fn.
// Invalid edits are logged and ignored so a half-saved file never takes
// effect.
func (l *Loader) Watch(fn func(*Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			logger.Warn().Err(err).Str("file", e.Name).Msg("config: ignoring invalid change")
			return
		}
		logger.Info().Str("file", e.Name).Msg("config: reloaded")
		fn(cfg)
	})
	l.v.WatchConfig()
}

// FileUsed is the path of the config file that was read, if any.
func (l *Loader) FileUsed() string {
	return l.v.ConfigFileUsed()
}

func (c *Config) Validate() error {
	switch c.DDC.Backend {
	case BackendDXVA2, BackendDDCCI:
	default:
		return errors.Errorf(errors.ErrInvalidConfig, "ddc.backend", "unknown backend %q", c.DDC.Backend)
	}
	if c.Brightness.Step <= 0 || c.Brightness.Step > 100 {
		return errors.Errorf(errors.ErrInvalidConfig, "brightness.step", "must be in 1..100, got %d", c.Brightness.Step)
	}
	if c.Detect.Timeout <= 0 {
		return errors.Errorf(errors.ErrInvalidConfig, "detect.timeout", "must be positive, got %s", c.Detect.Timeout)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrInvalidConfig, "log.level", err)
	}
	return nil
}
