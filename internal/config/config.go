// Package config loads jumpscare settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

const (
	KeyImagesDir        = "images-dir"
	KeyAudioDir         = "audio-dir"
	KeyInitialDelay     = "initial-delay"
	KeyPeriod           = "period"
	KeyDisplay          = "display"
	KeyStreamDeckSerial = "streamdeck.serial"
	KeyFit              = "fit"
	KeyLogLevel         = "log-level"
	KeyMaxCanvasBytes   = "max-canvas-bytes"
)

// Display backends.
const (
	DisplaySDL        = "sdl"
	DisplayStreamDeck = "streamdeck"
)

const (
	// DefaultMaxCanvasBytes caps canvas growth at 256 MiB.
	DefaultMaxCanvasBytes = 256 << 20
	envPrefix             = "JUMPSCARE"
)

// Config is the resolved configuration.
type Config struct {
	ImagesDir        string
	AudioDir         string
	InitialDelay     time.Duration
	Period           time.Duration
	Display          string
	StreamDeckSerial string
	Fit              bool
	LogLevel         log.Level
	MaxCanvasBytes   int
}

type loadSettings struct {
	configPath string
	explicit   bool
	overrides  map[string]any
}

// Option configures Load.
type Option func(*loadSettings)

// WithConfigFile reads path instead of the default location. A missing
// file is an error.
func WithConfigFile(path string) Option {
	return func(s *loadSettings) {
		s.configPath = path
		s.explicit = true
	}
}

// WithOverrides injects values typically coming from CLI flags.
func WithOverrides(overrides map[string]any) Option {
	return func(s *loadSettings) {
		s.overrides = overrides
	}
}

// Load resolves the configuration using the precedence:
// defaults < config file < environment variables < overrides.
func Load(opts ...Option) (Config, error) {
	settings := loadSettings{}
	for _, opt := range opts {
		opt(&settings)
	}

	if strings.TrimSpace(settings.configPath) == "" {
		path, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		settings.configPath = path
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeConfigFile(v, settings.configPath, settings.explicit); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	for k, val := range settings.overrides {
		v.Set(k, val)
	}

	level, err := log.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}

	cfg := Config{
		ImagesDir:        v.GetString(KeyImagesDir),
		AudioDir:         v.GetString(KeyAudioDir),
		InitialDelay:     v.GetDuration(KeyInitialDelay),
		Period:           v.GetDuration(KeyPeriod),
		Display:          strings.ToLower(strings.TrimSpace(v.GetString(KeyDisplay))),
		StreamDeckSerial: v.GetString(KeyStreamDeckSerial),
		Fit:              v.GetBool(KeyFit),
		LogLevel:         level,
		MaxCanvasBytes:   v.GetInt(KeyMaxCanvasBytes),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the daemon cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ImagesDir) == "" {
		errs = append(errs, fmt.Errorf("%s is empty", KeyImagesDir))
	}
	if strings.TrimSpace(c.AudioDir) == "" {
		errs = append(errs, fmt.Errorf("%s is empty", KeyAudioDir))
	}
	if c.InitialDelay <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyInitialDelay, c.InitialDelay))
	}
	if c.Period <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyPeriod, c.Period))
	}
	switch c.Display {
	case DisplaySDL, DisplayStreamDeck:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown backend %q (want %s or %s)", KeyDisplay, c.Display, DisplaySDL, DisplayStreamDeck))
	}
	if c.MaxCanvasBytes <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyMaxCanvasBytes, c.MaxCanvasBytes))
	}
	return errors.Join(errs...)
}

// DefaultPath returns $XDG_CONFIG_HOME/jumpscare/config.yaml or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine config dir: %w", err)
	}
	return filepath.Join(dir, "jumpscare", "config.yaml"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyImagesDir, "images")
	v.SetDefault(KeyAudioDir, "music")
	v.SetDefault(KeyInitialDelay, 2*time.Second)
	v.SetDefault(KeyPeriod, 5*time.Second)
	v.SetDefault(KeyDisplay, DisplaySDL)
	v.SetDefault(KeyStreamDeckSerial, "")
	v.SetDefault(KeyFit, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMaxCanvasBytes, DefaultMaxCanvasBytes)
}

func mergeConfigFile(v *viper.Viper, path string, required bool) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
