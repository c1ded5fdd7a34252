// Package config loads boxflow settings from defaults, an optional YAML file
// and BOXFLOW_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the whole application configuration.
type Config struct {
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Layout   LayoutConfig   `mapstructure:"layout" yaml:"layout"`
	Scroll   ScrollConfig   `mapstructure:"scroll" yaml:"scroll"`
	Text     TextConfig     `mapstructure:"text" yaml:"text"`
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
}

// ViewportConfig is the initial viewport size in pixels.
type ViewportConfig struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// LayoutConfig tunes the layout engine.
type LayoutConfig struct {
	MaxReflowIterations int     `mapstructure:"max_reflow_iterations" yaml:"max_reflow_iterations"`
	ScrollbarWidth      float64 `mapstructure:"scrollbar_width" yaml:"scrollbar_width"`
	OverlayScrollbars   bool    `mapstructure:"overlay_scrollbars" yaml:"overlay_scrollbars"`
	MinThumb            float64 `mapstructure:"min_thumb" yaml:"min_thumb"`
}

// ScrollConfig tunes the scroll manager.
type ScrollConfig struct {
	FadeDelay        time.Duration `mapstructure:"fade_delay" yaml:"fade_delay"`
	FadeDuration     time.Duration `mapstructure:"fade_duration" yaml:"fade_duration"`
	NearEndThreshold float64       `mapstructure:"near_end_threshold" yaml:"near_end_threshold"`
	DefaultDuration  time.Duration `mapstructure:"default_duration" yaml:"default_duration"`
	Easing           string        `mapstructure:"easing" yaml:"easing"`
}

// TextConfig selects the shaper.
type TextConfig struct {
	// Shaper is "cell" or "font".
	Shaper     string  `mapstructure:"shaper" yaml:"shaper"`
	CellWidth  float64 `mapstructure:"cell_width" yaml:"cell_width"`
	LineHeight float64 `mapstructure:"line_height" yaml:"line_height"`
	FontPath   string  `mapstructure:"font_path" yaml:"font_path"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color of each log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// SetDefaults installs the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)

	v.SetDefault("layout.max_reflow_iterations", 4)
	v.SetDefault("layout.scrollbar_width", 16)
	v.SetDefault("layout.overlay_scrollbars", false)
	v.SetDefault("layout.min_thumb", 16)

	v.SetDefault("scroll.fade_delay", 500*time.Millisecond)
	v.SetDefault("scroll.fade_duration", 250*time.Millisecond)
	v.SetDefault("scroll.near_end_threshold", 100)
	v.SetDefault("scroll.default_duration", 200*time.Millisecond)
	v.SetDefault("scroll.easing", "ease-out")

	v.SetDefault("text.shaper", "cell")
	v.SetDefault("text.cell_width", 8)
	v.SetDefault("text.line_height", 16)
	v.SetDefault("text.font_path", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "boxflow")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
}

// New returns a viper instance with defaults and environment binding. A
// non-empty path is read as the config file.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("BOXFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return v, nil
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads path (optional) and the environment into a Config.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// NewDefaultConfig returns the defaults without reading the environment.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	var errs []error
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %gx%g", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Layout.MaxReflowIterations <= 0 {
		errs = append(errs, errors.New("layout.max_reflow_iterations must be a positive integer"))
	}
	if c.Layout.ScrollbarWidth < 0 {
		errs = append(errs, errors.New("layout.scrollbar_width must not be negative"))
	}
	if c.Scroll.FadeDelay < 0 || c.Scroll.FadeDuration < 0 || c.Scroll.DefaultDuration < 0 {
		errs = append(errs, errors.New("scroll durations must not be negative"))
	}
	switch c.Text.Shaper {
	case "cell":
		if c.Text.CellWidth <= 0 || c.Text.LineHeight <= 0 {
			errs = append(errs, errors.New("text.cell_width and text.line_height must be positive"))
		}
	case "font":
	default:
		errs = append(errs, fmt.Errorf("text.shaper must be cell or font, got %q", c.Text.Shaper))
	}
	return errors.Join(errs...)
}
