// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Interface is the read only view of the configuration that commands
// consume.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Synth() SynthConfig
	Interact() InteractConfig
	Dialog() DialogConfig
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	SynthCfg    SynthConfig    `mapstructure:"synth" yaml:"synth"`
	InteractCfg InteractConfig `mapstructure:"interact" yaml:"interact"`
	DialogCfg   DialogConfig   `mapstructure:"dialog" yaml:"dialog"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Synth() SynthConfig       { return c.SynthCfg }
func (c *Config) Interact() InteractConfig { return c.InteractCfg }
func (c *Config) Dialog() DialogConfig     { return c.DialogCfg }

var _ Interface = (*Config)(nil)

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

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the browser driven over CDP. When
// RemoteURL is set the host attaches to a running browser's DevTools
// endpoint instead of launching one.
type BrowserConfig struct {
	Headless          bool           `mapstructure:"headless" yaml:"headless"`
	Args              []string       `mapstructure:"args" yaml:"args"`
	RemoteURL         string         `mapstructure:"remote_url" yaml:"remote_url"`
	ExecPath          string         `mapstructure:"exec_path" yaml:"exec_path"`
	Viewport          map[string]int `mapstructure:"viewport" yaml:"viewport"`
	NavigationTimeout time.Duration  `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	Debug             bool           `mapstructure:"debug" yaml:"debug"`
}

// SynthConfig configures event synthesis.
type SynthConfig struct {
	// Engine is "auto" to trust the host probe, or "standard"/"trident" to
	// force the engine quirks.
	Engine           string        `mapstructure:"engine" yaml:"engine"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout" yaml:"operation_timeout"`
}

// InteractConfig configures the interaction facade.
type InteractConfig struct {
	// KeystrokeRate caps keystrokes per second. Zero disables pacing.
	KeystrokeRate float64       `mapstructure:"keystroke_rate" yaml:"keystroke_rate"`
	Settle        time.Duration `mapstructure:"settle" yaml:"settle"`
}

// DialogConfig configures message box discovery.
type DialogConfig struct {
	MarkerClass string `mapstructure:"marker_class" yaml:"marker_class"`
}

// Engine values accepted by synth.engine.
const (
	EngineAuto     = "auto"
	EngineStandard = "standard"
	EngineTrident  = "trident"
)

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "uxsim")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.viewport", map[string]int{"width": 1280, "height": 800})
	v.SetDefault("browser.navigation_timeout", "30s")
	v.SetDefault("browser.debug", false)

	// -- Synth --
	v.SetDefault("synth.engine", EngineAuto)
	v.SetDefault("synth.operation_timeout", "10s")

	// -- Interact --
	v.SetDefault("interact.keystroke_rate", 0)
	v.SetDefault("interact.settle", "100ms")

	// -- Dialog --
	v.SetDefault("dialog.marker_class", "x-message-box")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// The DevTools endpoint is commonly provided by the environment in CI.
	_ = v.BindEnv("browser.remote_url", "UXSIM_BROWSER_REMOTE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LoggerCfg.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be 'console' or 'json', got '%s'", c.LoggerCfg.Format)
	}
	if c.BrowserCfg.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be a positive duration")
	}
	if err := c.SynthCfg.Validate(); err != nil {
		return fmt.Errorf("synth configuration invalid: %w", err)
	}
	if err := c.InteractCfg.Validate(); err != nil {
		return fmt.Errorf("interact configuration invalid: %w", err)
	}
	if strings.TrimSpace(c.DialogCfg.MarkerClass) == "" {
		return fmt.Errorf("dialog.marker_class is a required configuration field")
	}
	return nil
}

// Validate checks the SynthConfig settings.
func (s *SynthConfig) Validate() error {
	switch s.Engine {
	case EngineAuto, EngineStandard, EngineTrident:
	default:
		return fmt.Errorf("engine must be one of auto, standard or trident, got '%s'", s.Engine)
	}
	if s.OperationTimeout <= 0 {
		return fmt.Errorf("operation_timeout must be a positive duration")
	}
	return nil
}

// Validate checks the InteractConfig settings.
func (i *InteractConfig) Validate() error {
	if i.KeystrokeRate < 0 {
		return fmt.Errorf("keystroke_rate must not be negative")
	}
	if i.Settle < 0 {
		return fmt.Errorf("settle must not be negative")
	}
	return nil
}
