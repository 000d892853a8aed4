// Package config loads the YAML settings shared by the scene tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"sno-scene-tools/internal/collection"
	"sno-scene-tools/internal/sno"
)

// Log formats.
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Config holds all configurable paths and settings.
type Config struct {
	Log      LogConfig     `yaml:"log"`
	Scenes   ScenesConfig  `yaml:"scenes"`
	Textures TextureConfig `yaml:"textures"`
	Render   RenderConfig  `yaml:"render"`
	Report   ReportConfig  `yaml:"report"`
	Workers  int           `yaml:"workers"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ScenesConfig locates SNO documents.
type ScenesConfig struct {
	Root      string `yaml:"root"`
	Extension string `yaml:"extension"`
	MaxDepth  int    `yaml:"max_depth"`
}

// TextureConfig locates textures for previews. Empty disables texturing.
type TextureConfig struct {
	Dir string `yaml:"dir"`
}

// RenderConfig controls preview rendering.
type RenderConfig struct {
	Size        int     `yaml:"size"`
	Supersample int     `yaml:"supersample"`
	Yaw         float64 `yaml:"yaw"`
	Tilt        float64 `yaml:"tilt"`
	Margin      int     `yaml:"margin"`
	Fill        float64 `yaml:"fill"`
	OutputDir   string  `yaml:"output_dir"`
}

// ReportConfig names the usage report output.
type ReportConfig struct {
	Output string `yaml:"output"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Root      string
	OutputDir string
	Report    string
	Workers   int
	LogLevel  string
}

// Load reads a YAML config file, expanding ${VAR} references first.
// Fields not set in the file keep their zero values until Resolve.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve applies CLI overrides, then fills empty fields with defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.Root != "" {
		c.Scenes.Root = flags.Root
	}
	if flags.OutputDir != "" {
		c.Render.OutputDir = flags.OutputDir
	}
	if flags.Report != "" {
		c.Report.Output = flags.Report
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.Log.Level = flags.LogLevel
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = LogFormatConsole
	}
	if c.Scenes.Extension == "" {
		c.Scenes.Extension = collection.DefaultExtension
	}
	if c.Scenes.MaxDepth <= 0 {
		c.Scenes.MaxDepth = sno.DefaultMaxDepth
	}

	if c.Render.OutputDir == "" && c.Scenes.Root != "" {
		c.Render.OutputDir = filepath.Join(c.Scenes.Root, "previews")
	}
	if c.Render.Size <= 0 {
		c.Render.Size = 256
	}
	if c.Render.Supersample <= 0 {
		c.Render.Supersample = 2
	}
	if c.Render.Margin < 0 {
		c.Render.Margin = 0
	}
	if c.Report.Output == "" {
		c.Report.Output = "report.json"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate checks a resolved config.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.Required, validation.By(validLevel)),
		validation.Field(&c.Log.Format, validation.In(LogFormatJSON, LogFormatConsole)),
	); err != nil {
		return fmt.Errorf("config: log: %w", err)
	}
	if err := validation.ValidateStruct(&c.Scenes,
		validation.Field(&c.Scenes.Root, validation.Required),
		validation.Field(&c.Scenes.Extension, validation.Required),
		validation.Field(&c.Scenes.MaxDepth, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("config: scenes: %w", err)
	}
	if err := validation.ValidateStruct(&c.Render,
		validation.Field(&c.Render.Size, validation.Min(8), validation.Max(8192)),
		validation.Field(&c.Render.Supersample, validation.Min(1), validation.Max(8)),
		validation.Field(&c.Render.Tilt, validation.Min(0.0), validation.Max(89.0)),
		validation.Field(&c.Render.Fill, validation.Min(0.0), validation.Max(1.0)),
	); err != nil {
		return fmt.Errorf("config: render: %w", err)
	}
	return validation.Validate(c.Workers, validation.Min(1))
}

func validLevel(v any) error {
	s, _ := v.(string)
	if _, err := zapcore.ParseLevel(s); err != nil {
		return fmt.Errorf("unknown level %q", s)
	}
	return nil
}

// NewLogger builds the zap logger described by c.
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Format == LogFormatConsole {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// DecodeOptions returns the decoder options implied by the scenes config.
func (c ScenesConfig) DecodeOptions() []sno.Option {
	return []sno.Option{sno.WithMaxDepth(c.MaxDepth)}
}

// Prepare loads path when it is non-empty, applies flags and validates.
func Prepare(path string, flags Flags) (Config, error) {
	var cfg Config
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
