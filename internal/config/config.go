// Package config loads and watches plotterm configuration.
//
// Configuration lives in a single TOML file. Missing files are not an
// error; every option has a default so the plotter runs unconfigured.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/plotterm/plotterm/internal/term"
)

// Config is the root configuration.
type Config struct {
	Plot PlotConfig `toml:"plot"`
	Log  LogConfig  `toml:"log"`
}

// PlotConfig configures the plotting engine.
type PlotConfig struct {
	// Colors is the ordered palette used for distinct plotted groups,
	// as color names or 256-color palette indices.
	Colors []string `toml:"colors"`

	// Labels controls whether axes labels and the legend are drawn.
	Labels bool `toml:"labels"`

	// PixelRandom picks a random attr from overlapping pixels instead
	// of the most common one.
	PixelRandom bool `toml:"pixel_random"`

	// ZoomIncr is the multiplier applied to the zoom level per zoom
	// step.
	ZoomIncr float64 `toml:"zoom_incr"`

	// AspectRatio, when nonzero, locks the horizontal and vertical
	// scale together.
	AspectRatio float64 `toml:"aspect_ratio"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// File is the log destination; empty discards logs. The terminal
	// itself is owned by the display, so logs never go to stderr while
	// the UI runs.
	File string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Plot: PlotConfig{
			Colors:      []string{"green", "red", "yellow", "cyan", "magenta", "white", "38", "136", "168"},
			Labels:      true,
			PixelRandom: false,
			ZoomIncr:    2.0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ParseError describes a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the configuration at path, overlaying it onto the
// defaults. A missing file yields the defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: path, Message: err.Error(), Err: err}
	}

	if err := cfg.validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "plotterm", "config.toml")
	}
	return ""
}

func (c *Config) validate() error {
	if len(c.Plot.Colors) == 0 {
		return fmt.Errorf("plot.colors must list at least one color")
	}
	if c.Plot.ZoomIncr <= 1 {
		return fmt.Errorf("plot.zoom_incr must be greater than 1, got %v", c.Plot.ZoomIncr)
	}
	if c.Plot.AspectRatio < 0 {
		return fmt.Errorf("plot.aspect_ratio must not be negative, got %v", c.Plot.AspectRatio)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	return nil
}

// Palette resolves the configured color list into display styles.
func (c *Config) Palette() ([]term.Style, error) {
	palette := make([]term.Style, 0, len(c.Plot.Colors))
	for _, name := range c.Plot.Colors {
		color, err := term.ParseColor(name)
		if err != nil {
			return nil, fmt.Errorf("plot.colors: %w", err)
		}
		palette = append(palette, term.NewStyle(color))
	}
	return palette, nil
}
