// Package config loads the EASEL_* environment for the binaries.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr           string  `envconfig:"ADDR" default:":8080"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	MaxSceneBytes  int64   `envconfig:"MAX_SCENE_BYTES" default:"8388608"`
	FrameRate      int     `envconfig:"FRAME_RATE" default:"30"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	MaxMultiplier  float64 `envconfig:"MAX_MULTIPLIER" default:"4"`
	CanvasWidth    int     `envconfig:"CANVAS_WIDTH" default:"800"`
	CanvasHeight   int     `envconfig:"CANVAS_HEIGHT" default:"600"`
	ScreenshotDir  string  `envconfig:"SCREENSHOT_DIR" default:"screenshots"`
	Debug          bool    `envconfig:"DEBUG" default:"false"`
	// AllowRemote lets scenes reference http(s) images. Local files are
	// never readable from the service.
	AllowRemote bool `envconfig:"ALLOW_REMOTE" default:"false"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("easel", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.FrameRate <= 0 || c.FrameRate > 240:
		return fmt.Errorf("config: EASEL_FRAME_RATE %d out of range", c.FrameRate)
	case c.MaxSceneBytes <= 0:
		return fmt.Errorf("config: EASEL_MAX_SCENE_BYTES must be positive")
	case c.MaxMultiplier <= 0:
		return fmt.Errorf("config: EASEL_MAX_MULTIPLIER must be positive")
	case c.CanvasWidth <= 0 || c.CanvasHeight <= 0:
		return fmt.Errorf("config: canvas size %dx%d invalid", c.CanvasWidth, c.CanvasHeight)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: EASEL_LOG_LEVEL: %w", err)
	}
	return l, nil
}

// Origins splits AllowedOrigins on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
