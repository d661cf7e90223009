package config

import (
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Addr:           ":8080",
		LogLevel:       "info",
		MaxSceneBytes:  8 << 20,
		FrameRate:      30,
		AllowedOrigins: "localhost:5173,localhost:3000",
		MaxMultiplier:  4,
		CanvasWidth:    800,
		CanvasHeight:   600,
		ScreenshotDir:  "screenshots",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EASEL_ADDR", ":9999")
	t.Setenv("EASEL_LOG_LEVEL", "debug")
	t.Setenv("EASEL_ALLOWED_ORIGINS", "a.example, b.example,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":9999")
	}
	lvl, err := cfg.SlogLevel()
	if err != nil || lvl != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, %v, want %v", lvl, err, slog.LevelDebug)
	}
	if diff := cmp.Diff([]string{"a.example", "b.example"}, cfg.Origins()); diff != "" {
		t.Errorf("Origins() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"EASEL_FRAME_RATE", "0"},
		{"EASEL_MAX_MULTIPLIER", "-1"},
		{"EASEL_LOG_LEVEL", "loud"},
		{"EASEL_CANVAS_WIDTH", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s succeeded, want error", tt.key, tt.val)
			}
		})
	}
}
