package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxFileSize = 1 << 20

// Window is the initial host window size in pixels.
type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// File is the on-disk configuration of the demo host.
type File struct {
	Layout     Layout `yaml:"layout"`
	Window     Window `yaml:"window"`
	Images     string `yaml:"images"`
	ClickSound string `yaml:"click_sound"`
	LogLevel   string `yaml:"log_level"`
}

// DefaultFile returns the configuration used when no file is given.
func DefaultFile() File {
	return File{
		Layout:   Default(),
		Window:   Window{Width: WindowWidth, Height: WindowHeight},
		LogLevel: "info",
	}
}

// Load reads a YAML config from path. Fields missing from the file keep
// their defaults.
func Load(path string) (File, error) {
	f := DefaultFile()

	clean := filepath.Clean(path)
	switch ext := filepath.Ext(clean); ext {
	case ".yaml", ".yml":
	default:
		return f, fmt.Errorf("config file must have .yaml extension, got %q", ext)
	}

	info, err := os.Stat(clean)
	if err != nil {
		return f, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > maxFileSize {
		return f, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return f, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse config %s: %w", clean, err)
	}
	if err := f.Layout.Validate(); err != nil {
		return f, err
	}
	if f.Images != "" && !filepath.IsAbs(f.Images) {
		f.Images = filepath.Join(filepath.Dir(clean), f.Images)
	}
	if f.ClickSound != "" && !filepath.IsAbs(f.ClickSound) {
		f.ClickSound = filepath.Join(filepath.Dir(clean), f.ClickSound)
	}
	return f, nil
}

// Level parses LogLevel, falling back to info.
func (f File) Level() slog.Level {
	switch strings.ToLower(f.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
