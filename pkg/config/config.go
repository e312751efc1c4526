// Package config loads and saves the flowedit TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/flowedit/config.toml (falling back to
// ~/.config/flowedit/config.toml). A missing file is not an error: [Load]
// returns [Default]. Values present in the file override the defaults key by
// key; command-line flags override the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowedit/pkg/connect"
	"github.com/matzehuels/flowedit/pkg/diagram"
	"github.com/matzehuels/flowedit/pkg/editor"
	ferrors "github.com/matzehuels/flowedit/pkg/errors"
	"github.com/matzehuels/flowedit/pkg/layout"
)

// Config holds flowedit configuration.
type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Layout   LayoutConfig   `toml:"layout"`
	Nodes    NodesConfig    `toml:"nodes"`
	Labels   LabelsConfig   `toml:"labels"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// ViewportConfig is the drawing area assumed until a shell reports its own.
type ViewportConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// LayoutConfig controls tree geometry.
type LayoutConfig struct {
	RootY     float64 `toml:"root_y"`
	RowHeight float64 `toml:"row_height"`
	Spread    float64 `toml:"spread"` // fraction of viewport width given to the root subtree
}

// NodesConfig controls node creation.
type NodesConfig struct {
	Seed     uint64 `toml:"seed"`
	ImageURL string `toml:"image_url"`
}

// LabelsConfig controls generated label text.
type LabelsConfig struct {
	EndOfBranchSuffix string `toml:"end_of_branch_suffix"`
}

// ServerConfig controls the HTTP adapter.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{Width: 1280, Height: 800},
		Layout: LayoutConfig{
			RootY:     layout.DefaultRootY,
			RowHeight: layout.DefaultRowHeight,
			Spread:    layout.DefaultSpread,
		},
		Nodes:  NodesConfig{Seed: 42, ImageURL: diagram.DefaultImageURL},
		Labels: LabelsConfig{EndOfBranchSuffix: connect.DefaultEndOfBranchSuffix},
		Server: ServerConfig{Addr: ":8080", AllowedOrigins: []string{"http://localhost:3000"}},
		Log:    LogConfig{Level: "info"},
	}
}

// Dir returns the flowedit config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "flowedit")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path (Path() when empty). A missing file yields
// the defaults. The result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path (Path() when empty), creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if err := ferrors.ValidateViewport(c.Viewport.Width, c.Viewport.Height); err != nil {
		return err
	}
	if c.Layout.RowHeight <= 0 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "layout.row_height must be positive, got %v", c.Layout.RowHeight)
	}
	if c.Layout.Spread <= 0 || c.Layout.Spread > 1 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "layout.spread must be in (0, 1], got %v", c.Layout.Spread)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "invalid log.level %q", c.Log.Level)
	}
	return nil
}

// LogLevel returns the configured log level, or info when it does not parse.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// EditorOptions translates the configuration into session options.
func (c *Config) EditorOptions(logger *log.Logger) editor.Options {
	return editor.Options{
		Logger:   logger,
		Viewport: diagram.Viewport{Width: c.Viewport.Width, Height: c.Viewport.Height},
		Seed:     c.Nodes.Seed,
		ImageURL: c.Nodes.ImageURL,
		Layout: layout.Options{
			RootY:     c.Layout.RootY,
			RowHeight: c.Layout.RowHeight,
			Spread:    c.Layout.Spread,
		},
		Connect: connect.Options{EndOfBranchSuffix: c.Labels.EndOfBranchSuffix},
	}
}
