package quire

import (
	"context"
	"log/slog"

	"github.com/quirelab/quire/internal/platform"
	"github.com/quirelab/quire/pkg/core"
	"github.com/quirelab/quire/pkg/interaction"
	"github.com/quirelab/quire/pkg/raster"
)

// --- Configuration ---

// Config is the viewer configuration, loadable from YAML.
type Config = platform.Config

// ToolConfig carries per-tool appearance defaults.
type ToolConfig = platform.ToolConfig

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return platform.DefaultConfig()
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// Option defines a functional option for configuring a viewer.
type Option = platform.Option

// WithLogger sets the logger for the viewer and its components.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithBackend sets the page rasterization backend.
func WithBackend(b raster.Backend) Option {
	return platform.WithBackend(b)
}

// WithObserver sets the viewport intersection observer that drives lazy
// rendering.
func WithObserver(obs raster.Observer) Option {
	return platform.WithObserver(obs)
}

// WithPrompter sets the modal collaborator used by note and text tools.
func WithPrompter(p interaction.Prompter) Option {
	return platform.WithPrompter(p)
}

// WithOnSelect sets the selection change callback.
func WithOnSelect(fn func(id string)) Option {
	return platform.WithOnSelect(fn)
}

// WithConfig sets the full configuration.
func WithConfig(cfg Config) Option {
	return platform.WithConfig(cfg)
}

// WithConfigFile loads configuration from a YAML file.
func WithConfigFile(path string) Option {
	return platform.WithConfigFile(path)
}

// WithRasterScale overrides the render scale.
func WithRasterScale(scale float64) Option {
	return platform.WithRasterScale(scale)
}

// WithPrefetchMargin overrides the viewport prefetch margin in pixels.
func WithPrefetchMargin(px int) Option {
	return platform.WithPrefetchMargin(px)
}

// WithEventBuffer overrides the per-subscriber event buffer size.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithToolDefaults overrides the per-tool appearance presets.
func WithToolDefaults(t ToolConfig) Option {
	return platform.WithToolDefaults(t)
}

// --- Factory ---

// Open loads a document from the source and assembles a viewer around it.
func Open(ctx context.Context, src core.Source, opts ...Option) (*Viewer, error) {
	o, err := platform.Resolve(opts...)
	if err != nil {
		return nil, err
	}
	return newViewer(ctx, src, o)
}
