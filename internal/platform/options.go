package platform

import (
	"log/slog"

	"github.com/quirelab/quire/pkg/interaction"
	"github.com/quirelab/quire/pkg/raster"
)

// Options holds the resolved configuration for a viewer.
type Options struct {
	Logger   *slog.Logger
	Backend  raster.Backend
	Observer raster.Observer
	Prompter interaction.Prompter
	OnSelect func(id string)
	Config   Config

	configPath string
	configSet  bool
}

// Option defines a functional option for configuring a viewer.
type Option func(*Options)

// Resolve applies the options over the defaults. A config file named via
// WithConfigFile is loaded first so explicit options win over it.
func Resolve(opts ...Option) (*Options, error) {
	o := &Options{
		Logger: slog.Default(),
		Config: DefaultConfig(),
	}

	// First pass picks up the config file path.
	for _, opt := range opts {
		opt(o)
	}

	if o.configPath != "" && !o.configSet {
		cfg, err := LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		o.Config = cfg
		// Re-apply so explicit options override file values.
		for _, opt := range opts {
			opt(o)
		}
	}

	o.Config = o.Config.normalized()
	return o, nil
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithBackend sets the page rasterization backend.
func WithBackend(b raster.Backend) Option {
	return func(o *Options) { o.Backend = b }
}

// WithObserver sets the viewport intersection observer.
func WithObserver(obs raster.Observer) Option {
	return func(o *Options) { o.Observer = obs }
}

// WithPrompter sets the modal text prompter.
func WithPrompter(p interaction.Prompter) Option {
	return func(o *Options) { o.Prompter = p }
}

// WithOnSelect sets the selection change callback.
func WithOnSelect(fn func(id string)) Option {
	return func(o *Options) { o.OnSelect = fn }
}

// WithConfig sets the full configuration, replacing defaults and any
// config file.
func WithConfig(cfg Config) Option {
	return func(o *Options) {
		o.Config = cfg
		o.configSet = true
	}
}

// WithConfigFile loads configuration from a YAML file.
func WithConfigFile(path string) Option {
	return func(o *Options) { o.configPath = path }
}

// WithRasterScale overrides the render scale.
func WithRasterScale(scale float64) Option {
	return func(o *Options) {
		if scale > 0 {
			o.Config.RasterScale = scale
		}
	}
}

// WithPrefetchMargin overrides the viewport prefetch margin in pixels.
func WithPrefetchMargin(px int) Option {
	return func(o *Options) {
		if px >= 0 {
			o.Config.PrefetchMargin = px
		}
	}
}

// WithEventBuffer overrides the event fan-out buffer size.
func WithEventBuffer(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.Config.EventBuffer = size
		}
	}
}

// WithToolDefaults overrides the per-tool appearance presets.
func WithToolDefaults(t ToolConfig) Option {
	return func(o *Options) { o.Config.Tools = t }
}
