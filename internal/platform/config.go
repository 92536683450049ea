// Package platform wires the domain packages together behind the public
// facade. It owns configuration parsing and option resolution so the root
// package stays a thin composition layer.
package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quirelab/quire/pkg/interaction"
)

// Config is the file-backed configuration. Every field has a working
// default; a config file only overrides what it names.
type Config struct {
	// RasterScale is the device pixel ratio pages render at.
	RasterScale float64 `yaml:"raster_scale"`

	// PrefetchMargin extends the viewport by a pixel band so pages start
	// rendering shortly before they scroll into view.
	PrefetchMargin int `yaml:"prefetch_margin"`

	// VisibilityThreshold is the intersection ratio at which a page counts
	// as visible.
	VisibilityThreshold float64 `yaml:"visibility_threshold"`

	// EventBuffer sizes the event fan-out channels.
	EventBuffer int `yaml:"event_buffer"`

	Tools ToolConfig `yaml:"tools"`

	// Stamps is the catalogue the stamp tool picks from. An empty list
	// falls back to the built-in catalogue.
	Stamps []StampConfig `yaml:"stamps"`
}

// StampConfig is one stamp catalogue entry.
type StampConfig struct {
	Kind  string `yaml:"kind"`
	Label string `yaml:"label"`
	Color string `yaml:"color"`
}

// ToolConfig carries the per-tool appearance defaults.
type ToolConfig struct {
	HighlightColor   string  `yaml:"highlight_color"`
	HighlightOpacity float64 `yaml:"highlight_opacity"`
	RedactColor      string  `yaml:"redact_color"`
	StrokeColor      string  `yaml:"stroke_color"`
	StrokeWidth      float64 `yaml:"stroke_width"`
	StampKind        string  `yaml:"stamp_kind"`
	StampLabel       string  `yaml:"stamp_label"`
	StampColor       string  `yaml:"stamp_color"`
	NoteColor        string  `yaml:"note_color"`
	TextColor        string  `yaml:"text_color"`
	FontFamily       string  `yaml:"font_family"`
	FontSize         float64 `yaml:"font_size"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		RasterScale:         2.0,
		PrefetchMargin:      600,
		VisibilityThreshold: 0.1,
		EventBuffer:         64,
		Tools: ToolConfig{
			HighlightColor:   "#ffeb3b",
			HighlightOpacity: 0.4,
			RedactColor:      "#000000",
			StrokeColor:      "#1565c0",
			StrokeWidth:      2,
			StampKind:        "approved",
			StampLabel:       "APPROVED",
			StampColor:       "#c62828",
			NoteColor:        "#fff59d",
			TextColor:        "#212121",
			FontFamily:       "Helvetica",
			FontSize:         14,
		},
		Stamps: []StampConfig{
			{Kind: "approved", Label: "APPROVED", Color: "#c62828"},
			{Kind: "rejected", Label: "REJECTED", Color: "#b71c1c"},
			{Kind: "draft", Label: "DRAFT", Color: "#616161"},
			{Kind: "final", Label: "FINAL", Color: "#1565c0"},
			{Kind: "confidential", Label: "CONFIDENTIAL", Color: "#6a1b9a"},
		},
	}
}

// LoadConfig reads a YAML config file over the defaults, so omitted keys
// keep their built-in values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg.normalized(), nil
}

// normalized clamps out-of-range values back to their defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.RasterScale <= 0 {
		c.RasterScale = def.RasterScale
	}
	if c.PrefetchMargin < 0 {
		c.PrefetchMargin = def.PrefetchMargin
	}
	if c.VisibilityThreshold <= 0 || c.VisibilityThreshold > 1 {
		c.VisibilityThreshold = def.VisibilityThreshold
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = def.EventBuffer
	}
	if len(c.Stamps) == 0 {
		c.Stamps = def.Stamps
	}
	return c
}

// StampCatalogue converts the stamp section into the interaction layer's
// catalogue entries.
func (c Config) StampCatalogue() []interaction.StampDef {
	out := make([]interaction.StampDef, 0, len(c.Stamps))
	for _, s := range c.Stamps {
		out = append(out, interaction.StampDef{Kind: s.Kind, Label: s.Label, Color: s.Color})
	}
	return out
}

// ToolDefaults converts the tool section into the interaction layer's
// defaults struct.
func (c Config) ToolDefaults() interaction.Defaults {
	t := c.Tools
	return interaction.Defaults{
		HighlightColor:   t.HighlightColor,
		HighlightOpacity: t.HighlightOpacity,
		RedactColor:      t.RedactColor,
		StrokeColor:      t.StrokeColor,
		StrokeWidth:      t.StrokeWidth,
		StampKind:        t.StampKind,
		StampLabel:       t.StampLabel,
		StampColor:       t.StampColor,
		NoteColor:        t.NoteColor,
		TextColor:        t.TextColor,
		FontFamily:       t.FontFamily,
		FontSize:         t.FontSize,
	}
}
