package style

import (
	"math"

	apperrors "github.com/RMahshie/scientiflow/internal/errors"
)

// BaseDPI is the resolution at which a scale factor of 1 renders.
const BaseDPI = 72.0

// Accepted ranges for resolved values.
const (
	MinScale  = 1.0
	MaxScale  = 10.0
	MinWidth  = 400
	MaxWidth  = 4000
	MinHeight = 300
	MaxHeight = 3000
)

// Options selects a preset and palette and optionally overrides dimensions.
// Nil overrides are absent.
type Options struct {
	Preset  string
	Width   *int
	Height  *int
	DPI     *float64
	Palette string
}

// Config is a fully resolved rendering configuration.
type Config struct {
	Preset         string
	Width          int
	Height         int
	Scale          float64
	DPI            float64
	TitleFontSize  float64
	AxisFontSize   float64
	TickFontSize   float64
	LegendFontSize float64
	LineWidth      float64
	MarkerSize     float64

	// Palette is the palette actually used. PaletteFallback is set when the
	// requested palette was unknown and the default was substituted.
	Palette         string
	PaletteFallback bool
	Colors          []string
}

// Resolve merges a preset with overrides and checks the result against the
// accepted ranges. An unknown palette never fails; it falls back to the
// default palette.
func Resolve(opts Options) (*Config, error) {
	p, ok := LookupPreset(opts.Preset)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeUnknownPreset,
			"Unknown quality preset %q. Available presets: %v", opts.Preset, PresetNames())
	}

	cfg := &Config{
		Preset:         p.Name,
		Width:          p.Width,
		Height:         p.Height,
		Scale:          p.Scale,
		DPI:            float64(p.DPI),
		TitleFontSize:  p.TitleFontSize,
		AxisFontSize:   p.AxisFontSize,
		TickFontSize:   p.TickFontSize,
		LegendFontSize: p.LegendFontSize,
		LineWidth:      p.LineWidth,
		MarkerSize:     p.MarkerSize,
	}

	if opts.Width != nil {
		cfg.Width = *opts.Width
	}
	if opts.Height != nil {
		cfg.Height = *opts.Height
	}
	if opts.DPI != nil {
		cfg.DPI = *opts.DPI
		cfg.Scale = *opts.DPI / BaseDPI
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Palette = opts.Palette
	if _, ok := LookupPalette(opts.Palette); !ok {
		cfg.Palette = DefaultPalette
		cfg.PaletteFallback = true
	}
	cfg.Colors = Colors(cfg.Palette)

	return cfg, nil
}

func (c *Config) validate() error {
	// Written as negated inclusive checks so NaN fails.
	if math.IsInf(c.DPI, 0) || !(c.Scale >= MinScale && c.Scale <= MaxScale) {
		return apperrors.New(apperrors.ErrCodeInvalidStyleParameter,
			"Scale factor %.2f out of range (%.1f-%.1f); DPI must be between %.0f and %.0f",
			c.Scale, MinScale, MaxScale, MinScale*BaseDPI, MaxScale*BaseDPI)
	}
	if !(c.Width >= MinWidth && c.Width <= MaxWidth) {
		return apperrors.New(apperrors.ErrCodeInvalidStyleParameter,
			"Width %d out of range (%d-%d pixels)", c.Width, MinWidth, MaxWidth)
	}
	if !(c.Height >= MinHeight && c.Height <= MaxHeight) {
		return apperrors.New(apperrors.ErrCodeInvalidStyleParameter,
			"Height %d out of range (%d-%d pixels)", c.Height, MinHeight, MaxHeight)
	}
	return nil
}

// PixelWidth is the raster width for a PNG export.
func (c *Config) PixelWidth() int { return int(float64(c.Width)*c.Scale + 0.5) }

// PixelHeight is the raster height for a PNG export.
func (c *Config) PixelHeight() int { return int(float64(c.Height)*c.Scale + 0.5) }
