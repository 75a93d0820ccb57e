// Package style holds the fixed quality presets and color palettes and
// resolves a request's preset, overrides and palette into a concrete
// rendering configuration.
package style

// Preset names.
const (
	PresetDraft       = "draft"
	PresetManuscript  = "manuscript"
	PresetPublication = "publication"
	PresetHighRes     = "high_res"
	PresetPoster      = "poster"
)

// DefaultPreset is used by chart previews.
const DefaultPreset = PresetManuscript

// Preset is a named bundle of layout constants for one print or display target.
type Preset struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	UseCase        string  `json:"use_case"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Scale          float64 `json:"scale"`
	DPI            int     `json:"dpi"`
	TitleFontSize  float64 `json:"title_font_size"`
	AxisFontSize   float64 `json:"axis_font_size"`
	TickFontSize   float64 `json:"tick_font_size"`
	LegendFontSize float64 `json:"legend_font_size"`
	LineWidth      float64 `json:"line_width"`
	MarkerSize     float64 `json:"marker_size"`
}

var presetOrder = []string{PresetDraft, PresetManuscript, PresetPublication, PresetHighRes, PresetPoster}

var presets = map[string]Preset{
	PresetDraft: {
		Name:           PresetDraft,
		Description:    "Quick preview at screen resolution",
		UseCase:        "Iterating on a chart before committing to a layout",
		Width:          800,
		Height:         600,
		Scale:          1.0,
		DPI:            72,
		TitleFontSize:  14,
		AxisFontSize:   12,
		TickFontSize:   10,
		LegendFontSize: 10,
		LineWidth:      1.5,
		MarkerSize:     5,
	},
	PresetManuscript: {
		Name:           PresetManuscript,
		Description:    "Standard resolution for manuscript submission",
		UseCase:        "Journal submissions and internal reports",
		Width:          800,
		Height:         600,
		Scale:          3.75,
		DPI:            300,
		TitleFontSize:  16,
		AxisFontSize:   14,
		TickFontSize:   12,
		LegendFontSize: 12,
		LineWidth:      2,
		MarkerSize:     6,
	},
	PresetPublication: {
		Name:           PresetPublication,
		Description:    "Print quality for final publication figures",
		UseCase:        "Camera-ready journal figures",
		Width:          1000,
		Height:         750,
		Scale:          7.5,
		DPI:            600,
		TitleFontSize:  18,
		AxisFontSize:   16,
		TickFontSize:   14,
		LegendFontSize: 13,
		LineWidth:      2.5,
		MarkerSize:     7,
	},
	PresetHighRes: {
		Name:           PresetHighRes,
		Description:    "Large canvas at high resolution",
		UseCase:        "Figures that will be cropped or zoomed",
		Width:          1600,
		Height:         1200,
		Scale:          5.0,
		DPI:            400,
		TitleFontSize:  20,
		AxisFontSize:   18,
		TickFontSize:   16,
		LegendFontSize: 14,
		LineWidth:      3,
		MarkerSize:     8,
	},
	PresetPoster: {
		Name:           PresetPoster,
		Description:    "Oversized typography for posters and slides",
		UseCase:        "Conference posters and presentation slides",
		Width:          2400,
		Height:         1800,
		Scale:          3.75,
		DPI:            300,
		TitleFontSize:  32,
		AxisFontSize:   28,
		TickFontSize:   24,
		LegendFontSize: 22,
		LineWidth:      4,
		MarkerSize:     12,
	},
}

// LookupPreset returns the preset with the given name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// Presets returns every preset in display order.
func Presets() []Preset {
	out := make([]Preset, 0, len(presetOrder))
	for _, name := range presetOrder {
		out = append(out, presets[name])
	}
	return out
}

// PresetNames returns the preset names in display order.
func PresetNames() []string {
	return append([]string(nil), presetOrder...)
}

// DPIRecommendation pairs an output medium with a suggested resolution.
type DPIRecommendation struct {
	Medium string `json:"medium"`
	DPI    int    `json:"dpi"`
	Preset string `json:"preset"`
}

// RecommendedDPI is the lookup table shown to users choosing a custom DPI.
func RecommendedDPI() []DPIRecommendation {
	return []DPIRecommendation{
		{Medium: "screen", DPI: 72, Preset: PresetDraft},
		{Medium: "web", DPI: 150, Preset: PresetDraft},
		{Medium: "manuscript", DPI: 300, Preset: PresetManuscript},
		{Medium: "journal print", DPI: 600, Preset: PresetPublication},
		{Medium: "line art", DPI: 600, Preset: PresetPublication},
		{Medium: "poster", DPI: 300, Preset: PresetPoster},
	}
}

// Output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

// FormatInfo describes one export format.
type FormatInfo struct {
	Format      string `json:"format"`
	MIMEType    string `json:"mime_type"`
	Vector      bool   `json:"vector"`
	Description string `json:"description"`
}

// SupportedFormats lists the export formats.
func SupportedFormats() []FormatInfo {
	return []FormatInfo{
		{Format: FormatPNG, MIMEType: "image/png", Description: "Raster image rendered at the preset scale factor"},
		{Format: FormatSVG, MIMEType: "image/svg+xml", Vector: true, Description: "Scalable vector graphic at the preset dimensions"},
		{Format: FormatPDF, MIMEType: "application/pdf", Vector: true, Description: "Vector PDF at the preset dimensions"},
	}
}

// IsSupportedFormat reports whether format names an export format.
func IsSupportedFormat(format string) bool {
	for _, f := range SupportedFormats() {
		if f.Format == format {
			return true
		}
	}
	return false
}
