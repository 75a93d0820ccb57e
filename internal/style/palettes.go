package style

// DefaultPalette is used whenever a request names an unknown palette.
const DefaultPalette = "default"

// Palette is a named, ordered set of hex colors cycled across series.
type Palette struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	Colors         []string `json:"colors"`
}

var paletteOrder = []string{"default", "colorblind", "grayscale", "nature", "vibrant"}

var palettes = map[string]Palette{
	"default": {
		Name:           "default",
		Description:    "Balanced categorical colors",
		Recommendation: "General purpose charts with up to ten series",
		Colors: []string{
			"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
			"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
		},
	},
	"colorblind": {
		Name:           "colorblind",
		Description:    "Okabe-Ito colors distinguishable with common color vision deficiencies",
		Recommendation: "Any figure intended for publication or a broad audience",
		Colors: []string{
			"#0072b2", "#e69f00", "#009e73", "#cc79a7", "#56b4e9", "#d55e00", "#f0e442", "#000000",
		},
	},
	"grayscale": {
		Name:           "grayscale",
		Description:    "Shades of gray for monochrome print",
		Recommendation: "Journals that print in black and white",
		Colors: []string{
			"#000000", "#404040", "#707070", "#a0a0a0", "#c8c8c8",
		},
	},
	"nature": {
		Name:           "nature",
		Description:    "Muted tones in the style of life-science journals",
		Recommendation: "Biology and environmental science figures",
		Colors: []string{
			"#e64b35", "#4dbbd5", "#00a087", "#3c5488", "#f39b7f", "#8491b4", "#91d1c2", "#dc0000",
		},
	},
	"vibrant": {
		Name:           "vibrant",
		Description:    "High-saturation colors for screens and slides",
		Recommendation: "Presentations and posters viewed from a distance",
		Colors: []string{
			"#ee7733", "#0077bb", "#33bbee", "#ee3377", "#cc3311", "#009988", "#bbbbbb",
		},
	},
}

// LookupPalette returns the named palette and whether it exists.
func LookupPalette(name string) (Palette, bool) {
	p, ok := palettes[name]
	return p, ok
}

// Palettes returns every palette in display order.
func Palettes() []Palette {
	out := make([]Palette, 0, len(paletteOrder))
	for _, name := range paletteOrder {
		out = append(out, palettes[name])
	}
	return out
}

// Colors returns a copy of the named palette's colors, falling back to the
// default palette for unknown names.
func Colors(name string) []string {
	p, ok := palettes[name]
	if !ok {
		p = palettes[DefaultPalette]
	}
	return append([]string(nil), p.Colors...)
}
