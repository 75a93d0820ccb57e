// Package figure assembles chart series and a resolved style into a
// Plotly-compatible figure description that the browser client renders
// directly and the export renderer draws from.
package figure

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/RMahshie/scientiflow/internal/series"
	"github.com/RMahshie/scientiflow/internal/style"
	"github.com/RMahshie/scientiflow/internal/tabular"
)

// Fixed layout colors.
const (
	FontFamily      = "Arial, sans-serif"
	AxisLineColor   = "black"
	GridColor       = "rgba(128,128,128,0.2)"
	LegendBgColor   = "rgba(255,255,255,0.8)"
	LegendBorder    = "rgba(0,0,0,0.3)"
	BarOutlineColor = "rgba(0,0,0,0.6)"
	MarkerOutline   = "white"
	Background      = "white"
)

// Figure is a chart description in Plotly's JSON shape.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one plotted series.
type Trace struct {
	Type   string         `json:"type"`
	Mode   string         `json:"mode,omitempty"`
	Name   string         `json:"name"`
	X      []tabular.Cell `json:"x"`
	Y      []float64      `json:"y"`
	Line   *Line          `json:"line,omitempty"`
	Marker *Marker        `json:"marker,omitempty"`
}

type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width"`
}

type Marker struct {
	Color string  `json:"color"`
	Size  float64 `json:"size,omitempty"`
	Line  *Line   `json:"line,omitempty"`
}

type Font struct {
	Family string  `json:"family,omitempty"`
	Size   float64 `json:"size"`
	Color  string  `json:"color,omitempty"`
}

type Title struct {
	Text    string  `json:"text"`
	X       float64 `json:"x,omitempty"`
	XAnchor string  `json:"xanchor,omitempty"`
	Font    Font    `json:"font"`
}

type Axis struct {
	Title     Title   `json:"title"`
	ShowLine  bool    `json:"showline"`
	LineWidth float64 `json:"linewidth"`
	LineColor string  `json:"linecolor"`
	Mirror    bool    `json:"mirror"`
	Ticks     string  `json:"ticks"`
	TickFont  Font    `json:"tickfont"`
	ShowGrid  bool    `json:"showgrid"`
	GridWidth float64 `json:"gridwidth"`
	GridColor string  `json:"gridcolor"`
}

type Legend struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor"`
	YAnchor     string  `json:"yanchor"`
	Orientation string  `json:"orientation"`
	BgColor     string  `json:"bgcolor"`
	BorderColor string  `json:"bordercolor"`
	BorderWidth float64 `json:"borderwidth"`
	Font        Font    `json:"font"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

type Layout struct {
	Title        Title  `json:"title"`
	XAxis        Axis   `json:"xaxis"`
	YAxis        Axis   `json:"yaxis"`
	Legend       Legend `json:"legend"`
	ShowLegend   bool   `json:"showlegend"`
	Font         Font   `json:"font"`
	PlotBgColor  string `json:"plot_bgcolor"`
	PaperBgColor string `json:"paper_bgcolor"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Margin       Margin `json:"margin"`
	BarMode      string `json:"barmode,omitempty"`
}

// Labels are the human-readable texts placed on the chart.
type Labels struct {
	Title  string
	XLabel string
	YLabel string
}

// DefaultLabels fills empty labels: the title from the uploaded file's name,
// the x label from the independent column and the y label from the series
// names when there are few of them.
func DefaultLabels(l Labels, fileName, xColumn string, ct series.ChartType, names []string) Labels {
	if l.Title == "" {
		stem := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
		if fileName == "" || stem == "" || stem == "." {
			stem = chartTypeTitle(ct) + " Chart"
		}
		l.Title = stem
	}
	if l.XLabel == "" {
		l.XLabel = xColumn
		if xColumn == "" {
			l.XLabel = "Index"
		}
	}
	if l.YLabel == "" {
		l.YLabel = "Value"
		if len(names) > 0 && len(names) <= 3 {
			l.YLabel = strings.Join(names, ", ")
		}
	}
	return l
}

func chartTypeTitle(ct series.ChartType) string {
	s := string(ct)
	if s == "" {
		return "Line"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Assemble builds one trace per series and a layout sized and typeset from
// cfg. It does not modify its inputs.
func Assemble(ss []*series.Series, ct series.ChartType, cfg *style.Config, labels Labels) *Figure {
	fig := &Figure{Data: make([]Trace, 0, len(ss))}
	for _, s := range ss {
		fig.Data = append(fig.Data, trace(s, ct, cfg))
	}
	fig.Layout = layout(cfg, labels)
	if ct == series.Bar {
		fig.Layout.BarMode = "group"
	}
	return fig
}

func trace(s *series.Series, ct series.ChartType, cfg *style.Config) Trace {
	t := Trace{
		Name: s.Name,
		X:    append([]tabular.Cell(nil), s.X...),
		Y:    append([]float64(nil), s.Y...),
	}
	switch ct {
	case series.Scatter:
		t.Type = "scatter"
		t.Mode = "markers"
		t.Marker = &Marker{
			Color: s.Color,
			Size:  cfg.MarkerSize,
			Line:  &Line{Color: MarkerOutline, Width: 0.5},
		}
	case series.Bar:
		t.Type = "bar"
		t.Marker = &Marker{
			Color: s.Color,
			Line:  &Line{Color: BarOutlineColor, Width: 0.5},
		}
	default:
		t.Type = "scatter"
		t.Mode = "lines+markers"
		t.Line = &Line{Color: s.Color, Width: cfg.LineWidth}
		t.Marker = &Marker{Color: s.Color, Size: cfg.MarkerSize}
	}
	return t
}

func layout(cfg *style.Config, labels Labels) Layout {
	return Layout{
		Title: Title{
			Text:    labels.Title,
			X:       0.5,
			XAnchor: "center",
			Font:    Font{Family: FontFamily, Size: cfg.TitleFontSize},
		},
		XAxis:      axis(labels.XLabel, cfg),
		YAxis:      axis(labels.YLabel, cfg),
		ShowLegend: true,
		Legend: Legend{
			X:           1.02,
			Y:           1,
			XAnchor:     "left",
			YAnchor:     "top",
			Orientation: "v",
			BgColor:     LegendBgColor,
			BorderColor: LegendBorder,
			BorderWidth: 1,
			Font:        Font{Family: FontFamily, Size: cfg.LegendFontSize},
		},
		Font:         Font{Family: FontFamily, Size: cfg.TickFontSize, Color: AxisLineColor},
		PlotBgColor:  Background,
		PaperBgColor: Background,
		Width:        cfg.Width,
		Height:       cfg.Height,
		Margin:       Margin{L: 80, R: 160, T: 80, B: 80},
	}
}

func axis(title string, cfg *style.Config) Axis {
	return Axis{
		Title:     Title{Text: title, Font: Font{Family: FontFamily, Size: cfg.AxisFontSize}},
		ShowLine:  true,
		LineWidth: 1,
		LineColor: AxisLineColor,
		Mirror:    true,
		Ticks:     "outside",
		TickFont:  Font{Family: FontFamily, Size: cfg.TickFontSize},
		ShowGrid:  true,
		GridWidth: 1,
		GridColor: GridColor,
	}
}

// JSON encodes the figure as the string handed to the browser client.
func (f *Figure) JSON() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
