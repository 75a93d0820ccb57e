package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/RMahshie/scientiflow/internal/figure"
	"github.com/RMahshie/scientiflow/internal/style"
	"github.com/RMahshie/scientiflow/internal/tabular"
)

// PDFConverter turns an SVG document into a PDF.
type PDFConverter interface {
	ToPDF(ctx context.Context, svg []byte) ([]byte, error)
}

// ChartRenderer draws figures with go-chart. PDF output is the SVG rendering
// passed through a PDFConverter.
type ChartRenderer struct {
	pdf PDFConverter
}

// NewChartRenderer creates a renderer. pdf may be nil, in which case PDF
// exports fail with a backend error.
func NewChartRenderer(pdf PDFConverter) *ChartRenderer {
	return &ChartRenderer{pdf: pdf}
}

// Render implements Renderer.
func (cr *ChartRenderer) Render(ctx context.Context, fig *figure.Figure, cfg *style.Config, format string) ([]byte, error) {
	switch format {
	case style.FormatSVG:
		return draw(fig, cfg, 1, chart.SVG)
	case style.FormatPDF:
		if cr.pdf == nil {
			return nil, errors.New("no PDF converter configured")
		}
		svg, err := draw(fig, cfg, 1, chart.SVG)
		if err != nil {
			return nil, err
		}
		return cr.pdf.ToPDF(ctx, svg)
	default:
		return draw(fig, cfg, cfg.Scale, chart.PNG)
	}
}

// xMapping places x cells on a continuous axis. When every x value is
// numeric the values are used directly; otherwise each distinct label gets
// the next integer position and a tick.
type xMapping struct {
	numeric   bool
	positions map[string]float64
	labels    []string
}

func newXMapping(traces []figure.Trace) *xMapping {
	m := &xMapping{numeric: true, positions: make(map[string]float64)}
	for _, tr := range traces {
		for _, c := range tr.X {
			if _, ok := tabular.Coerce(c).Float(); !ok {
				m.numeric = false
			}
		}
	}
	if m.numeric {
		return m
	}
	for _, tr := range traces {
		for _, c := range tr.X {
			label := c.String()
			if _, seen := m.positions[label]; !seen {
				m.positions[label] = float64(len(m.labels))
				m.labels = append(m.labels, label)
			}
		}
	}
	return m
}

func (m *xMapping) values(cells []tabular.Cell) []float64 {
	out := make([]float64, len(cells))
	for i, c := range cells {
		if m.numeric {
			out[i], _ = tabular.Coerce(c).Float()
		} else {
			out[i] = m.positions[c.String()]
		}
	}
	return out
}

// maxCategoryTicks bounds the labelled ticks on a categorical axis.
const maxCategoryTicks = 20

func (m *xMapping) ticks() []chart.Tick {
	if m.numeric {
		return nil
	}
	step := 1
	if len(m.labels) > maxCategoryTicks {
		step = int(math.Ceil(float64(len(m.labels)) / maxCategoryTicks))
	}
	var ticks []chart.Tick
	for i := 0; i < len(m.labels); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: m.labels[i]})
	}
	return ticks
}

type bounds struct {
	min, max float64
}

func newBounds() bounds { return bounds{min: math.MaxFloat64, max: -math.MaxFloat64} }

func (b *bounds) add(vs ...float64) {
	for _, v := range vs {
		b.min = math.Min(b.min, v)
		b.max = math.Max(b.max, v)
	}
}

func (b bounds) empty() bool { return b.min > b.max }

// padded widens the bounds by frac of their span, or by one unit when the
// span is zero.
func (b bounds) padded(frac float64) *chart.ContinuousRange {
	if b.empty() {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	half := b.max/2 - b.min/2
	if half == 0 {
		pad := math.Max(math.Abs(b.min)*0.1, 1)
		return &chart.ContinuousRange{Min: b.min - pad, Max: b.max + pad}
	}
	pad := 2 * half * frac
	return &chart.ContinuousRange{Min: b.min - pad, Max: b.max + pad}
}

// valueScale is the factor y values are divided by so the axis span stays
// finite. Tick labels multiply it back.
func (b bounds) valueScale() float64 {
	if b.empty() || !math.IsInf(b.max-b.min, 0) {
		return 1
	}
	return 4
}

// minSpacing is the smallest gap between distinct x positions, or 1.
func minSpacing(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	gap := math.MaxFloat64
	for i := 1; i < len(sorted); i++ {
		if d := sorted[i] - sorted[i-1]; d > 0 && d < gap {
			gap = d
		}
	}
	if gap == math.MaxFloat64 {
		return 1
	}
	return gap
}

func px(v, scale float64) int { return int(math.Round(v * scale)) }

// buildChart converts fig into a go-chart chart at the given scale.
func buildChart(fig *figure.Figure, cfg *style.Config, scale float64) (*chart.Chart, error) {
	if len(fig.Data) == 0 {
		return nil, errors.New("figure has no traces")
	}

	mapping := newXMapping(fig.Data)
	xb, yb := newBounds(), newBounds()

	var allX []float64
	barCount := 0
	for _, tr := range fig.Data {
		xs := mapping.values(tr.X)
		xb.add(xs...)
		yb.add(tr.Y...)
		allX = append(allX, xs...)
		if tr.Type == "bar" {
			barCount++
		}
	}

	var (
		barWidth   float64
		groupWidth float64
	)
	if barCount > 0 {
		yb.add(0)
		groupWidth = 0.8 * minSpacing(allX)
		barWidth = groupWidth / float64(barCount)
		xb.add(xb.min-groupWidth/2, xb.max+groupWidth/2)
	}

	yScale := yb.valueScale()
	if yScale != 1 {
		yb = bounds{min: yb.min / yScale, max: yb.max / yScale}
	}

	var (
		seriesList []chart.Series
		entries    []legendEntry
		barIndex   int
	)
	for _, tr := range fig.Data {
		if len(tr.Y) == 0 {
			continue
		}
		color := traceColor(tr)
		xs := mapping.values(tr.X)
		ys := make([]float64, len(tr.Y))
		for i, y := range tr.Y {
			ys[i] = y / yScale
		}

		if tr.Type == "bar" {
			offset := -groupWidth/2 + barWidth*(float64(barIndex)+0.5)
			barIndex++
			seriesList = append(seriesList, &barSeries{
				name:   tr.Name,
				xs:     xs,
				ys:     ys,
				offset: offset,
				width:  barWidth,
				yAxis:  chart.YAxisSecondary,
				style: chart.Style{
					FillColor:   color,
					StrokeColor: parseColor(figure.BarOutlineColor),
					StrokeWidth: 0.5 * scale,
				},
			})
			entries = append(entries, legendEntry{name: tr.Name, color: color, fill: true})
			continue
		}

		st := chart.Style{
			StrokeColor: color,
			DotColor:    color,
		}
		if tr.Marker != nil {
			st.DotWidth = tr.Marker.Size / 2 * scale
		}
		if tr.Line != nil && tr.Mode != "markers" {
			st.StrokeWidth = tr.Line.Width * scale
		} else {
			st.StrokeWidth = chart.Disabled
		}
		seriesList = append(seriesList, chart.ContinuousSeries{
			Name:    tr.Name,
			XValues: xs,
			YValues: ys,
			YAxis:   chart.YAxisSecondary,
			Style:   st,
		})
		entries = append(entries, legendEntry{name: tr.Name, color: color, line: tr.Mode != "markers"})
	}
	if len(seriesList) == 0 {
		return nil, errors.New("figure has no points to draw")
	}

	l := fig.Layout
	xRange := xb.padded(0.02)
	if !mapping.numeric {
		xRange = &chart.ContinuousRange{Min: -0.5, Max: float64(len(mapping.labels)) - 0.5}
	}
	yRange := yb.padded(0.05)

	axisStyle := chart.Style{
		StrokeColor: parseColor(l.XAxis.LineColor),
		StrokeWidth: l.XAxis.LineWidth * scale,
		FontSize:    l.XAxis.TickFont.Size,
		FontColor:   drawing.ColorBlack,
	}
	gridStyle := chart.Style{
		StrokeColor: parseColor(l.XAxis.GridColor),
		StrokeWidth: l.XAxis.GridWidth * scale,
	}
	nameStyle := chart.Style{FontSize: l.XAxis.Title.Font.Size, FontColor: drawing.ColorBlack}

	c := &chart.Chart{
		Title:      l.Title.Text,
		TitleStyle: chart.Style{FontSize: l.Title.Font.Size, FontColor: drawing.ColorBlack},
		Width:      px(float64(cfg.Width), scale),
		Height:     px(float64(cfg.Height), scale),
		DPI:        style.BaseDPI * scale,
		Background: chart.Style{
			FillColor: parseColor(l.PaperBgColor),
			Padding: chart.Box{
				Top:    px(float64(l.Margin.T), scale),
				Left:   px(20, scale),
				Right:  px(legendWidth(entries, l.Legend.Font.Size), scale),
				Bottom: px(20, scale),
			},
		},
		Canvas: chart.Style{FillColor: parseColor(l.PlotBgColor)},
		XAxis: chart.XAxis{
			Name:           l.XAxis.Title.Text,
			NameStyle:      nameStyle,
			Style:          axisStyle,
			Range:          xRange,
			Ticks:          mapping.ticks(),
			TickPosition:   chart.TickPositionUnderTick,
			GridMajorStyle: gridStyle,
		},
		// Series are plotted against the secondary axis so the value axis is
		// drawn on the left; the primary axis shares its range and stays hidden.
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: yRange.Min, Max: yRange.Max},
		},
		YAxisSecondary: chart.YAxis{
			Name:           l.YAxis.Title.Text,
			NameStyle:      chart.Style{FontSize: l.YAxis.Title.Font.Size, FontColor: drawing.ColorBlack},
			Style:          axisStyle,
			Range:          yRange,
			GridMajorStyle: gridStyle,
			ValueFormatter: scaledFormatter(yScale),
		},
		Series: seriesList,
	}
	c.Elements = []chart.Renderable{
		frame(parseColor(l.XAxis.LineColor), l.XAxis.LineWidth*scale),
		legend(entries, l.Legend, scale),
	}
	return c, nil
}

// scaledFormatter labels ticks in data units.
func scaledFormatter(scale float64) chart.ValueFormatter {
	if scale == 1 {
		return nil
	}
	return func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return fmt.Sprintf("%v", v)
		}
		return strconv.FormatFloat(f*scale, 'g', 4, 64)
	}
}

func draw(fig *figure.Figure, cfg *style.Config, scale float64, provider chart.RendererProvider) ([]byte, error) {
	c, err := buildChart(fig, cfg, scale)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("go-chart: %w", err)
	}
	return buf.Bytes(), nil
}

func traceColor(tr figure.Trace) drawing.Color {
	if tr.Marker != nil && tr.Marker.Color != "" {
		return parseColor(tr.Marker.Color)
	}
	if tr.Line != nil && tr.Line.Color != "" {
		return parseColor(tr.Line.Color)
	}
	return chart.ColorBlue
}

// parseColor understands the color notations a figure carries: hex,
// rgba() and the names white and black.
func parseColor(s string) drawing.Color {
	switch {
	case s == "white":
		return drawing.ColorWhite
	case s == "black":
		return drawing.ColorBlack
	case len(s) > 0 && s[0] == '#':
		hex := s[1:]
		if len(hex) == 8 {
			hex = hex[:6]
		}
		return drawing.ColorFromHex(hex)
	}
	var r, g, b int
	var a float64
	if _, err := fmt.Sscanf(s, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err == nil {
		return drawing.Color{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(math.Round(a * 255))}
	}
	return drawing.ColorBlack
}
