package export

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
)

// barSeries draws one bar per point on a continuous x axis. Bars of
// several series share a slot around each x position; offset shifts this
// series within the slot.
type barSeries struct {
	name   string
	xs     []float64
	ys     []float64
	offset float64
	width  float64
	yAxis  chart.YAxisType
	style  chart.Style
}

func (b *barSeries) GetName() string { return b.name }

func (b *barSeries) GetYAxis() chart.YAxisType { return b.yAxis }

func (b *barSeries) GetStyle() chart.Style { return b.style }

func (b *barSeries) Len() int { return len(b.ys) }

func (b *barSeries) GetValues(i int) (float64, float64) { return b.xs[i], b.ys[i] }

func (b *barSeries) Validate() error {
	if len(b.xs) != len(b.ys) {
		return fmt.Errorf("bar series %q: %d x values for %d y values", b.name, len(b.xs), len(b.ys))
	}
	if b.width <= 0 {
		return fmt.Errorf("bar series %q: bar width must be positive", b.name)
	}
	return nil
}

// Render fills each bar from the zero line, or from the nearest edge of the
// y range when zero is outside it.
func (b *barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	st := b.style.InheritFrom(defaults)

	base := math.Min(math.Max(0, yrange.GetMin()), yrange.GetMax())
	baseY := canvasBox.Bottom - yrange.Translate(base)

	for i := range b.ys {
		center := b.xs[i] + b.offset
		left := canvasBox.Left + xrange.Translate(center-b.width/2)
		right := canvasBox.Left + xrange.Translate(center+b.width/2)
		top := canvasBox.Bottom - yrange.Translate(b.ys[i])

		r.SetFillColor(st.FillColor)
		r.SetStrokeColor(st.StrokeColor)
		r.SetStrokeWidth(st.StrokeWidth)
		r.MoveTo(left, top)
		r.LineTo(right, top)
		r.LineTo(right, baseY)
		r.LineTo(left, baseY)
		r.LineTo(left, top)
		r.Close()
		r.FillStroke()
	}
}
