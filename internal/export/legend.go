package export

import (
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/RMahshie/scientiflow/internal/figure"
)

type legendEntry struct {
	name  string
	color drawing.Color
	line  bool
	fill  bool
}

const (
	legendGap    = 12.0
	legendInset  = 8.0
	legendSwatch = 18.0
)

// legendWidth estimates the right-hand padding the legend needs at scale 1.
func legendWidth(entries []legendEntry, fontSize float64) float64 {
	longest := 0
	for _, e := range entries {
		if n := len([]rune(e.name)); n > longest {
			longest = n
		}
	}
	return legendGap + 2*legendInset + legendSwatch + 6 + float64(longest)*fontSize*0.6 + 16
}

// legend draws a vertical legend outside the plot area, top-aligned with it.
func legend(entries []legendEntry, l figure.Legend, scale float64) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		if len(entries) == 0 {
			return
		}
		if f := defaults.GetFont(); f != nil {
			r.SetFont(f)
		}
		r.SetFontSize(l.Font.Size)
		r.SetFontColor(drawing.ColorBlack)

		textWidth, textHeight := 0, 0
		for _, e := range entries {
			tb := r.MeasureText(e.name)
			if tb.Width() > textWidth {
				textWidth = tb.Width()
			}
			if tb.Height() > textHeight {
				textHeight = tb.Height()
			}
		}

		inset := px(legendInset, scale)
		swatch := px(legendSwatch, scale)
		rowHeight := textHeight + inset
		left := canvasBox.Right + px(legendGap, scale)
		top := canvasBox.Top
		right := left + 2*inset + swatch + inset + textWidth
		bottom := top + inset + rowHeight*len(entries)

		r.SetFillColor(parseColor(l.BgColor))
		r.SetStrokeColor(parseColor(l.BorderColor))
		r.SetStrokeWidth(l.BorderWidth * scale)
		r.MoveTo(left, top)
		r.LineTo(right, top)
		r.LineTo(right, bottom)
		r.LineTo(left, bottom)
		r.LineTo(left, top)
		r.Close()
		r.FillStroke()

		for i, e := range entries {
			baseline := top + inset + rowHeight*i + textHeight
			mid := baseline - textHeight/2
			x := left + inset

			switch {
			case e.fill:
				r.SetFillColor(e.color)
				r.SetStrokeColor(e.color)
				r.SetStrokeWidth(scale)
				h := textHeight / 2
				r.MoveTo(x, mid-h/2)
				r.LineTo(x+swatch, mid-h/2)
				r.LineTo(x+swatch, mid+h/2)
				r.LineTo(x, mid+h/2)
				r.LineTo(x, mid-h/2)
				r.Close()
				r.FillStroke()
			case e.line:
				r.SetStrokeColor(e.color)
				r.SetStrokeWidth(2 * scale)
				r.MoveTo(x, mid)
				r.LineTo(x+swatch, mid)
				r.Stroke()
				fallthrough
			default:
				r.SetFillColor(e.color)
				r.SetStrokeColor(e.color)
				r.SetStrokeWidth(scale)
				r.Circle(3*scale, x+swatch/2, mid)
				r.FillStroke()
			}

			r.SetFontColor(drawing.ColorBlack)
			r.Text(e.name, x+swatch+inset, baseline)
		}
	}
}

// frame strokes the plot area border so the axes read as mirrored on all
// four sides.
func frame(color drawing.Color, width float64) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, _ chart.Style) {
		r.SetStrokeColor(color)
		r.SetStrokeWidth(width)
		r.MoveTo(canvasBox.Left, canvasBox.Top)
		r.LineTo(canvasBox.Right, canvasBox.Top)
		r.LineTo(canvasBox.Right, canvasBox.Bottom)
		r.LineTo(canvasBox.Left, canvasBox.Bottom)
		r.LineTo(canvasBox.Left, canvasBox.Top)
		r.Close()
		r.Stroke()
	}
}
