package figure

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/scientiflow/internal/series"
	"github.com/RMahshie/scientiflow/internal/style"
	"github.com/RMahshie/scientiflow/internal/tabular"
)

func manuscript(t *testing.T) *style.Config {
	t.Helper()
	cfg, err := style.Resolve(style.Options{Preset: style.PresetManuscript, Palette: "default"})
	require.NoError(t, err)
	return cfg
}

func sampleSeries() []*series.Series {
	return []*series.Series{
		{Name: "a", Color: "#1f77b4", X: []tabular.Cell{tabular.NewString("1"), tabular.NewString("2")}, Y: []float64{2, 4}},
		{Name: "b", Color: "#ff7f0e", X: []tabular.Cell{tabular.NewString("2"), tabular.NewString("3")}, Y: []float64{5, 6}},
	}
}

func TestAssemble_TraceShape(t *testing.T) {
	cfg := manuscript(t)

	tests := []struct {
		chartType series.ChartType
		wantType  string
		wantMode  string
		wantLine  bool
		outline   string
	}{
		{series.Line, "scatter", "lines+markers", true, ""},
		{series.Scatter, "scatter", "markers", false, MarkerOutline},
		{series.Bar, "bar", "", false, BarOutlineColor},
	}

	for _, tt := range tests {
		t.Run(string(tt.chartType), func(t *testing.T) {
			fig := Assemble(sampleSeries(), tt.chartType, cfg, Labels{Title: "T"})
			require.Len(t, fig.Data, 2)
			for i, tr := range fig.Data {
				assert.Equal(t, tt.wantType, tr.Type)
				assert.Equal(t, tt.wantMode, tr.Mode)
				assert.Equal(t, tt.wantLine, tr.Line != nil)
				require.NotNil(t, tr.Marker)
				assert.Equal(t, sampleSeries()[i].Color, tr.Marker.Color)
				if tt.outline != "" {
					require.NotNil(t, tr.Marker.Line)
					assert.Equal(t, tt.outline, tr.Marker.Line.Color)
				}
			}
			assert.Equal(t, "a", fig.Data[0].Name)
			assert.Equal(t, "b", fig.Data[1].Name)
		})
	}
}

func TestAssemble_Layout(t *testing.T) {
	cfg := manuscript(t)
	fig := Assemble(sampleSeries(), series.Line, cfg, Labels{Title: "Growth", XLabel: "t", YLabel: "a, b"})

	l := fig.Layout
	assert.Equal(t, 800, l.Width)
	assert.Equal(t, 600, l.Height)
	assert.Equal(t, "Growth", l.Title.Text)
	assert.Equal(t, 0.5, l.Title.X)
	assert.Equal(t, cfg.TitleFontSize, l.Title.Font.Size)
	assert.Equal(t, "white", l.PlotBgColor)
	assert.Equal(t, "white", l.PaperBgColor)
	assert.True(t, l.XAxis.Mirror)
	assert.True(t, l.YAxis.Mirror)
	assert.Equal(t, "outside", l.XAxis.Ticks)
	assert.Equal(t, 1.02, l.Legend.X)
	assert.Equal(t, "v", l.Legend.Orientation)
	assert.Equal(t, LegendBgColor, l.Legend.BgColor)
	assert.Equal(t, "t", l.XAxis.Title.Text)
}

func TestAssemble_DoesNotAliasSeries(t *testing.T) {
	ss := sampleSeries()
	fig := Assemble(ss, series.Line, manuscript(t), Labels{})
	fig.Data[0].Y[0] = 99
	assert.Equal(t, 2.0, ss[0].Y[0])
}

func TestDefaultLabels(t *testing.T) {
	tests := []struct {
		name     string
		in       Labels
		fileName string
		xColumn  string
		ct       series.ChartType
		names    []string
		want     Labels
	}{
		{
			name:     "from file and columns",
			fileName: "growth.csv", xColumn: "t", ct: series.Line, names: []string{"a", "b"},
			want: Labels{Title: "growth", XLabel: "t", YLabel: "a, b"},
		},
		{
			name: "no file name and no x column",
			ct:   series.Bar, names: []string{"a", "b", "c", "d"},
			want: Labels{Title: "Bar Chart", XLabel: "Index", YLabel: "Value"},
		},
		{
			name:     "explicit labels win",
			in:       Labels{Title: "Mine", XLabel: "Time (s)", YLabel: "Signal"},
			fileName: "data.json", xColumn: "t", ct: series.Scatter, names: []string{"a"},
			want: Labels{Title: "Mine", XLabel: "Time (s)", YLabel: "Signal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultLabels(tt.in, tt.fileName, tt.xColumn, tt.ct, tt.names))
		})
	}
}

func TestFigure_JSON(t *testing.T) {
	fig := Assemble(sampleSeries(), series.Scatter, manuscript(t), Labels{Title: "S"})
	s, err := fig.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &decoded))
	data := decoded["data"].([]any)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	assert.Equal(t, "markers", first["mode"])
	assert.Equal(t, []any{"1", "2"}, first["x"])

	layout := decoded["layout"].(map[string]any)
	assert.EqualValues(t, 800, layout["width"])
}
