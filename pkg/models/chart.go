package models

import (
	"mime/multipart"

	"github.com/RMahshie/scientiflow/internal/series"
	"github.com/RMahshie/scientiflow/internal/style"
)

// UploadRequest carries a CSV, JSON or XLSX file in the multipart field "file"
type UploadRequest struct {
	RawBody multipart.Form
}

// UploadResponse returns the parsed table
type UploadResponse struct {
	Body FileData
}

// YAxis selects one dependent column and its color
type YAxis struct {
	Name  string `json:"name" minLength:"1" doc:"Column to plot"`
	Color string `json:"color,omitempty" doc:"Hex color such as #1f77b4; empty or 'auto' picks from the palette"`
}

// ChartBody is the chart description shared by preview and export requests
type ChartBody struct {
	FileData  FileData `json:"fileData" doc:"Parsed table returned by /upload"`
	XAxis     string   `json:"xAxis,omitempty" doc:"Independent column; empty plots against the row index"`
	YAxes     []YAxis  `json:"yAxes" doc:"Dependent columns to plot, in legend order"`
	ChartType string   `json:"chartType" example:"line" doc:"line, scatter or bar"`
	FileName  string   `json:"fileName,omitempty" doc:"Uploaded file name, used for the default title"`
	Title     string   `json:"title,omitempty" doc:"Chart title"`
	XLabel    string   `json:"xLabel,omitempty" doc:"X axis title"`
	YLabel    string   `json:"yLabel,omitempty" doc:"Y axis title"`
}

// Specs converts the requested y axes into series specs
func (b *ChartBody) Specs() []series.Spec {
	specs := make([]series.Spec, len(b.YAxes))
	for i, y := range b.YAxes {
		specs[i] = series.Spec{Name: y.Name, Color: y.Color}
	}
	return specs
}

// GenerateChartRequest asks for a chart preview at manuscript styling
type GenerateChartRequest struct {
	ColorPalette string `query:"color_palette" default:"default" doc:"Palette name; unknown names fall back to default"`
	Body         ChartBody
}

// GenerateChartResponse carries the figure JSON for the browser to render
type GenerateChartResponse struct {
	Body struct {
		ChartData string           `json:"chartData" doc:"Plotly figure as a JSON string"`
		Palette   string           `json:"palette" doc:"Palette actually used"`
		Skipped   []series.Skipped `json:"skipped,omitempty" doc:"Requested columns left out because they held no numeric data"`
	}
}

// ExportChartRequest asks for a downloadable chart file
type ExportChartRequest struct {
	Quality      string  `query:"quality" default:"manuscript" doc:"Quality preset"`
	Format       string  `query:"format" default:"png" doc:"png, svg or pdf"`
	ColorPalette string  `query:"color_palette" default:"default" doc:"Palette name; unknown names fall back to default"`
	CustomWidth  int     `query:"custom_width" doc:"Width override in pixels; 0 keeps the preset"`
	CustomHeight int     `query:"custom_height" doc:"Height override in pixels; 0 keeps the preset"`
	CustomDPI    float64 `query:"custom_dpi" doc:"DPI override; sets scale to DPI/72. 0 keeps the preset"`
	Body         ChartBody
}

// ExportChartResponse streams the file with metadata headers
type ExportChartResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Quality            string `header:"X-Chart-Quality"`
	DPI                string `header:"X-Chart-DPI"`
	Dimensions         string `header:"X-Chart-Dimensions"`
	Scale              string `header:"X-Chart-Scale"`
	Palette            string `header:"X-Color-Palette"`
	Skipped            string `header:"X-Series-Skipped"`
	Body               []byte
}

// DimensionBounds reports the accepted override ranges
type DimensionBounds struct {
	MinWidth  int     `json:"min_width"`
	MaxWidth  int     `json:"max_width"`
	MinHeight int     `json:"min_height"`
	MaxHeight int     `json:"max_height"`
	MinScale  float64 `json:"min_scale"`
	MaxScale  float64 `json:"max_scale"`
}

// QualityPresetsResponse lists presets, formats and DPI guidance
type QualityPresetsResponse struct {
	Body struct {
		Presets          []style.Preset            `json:"presets"`
		Default          string                    `json:"default"`
		SupportedFormats []style.FormatInfo        `json:"supported_formats"`
		RecommendedDPI   []style.DPIRecommendation `json:"recommended_dpi"`
		Bounds           DimensionBounds           `json:"bounds"`
	}
}

// ColorPalettesResponse lists the palettes
type ColorPalettesResponse struct {
	Body struct {
		Palettes []style.Palette `json:"palettes"`
		Default  string          `json:"default"`
	}
}
