package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	apperrors "github.com/RMahshie/scientiflow/internal/errors"
	"github.com/RMahshie/scientiflow/internal/processing"
	"github.com/RMahshie/scientiflow/internal/style"
	"github.com/RMahshie/scientiflow/pkg/models"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// ChartHandler handles upload, chart and catalogue requests
type ChartHandler struct {
	chartSvc       processing.ChartService
	maxUploadBytes int64
	pdfAvailable   func() bool
}

// NewChartHandler creates a new chart handler. pdfAvailable reports whether
// PDF export can currently run; it may be nil.
func NewChartHandler(chartSvc processing.ChartService, maxUploadBytes int64, pdfAvailable func() bool) *ChartHandler {
	return &ChartHandler{
		chartSvc:       chartSvc,
		maxUploadBytes: maxUploadBytes,
		pdfAvailable:   pdfAvailable,
	}
}

// toHTTPError maps pipeline errors to responses: bad input is a 400 with the
// pipeline's message as detail, everything else is a 500.
func toHTTPError(err error) error {
	msg := apperrors.UserMessage(err)
	if apperrors.IsClientError(err) {
		return huma.Error400BadRequest(msg, err)
	}
	return huma.Error500InternalServerError(msg, err)
}

// Health reports service liveness
func (h *ChartHandler) Health(ctx context.Context, _ *struct{}) (*models.HealthResponse, error) {
	resp := &models.HealthResponse{}
	resp.Body.Status = "healthy"
	resp.Body.Version = Version
	resp.Body.Time = time.Now()
	resp.Body.PDF = h.pdfAvailable != nil && h.pdfAvailable()
	return resp, nil
}

// Upload parses an uploaded data file into columns and rows
func (h *ChartHandler) Upload(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error) {
	files := req.RawBody.File["file"]
	if len(files) == 0 {
		return nil, huma.Error400BadRequest("No file uploaded. Send the file in the multipart field 'file'.")
	}
	fh := files[0]
	log.Info().Str("filename", fh.Filename).Int64("size", fh.Size).Msg("Upload received")

	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return nil, huma.Error400BadRequest(fmt.Sprintf("File too large. Maximum size is %d MB.", h.maxUploadBytes>>20))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, huma.Error400BadRequest("Could not read uploaded file", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, huma.Error400BadRequest("Could not read uploaded file", err)
	}

	ds, err := h.chartSvc.ParseUpload(ctx, fh.Filename, content)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &models.UploadResponse{Body: models.FileData{Dataset: *ds}}, nil
}

func chartRequest(body *models.ChartBody) *processing.ChartRequest {
	ds := body.FileData.Dataset
	return &processing.ChartRequest{
		Data:      &ds,
		XColumn:   body.XAxis,
		YColumns:  body.Specs(),
		ChartType: body.ChartType,
		FileName:  body.FileName,
		Title:     body.Title,
		XLabel:    body.XLabel,
		YLabel:    body.YLabel,
	}
}

// GenerateChart builds a chart preview at manuscript styling
func (h *ChartHandler) GenerateChart(ctx context.Context, req *models.GenerateChartRequest) (*models.GenerateChartResponse, error) {
	log.Info().
		Str("chartType", req.Body.ChartType).
		Str("xAxis", req.Body.XAxis).
		Int("yAxes", len(req.Body.YAxes)).
		Str("palette", req.ColorPalette).
		Msg("Chart preview requested")

	preview, err := h.chartSvc.GenerateChart(ctx, chartRequest(&req.Body), req.ColorPalette)
	if err != nil {
		return nil, toHTTPError(err)
	}

	resp := &models.GenerateChartResponse{}
	resp.Body.ChartData = preview.JSON
	resp.Body.Palette = preview.Config.Palette
	resp.Body.Skipped = preview.Skipped
	return resp, nil
}

// overrideInt treats zero, the value of an omitted query parameter, as
// absent. Anything else goes to the style resolver for bounds checking.
func overrideInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func overrideFloat(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

// ExportChart renders a chart file at the requested quality
func (h *ChartHandler) ExportChart(ctx context.Context, req *models.ExportChartRequest) (*models.ExportChartResponse, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if !style.IsSupportedFormat(format) {
		return nil, huma.Error400BadRequest(fmt.Sprintf("Unsupported export format %q. Use png, svg or pdf.", req.Format))
	}

	log.Info().
		Str("quality", req.Quality).
		Str("format", format).
		Str("palette", req.ColorPalette).
		Int("customWidth", req.CustomWidth).
		Int("customHeight", req.CustomHeight).
		Float64("customDPI", req.CustomDPI).
		Msg("Chart export requested")

	out, err := h.chartSvc.ExportChart(ctx, chartRequest(&req.Body), processing.ExportOptions{
		Quality: req.Quality,
		Format:  format,
		Palette: req.ColorPalette,
		Width:   overrideInt(req.CustomWidth),
		Height:  overrideInt(req.CustomHeight),
		DPI:     overrideFloat(req.CustomDPI),
	})
	if err != nil {
		return nil, toHTTPError(err)
	}

	headers := out.Headers()
	return &models.ExportChartResponse{
		ContentType:        headers["Content-Type"],
		ContentDisposition: headers["Content-Disposition"],
		Quality:            headers["X-Chart-Quality"],
		DPI:                headers["X-Chart-DPI"],
		Dimensions:         headers["X-Chart-Dimensions"],
		Scale:              headers["X-Chart-Scale"],
		Palette:            headers["X-Color-Palette"],
		Skipped:            headers["X-Series-Skipped"],
		Body:               out.Content,
	}, nil
}

// QualityPresets lists the quality presets and export formats
func (h *ChartHandler) QualityPresets(ctx context.Context, _ *struct{}) (*models.QualityPresetsResponse, error) {
	resp := &models.QualityPresetsResponse{}
	resp.Body.Presets = style.Presets()
	resp.Body.Default = style.DefaultPreset
	resp.Body.SupportedFormats = style.SupportedFormats()
	resp.Body.RecommendedDPI = style.RecommendedDPI()
	resp.Body.Bounds = models.DimensionBounds{
		MinWidth:  style.MinWidth,
		MaxWidth:  style.MaxWidth,
		MinHeight: style.MinHeight,
		MaxHeight: style.MaxHeight,
		MinScale:  style.MinScale,
		MaxScale:  style.MaxScale,
	}
	return resp, nil
}

// ColorPalettes lists the color palettes
func (h *ChartHandler) ColorPalettes(ctx context.Context, _ *struct{}) (*models.ColorPalettesResponse, error) {
	resp := &models.ColorPalettesResponse{}
	resp.Body.Palettes = style.Palettes()
	resp.Body.Default = style.DefaultPalette
	return resp, nil
}
