// Package export encodes an assembled figure into a downloadable PNG, SVG or
// PDF file together with the metadata headers describing how it was made.
package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/RMahshie/scientiflow/internal/errors"
	"github.com/RMahshie/scientiflow/internal/figure"
	"github.com/RMahshie/scientiflow/internal/style"
)

// filenameSpace namespaces the content-derived ids in export file names.
var filenameSpace = uuid.MustParse("5b0c7e0e-8f3a-4f5e-9d55-0b6a3f2c1e47")

// Renderer draws a figure in one output format.
type Renderer interface {
	Render(ctx context.Context, fig *figure.Figure, cfg *style.Config, format string) ([]byte, error)
}

// Export is an encoded chart ready to be sent to a client.
type Export struct {
	Content  []byte
	Format   string
	MIMEType string
	Filename string

	Quality string
	DPI     int
	Width   int
	Height  int
	Scale   float64
	Palette string
	// Skipped lists requested columns left out of the chart.
	Skipped []string
}

// Dimensions formats the logical size as WIDTHxHEIGHT.
func (e *Export) Dimensions() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Headers returns the metadata response headers for the export.
func (e *Export) Headers() map[string]string {
	h := map[string]string{
		"Content-Type":        e.MIMEType,
		"Content-Disposition": e.ContentDisposition(),
		"X-Chart-Quality":     e.Quality,
		"X-Chart-DPI":         strconv.Itoa(e.DPI),
		"X-Chart-Dimensions":  e.Dimensions(),
		"X-Chart-Scale":       e.ScaleString(),
		"X-Color-Palette":     e.Palette,
	}
	if len(e.Skipped) > 0 {
		h["X-Series-Skipped"] = strings.Join(e.Skipped, ",")
	}
	return h
}

// ContentDisposition marks the export as a file download.
func (e *Export) ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%s", e.Filename)
}

// ScaleString formats the scale without trailing zeros.
func (e *Export) ScaleString() string {
	return strconv.FormatFloat(e.Scale, 'f', -1, 64)
}

// Encoder turns figures into exports through a Renderer.
type Encoder struct {
	renderer Renderer
}

// NewEncoder creates an Encoder backed by r.
func NewEncoder(r Renderer) *Encoder {
	return &Encoder{renderer: r}
}

// NormalizeFormat maps unknown formats to PNG.
func NormalizeFormat(format string) string {
	if style.IsSupportedFormat(format) {
		return format
	}
	return style.FormatPNG
}

// MIMEType returns the content type for a supported format.
func MIMEType(format string) string {
	for _, f := range style.SupportedFormats() {
		if f.Format == format {
			return f.MIMEType
		}
	}
	return "application/octet-stream"
}

// Encode renders fig in the requested format. PNG output is rasterized at
// the configured scale; vector formats use the logical size and report a
// scale of 1. Unknown formats are treated as PNG.
func (e *Encoder) Encode(ctx context.Context, fig *figure.Figure, cfg *style.Config, format string) (*Export, error) {
	format = NormalizeFormat(format)

	content, err := e.renderer.Render(ctx, fig, cfg, format)
	if err != nil {
		if apperrors.GetCode(err) != "" {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeRenderBackend, err, "Failed to export %s chart", format)
	}

	scale := 1.0
	if format == style.FormatPNG {
		scale = cfg.Scale
	}
	dpi := int(cfg.DPI + 0.5)

	out := &Export{
		Content:  content,
		Format:   format,
		MIMEType: MIMEType(format),
		Quality:  cfg.Preset,
		DPI:      dpi,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Scale:    scale,
		Palette:  cfg.Palette,
	}
	out.Filename = Filename(cfg.Preset, dpi, cfg.Width, cfg.Height, format, content)
	return out, nil
}

// Filename builds chart_<preset>_<dpi>dpi_<w>x<h>_<id>.<ext>, where id is
// derived from the content so identical exports share a name.
func Filename(preset string, dpi, width, height int, format string, content []byte) string {
	id := uuid.NewSHA1(filenameSpace, content).String()[:8]
	return fmt.Sprintf("chart_%s_%ddpi_%dx%d_%s.%s", preset, dpi, width, height, id, format)
}
