package processing

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	apperrors "github.com/RMahshie/scientiflow/internal/errors"
	"github.com/RMahshie/scientiflow/internal/export"
	"github.com/RMahshie/scientiflow/internal/figure"
	"github.com/RMahshie/scientiflow/internal/metrics"
	"github.com/RMahshie/scientiflow/internal/series"
	"github.com/RMahshie/scientiflow/internal/style"
	"github.com/RMahshie/scientiflow/internal/tabular"
)

// ChartService runs the parse, build, style, assemble and export pipeline
// for one request at a time.
type ChartService interface {
	ParseUpload(ctx context.Context, filename string, content []byte) (*tabular.Dataset, error)
	GenerateChart(ctx context.Context, req *ChartRequest, palette string) (*ChartPreview, error)
	ExportChart(ctx context.Context, req *ChartRequest, opts ExportOptions) (*export.Export, error)
}

// Exporter encodes a figure into a file.
type Exporter interface {
	Encode(ctx context.Context, fig *figure.Figure, cfg *style.Config, format string) (*export.Export, error)
}

// ChartRequest describes a chart over previously uploaded data.
type ChartRequest struct {
	Data      *tabular.Dataset `validate:"required"`
	XColumn   string
	YColumns  []series.Spec `validate:"dive"`
	ChartType string        `validate:"required"`
	FileName  string
	Title     string
	XLabel    string
	YLabel    string
}

// ExportOptions select the quality preset, output format and overrides for
// an export. Nil overrides are absent.
type ExportOptions struct {
	Quality string
	Format  string
	Palette string
	Width   *int
	Height  *int
	DPI     *float64
}

// ChartPreview is a figure ready for the browser client.
type ChartPreview struct {
	Figure  *figure.Figure
	JSON    string
	Config  *style.Config
	Skipped []series.Skipped
}

type chartService struct {
	exporter Exporter
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// NewChartService creates a ChartService. m may be nil.
func NewChartService(exporter Exporter, m *metrics.Metrics) ChartService {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &chartService{
		exporter: exporter,
		metrics:  m,
		validate: v,
	}
}

func (s *chartService) ParseUpload(ctx context.Context, filename string, content []byte) (*tabular.Dataset, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	ds, err := tabular.Parse(filename, content)
	s.metrics.RecordUpload(format, err)
	if err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("Failed to parse upload")
		return nil, err
	}

	log.Info().
		Str("filename", filename).
		Int("columns", len(ds.Columns)).
		Int("rows", ds.Len()).
		Msg("Parsed upload")
	return ds, nil
}

func (s *chartService) GenerateChart(ctx context.Context, req *ChartRequest, palette string) (*ChartPreview, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	cfg, err := s.resolve(style.Options{Preset: style.DefaultPreset, Palette: palette})
	if err != nil {
		return nil, err
	}

	fig, built, err := s.assemble(req, cfg)
	s.metrics.RecordChart(chartTypeLabel(req.ChartType), skippedCount(built), err)
	if err != nil {
		return nil, err
	}

	out, err := fig.JSON()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeRenderBackend, err, "Failed to encode chart")
	}

	log.Info().
		Str("chartType", req.ChartType).
		Int("series", len(fig.Data)).
		Str("palette", cfg.Palette).
		Msg("Generated chart preview")

	return &ChartPreview{Figure: fig, JSON: out, Config: cfg, Skipped: built.Skipped}, nil
}

func (s *chartService) ExportChart(ctx context.Context, req *ChartRequest, opts ExportOptions) (*export.Export, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	cfg, err := s.resolve(style.Options{
		Preset:  opts.Quality,
		Width:   opts.Width,
		Height:  opts.Height,
		DPI:     opts.DPI,
		Palette: opts.Palette,
	})
	if err != nil {
		return nil, err
	}

	format := export.NormalizeFormat(opts.Format)
	fig, built, err := s.assemble(req, cfg)
	if err != nil {
		s.metrics.RecordExport(format, cfg.Preset, 0, err)
		return nil, err
	}

	start := time.Now()
	out, err := s.exporter.Encode(ctx, fig, cfg, opts.Format)
	elapsed := time.Since(start)
	s.metrics.ObserveRender(format, elapsed)
	s.metrics.RecordExport(format, cfg.Preset, len(built.Skipped), err)
	if err != nil {
		log.Error().Err(err).Str("format", opts.Format).Str("quality", cfg.Preset).Msg("Chart export failed")
		return nil, err
	}
	out.Skipped = built.SkippedNames()

	log.Info().
		Str("filename", out.Filename).
		Str("format", out.Format).
		Str("quality", out.Quality).
		Str("dimensions", out.Dimensions()).
		Int("bytes", len(out.Content)).
		Dur("renderTime", elapsed).
		Msg("Exported chart")
	return out, nil
}

func (s *chartService) resolve(opts style.Options) (*style.Config, error) {
	cfg, err := style.Resolve(opts)
	if err != nil {
		log.Warn().Err(err).Str("preset", opts.Preset).Msg("Invalid style parameters")
		return nil, err
	}
	if cfg.PaletteFallback {
		log.Warn().Str("requested", opts.Palette).Str("using", cfg.Palette).Msg("Unknown color palette, using default")
	}
	return cfg, nil
}

// assemble builds the request's series and lays out the figure.
func (s *chartService) assemble(req *ChartRequest, cfg *style.Config) (*figure.Figure, *series.Result, error) {
	ct, err := series.ParseChartType(req.ChartType)
	if err != nil {
		return nil, nil, err
	}

	ds := req.Data
	if len(ds.Columns) == 0 && len(ds.Rows) > 0 {
		ds = tabular.FromRows(ds.Rows)
	}

	built, err := series.Build(ds, series.Request{
		XColumn:   req.XColumn,
		Specs:     req.YColumns,
		ChartType: ct,
	}, cfg.Colors)
	if err != nil {
		log.Warn().Err(err).Str("xColumn", req.XColumn).Msg("Failed to build chart series")
		return nil, nil, err
	}
	for _, sk := range built.Skipped {
		log.Warn().Str("column", sk.Name).Str("reason", sk.Reason).Msg("Skipping series")
	}

	names := make([]string, len(built.Series))
	for i, sr := range built.Series {
		names[i] = sr.Name
	}
	labels := figure.DefaultLabels(figure.Labels{
		Title:  req.Title,
		XLabel: req.XLabel,
		YLabel: req.YLabel,
	}, req.FileName, req.XColumn, ct, names)

	return figure.Assemble(built.Series, ct, cfg, labels), built, nil
}

func (s *chartService) validateRequest(req *ChartRequest) error {
	if req == nil {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "Chart request is required")
	}
	if err := s.validate.Struct(req); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
		}
		return apperrors.Wrap(apperrors.ErrCodeInvalidRequest, err,
			"Invalid chart request: %s", strings.Join(fields, ", "))
	}
	return nil
}

// chartTypeLabel is the parsed chart type, or "invalid" when it does not parse.
func chartTypeLabel(raw string) string {
	ct, err := series.ParseChartType(raw)
	if err != nil {
		return "invalid"
	}
	return string(ct)
}

func skippedCount(r *series.Result) int {
	if r == nil {
		return 0
	}
	return len(r.Skipped)
}
