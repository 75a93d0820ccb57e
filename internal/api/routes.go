package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/RMahshie/scientiflow/internal/api/handlers"
	"github.com/RMahshie/scientiflow/internal/metrics"
	"github.com/RMahshie/scientiflow/internal/processing"
)

// Options tune the registered operations
type Options struct {
	MaxUploadBytes int64
	PDFAvailable   func() bool
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(router chi.Router, api huma.API, chartSvc processing.ChartService, m *metrics.Metrics, opts Options) {
	// Initialize handlers
	chartHandler := handlers.NewChartHandler(chartSvc, opts.MaxUploadBytes, opts.PDFAvailable)

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
		Tags:        []string{"Service"},
	}, chartHandler.Health)

	// Register data routes
	uploadOp := huma.Operation{
		OperationID: "uploadFile",
		Method:      http.MethodPost,
		Path:        "/upload",
		Summary:     "Upload a data file",
		Description: "Parses a CSV, JSON or XLSX file into column names and row objects",
		Tags:        []string{"Data"},
	}
	if opts.MaxUploadBytes > 0 {
		// leave room for the multipart envelope around the file
		uploadOp.MaxBodyBytes = opts.MaxUploadBytes + 1<<20
	}
	huma.Register(api, uploadOp, chartHandler.Upload)

	// Register chart routes
	huma.Register(api, huma.Operation{
		OperationID: "generateChart",
		Method:      http.MethodPost,
		Path:        "/generate_chart",
		Summary:     "Generate a chart preview",
		Description: "Builds a Plotly figure from uploaded data at manuscript styling",
		Tags:        []string{"Charts"},
	}, chartHandler.GenerateChart)

	huma.Register(api, huma.Operation{
		OperationID: "exportChart",
		Method:      http.MethodPost,
		Path:        "/export_chart",
		Summary:     "Export a chart file",
		Description: "Renders the chart as PNG, SVG or PDF at a quality preset with optional size and DPI overrides",
		Tags:        []string{"Charts"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Chart file",
				Content: map[string]*huma.MediaType{
					"image/png":       {},
					"image/svg+xml":   {},
					"application/pdf": {},
				},
			},
		},
	}, chartHandler.ExportChart)

	// Register catalogue routes
	huma.Register(api, huma.Operation{
		OperationID: "qualityPresets",
		Method:      http.MethodGet,
		Path:        "/quality_presets",
		Summary:     "List quality presets",
		Description: "Returns the quality presets, supported export formats and recommended DPI values",
		Tags:        []string{"Catalogue"},
	}, chartHandler.QualityPresets)

	huma.Register(api, huma.Operation{
		OperationID: "colorPalettes",
		Method:      http.MethodGet,
		Path:        "/color_palettes",
		Summary:     "List color palettes",
		Description: "Returns the color palettes and when to use them",
		Tags:        []string{"Catalogue"},
	}, chartHandler.ColorPalettes)

	if m != nil {
		router.Handle("/metrics", m.Handler())
	}

	// Serve OpenAPI spec at /api/docs
	router.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		spec, err := api.OpenAPI().MarshalJSON()
		if err != nil {
			http.Error(w, "Failed to generate OpenAPI spec", http.StatusInternalServerError)
			return
		}
		w.Write(spec)
	})
}
