package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/RMahshie/scientiflow/internal/errors"
	"github.com/RMahshie/scientiflow/internal/export"
	"github.com/RMahshie/scientiflow/internal/figure"
	"github.com/RMahshie/scientiflow/internal/processing"
	"github.com/RMahshie/scientiflow/internal/series"
	"github.com/RMahshie/scientiflow/internal/style"
	"github.com/RMahshie/scientiflow/internal/tabular"
	"github.com/RMahshie/scientiflow/pkg/models"
)

// MockChartService implements processing.ChartService for testing
type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) ParseUpload(ctx context.Context, filename string, content []byte) (*tabular.Dataset, error) {
	args := m.Called(ctx, filename, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tabular.Dataset), args.Error(1)
}

func (m *MockChartService) GenerateChart(ctx context.Context, req *processing.ChartRequest, palette string) (*processing.ChartPreview, error) {
	args := m.Called(ctx, req, palette)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processing.ChartPreview), args.Error(1)
}

func (m *MockChartService) ExportChart(ctx context.Context, req *processing.ChartRequest, opts processing.ExportOptions) (*export.Export, error) {
	args := m.Called(ctx, req, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.Export), args.Error(1)
}

func newTestAPI(t *testing.T, svc processing.ChartService, maxUpload int64) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	h := NewChartHandler(svc, maxUpload, func() bool { return true })

	huma.Post(api, "/upload", h.Upload)
	huma.Post(api, "/generate_chart", h.GenerateChart)
	huma.Post(api, "/export_chart", h.ExportChart)
	huma.Get(api, "/quality_presets", h.QualityPresets)
	huma.Get(api, "/color_palettes", h.ColorPalettes)
	huma.Get(api, "/health", h.Health)
	return api
}

func multipartFile(t *testing.T, field, filename string, content []byte) (string, *bytes.Buffer) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return "Content-Type: " + w.FormDataContentType(), body
}

func chartBody() map[string]any {
	return map[string]any{
		"fileData": map[string]any{
			"columns": []string{"t", "a"},
			"data": []map[string]any{
				{"t": 1, "a": 2},
				{"t": 2, "a": 4},
			},
		},
		"xAxis":     "t",
		"yAxes":     []map[string]any{{"name": "a", "color": "#ff0000"}},
		"chartType": "line",
		"fileName":  "growth.csv",
	}
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		maxUpload int64
		mockSetup func(*MockChartService)
		wantCode  int
	}{
		{
			name:      "valid csv",
			field:     "file",
			maxUpload: 1 << 20,
			mockSetup: func(svc *MockChartService) {
				ds, err := tabular.ParseCSV([]byte("t,a\n1,2\n"))
				require.NoError(t, err)
				svc.On("ParseUpload", mock.Anything, "growth.csv", []byte("t,a\n1,2\n")).Return(ds, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:      "wrong field name",
			field:     "upload",
			maxUpload: 1 << 20,
			mockSetup: func(svc *MockChartService) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "file too large",
			field:     "file",
			maxUpload: 4,
			mockSetup: func(svc *MockChartService) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "parse failure",
			field:     "file",
			maxUpload: 1 << 20,
			mockSetup: func(svc *MockChartService) {
				svc.On("ParseUpload", mock.Anything, "growth.csv", mock.Anything).
					Return(nil, apperrors.New(apperrors.ErrCodeEmptyInput, "The file contains no data rows"))
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockChartService)
			tt.mockSetup(svc)
			api := newTestAPI(t, svc, tt.maxUpload)

			contentType, body := multipartFile(t, tt.field, "growth.csv", []byte("t,a\n1,2\n"))
			resp := api.Post("/upload", contentType, body)

			assert.Equal(t, tt.wantCode, resp.Code, resp.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestUpload_ResponseShape(t *testing.T) {
	svc := new(MockChartService)
	ds, err := tabular.ParseCSV([]byte("t,a\n1,2\n2,x\n"))
	require.NoError(t, err)
	svc.On("ParseUpload", mock.Anything, "growth.csv", mock.Anything).Return(ds, nil)

	api := newTestAPI(t, svc, 1<<20)
	contentType, body := multipartFile(t, "file", "growth.csv", []byte("t,a\n1,2\n2,x\n"))
	resp := api.Post("/upload", contentType, body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got struct {
		Columns []string         `json:"columns"`
		Data    []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, []string{"t", "a"}, got.Columns)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "x", got.Data[1]["a"])
}

func TestGenerateChart(t *testing.T) {
	svc := new(MockChartService)
	preview := &processing.ChartPreview{
		Figure:  &figure.Figure{},
		JSON:    `{"data":[],"layout":{}}`,
		Config:  &style.Config{Palette: "colorblind"},
		Skipped: []series.Skipped{{Name: "label", Reason: "column contains no numeric values"}},
	}
	svc.On("GenerateChart", mock.Anything, mock.MatchedBy(func(req *processing.ChartRequest) bool {
		return req.XColumn == "t" &&
			len(req.YColumns) == 1 && req.YColumns[0].Name == "a" && req.YColumns[0].Color == "#ff0000" &&
			req.ChartType == "line" && req.Data.Len() == 2
	}), "colorblind").Return(preview, nil)

	api := newTestAPI(t, svc, 1<<20)
	resp := api.Post("/generate_chart?color_palette=colorblind", chartBody())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got struct {
		ChartData string           `json:"chartData"`
		Palette   string           `json:"palette"`
		Skipped   []series.Skipped `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, preview.JSON, got.ChartData)
	assert.Equal(t, "colorblind", got.Palette)
	assert.Equal(t, preview.Skipped, got.Skipped)
	svc.AssertExpectations(t)
}

func TestGenerateChart_DefaultPalette(t *testing.T) {
	svc := new(MockChartService)
	svc.On("GenerateChart", mock.Anything, mock.Anything, "default").
		Return(&processing.ChartPreview{JSON: "{}", Config: &style.Config{Palette: "default"}}, nil)

	api := newTestAPI(t, svc, 1<<20)
	resp := api.Post("/generate_chart", chartBody())
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	svc.AssertExpectations(t)
}

func TestGenerateChart_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"missing column", apperrors.New(apperrors.ErrCodeColumnNotFound, "Y-axis column 'zzz' not found in data"), http.StatusBadRequest},
		{"no valid series", apperrors.New(apperrors.ErrCodeNoValidSeries, "No valid data series found"), http.StatusBadRequest},
		{"invalid chart type", apperrors.New(apperrors.ErrCodeInvalidChartType, "Unsupported chart type 'pie'"), http.StatusBadRequest},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockChartService)
			svc.On("GenerateChart", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			api := newTestAPI(t, svc, 1<<20)
			resp := api.Post("/generate_chart", chartBody())
			assert.Equal(t, tt.wantCode, resp.Code)

			var detail models.ErrorDetail
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
			assert.Equal(t, tt.wantCode, detail.Status)
			if tt.wantCode == http.StatusBadRequest {
				assert.Equal(t, apperrors.UserMessage(tt.err), detail.Detail)
			}
		})
	}
}

func TestExportChart(t *testing.T) {
	svc := new(MockChartService)
	out := &export.Export{
		Content:  []byte("\x89PNG"),
		Format:   "png",
		MIMEType: "image/png",
		Filename: "chart_draft_144dpi_800x600_0123abcd.png",
		Quality:  "draft",
		DPI:      144,
		Width:    800,
		Height:   600,
		Scale:    2,
		Palette:  "nature",
		Skipped:  []string{"label"},
	}
	svc.On("ExportChart", mock.Anything, mock.Anything, mock.MatchedBy(func(opts processing.ExportOptions) bool {
		return opts.Quality == "draft" && opts.Format == "png" && opts.Palette == "nature" &&
			opts.Width == nil && opts.Height != nil && *opts.Height == 700 &&
			opts.DPI != nil && *opts.DPI == 144
	})).Return(out, nil)

	api := newTestAPI(t, svc, 1<<20)
	resp := api.Post("/export_chart?quality=draft&format=PNG&color_palette=nature&custom_width=0&custom_height=700&custom_dpi=144", chartBody())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=chart_draft_144dpi_800x600_0123abcd.png", resp.Header().Get("Content-Disposition"))
	assert.Equal(t, "draft", resp.Header().Get("X-Chart-Quality"))
	assert.Equal(t, "144", resp.Header().Get("X-Chart-DPI"))
	assert.Equal(t, "800x600", resp.Header().Get("X-Chart-Dimensions"))
	assert.Equal(t, "2", resp.Header().Get("X-Chart-Scale"))
	assert.Equal(t, "nature", resp.Header().Get("X-Color-Palette"))
	assert.Equal(t, "label", resp.Header().Get("X-Series-Skipped"))
	assert.Equal(t, out.Content, resp.Body.Bytes())
	svc.AssertExpectations(t)
}

func TestExportChart_Errors(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		mockSetup func(*MockChartService)
		wantCode  int
	}{
		{
			name:      "unsupported format",
			query:     "?format=gif",
			mockSetup: func(svc *MockChartService) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:  "unknown preset",
			query: "?quality=ultra",
			mockSetup: func(svc *MockChartService) {
				svc.On("ExportChart", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, apperrors.New(apperrors.ErrCodeUnknownPreset, "Unknown quality preset 'ultra'"))
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:  "dimension out of range",
			query: "?custom_width=100",
			mockSetup: func(svc *MockChartService) {
				svc.On("ExportChart", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, apperrors.New(apperrors.ErrCodeInvalidStyleParameter, "Width must be between 400 and 4000 pixels"))
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:  "backend failure",
			query: "?format=pdf",
			mockSetup: func(svc *MockChartService) {
				svc.On("ExportChart", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, apperrors.Wrap(apperrors.ErrCodeRenderBackend, errors.New("exit status 1"), "Failed to export pdf chart"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockChartService)
			tt.mockSetup(svc)

			api := newTestAPI(t, svc, 1<<20)
			resp := api.Post("/export_chart"+tt.query, chartBody())
			assert.Equal(t, tt.wantCode, resp.Code, resp.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestQualityPresets(t *testing.T) {
	api := newTestAPI(t, new(MockChartService), 1<<20)
	resp := api.Get("/quality_presets")
	require.Equal(t, http.StatusOK, resp.Code)

	var got struct {
		Presets []style.Preset `json:"presets"`
		Default string         `json:"default"`
		Formats []struct {
			Format string `json:"format"`
		} `json:"supported_formats"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Len(t, got.Presets, 5)
	assert.Equal(t, style.PresetManuscript, got.Default)
	assert.Len(t, got.Formats, 3)
}

func TestColorPalettes(t *testing.T) {
	api := newTestAPI(t, new(MockChartService), 1<<20)
	resp := api.Get("/color_palettes")
	require.Equal(t, http.StatusOK, resp.Code)

	var got struct {
		Palettes []style.Palette `json:"palettes"`
		Default  string          `json:"default"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Len(t, got.Palettes, 5)
	assert.Equal(t, style.DefaultPalette, got.Default)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, new(MockChartService), 1<<20)
	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"pdf_export":true`)
}

func TestExportChart_InvalidOverrides(t *testing.T) {
	svc := processing.NewChartService(export.NewEncoder(export.NewChartRenderer(nil)), nil)

	tests := []struct {
		name  string
		query string
	}{
		{"negative width", "?quality=draft&format=svg&custom_width=-500"},
		{"negative height", "?quality=draft&format=svg&custom_height=-300"},
		{"negative dpi", "?quality=draft&format=svg&custom_dpi=-144"},
		{"NaN dpi svg", "?quality=draft&format=svg&custom_dpi=NaN"},
		{"NaN dpi png", "?quality=draft&format=png&custom_dpi=NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, svc, 1<<20)
			resp := api.Post("/export_chart"+tt.query, chartBody())
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			var detail models.ErrorDetail
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
			assert.Contains(t, detail.Detail, "out of range")
		})
	}
}

func TestExportChart_ZeroOverridesAreAbsent(t *testing.T) {
	svc := new(MockChartService)
	svc.On("ExportChart", mock.Anything, mock.Anything, mock.MatchedBy(func(opts processing.ExportOptions) bool {
		return opts.Width == nil && opts.Height == nil && opts.DPI == nil
	})).Return(&export.Export{Content: []byte("<svg/>"), Format: "svg", MIMEType: "image/svg+xml"}, nil)

	api := newTestAPI(t, svc, 1<<20)
	resp := api.Post("/export_chart?format=svg&custom_width=0&custom_height=0&custom_dpi=0", chartBody())
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	svc.AssertExpectations(t)
}
