package models

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/scientiflow/internal/tabular"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
		PDF     bool      `json:"pdf_export" doc:"Whether the PDF converter is installed"`
	}
}

// FileData is a parsed table: its column names and one object per row.
// Row objects keep their source key order and number text.
type FileData struct {
	tabular.Dataset
}

// Schema describes rows as free-form objects; cell values may be any JSON
// scalar, or nested JSON for uploads that contain it.
func (FileData) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeObject,
		Description: "Parsed table returned by /upload",
		Properties: map[string]*huma.Schema{
			"columns": {
				Type:        huma.TypeArray,
				Items:       &huma.Schema{Type: huma.TypeString},
				Description: "Column names in source order",
			},
			"data": {
				Type:        huma.TypeArray,
				Items:       &huma.Schema{Type: huma.TypeObject, AdditionalProperties: true},
				Description: "One object per row keyed by column name",
			},
		},
		Required: []string{"data"},
	}
}

// ErrorDetail mirrors the body huma writes for failed requests.
type ErrorDetail struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}
