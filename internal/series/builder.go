// Package series turns normalized table columns into the paired x/y series a
// chart is drawn from.
package series

import (
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/RMahshie/scientiflow/internal/errors"
	"github.com/RMahshie/scientiflow/internal/tabular"
)

// ChartType names a supported chart kind.
type ChartType string

const (
	Line    ChartType = "line"
	Scatter ChartType = "scatter"
	Bar     ChartType = "bar"
)

// ChartTypes lists the supported chart kinds.
var ChartTypes = []ChartType{Line, Scatter, Bar}

// ParseChartType validates a chart type name.
func ParseChartType(s string) (ChartType, error) {
	ct := ChartType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ChartTypes {
		if ct == known {
			return ct, nil
		}
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidChartType,
		"Unsupported chart type %q. Use line, scatter or bar", s)
}

// AutoColor is the sentinel asking for the next palette color.
const AutoColor = "auto"

// Spec asks for one dependent column to be plotted.
type Spec struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color,omitempty"`
}

// Request is a set of dependent columns plotted against one independent
// column. An empty XColumn plots against the row index.
type Request struct {
	XColumn   string
	Specs     []Spec
	ChartType ChartType
}

// Series is a cleaned, paired sequence of points. X and Y have equal length
// and contain no missing values.
type Series struct {
	Name  string
	Color string
	X     []tabular.Cell
	Y     []float64
}

// Len returns the number of points.
func (s *Series) Len() int { return len(s.Y) }

// Skipped records a requested column that was left out of the chart.
type Skipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is the outcome of Build.
type Result struct {
	Series  []*Series
	Skipped []Skipped
	// Data is the normalized dataset the series were cut from.
	Data *tabular.Dataset
}

// SkippedNames returns the names of the skipped columns.
func (r *Result) SkippedNames() []string {
	names := make([]string, len(r.Skipped))
	for i, s := range r.Skipped {
		names[i] = s.Name
	}
	return names
}

var validate = validator.New()

// ValidColor reports whether c is a usable hex color.
func ValidColor(c string) bool {
	return validate.Var(c, "required,hexcolor") == nil
}

// Build validates the requested columns against ds and pairs each numeric
// one with the independent column. Missing columns fail the whole request;
// non-numeric columns are skipped and reported.
func Build(ds *tabular.Dataset, req Request, palette []string) (*Result, error) {
	if req.XColumn != "" && !ds.HasColumn(req.XColumn) {
		return nil, apperrors.New(apperrors.ErrCodeColumnNotFound,
			"X-axis column '%s' not found in data", req.XColumn)
	}

	norm := tabular.Normalize(ds, req.XColumn)
	result := &Result{Data: norm}

	var xs []tabular.Cell
	if req.XColumn != "" {
		xs = norm.Column(req.XColumn)
	} else {
		xs = make([]tabular.Cell, norm.Len())
		for i := range xs {
			xs[i] = tabular.NewNumber(float64(i))
		}
	}

	for _, spec := range req.Specs {
		if !norm.HasColumn(spec.Name) {
			return nil, apperrors.New(apperrors.ErrCodeColumnNotFound,
				"Y-axis column '%s' not found in data", spec.Name)
		}
		ys := norm.Column(spec.Name)
		if !tabular.IsNumeric(ys) {
			result.Skipped = append(result.Skipped, Skipped{
				Name:   spec.Name,
				Reason: "column contains no numeric values",
			})
			continue
		}

		s := pair(spec.Name, xs, ys)
		if s.Len() == 0 {
			result.Skipped = append(result.Skipped, Skipped{
				Name:   spec.Name,
				Reason: "no rows have both an x and a y value",
			})
			continue
		}
		s.Color = pickColor(spec.Color, palette, len(result.Series))
		result.Series = append(result.Series, s)
	}

	if len(result.Series) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNoValidSeries,
			"No valid numeric data found for any of the selected columns")
	}
	return result, nil
}

func pair(name string, xs, ys []tabular.Cell) *Series {
	s := &Series{Name: name}
	for i := range ys {
		if missingX(xs[i]) {
			continue
		}
		y, ok := ys[i].Float()
		if !ok {
			continue
		}
		s.X = append(s.X, xs[i])
		s.Y = append(s.Y, y)
	}
	return s
}

func missingX(c tabular.Cell) bool {
	return c.IsMissing() || (c.Kind() == tabular.KindString && c.String() == "")
}

func pickColor(requested string, palette []string, idx int) string {
	c := strings.TrimSpace(requested)
	if c != "" && !strings.EqualFold(c, AutoColor) && ValidColor(c) {
		return c
	}
	if len(palette) == 0 {
		return ""
	}
	return palette[idx%len(palette)]
}
