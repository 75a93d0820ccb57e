// Package tabular turns uploaded CSV, JSON and XLSX files into a Dataset of
// loosely-typed cells, and coerces those cells to numbers for charting.
package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/RMahshie/scientiflow/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SupportedExtensions lists the upload formats Parse understands.
var SupportedExtensions = []string{".csv", ".json", ".xlsx"}

// Parse selects a parser by the file name's extension.
func Parse(filename string, content []byte) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(content)
	case ".json":
		return ParseJSON(content)
	case ".xlsx":
		return ParseXLSX(content)
	default:
		return nil, apperrors.New(apperrors.ErrCodeUnsupportedFormat, "File must be CSV, JSON or XLSX")
	}
}

// ParseCSV parses UTF-8 CSV text. The first record names the columns; later
// records whose field count differs from the header are dropped silently.
func ParseCSV(content []byte) (*Dataset, error) {
	if !utf8.Valid(content) {
		return nil, apperrors.New(apperrors.ErrCodeDecode, "CSV parsing error: file is not valid UTF-8 text")
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeMalformedCSV, err, "CSV parsing error: %v", err)
	}
	if len(records) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeEmptyInput, "CSV parsing error: Empty CSV")
	}
	return fromRecords(records, false), nil
}

// fromRecords zips records against the header. With pad set, short records are
// extended with empty strings instead of being dropped.
func fromRecords(records [][]string, pad bool) *Dataset {
	header := records[0]
	ds := &Dataset{Columns: uniqueNames(header), Rows: make([]Row, 0, len(records)-1)}
	for _, rec := range records[1:] {
		if pad && len(rec) < len(header) {
			rec = append(rec, make([]string, len(header)-len(rec))...)
		}
		if len(rec) != len(header) {
			continue
		}
		var row Row
		for i, name := range header {
			row.Set(name, NewString(rec[i]))
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// ParseJSON accepts either a list of objects or a single object. Columns are
// the keys of the first object; later objects may have any shape.
func ParseJSON(content []byte) (*Dataset, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(content, utf8BOM))
	if !json.Valid(trimmed) {
		return nil, apperrors.New(apperrors.ErrCodeMalformedJSON, "Invalid JSON format")
	}
	invalid := apperrors.New(apperrors.ErrCodeInvalidStructure, "Invalid JSON structure")

	switch trimmed[0] {
	case '{':
		var row Row
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeMalformedJSON, err, "Invalid JSON format")
		}
		return &Dataset{Columns: append([]string(nil), row.Keys()...), Rows: []Row{row}}, nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeMalformedJSON, err, "Invalid JSON format")
		}
		if len(elems) == 0 {
			return nil, invalid
		}
		rows := make([]Row, len(elems))
		for i, raw := range elems {
			err := json.Unmarshal(raw, &rows[i])
			switch {
			case err == nil:
			case i == 0:
				// Column names come from the first element, so it must be an object.
				return nil, invalid
			default:
				// Non-object elements past the first are kept as empty rows.
				rows[i] = Row{}
			}
		}
		return &Dataset{Columns: append([]string(nil), rows[0].Keys()...), Rows: rows}, nil
	default:
		return nil, invalid
	}
}

// ParseXLSX reads the first sheet of a workbook. Spreadsheet rows lose their
// trailing empty cells, so short rows are padded rather than dropped.
func ParseXLSX(content []byte) (*Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeMalformedSpreadsheet, err, "XLSX parsing error: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeEmptyInput, "XLSX parsing error: workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeMalformedSpreadsheet, err, "XLSX parsing error: %v", err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeEmptyInput, "XLSX parsing error: sheet %q is empty", sheets[0])
	}
	return fromRecords(records, true), nil
}
