package tabular

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Coerce converts a cell to a number or the missing marker. Strings are
// trimmed and parsed as decimal or scientific notation, booleans become 1 or 0,
// and anything non-finite or unparseable becomes missing.
func Coerce(c Cell) Cell {
	var v any
	switch c.kind {
	case KindNumber:
		v = c.num
	case KindBool:
		v = c.b
	case KindString:
		s := strings.TrimSpace(c.str)
		if s == "" {
			return Cell{}
		}
		v = s
	default:
		return Cell{}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Cell{}
	}
	if c.kind == KindNumber {
		return c
	}
	return NewNumber(f)
}

// CoerceColumn applies Coerce to every cell.
func CoerceColumn(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Coerce(c)
	}
	return out
}

// IsNumeric reports whether a coerced column holds at least one number.
func IsNumeric(cells []Cell) bool {
	for _, c := range cells {
		if c.kind == KindNumber {
			return true
		}
	}
	return false
}

// Normalize returns a copy of ds in which every column except xColumn has been
// coerced to numbers. The x column keeps its raw cells. ds is not modified.
func Normalize(ds *Dataset, xColumn string) *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), ds.Columns...),
		Rows:    make([]Row, len(ds.Rows)),
	}
	for i, r := range ds.Rows {
		row := r.clone()
		for _, col := range ds.Columns {
			if col == xColumn {
				continue
			}
			if c, ok := row.values[col]; ok {
				row.values[col] = Coerce(c)
			}
		}
		out.Rows[i] = row
	}
	return out
}
