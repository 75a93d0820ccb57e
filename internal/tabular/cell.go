package tabular

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant held by a Cell.
type Kind uint8

const (
	// KindMissing marks an absent, null or uncoercible value. It is the zero Kind.
	KindMissing Kind = iota
	KindString
	KindNumber
	KindBool
	// KindRaw holds a nested JSON object or array verbatim.
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindRaw:
		return "raw"
	default:
		return "missing"
	}
}

// Cell is a single loosely-typed table value. The zero Cell is missing.
type Cell struct {
	kind Kind
	str  string // string value, or the source text of a number
	num  float64
	b    bool
	raw  json.RawMessage
}

// Missing returns the missing marker.
func Missing() Cell { return Cell{} }

// NewString returns a string cell.
func NewString(s string) Cell { return Cell{kind: KindString, str: s} }

// NewNumber returns a numeric cell.
func NewNumber(f float64) Cell { return Cell{kind: KindNumber, num: f} }

// NewBool returns a boolean cell.
func NewBool(b bool) Cell { return Cell{kind: KindBool, b: b} }

// NewRaw returns a cell wrapping nested JSON.
func NewRaw(raw json.RawMessage) Cell {
	return Cell{kind: KindRaw, raw: append(json.RawMessage(nil), raw...)}
}

func (c Cell) Kind() Kind { return c.kind }

func (c Cell) IsMissing() bool { return c.kind == KindMissing }

// Float returns the numeric value for number cells.
func (c Cell) Float() (float64, bool) {
	if c.kind != KindNumber {
		return 0, false
	}
	return c.num, true
}

// Value returns the cell as a plain Go value: nil, string, float64, bool or
// json.RawMessage.
func (c Cell) Value() any {
	switch c.kind {
	case KindString:
		return c.str
	case KindNumber:
		return c.num
	case KindBool:
		return c.b
	case KindRaw:
		return c.raw
	default:
		return nil
	}
}

// String renders the cell for display, e.g. as a category axis label.
func (c Cell) String() string {
	switch c.kind {
	case KindString:
		return c.str
	case KindNumber:
		if c.str != "" {
			return c.str
		}
		return strconv.FormatFloat(c.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.b)
	case KindRaw:
		return string(c.raw)
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same variant and value.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindString:
		return c.str == o.str
	case KindNumber:
		return c.num == o.num
	case KindBool:
		return c.b == o.b
	case KindRaw:
		return bytes.Equal(c.raw, o.raw)
	default:
		return true
	}
}

// MarshalJSON encodes the cell as its JSON scalar. Numbers keep their source
// text when they were decoded from JSON; non-finite numbers encode as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindString:
		return json.Marshal(c.str)
	case KindNumber:
		if math.IsNaN(c.num) || math.IsInf(c.num, 0) {
			return []byte("null"), nil
		}
		if c.str != "" {
			return []byte(c.str), nil
		}
		return []byte(strconv.FormatFloat(c.num, 'g', -1, 64)), nil
	case KindBool:
		return json.Marshal(c.b)
	case KindRaw:
		return c.raw, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON value into the matching variant.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty JSON value")
	}
	switch data[0] {
	case 'n':
		*c = Cell{}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = NewString(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = NewBool(b)
	case '{', '[':
		*c = NewRaw(data)
	default:
		text := string(data)
		f, err := strconv.ParseFloat(text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return fmt.Errorf("invalid JSON number %q: %w", text, err)
		}
		// Out-of-range literals parse to ±Inf and are dropped by Coerce.
		*c = Cell{kind: KindNumber, num: f, str: text}
	}
	return nil
}
