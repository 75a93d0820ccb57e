package tabular

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Row maps column names to cells and remembers the order keys were added.
type Row struct {
	keys   []string
	values map[string]Cell
}

// NewRow builds a row from parallel key and cell slices.
func NewRow(keys []string, cells []Cell) Row {
	var r Row
	for i, k := range keys {
		if i < len(cells) {
			r.Set(k, cells[i])
		}
	}
	return r
}

// Set stores c under key. An existing key keeps its position.
func (r *Row) Set(key string, c Cell) {
	if r.values == nil {
		r.values = make(map[string]Cell)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = c
}

// Get returns the cell stored under key.
func (r Row) Get(key string) (Cell, bool) {
	c, ok := r.values[key]
	return c, ok
}

// Keys returns the row's keys in insertion order.
func (r Row) Keys() []string { return r.keys }

func (r Row) Len() int { return len(r.keys) }

func (r Row) clone() Row {
	out := Row{keys: append([]string(nil), r.keys...), values: make(map[string]Cell, len(r.values))}
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// MarshalJSON writes the row as an object with keys in insertion order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ErrNotObject is returned when a row is decoded from a JSON value that is
// not an object.
var ErrNotObject = errors.New("row must be a JSON object")

// UnmarshalJSON decodes a JSON object keeping its key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotObject
	}
	*r = Row{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var c Cell
		if err := c.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		r.Set(key, c)
	}
	_, err = dec.Token()
	return err
}

// Dataset is a parsed table: column names in source order plus row objects.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"data"`
}

// FromRows builds a dataset whose columns are the union of the rows' keys in
// order of first appearance.
func FromRows(rows []Row) *Dataset {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for _, k := range r.keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return &Dataset{Columns: cols, Rows: rows}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// HasColumn reports whether name is one of the dataset's columns.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns one cell per row for name. Rows lacking the key yield missing.
func (d *Dataset) Column(name string) []Cell {
	out := make([]Cell, len(d.Rows))
	for i, r := range d.Rows {
		out[i], _ = r.Get(name)
	}
	return out
}
