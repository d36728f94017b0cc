package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one preview row. Columns keeps the order the backend sent them in.
type Row struct {
	Columns []string
	Values  map[string]any
}

// NewRow builds a row from parallel column and value slices
func NewRow(columns []string, values []any) Row {
	r := Row{
		Columns: make([]string, 0, len(columns)),
		Values:  make(map[string]any, len(columns)),
	}
	for i, c := range columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.Set(c, v)
	}
	return r
}

// Set assigns a column value, appending the column if it is new
func (r *Row) Set(column string, value any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	if _, ok := r.Values[column]; !ok {
		r.Columns = append(r.Columns, column)
	}
	r.Values[column] = value
}

// Get returns the value for a column
func (r Row) Get(column string) (any, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// MarshalJSON writes the row as an object with keys in column order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Values[c])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object while preserving key order
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("preview row must be a JSON object")
	}

	*r = Row{Values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// PreviewPayload is either a set of preview rows or an error message, never both
type PreviewPayload struct {
	PreviewRows []Row  `json:"preview_rows,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewPreviewRows builds a successful preview. A nil slice is stored as empty.
func NewPreviewRows(rows []Row) *PreviewPayload {
	if rows == nil {
		rows = []Row{}
	}
	return &PreviewPayload{PreviewRows: rows}
}

// NewPreviewError builds an error preview
func NewPreviewError(msg string) *PreviewPayload {
	return &PreviewPayload{Error: msg}
}

// IsError reports whether the payload carries an error instead of rows
func (p *PreviewPayload) IsError() bool {
	return p != nil && p.Error != ""
}

// Columns returns the union of row columns in first-seen order
func (p *PreviewPayload) Columns() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range p.PreviewRows {
		for _, c := range r.Columns {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			cols = append(cols, c)
		}
	}
	return cols
}

// normalize enforces the one-shape invariant after decoding
func (p *PreviewPayload) normalize() {
	if p.Error != "" {
		p.PreviewRows = nil
	} else if p.PreviewRows == nil {
		p.PreviewRows = []Row{}
	}
}

// MarshalJSON writes exactly one of the two shapes
func (p PreviewPayload) MarshalJSON() ([]byte, error) {
	if p.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{p.Error})
	}
	rows := p.PreviewRows
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(struct {
		PreviewRows []Row `json:"preview_rows"`
	}{rows})
}

// UnmarshalJSON decodes either shape and drops rows when an error is present
func (p *PreviewPayload) UnmarshalJSON(data []byte) error {
	type wire PreviewPayload
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = PreviewPayload(w)
	p.normalize()
	return nil
}
