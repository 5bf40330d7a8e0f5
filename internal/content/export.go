package content

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"slices"
	"strings"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" or "csv" (default json when empty).
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, true
	case "csv":
		return FormatCSV, true
	}
	return "", false
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	if f == FormatCSV {
		return ".csv"
	}
	return ".json"
}

// Selected returns the fields to export: the requested subset in canonical order,
// or every field that holds a value when fields is empty.
func Selected(c *Content, fields []Field) []Field {
	out := make([]Field, 0, len(AllFields))
	for _, f := range AllFields {
		if len(fields) > 0 && !slices.Contains(fields, f) {
			continue
		}
		if c.Get(f).IsZero() {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Encode serializes c in the given format.
func Encode(c *Content, fields []Field, format Format) ([]byte, error) {
	if format == FormatCSV {
		return EncodeCSV(c, fields)
	}
	return EncodeJSON(c, fields)
}

// EncodeJSON renders the selected fields as an indented JSON object keyed by
// wire key, in canonical field order.
func EncodeJSON(c *Content, fields []Field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range Selected(c, fields) {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.Get(f))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// EncodeCSV renders the selected fields as a two-column table (field, value).
// Lists are joined with " | " and line breaks are flattened to spaces.
func EncodeCSV(c *Content, fields []Field) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"field", "value"}); err != nil {
		return nil, err
	}
	for _, f := range Selected(c, fields) {
		value := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(c.Get(f).String())
		if err := w.Write([]string{f.Key(), value}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
