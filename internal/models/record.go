// Package models defines the catalog records and documents shared by the
// projection and clustering tools.
package models

import (
	"encoding/json"
	"maps"
	"strconv"
	"strings"

	"catalogsize/pkg/metadata"
)

// Record is one catalog entry: field name to string, number, bool or null.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}

	return maps.Clone(r)
}

// Has reports whether the field is present and not null.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// String returns a text field, trimmed. Numbers are not converted.
func (r Record) String(field string) (string, bool) {
	s, ok := r[field].(string)
	if !ok {
		return "", false
	}

	return strings.TrimSpace(s), true
}

// Float returns a numeric field as float64.
func (r Record) Float(field string) (float64, bool) {
	return Number(r[field])
}

// Number converts the numeric value types found in decoded records.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}

	return 0, false
}

// Document is the persisted form of a batch: {"metadata": ..., "entries": [...]}.
type Document struct {
	Metadata *metadata.Metadata `json:"metadata,omitempty"`
	Entries  []Record           `json:"entries"`
}
