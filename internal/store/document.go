// Package store reads and writes catalog documents: JSON and JSONL entry
// files, per-name group files and a SQLite table of projected sizes.
package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"catalogsize/internal/models"
	"catalogsize/pkg/metadata"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// Store errors.
var (
	ErrUnknownFormat = errors.New("unknown document format")
	ErrNoEntries     = errors.New(`document has no "entries" list`)
)

// metaSuffix names the metadata sidecar of a JSONL file.
const metaSuffix = ".meta.json"

// FormatOf infers the document format from a file extension.
func FormatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), "."+FormatJSONL) {
		return FormatJSONL
	}

	return FormatJSON
}

// LoadDocument reads a document in the format its extension names. A JSONL
// file holds one entry per line; its metadata, if any, lives in a sidecar.
func LoadDocument(path string) (*models.Document, error) {
	if FormatOf(path) == FormatJSONL {
		return loadJSONL(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var raw struct {
		Metadata *metadata.Metadata `json:"metadata"`
		Entries  *[]models.Record   `json:"entries"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if raw.Entries == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoEntries)
	}

	return &models.Document{Metadata: raw.Metadata, Entries: *raw.Entries}, nil
}

func loadJSONL(path string) (*models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	doc := &models.Document{Entries: []models.Record{}}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++

		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		var rec models.Record
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", line, err)
		}

		doc.Entries = append(doc.Entries, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data, err := os.ReadFile(path + metaSuffix)
	switch {
	case err == nil:
		doc.Metadata = &metadata.Metadata{}
		if err := json.Unmarshal(data, doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	return doc, nil
}

// SaveDocument writes doc to path in format, creating parent directories.
func SaveDocument(path string, doc *models.Document, format string, pretty bool) error {
	if mkdirErr := os.MkdirAll(filepath.Dir(path), 0755); mkdirErr != nil {
		return fmt.Errorf("failed to create directory: %w", mkdirErr)
	}

	switch format {
	case FormatJSON, "":
		return writeJSON(path, doc, pretty)
	case FormatJSONL:
		return saveJSONL(path, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func saveJSONL(path string, doc *models.Document) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	for i, rec := range doc.Entries {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if doc.Metadata == nil {
		return nil
	}

	return writeJSON(path+metaSuffix, doc.Metadata, true)
}

func writeJSON(path string, v any, pretty bool) error {
	var (
		data []byte
		err  error
	)

	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
