package export

import (
	"encoding/json"
	"fmt"
)

// JSONExporter renders datasets as an indented array of objects.
type JSONExporter struct{}

// NewJSONExporter builds a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// ContentType implements Renderer.
func (e *JSONExporter) ContentType() string { return "application/json; charset=utf-8" }

// Extension implements Renderer.
func (e *JSONExporter) Extension() string { return "json" }

// Render encodes the rows with two-space indentation.
func (e *JSONExporter) Render(data Dataset) ([]byte, error) {
	rows := data.Rows
	if rows == nil {
		rows = []map[string]string{}
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json export: %w", err)
	}
	return out, nil
}
