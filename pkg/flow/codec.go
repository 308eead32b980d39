package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an export file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// Encode serializes the graph.
func Encode(g Graph, f Format) ([]byte, error) {
	g = g.Clone()
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return nil, fmt.Errorf("failed to encode graph as YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode graph as YAML: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph as JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
}

// Decode parses a graph and validates it against the graph schema.
// Nodes without buttons come back with an empty, non-nil button list.
func Decode(data []byte, f Format) (Graph, error) {
	var g Graph
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &g); err != nil {
			return Graph{}, fmt.Errorf("failed to parse YAML graph: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &g); err != nil {
			return Graph{}, fmt.Errorf("failed to parse JSON graph: %w", err)
		}
	default:
		return Graph{}, fmt.Errorf("unsupported format %q", f)
	}

	if err := ValidateGraph(g); err != nil {
		return Graph{}, err
	}
	out := g.Clone()
	for i := range out.Nodes {
		if out.Nodes[i].Data.Buttons == nil {
			out.Nodes[i].Data.Buttons = []Button{}
		}
	}
	return out, nil
}
