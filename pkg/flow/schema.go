package flow

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed graph.schema.json
var graphSchema []byte

// ValidateGraph checks the graph against the embedded JSON schema and then
// against the structural rules in Graph.Check.
func ValidateGraph(g Graph) error {
	schemaLoader := gojsonschema.NewBytesLoader(graphSchema)
	documentLoader := gojsonschema.NewGoLoader(g.Clone())

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
	}

	if err := g.Check(); err != nil {
		return fmt.Errorf("invalid graph: %w", err)
	}
	return nil
}
