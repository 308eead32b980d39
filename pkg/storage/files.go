package storage

import (
	"fmt"
	"os"

	"github.com/dshills/botflow/pkg/flow"
	"github.com/dshills/botflow/pkg/validation"
)

// GraphFileStore reads and writes exported graphs inside a base
// directory. The format follows the file extension.
type GraphFileStore struct {
	paths *validation.PathValidator
}

// NewGraphFileStore creates a store rooted at baseDir.
func NewGraphFileStore(baseDir string) (*GraphFileStore, error) {
	v, err := validation.NewPathValidator(baseDir)
	if err != nil {
		return nil, err
	}
	return &GraphFileStore{paths: v}, nil
}

// Write encodes g to name. The file is replaced atomically through a
// temp file and rename. It returns the resolved path.
func (s *GraphFileStore) Write(name string, g flow.Graph) (string, error) {
	path, err := s.paths.ValidateGraphFile(name)
	if err != nil {
		return "", err
	}
	format, err := flow.FormatFromPath(path)
	if err != nil {
		return "", err
	}

	data, err := flow.Encode(g, format)
	if err != nil {
		return "", err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write graph file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to save graph file: %w", err)
	}
	return path, nil
}

// Read decodes and validates the graph stored in name.
func (s *GraphFileStore) Read(name string) (flow.Graph, error) {
	path, err := s.paths.ValidateGraphFile(name)
	if err != nil {
		return flow.Graph{}, err
	}
	format, err := flow.FormatFromPath(path)
	if err != nil {
		return flow.Graph{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return flow.Graph{}, fmt.Errorf("graph file %s: %w", name, ErrNotFound)
		}
		return flow.Graph{}, fmt.Errorf("failed to read graph file: %w", err)
	}
	return flow.Decode(data, format)
}
