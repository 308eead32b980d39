package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"
)

// GraphExtensions are the file extensions export and import accept.
var GraphExtensions = []string{".yaml", ".yml", ".json"}

const defaultMaxPathLen = 1024

// PathValidator resolves user-provided file paths inside a base directory.
type PathValidator struct {
	basePath     string
	resolvedBase string
	maxPathLen   int
	validations  atomic.Uint64
	rejections   atomic.Uint64
}

// ValidationError is a rejected path with the reason it was rejected.
type ValidationError struct {
	UserPath     string
	Reason       string
	ResolvedPath string
	Timestamp    time.Time
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.ResolvedPath != "" {
		return fmt.Sprintf("path validation failed: %s (input: %s, resolved: %s)",
			e.Reason, e.UserPath, e.ResolvedPath)
	}
	return fmt.Sprintf("path validation failed: %s (input: %s)", e.Reason, e.UserPath)
}

// NewPathValidator creates a validator rooted at basePath, which must be an
// existing absolute directory.
func NewPathValidator(basePath string) (*PathValidator, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if !filepath.IsAbs(basePath) {
		return nil, fmt.Errorf("base path must be absolute: %s", basePath)
	}

	info, err := os.Stat(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("base path does not exist: %s", basePath)
		}
		return nil, fmt.Errorf("cannot access base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path is not a directory: %s", basePath)
	}

	resolvedBase, err := filepath.EvalSymlinks(basePath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve symbolic links in base path: %w", err)
	}

	return &PathValidator{
		basePath:     basePath,
		resolvedBase: resolvedBase,
		maxPathLen:   defaultMaxPathLen,
	}, nil
}

func (v *PathValidator) reject(userPath, resolved, reason string) (string, error) {
	v.rejections.Add(1)
	return "", &ValidationError{
		UserPath:     userPath,
		Reason:       reason,
		ResolvedPath: resolved,
		Timestamp:    time.Now(),
	}
}

// Validate returns the absolute, symlink-resolved form of userPath if it
// stays inside the base directory. The file itself need not exist yet,
// but its parent directory must.
func (v *PathValidator) Validate(userPath string) (string, error) {
	v.validations.Add(1)

	switch {
	case userPath == "":
		return v.reject(userPath, "", "path cannot be empty")
	case len(userPath) > v.maxPathLen:
		return v.reject(userPath, "", fmt.Sprintf("path length exceeds maximum of %d bytes", v.maxPathLen))
	case !filepath.IsLocal(userPath):
		// IsLocal also rejects Windows reserved names.
		return v.reject(userPath, "", "path escapes allowed directory")
	}

	fullPath := filepath.Join(v.basePath, filepath.Clean(userPath))

	resolved, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		parent, perr := filepath.EvalSymlinks(filepath.Dir(fullPath))
		if perr != nil {
			return v.reject(userPath, "", "cannot resolve path")
		}
		resolved = filepath.Join(parent, filepath.Base(fullPath))
	}

	rel, err := filepath.Rel(v.resolvedBase, resolved)
	if err != nil {
		return v.reject(userPath, resolved, "path is not relative to base")
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return v.reject(userPath, resolved, "resolved path escapes base directory")
	}

	return resolved, nil
}

// ValidateGraphFile is Validate plus a check that the extension is one of
// GraphExtensions.
func (v *PathValidator) ValidateGraphFile(userPath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(userPath))
	if !slices.Contains(GraphExtensions, ext) {
		v.validations.Add(1)
		return v.reject(userPath, "", fmt.Sprintf("unsupported extension %q (want one of %s)",
			ext, strings.Join(GraphExtensions, ", ")))
	}
	return v.Validate(userPath)
}

// Stats returns the number of validations performed and how many were
// rejected.
func (v *PathValidator) Stats() (validations, rejections uint64) {
	return v.validations.Load(), v.rejections.Load()
}
