// Package validation checks user-provided input before it reaches the
// API client or the filesystem.
//
// Template ids and hosts are validated before a request is built.
// Export and import paths are resolved against a base directory with a
// PathValidator, which rejects absolute paths, ".." escapes and symlinks
// that leave the base, and restricts the file extension to the graph
// formats botflow can read and write:
//
//	v, err := validation.NewPathValidator(cwd)
//	if err != nil {
//	    return err
//	}
//	path, err := v.ValidateGraphFile(userInput)
//
// PathValidator is safe for concurrent use.
package validation
