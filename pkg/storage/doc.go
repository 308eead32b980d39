// Package storage persists botflow state on the local machine: the
// encrypted session in the system keyring, drafts of edited graphs in
// SQLite, and exported graphs as YAML or JSON files.
package storage

import "errors"

// ErrNotFound is returned when a credential or draft does not exist.
var ErrNotFound = errors.New("not found")
