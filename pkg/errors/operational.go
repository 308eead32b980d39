package errors

import (
	"fmt"
	"time"
)

// OperationalError adds the operation and the template/node it concerned
// to an underlying error so storage and session failures can be traced
// back to what the user was editing.
type OperationalError struct {
	Operation  string         // What operation was being performed
	TemplateID string         // Which template (if applicable)
	NodeID     string         // Which node (if applicable)
	Timestamp  time.Time      // When error occurred
	Attributes map[string]any // Additional context (optional)
	Cause      error          // Underlying error
}

// NewOperationalError wraps cause. It returns nil when cause is nil.
//
// Example:
//
//	if err := repo.Save(ctx, id, g); err != nil {
//	    return errors.NewOperationalError("saving draft", id, "", err)
//	}
func NewOperationalError(operation, templateID, nodeID string, cause error) *OperationalError {
	return NewOperationalErrorWithAttrs(operation, templateID, nodeID, cause, nil)
}

// NewOperationalErrorWithAttrs is NewOperationalError with extra context
// attributes.
func NewOperationalErrorWithAttrs(operation, templateID, nodeID string, cause error, attrs map[string]any) *OperationalError {
	if cause == nil {
		return nil
	}

	return &OperationalError{
		Operation:  operation,
		TemplateID: templateID,
		NodeID:     nodeID,
		Timestamp:  time.Now(),
		Attributes: attrs,
		Cause:      cause,
	}
}

// Error implements the error interface.
//
// Format: "operation: template={id} node={id}: {cause}". Empty ids are
// omitted.
func (e *OperationalError) Error() string {
	if e == nil {
		return "<nil OperationalError>"
	}

	msg := e.Operation
	if e.TemplateID != "" {
		msg += " template=" + e.TemplateID
	}
	if e.NodeID != "" {
		msg += " node=" + e.NodeID
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// LogAttrs returns the context as alternating key/value pairs suitable
// for slog.
func (e *OperationalError) LogAttrs() []any {
	if e == nil {
		return nil
	}
	attrs := []any{"op", e.Operation}
	if e.TemplateID != "" {
		attrs = append(attrs, "template", e.TemplateID)
	}
	if e.NodeID != "" {
		attrs = append(attrs, "node", e.NodeID)
	}
	for k, v := range e.Attributes {
		attrs = append(attrs, k, v)
	}
	return attrs
}
