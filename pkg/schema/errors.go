package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNodeType is returned when a node type name is not registered in the schema.
	ErrUnknownNodeType = errors.New("unknown node type")
	// ErrUnknownMarkType is returned when a mark type name is not registered in the schema.
	ErrUnknownMarkType = errors.New("unknown mark type")
	// ErrContentMismatch is returned when children cannot satisfy a node type's content expression.
	ErrContentMismatch = errors.New("content does not match node type")
	// ErrEmptyText is returned when a text node is built from an empty string.
	ErrEmptyText = errors.New("empty text nodes are not allowed")
	// ErrInvalidSpec is returned when a schema definition cannot be compiled.
	ErrInvalidSpec = errors.New("invalid schema definition")
)

// ValidationError represents a single attribute or node validation failure.
type ValidationError struct {
	Key    string // Attribute name or node path
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
