package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownTag is returned when a token tag has no registered handler.
var ErrUnknownTag = errors.New("unknown tag")

// ErrMalformedToken is returned when a token payload does not match the shape its tag expects.
var ErrMalformedToken = errors.New("malformed token")

// ErrStructuralMismatch is returned when a node cannot be built from its children.
var ErrStructuralMismatch = errors.New("structural mismatch")

// ErrDocumentNotFound is returned when a cached document cannot be found in the store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrSourceUnavailable is returned when no AST source is configured or reachable.
var ErrSourceUnavailable = errors.New("ast source unavailable")

// ErrSourceFailed is returned when the AST source ran but could not parse the input.
var ErrSourceFailed = errors.New("ast source failed")

// ErrInvalidFormat is returned when the requested input format is not acceptable.
var ErrInvalidFormat = errors.New("invalid input format")

// UnknownTagError carries the offending tag and where it was found.
type UnknownTagError struct {
	Tag  string
	Path string
}

func (e *UnknownTagError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unknown tag %q", e.Tag)
	}
	return fmt.Sprintf("unknown tag %q at %s", e.Tag, e.Path)
}

func (e *UnknownTagError) Is(target error) bool { return target == ErrUnknownTag }

// MalformedTokenError describes a payload that failed arity or shape validation.
type MalformedTokenError struct {
	Tag      string
	Path     string
	Expected string
	Err      error
}

func (e *MalformedTokenError) Error() string {
	msg := fmt.Sprintf("malformed %s at %s: expected %s", e.Tag, e.Path, e.Expected)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedTokenError) Is(target error) bool { return target == ErrMalformedToken }

func (e *MalformedTokenError) Unwrap() error { return e.Err }

// StructuralMismatchError reports a node whose content rule rejected its children.
type StructuralMismatchError struct {
	NodeType string
	Path     string
	Err      error
}

func (e *StructuralMismatchError) Error() string {
	msg := fmt.Sprintf("cannot build %s", e.NodeType)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructuralMismatchError) Is(target error) bool { return target == ErrStructuralMismatch }

func (e *StructuralMismatchError) Unwrap() error { return e.Err }
