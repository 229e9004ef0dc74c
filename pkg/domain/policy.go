package domain

import (
	"fmt"
	"strings"
)

// MismatchPolicy decides what happens when a closed frame cannot be turned into a valid node.
type MismatchPolicy int

const (
	// MismatchFail aborts the conversion with a StructuralMismatchError.
	MismatchFail MismatchPolicy = iota
	// MismatchDrop omits the offending node and keeps converting.
	// The document root is never dropped.
	MismatchDrop
)

func (p MismatchPolicy) String() string {
	switch p {
	case MismatchFail:
		return "fail"
	case MismatchDrop:
		return "drop"
	default:
		return fmt.Sprintf("MismatchPolicy(%d)", int(p))
	}
}

// ParseMismatchPolicy converts a configuration value into a MismatchPolicy.
// The empty string selects MismatchFail.
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return MismatchFail, nil
	case "drop":
		return MismatchDrop, nil
	default:
		return MismatchFail, fmt.Errorf("unsupported mismatch policy: %q", s)
	}
}
