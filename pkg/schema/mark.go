package schema

import (
	"reflect"
	"strings"
)

// Mark is an inline annotation value. Two marks are equal when they share a
// type and have deeply equal attributes.
type Mark struct {
	Type  *MarkType
	Attrs map[string]any
}

// Eq reports value equality.
func (m Mark) Eq(other Mark) bool {
	return m.Type == other.Type && attrsEqual(m.Attrs, other.Attrs)
}

func attrsEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// IsInSet reports whether an equal mark is part of set.
func (m Mark) IsInSet(set MarkSet) bool {
	return set.index(m) >= 0
}

func (m Mark) String() string {
	if m.Type == nil {
		return "<nil>"
	}
	return m.Type.Name
}

// MarkSet is an ordered, duplicate free collection of marks.
// Methods never mutate the receiver; they return new sets.
type MarkSet []Mark

// NoMarks is the empty set.
var NoMarks = MarkSet(nil)

func (s MarkSet) index(m Mark) int {
	for i, existing := range s {
		if existing.Eq(m) {
			return i
		}
	}
	return -1
}

// AddToSet returns a set with m appended, unless an equal mark is already present.
func (s MarkSet) AddToSet(m Mark) MarkSet {
	if s.index(m) >= 0 {
		return s
	}
	out := make(MarkSet, len(s), len(s)+1)
	copy(out, s)
	return append(out, m)
}

// RemoveFromSet returns a set without the mark equal to m.
func (s MarkSet) RemoveFromSet(m Mark) MarkSet {
	i := s.index(m)
	if i < 0 {
		return s
	}
	if len(s) == 1 {
		return NoMarks
	}
	out := make(MarkSet, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// Equal reports ordered equality.
func (s MarkSet) Equal(other MarkSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !s[i].Eq(other[i]) {
			return false
		}
	}
	return true
}

func (s MarkSet) String() string {
	names := make([]string, len(s))
	for i, m := range s {
		names[i] = m.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
