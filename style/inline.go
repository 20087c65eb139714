// Package style implements the inline style resolution core: decoding and
// encoding of style attribute text, rule-over-element application with
// last-applied-wins override, and per-property usage accounting.
package style

import (
	"strings"

	"smover/css"
)

// Inline is the working state of one element's style attribute: an ordered
// property-to-value mapping. Keys are unique, insertion order of first
// appearance is preserved so serialization stays deterministic.
type Inline struct {
	decls []css.Declaration
	index map[string]int
}

// ParseInline decodes style attribute text. Items are separated by ';', each
// item splits on the first ':'. Items without a colon and items with an empty
// property or value are dropped - existing malformed attributes must not
// poison the merge.
func ParseInline(attr string) *Inline {
	s := &Inline{index: make(map[string]int)}
	for item := range strings.SplitSeq(attr, ";") {
		name, value, found := strings.Cut(item, ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		s.Set(name, value)
	}
	return s
}

// Set assigns a value to a property, overwriting any previous value in place.
// A new property is appended at the end.
func (s *Inline) Set(name, value string) {
	if at, seen := s.index[name]; seen {
		s.decls[at].Value = value
		return
	}
	s.index[name] = len(s.decls)
	s.decls = append(s.decls, css.Declaration{Property: name, Value: value})
}

// Merge applies one rule's declarations on top of the current state in
// declaration order. Overlapping properties take the incoming value,
// everything else accumulates.
func (s *Inline) Merge(decls []css.Declaration) {
	for _, d := range decls {
		s.Set(d.Property, d.Value)
	}
}

// Get returns the current value of a property.
func (s *Inline) Get(name string) (string, bool) {
	if at, seen := s.index[name]; seen {
		return s.decls[at].Value, true
	}
	return "", false
}

// Len returns the number of declarations held.
func (s *Inline) Len() int {
	return len(s.decls)
}

// String encodes the declarations back into attribute text: name:value pairs
// joined by ';'. Empty state encodes to an empty string - the caller is
// expected to drop the attribute then.
func (s *Inline) String() string {
	if len(s.decls) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, d := range s.decls {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(d.Property)
		sb.WriteByte(':')
		sb.WriteString(d.Value)
	}
	return sb.String()
}
