package css

import (
	"fmt"
	"io"
	"strings"
)

// Declaration is a single property/value pair inside a rule.
type Declaration struct {
	Property string
	Value    string
}

// Rule represents a single style rule: selector text plus its declarations in
// source order. Property names are unique within a rule - a repeated property
// keeps its first position but takes the last value, the way a plain
// name-to-value mapping would behave.
type Rule struct {
	Selector     string
	Declarations []Declaration
}

// Get returns the value for a property, if declared.
func (r Rule) Get(name string) (string, bool) {
	for _, d := range r.Declarations {
		if d.Property == name {
			return d.Value, true
		}
	}
	return "", false
}

// Stylesheet represents a parsed CSS stylesheet. Only plain style rules are
// retained, in source order. Everything the parser had to skip is recorded in
// Warnings.
type Stylesheet struct {
	Rules    []Rule
	Warnings []string
}

// WriteTo writes the stylesheet back as CSS text in source order,
// implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, rule := range s.Rules {
		n, err := fmt.Fprintf(w, "%s {\n", rule.Selector)
		total += int64(n)
		if err != nil {
			return total, err
		}
		for _, d := range rule.Declarations {
			n, err = fmt.Fprintf(w, "  %s: %s;\n", d.Property, d.Value)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		n, err = fmt.Fprint(w, "}\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
		if i < len(s.Rules)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// RulesBySelector returns all rules with exactly the given selector text.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, rule := range s.Rules {
		if rule.Selector == selector {
			matches = append(matches, rule)
		}
	}
	return matches
}
