package style

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"
)

// UsageStats counts how many times each style property was offered to an
// element by a matching rule. The count is taken before merging, so a value
// later overridden by another rule still counts.
type UsageStats map[string]int

// Add records one application of a property.
func (s UsageStats) Add(property string) {
	s[property]++
}

// Merge folds counts from another accumulator into this one.
func (s UsageStats) Merge(other UsageStats) {
	for property, count := range other {
		s[property] += count
	}
}

// Total returns the sum of all counts.
func (s UsageStats) Total() int {
	total := 0
	for _, count := range s {
		total += count
	}
	return total
}

// Lines renders the accumulated counts as report lines in natural property
// name order.
func (s UsageStats) Lines() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %d times", name, s[name]))
	}
	return lines
}
