package style

import "fmt"

// Diagnostics is an append-only list of human-readable messages produced
// during a run. It is owned by the driver - nothing here is global.
type Diagnostics struct {
	entries []string
}

// Append adds one diagnostic message.
func (d *Diagnostics) Append(msg string) {
	d.entries = append(d.entries, msg)
}

// Appendf adds one formatted diagnostic message.
func (d *Diagnostics) Appendf(format string, args ...any) {
	d.entries = append(d.entries, fmt.Sprintf(format, args...))
}

// Entries returns accumulated messages in append order.
func (d *Diagnostics) Entries() []string {
	return d.entries
}

// Empty reports whether anything was recorded.
func (d *Diagnostics) Empty() bool {
	return len(d.entries) == 0
}
