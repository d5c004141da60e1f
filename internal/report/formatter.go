// Package report turns inspected Node.js installations into the text printed by nvmlsg.
package report

import (
	"strings"

	"nvmlsg/internal/node"
)

// Formatter renders package listings one block per installation
type Formatter struct {
	header func(string) string
}

// NewFormatter creates a Formatter that prints headers unchanged
func NewFormatter() *Formatter {
	return &Formatter{}
}

// WithHeaderStyle decorates each block's header line (the global install path).
// Used for colour output only; the line content is left as npm printed it.
func (f *Formatter) WithHeaderStyle(style func(string) string) *Formatter {
	f.header = style
	return f
}

// Format joins the listings, separated by a blank line, and trims the result
func (f *Formatter) Format(records []node.Record) string {
	var b strings.Builder

	for _, rec := range records {
		// npm echoes the global prefix on the first line, packages follow
		lines := strings.Split(rec.Packages, "\n")
		globalPath := lines[0]
		packageList := strings.Join(lines[1:], "\n")

		if f.header != nil {
			globalPath = f.header(globalPath)
		}

		b.WriteString(globalPath)
		b.WriteString("\n")
		b.WriteString(packageList)
		b.WriteString("\n\n")
	}

	return strings.TrimSpace(b.String())
}
