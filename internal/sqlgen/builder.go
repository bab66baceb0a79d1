// Package sqlgen provides low-level SQL text construction helpers for the
// compiler package. It knows nothing about cubes; it only manages lines,
// indentation and clause joining.
package sqlgen

import (
	"fmt"
	"strings"
)

// Builder builds SQL with automatic indentation management. Use it for
// multi-line statement construction where managing indentation manually
// would be error-prone.
type Builder struct {
	lines     []string
	indent    int
	indentStr string
}

// NewBuilder creates a Builder with 2-space indentation.
func NewBuilder() *Builder {
	return &Builder{indentStr: "  "}
}

// Line adds a line at the current indentation level.
func (b *Builder) Line(format string, args ...any) *Builder {
	line := fmt.Sprintf(format, args...)
	if b.indent > 0 && line != "" {
		line = strings.Repeat(b.indentStr, b.indent) + line
	}
	b.lines = append(b.lines, line)
	return b
}

// LineIf adds a line only if the condition is true.
func (b *Builder) LineIf(cond bool, format string, args ...any) *Builder {
	if cond {
		return b.Line(format, args...)
	}
	return b
}

// Block executes fn with increased indentation, restoring it afterwards.
func (b *Builder) Block(fn func(*Builder)) *Builder {
	b.indent++
	fn(b)
	b.indent--
	return b
}

// String returns the built SQL as a single string.
func (b *Builder) String() string {
	return strings.Join(b.lines, "\n")
}

// Joiner accumulates clauses and joins them with a separator, filtering
// out empty strings.
type Joiner struct {
	sep   string
	parts []string
}

// NewJoiner creates a Joiner with the given separator.
func NewJoiner(sep string) *Joiner {
	return &Joiner{sep: sep}
}

// Add appends the non-empty parts.
func (j *Joiner) Add(parts ...string) *Joiner {
	for _, p := range parts {
		if p != "" {
			j.parts = append(j.parts, p)
		}
	}
	return j
}

// Len returns the number of accumulated parts.
func (j *Joiner) Len() int { return len(j.parts) }

// String joins the accumulated parts.
func (j *Joiner) String() string {
	return strings.Join(j.parts, j.sep)
}

// QuoteIdent quotes a SQL identifier with double quotes, doubling any
// embedded quote. Qualified names keep their dots unquoted per part.
func QuoteIdent(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
