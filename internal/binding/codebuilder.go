package binding

import (
	"fmt"
	"strings"
)

// CodeBuilder accumulates indented source lines. It knows nothing about
// what it emits.
type CodeBuilder struct {
	buf         strings.Builder
	indent      int
	indentWidth int
	lines       int
}

// NewCodeBuilder creates a builder indenting by width spaces per level.
// Non-positive widths fall back to 4.
func NewCodeBuilder(width int) *CodeBuilder {
	if width <= 0 {
		width = 4
	}
	return &CodeBuilder{indentWidth: width}
}

// Indent increases the indentation level of subsequent lines.
func (b *CodeBuilder) Indent() { b.indent++ }

// Dedent decreases the indentation level, never below zero.
func (b *CodeBuilder) Dedent() {
	if b.indent > 0 {
		b.indent--
	}
}

// Level returns the current indentation level.
func (b *CodeBuilder) Level() int { return b.indent }

// Line writes one indented line. Embedded newlines start new lines at the
// same indentation.
func (b *CodeBuilder) Line(s string) {
	for _, part := range strings.Split(s, "\n") {
		b.writeLine(part)
	}
}

// Linef writes one formatted, indented line.
func (b *CodeBuilder) Linef(format string, args ...any) {
	b.Line(fmt.Sprintf(format, args...))
}

// Blank writes an empty line without trailing whitespace.
func (b *CodeBuilder) Blank() {
	b.buf.WriteByte('\n')
	b.lines++
}

// Comment writes a // comment, one per line of text.
func (b *CodeBuilder) Comment(text string) {
	for _, part := range strings.Split(text, "\n") {
		if part == "" {
			b.writeLine("//")
			continue
		}
		b.writeLine("// " + part)
	}
}

// Block writes open, runs body one level deeper, then writes close.
func (b *CodeBuilder) Block(open string, body func(), close string) {
	b.Line(open)
	b.Indent()
	body()
	b.Dedent()
	b.Line(close)
}

// Lines returns the number of lines written so far.
func (b *CodeBuilder) Lines() int { return b.lines }

func (b *CodeBuilder) String() string {
	return b.buf.String()
}

func (b *CodeBuilder) writeLine(s string) {
	if s == "" {
		b.Blank()
		return
	}
	b.buf.WriteString(strings.Repeat(" ", b.indent*b.indentWidth))
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
	b.lines++
}
