package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiDim    = "\x1b[2m"
)

// printer writes status lines, coloured when stdout is a terminal.
type printer struct {
	stdout, stderr io.Writer
	color          bool
}

func newPrinter(stdout, stderr io.Writer) *printer {
	return &printer{stdout: stdout, stderr: stderr, color: colorEnabled(stdout)}
}

// colorEnabled follows the NO_COLOR convention and only colours terminals.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *printer) ok(s string) string  { return p.paint(ansiGreen, s) }
func (p *printer) dim(s string) string { return p.paint(ansiDim, s) }

func (p *printer) linef(format string, args ...any) {
	fmt.Fprintf(p.stdout, format+"\n", args...)
}

func (p *printer) warnf(format string, args ...any) {
	fmt.Fprintf(p.stderr, "%s %s\n", p.paint(ansiYellow, "warning:"), fmt.Sprintf(format, args...))
}

func (p *printer) errorf(format string, args ...any) {
	fmt.Fprintf(p.stderr, "%s %s\n", p.paint(ansiRed, "error:"), fmt.Sprintf(format, args...))
}
