// Package diag prints translation errors and warnings for the command line.
//
// Every diagnostic is one line:
//
//	nat.rs:3:14: error[unsupported_operator]: operator "%" is not supported
//
// Severity labels are colored when the output is a terminal and NO_COLOR is unset.
package diag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/broady/typ"
	"github.com/broady/typ/typgen/ir"
	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[1;31m"
	ansiYellow = "\x1b[1;33m"
)

// Printer writes diagnostics to a stream. It is safe for concurrent use.
type Printer struct {
	mu sync.Mutex
	w  io.Writer

	// Color enables ANSI escape sequences.
	Color bool
}

// New returns a Printer writing to w, with color enabled when w is a terminal.
func New(w io.Writer) *Printer {
	return &Printer{w: w, Color: colorEnabled(w)}
}

func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Errors prints every error joined in err and returns how many were printed.
func (p *Printer) Errors(err error) int {
	leaves := typ.Errors(err)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range leaves {
		fmt.Fprintln(p.w, p.format("error", ansiRed, e))
	}
	return len(leaves)
}

// Warnings prints each warning.
func (p *Printer) Warnings(warnings []ir.Warning) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, w := range warnings {
		var loc string
		if w.Source != nil && w.Source.File != "" {
			loc = w.Source.String()
		}
		fmt.Fprintln(p.w, p.line(loc, "warning", w.Code, ansiYellow, w.Message))
	}
}

// Format renders err as a diagnostic line without color.
func Format(err error) string {
	return (&Printer{}).format("error", "", err)
}

func (p *Printer) format(severity, color string, err error) string {
	var e *typ.Error
	if !errors.As(err, &e) || e != err {
		return p.line("", severity, "", color, err.Error())
	}
	var loc string
	if e.Pos.IsValid() {
		loc = e.Pos.String()
	} else if e.Pos.Filename != "" {
		loc = e.Pos.Filename
	}
	return p.line(loc, severity, string(e.Code), color, e.Message)
}

func (p *Printer) line(loc, severity, code, color, msg string) string {
	label := severity
	if code != "" {
		label += "[" + code + "]"
	}
	if p.Color {
		label = color + label + ansiReset
		if loc != "" {
			loc = ansiBold + loc + ansiReset
		}
	}
	if loc == "" {
		return label + ": " + msg
	}
	return loc + ": " + label + ": " + msg
}
