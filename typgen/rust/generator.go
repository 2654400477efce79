// Package rust renders translated modules as Rust source code.
package rust

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/broady/typ/typgen/ir"
)

// RustGenerator writes one <module>.rs file per module.
type RustGenerator struct{}

var _ Generator = (*RustGenerator)(nil)

// Name returns "rust".
func (*RustGenerator) Name() string { return "rust" }

// Generate renders m and writes it to opts.Sink.
func (g *RustGenerator) Generate(ctx context.Context, m *ir.Module, opts GenerateOptions) (*GenerateResult, error) {
	if opts.Sink == nil {
		return nil, errors.New("sink is required")
	}
	content, warnings, err := Render(m, opts.Config)
	if err != nil {
		return nil, err
	}

	path := FileName(m)
	if err := opts.Sink.WriteFile(ctx, path, content); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return &GenerateResult{
		Files:          []OutputFile{{Path: path, Size: int64(len(content))}},
		DeclsGenerated: len(m.Decls),
		Warnings:       warnings,
	}, nil
}

// FileName returns the output path of a module.
func FileName(m *ir.Module) string {
	name := m.Name
	if name == "" {
		name = "types"
	}
	return sanitizeIdentifier(name) + ".rs"
}

// Render returns the Rust source of m. Declarations are separated by a blank line.
func Render(m *ir.Module, cfg GeneratorConfig) ([]byte, []ir.Warning, error) {
	e := NewEmitter(cfg)
	var (
		buf      bytes.Buffer
		warnings []ir.Warning
	)
	if cfg.Header != "" {
		buf.WriteString(strings.TrimRight(cfg.Header, "\n"))
		buf.WriteString("\n\n")
	}
	for i, d := range m.Decls {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		w, err := e.EmitDecl(&buf, d)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		warnings = append(warnings, w...)
	}

	out := buf.String()
	if cfg.TrailingNewline && out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if cfg.LineEnding == "crlf" {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	return []byte(out), warnings, nil
}
