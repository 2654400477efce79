// Package typgen translates source files into type-level Rust modules.
//
// A Generator reads each input, parses it with package syntax, translates it
// with package translate and renders the resulting module with package rust:
//
//	typgen.FromFiles("nat.rs", "list.rs").
//	    Indent("tab", 0).
//	    ToDir("./src/gen")
//
// Inputs are independent. A failing file does not stop the others; all
// failures are returned joined.
package typgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/broady/typ"
	"github.com/broady/typ/syntax"
	"github.com/broady/typ/typgen/ir"
	"github.com/broady/typ/typgen/rust"
	"github.com/broady/typ/typgen/sink"
	"github.com/broady/typ/typgen/translate"
)

// Generator provides a fluent API for code generation.
// Create with FromFiles, FromSource or FromConfig and configure with method chaining.
type Generator struct {
	ctx     context.Context
	sources []source
	cfg     Config
}

type source struct {
	name string
	src  string
}

// Result describes a generation run.
type Result struct {
	// Files lists the files that were written, in input order.
	Files []rust.OutputFile

	// Modules are the translated modules, in input order.
	Modules []*ir.Module

	// DeclsGenerated is the total number of rendered declarations.
	DeclsGenerated int

	// Warnings contains non-fatal issues from translation and rendering.
	Warnings []ir.Warning

	// Content holds the generated files by path. Only set by Generate.
	Content map[string][]byte
}

// FromFiles creates a Generator translating the named files.
func FromFiles(paths ...string) *Generator {
	g := &Generator{}
	g.cfg.Inputs = append(g.cfg.Inputs, paths...)
	return g
}

// FromSource creates a Generator translating in-memory source.
// The name determines the output file name and appears in diagnostics.
func FromSource(name, src string) *Generator {
	return (&Generator{}).Source(name, src)
}

// FromConfig creates a Generator from a loaded configuration.
func FromConfig(cfg *Config) *Generator {
	g := &Generator{cfg: *cfg}
	g.cfg.Inputs = append([]string(nil), cfg.Inputs...)
	return g
}

// Files adds input files.
func (g *Generator) Files(paths ...string) *Generator {
	g.cfg.Inputs = append(g.cfg.Inputs, paths...)
	return g
}

// Source adds an in-memory input.
func (g *Generator) Source(name, src string) *Generator {
	g.sources = append(g.sources, source{name: name, src: src})
	return g
}

// WithConfig replaces the configuration. Inputs already added are kept and
// the configuration's inputs are appended to them.
func (g *Generator) WithConfig(cfg *Config) *Generator {
	inputs := append(append([]string(nil), g.cfg.Inputs...), cfg.Inputs...)
	g.cfg = *cfg
	g.cfg.Inputs = inputs
	return g
}

// WithContext sets the context passed to output sinks.
func (g *Generator) WithContext(ctx context.Context) *Generator {
	g.ctx = ctx
	return g
}

// WithLogger sets the logger for progress and debug output.
func (g *Generator) WithLogger(l *slog.Logger) *Generator {
	g.cfg.Logger = l
	return g
}

// Indent sets the indentation style ("space" or "tab") and width.
func (g *Generator) Indent(style string, size int) *Generator {
	g.cfg.IndentStyle = style
	g.cfg.IndentSize = size
	return g
}

// LineEnding sets the line ending: "lf" or "crlf".
func (g *Generator) LineEnding(ending string) *Generator {
	g.cfg.LineEnding = ending
	return g
}

// Header replaces the header comment. An empty header omits it.
func (g *Generator) Header(header string) *Generator {
	g.cfg.Header = header
	g.cfg.NoHeader = header == ""
	return g
}

// Comments precedes every declaration with its source location.
func (g *Generator) Comments() *Generator {
	g.cfg.Comments = true
	return g
}

// NoAliases suppresses the type alias emitted for every function.
func (g *Generator) NoAliases() *Generator {
	g.cfg.NoAliases = true
	return g
}

// Debug logs the rendered expansion of every input.
func (g *Generator) Debug() *Generator {
	g.cfg.Debug = true
	return g
}

// ToDir generates files to the specified directory.
// An empty dir uses the configured OutDir.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(dir string) (*Result, error) {
	if dir == "" {
		dir = g.cfg.OutDir
	}
	if dir == "" {
		return nil, errors.New("output directory is required")
	}
	cfg := applyConfigDefaults(&g.cfg)
	return g.run(cfg, &sink.FilesystemSink{Root: dir, Mode: 0o644, Overwrite: *cfg.Overwrite})
}

// ToWriter streams the generated files to w. With more than one input each
// file is preceded by a "// name.rs" line.
func (g *Generator) ToWriter(w io.Writer) (*Result, error) {
	s := sink.NewWriterSink(w)
	s.Banner = len(g.cfg.Inputs)+len(g.sources) > 1
	return g.run(applyConfigDefaults(&g.cfg), s)
}

// Generate returns generated files in memory without writing to disk.
// Use ToDir() to write files to disk instead.
func (g *Generator) Generate() (*Result, error) {
	mem := sink.NewMemorySink()
	result, err := g.run(applyConfigDefaults(&g.cfg), mem)
	if result != nil {
		result.Content = mem.Files()
	}
	return result, err
}

// Check translates and renders every input without writing anything.
func (g *Generator) Check() (*Result, error) {
	return g.run(applyConfigDefaults(&g.cfg), nil)
}

// run processes every input. The result describes what was generated even
// when some inputs failed; err joins the failures.
func (g *Generator) run(cfg *Config, out sink.OutputSink) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx := g.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var inputs []source
	var errs []error
	for _, path := range cfg.Inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read input: %w", err))
			continue
		}
		inputs = append(inputs, source{name: path, src: string(data)})
	}
	inputs = append(inputs, g.sources...)
	if len(inputs) == 0 && len(errs) == 0 {
		return nil, errors.New("no inputs")
	}

	result := &Result{}
	written := make(map[string]string)
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return result, errors.Join(append(errs, err)...)
		}
		m, content, err := g.file(cfg, in)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		path := rust.FileName(m)
		if prev, ok := written[path]; ok {
			errs = append(errs, fmt.Errorf("%s: output %s already generated from %s", in.name, path, prev))
			continue
		}
		written[path] = in.name

		if out != nil {
			if err := out.WriteFile(ctx, path, content); err != nil {
				errs = append(errs, fmt.Errorf("failed to write %s: %w", path, err))
				continue
			}
			result.Files = append(result.Files, rust.OutputFile{Path: path, Size: int64(len(content))})
		}
		result.Modules = append(result.Modules, m)
		result.DeclsGenerated += len(m.Decls)
		result.Warnings = append(result.Warnings, m.Warnings...)
		cfg.Logger.Debug("generated", "input", in.name, "output", path, "decls", len(m.Decls))
	}
	return result, errors.Join(errs...)
}

// file translates one input and renders it. The module's warnings include
// those raised while rendering.
func (g *Generator) file(cfg *Config, in source) (*ir.Module, []byte, error) {
	f, err := syntax.ParseFile(in.name, in.src)
	if err != nil {
		return nil, nil, withFile(err, in.name)
	}
	opts, err := translate.ResolveOptions(cfg.translateOptions(), f)
	if err != nil {
		return nil, nil, withFile(err, in.name)
	}
	m, err := translate.Translate(f, opts)
	if err != nil {
		return nil, nil, withFile(err, in.name)
	}
	if errs := m.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("%s: invalid module: %w", in.name, errors.Join(errs...))
	}

	content, warnings, err := rust.Render(m, cfg.rustConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render %s: %w", in.name, err)
	}
	for _, w := range warnings {
		m.AddWarning(w)
	}
	if opts.Debug {
		cfg.Logger.Info("expansion", "input", in.name, "source", string(content))
	}
	return m, content, nil
}

// withFile names the input in every diagnostic that lacks a file.
func withFile(err error, name string) error {
	leaves := typ.Errors(err)
	for i, e := range leaves {
		if te, ok := e.(*typ.Error); ok {
			leaves[i] = te.WithFile(name)
		}
	}
	if len(leaves) == 1 {
		return leaves[0]
	}
	return errors.Join(leaves...)
}
