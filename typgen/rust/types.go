package rust

import (
	"context"

	"github.com/broady/typ/typgen/ir"
	"github.com/broady/typ/typgen/sink"
)

// Generator renders translated modules into target language source code.
type Generator interface {
	// Name returns the generator's identifier.
	Name() string

	// Generate renders the module and writes it to opts.Sink.
	Generate(ctx context.Context, m *ir.Module, opts GenerateOptions) (*GenerateResult, error)
}

// GenerateOptions configures generation behavior.
type GenerateOptions struct {
	// Sink receives generated output files.
	Sink sink.OutputSink

	Config GeneratorConfig
}

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists all files that were written.
	Files []OutputFile

	// DeclsGenerated is the number of declarations rendered.
	DeclsGenerated int

	// Warnings contains non-fatal issues encountered.
	Warnings []ir.Warning
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// GeneratorConfig controls formatting of the rendered source.
type GeneratorConfig struct {
	// Formatting
	IndentStyle     string // "space" or "tab"
	IndentSize      int    // Spaces per indent level (when IndentStyle is "space")
	LineEnding      string // "lf" or "crlf"
	TrailingNewline bool   // Ensure files end with a newline

	// Header is written verbatim at the top of every file.
	Header string

	// EmitComments precedes each declaration with its source location.
	EmitComments bool
}
