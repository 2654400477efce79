// Package ir defines the Intermediate Representation of generated type-level declarations.
// Type expressions, capability bounds and declarations are target-agnostic; generators
// transform an ir.Module into source code for a concrete host language.
package ir

import (
	"fmt"
	"go/token"
)

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// String returns "file:line:col", omitting the parts that are unset.
func (s Source) String() string {
	out := s.File
	if s.Line > 0 {
		out = fmt.Sprintf("%s:%d", out, s.Line)
		if s.Column > 0 {
			out = fmt.Sprintf("%s:%d", out, s.Column)
		}
	}
	return out
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// SourceOf converts a token position into a Source.
func SourceOf(pos token.Position) Source {
	return Source{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

// Warning represents a non-fatal issue encountered during translation.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source *Source

	// Item is the name of the item that triggered the warning, if applicable.
	Item string
}
