package rust

import (
	"unicode"
)

// Rust strict and reserved keywords.
var reservedWords = map[string]bool{
	"as":       true,
	"async":    true,
	"await":    true,
	"break":    true,
	"const":    true,
	"continue": true,
	"dyn":      true,
	"else":     true,
	"enum":     true,
	"extern":   true,
	"false":    true,
	"fn":       true,
	"for":      true,
	"if":       true,
	"impl":     true,
	"in":       true,
	"let":      true,
	"loop":     true,
	"match":    true,
	"mod":      true,
	"move":     true,
	"mut":      true,
	"pub":      true,
	"ref":      true,
	"return":   true,
	"static":   true,
	"struct":   true,
	"trait":    true,
	"true":     true,
	"type":     true,
	"unsafe":   true,
	"use":      true,
	"where":    true,
	"while":    true,
	"abstract": true,
	"become":   true,
	"box":      true,
	"do":       true,
	"final":    true,
	"gen":      true,
	"macro":    true,
	"override": true,
	"priv":     true,
	"try":      true,
	"typeof":   true,
	"unsized":  true,
	"virtual":  true,
	"yield":    true,
}

// pathKeywords may start or appear in a path but cannot be raw identifiers.
var pathKeywords = map[string]bool{
	"crate": true,
	"self":  true,
	"Self":  true,
	"super": true,
}

// escapeReservedWord turns a keyword into a raw identifier.
func escapeReservedWord(name string) string {
	if reservedWords[name] {
		return "r#" + name
	}
	return name
}

// escapeDeclName escapes a declared name. Path keywords cannot be
// declared at all, so they get a trailing underscore.
func escapeDeclName(name string) string {
	if pathKeywords[name] {
		return name + "_"
	}
	return escapeReservedWord(sanitizeIdentifier(name))
}

// escapeSegment escapes one segment of a path.
func escapeSegment(name string) string {
	if pathKeywords[name] {
		return name
	}
	return escapeReservedWord(name)
}

// isIdentifier reports whether name is a valid identifier before keyword escaping.
func isIdentifier(name string) bool {
	if name == "" || unicode.IsDigit(rune(name[0])) {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return name != "_"
}

// sanitizeIdentifier replaces characters that cannot appear in an identifier.
func sanitizeIdentifier(name string) string {
	if name == "" || name == "_" {
		return "__"
	}
	out := make([]rune, 0, len(name)+1)
	if unicode.IsDigit(rune(name[0])) {
		out = append(out, '_')
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}
