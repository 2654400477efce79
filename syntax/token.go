package syntax

import (
	"fmt"
	"go/token"
)

// Kind identifies the lexical class of a token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	IDENT
	INT
	STRING
	CHAR
	LIFETIME

	// Delimiters
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA
	SEMICOLON
	COLON
	PATHSEP
	DOT
	AT
	HASH
	QUESTION
	UNDERSCORE

	// Operators
	ASSIGN
	EQ
	NOT_EQ
	LT
	GT
	LE
	GE
	FAT_ARROW
	ARROW
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	AND
	ANDAND
	OR
	OROR
	CARET
	BANG

	keywordStart
	AS
	CONST
	CRATE
	DYN
	ELSE
	ENUM
	FALSE
	FN
	FOR
	IF
	IMPL
	IN
	LET
	MACRO
	MATCH
	MOD
	MUT
	PUB
	REF
	RETURN
	SELF_VALUE
	SELF_TYPE
	STATIC
	STRUCT
	SUPER
	TRAIT
	TRUE
	TYPE
	USE
	WHERE
	keywordEnd
)

var kindNames = map[Kind]string{
	ILLEGAL:    "ILLEGAL",
	EOF:        "EOF",
	IDENT:      "identifier",
	INT:        "integer literal",
	STRING:     "string literal",
	CHAR:       "char literal",
	LIFETIME:   "lifetime",
	LBRACE:     "{",
	RBRACE:     "}",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACKET:   "[",
	RBRACKET:   "]",
	COMMA:      ",",
	SEMICOLON:  ";",
	COLON:      ":",
	PATHSEP:    "::",
	DOT:        ".",
	AT:         "@",
	HASH:       "#",
	QUESTION:   "?",
	UNDERSCORE: "_",
	ASSIGN:     "=",
	EQ:         "==",
	NOT_EQ:     "!=",
	LT:         "<",
	GT:         ">",
	LE:         "<=",
	GE:         ">=",
	FAT_ARROW:  "=>",
	ARROW:      "->",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	PERCENT:    "%",
	AND:        "&",
	ANDAND:     "&&",
	OR:         "|",
	OROR:       "||",
	CARET:      "^",
	BANG:       "!",
}

var keywords = map[string]Kind{
	"as":          AS,
	"const":       CONST,
	"crate":       CRATE,
	"dyn":         DYN,
	"else":        ELSE,
	"enum":        ENUM,
	"false":       FALSE,
	"fn":          FN,
	"for":         FOR,
	"if":          IF,
	"impl":        IMPL,
	"in":          IN,
	"let":         LET,
	"macro_rules": MACRO,
	"match":       MATCH,
	"mod":         MOD,
	"mut":         MUT,
	"pub":         PUB,
	"ref":         REF,
	"return":      RETURN,
	"self":        SELF_VALUE,
	"Self":        SELF_TYPE,
	"static":      STATIC,
	"struct":      STRUCT,
	"super":       SUPER,
	"trait":       TRAIT,
	"true":        TRUE,
	"type":        TYPE,
	"use":         USE,
	"where":       WHERE,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	if k > keywordStart && k < keywordEnd {
		for word, kw := range keywords {
			if kw == k {
				return word
			}
		}
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k > keywordStart && k < keywordEnd
}

// LookupIdent returns the keyword kind for ident, or IDENT.
func LookupIdent(ident string) Kind {
	if kw, ok := keywords[ident]; ok {
		return kw
	}
	return IDENT
}

// Token is a single lexeme with its source position.
type Token struct {
	Kind Kind
	Lit  string
	Pos  token.Position
}

func (t Token) String() string {
	switch t.Kind {
	case IDENT, INT, STRING, CHAR, LIFETIME:
		return fmt.Sprintf("%s %q", t.Kind, t.Lit)
	case EOF:
		return "end of file"
	}
	return fmt.Sprintf("%q", t.Kind.String())
}
