package syntax

import (
	"go/token"
	"unicode"
	"unicode/utf8"

	"github.com/broady/typ"
)

// Lexer splits source text into tokens.
type Lexer struct {
	filename     string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int
	column       int
}

// NewLexer returns a lexer over input. filename is recorded in token positions.
func NewLexer(filename, input string) *Lexer {
	l := &Lexer{filename: filename, input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	l.position = l.readPosition
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekCharAt(n int) rune {
	pos := l.readPosition
	for i := 0; i < n; i++ {
		if pos >= len(l.input) {
			return 0
		}
		_, w := utf8.DecodeRuneInString(l.input[pos:])
		pos += w
	}
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

func (l *Lexer) pos() token.Position {
	return token.Position{Filename: l.filename, Offset: l.position, Line: l.line, Column: l.column}
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// Tokenize lexes the whole input. The final token is always EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

// NextToken returns the next token or a syntax error.
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	pos := l.pos()
	if l.atEOF() {
		return Token{Kind: EOF, Pos: pos}, nil
	}

	simple := func(k Kind, width int) (Token, error) {
		lit := l.input[l.position : l.position+width]
		for i := 0; i < width; i++ {
			l.readChar()
		}
		return Token{Kind: k, Lit: lit, Pos: pos}, nil
	}

	switch l.ch {
	case '{':
		return simple(LBRACE, 1)
	case '}':
		return simple(RBRACE, 1)
	case '(':
		return simple(LPAREN, 1)
	case ')':
		return simple(RPAREN, 1)
	case '[':
		return simple(LBRACKET, 1)
	case ']':
		return simple(RBRACKET, 1)
	case ',':
		return simple(COMMA, 1)
	case ';':
		return simple(SEMICOLON, 1)
	case '.':
		return simple(DOT, 1)
	case '@':
		return simple(AT, 1)
	case '#':
		return simple(HASH, 1)
	case '?':
		return simple(QUESTION, 1)
	case '^':
		return simple(CARET, 1)
	case '+':
		return simple(PLUS, 1)
	case '*':
		return simple(STAR, 1)
	case '/':
		return simple(SLASH, 1)
	case '%':
		return simple(PERCENT, 1)
	case ':':
		if l.peekChar() == ':' {
			return simple(PATHSEP, 2)
		}
		return simple(COLON, 1)
	case '=':
		switch l.peekChar() {
		case '=':
			return simple(EQ, 2)
		case '>':
			return simple(FAT_ARROW, 2)
		}
		return simple(ASSIGN, 1)
	case '!':
		if l.peekChar() == '=' {
			return simple(NOT_EQ, 2)
		}
		return simple(BANG, 1)
	case '<':
		if l.peekChar() == '=' {
			return simple(LE, 2)
		}
		return simple(LT, 1)
	case '>':
		// ">>" is never merged so that nested generic argument lists close one at a time.
		if l.peekChar() == '=' {
			return simple(GE, 2)
		}
		return simple(GT, 1)
	case '-':
		if l.peekChar() == '>' {
			return simple(ARROW, 2)
		}
		return simple(MINUS, 1)
	case '&':
		if l.peekChar() == '&' {
			return simple(ANDAND, 2)
		}
		return simple(AND, 1)
	case '|':
		if l.peekChar() == '|' {
			return simple(OROR, 2)
		}
		return simple(OR, 1)
	case '"':
		return l.readString(pos)
	case '\'':
		return l.readQuote(pos)
	}

	if isIdentStart(l.ch) {
		lit := l.readIdentifier()
		if lit == "_" {
			return Token{Kind: UNDERSCORE, Lit: lit, Pos: pos}, nil
		}
		return Token{Kind: LookupIdent(lit), Lit: lit, Pos: pos}, nil
	}
	if isDigit(l.ch) {
		return Token{Kind: INT, Lit: l.readNumber(), Pos: pos}, nil
	}

	return Token{}, typ.Errorf(typ.CodeSyntaxError, pos, "unexpected character %q", l.ch)
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		switch {
		case unicode.IsSpace(l.ch):
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			start := l.pos()
			l.readChar()
			l.readChar()
			depth := 1
			for depth > 0 {
				if l.atEOF() {
					return typ.NewError(typ.CodeSyntaxError, start, "unterminated block comment")
				}
				switch {
				case l.ch == '/' && l.peekChar() == '*':
					depth++
					l.readChar()
				case l.ch == '*' && l.peekChar() == '/':
					depth--
					l.readChar()
				}
				l.readChar()
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) || l.ch == '_' || isIdentStart(l.ch) {
		// suffixes such as 10u32 and separators such as 1_000 belong to the literal
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readString(pos token.Position) (Token, error) {
	l.readChar() // opening quote
	start := l.position
	for l.ch != '"' {
		if l.atEOF() {
			return Token{}, typ.NewError(typ.CodeSyntaxError, pos, "unterminated string literal")
		}
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	lit := l.input[start:l.position]
	l.readChar() // closing quote
	return Token{Kind: STRING, Lit: lit, Pos: pos}, nil
}

// readQuote reads either a lifetime ('a) or a char literal ('a', '\n').
func (l *Lexer) readQuote(pos token.Position) (Token, error) {
	if isIdentStart(l.peekChar()) && l.peekCharAt(1) != '\'' {
		l.readChar() // quote
		name := l.readIdentifier()
		return Token{Kind: LIFETIME, Lit: name, Pos: pos}, nil
	}

	l.readChar() // opening quote
	start := l.position
	for l.ch != '\'' {
		if l.atEOF() || l.ch == '\n' {
			return Token{}, typ.NewError(typ.CodeSyntaxError, pos, "unterminated char literal")
		}
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	lit := l.input[start:l.position]
	l.readChar()
	return Token{Kind: CHAR, Lit: lit, Pos: pos}, nil
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
