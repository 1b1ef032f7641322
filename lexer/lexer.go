// Package lexer scans minic source text into a stream of tokens.
//
// Grounded on original_source/src/lexer.cpp and the teacher's
// lexer/lexer.go: a rune-slice scanner with an explicit readChar/
// peekChar cursor pair, kept from the teacher almost unchanged, but
// generalized from a four-operator RPN-math alphabet to the full token
// set in package token, plus line/column tracking (spec.md §4.1) and
// string/char literal scanning with backslash escapes.
package lexer

import (
	"strings"

	"github.com/skx/minic/cmderr"
	"github.com/skx/minic/token"
)

// Lexer holds our object-state.
type Lexer struct {
	position     int    // current character position
	readPosition int    // next character position
	ch           rune   // current character
	characters   []rune // rune slice of input string
	line         int    // 1-based line of l.ch
	column       int    // 1-based column of l.ch
}

// New builds a Lexer instance from string input.
func New(input string) *Lexer {
	l := &Lexer{characters: []rune(input), line: 1, column: 0}
	l.readChar()
	return l
}

// readChar advances the cursor by one rune, updating line/column.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.characters) {
		l.ch = rune(0)
	} else {
		l.ch = l.characters[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the rune after l.ch without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.characters) {
		return rune(0)
	}
	return l.characters[l.readPosition]
}

// NextToken reads the next token, skipping leading whitespace.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	line, column := l.line, l.column

	var tok token.Token
	tok.Line, tok.Column = line, column

	switch l.ch {
	case '+':
		if l.peekChar() == '+' {
			l.readChar()
			tok = token.Token{Type: token.INCREMENT, Literal: "++", Line: line, Column: column}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.PLUS_EQ, Literal: "+=", Line: line, Column: column}
		} else {
			tok = newToken(token.PLUS, l.ch, line, column)
		}
	case '-':
		if l.peekChar() == '-' {
			l.readChar()
			tok = token.Token{Type: token.DECREMENT, Literal: "--", Line: line, Column: column}
		} else if l.peekChar() == '>' {
			l.readChar()
			tok = token.Token{Type: token.ARROW, Literal: "->", Line: line, Column: column}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.MINUS_EQ, Literal: "-=", Line: line, Column: column}
		} else {
			tok = newToken(token.MINUS, l.ch, line, column)
		}
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.ASTERISK_EQ, Literal: "*=", Line: line, Column: column}
		} else {
			tok = newToken(token.ASTERISK, l.ch, line, column)
		}
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.SLASH_EQ, Literal: "/=", Line: line, Column: column}
		} else {
			tok = newToken(token.SLASH, l.ch, line, column)
		}
	case '%':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.PERCENT_EQ, Literal: "%=", Line: line, Column: column}
		} else {
			tok = newToken(token.PERCENT, l.ch, line, column)
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.EQ, Literal: "==", Line: line, Column: column}
		} else {
			tok = newToken(token.ASSIGN, l.ch, line, column)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NOT_EQ, Literal: "!=", Line: line, Column: column}
		} else {
			tok = newToken(token.BANG, l.ch, line, column)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.LE, Literal: "<=", Line: line, Column: column}
		} else {
			tok = newToken(token.LT, l.ch, line, column)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GE, Literal: ">=", Line: line, Column: column}
		} else {
			tok = newToken(token.GT, l.ch, line, column)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = token.Token{Type: token.AND, Literal: "&&", Line: line, Column: column}
		} else {
			tok = newToken(token.AMPERSAND, l.ch, line, column)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = token.Token{Type: token.OR, Literal: "||", Line: line, Column: column}
		} else {
			return tok, cmderr.Lexer(line, column, "unexpected character %q", l.ch)
		}
	case '~':
		tok = newToken(token.TILDE, l.ch, line, column)
	case '?':
		tok = newToken(token.QUESTION, l.ch, line, column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, line, column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, line, column)
	case '{':
		tok = newToken(token.LBRACE, l.ch, line, column)
	case '}':
		tok = newToken(token.RBRACE, l.ch, line, column)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, line, column)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, line, column)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, line, column)
	case ',':
		tok = newToken(token.COMMA, l.ch, line, column)
	case ':':
		tok = newToken(token.COLON, l.ch, line, column)
	case '.':
		tok = newToken(token.DOT, l.ch, line, column)
	case '\'':
		return l.readCharLiteral(line, column)
	case '"':
		return l.readStringLiteral(line, column)
	case rune(0):
		tok.Literal = ""
		tok.Type = token.EOF
	default:
		if isDigit(l.ch) {
			return l.readNumberLiteral(line, column), nil
		}
		if isIdentifierStart(l.ch) {
			lit := l.readIdentifier()
			tok.Type = token.LookupIdentifier(lit)
			tok.Literal = lit
			tok.Line, tok.Column = line, column
			return tok, nil
		}
		return tok, cmderr.Lexer(line, column, "unexpected character %q", l.ch)
	}

	l.readChar()
	return tok, nil
}

func newToken(tokenType token.Type, ch rune, line, column int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.ch) {
		l.readChar()
	}
}

// readNumberLiteral reads an integer or floating literal, including the
// `l`/`u`/`ul` integer-suffix combinations spec.md §4.1 describes.
func (l *Lexer) readNumberLiteral(line, column int) token.Token {
	integer := l.readDigits()

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		fraction := l.readDigits()
		return token.Token{Type: token.FLOAT, Literal: integer + "." + fraction, Line: line, Column: column}
	}

	suffix := ""
	for l.ch == 'l' || l.ch == 'L' || l.ch == 'u' || l.ch == 'U' {
		suffix += string(l.ch)
		l.readChar()
	}

	return token.Token{Type: token.INT, Literal: integer + strings.ToLower(suffix), Line: line, Column: column}
}

func (l *Lexer) readDigits() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return string(l.characters[start:l.position])
}

// readCharLiteral reads a 'c' or '\n'-style escaped character literal.
func (l *Lexer) readCharLiteral(line, column int) (token.Token, error) {
	l.readChar() // consume opening quote

	var value byte
	if l.ch == '\\' {
		l.readChar()
		value = escapeValue(l.ch)
		l.readChar()
	} else {
		value = byte(l.ch)
		l.readChar()
	}

	if l.ch != '\'' {
		return token.Token{}, cmderr.Lexer(line, column, "unterminated character literal")
	}
	l.readChar() // consume closing quote

	return token.Token{Type: token.CHAR, Literal: string(value), Line: line, Column: column}, nil
}

// readStringLiteral reads a "..."-delimited string, processing escapes.
func (l *Lexer) readStringLiteral(line, column int) (token.Token, error) {
	l.readChar() // consume opening quote

	var sb strings.Builder
	for l.ch != '"' {
		if l.ch == rune(0) {
			return token.Token{}, cmderr.Lexer(line, column, "unterminated string literal")
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteByte(escapeValue(l.ch))
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote

	return token.Token{Type: token.STRING, Literal: sb.String(), Line: line, Column: column}, nil
}

// escapeValue maps the character after a backslash to its escaped byte
// value. Unknown escapes pass the character through literally.
func escapeValue(ch rune) byte {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\':
		return '\\'
	case '\'':
		return '\''
	case '"':
		return '"'
	default:
		return byte(ch)
	}
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentifierStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentifierChar(ch rune) bool {
	return isIdentifierStart(ch) || isDigit(ch)
}

// readIdentifier reads a maximal run of identifier characters.
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentifierChar(l.ch) {
		l.readChar()
	}
	return string(l.characters[start:l.position])
}
