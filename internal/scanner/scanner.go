// Package scanner implements the lexical analyzer (tokenizer) for ember.
//
// The scanner turns a source buffer into a restartable stream of
// token.Token values. It is purely synchronous: each call to Next()
// consumes exactly one token's worth of input and advances the
// internal cursor. There is no lookahead buffer beyond the single
// byte needed to disambiguate two-character operators.
//
// Comments (// to end of line) and whitespace are skipped between
// tokens. Newlines increment the line counter, which every emitted
// token carries for diagnostics and for the Chunk's line table.
package scanner

import (
	"github.com/emberlang/ember/internal/token"
)

// Scanner scans source text into tokens one at a time.
type Scanner struct {
	source  string
	start   int // start of the lexeme currently being scanned
	current int // next byte to read
	line    int
}

// New creates a Scanner over src, ready to produce its first token.
func New(src string) *Scanner {
	return &Scanner{source: src, line: 1}
}

// Next scans and returns the next token in the stream. Once EOF has
// been returned, further calls keep returning EOF.
func (s *Scanner) Next() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()

	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LeftParen)
	case ')':
		return s.make(token.RightParen)
	case '{':
		return s.make(token.LeftBrace)
	case '}':
		return s.make(token.RightBrace)
	case '[':
		return s.make(token.LeftBracket)
	case ']':
		return s.make(token.RightBracket)
	case ',':
		return s.make(token.Comma)
	case '.':
		return s.make(token.Dot)
	case ';':
		return s.make(token.Semicolon)
	case '-':
		return s.make(token.Minus)
	case '+':
		return s.make(token.Plus)
	case '/':
		return s.make(token.Slash)
	case '*':
		return s.make(token.Star)
	case '^':
		return s.make(token.Caret)
	case '~':
		return s.make(token.Tilde)
	case '&':
		if s.match('&') {
			return s.make(token.And2)
		}
		return s.make(token.Ampersand)
	case '|':
		if s.match('|') {
			return s.make(token.Or2)
		}
		return s.make(token.Pipe)
	case '!':
		if s.match('=') {
			return s.make(token.BangEqual)
		}
		return s.make(token.Bang)
	case '=':
		if s.match('=') {
			return s.make(token.EqualEqual)
		}
		return s.make(token.Equal)
	case '<':
		if s.match('=') {
			return s.make(token.LessEqual)
		}
		return s.make(token.Less)
	case '>':
		if s.match('=') {
			return s.make(token.GreaterEqual)
		}
		return s.make(token.Greater)
	case '"', '\'':
		return s.string(c)
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.source) }

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

// string scans a string literal delimited by the quote character that
// opened it ('"' or '\''). There is no escape processing beyond
// tracking embedded newlines for the line counter; an unterminated
// string yields an Error token.
func (s *Scanner) string(quote byte) token.Token {
	for s.peek() != quote && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote
	return s.make(token.String)
}

// number scans a decimal literal with an optional fractional part.
// No exponent notation is supported, per spec.md §4.1.
func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.Number)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lexeme := s.source[s.start:s.current]
	if kind, ok := token.Keywords[lexeme]; ok {
		return s.make(kind)
	}
	return s.make(token.Identifier)
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{Kind: kind, Lexeme: s.source[s.start:s.current], Line: s.line}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{Kind: token.Error, Lexeme: msg, Line: s.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
