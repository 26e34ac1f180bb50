package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	s := New(src)
	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF || tok.Kind == token.Error {
			break
		}
	}
	return toks
}

func TestScansPunctuationAndOperators(t *testing.T) {
	toks := tokenize(t, "( ) { } [ ] , . - + / * ; ^ & | ~ ! != = == > >= < <= && ||")
	require.NotEmpty(t, toks)
	kinds := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.LeftBracket, token.RightBracket, token.Comma, token.Dot,
		token.Minus, token.Plus, token.Slash, token.Star, token.Semicolon,
		token.Caret, token.Ampersand, token.Pipe, token.Tilde,
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Greater, token.GreaterEqual, token.Less, token.LessEqual,
		token.And2, token.Or2, token.EOF,
	}, kinds)
}

func TestScansStringLiteralWithEitherQuote(t *testing.T) {
	toks := tokenize(t, `"hello" 'world'`)
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, `"hello"`, toks[0].Lexeme)
	assert.Equal(t, token.String, toks[1].Kind)
	assert.Equal(t, `'world'`, toks[1].Lexeme)
}

func TestUnterminatedStringIsError(t *testing.T) {
	toks := tokenize(t, `"oops`)
	last := toks[len(toks)-1]
	assert.Equal(t, token.Error, last.Kind)
}

func TestScansNumberAndIdentifierAndKeyword(t *testing.T) {
	toks := tokenize(t, "42 3.14 foo class")
	require.Len(t, toks, 5)
	assert.Equal(t, token.Number, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, token.Number, toks[1].Kind)
	assert.Equal(t, "3.14", toks[1].Lexeme)
	assert.Equal(t, token.Identifier, toks[2].Kind)
	assert.Equal(t, token.KwClass, toks[3].Kind)
}

func TestLineCommentsAreSkippedAndLinesCounted(t *testing.T) {
	toks := tokenize(t, "1 // a comment\n2")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
}
