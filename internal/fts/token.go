// Package fts implements the full-text mini-language accepted by CMIS
// CONTAINS(): words and quoted phrases, implicit AND, explicit OR and
// exclusion with a leading minus.
package fts

import (
	"strings"

	"github.com/nlstn/go-cmisql/internal/syntax"
)

// TokenType is the closed set of FTS token kinds.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenPhrase
	TokenOr
	TokenMinus
	TokenWS
	TokenWord
)

var typeNames = [...]string{
	TokenEOF:    "EOF",
	TokenPhrase: "FTSPHRASE",
	TokenOr:     "OR",
	TokenMinus:  "MINUS",
	TokenWS:     "WS",
	TokenWord:   "FTSWORD",
}

func (k TokenType) String() string {
	if int(k) < len(typeNames) {
		return typeNames[k]
	}
	return "UNKNOWN"
}

// Token is a lexeme of the FTS grammar. Text is the raw slice of the input.
type Token struct {
	Type    TokenType
	Text    string
	Pos     syntax.Pos
	Channel syntax.Channel
}

// Value returns the token payload: phrase content without quotes and with
// escapes removed, or the raw text for any other kind.
func (t Token) Value() string {
	if t.Type != TokenPhrase || len(t.Text) < 2 {
		return t.Text
	}
	return unescapePhrase(t.Text[1 : len(t.Text)-1])
}

func (t Token) display() string {
	return syntax.DisplayToken(t.Text, t.Type == TokenEOF)
}

func unescapePhrase(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
