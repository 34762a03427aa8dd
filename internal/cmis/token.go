// Package cmis implements the lexer and parser for the CMIS SQL-like query
// language.
package cmis

import (
	"github.com/nlstn/go-cmisql/internal/syntax"
)

// TokenType is the closed set of CMIS token kinds, in declaration order.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenQuotedString

	// Keywords.
	TokenSelect
	TokenAs
	TokenFrom
	TokenJoin
	TokenInner
	TokenLeft
	TokenOuter
	TokenOn
	TokenWhere
	TokenOr
	TokenAnd
	TokenNot
	TokenIn
	TokenLike
	TokenIs
	TokenNull
	TokenAny
	TokenContains
	TokenInFolder
	TokenInTree
	TokenOrder
	TokenBy
	TokenAsc
	TokenDesc
	TokenTimestamp
	TokenTrue
	TokenFalse
	TokenScore

	// Punctuation.
	TokenLParen
	TokenRParen
	TokenStar
	TokenComma
	TokenDotStar
	TokenDot
	TokenDotDot
	TokenEquals
	TokenTilda
	TokenNotEquals
	TokenGreaterThan
	TokenLessThan
	TokenGreaterThanOrEquals
	TokenLessThanOrEquals
	TokenColon
	TokenDoubleQuote

	TokenInteger
	TokenFloat
	TokenIdentifier
	TokenWS
)

var typeNames = [...]string{
	TokenEOF:                 "EOF",
	TokenQuotedString:        "QUOTED_STRING",
	TokenSelect:              "SELECT",
	TokenAs:                  "AS",
	TokenFrom:                "FROM",
	TokenJoin:                "JOIN",
	TokenInner:               "INNER",
	TokenLeft:                "LEFT",
	TokenOuter:               "OUTER",
	TokenOn:                  "ON",
	TokenWhere:               "WHERE",
	TokenOr:                  "OR",
	TokenAnd:                 "AND",
	TokenNot:                 "NOT",
	TokenIn:                  "IN",
	TokenLike:                "LIKE",
	TokenIs:                  "IS",
	TokenNull:                "NULL",
	TokenAny:                 "ANY",
	TokenContains:            "CONTAINS",
	TokenInFolder:            "IN_FOLDER",
	TokenInTree:              "IN_TREE",
	TokenOrder:               "ORDER",
	TokenBy:                  "BY",
	TokenAsc:                 "ASC",
	TokenDesc:                "DESC",
	TokenTimestamp:           "TIMESTAMP",
	TokenTrue:                "TRUE",
	TokenFalse:               "FALSE",
	TokenScore:               "SCORE",
	TokenLParen:              "LPAREN",
	TokenRParen:              "RPAREN",
	TokenStar:                "STAR",
	TokenComma:               "COMMA",
	TokenDotStar:             "DOTSTAR",
	TokenDot:                 "DOT",
	TokenDotDot:              "DOTDOT",
	TokenEquals:              "EQUALS",
	TokenTilda:               "TILDA",
	TokenNotEquals:           "NOTEQUALS",
	TokenGreaterThan:         "GREATERTHAN",
	TokenLessThan:            "LESSTHAN",
	TokenGreaterThanOrEquals: "GREATERTHANOREQUALS",
	TokenLessThanOrEquals:    "LESSTHANOREQUALS",
	TokenColon:               "COLON",
	TokenDoubleQuote:         "DOUBLE_QUOTE",
	TokenInteger:             "DECIMAL_INTEGER_LITERAL",
	TokenFloat:               "FLOATING_POINT_LITERAL",
	TokenIdentifier:          "ID",
	TokenWS:                  "WS",
}

func (k TokenType) String() string {
	if k >= 0 && int(k) < len(typeNames) {
		return typeNames[k]
	}
	return "UNKNOWN"
}

// IsKeyword reports whether k is a reserved word.
func (k TokenType) IsKeyword() bool {
	return k >= TokenSelect && k <= TokenScore
}

// keywords maps the upper-cased spelling to its token type.
var keywords = func() map[string]TokenType {
	m := make(map[string]TokenType, int(TokenScore-TokenSelect)+1)
	for k := TokenSelect; k <= TokenScore; k++ {
		m[typeNames[k]] = k
	}
	return m
}()

// Token is a lexeme of the CMIS grammar. Text is the raw slice of the input.
type Token struct {
	Type    TokenType
	Text    string
	Pos     syntax.Pos
	Channel syntax.Channel
}

func (t Token) display() string {
	return syntax.DisplayToken(t.Text, t.Type == TokenEOF)
}

// VisibleTokens drops hidden-channel tokens.
func VisibleTokens(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Channel == syntax.ChannelDefault {
			out = append(out, tok)
		}
	}
	return out
}
