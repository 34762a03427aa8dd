package fts

import (
	"unicode/utf8"

	"github.com/nlstn/go-cmisql/internal/syntax"
)

// Lexer tokenizes an FTS expression. Produced tokens are parked in a queue
// by nextTokenImpl and handed out one at a time by NextToken.
// A Lexer is single use and not safe for concurrent use.
type Lexer struct {
	input string
	pos   syntax.Pos
	queue []Token
	err   error
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, pos: syntax.StartPos}
}

// NextToken returns the next token, including hidden whitespace. Once the
// input is exhausted it keeps returning EOF. A lexical error is sticky.
func (l *Lexer) NextToken() (Token, error) {
	for len(l.queue) == 0 {
		if l.err != nil {
			return Token{}, l.err
		}
		if err := l.nextTokenImpl(); err != nil {
			l.err = err
			return Token{}, err
		}
	}
	tok := l.queue[0]
	l.queue = l.queue[1:]
	return tok, nil
}

// TokenizeAll returns every token up to and including EOF.
func (l *Lexer) TokenizeAll() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) emit(typ TokenType, start syntax.Pos, channel syntax.Channel) {
	l.queue = append(l.queue, Token{
		Type:    typ,
		Text:    l.input[start.Offset:l.pos.Offset],
		Pos:     start,
		Channel: channel,
	})
}

func (l *Lexer) peek() (rune, int) {
	if l.pos.Offset >= len(l.input) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.input[l.pos.Offset:])
}

func (l *Lexer) peekAt(offset int) (rune, int) {
	if offset >= len(l.input) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.input[offset:])
}

func (l *Lexer) advance() rune {
	r, w := l.peek()
	l.pos = l.pos.Advance(r, w)
	return r
}

func (l *Lexer) atEOF() bool {
	return l.pos.Offset >= len(l.input)
}

func (l *Lexer) nextTokenImpl() error {
	start := l.pos
	if l.atEOF() {
		l.emit(TokenEOF, start, syntax.ChannelDefault)
		return nil
	}

	r, _ := l.peek()
	switch {
	case isSpace(r):
		for !l.atEOF() {
			if r, _ := l.peek(); !isSpace(r) {
				break
			}
			l.advance()
		}
		l.emit(TokenWS, start, syntax.ChannelHidden)
	case r == '\'':
		if err := l.scanPhrase(); err != nil {
			return err
		}
		l.emit(TokenPhrase, start, syntax.ChannelDefault)
	case r == '-':
		l.advance()
		l.emit(TokenMinus, start, syntax.ChannelDefault)
	case l.atOr():
		l.advance()
		l.advance()
		l.emit(TokenOr, start, syntax.ChannelDefault)
	default:
		// START_WORD excludes whitespace and '-', IN_WORD excludes whitespace only.
		for !l.atEOF() {
			if r, _ := l.peek(); isSpace(r) {
				break
			}
			l.advance()
		}
		l.emit(TokenWord, start, syntax.ChannelDefault)
	}
	return nil
}

// atOr reports whether the input continues with a standalone OR keyword.
// "or" followed by a word continuation character is the start of a word.
func (l *Lexer) atOr() bool {
	off := l.pos.Offset
	if len(l.input)-off < 2 {
		return false
	}
	if c := l.input[off]; c != 'o' && c != 'O' {
		return false
	}
	if c := l.input[off+1]; c != 'r' && c != 'R' {
		return false
	}
	next, w := l.peekAt(off + 2)
	return w == 0 || isSpace(next)
}

func (l *Lexer) scanPhrase() error {
	l.advance()
	for {
		if l.atEOF() {
			return syntax.NewLexError(l.pos, "mismatched character '<EOF>' expecting '''")
		}
		switch l.advance() {
		case '\'':
			return nil
		case '\\':
			if l.atEOF() {
				return syntax.NewLexError(l.pos, "mismatched character '<EOF>' expecting set {'\\\\', '''}")
			}
			if r, _ := l.peek(); r != '\\' && r != '\'' {
				return syntax.NewLexError(l.pos, "mismatched character '%c' expecting set {'\\\\', '''}", r)
			}
			l.advance()
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
