package fts

import (
	"errors"

	"github.com/nlstn/go-cmisql/internal/syntax"
)

// ErrEmptyExpression is wrapped by the parse error for input without any term.
var ErrEmptyExpression = errors.New("cmisql: empty full text expression")

// Parser is a recursive-descent parser over the visible FTS tokens.
// There is no error recovery: the first mismatch ends the parse.
type Parser struct {
	tokens  []Token
	current int
	rules   syntax.RuleStack
}

// NewParser builds a parser from a lexer's full token stream. Hidden
// tokens are dropped.
func NewParser(tokens []Token) *Parser {
	visible := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Channel == syntax.ChannelDefault {
			visible = append(visible, tok)
		}
	}
	if len(visible) == 0 || visible[len(visible)-1].Type != TokenEOF {
		visible = append(visible, Token{Type: TokenEOF})
	}
	return &Parser{tokens: visible}
}

// Parse tokenizes and parses input.
func Parse(input string) (*Disjunction, error) {
	tokens, err := NewLexer(input).TokenizeAll()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse parses the whole token stream as cmisFtsQuery.
func (p *Parser) Parse() (*Disjunction, error) {
	p.rules.Enter("cmisFtsQuery")
	defer p.rules.Leave()

	d, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if tok := p.currentToken(); tok.Type != TokenEOF {
		return nil, p.errorf(syntax.Mismatched, tok, TokenEOF)
	}
	return d, nil
}

func (p *Parser) currentToken() Token {
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

func (p *Parser) advance() Token {
	tok := p.currentToken()
	if p.current < len(p.tokens) {
		p.current++
	}
	return tok
}

func (p *Parser) errorf(kind syntax.ErrorKind, tok Token, expected ...TokenType) *syntax.ParseError {
	names := make([]string, len(expected))
	for i, k := range expected {
		names[i] = k.String()
	}
	pe := &syntax.ParseError{
		Kind:     kind,
		Pos:      tok.Pos,
		Token:    tok.display(),
		Expected: names,
		Rules:    p.rules.Snapshot(),
	}
	if kind == syntax.EarlyExit && tok.Type == TokenEOF && p.current == 0 {
		pe.Err = ErrEmptyExpression
	}
	return pe
}

func (p *Parser) parseDisjunction() (*Disjunction, error) {
	p.rules.Enter("ftsCmisDisjunction")
	defer p.rules.Leave()

	start := p.currentToken().Pos
	first, err := p.parseConjunction()
	if err != nil {
		return nil, err
	}
	d := &Disjunction{Position: start, Conjunctions: []*Conjunction{first}}
	for p.currentToken().Type == TokenOr {
		p.parseOr()
		next, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		d.Conjunctions = append(d.Conjunctions, next)
	}
	return d, nil
}

func (p *Parser) parseOr() {
	p.rules.Enter("or")
	defer p.rules.Leave()
	p.advance()
}

func (p *Parser) parseConjunction() (*Conjunction, error) {
	p.rules.Enter("ftsCmisConjunction")
	defer p.rules.Leave()

	c := &Conjunction{Position: p.currentToken().Pos}
	for startsPrefixed(p.currentToken().Type) {
		term, err := p.parsePrefixed()
		if err != nil {
			return nil, err
		}
		c.Terms = append(c.Terms, term)
	}
	if len(c.Terms) == 0 {
		return nil, p.errorf(syntax.EarlyExit, p.currentToken())
	}
	return c, nil
}

func (p *Parser) parsePrefixed() (Prefixed, error) {
	p.rules.Enter("ftsCmisPrefixed")
	defer p.rules.Leave()

	start := p.currentToken().Pos
	if p.currentToken().Type == TokenMinus {
		p.advance()
		test, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		return &Exclude{Position: start, Test: test}, nil
	}
	test, err := p.parseTest()
	if err != nil {
		return nil, err
	}
	return &Default{Position: start, Test: test}, nil
}

func (p *Parser) parseTest() (Test, error) {
	p.rules.Enter("cmisTest")
	defer p.rules.Leave()

	tok := p.currentToken()
	switch tok.Type {
	case TokenWord:
		p.rules.Enter("cmisTerm")
		defer p.rules.Leave()
		p.advance()
		return &Term{Position: tok.Pos, Word: tok.Value()}, nil
	case TokenPhrase:
		p.rules.Enter("cmisPhrase")
		defer p.rules.Leave()
		p.advance()
		return &Phrase{Position: tok.Pos, Text: tok.Value(), Raw: tok.Text}, nil
	default:
		return nil, p.errorf(syntax.NoViableAlternative, tok, TokenWord, TokenPhrase)
	}
}

func startsPrefixed(k TokenType) bool {
	return k == TokenWord || k == TokenPhrase || k == TokenMinus
}
