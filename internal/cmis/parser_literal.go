package cmis

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nlstn/go-cmisql/internal/syntax"
)

// identifierLength returns how many tokens the identifier starting n tokens
// ahead occupies: 1 for ID, 3 for "keyword-or-id", 0 if none starts there.
// Quoted identifiers are recognised in every mode so strict mode can
// report them as a failed predicate.
func (p *Parser) identifierLength(n int) int {
	switch p.peek(n).Type {
	case TokenIdentifier:
		return 1
	case TokenDoubleQuote:
		inner := p.peek(n + 1).Type
		if (inner == TokenIdentifier || inner.IsKeyword()) && p.peek(n+2).Type == TokenDoubleQuote {
			return 3
		}
	}
	return 0
}

func (p *Parser) parseIdentifier() (string, error) {
	p.enter("identifier")
	defer p.leave()

	tok := p.currentToken()
	switch tok.Type {
	case TokenIdentifier:
		p.advance()
		return tok.Text, nil
	case TokenDoubleQuote:
		if p.strict() {
			return "", p.failDetail(syntax.FailedPredicate, tok, "quoted identifiers are not supported in strict mode", nil)
		}
		p.advance()
		name := p.currentToken()
		if name.Type != TokenIdentifier && !name.Type.IsKeyword() {
			return "", p.fail(syntax.Mismatched, name, TokenIdentifier)
		}
		p.advance()
		if _, err := p.expect(TokenDoubleQuote); err != nil {
			return "", err
		}
		return name.Text, nil
	default:
		return "", p.fail(syntax.Mismatched, tok, TokenIdentifier)
	}
}

func (p *Parser) startsLiteral() bool {
	return p.at(TokenQuotedString, TokenInteger, TokenFloat, TokenTrue, TokenFalse, TokenTimestamp, TokenColon)
}

func (p *Parser) parseLiteralOrParameterName() (Value, error) {
	p.enter("literalOrParameterName")
	defer p.leave()

	if !p.at(TokenColon) {
		return p.parseLiteral()
	}

	tok := p.currentToken()
	if p.strict() {
		return nil, p.failDetail(syntax.FailedPredicate, tok, "parameters are not supported in strict mode", nil)
	}
	p.advance()
	p.enter("parameterName")
	defer p.leave()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	return &Parameter{Position: tok.Pos, Name: name}, nil
}

func (p *Parser) parseLiteral() (Value, error) {
	p.enter("literal")
	defer p.leave()

	tok := p.currentToken()
	switch tok.Type {
	case TokenInteger, TokenFloat:
		p.advance()
		value, err := decimal.NewFromString(tok.Text)
		if err != nil {
			return nil, p.failDetail(syntax.Invalid, tok, "invalid numeric literal", err)
		}
		return &NumericLiteral{Position: tok.Pos, Value: value, Raw: tok.Text, Float: tok.Type == TokenFloat}, nil
	case TokenQuotedString:
		return p.parseCharacterStringLiteral(EscapeLiteral)
	case TokenTrue, TokenFalse:
		p.advance()
		return &BooleanLiteral{Position: tok.Pos, Value: tok.Type == TokenTrue}, nil
	case TokenTimestamp:
		return p.parseDatetimeLiteral()
	default:
		return nil, p.fail(syntax.NoViableAlternative, tok)
	}
}

func (p *Parser) parseCharacterStringLiteral(mode EscapeMode) (*StringLiteral, error) {
	p.enter("characterStringLiteral")
	defer p.leave()

	tok, err := p.expect(TokenQuotedString)
	if err != nil {
		return nil, err
	}
	value, err := Unescape(tok.Text, mode, p.strict())
	if err != nil {
		return nil, p.failDetail(syntax.Invalid, tok, "invalid string literal", err)
	}
	return &StringLiteral{Position: tok.Pos, Value: value, Raw: tok.Text}, nil
}

func (p *Parser) parseDatetimeLiteral() (*DatetimeLiteral, error) {
	p.enter("datetimeLiteral")
	defer p.leave()

	start := p.advance()
	tok, err := p.expect(TokenQuotedString)
	if err != nil {
		return nil, err
	}
	text, err := Unescape(tok.Text, EscapeLiteral, p.strict())
	if err != nil {
		return nil, p.failDetail(syntax.Invalid, tok, "invalid datetime literal", err)
	}
	value, err := ParseDatetime(text)
	if err != nil {
		return nil, p.failDetail(syntax.Invalid, tok, "invalid datetime literal", err)
	}
	return &DatetimeLiteral{Position: start.Pos, Value: value, Raw: tok.Text}, nil
}

// ParseDatetime parses the ISO 8601 form used by TIMESTAMP literals:
// YYYY-MM-DDThh:mm:ss[.sss] followed by Z or a ±hh:mm offset.
func ParseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	return time.Parse(time.RFC3339Nano, s)
}
