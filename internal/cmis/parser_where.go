package cmis

import (
	"github.com/nlstn/go-cmisql/internal/fts"
	"github.com/nlstn/go-cmisql/internal/syntax"
)

var compOps = map[TokenType]CompOp{
	TokenEquals:              OpEquals,
	TokenNotEquals:           OpNotEquals,
	TokenLessThan:            OpLessThan,
	TokenGreaterThan:         OpGreaterThan,
	TokenLessThanOrEquals:    OpLessThanOrEquals,
	TokenGreaterThanOrEquals: OpGreaterThanOrEquals,
}

var compOpTokens = []TokenType{
	TokenEquals, TokenNotEquals, TokenLessThan, TokenGreaterThan, TokenLessThanOrEquals, TokenGreaterThanOrEquals,
}

func (p *Parser) parseWhereClause() (*Disjunction, error) {
	p.pushParaphrase("in where")
	defer p.popParaphrase()
	p.enter("whereClause")
	defer p.leave()

	p.advance()
	return p.parseSearchOrCondition()
}

func (p *Parser) parseSearchOrCondition() (*Disjunction, error) {
	p.enter("searchOrCondition")
	defer p.leave()

	start := p.currentToken()
	d := &Disjunction{Position: start.Pos}
	for {
		c, err := p.parseSearchAndCondition()
		if err != nil {
			return nil, err
		}
		d.Terms = append(d.Terms, c)
		if !p.at(TokenOr) {
			return d, nil
		}
		p.advance()
	}
}

func (p *Parser) parseSearchAndCondition() (*Conjunction, error) {
	p.enter("searchAndCondition")
	defer p.leave()

	start := p.currentToken()
	c := &Conjunction{Position: start.Pos}
	for {
		term, err := p.parseSearchNotCondition()
		if err != nil {
			return nil, err
		}
		c.Terms = append(c.Terms, term)
		if !p.at(TokenAnd) {
			return c, nil
		}
		p.advance()
	}
}

func (p *Parser) parseSearchNotCondition() (Condition, error) {
	p.enter("searchNotCondition")
	defer p.leave()

	if !p.at(TokenNot) {
		return p.parseSearchTest()
	}
	start := p.advance()
	operand, err := p.parseSearchTest()
	if err != nil {
		return nil, err
	}
	return &Negation{Position: start.Pos, Operand: operand}, nil
}

func (p *Parser) parseSearchTest() (Condition, error) {
	p.enter("searchTest")
	defer p.leave()

	if !p.at(TokenLParen) {
		return p.parsePredicate()
	}
	p.advance()
	d, err := p.parseSearchOrCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) parsePredicate() (Condition, error) {
	p.enter("predicate")
	defer p.leave()

	tok := p.currentToken()
	switch {
	case tok.Type == TokenContains:
		return p.parseTextSearchPredicate()
	case tok.Type == TokenInFolder || tok.Type == TokenInTree:
		return p.parseFolderPredicate()
	case tok.Type == TokenAny:
		return p.parseQuantifiedInPredicate()
	case p.startsLiteral():
		return p.parseQuantifiedComparisonPredicate()
	case !p.startsFunction() && p.identifierLength(0) == 0:
		return nil, p.fail(syntax.NoViableAlternative, tok)
	}

	expr, err := p.parseValueExpression()
	if err != nil {
		return nil, err
	}
	next := p.currentToken()
	if op, ok := compOps[next.Type]; ok {
		p.advance()
		return p.parseComparisonPredicate(expr, op)
	}

	col, isColumn := expr.(*ColumnRef)
	if !isColumn {
		return nil, p.fail(syntax.Mismatched, next, compOpTokens...)
	}
	switch next.Type {
	case TokenNot:
		switch p.peek(1).Type {
		case TokenIn:
			return p.parseInPredicate(col)
		case TokenLike:
			return p.parseLikePredicate(col)
		}
		return nil, p.fail(syntax.NoViableAlternative, p.peek(1))
	case TokenIn:
		return p.parseInPredicate(col)
	case TokenLike:
		return p.parseLikePredicate(col)
	case TokenIs:
		return p.parseNullPredicate(col)
	}
	return nil, p.fail(syntax.NoViableAlternative, next)
}

func (p *Parser) parseComparisonPredicate(left ValueExpr, op CompOp) (*Comparison, error) {
	p.enter("comparisonPredicate")
	defer p.leave()

	right, err := p.parseLiteralOrParameterName()
	if err != nil {
		return nil, err
	}
	return &Comparison{Position: left.Pos(), Mode: ModeSingleValued, Left: left, Op: op, Right: right}, nil
}

func (p *Parser) parseCompOp() (CompOp, error) {
	p.enter("compOp")
	defer p.leave()

	tok := p.currentToken()
	op, ok := compOps[tok.Type]
	if !ok {
		return 0, p.fail(syntax.Mismatched, tok, compOpTokens...)
	}
	p.advance()
	return op, nil
}

func (p *Parser) parseInPredicate(col *ColumnRef) (*In, error) {
	p.enter("inPredicate")
	defer p.leave()

	in := &In{Position: col.Position, Mode: ModeSingleValued, Column: col}
	if err := p.parseInTail(in); err != nil {
		return nil, err
	}
	return in, nil
}

// parseInTail parses NOT? IN ( inValueList ).
func (p *Parser) parseInTail(in *In) error {
	if p.at(TokenNot) {
		p.advance()
		in.Not = true
	}
	if _, err := p.expect(TokenIn); err != nil {
		return err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return err
	}
	values, err := p.parseInValueList()
	if err != nil {
		return err
	}
	in.Values = values
	_, err = p.expect(TokenRParen)
	return err
}

func (p *Parser) parseInValueList() ([]Value, error) {
	p.enter("inValueList")
	defer p.leave()

	var values []Value
	for {
		v, err := p.parseLiteralOrParameterName()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if !p.at(TokenComma) {
			return values, nil
		}
		p.advance()
	}
}

func (p *Parser) parseLikePredicate(col *ColumnRef) (*Like, error) {
	p.enter("likePredicate")
	defer p.leave()

	like := &Like{Position: col.Position, Column: col}
	if p.at(TokenNot) {
		p.advance()
		like.Not = true
	}
	if _, err := p.expect(TokenLike); err != nil {
		return nil, err
	}
	pattern, err := p.parseCharacterStringLiteral(EscapeLike)
	if err != nil {
		return nil, err
	}
	like.Pattern = pattern
	return like, nil
}

func (p *Parser) parseNullPredicate(col *ColumnRef) (*Exists, error) {
	p.enter("nullPredicate")
	defer p.leave()

	p.advance()
	exists := &Exists{Position: col.Position, Column: col, Not: true}
	if p.at(TokenNot) {
		p.advance()
		exists.Not = false
	}
	if _, err := p.expect(TokenNull); err != nil {
		return nil, err
	}
	return exists, nil
}

func (p *Parser) parseQuantifiedComparisonPredicate() (*Comparison, error) {
	p.enter("quantifiedComparisonPredicate")
	defer p.leave()

	left, err := p.parseLiteralOrParameterName()
	if err != nil {
		return nil, err
	}
	op, err := p.parseCompOp()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenAny); err != nil {
		return nil, err
	}
	col, err := p.parseColumnReference()
	if err != nil {
		return nil, err
	}
	return &Comparison{Position: left.Pos(), Mode: ModeAny, Left: left, Op: op, Right: col}, nil
}

func (p *Parser) parseQuantifiedInPredicate() (*In, error) {
	p.enter("quantifiedInPredicate")
	defer p.leave()

	start := p.advance()
	col, err := p.parseColumnReference()
	if err != nil {
		return nil, err
	}
	in := &In{Position: start.Pos, Mode: ModeAny, Column: col}
	if err := p.parseInTail(in); err != nil {
		return nil, err
	}
	return in, nil
}

// parseOptionalQualifier parses the "qualifier COMMA" or bare "COMMA"
// prefix of CONTAINS, IN_FOLDER and IN_TREE arguments.
func (p *Parser) parseOptionalQualifier() (string, error) {
	if p.at(TokenComma) {
		p.advance()
		return "", nil
	}
	n := p.identifierLength(0)
	if n == 0 || p.peek(n).Type != TokenComma {
		return "", nil
	}
	qualifier, err := p.parseQualifier()
	if err != nil {
		return "", err
	}
	p.advance()
	return qualifier, nil
}

func (p *Parser) parseTextSearchPredicate() (*Contains, error) {
	p.enter("textSearchPredicate")
	defer p.leave()

	start := p.advance()
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	qualifier, err := p.parseOptionalQualifier()
	if err != nil {
		return nil, err
	}
	tok, err := p.expect(TokenQuotedString)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	text, err := Unescape(tok.Text, EscapeContains, p.strict())
	if err != nil {
		return nil, p.failDetail(syntax.Invalid, tok, "invalid text search expression", err)
	}
	contains := &Contains{Position: start.Pos, Qualifier: qualifier, Text: text, Raw: tok.Text}
	if p.cfg.parseFTS {
		expr, err := fts.Parse(text)
		if err != nil {
			return nil, p.failDetail(syntax.Invalid, tok, "invalid text search expression", err)
		}
		contains.Expression = expr
	}
	return contains, nil
}

func (p *Parser) parseFolderPredicate() (*FolderPredicate, error) {
	p.enter("folderPredicate")
	defer p.leave()

	start := p.advance()
	pred := &FolderPredicate{Position: start.Pos, Descendants: start.Type == TokenInTree}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var err error
	if pred.Qualifier, err = p.parseOptionalQualifier(); err != nil {
		return nil, err
	}
	p.enter("folderId")
	pred.FolderID, err = p.parseCharacterStringLiteral(EscapeLiteral)
	p.leave()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return pred, nil
}
