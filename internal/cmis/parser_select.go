package cmis

import (
	"strings"

	"github.com/nlstn/go-cmisql/internal/syntax"
)

// ScoreFunction is the only function accepted in strict mode.
const ScoreFunction = "SCORE"

func (p *Parser) parseSelectList() (*SelectList, error) {
	p.pushParaphrase("in select list")
	defer p.popParaphrase()
	p.enter("selectList")
	defer p.leave()

	start := p.currentToken()
	if start.Type == TokenStar {
		p.advance()
		return &SelectList{Position: start.Pos, All: true}, nil
	}

	list := &SelectList{Position: start.Pos}
	for {
		item, err := p.parseSelectSubList()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
		if !p.at(TokenComma) {
			return list, nil
		}
		p.advance()
	}
}

func (p *Parser) parseSelectSubList() (SelectItem, error) {
	p.enter("selectSubList")
	defer p.leave()

	start := p.currentToken()
	if n := p.identifierLength(0); n > 0 && p.peek(n).Type == TokenDotStar {
		qualifier, err := p.parseQualifier()
		if err != nil {
			return nil, err
		}
		p.advance()
		return &AllColumns{Position: start.Pos, Qualifier: qualifier}, nil
	}

	expr, err := p.parseValueExpression()
	if err != nil {
		return nil, err
	}
	col := &Column{Position: start.Pos, Expr: expr}
	if p.at(TokenAs) {
		p.advance()
		if col.Alias, err = p.parseColumnName(); err != nil {
			return nil, err
		}
	} else if p.identifierLength(0) > 0 {
		if col.Alias, err = p.parseColumnName(); err != nil {
			return nil, err
		}
	}
	return col, nil
}

func (p *Parser) parseQualifier() (string, error) {
	p.enter("qualifier")
	defer p.leave()
	return p.parseIdentifier()
}

func (p *Parser) parseColumnName() (string, error) {
	p.enter("columnName")
	defer p.leave()
	return p.parseIdentifier()
}

// startsFunction reports whether the cursor is at name LPAREN. Any keyword
// or identifier may name a function; strict mode rejects all but SCORE
// while parsing the call.
func (p *Parser) startsFunction() bool {
	tok := p.currentToken()
	return (tok.Type == TokenIdentifier || tok.Type.IsKeyword()) && p.peek(1).Type == TokenLParen
}

func (p *Parser) parseValueExpression() (ValueExpr, error) {
	p.enter("valueExpression")
	defer p.leave()

	if p.startsFunction() {
		return p.parseValueFunction()
	}
	return p.parseColumnReference()
}

func (p *Parser) parseColumnReference() (*ColumnRef, error) {
	p.enter("columnReference")
	defer p.leave()

	ref := &ColumnRef{Position: p.currentToken().Pos}
	var err error
	if n := p.identifierLength(0); n > 0 && p.peek(n).Type == TokenDot {
		if ref.Qualifier, err = p.parseQualifier(); err != nil {
			return nil, err
		}
		p.advance()
	}
	if ref.Name, err = p.parseColumnName(); err != nil {
		return nil, err
	}
	return ref, nil
}

func (p *Parser) parseValueFunction() (*FunctionCall, error) {
	p.enter("valueFunction")
	defer p.leave()

	name := p.advance()
	if name.Type != TokenScore && p.strict() {
		return nil, p.failDetail(syntax.FailedPredicate, name, "function "+name.Text+" is not supported in strict mode", nil)
	}
	call := &FunctionCall{Position: name.Pos, Name: strings.ToUpper(name.Text)}
	if name.Type != TokenScore {
		call.Name = name.Text
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	for !p.at(TokenRParen) {
		if p.at(TokenEOF) {
			return nil, p.fail(syntax.Missing, p.currentToken(), TokenRParen)
		}
		arg, err := p.parseFunctionArgument()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.at(TokenComma) {
			p.advance()
		}
	}
	p.advance()
	return call, nil
}

func (p *Parser) parseFunctionArgument() (Expr, error) {
	p.enter("functionArgument")
	defer p.leave()

	if p.identifierLength(0) > 0 {
		return p.parseColumnReference()
	}
	return p.parseLiteralOrParameterName()
}

func (p *Parser) parseFromClause() (*Source, error) {
	p.pushParaphrase("in from")
	defer p.popParaphrase()
	p.enter("fromClause")
	defer p.leave()

	if _, err := p.expect(TokenFrom); err != nil {
		return nil, err
	}
	return p.parseTableReference()
}

func (p *Parser) parseTableReference() (*Source, error) {
	p.enter("tableReference")
	defer p.leave()

	start := p.currentToken()
	table, err := p.parseSingleTable()
	if err != nil {
		return nil, err
	}
	src := &Source{Position: start.Pos, Table: table}
	for p.at(TokenJoin, TokenInner, TokenLeft) {
		join, err := p.parseJoinedTable()
		if err != nil {
			return nil, err
		}
		src.Joins = append(src.Joins, join)
	}
	return src, nil
}

func (p *Parser) parseSingleTable() (Table, error) {
	p.enter("singleTable")
	defer p.leave()

	start := p.currentToken()
	if start.Type == TokenLParen {
		p.advance()
		inner, err := p.parseTableReference()
		if err != nil {
			return nil, err
		}
		if _, simple := inner.Table.(*TableRef); simple && len(inner.Joins) == 0 {
			return nil, p.fail(syntax.Mismatched, p.currentToken(), TokenJoin)
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		inner.Position = start.Pos
		return inner, nil
	}

	if p.identifierLength(0) == 0 {
		return nil, p.fail(syntax.NoViableAlternative, start)
	}
	ref := &TableRef{Position: start.Pos}
	var err error
	if ref.Name, err = p.parseIdentifier(); err != nil {
		return nil, err
	}
	if p.at(TokenAs) {
		p.advance()
		if ref.Alias, err = p.parseIdentifier(); err != nil {
			return nil, err
		}
	} else if p.identifierLength(0) > 0 {
		if ref.Alias, err = p.parseIdentifier(); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

func (p *Parser) parseJoinedTable() (*Join, error) {
	p.enter("joinedTable")
	defer p.leave()

	start := p.currentToken()
	join := &Join{Position: start.Pos, Kind: JoinInner}
	switch start.Type {
	case TokenInner:
		p.advance()
	case TokenLeft:
		p.advance()
		if p.at(TokenOuter) {
			p.advance()
		}
		join.Kind = JoinLeftOuter
	}
	if _, err := p.expect(TokenJoin); err != nil {
		return nil, err
	}

	var err error
	if join.Right, err = p.parseTableReference(); err != nil {
		return nil, err
	}
	if p.at(TokenOn) {
		if join.On, err = p.parseJoinSpecification(); err != nil {
			return nil, err
		}
	}
	return join, nil
}

func (p *Parser) parseJoinSpecification() (*JoinCondition, error) {
	p.enter("joinSpecification")
	defer p.leave()

	start := p.advance()
	parens := p.at(TokenLParen)
	if parens {
		p.advance()
	}
	cond := &JoinCondition{Position: start.Pos}
	var err error
	if cond.Left, err = p.parseColumnReference(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEquals); err != nil {
		return nil, err
	}
	if cond.Right, err = p.parseColumnReference(); err != nil {
		return nil, err
	}
	if parens {
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
	}
	return cond, nil
}

func (p *Parser) parseOrderByClause() ([]*SortSpec, error) {
	p.pushParaphrase("in order by")
	defer p.popParaphrase()
	p.enter("orderByClause")
	defer p.leave()

	p.advance()
	if _, err := p.expect(TokenBy); err != nil {
		return nil, err
	}
	var specs []*SortSpec
	for {
		spec, err := p.parseSortSpecification()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
		if !p.at(TokenComma) {
			return specs, nil
		}
		p.advance()
	}
}

func (p *Parser) parseSortSpecification() (*SortSpec, error) {
	p.enter("sortSpecification")
	defer p.leave()

	col, err := p.parseColumnReference()
	if err != nil {
		return nil, err
	}
	spec := &SortSpec{Position: col.Position, Column: col}
	switch p.currentToken().Type {
	case TokenAsc:
		p.advance()
	case TokenDesc:
		p.advance()
		spec.Descending = true
	}
	return spec, nil
}
