package esadaptor

import (
	"fmt"

	elastic "github.com/olivere/elastic/v7"

	"github.com/nlstn/go-cmisql/internal/fts"
)

// TranslateFTS converts a parsed FTS expression into a query against field.
// An empty field selects the adaptor's text field. Single-member
// disjunctions and conjunctions collapse into their only clause.
func (a *Adaptor) TranslateFTS(expr *fts.Disjunction, field string) (elastic.Query, error) {
	if expr == nil || len(expr.Conjunctions) == 0 {
		return nil, fts.ErrEmptyExpression
	}
	if field == "" {
		field = a.text
	} else {
		field = a.IndexField(field)
	}

	if len(expr.Conjunctions) == 1 {
		return a.conjunction(expr.Conjunctions[0], field)
	}
	should := make([]elastic.Query, 0, len(expr.Conjunctions))
	for _, c := range expr.Conjunctions {
		q, err := a.conjunction(c, field)
		if err != nil {
			return nil, err
		}
		should = append(should, q)
	}
	return elastic.NewBoolQuery().Should(should...).MinimumNumberShouldMatch(1), nil
}

func (a *Adaptor) conjunction(c *fts.Conjunction, field string) (elastic.Query, error) {
	if len(c.Terms) == 0 {
		return nil, fts.ErrEmptyExpression
	}
	if len(c.Terms) == 1 && !c.Terms[0].Excluded() {
		return a.test(c.Terms[0].Operand(), field)
	}

	var must, mustNot []elastic.Query
	for _, term := range c.Terms {
		q, err := a.test(term.Operand(), field)
		if err != nil {
			return nil, err
		}
		if term.Excluded() {
			mustNot = append(mustNot, q)
		} else {
			must = append(must, q)
		}
	}
	b := elastic.NewBoolQuery()
	if len(must) > 0 {
		b = b.Must(must...)
	}
	if len(mustNot) > 0 {
		b = b.MustNot(mustNot...)
	}
	return b, nil
}

func (a *Adaptor) test(t fts.Test, field string) (elastic.Query, error) {
	switch n := t.(type) {
	case *fts.Term:
		return elastic.NewMatchQuery(field, n.Word), nil
	case *fts.Phrase:
		return elastic.NewMatchPhraseQuery(field, n.Text), nil
	default:
		return nil, fmt.Errorf("cmisql: unsupported full text test %T", t)
	}
}
