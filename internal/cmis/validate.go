package cmis

import (
	"errors"
	"fmt"

	"github.com/nlstn/go-cmisql/internal/syntax"
)

// ErrInvalidQuery is matched by errors.Is for queries that parse but break
// a statement-level rule.
var ErrInvalidQuery = errors.New("cmisql: invalid query")

// QueryError is a statement-level rule violation.
type QueryError struct {
	Pos syntax.Pos
	Msg string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("line %s %s", e.Pos, e.Msg)
}

// Is reports whether target is ErrInvalidQuery.
func (e *QueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// Validate checks the rules that span more than one production:
// at most one CONTAINS in strict mode, SCORE() only together with CONTAINS
// and without arguments, and unique column aliases.
func Validate(q *Query, mode Mode) error {
	var (
		contains []*Contains
		scores   []*FunctionCall
	)
	Walk(q, func(n Node) bool {
		switch n := n.(type) {
		case *Contains:
			contains = append(contains, n)
		case *FunctionCall:
			if n.Name == ScoreFunction {
				scores = append(scores, n)
			}
		}
		return true
	})

	if mode == ModeStrict && len(contains) > 1 {
		return &QueryError{
			Pos: contains[1].Position,
			Msg: "Only one CONTAINS() function can be included in a single query statement.",
		}
	}
	for _, score := range scores {
		if len(score.Args) > 0 {
			return &QueryError{Pos: score.Position, Msg: "The function SCORE() is not allowed any arguments"}
		}
		if len(contains) == 0 {
			return &QueryError{Pos: score.Position, Msg: "Function SCORE() used without matching CONTAINS() function"}
		}
	}

	seen := make(map[string]bool)
	for _, item := range q.Select.Items {
		col, ok := item.(*Column)
		if !ok || col.Alias == "" {
			continue
		}
		if seen[col.Alias] {
			return &QueryError{Pos: col.Position, Msg: "Duplicate column alias for " + col.Alias}
		}
		seen[col.Alias] = true
	}
	return nil
}
