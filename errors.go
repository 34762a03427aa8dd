package cmisql

import (
	"errors"

	"github.com/nlstn/go-cmisql/internal/cmis"
	"github.com/nlstn/go-cmisql/internal/evaluation"
	"github.com/nlstn/go-cmisql/internal/fts"
	"github.com/nlstn/go-cmisql/internal/syntax"
)

// Sentinel errors for every failure class.
// These can be used with errors.Is() for error handling.
var (
	// ErrLexical indicates input that matches no token rule.
	ErrLexical = syntax.ErrLexical

	// ErrSyntax indicates a token sequence the grammar does not accept.
	ErrSyntax = syntax.ErrSyntax

	// ErrInvalidQuery indicates a query that parses but breaks a
	// statement-level rule, such as a second CONTAINS in strict mode.
	ErrInvalidQuery = cmis.ErrInvalidQuery

	// ErrEmptyExpression indicates a full text expression without any term.
	ErrEmptyExpression = fts.ErrEmptyExpression

	// ErrFTSQuery matches every property resolution failure.
	ErrFTSQuery = evaluation.ErrFTSQuery

	// ErrUnknownProperty indicates a name that is neither exposed nor defined
	// in the dictionary.
	ErrUnknownProperty = evaluation.ErrUnknownProperty

	// ErrSuffixTypeMismatch indicates a content suffix on a non-content property.
	ErrSuffixTypeMismatch = evaluation.ErrSuffixTypeMismatch

	// ErrUnsupportedOrdering indicates an ORDER BY the index cannot serve.
	ErrUnsupportedOrdering = evaluation.ErrUnsupportedOrdering

	// ErrNoExecutionContext indicates that no runtime is bound to an
	// evaluation context.
	ErrNoExecutionContext = evaluation.ErrNoExecutionContext

	// ErrNotQueryable indicates a predicate on a property the queryable
	// policy rejects.
	ErrNotQueryable = errors.New("cmisql: property is not queryable")

	// ErrNotOrderable indicates an ORDER BY on a property the orderable
	// policy rejects.
	ErrNotOrderable = errors.New("cmisql: property is not orderable")

	// ErrInvalidConfig indicates a Config that NewCompiler cannot accept.
	ErrInvalidConfig = errors.New("cmisql: invalid configuration")
)

// Error types carrying positions and messages.
type (
	LexError     = syntax.LexError
	ParseError   = syntax.ParseError
	QueryError   = cmis.QueryError
	ResolveError = evaluation.QueryError
)

// ErrorKind classifies err for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLexical):
		return "lexical"
	case errors.Is(err, ErrSyntax):
		return "syntax"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, ErrUnknownProperty):
		return "unknown_property"
	case errors.Is(err, ErrSuffixTypeMismatch):
		return "suffix_type_mismatch"
	case errors.Is(err, ErrUnsupportedOrdering):
		return "unsupported_ordering"
	case errors.Is(err, ErrNotQueryable):
		return "not_queryable"
	case errors.Is(err, ErrNotOrderable):
		return "not_orderable"
	case errors.Is(err, ErrEmptyExpression):
		return "empty_expression"
	default:
		return "internal"
	}
}
