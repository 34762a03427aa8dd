package cmisql

import (
	"github.com/nlstn/go-cmisql/internal/cmis"
	"github.com/nlstn/go-cmisql/internal/dictionary"
	"github.com/nlstn/go-cmisql/internal/esadaptor"
	"github.com/nlstn/go-cmisql/internal/evaluation"
	"github.com/nlstn/go-cmisql/internal/fts"
	"github.com/nlstn/go-cmisql/internal/syntax"
)

// Pos is a location in the input: 1-based line, 0-based column and byte offset.
type Pos = syntax.Pos

// Mode selects the accepted query dialect.
type Mode = cmis.Mode

const (
	// ModeStrict accepts the CMIS 1.0 grammar only.
	ModeStrict = cmis.ModeStrict
	// ModeAlfresco accepts quoted identifiers, :parameters, more functions
	// and several CONTAINS predicates.
	ModeAlfresco = cmis.ModeAlfresco
)

// Tokens.
type (
	Token    = cmis.Token
	FTSToken = fts.Token
)

// CMIS syntax tree. Trees are never modified after parsing.
type (
	Query           = cmis.Query
	Node            = cmis.Node
	SelectList      = cmis.SelectList
	Column          = cmis.Column
	AllColumns      = cmis.AllColumns
	ColumnRef       = cmis.ColumnRef
	FunctionCall    = cmis.FunctionCall
	Source          = cmis.Source
	TableRef        = cmis.TableRef
	Join            = cmis.Join
	JoinCondition   = cmis.JoinCondition
	Disjunction     = cmis.Disjunction
	Conjunction     = cmis.Conjunction
	Negation        = cmis.Negation
	Comparison      = cmis.Comparison
	In              = cmis.In
	Like            = cmis.Like
	Exists          = cmis.Exists
	Contains        = cmis.Contains
	FolderPredicate = cmis.FolderPredicate
	StringLiteral   = cmis.StringLiteral
	NumericLiteral  = cmis.NumericLiteral
	BooleanLiteral  = cmis.BooleanLiteral
	DatetimeLiteral = cmis.DatetimeLiteral
	Parameter       = cmis.Parameter
	SortSpec        = cmis.SortSpec
)

// Full text syntax tree.
type (
	FTSExpression  = fts.Disjunction
	FTSConjunction = fts.Conjunction
	FTSNode        = fts.Node
)

// Dictionary and resolution collaborators.
type (
	QName              = dictionary.QName
	PropertyDefinition = dictionary.PropertyDefinition
	Dictionary         = dictionary.Service
	NamespaceResolver  = dictionary.NamespaceResolver
	Registry           = dictionary.Registry
	EvaluationContext  = evaluation.Context
	EvaluationOption   = evaluation.Option
	FieldSet           = evaluation.FieldSet
	Policy             = evaluation.Policy
	SortAdaptor        = evaluation.SortAdaptor
	ExecutionContext   = evaluation.ExecutionContext
	IndexAdaptor       = esadaptor.Adaptor
	IndexAdaptorOption = esadaptor.Option
)

// Walk visits node and its descendants depth first. Returning false from
// fn skips the children of that node.
func Walk(node Node, fn func(Node) bool) {
	cmis.Walk(node, fn)
}

// NewRegistry returns an in-memory dictionary holding the built-in data types.
func NewRegistry() *Registry {
	return dictionary.NewRegistry()
}
