package cmis

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nlstn/go-cmisql/internal/fts"
	"github.com/nlstn/go-cmisql/internal/syntax"
)

// Node is implemented by every node of a CMIS query tree. Trees are built
// once by the parser and never mutated afterwards.
type Node interface {
	Pos() syntax.Pos
	String() string
	cmisNode()
}

// Expr is an operand: a column reference, a function call, a literal or a
// parameter.
type Expr interface {
	Node
	expr()
}

// ValueExpr is a column reference or a function call.
type ValueExpr interface {
	Expr
	valueExpr()
}

// Value is a literal or a parameter.
type Value interface {
	Expr
	value()
}

// SelectItem is a Column or an AllColumns entry of the select list.
type SelectItem interface {
	Node
	selectItem()
}

// Table is a TableRef or a parenthesised Source.
type Table interface {
	Node
	table()
}

// Condition is a boolean search condition of the WHERE clause.
type Condition interface {
	Node
	condition()
}

// Query is the root of a parsed statement.
type Query struct {
	Position syntax.Pos
	Select   *SelectList
	From     *Source
	Where    *Disjunction
	OrderBy  []*SortSpec
}

// SelectList is either * (All) or a list of items.
type SelectList struct {
	Position syntax.Pos
	All      bool
	Items    []SelectItem
}

// Column selects a value expression, optionally under an alias.
type Column struct {
	Position syntax.Pos
	Expr     ValueExpr
	Alias    string
}

// AllColumns is qualifier.*.
type AllColumns struct {
	Position  syntax.Pos
	Qualifier string
}

// ColumnRef names a property, optionally qualified by a table name or
// correlation name.
type ColumnRef struct {
	Position  syntax.Pos
	Qualifier string
	Name      string
}

// FunctionCall is a function applied to its arguments, such as SCORE().
type FunctionCall struct {
	Position syntax.Pos
	Name     string
	Args     []Expr
}

// Source is a table followed by zero or more joins.
type Source struct {
	Position syntax.Pos
	Table    Table
	Joins    []*Join
}

// TableRef names a type, optionally under a correlation name.
type TableRef struct {
	Position syntax.Pos
	Name     string
	Alias    string
}

// JoinKind distinguishes inner from left outer joins.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeftOuter
)

func (k JoinKind) String() string {
	if k == JoinLeftOuter {
		return "LEFT OUTER"
	}
	return "INNER"
}

// Join attaches Right to the enclosing source.
type Join struct {
	Position syntax.Pos
	Kind     JoinKind
	Right    *Source
	On       *JoinCondition
}

// JoinCondition is the equality of two columns.
type JoinCondition struct {
	Position syntax.Pos
	Left     *ColumnRef
	Right    *ColumnRef
}

// Disjunction is an OR over one or more conjunctions.
type Disjunction struct {
	Position syntax.Pos
	Terms    []*Conjunction
}

// Conjunction is an AND over one or more conditions. A term is a predicate,
// a Negation or a parenthesised Disjunction.
type Conjunction struct {
	Position syntax.Pos
	Terms    []Condition
}

// Negation is NOT applied to a predicate or a parenthesised Disjunction.
type Negation struct {
	Position syntax.Pos
	Operand  Condition
}

// PredicateMode tells whether a predicate targets a single-valued property
// or any value of a multi-valued property.
type PredicateMode int

const (
	ModeSingleValued PredicateMode = iota
	ModeAny
)

func (m PredicateMode) String() string {
	if m == ModeAny {
		return "ANY"
	}
	return "SINGLE_VALUED_PROPERTY"
}

// CompOp is a comparison operator.
type CompOp int

const (
	OpEquals CompOp = iota
	OpNotEquals
	OpLessThan
	OpGreaterThan
	OpLessThanOrEquals
	OpGreaterThanOrEquals
)

var compOpSymbols = [...]string{
	OpEquals:              "=",
	OpNotEquals:           "<>",
	OpLessThan:            "<",
	OpGreaterThan:         ">",
	OpLessThanOrEquals:    "<=",
	OpGreaterThanOrEquals: ">=",
}

func (o CompOp) String() string {
	return compOpSymbols[o]
}

// Comparison compares a property with a value. In ModeSingleValued Left is
// a ValueExpr and Right a Value; in ModeAny (literal op ANY column) Left is
// the Value and Right the ColumnRef.
type Comparison struct {
	Position syntax.Pos
	Mode     PredicateMode
	Left     Expr
	Op       CompOp
	Right    Expr
}

// Property returns the property side of the comparison.
func (c *Comparison) Property() ValueExpr {
	if c.Mode == ModeAny {
		v, _ := c.Right.(ValueExpr)
		return v
	}
	v, _ := c.Left.(ValueExpr)
	return v
}

// Operand returns the value side of the comparison.
func (c *Comparison) Operand() Value {
	if c.Mode == ModeAny {
		v, _ := c.Left.(Value)
		return v
	}
	v, _ := c.Right.(Value)
	return v
}

// In tests membership of a column in a value list.
type In struct {
	Position syntax.Pos
	Mode     PredicateMode
	Column   *ColumnRef
	Values   []Value
	Not      bool
}

// Like matches a column against a pattern. The pattern keeps its \%, \_
// and \\ escapes.
type Like struct {
	Position syntax.Pos
	Column   *ColumnRef
	Pattern  *StringLiteral
	Not      bool
}

// Exists is the IS [NOT] NULL predicate. Not is set for IS NULL.
type Exists struct {
	Position syntax.Pos
	Column   *ColumnRef
	Not      bool
}

// Contains is a full text predicate. Text is the unescaped argument and
// Expression its parsed form; Expression is nil when FTS parsing is
// disabled.
type Contains struct {
	Position   syntax.Pos
	Qualifier  string
	Text       string
	Raw        string
	Expression *fts.Disjunction
}

// FolderPredicate is IN_FOLDER (children) or IN_TREE (descendants).
type FolderPredicate struct {
	Position    syntax.Pos
	Descendants bool
	Qualifier   string
	FolderID    *StringLiteral
}

// StringLiteral holds the unescaped value and the quoted source text.
type StringLiteral struct {
	Position syntax.Pos
	Value    string
	Raw      string
}

// NumericLiteral is an integer or floating point literal.
type NumericLiteral struct {
	Position syntax.Pos
	Value    decimal.Decimal
	Raw      string
	Float    bool
}

// BooleanLiteral is TRUE or FALSE.
type BooleanLiteral struct {
	Position syntax.Pos
	Value    bool
}

// DatetimeLiteral is TIMESTAMP 'iso-8601'.
type DatetimeLiteral struct {
	Position syntax.Pos
	Value    time.Time
	Raw      string
}

// Parameter is a :name placeholder.
type Parameter struct {
	Position syntax.Pos
	Name     string
}

// SortSpec is one ORDER BY entry. Ascending unless Descending is set.
type SortSpec struct {
	Position   syntax.Pos
	Column     *ColumnRef
	Descending bool
}

func (n *Query) Pos() syntax.Pos           { return n.Position }
func (n *SelectList) Pos() syntax.Pos      { return n.Position }
func (n *Column) Pos() syntax.Pos          { return n.Position }
func (n *AllColumns) Pos() syntax.Pos      { return n.Position }
func (n *ColumnRef) Pos() syntax.Pos       { return n.Position }
func (n *FunctionCall) Pos() syntax.Pos    { return n.Position }
func (n *Source) Pos() syntax.Pos          { return n.Position }
func (n *TableRef) Pos() syntax.Pos        { return n.Position }
func (n *Join) Pos() syntax.Pos            { return n.Position }
func (n *JoinCondition) Pos() syntax.Pos   { return n.Position }
func (n *Disjunction) Pos() syntax.Pos     { return n.Position }
func (n *Conjunction) Pos() syntax.Pos     { return n.Position }
func (n *Negation) Pos() syntax.Pos        { return n.Position }
func (n *Comparison) Pos() syntax.Pos      { return n.Position }
func (n *In) Pos() syntax.Pos              { return n.Position }
func (n *Like) Pos() syntax.Pos            { return n.Position }
func (n *Exists) Pos() syntax.Pos          { return n.Position }
func (n *Contains) Pos() syntax.Pos        { return n.Position }
func (n *FolderPredicate) Pos() syntax.Pos { return n.Position }
func (n *StringLiteral) Pos() syntax.Pos   { return n.Position }
func (n *NumericLiteral) Pos() syntax.Pos  { return n.Position }
func (n *BooleanLiteral) Pos() syntax.Pos  { return n.Position }
func (n *DatetimeLiteral) Pos() syntax.Pos { return n.Position }
func (n *Parameter) Pos() syntax.Pos       { return n.Position }
func (n *SortSpec) Pos() syntax.Pos        { return n.Position }

func (*Query) cmisNode()           {}
func (*SelectList) cmisNode()      {}
func (*Column) cmisNode()          {}
func (*AllColumns) cmisNode()      {}
func (*ColumnRef) cmisNode()       {}
func (*FunctionCall) cmisNode()    {}
func (*Source) cmisNode()          {}
func (*TableRef) cmisNode()        {}
func (*Join) cmisNode()            {}
func (*JoinCondition) cmisNode()   {}
func (*Disjunction) cmisNode()     {}
func (*Conjunction) cmisNode()     {}
func (*Negation) cmisNode()        {}
func (*Comparison) cmisNode()      {}
func (*In) cmisNode()              {}
func (*Like) cmisNode()            {}
func (*Exists) cmisNode()          {}
func (*Contains) cmisNode()        {}
func (*FolderPredicate) cmisNode() {}
func (*StringLiteral) cmisNode()   {}
func (*NumericLiteral) cmisNode()  {}
func (*BooleanLiteral) cmisNode()  {}
func (*DatetimeLiteral) cmisNode() {}
func (*Parameter) cmisNode()       {}
func (*SortSpec) cmisNode()        {}

func (*ColumnRef) expr()       {}
func (*FunctionCall) expr()    {}
func (*StringLiteral) expr()   {}
func (*NumericLiteral) expr()  {}
func (*BooleanLiteral) expr()  {}
func (*DatetimeLiteral) expr() {}
func (*Parameter) expr()       {}

func (*ColumnRef) valueExpr()    {}
func (*FunctionCall) valueExpr() {}

func (*StringLiteral) value()   {}
func (*NumericLiteral) value()  {}
func (*BooleanLiteral) value()  {}
func (*DatetimeLiteral) value() {}
func (*Parameter) value()       {}

func (*Column) selectItem()     {}
func (*AllColumns) selectItem() {}

func (*TableRef) table() {}
func (*Source) table()   {}

func (*Disjunction) condition()     {}
func (*Conjunction) condition()     {}
func (*Negation) condition()        {}
func (*Comparison) condition()      {}
func (*In) condition()              {}
func (*Like) condition()            {}
func (*Exists) condition()          {}
func (*Contains) condition()        {}
func (*FolderPredicate) condition() {}
