package fts

import (
	"strings"

	"github.com/nlstn/go-cmisql/internal/syntax"
)

// Node is implemented by every FTS tree node.
type Node interface {
	Pos() syntax.Pos
	String() string
	ftsNode()
}

// Prefixed is a conjunction member: Default (required) or Exclude.
type Prefixed interface {
	Node
	Operand() Test
	Excluded() bool
}

// Test is the payload of a prefixed term: a Term or a Phrase.
type Test interface {
	Node
	Value() string
	ftsTest()
}

// Disjunction is the root of every parsed expression. It always holds at
// least one Conjunction.
type Disjunction struct {
	Position     syntax.Pos
	Conjunctions []*Conjunction
}

// Conjunction is an implicit AND of one or more prefixed tests.
type Conjunction struct {
	Position syntax.Pos
	Terms    []Prefixed
}

// Default marks a test that must match.
type Default struct {
	Position syntax.Pos
	Test     Test
}

// Exclude marks a test that must not match.
type Exclude struct {
	Position syntax.Pos
	Test     Test
}

// Term is a bare word.
type Term struct {
	Position syntax.Pos
	Word     string
}

// Phrase is a quoted phrase. Text is unescaped, Raw is the token text.
type Phrase struct {
	Position syntax.Pos
	Text     string
	Raw      string
}

func (n *Disjunction) Pos() syntax.Pos { return n.Position }
func (n *Conjunction) Pos() syntax.Pos { return n.Position }
func (n *Default) Pos() syntax.Pos     { return n.Position }
func (n *Exclude) Pos() syntax.Pos     { return n.Position }
func (n *Term) Pos() syntax.Pos        { return n.Position }
func (n *Phrase) Pos() syntax.Pos      { return n.Position }

func (*Disjunction) ftsNode() {}
func (*Conjunction) ftsNode() {}
func (*Default) ftsNode()     {}
func (*Exclude) ftsNode()     {}
func (*Term) ftsNode()        {}
func (*Phrase) ftsNode()      {}

func (n *Default) Operand() Test  { return n.Test }
func (n *Default) Excluded() bool { return false }
func (n *Exclude) Operand() Test  { return n.Test }
func (n *Exclude) Excluded() bool { return true }

func (*Term) ftsTest()   {}
func (*Phrase) ftsTest() {}

func (n *Term) Value() string   { return n.Word }
func (n *Phrase) Value() string { return n.Text }

func (n *Disjunction) String() string {
	parts := make([]string, len(n.Conjunctions))
	for i, c := range n.Conjunctions {
		parts[i] = c.String()
	}
	return "Disjunction[" + strings.Join(parts, ", ") + "]"
}

func (n *Conjunction) String() string {
	parts := make([]string, len(n.Terms))
	for i, t := range n.Terms {
		parts[i] = t.String()
	}
	return "Conjunction[" + strings.Join(parts, ", ") + "]"
}

func (n *Default) String() string { return "Default[" + n.Test.String() + "]" }
func (n *Exclude) String() string { return "Exclude[" + n.Test.String() + "]" }
func (n *Term) String() string    { return "Term[" + n.Word + "]" }
func (n *Phrase) String() string  { return "Phrase[" + n.Raw + "]" }

// Walk calls fn for node and every descendant, depth first. Returning false
// from fn skips the children of that node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Disjunction:
		for _, c := range n.Conjunctions {
			Walk(c, fn)
		}
	case *Conjunction:
		for _, t := range n.Terms {
			Walk(t, fn)
		}
	case *Default:
		Walk(n.Test, fn)
	case *Exclude:
		Walk(n.Test, fn)
	}
}
