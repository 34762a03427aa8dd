package cmis

import (
	"strings"
)

// String renders the query in canonical form: upper-case keywords, single
// spaces, and parentheses only where the tree needs them.
func (n *Query) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(n.Select.String())
	b.WriteString(" FROM ")
	b.WriteString(n.From.String())
	if n.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(n.Where.String())
	}
	if len(n.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		for i, s := range n.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.String())
		}
	}
	return b.String()
}

func (n *SelectList) String() string {
	if n.All {
		return "*"
	}
	parts := make([]string, len(n.Items))
	for i, item := range n.Items {
		parts[i] = item.String()
	}
	return strings.Join(parts, ", ")
}

func (n *Column) String() string {
	if n.Alias == "" {
		return n.Expr.String()
	}
	return n.Expr.String() + " AS " + quoteIdentifier(n.Alias)
}

func (n *AllColumns) String() string {
	return quoteIdentifier(n.Qualifier) + ".*"
}

func (n *ColumnRef) String() string {
	if n.Qualifier == "" {
		return quoteIdentifier(n.Name)
	}
	return quoteIdentifier(n.Qualifier) + "." + quoteIdentifier(n.Name)
}

func (n *FunctionCall) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Name + "(" + strings.Join(args, ", ") + ")"
}

func (n *Source) String() string {
	var b strings.Builder
	if inner, ok := n.Table.(*Source); ok {
		b.WriteString("(" + inner.String() + ")")
	} else {
		b.WriteString(n.Table.String())
	}
	for _, j := range n.Joins {
		b.WriteString(" ")
		b.WriteString(j.String())
	}
	return b.String()
}

func (n *TableRef) String() string {
	if n.Alias == "" {
		return quoteIdentifier(n.Name)
	}
	return quoteIdentifier(n.Name) + " AS " + quoteIdentifier(n.Alias)
}

func (n *Join) String() string {
	s := "JOIN " + n.Right.String()
	if n.Kind == JoinLeftOuter {
		s = "LEFT OUTER " + s
	}
	if n.On != nil {
		s += " " + n.On.String()
	}
	return s
}

func (n *JoinCondition) String() string {
	return "ON " + n.Left.String() + " = " + n.Right.String()
}

func (n *Disjunction) String() string {
	parts := make([]string, len(n.Terms))
	for i, t := range n.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " OR ")
}

func (n *Conjunction) String() string {
	parts := make([]string, len(n.Terms))
	for i, t := range n.Terms {
		parts[i] = nested(t)
	}
	return strings.Join(parts, " AND ")
}

func (n *Negation) String() string {
	return "NOT " + nested(n.Operand)
}

// nested parenthesises a disjunction appearing inside AND or NOT.
func nested(c Condition) string {
	if d, ok := c.(*Disjunction); ok {
		return "(" + d.String() + ")"
	}
	return c.String()
}

func (n *Comparison) String() string {
	if n.Mode == ModeAny {
		return n.Left.String() + " " + n.Op.String() + " ANY " + n.Right.String()
	}
	return n.Left.String() + " " + n.Op.String() + " " + n.Right.String()
}

func (n *In) String() string {
	var b strings.Builder
	if n.Mode == ModeAny {
		b.WriteString("ANY ")
	}
	b.WriteString(n.Column.String())
	if n.Not {
		b.WriteString(" NOT")
	}
	b.WriteString(" IN (")
	for i, v := range n.Values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteString(")")
	return b.String()
}

func (n *Like) String() string {
	if n.Not {
		return n.Column.String() + " NOT LIKE " + n.Pattern.String()
	}
	return n.Column.String() + " LIKE " + n.Pattern.String()
}

func (n *Exists) String() string {
	if n.Not {
		return n.Column.String() + " IS NULL"
	}
	return n.Column.String() + " IS NOT NULL"
}

func (n *Contains) String() string {
	if n.Qualifier != "" {
		return "CONTAINS(" + quoteIdentifier(n.Qualifier) + ", " + n.Raw + ")"
	}
	return "CONTAINS(" + n.Raw + ")"
}

func (n *FolderPredicate) String() string {
	name := "IN_FOLDER"
	if n.Descendants {
		name = "IN_TREE"
	}
	if n.Qualifier != "" {
		return name + "(" + quoteIdentifier(n.Qualifier) + ", " + n.FolderID.String() + ")"
	}
	return name + "(" + n.FolderID.String() + ")"
}

func (n *StringLiteral) String() string { return n.Raw }

func (n *NumericLiteral) String() string { return n.Raw }

func (n *BooleanLiteral) String() string {
	if n.Value {
		return "TRUE"
	}
	return "FALSE"
}

func (n *DatetimeLiteral) String() string { return "TIMESTAMP " + n.Raw }

func (n *Parameter) String() string { return ":" + quoteIdentifier(n.Name) }

func (n *SortSpec) String() string {
	if n.Descending {
		return n.Column.String() + " DESC"
	}
	return n.Column.String() + " ASC"
}

// quoteIdentifier wraps names that collide with a keyword in double quotes.
func quoteIdentifier(name string) string {
	if _, ok := keywords[strings.ToUpper(name)]; ok {
		return `"` + name + `"`
	}
	return name
}
