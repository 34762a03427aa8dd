package cmis

// Walk calls fn for node and every descendant, depth first, in source
// order. Returning false from fn skips the children of that node. The FTS
// subtree of a Contains node is not visited.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Query:
		Walk(n.Select, fn)
		Walk(n.From, fn)
		if n.Where != nil {
			Walk(n.Where, fn)
		}
		for _, s := range n.OrderBy {
			Walk(s, fn)
		}
	case *SelectList:
		for _, item := range n.Items {
			Walk(item, fn)
		}
	case *Column:
		Walk(n.Expr, fn)
	case *FunctionCall:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *Source:
		Walk(n.Table, fn)
		for _, j := range n.Joins {
			Walk(j, fn)
		}
	case *Join:
		Walk(n.Right, fn)
		if n.On != nil {
			Walk(n.On, fn)
		}
	case *JoinCondition:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Disjunction:
		for _, t := range n.Terms {
			Walk(t, fn)
		}
	case *Conjunction:
		for _, t := range n.Terms {
			Walk(t, fn)
		}
	case *Negation:
		Walk(n.Operand, fn)
	case *Comparison:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *In:
		Walk(n.Column, fn)
		for _, v := range n.Values {
			Walk(v, fn)
		}
	case *Like:
		Walk(n.Column, fn)
		Walk(n.Pattern, fn)
	case *Exists:
		Walk(n.Column, fn)
	case *FolderPredicate:
		Walk(n.FolderID, fn)
	case *SortSpec:
		Walk(n.Column, fn)
	}
}
