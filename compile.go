package cmisql

import (
	"context"
	"fmt"
	"strings"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"

	"github.com/nlstn/go-cmisql/internal/cmis"
	"github.com/nlstn/go-cmisql/internal/evaluation"
	"github.com/nlstn/go-cmisql/internal/observability"
)

// Clause tells which part of a query a resolved field came from.
type Clause string

const (
	ClauseSelect Clause = "select"
	ClauseJoin   Clause = "join"
	ClauseWhere  Clause = "where"
)

// ResolvedField maps one column reference to its index field.
type ResolvedField struct {
	Ref    *ColumnRef
	Clause Clause
	Field  string
}

// SortField is one resolved ORDER BY entry.
type SortField struct {
	Spec *SortSpec
	// Property is the name sorted on after select aliases are substituted.
	Property   string
	Field      string
	Descending bool
}

// Plan is the result of Compile.
type Plan struct {
	Query       *Query
	Mode        Mode
	Fingerprint uint64
	// SessionID is the id of the evaluation context used for resolution.
	SessionID string
	Fields    []ResolvedField
	Sorts     []SortField
	// Contains lists the full text predicates in source order.
	Contains []*Contains
	// Timings holds per-phase durations when phase timings are enabled or
	// the context passed to Compile carried a timing header.
	Timings *servertiming.Header
}

// FingerprintHex renders the fingerprint as 16 hex digits.
func (p *Plan) FingerprintHex() string {
	return observability.FormatFingerprint(p.Fingerprint)
}

// Field returns the index field a column reference resolved to.
func (p *Plan) Field(ref *ColumnRef) (string, bool) {
	for _, f := range p.Fields {
		if f.Ref == ref {
			return f.Field, true
		}
	}
	return "", false
}

// Compile parses and validates query, then resolves every column reference
// in the select list, join conditions and WHERE clause, and every ORDER BY
// entry. Predicate properties must pass the queryable policy and sort
// properties the orderable policy. ORDER BY may name a select alias.
// A nil adaptor, typed or not, sorts on the resolved fields unchanged.
func (c *Compiler) Compile(ctx context.Context, query string, adaptor SortAdaptor) (*Plan, error) {
	fp := Fingerprint(query)
	tracer := c.obs.Tracer()
	ctx, span := tracer.StartCompile(ctx, c.cfg.Mode.String(), fp)
	defer span.End()
	if c.obs.QueryTextTracingEnabled() {
		tracer.AddQueryText(span, query)
	}

	timings := observability.PhaseTimings(ctx)
	if timings == nil && c.obs.PhaseTimingsEnabled() {
		ctx, timings = observability.ContextWithPhaseTimings(ctx)
	}
	if ia, ok := adaptor.(*IndexAdaptor); ok && ia == nil {
		adaptor = nil
	}

	start := time.Now()
	q, err := c.ParseQuery(ctx, query)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("compile query: %w", err)
	}

	ec := c.NewEvaluationContext()
	plan := &Plan{
		Query:       q,
		Mode:        c.cfg.Mode,
		Fingerprint: fp,
		SessionID:   ec.SessionID(),
		Timings:     timings,
	}

	if err := c.resolveColumns(ctx, ec, plan, q); err != nil {
		tracer.RecordError(span, err)
		c.fail(ctx, observability.OpResolve, err)
		return nil, fmt.Errorf("compile query: %w", err)
	}
	if err := c.resolveSorts(ctx, ec, plan, adaptor); err != nil {
		tracer.RecordError(span, err)
		c.fail(ctx, observability.OpSort, err)
		return nil, fmt.Errorf("compile query: %w", err)
	}

	elapsed := time.Since(start)
	tracer.AddPlanAttributes(span, len(plan.Fields), len(plan.Sorts), len(plan.Contains) > 0)
	c.obs.Metrics().RecordCompile(ctx, c.cfg.Mode.String(), elapsed, len(plan.Fields))
	observability.LoggerWithTrace(ctx, c.logger).Debug("query compiled",
		observability.LogFieldFingerprint, plan.FingerprintHex(),
		"session_id", plan.SessionID,
		"fields", len(plan.Fields),
		"sorts", len(plan.Sorts),
		observability.LogFieldDuration, elapsed.Milliseconds())
	return plan, nil
}

func (c *Compiler) resolveColumns(ctx context.Context, ec *evaluation.Context, plan *Plan, q *Query) error {
	defer observability.StartPhase(ctx, observability.PhaseResolve).Stop()

	type clauseNode struct {
		clause Clause
		node   cmis.Node
	}
	var clauses []clauseNode
	if q.Select != nil {
		clauses = append(clauses, clauseNode{ClauseSelect, q.Select})
	}
	if q.From != nil {
		clauses = append(clauses, clauseNode{ClauseJoin, q.From})
	}
	if q.Where != nil {
		clauses = append(clauses, clauseNode{ClauseWhere, q.Where})
	}
	for _, cl := range clauses {
		var err error
		cmis.Walk(cl.node, func(n cmis.Node) bool {
			if err != nil {
				return false
			}
			switch n := n.(type) {
			case *cmis.ColumnRef:
				err = c.resolveRef(ctx, ec, plan, n, cl.clause)
			case *cmis.Contains:
				plan.Contains = append(plan.Contains, n)
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) resolveRef(ctx context.Context, ec *evaluation.Context, plan *Plan, ref *ColumnRef, clause Clause) error {
	tracer := c.obs.Tracer()
	_, span := tracer.StartResolve(ctx, ref.Name)
	defer span.End()

	field, err := ec.ResolveFieldName(ref.Name)
	if err != nil {
		tracer.RecordError(span, err)
		return err
	}
	if clause == ClauseWhere && !ec.IsQueryable(field) {
		err := fmt.Errorf("%w: %s at line %s", ErrNotQueryable, ref.Name, ref.Position)
		tracer.RecordError(span, err)
		return err
	}
	span.SetAttributes(observability.FieldAttr(field))
	plan.Fields = append(plan.Fields, ResolvedField{Ref: ref, Clause: clause, Field: field})
	return nil
}

// selectAliases maps column aliases to their expressions.
func selectAliases(q *Query) map[string]cmis.ValueExpr {
	aliases := make(map[string]cmis.ValueExpr)
	if q.Select == nil {
		return aliases
	}
	for _, item := range q.Select.Items {
		if col, ok := item.(*cmis.Column); ok && col.Alias != "" {
			aliases[col.Alias] = col.Expr
		}
	}
	return aliases
}

func (c *Compiler) resolveSorts(ctx context.Context, ec *evaluation.Context, plan *Plan, adaptor SortAdaptor) error {
	if len(plan.Query.OrderBy) == 0 {
		return nil
	}
	defer observability.StartPhase(ctx, observability.PhaseSort).Stop()

	aliases := selectAliases(plan.Query)
	for _, spec := range plan.Query.OrderBy {
		name := spec.Column.Name
		if expr, ok := aliases[name]; ok && spec.Column.Qualifier == "" {
			switch e := expr.(type) {
			case *cmis.ColumnRef:
				name = e.Name
			case *cmis.FunctionCall:
				if !strings.EqualFold(e.Name, "SCORE") {
					return fmt.Errorf("%w: function %s at line %s", ErrNotOrderable, e.Name, spec.Position)
				}
				name = evaluation.FieldScore
			}
		}

		if !strings.EqualFold(name, evaluation.FieldScore) {
			field, err := ec.ResolveFieldName(name)
			if err != nil {
				return err
			}
			if !ec.IsOrderable(field) {
				return fmt.Errorf("%w: %s at line %s", ErrNotOrderable, name, spec.Position)
			}
		}

		sortField, err := ec.ResolveSortField(name, adaptor)
		if err != nil {
			return err
		}
		plan.Sorts = append(plan.Sorts, SortField{
			Spec:       spec,
			Property:   name,
			Field:      sortField,
			Descending: spec.Descending,
		})
	}
	return nil
}
