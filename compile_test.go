package cmisql

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-cmisql/internal/dictionary"
	"github.com/nlstn/go-cmisql/internal/evaluation"
	"github.com/nlstn/go-cmisql/internal/observability"
)

var (
	cmisField = func(local string) string { return "@{" + cmisNamespace + "}" + local }
	cmField   = func(local string) string { return "@{" + dictionary.ContentNamespace + "}" + local }
)

func fieldsByClause(plan *Plan) map[Clause][]string {
	out := make(map[Clause][]string)
	for _, f := range plan.Fields {
		out[f.Clause] = append(out[f.Clause], f.Field)
	}
	return out
}

func TestCompileResolvesEveryClause(t *testing.T) {
	c := newTestCompiler(t, Config{})
	query := "SELECT d.cmis:name, title FROM cmis:document d JOIN cmis:folder f ON d.cmis:parentId = f.cmis:objectId " +
		"WHERE d.cmis:name = 'x' AND 'red' = ANY tags"

	plan, err := c.Compile(context.Background(), query, nil)
	require.NoError(t, err)

	assert.Equal(t, map[Clause][]string{
		ClauseSelect: {cmisField("name"), cmField("title")},
		ClauseJoin:   {cmisField("parentId"), cmisField("objectId")},
		ClauseWhere:  {cmisField("name"), cmField("tags")},
	}, fieldsByClause(plan))
	assert.Empty(t, plan.Sorts)
	assert.Empty(t, plan.Contains)
	assert.Equal(t, Fingerprint(query), plan.Fingerprint)
	assert.Len(t, plan.FingerprintHex(), 16)
	assert.NotEmpty(t, plan.SessionID)
	assert.Equal(t, ModeStrict, plan.Mode)
}

func TestCompilePlanFieldLookup(t *testing.T) {
	c := newTestCompiler(t, Config{})
	plan, err := c.Compile(context.Background(), "SELECT cmis:name FROM cmis:document", nil)
	require.NoError(t, err)

	ref := plan.Query.Select.Items[0].(*Column).Expr.(*ColumnRef)
	field, ok := plan.Field(ref)
	require.True(t, ok)
	assert.Equal(t, cmisField("name"), field)

	_, ok = plan.Field(&ColumnRef{Name: "cmis:name"})
	assert.False(t, ok)
}

func TestCompileSorts(t *testing.T) {
	c := newTestCompiler(t, Config{})
	adaptor := c.NewIndexAdaptor()

	tests := []struct {
		name  string
		query string
		want  []SortField
	}{
		{
			name:  "text uses keyword subfield",
			query: "SELECT * FROM cmis:document ORDER BY cmis:name",
			want:  []SortField{{Property: "cmis:name", Field: "cmis%3Aname.keyword"}},
		},
		{
			name:  "datetime and default types",
			query: "SELECT * FROM cmis:document ORDER BY cmis:creationDate DESC, cmis:objectId",
			want: []SortField{
				{Property: "cmis:creationDate", Field: "cmis%3AcreationDate", Descending: true},
				{Property: "cmis:objectId", Field: cmisField("objectId")},
			},
		},
		{
			name:  "select alias",
			query: "SELECT cmis:objectId AS id FROM cmis:document ORDER BY id DESC",
			want:  []SortField{{Property: "cmis:objectId", Field: cmisField("objectId"), Descending: true}},
		},
		{
			name:  "score alias",
			query: "SELECT SCORE() AS s FROM cmis:document WHERE CONTAINS('x') ORDER BY s DESC",
			want:  []SortField{{Property: "score", Field: "score", Descending: true}},
		},
		{
			name:  "mltext in default namespace",
			query: "SELECT * FROM cmis:document ORDER BY title ASC",
			want:  []SortField{{Property: "title", Field: "cm%3Atitle.keyword"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := c.Compile(context.Background(), tt.query, adaptor)
			require.NoError(t, err)
			require.Len(t, plan.Sorts, len(tt.want))
			for i, want := range tt.want {
				got := plan.Sorts[i]
				assert.Same(t, plan.Query.OrderBy[i], got.Spec)
				assert.Equal(t, want.Property, got.Property)
				assert.Equal(t, want.Field, got.Field)
				assert.Equal(t, want.Descending, got.Descending)
			}
		})
	}
}

func TestCompileNilAdaptorSortsOnResolvedFields(t *testing.T) {
	c := newTestCompiler(t, Config{})
	plan, err := c.Compile(context.Background(), "SELECT * FROM cmis:document ORDER BY cmis:name, cmis:creationDate", nil)
	require.NoError(t, err)
	require.Len(t, plan.Sorts, 2)
	assert.Equal(t, cmisField("name"), plan.Sorts[0].Field)
	assert.Equal(t, cmisField("creationDate"), plan.Sorts[1].Field)
}

func TestCompileTypedNilIndexAdaptor(t *testing.T) {
	c := newTestCompiler(t, Config{})
	var adaptor *IndexAdaptor
	plan, err := c.Compile(context.Background(), "SELECT * FROM cmis:document ORDER BY cmis:name", adaptor)
	require.NoError(t, err)
	require.Len(t, plan.Sorts, 1)
	assert.Equal(t, cmisField("name"), plan.Sorts[0].Field)
}

func TestCompileErrors(t *testing.T) {
	notQueryable := func(_ *evaluation.Context, field string) bool {
		return field != cmField("description")
	}

	tests := []struct {
		name   string
		cfg    Config
		query  string
		target error
		kind   string
	}{
		{
			name:   "lexical",
			query:  "SELECT * FROM t WHERE a = 'x",
			target: ErrLexical,
			kind:   "lexical",
		},
		{
			name:   "syntax",
			query:  "SELECT FROM cmis:document",
			target: ErrSyntax,
			kind:   "syntax",
		},
		{
			name:   "score without contains",
			query:  "SELECT SCORE() FROM cmis:document",
			target: ErrInvalidQuery,
			kind:   "invalid_query",
		},
		{
			name:   "unknown property",
			query:  "SELECT * FROM cmis:document WHERE cm:nope = 1",
			target: ErrUnknownProperty,
			kind:   "unknown_property",
		},
		{
			name:   "unknown select column",
			query:  "SELECT cm:nope FROM cmis:document",
			target: ErrUnknownProperty,
			kind:   "unknown_property",
		},
		{
			name:   "order on content",
			query:  "SELECT * FROM cmis:document ORDER BY cm:content",
			target: ErrUnsupportedOrdering,
			kind:   "unsupported_ordering",
		},
		{
			name:   "order on function alias",
			cfg:    Config{Mode: ModeAlfresco},
			query:  "SELECT UPPER(cmis:name) AS n FROM cmis:document ORDER BY n",
			target: ErrNotOrderable,
			kind:   "not_orderable",
		},
		{
			name:   "orderable policy",
			cfg:    Config{OrderablePolicy: evaluation.TokenisedOrderablePolicy},
			query:  "SELECT * FROM cmis:document ORDER BY cm:description",
			target: ErrNotOrderable,
			kind:   "not_orderable",
		},
		{
			name:   "queryable policy",
			cfg:    Config{QueryablePolicy: notQueryable},
			query:  "SELECT * FROM cmis:document WHERE description = 'x'",
			target: ErrNotQueryable,
			kind:   "not_queryable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(t, tt.cfg)
			plan, err := c.Compile(context.Background(), tt.query, nil)
			assert.Nil(t, plan)
			require.ErrorIs(t, err, tt.target)
			assert.Equal(t, tt.kind, ErrorKind(err))
		})
	}
}

func TestCompileResolutionErrorsAreFTSQueryErrors(t *testing.T) {
	c := newTestCompiler(t, Config{})
	_, err := c.Compile(context.Background(), "SELECT * FROM cmis:document WHERE cm:nope = 1", nil)

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "cm:nope", re.Property)
	assert.Equal(t, "Unknown property: cm:nope", re.Error())
	assert.ErrorIs(t, err, ErrFTSQuery)
}

func TestCompileQueryablePolicyIgnoresSelectList(t *testing.T) {
	c := newTestCompiler(t, Config{QueryablePolicy: func(*evaluation.Context, string) bool { return false }})
	plan, err := c.Compile(context.Background(), "SELECT description FROM cmis:document", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{cmField("description")}, fieldsByClause(plan)[ClauseSelect])
}

func TestCompileCollectsContains(t *testing.T) {
	c := newTestCompiler(t, Config{Mode: ModeAlfresco})
	plan, err := c.Compile(context.Background(),
		"SELECT * FROM cmis:document WHERE CONTAINS('alpha') AND (CONTAINS('beta') OR cmis:name = 'x')", nil)
	require.NoError(t, err)

	require.Len(t, plan.Contains, 2)
	assert.Equal(t, "alpha", plan.Contains[0].Text)
	assert.Equal(t, "beta", plan.Contains[1].Text)
	assert.NotNil(t, plan.Contains[0].Expression)
}

func TestCompilePhaseTimings(t *testing.T) {
	c := newTestCompiler(t, Config{Observability: observability.NewConfig(observability.WithPhaseTimings())})
	plan, err := c.Compile(context.Background(),
		"SELECT cmis:name FROM cmis:document ORDER BY cmis:name", nil)
	require.NoError(t, err)
	require.NotNil(t, plan.Timings)

	var names []string
	for _, m := range plan.Timings.Metrics {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, observability.PhaseParse)
	assert.Contains(t, names, observability.PhaseResolve)
	assert.Contains(t, names, observability.PhaseSort)
}

func TestCompileUsesCallerTimingHeader(t *testing.T) {
	c := newTestCompiler(t, Config{})
	ctx, header := observability.ContextWithPhaseTimings(context.Background())

	plan, err := c.Compile(ctx, "SELECT * FROM cmis:document", nil)
	require.NoError(t, err)
	assert.Same(t, header, plan.Timings)
	assert.NotEmpty(t, header.Metrics)
}

func TestCompileConcurrent(t *testing.T) {
	c := newTestCompiler(t, Config{})
	adaptor := c.NewIndexAdaptor()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plan, err := c.Compile(context.Background(),
				"SELECT cmis:name FROM cmis:document WHERE title = 'x' ORDER BY cmis:name", adaptor)
			if err == nil && len(plan.Fields) != 2 {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
