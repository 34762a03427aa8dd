package cmisql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-cmisql/internal/observability"
)

func searchJSON(t *testing.T, c *Compiler, query string) string {
	t.Helper()
	adaptor := c.NewIndexAdaptor()
	plan, err := c.Compile(context.Background(), query, adaptor)
	require.NoError(t, err)
	src, err := c.SearchSource(context.Background(), plan, adaptor)
	require.NoError(t, err)
	body, err := SearchSourceJSON(src)
	require.NoError(t, err)
	return string(body)
}

func TestSearchSource(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		query string
		want  string
	}{
		{
			name:  "contains with sort",
			query: "SELECT * FROM cmis:document WHERE CONTAINS('hello') ORDER BY cmis:name",
			want:  `{"query":{"match":{"TEXT":{"query":"hello"}}},"sort":[{"cmis%3Aname.keyword":{"order":"asc"}}]}`,
		},
		{
			name:  "score descending",
			query: "SELECT SCORE() AS s FROM cmis:document WHERE CONTAINS('\\'big cat\\'') ORDER BY s DESC",
			want:  `{"query":{"match_phrase":{"TEXT":{"query":"big cat"}}},"sort":[{"_score":{"order":"desc"}}]}`,
		},
		{
			name:  "no contains",
			query: "SELECT * FROM cmis:document WHERE cmis:name = 'x' ORDER BY cmis:creationDate DESC",
			want:  `{"sort":[{"cmis%3AcreationDate":{"order":"desc"}}]}`,
		},
		{
			name:  "several contains",
			cfg:   Config{Mode: ModeAlfresco},
			query: "SELECT * FROM cmis:document WHERE CONTAINS('alpha') AND CONTAINS('beta')",
			want:  `{"query":{"bool":{"must":[{"match":{"TEXT":{"query":"alpha"}}},{"match":{"TEXT":{"query":"beta"}}}]}}}`,
		},
		{
			name:  "fts parsing disabled",
			cfg:   Config{DisableFTSParsing: true},
			query: "SELECT * FROM cmis:document WHERE CONTAINS('hello')",
			want:  `{"query":{"match":{"TEXT":{"query":"hello"}}}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(t, tt.cfg)
			assert.JSONEq(t, tt.want, searchJSON(t, c, tt.query))
		})
	}
}

func TestSearchSourceNilPlan(t *testing.T) {
	c := newTestCompiler(t, Config{})
	_, err := c.SearchSource(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestSearchSourceDefaultAdaptor(t *testing.T) {
	c := newTestCompiler(t, Config{})
	plan, err := c.Compile(context.Background(), "SELECT * FROM cmis:document WHERE CONTAINS('hello')", nil)
	require.NoError(t, err)

	src, err := c.SearchSource(context.Background(), plan, nil)
	require.NoError(t, err)
	body, err := SearchSourceJSON(src)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"match":{"TEXT":{"query":"hello"}}}}`, string(body))
}

func TestSearchSourceTranslatePhase(t *testing.T) {
	c := newTestCompiler(t, Config{})
	ctx, header := observability.ContextWithPhaseTimings(context.Background())

	plan, err := c.Compile(ctx, "SELECT * FROM cmis:document WHERE CONTAINS('hello')", nil)
	require.NoError(t, err)
	_, err = c.SearchSource(ctx, plan, nil)
	require.NoError(t, err)
	assert.Contains(t, header.String(), observability.PhaseTranslate)
}
