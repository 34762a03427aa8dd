package cmisql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/nlstn/go-cmisql/internal/dictionary"
	"github.com/nlstn/go-cmisql/internal/observability"
)

const cmisNamespace = "http://www.alfresco.org/model/cmis/1.0/cs01"

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.RegisterNamespace("cmis", cmisNamespace))
	require.NoError(t, reg.RegisterNamespace("cm", dictionary.ContentNamespace))

	defs := []dictionary.PropertyDefinition{
		{Name: dictionary.NewQName(cmisNamespace, "name"), DataType: dictionary.DataTypeText, Tokenised: dictionary.TokeniseBoth},
		{Name: dictionary.NewQName(cmisNamespace, "objectId"), DataType: dictionary.DataTypeNodeRef},
		{Name: dictionary.NewQName(cmisNamespace, "parentId"), DataType: dictionary.DataTypeNodeRef},
		{Name: dictionary.NewQName(cmisNamespace, "creationDate"), DataType: dictionary.DataTypeDatetime},
		{Name: dictionary.NewQName(dictionary.ContentNamespace, "title"), DataType: dictionary.DataTypeMLText},
		{Name: dictionary.NewQName(dictionary.ContentNamespace, "description"), DataType: dictionary.DataTypeText, Tokenised: dictionary.TokeniseTrue},
		{Name: dictionary.NewQName(dictionary.ContentNamespace, "content"), DataType: dictionary.DataTypeContent},
		{Name: dictionary.NewQName(dictionary.ContentNamespace, "tags"), DataType: dictionary.DataTypeText, MultiValued: true},
	}
	for _, def := range defs {
		require.NoError(t, reg.RegisterProperty(def))
	}
	return reg
}

func newTestCompiler(t *testing.T, cfg Config) *Compiler {
	t.Helper()
	if cfg.Registry == nil && cfg.Dictionary == nil {
		cfg.Registry = testRegistry(t)
	}
	if cfg.DefaultNamespace == "" {
		cfg.DefaultNamespace = dictionary.ContentNamespace
	}
	c, err := NewCompiler(&cfg)
	require.NoError(t, err)
	return c
}

func TestNewCompilerDefaults(t *testing.T) {
	c, err := NewCompiler(nil)
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, c.Mode())

	q, err := c.ParseQuery(context.Background(), "SELECT * FROM cmis:document")
	require.NoError(t, err)
	assert.True(t, q.Select.All)
}

// dictionaryOnly implements Service without NamespaceResolver.
type dictionaryOnly struct{}

func (dictionaryOnly) Property(dictionary.QName) (*dictionary.PropertyDefinition, bool) {
	return nil, false
}

func (dictionaryOnly) DataType(dictionary.QName) (*dictionary.DataTypeDefinition, bool) {
	return nil, false
}

func TestNewCompilerInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown mode", Config{Mode: Mode(7)}},
		{"braced namespace", Config{DefaultNamespace: "{urn:x}"}},
		{"dictionary without resolver", Config{Dictionary: dictionaryOnly{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompiler(&tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewCompilerDoesNotModifyConfig(t *testing.T) {
	cfg := &Config{}
	_, err := NewCompiler(cfg)
	require.NoError(t, err)
	assert.Nil(t, cfg.Registry)
	assert.Nil(t, cfg.Dictionary)
	assert.Nil(t, cfg.Logger)
}

func TestNewCompilerSeparateResolver(t *testing.T) {
	reg := testRegistry(t)
	c, err := NewCompiler(&Config{Dictionary: reg, Namespaces: reg})
	require.NoError(t, err)
	field, err := c.NewEvaluationContext().ResolveFieldName("cm:title")
	require.NoError(t, err)
	assert.Equal(t, "@{"+dictionary.ContentNamespace+"}title", field)
}

func TestTokenize(t *testing.T) {
	c := newTestCompiler(t, Config{})
	input := "SELECT cmis:name\tFROM cmis:document WHERE cmis:name = 'x'"

	tokens, err := c.Tokenize(context.Background(), input)
	require.NoError(t, err)

	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Text)
	}
	assert.Equal(t, input, b.String())

	_, err = c.Tokenize(context.Background(), "SELECT * FROM t WHERE a = 'x")
	assert.ErrorIs(t, err, ErrLexical)
}

func TestTokenizeFTS(t *testing.T) {
	c := newTestCompiler(t, Config{})
	tokens, err := c.TokenizeFTS(context.Background(), "alpha -'big cat'")
	require.NoError(t, err)

	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Text)
	}
	assert.Equal(t, "alpha -'big cat'", b.String())
}

func TestParseFTS(t *testing.T) {
	c := newTestCompiler(t, Config{})

	d, err := c.ParseFTS(context.Background(), "alpha beta OR -gamma")
	require.NoError(t, err)
	require.Len(t, d.Conjunctions, 2)
	assert.Len(t, d.Conjunctions[0].Terms, 2)
	assert.True(t, d.Conjunctions[1].Terms[0].Excluded())

	_, err = c.ParseFTS(context.Background(), "")
	assert.ErrorIs(t, err, ErrSyntax)
	assert.ErrorIs(t, err, ErrEmptyExpression)
}

func TestParseQueryModes(t *testing.T) {
	const query = `SELECT * FROM cmis:document WHERE "ORDER" = :p`

	strict := newTestCompiler(t, Config{})
	_, err := strict.ParseQuery(context.Background(), query)
	assert.ErrorIs(t, err, ErrSyntax)

	alfresco := newTestCompiler(t, Config{Mode: ModeAlfresco})
	q, err := alfresco.ParseQuery(context.Background(), query)
	require.NoError(t, err)
	assert.NotNil(t, q.Where)
}

func TestParseQueryDisableFTSParsing(t *testing.T) {
	c := newTestCompiler(t, Config{DisableFTSParsing: true})
	q, err := c.ParseQuery(context.Background(), "SELECT * FROM cmis:document WHERE CONTAINS('alpha')")
	require.NoError(t, err)

	var contains []*Contains
	Walk(q, func(n Node) bool {
		if ct, ok := n.(*Contains); ok {
			contains = append(contains, ct)
		}
		return true
	})
	require.Len(t, contains, 1)
	assert.Nil(t, contains[0].Expression)
	assert.Equal(t, "alpha", contains[0].Text)
}

func TestNewEvaluationContext(t *testing.T) {
	c := newTestCompiler(t, Config{})
	a := c.NewEvaluationContext()
	b := c.NewEvaluationContext()
	assert.NotEqual(t, a.SessionID(), b.SessionID())

	field, err := a.ResolveFieldName("title")
	require.NoError(t, err)
	assert.Equal(t, "@{"+dictionary.ContentNamespace+"}title", field)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("SELECT * FROM cmis:document")
	assert.Equal(t, a, Fingerprint("SELECT * FROM cmis:document"))
	assert.NotEqual(t, a, Fingerprint("SELECT * FROM cmis:folder"))
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&LexError{Msg: "x"}, "lexical"},
		{&ParseError{}, "syntax"},
		{&QueryError{Msg: "x"}, "invalid_query"},
		{&ResolveError{Msg: "x", Err: ErrUnknownProperty}, "unknown_property"},
		{&ResolveError{Msg: "x", Err: ErrSuffixTypeMismatch}, "suffix_type_mismatch"},
		{&ResolveError{Msg: "x", Err: ErrUnsupportedOrdering}, "unsupported_ordering"},
		{ErrNotQueryable, "not_queryable"},
		{ErrNotOrderable, "not_orderable"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err))
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	c := newTestCompiler(t, Config{})
	c.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	_, err := c.Compile(context.Background(), "SELECT * FROM cmis:document WHERE cm:nope = 1", nil)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "cmisql operation failed")
	assert.Contains(t, buf.String(), "kind=unknown_property")

	c.SetLogger(nil)
}

func TestCompilerWithObservability(t *testing.T) {
	obs := observability.NewConfig(
		observability.WithTracerProvider(tracenoop.NewTracerProvider()),
		observability.WithMeterProvider(noop.NewMeterProvider()),
		observability.WithQueryTextTracing(),
	)
	c := newTestCompiler(t, Config{Observability: obs})

	plan, err := c.Compile(context.Background(), "SELECT cmis:name FROM cmis:document", nil)
	require.NoError(t, err)
	assert.Len(t, plan.Fields, 1)
	assert.Nil(t, plan.Timings)
}
