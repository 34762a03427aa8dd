// Package cmisql is the query language front end of a content repository
// search subsystem.
//
// It tokenizes and parses CMIS SQL-like queries and the full text
// expressions embedded in CONTAINS(), and resolves the logical property
// names used in those queries into index field names:
//
//	c, err := cmisql.NewCompiler(&cmisql.Config{
//		Registry:         reg,
//		DefaultNamespace: "http://www.alfresco.org/model/content/1.0",
//	})
//	plan, err := c.Compile(ctx, "SELECT * FROM cmis:document WHERE CONTAINS('alpha -beta')", nil)
//
// Nothing is executed: a Plan carries the syntax tree, the resolved fields
// and sort fields, which an index adaptor turns into a search request.
package cmisql

import (
	"context"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nlstn/go-cmisql/internal/cmis"
	"github.com/nlstn/go-cmisql/internal/esadaptor"
	"github.com/nlstn/go-cmisql/internal/evaluation"
	"github.com/nlstn/go-cmisql/internal/fts"
	"github.com/nlstn/go-cmisql/internal/observability"
)

// Compiler parses and resolves queries against one dictionary. It is safe
// for concurrent use once configured.
type Compiler struct {
	cfg    *Config
	obs    *observability.Config
	logger *slog.Logger
}

// NewCompiler validates cfg, fills in defaults and returns a compiler.
// A nil cfg is treated as the zero Config.
func NewCompiler(cfg *Config) (*Compiler, error) {
	validated, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	return &Compiler{
		cfg:    validated,
		obs:    validated.Observability,
		logger: validated.Logger,
	}, nil
}

// SetLogger sets a custom logger for the compiler.
// If not called, the configured logger or slog.Default() is used.
// It must not be called concurrently with compilation.
func (c *Compiler) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	c.logger = logger
	c.cfg.Logger = logger
}

// Mode returns the configured dialect.
func (c *Compiler) Mode() Mode {
	return c.cfg.Mode
}

// Fingerprint identifies a query text in logs, spans and plans.
func Fingerprint(query string) uint64 {
	return xxhash.Sum64String(query)
}

func (c *Compiler) parseOptions() []cmis.ParseOption {
	return []cmis.ParseOption{
		cmis.WithMode(c.cfg.Mode),
		cmis.WithFTSParsing(!c.cfg.DisableFTSParsing),
		cmis.WithLogger(c.logger),
	}
}

func (c *Compiler) fail(ctx context.Context, op string, err error) {
	kind := ErrorKind(err)
	c.obs.Metrics().RecordError(ctx, op, kind)
	observability.LoggerWithTrace(ctx, c.logger).Warn("cmisql operation failed",
		observability.LogFieldOperation, op,
		"kind", kind,
		observability.LogFieldError, err)
}

// Tokenize splits query into CMIS tokens, whitespace included.
func (c *Compiler) Tokenize(ctx context.Context, query string) ([]Token, error) {
	ctx, span := c.obs.Tracer().StartTokenize(ctx, observability.GrammarCMIS, len(query))
	defer span.End()
	defer observability.StartPhase(ctx, observability.PhaseTokenize).Stop()

	tokens, err := cmis.NewLexer(query).TokenizeAll()
	if err != nil {
		c.obs.Tracer().RecordError(span, err)
		c.fail(ctx, observability.OpTokenize, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int(observability.AttrTokenCount, len(tokens)))
	return tokens, nil
}

// TokenizeFTS splits a full text expression into tokens.
func (c *Compiler) TokenizeFTS(ctx context.Context, expr string) ([]FTSToken, error) {
	ctx, span := c.obs.Tracer().StartTokenize(ctx, observability.GrammarFTS, len(expr))
	defer span.End()

	tokens, err := fts.NewLexer(expr).TokenizeAll()
	if err != nil {
		c.obs.Tracer().RecordError(span, err)
		c.fail(ctx, observability.OpTokenize, err)
		return nil, err
	}
	return tokens, nil
}

// ParseQuery parses and validates a CMIS query.
func (c *Compiler) ParseQuery(ctx context.Context, query string) (*Query, error) {
	ctx, span := c.obs.Tracer().StartParse(ctx, observability.GrammarCMIS, Fingerprint(query))
	defer span.End()
	defer observability.StartPhase(ctx, observability.PhaseParse).Stop()

	start := time.Now()
	q, err := cmis.Parse(query, c.parseOptions()...)
	c.obs.Metrics().RecordParse(ctx, observability.GrammarCMIS, time.Since(start))
	if err != nil {
		c.obs.Tracer().RecordError(span, err)
		c.fail(ctx, observability.OpParse, err)
		return nil, err
	}
	return q, nil
}

// ParseFTS parses a full text expression as written inside CONTAINS(),
// without the surrounding quotes.
func (c *Compiler) ParseFTS(ctx context.Context, expr string) (*FTSExpression, error) {
	ctx, span := c.obs.Tracer().StartParse(ctx, observability.GrammarFTS, Fingerprint(expr))
	defer span.End()
	defer observability.StartPhaseWithDesc(ctx, observability.PhaseParse, observability.GrammarFTS).Stop()

	start := time.Now()
	d, err := fts.Parse(expr)
	c.obs.Metrics().RecordParse(ctx, observability.GrammarFTS, time.Since(start))
	if err != nil {
		c.obs.Tracer().RecordError(span, err)
		c.fail(ctx, observability.OpParse, err)
		return nil, err
	}
	return d, nil
}

// NewEvaluationContext returns a resolution context over the configured
// dictionary. Each context carries its own session id; opts are applied
// after the configured ones.
func (c *Compiler) NewEvaluationContext(opts ...EvaluationOption) *EvaluationContext {
	all := append(c.cfg.evaluationOptions(), opts...)
	return evaluation.New(c.cfg.Dictionary, c.cfg.Namespaces, c.cfg.DefaultNamespace, all...)
}

// NewIndexAdaptor returns an Elasticsearch adaptor that names fields with
// the configured namespace prefixes.
func (c *Compiler) NewIndexAdaptor(opts ...IndexAdaptorOption) *IndexAdaptor {
	all := append([]esadaptor.Option{esadaptor.WithLogger(c.logger)}, opts...)
	return esadaptor.New(c.cfg.Namespaces, all...)
}
