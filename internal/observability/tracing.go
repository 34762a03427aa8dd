package observability

import (
	"context"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with span helpers for each
// compilation phase.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName),
		serviceName: serviceName,
	}
}

// StartSpan starts a new span with the given name and attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}

// StartTokenize starts a span for lexing input in the given grammar.
func (t *Tracer) StartTokenize(ctx context.Context, grammar string, inputLen int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "cmisql.tokenize", trace.WithAttributes(
		GrammarAttr(grammar),
		OperationAttr(OpTokenize),
		attribute.Int(AttrInputLength, inputLen),
	))
}

// StartParse starts a span for parsing a query or FTS expression.
func (t *Tracer) StartParse(ctx context.Context, grammar string, fingerprint uint64) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "cmisql.parse", trace.WithAttributes(
		GrammarAttr(grammar),
		OperationAttr(OpParse),
		FingerprintAttr(fingerprint),
	))
}

// StartResolve starts a span for resolving one property reference.
func (t *Tracer) StartResolve(ctx context.Context, property string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "cmisql.resolve", trace.WithAttributes(
		OperationAttr(OpResolve),
		PropertyAttr(property),
	))
}

// StartCompile starts the root span of a compilation.
func (t *Tracer) StartCompile(ctx context.Context, mode string, fingerprint uint64) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "cmisql.compile", trace.WithAttributes(
		OperationAttr(OpCompile),
		ModeAttr(mode),
		FingerprintAttr(fingerprint),
	))
}

// StartTranslate starts a span for translating an FTS tree to an index query.
func (t *Tracer) StartTranslate(ctx context.Context, field string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "cmisql.translate", trace.WithAttributes(
		OperationAttr(OpTranslate),
		FieldAttr(field),
	))
}

// StartDBQuery starts a span for a dictionary store query.
func (t *Tracer) StartDBQuery(ctx context.Context, operation string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "db.query", trace.WithAttributes(
		attribute.String("db.operation", operation),
	))
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddPlanAttributes summarises a compiled plan on span.
func (t *Tracer) AddPlanAttributes(span trace.Span, fields, sorts int, hasContains bool) {
	span.SetAttributes(
		attribute.Int(AttrFieldCount, fields),
		attribute.Int(AttrSortCount, sorts),
		attribute.Bool(AttrHasContains, hasContains),
	)
}

// AddQueryText attaches the raw query to span.
func (t *Tracer) AddQueryText(span trace.Span, query string) {
	if query != "" {
		span.SetAttributes(attribute.String(AttrQueryText, query))
	}
}

// FormatFingerprint renders a fingerprint as fixed-width hex.
func FormatFingerprint(fp uint64) string {
	s := strconv.FormatUint(fp, 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
