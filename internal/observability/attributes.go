// Package observability provides OpenTelemetry-based instrumentation for
// query compilation.
//
// It supports distributed tracing, metrics collection, phase timings and
// structured logging enriched with trace context.
//
// All observability features are opt-in. When not configured, no-op
// implementations are used.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-cmisql"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-cmisql"
)

// Semantic attribute keys.
const (
	AttrGrammar     = "cmisql.grammar"
	AttrOperation   = "cmisql.operation"
	AttrMode        = "cmisql.mode"
	AttrFingerprint = "cmisql.fingerprint"
	AttrQueryText   = "cmisql.query.text"
	AttrInputLength = "cmisql.input.length"
	AttrTokenCount  = "cmisql.token.count"

	AttrProperty    = "cmisql.property"
	AttrField       = "cmisql.field"
	AttrFieldCount  = "cmisql.plan.fields"
	AttrSortCount   = "cmisql.plan.sorts"
	AttrHasContains = "cmisql.plan.contains"

	AttrErrorType = "error.type"
)

// Grammars for the cmisql.grammar attribute.
const (
	GrammarCMIS = "cmis"
	GrammarFTS  = "fts"
)

// Operations for the cmisql.operation attribute.
const (
	OpTokenize  = "tokenize"
	OpParse     = "parse"
	OpResolve   = "resolve"
	OpSort      = "sort"
	OpCompile   = "compile"
	OpTranslate = "translate"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldTraceID     = "trace_id"
	LogFieldSpanID      = "span_id"
	LogFieldFingerprint = "fingerprint"
	LogFieldOperation   = "operation"
	LogFieldDuration    = "duration_ms"
	LogFieldError       = "error"
)

// GrammarAttr creates an attribute for the grammar being processed.
func GrammarAttr(grammar string) attribute.KeyValue {
	return attribute.String(AttrGrammar, grammar)
}

// OperationAttr creates an attribute for the operation type.
func OperationAttr(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

func ModeAttr(mode string) attribute.KeyValue {
	return attribute.String(AttrMode, mode)
}

// FingerprintAttr renders a query fingerprint as hex.
func FingerprintAttr(fp uint64) attribute.KeyValue {
	return attribute.String(AttrFingerprint, FormatFingerprint(fp))
}

func PropertyAttr(name string) attribute.KeyValue {
	return attribute.String(AttrProperty, name)
}

func FieldAttr(field string) attribute.KeyValue {
	return attribute.String(AttrField, field)
}

// ErrorTypeAttr creates an attribute for an error classification.
func ErrorTypeAttr(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorType, kind)
}
