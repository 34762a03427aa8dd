package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricParseDuration   = "cmisql.parse.duration"
	metricCompileDuration = "cmisql.compile.duration"
	metricCompileCount    = "cmisql.compile.count"
	metricPlanFields      = "cmisql.plan.fields"
	metricDBQueryDuration = "cmisql.db.query.duration"
	metricErrorCount      = "cmisql.error.count"
)

// Metrics holds the compiler metric instruments.
type Metrics struct {
	parseDuration   metric.Float64Histogram
	compileDuration metric.Float64Histogram
	compileCount    metric.Int64Counter
	planFields      metric.Int64Histogram
	dbQueryDuration metric.Float64Histogram
	errorCount      metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Note: errors from meter instrument creation are unlikely in practice
	// and would only occur with invalid parameters. We use explicit checks
	// to satisfy the linter while continuing with partial metrics on error.
	var err error

	m.parseDuration, err = meter.Float64Histogram(
		metricParseDuration,
		metric.WithDescription("Duration of lexing and parsing in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.parseDuration, _ = meter.Float64Histogram(metricParseDuration)
	}

	m.compileDuration, err = meter.Float64Histogram(
		metricCompileDuration,
		metric.WithDescription("Duration of full query compilation in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.compileDuration, _ = meter.Float64Histogram(metricCompileDuration)
	}

	m.compileCount, err = meter.Int64Counter(
		metricCompileCount,
		metric.WithDescription("Total number of query compilations"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		m.compileCount, _ = meter.Int64Counter(metricCompileCount)
	}

	m.planFields, err = meter.Int64Histogram(
		metricPlanFields,
		metric.WithDescription("Number of resolved fields per compiled query"),
		metric.WithUnit("{field}"),
	)
	if err != nil {
		m.planFields, _ = meter.Int64Histogram(metricPlanFields)
	}

	m.dbQueryDuration, err = meter.Float64Histogram(
		metricDBQueryDuration,
		metric.WithDescription("Duration of dictionary store queries in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.dbQueryDuration, _ = meter.Float64Histogram(metricDBQueryDuration)
	}

	m.errorCount, err = meter.Int64Counter(
		metricErrorCount,
		metric.WithDescription("Total number of query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter(metricErrorCount)
	}

	return m
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// RecordParse records the duration of a parse in grammar.
func (m *Metrics) RecordParse(ctx context.Context, grammar string, duration time.Duration) {
	m.parseDuration.Record(ctx, milliseconds(duration), metric.WithAttributes(GrammarAttr(grammar)))
}

// RecordCompile records a completed compilation and the size of its plan.
func (m *Metrics) RecordCompile(ctx context.Context, mode string, duration time.Duration, fields int) {
	attrs := metric.WithAttributes(ModeAttr(mode))
	m.compileDuration.Record(ctx, milliseconds(duration), attrs)
	m.compileCount.Add(ctx, 1, attrs)
	m.planFields.Record(ctx, int64(fields), attrs)
}

// RecordDBQuery records metrics for a dictionary store query.
func (m *Metrics) RecordDBQuery(ctx context.Context, operation string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	m.dbQueryDuration.Record(ctx, milliseconds(duration), attrs)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError(ctx context.Context, operation, errorType string) {
	attrs := metric.WithAttributes(
		OperationAttr(operation),
		ErrorTypeAttr(errorType),
	)
	m.errorCount.Add(ctx, 1, attrs)
}
