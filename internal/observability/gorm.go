package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	gormSpanKey        = "cmisql:gorm:span"
	gormStartTimeKey   = "cmisql:gorm:start"
	gormTimingStartKey = "cmisql:gorm:timing_start"
	gormTracingName    = "cmisql"
	gormTimingName     = "cmisql_phase_timing"
)

// callbackRegistrar is satisfied by the positioned callbacks returned from
// a gorm processor's Before and After methods.
type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

type gormHook struct {
	kind      string // callback chain, e.g. "query"
	operation string // db.operation attribute value
	chain     func(*gorm.DB) (before, after callbackRegistrar)
}

func gormHooks() []gormHook {
	return []gormHook{
		{"query", "SELECT", func(db *gorm.DB) (callbackRegistrar, callbackRegistrar) {
			p := db.Callback().Query()
			return p.Before("gorm:query"), p.After("gorm:query")
		}},
		{"create", "INSERT", func(db *gorm.DB) (callbackRegistrar, callbackRegistrar) {
			p := db.Callback().Create()
			return p.Before("gorm:create"), p.After("gorm:create")
		}},
		{"update", "UPDATE", func(db *gorm.DB) (callbackRegistrar, callbackRegistrar) {
			p := db.Callback().Update()
			return p.Before("gorm:update"), p.After("gorm:update")
		}},
		{"delete", "DELETE", func(db *gorm.DB) (callbackRegistrar, callbackRegistrar) {
			p := db.Callback().Delete()
			return p.Before("gorm:delete"), p.After("gorm:delete")
		}},
		{"row", "ROW", func(db *gorm.DB) (callbackRegistrar, callbackRegistrar) {
			p := db.Callback().Row()
			return p.Before("gorm:row"), p.After("gorm:row")
		}},
		{"raw", "RAW", func(db *gorm.DB) (callbackRegistrar, callbackRegistrar) {
			p := db.Callback().Raw()
			return p.Before("gorm:raw"), p.After("gorm:raw")
		}},
	}
}

// RegisterGORMCallbacks registers GORM callbacks for dictionary store tracing.
// This should be called after GORM is initialized and observability is configured.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	if cfg == nil || cfg.TracerProvider == nil || !cfg.EnableDetailedDBTracing {
		return nil
	}

	tracer := cfg.Tracer()
	for _, h := range gormHooks() {
		operation := h.operation
		before, after := h.chain(db)
		if err := before.Register(gormTracingName+":before_"+h.kind, func(db *gorm.DB) {
			startSpan(db, tracer, operation)
		}); err != nil {
			return err
		}
		if err := after.Register(gormTracingName+":after_"+h.kind, func(db *gorm.DB) {
			endSpan(db, tracer, cfg, operation)
		}); err != nil {
			return err
		}
	}
	return nil
}

// RegisterPhaseTimingCallbacks registers GORM callbacks that add each
// store operation to the "db" phase of the context's timing header.
// This is independent of the tracing callbacks and works without OpenTelemetry.
func RegisterPhaseTimingCallbacks(db *gorm.DB) error {
	for _, h := range gormHooks() {
		before, after := h.chain(db)
		if err := before.Register(gormTimingName+":before_"+h.kind, beforeTiming); err != nil {
			return err
		}
		if err := after.Register(gormTimingName+":after_"+h.kind, afterTiming); err != nil {
			return err
		}
	}
	return nil
}

func beforeTiming(db *gorm.DB) {
	db.InstanceSet(gormTimingStartKey, time.Now())
}

func afterTiming(db *gorm.DB) {
	startTimeVal, ok := db.InstanceGet(gormTimingStartKey)
	if !ok {
		return
	}
	startTime, ok := startTimeVal.(time.Time)
	if !ok {
		return
	}
	if db.Statement != nil && db.Statement.Context != nil {
		AddDBTime(db.Statement.Context, time.Since(startTime))
	}
}

func startSpan(db *gorm.DB, tracer *Tracer, operation string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := tracer.StartDBQuery(ctx, operation)
	span.SetAttributes(attribute.String("db.system", db.Dialector.Name()))

	db.Statement.Context = ctx
	db.InstanceSet(gormSpanKey, span)
	db.InstanceSet(gormStartTimeKey, time.Now())
}

func endSpan(db *gorm.DB, tracer *Tracer, cfg *Config, operation string) {
	spanVal, ok := db.InstanceGet(gormSpanKey)
	if !ok {
		return
	}
	span, ok := spanVal.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if db.Statement != nil {
		if table := db.Statement.Table; table != "" {
			span.SetAttributes(attribute.String("db.sql.table", table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	}

	if db.Error != nil {
		tracer.RecordError(span, db.Error)
		LoggerWithTrace(db.Statement.Context, cfg.Logger()).Debug("dictionary store query failed",
			"operation", operation, LogFieldError, db.Error)
	}

	if startTimeVal, ok := db.InstanceGet(gormStartTimeKey); ok {
		if startTime, ok := startTimeVal.(time.Time); ok {
			cfg.Metrics().RecordDBQuery(db.Statement.Context, operation, time.Since(startTime))
		}
	}
}
