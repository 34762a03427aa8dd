package observability

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithServiceName("test-service"),
		WithDetailedDBTracing(),
		WithQueryTextTracing(),
	)

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected service name 'test-service', got '%s'", cfg.ServiceName)
	}
	if !cfg.EnableDetailedDBTracing {
		t.Error("expected detailed DB tracing to be enabled")
	}
	if !cfg.QueryTextTracingEnabled() {
		t.Error("expected query text tracing to be enabled")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.ServiceName != "cmisql" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "cmisql")
	}
	if cfg.QueryTextTracingEnabled() {
		t.Error("expected query text tracing to be disabled by default")
	}
	if cfg.PhaseTimingsEnabled() {
		t.Error("expected phase timings to be disabled by default")
	}
}

func TestConfigInitialize(t *testing.T) {
	tp := tracenoop.NewTracerProvider()
	mp := noop.NewMeterProvider()

	cfg := NewConfig(
		WithTracerProvider(tp),
		WithMeterProvider(mp),
		WithServiceName("test-service"),
	)

	if err := cfg.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Tracer() == nil {
		t.Error("expected tracer to be initialized")
	}
	if cfg.Metrics() == nil {
		t.Error("expected metrics to be initialized")
	}
}

func TestConfigInitializeNoProviders(t *testing.T) {
	cfg := NewConfig(WithServiceName("test-service"))

	if err := cfg.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Tracer() == nil {
		t.Error("expected noop tracer to be returned")
	}
	if cfg.Metrics() == nil {
		t.Error("expected noop metrics to be returned")
	}
}

func TestNilConfigAccessors(t *testing.T) {
	var cfg *Config
	if cfg.Tracer() == nil {
		t.Error("Tracer() on nil config should return a noop tracer")
	}
	if cfg.Metrics() == nil {
		t.Error("Metrics() on nil config should return noop metrics")
	}
	if cfg.Logger() == nil {
		t.Error("Logger() on nil config should return the default logger")
	}
	if cfg.IsEnabled() || cfg.PhaseTimingsEnabled() || cfg.QueryTextTracingEnabled() {
		t.Error("nil config should report every feature disabled")
	}
}

func TestNoopMetrics(t *testing.T) {
	metrics := NewNoopMetrics()
	ctx := context.Background()

	// Should not panic
	metrics.RecordParse(ctx, GrammarCMIS, time.Millisecond)
	metrics.RecordCompile(ctx, "strict", time.Millisecond, 4)
	metrics.RecordDBQuery(ctx, "SELECT", time.Millisecond*100)
	metrics.RecordError(ctx, OpParse, "syntax")
}

func TestIsEnabled(t *testing.T) {
	cfg := NewConfig()
	if cfg.IsEnabled() {
		t.Error("expected empty config to not be enabled")
	}

	cfg = NewConfig(WithTracerProvider(tracenoop.NewTracerProvider()))
	if !cfg.IsEnabled() {
		t.Error("expected config with tracer to be enabled")
	}

	cfg = NewConfig(WithMeterProvider(noop.NewMeterProvider()))
	if !cfg.IsEnabled() {
		t.Error("expected config with meter to be enabled")
	}
}

func TestPhaseTimingsOption(t *testing.T) {
	cfg := NewConfig(WithPhaseTimings())
	if !cfg.PhaseTimingsEnabled() {
		t.Error("expected PhaseTimingsEnabled() to return true")
	}
}

func TestStartPhaseNoContext(t *testing.T) {
	ctx := context.Background()
	StartPhase(ctx, PhaseParse).Stop()
	StartPhaseWithDesc(ctx, PhaseParse, "CMIS parse").Stop()
	if PhaseTimings(ctx) != nil {
		t.Error("expected no timing header on a background context")
	}
}

func TestPhaseMetricNilStop(t *testing.T) {
	var metric *PhaseMetric
	metric.Stop()
	(&PhaseMetric{}).Stop()
}

func TestStartPhaseRecords(t *testing.T) {
	ctx, header := ContextWithPhaseTimings(context.Background())
	if PhaseTimings(ctx) != header {
		t.Fatal("PhaseTimings() should return the header installed by ContextWithPhaseTimings()")
	}

	m := StartPhaseWithDesc(ctx, PhaseParse, "CMIS parse")
	time.Sleep(time.Millisecond)
	m.Stop()
	StartPhase(ctx, PhaseResolve).Stop()

	if len(header.Metrics) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(header.Metrics))
	}
	if got := PhaseDuration(header, PhaseParse); got < time.Millisecond {
		t.Errorf("parse phase = %v, want at least 1ms", got)
	}
	if s := header.String(); !strings.Contains(s, "parse;desc=") {
		t.Errorf("header %q should describe the parse phase", s)
	}
}

func TestAddDBTime(t *testing.T) {
	ctx, header := ContextWithPhaseTimings(context.Background())

	AddDBTime(ctx, time.Millisecond*50)
	AddDBTime(ctx, time.Millisecond*100)

	if got, want := PhaseDuration(header, PhaseDB), time.Millisecond*150; got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAddDBTimeConcurrent(t *testing.T) {
	ctx, header := ContextWithPhaseTimings(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				AddDBTime(ctx, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if got, want := PhaseDuration(header, PhaseDB), time.Millisecond*1000; got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAddDBTimeNoHeader(t *testing.T) {
	AddDBTime(context.Background(), time.Millisecond*50)
	if PhaseDuration(nil, PhaseDB) != 0 {
		t.Error("expected zero duration for a nil header")
	}
}

type testRecord struct {
	ID   int `gorm:"primarykey"`
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&testRecord{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestPhaseTimingCallbacksIntegration(t *testing.T) {
	db := openTestDB(t)
	if err := RegisterPhaseTimingCallbacks(db); err != nil {
		t.Fatalf("failed to register callbacks: %v", err)
	}

	ctx, header := ContextWithPhaseTimings(context.Background())

	if err := db.WithContext(ctx).Create(&testRecord{ID: 1, Name: "cm:name"}).Error; err != nil {
		t.Fatalf("failed to create: %v", err)
	}
	duration := PhaseDuration(header, PhaseDB)
	if duration == 0 {
		t.Error("expected non-zero database time after Create operation")
	}

	var records []testRecord
	if err := db.WithContext(ctx).Find(&records).Error; err != nil {
		t.Fatalf("failed to find: %v", err)
	}
	if duration2 := PhaseDuration(header, PhaseDB); duration2 <= duration {
		t.Errorf("expected duration to increase after Find, got before=%v after=%v", duration, duration2)
	}
}

func TestGORMCallbacksDisabled(t *testing.T) {
	db := openTestDB(t)

	// Without a tracer provider nothing is registered.
	if err := RegisterGORMCallbacks(db, NewConfig(WithDetailedDBTracing())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.Callback().Query().Get(gormTracingName+":before_query") != nil {
		t.Error("expected no tracing callback without a tracer provider")
	}
	if err := RegisterGORMCallbacks(db, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGORMCallbacksIntegration(t *testing.T) {
	db := openTestDB(t)
	cfg := NewConfig(
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
		WithDetailedDBTracing(),
	)
	if err := cfg.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterGORMCallbacks(db, cfg); err != nil {
		t.Fatalf("failed to register callbacks: %v", err)
	}
	if db.Callback().Query().Get(gormTracingName+":before_query") == nil {
		t.Error("expected tracing callback to be registered")
	}

	ctx := context.Background()
	if err := db.WithContext(ctx).Create(&testRecord{ID: 7, Name: "cm:title"}).Error; err != nil {
		t.Fatalf("failed to create: %v", err)
	}
	var got testRecord
	if err := db.WithContext(ctx).First(&got, 7).Error; err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if got.Name != "cm:title" {
		t.Errorf("Name = %q, want %q", got.Name, "cm:title")
	}
	// A failing query must still end its span.
	if err := db.WithContext(ctx).Table("missing").Find(&[]testRecord{}).Error; err == nil {
		t.Error("expected an error querying a missing table")
	}
}
