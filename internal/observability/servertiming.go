package observability

import (
	"context"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
)

// Phase names recorded in the timing header.
const (
	PhaseTokenize  = "tokenize"
	PhaseParse     = "parse"
	PhaseResolve   = "resolve"
	PhaseSort      = "sort"
	PhaseTranslate = "translate"
	PhaseDB        = "db"
)

// PhaseMetric wraps the server-timing library's Metric type.
type PhaseMetric struct {
	metric *servertiming.Metric
}

// Stop stops the timing metric.
func (m *PhaseMetric) Stop() {
	if m != nil && m.metric != nil {
		m.metric.Stop()
	}
}

// ContextWithPhaseTimings returns a context carrying a fresh timing header. The
// header collects every phase started from the returned context and renders
// as a Server-Timing value through its String method.
func ContextWithPhaseTimings(ctx context.Context) (context.Context, *servertiming.Header) {
	h := &servertiming.Header{}
	return servertiming.NewContext(ctx, h), h
}

// PhaseTimings returns the timing header carried by ctx, or nil.
func PhaseTimings(ctx context.Context) *servertiming.Header {
	return servertiming.FromContext(ctx)
}

// StartPhase starts a timing metric with the given name.
// Returns a metric that should be stopped when the phase completes.
// If the context doesn't carry a timing header, returns a no-op metric.
func StartPhase(ctx context.Context, name string) *PhaseMetric {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return &PhaseMetric{}
	}

	return &PhaseMetric{
		metric: timing.NewMetric(name).Start(),
	}
}

// StartPhaseWithDesc starts a timing metric with the given name and description.
func StartPhaseWithDesc(ctx context.Context, name, description string) *PhaseMetric {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return &PhaseMetric{}
	}

	return &PhaseMetric{
		metric: timing.NewMetric(name).WithDesc(description).Start(),
	}
}

// AddDBTime records a finished database operation in the context's timing
// header. It is a no-op without a header.
func AddDBTime(ctx context.Context, d time.Duration) {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return
	}
	timing.Add(&servertiming.Metric{Name: PhaseDB, Duration: d})
}

// PhaseDuration sums the recorded durations of every metric named name.
func PhaseDuration(h *servertiming.Header, name string) time.Duration {
	if h == nil {
		return 0
	}
	h.Lock()
	defer h.Unlock()
	var total time.Duration
	for _, m := range h.Metrics {
		if m.Name == name {
			total += m.Duration
		}
	}
	return total
}
