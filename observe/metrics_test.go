package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonwraymond/breakerops/breaker"
)

func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// TestMetrics_CallCounterIncrements verifies breaker.calls.total is incremented.
func TestMetrics_CallCounterIncrements(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCall(context.Background(), breaker.CallEvent{
		Breaker:  "billing",
		Outcome:  breaker.OutcomeSuccess,
		Duration: 100 * time.Millisecond,
	})

	rm := collect(t, reader)
	found := findMetric(rm, "breaker.calls.total")
	if found == nil {
		t.Fatal("breaker.calls.total metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if sum.DataPoints[0].Value != 1 {
		t.Errorf("expected count 1, got %d", sum.DataPoints[0].Value)
	}
}

// TestMetrics_RejectionSkipsDuration verifies rejected calls do not feed
// the duration histogram.
func TestMetrics_RejectionSkipsDuration(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCall(context.Background(), breaker.CallEvent{
		Breaker: "billing",
		Outcome: breaker.OutcomeRejected,
		Err:     errors.New("circuit open"),
	})

	rm := collect(t, reader)

	if found := findMetric(rm, "breaker.calls.total"); found == nil {
		t.Error("breaker.calls.total metric not found")
	}

	found := findMetric(rm, "breaker.call.duration_ms")
	if found == nil {
		return // No histogram recorded at all is acceptable
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	for _, dp := range hist.DataPoints {
		if dp.Count != 0 {
			t.Errorf("expected empty histogram for rejection, got count %d", dp.Count)
		}
	}
}

// TestMetrics_DurationRecorded verifies call duration lands in the histogram.
func TestMetrics_DurationRecorded(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordCall(context.Background(), breaker.CallEvent{
		Breaker:  "billing",
		Outcome:  breaker.OutcomeFailure,
		Err:      errors.New("down"),
		Duration: 250 * time.Millisecond,
	})

	rm := collect(t, reader)
	found := findMetric(rm, "breaker.call.duration_ms")
	if found == nil {
		t.Fatal("breaker.call.duration_ms metric not found")
	}

	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if hist.DataPoints[0].Sum != 250 {
		t.Errorf("expected sum 250ms, got %f", hist.DataPoints[0].Sum)
	}
}

// TestMetrics_TransitionCounter verifies transitions are counted and the
// open gauge follows the circuit.
func TestMetrics_TransitionCounter(t *testing.T) {
	m, reader := newTestMetrics(t)

	ctx := context.Background()
	now := time.Now()
	m.RecordStateChange(ctx, breaker.StateChange{
		Breaker: "billing",
		From:    breaker.StateClosed,
		To:      breaker.StateOpen,
		At:      now,
	})
	m.RecordStateChange(ctx, breaker.StateChange{
		Breaker: "billing",
		From:    breaker.StateOpen,
		To:      breaker.StateHalfOpen,
		At:      now,
	})

	rm := collect(t, reader)

	found := findMetric(rm, "breaker.transitions.total")
	if found == nil {
		t.Fatal("breaker.transitions.total metric not found")
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Errorf("expected 2 transitions, got %d", total)
	}

	open := findMetric(rm, "breaker.open")
	if open == nil {
		t.Fatal("breaker.open metric not found")
	}
	openSum, ok := open.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", open.Data)
	}
	if len(openSum.DataPoints) == 0 || openSum.DataPoints[0].Value != 0 {
		t.Errorf("expected breaker.open back to 0 after leaving open, got %+v", openSum.DataPoints)
	}
}

// TestNoopMetrics_NoPanic verifies the noop implementation is safe.
func TestNoopMetrics_NoPanic(t *testing.T) {
	m := &noopMetrics{}
	m.RecordCall(context.Background(), breaker.CallEvent{})
	m.RecordStateChange(context.Background(), breaker.StateChange{})
}
