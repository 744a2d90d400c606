package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
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

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordOperation(t *testing.T) {
	m, reader := newTestMetrics(t)
	op := Operation{Provider: "aws", Service: "s3", Name: "GetObject"}
	ctx := context.Background()

	m.RecordOperation(ctx, op, Result{Attempts: 3, StatusCode: 200}, 120*time.Millisecond, nil)
	m.RecordOperation(ctx, op, Result{Attempts: 1, StatusCode: 404}, 10*time.Millisecond, kindedErr{kind: "not_found"})

	rm := collect(t, reader)
	if got := sumValue(t, rm, MetricOperations); got != 2 {
		t.Errorf("%s = %d, want 2", MetricOperations, got)
	}
	if got := sumValue(t, rm, MetricAttempts); got != 4 {
		t.Errorf("%s = %d, want 4", MetricAttempts, got)
	}
	if got := sumValue(t, rm, MetricErrors); got != 1 {
		t.Errorf("%s = %d, want 1", MetricErrors, got)
	}

	hist := findMetric(rm, MetricDuration)
	if hist == nil {
		t.Fatalf("%s not found", MetricDuration)
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(data.DataPoints) != 1 || data.DataPoints[0].Count != 2 {
		t.Errorf("%s data = %+v", MetricDuration, hist.Data)
	}
}

func TestMetrics_NoErrorsOnSuccess(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordOperation(context.Background(), Operation{Name: "ok"}, Result{Attempts: 1}, time.Millisecond, nil)
	if got := sumValue(t, collect(t, reader), MetricErrors); got != 0 {
		t.Errorf("%s = %d, want 0", MetricErrors, got)
	}
}
