package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/psantana5/timeprofile/pkg/models"
	"github.com/psantana5/timeprofile/pkg/sink"
)

func TestSpanSinkEmitsOneSpanPerRow(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	inner := sink.NewMemorySink()
	s := NewSpanSink(inner, tp.Tracer("test"))

	rows := []models.Row{
		{ID: "clean", Seconds: 0.25, PID: 1},
		{ID: "failed", Seconds: 1.5, PID: 2, Broken: true, ErrorType: "timeout", ErrorValue: "deadline exceeded"},
	}
	for _, row := range rows {
		if err := s.WriteRow(row); err != nil {
			t.Fatalf("WriteRow: %v", err)
		}
	}

	// Rows still reach the inner sink
	if got := len(inner.Rows()); got != 2 {
		t.Fatalf("inner sink has %d rows, want 2", got)
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}

	clean, failed := spans[0], spans[1]
	if clean.Name() != "clean" || failed.Name() != "failed" {
		t.Errorf("span names = %q, %q", clean.Name(), failed.Name())
	}
	if clean.Status().Code == codes.Error {
		t.Error("clean row produced an error span")
	}
	if failed.Status().Code != codes.Error {
		t.Error("broken row did not produce an error span")
	}
	if failed.Status().Description != "deadline exceeded" {
		t.Errorf("error description = %q", failed.Status().Description)
	}

	// Span duration reflects the row's elapsed time
	d := clean.EndTime().Sub(clean.StartTime())
	if d.Seconds() < 0.24 || d.Seconds() > 0.26 {
		t.Errorf("span duration = %v, want ~0.25s", d)
	}
}

func TestInitTracerDisabled(t *testing.T) {
	p, err := InitTracer(Config{ServiceName: "timeprofile", Enabled: false})
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	if p.Tracer() == nil {
		t.Fatal("disabled provider has no tracer")
	}
}
