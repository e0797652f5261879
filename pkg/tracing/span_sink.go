package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/psantana5/timeprofile/pkg/models"
	"github.com/psantana5/timeprofile/pkg/sink"
)

// SpanSink decorates a row sink: every written row is also emitted as
// a span whose start timestamp is synthesized from the row's elapsed
// time. Broken rows carry an error status.
type SpanSink struct {
	inner  sink.Sink
	tracer trace.Tracer
}

// NewSpanSink wraps inner with span emission
func NewSpanSink(inner sink.Sink, tracer trace.Tracer) *SpanSink {
	return &SpanSink{inner: inner, tracer: tracer}
}

// WriteRow emits the span and delegates to the inner sink. Span
// emission never fails the write.
func (s *SpanSink) WriteRow(row models.Row) error {
	end := time.Now()
	start := end.Add(-time.Duration(row.Seconds * float64(time.Second)))

	_, span := s.tracer.Start(context.Background(), row.ID,
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.Int("process.pid", row.PID),
			attribute.Int("process.parent_pid", row.PPID),
			attribute.String("process.executable.name", row.ProcessName),
			attribute.Float64("measurement.seconds", row.Seconds),
		),
	)
	if row.Broken {
		span.SetStatus(codes.Error, row.ErrorValue)
		span.SetAttributes(attribute.String("error.type", row.ErrorType))
	}
	span.End(trace.WithTimestamp(end))

	return s.inner.WriteRow(row)
}

// Close closes the inner sink
func (s *SpanSink) Close() error {
	return s.inner.Close()
}
