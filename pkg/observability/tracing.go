package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span wraps an OpenTelemetry span and batches attributes until End.
type Span struct {
	span       trace.Span
	startTime  time.Time
	attributes []attribute.KeyValue
}

// NewSpan starts a span on the current tracer
func NewSpan(ctx context.Context, operationName string) (context.Context, *Span) {
	ctx, span := GetTracer().Start(ctx, operationName)
	return ctx, &Span{
		span:      span,
		startTime: time.Now(),
	}
}

// SetAttribute adds an attribute to the span
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// Finish records the outcome of the traced work and ends the span.
func (s *Span) Finish(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.SetAttribute("duration_ms", time.Since(s.startTime).Milliseconds())
	s.End()
}

// End ends the span
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	s.span.End()
}

// SourceTracer provides spans for one tabular source
type SourceTracer struct {
	driver string
	name   string
}

// NewSourceTracer creates a tracer for the given driver and source name
func NewSourceTracer(driver, name string) *SourceTracer {
	return &SourceTracer{driver: driver, name: name}
}

// StartSpan starts a source-specific span
func (st *SourceTracer) StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	ctx, span := NewSpan(ctx, fmt.Sprintf("%s.%s", st.driver, operation))
	span.SetAttribute("db.system", st.driver)
	span.SetAttribute("source.name", st.name)
	span.SetAttribute("source.operation", operation)
	return ctx, span
}

// TraceQuery runs fn inside a query span and records the returned row count.
func (st *SourceTracer) TraceQuery(ctx context.Context, statement string, fn func(ctx context.Context) (int, error)) error {
	ctx, span := st.StartSpan(ctx, "query")
	span.SetAttribute("db.statement", statement)

	rows, err := fn(ctx)
	span.SetAttribute("db.rows", rows)
	span.Finish(err)
	return err
}
