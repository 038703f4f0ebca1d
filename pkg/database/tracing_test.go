package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	return exporter
}

func TestTraceQuery_RecordsOperationAndStatement(t *testing.T) {
	exporter := installTestTracer(t)

	_, end := TraceQuery(context.Background(), "GetProduct", "SELECT id, name FROM products WHERE id = $1")
	end(nil)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)

	span := spans[0]
	assert.Equal(t, "db.GetProduct", span.Name)

	attrs := make(map[string]string)
	for _, a := range span.Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	assert.Equal(t, "postgresql", attrs["db.system"])
	assert.Equal(t, "GetProduct", attrs["db.operation"])
	assert.Equal(t, "SELECT id, name FROM products WHERE id = $1", attrs["db.statement"])

	// codes.Unset on success.
	assert.EqualValues(t, 0, span.Status.Code)
}

func TestTraceQuery_ErrorMarksSpan(t *testing.T) {
	exporter := installTestTracer(t)

	_, end := TraceQuery(context.Background(), "ApplyOrderRating", "UPDATE products SET rating = $1 WHERE id = $2")
	end(errors.New("connection refused"))

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)

	// codes.Error plus a recorded error event.
	assert.EqualValues(t, 1, spans[0].Status.Code)
	assert.NotEmpty(t, spans[0].Events)
}

func TestTraceQuery_ReturnsUsableContext(t *testing.T) {
	installTestTracer(t)

	tracer := otel.Tracer("agromarket-test")
	ctx, parent := tracer.Start(context.Background(), "rate-order")

	ctx, end := TraceQuery(ctx, "ListOrders", "SELECT * FROM orders")
	end(nil)
	parent.End()

	require.NotNil(t, ctx)
}

func TestSlowQueryLogging_LogsAboveThreshold(t *testing.T) {
	installTestTracer(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	// Any call clears a nanosecond threshold.
	SetSlowQueryLogging(1*time.Nanosecond, logger)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "ListProducts", "SELECT * FROM products")
	end(errors.New("canceling statement due to statement timeout"))

	out := buf.String()
	assert.Contains(t, out, "slow query detected")
	assert.Contains(t, out, "ListProducts")
	assert.Contains(t, out, "SELECT * FROM products")
	assert.Contains(t, out, "statement timeout")
}

func TestSlowQueryLogging_QuietBelowThreshold(t *testing.T) {
	installTestTracer(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	SetSlowQueryLogging(1*time.Hour, logger)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	_, end := TraceQuery(context.Background(), "GetUser", "SELECT 1")
	end(nil)

	assert.NotContains(t, buf.String(), "slow query detected")
}

func TestSlowQueryLogging_DisabledIsSafe(t *testing.T) {
	installTestTracer(t)

	SetSlowQueryLogging(0, nil)

	_, end := TraceQuery(context.Background(), "GetUser", "SELECT 1")
	end(nil)
}

func TestSetSlowQueryLogging_Concurrent(t *testing.T) {
	installTestTracer(t)
	t.Cleanup(func() { SetSlowQueryLogging(0, nil) })

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			SetSlowQueryLogging(time.Duration(i)*time.Millisecond, logger)
		}
	}()

	for i := 0; i < 100; i++ {
		getSlowQueryConfig()
	}

	<-done
}
