package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestStartTurnSpan(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartTurnSpan(context.Background(), "sess-1")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "chat.turn", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("chat.session_id", "sess-1"))
}

func TestStartCompletionSpan_RetryAndError(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartCompletionSpan(context.Background(), "test-model", 3)
	AddRetryEvent(span, 1, "upstream 503")
	RecordError(span, errors.New("exhausted"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "llm.completion", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("llm.model", "test-model"))

	var names []string
	for _, event := range ended[0].Events() {
		names = append(names, event.Name)
	}
	assert.Contains(t, names, "retry")
	assert.Contains(t, names, "exception")
}
