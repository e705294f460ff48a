package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestTraceContextPropagation verifies that trace context is properly propagated
func TestTraceContextPropagation(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("test-service"))
	r.HandleFunc("/goals", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	})

	tests := []struct {
		name            string
		withTraceParent bool
		traceParent     string
	}{
		{
			name:            "without existing trace ID",
			withTraceParent: false,
		},
		{
			name:            "with existing trace ID",
			withTraceParent: true,
			traceParent:     "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter.Reset()

			req := httptest.NewRequest("GET", "/goals", nil)
			if tt.withTraceParent {
				req.Header.Set("traceparent", tt.traceParent)
			}

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("Expected status OK, got %d", rr.Code)
			}

			if err := tp.ForceFlush(context.Background()); err != nil {
				t.Errorf("Failed to flush tracer provider: %v", err)
			}

			spans := exporter.GetSpans()
			if len(spans) == 0 {
				t.Error("Expected at least one span to be created")
			}

			if tt.withTraceParent && len(spans) > 0 {
				if !spans[0].SpanContext.TraceID().IsValid() {
					t.Error("Expected valid trace ID in span")
				}
			}
		})
	}
}
