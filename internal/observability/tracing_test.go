package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/mission-designer/internal/config"
	"github.com/signalsfoundry/mission-designer/internal/logging"
)

func TestTracingConfigFromDefaults(t *testing.T) {
	cfg := TracingConfigFrom(config.Tracing{SampleRatio: 3}, "")
	if cfg.ServiceName != "mission-designer" || cfg.ServiceVersion != "dev" || cfg.Exporter != "stdout" || cfg.SampleRatio != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	cfg = TracingConfigFrom(config.Tracing{Enabled: true, Environment: "staging", Exporter: "OTLP", OTLPEndpoint: "c:4317", SampleRatio: 0.2}, "1.0.0")
	if !cfg.Enabled || cfg.Exporter != "otlp" || cfg.Endpoint != "c:4317" || cfg.SampleRatio != 0.2 {
		t.Fatalf("unexpected mapping: %+v", cfg)
	}
	if cfg.ServiceVersion != "1.0.0" || cfg.Environment != "staging" {
		t.Fatalf("service identity not carried: %+v", cfg)
	}
}

func TestInitTracingDisabled(t *testing.T) {
	rec := logging.NewRecorder()
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, rec)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	entries := rec.Entries()
	if len(entries) != 1 || !strings.Contains(entries[0].Message, "tracing disabled") {
		t.Fatalf("entries=%+v", entries)
	}
	if got := entries[0].Fields["service_version"]; got != "" {
		t.Fatalf("service_version=%v", got)
	}
}

func TestInitTracingStdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		Enabled:     true,
		ServiceName: "mission-designer-test",
		Exporter:    "stdout",
		SampleRatio: 1,
		Writer:      &buf,
	}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	t.Cleanup(func() {
		_, _ = InitTracing(context.Background(), TracingConfig{}, nil)
	})

	_, span := otel.Tracer("test").Start(context.Background(), "evaluate-solution")
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown, nil)

	if !strings.Contains(buf.String(), "evaluate-solution") {
		t.Fatalf("span not exported: %q", buf.String())
	}
}

func TestInitTracingUnknownExporter(t *testing.T) {
	if _, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "zipkin"}, nil); err == nil {
		t.Fatalf("expected error for unsupported exporter")
	}
}

func TestInitTracingResourceCarriesServiceIdentity(t *testing.T) {
	var buf bytes.Buffer
	rec := logging.NewRecorder()
	cfg := TracingConfigFrom(config.Tracing{Enabled: true, Environment: "staging", SampleRatio: 1}, "1.4.2")
	cfg.Writer = &buf
	shutdown, err := InitTracing(context.Background(), cfg, rec)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	t.Cleanup(func() {
		_, _ = InitTracing(context.Background(), TracingConfig{}, nil)
	})

	_, span := otel.Tracer("test").Start(context.Background(), "rank-solutions")
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown, rec)

	out := buf.String()
	for _, want := range []string{"service.version", "1.4.2", "deployment.environment", "staging", "service.name", "mission-designer"} {
		if !strings.Contains(out, want) {
			t.Fatalf("exported span missing %q:\n%s", want, out)
		}
	}

	entries := rec.Entries()
	if len(entries) != 1 || entries[0].Message != "tracing enabled" {
		t.Fatalf("entries=%+v", entries)
	}
	if entries[0].Fields["service_version"] != "1.4.2" || entries[0].Fields["environment"] != "staging" {
		t.Fatalf("fields=%+v", entries[0].Fields)
	}
}

func TestShutdownWithTimeoutLogsFailures(t *testing.T) {
	rec := logging.NewRecorder()
	ShutdownWithTimeout(context.Background(), nil, rec)
	ShutdownWithTimeout(context.Background(), func(context.Context) error { return nil }, rec)
	if n := len(rec.Entries()); n != 0 {
		t.Fatalf("clean shutdown logged %d entries", n)
	}

	ShutdownWithTimeout(context.Background(), func(context.Context) error { return errors.New("exporter closed") }, rec)
	ShutdownWithTimeout(context.Background(), func(context.Context) error { return context.DeadlineExceeded }, rec)
	entries := rec.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries=%+v", entries)
	}
	if entries[0].Message != "tracing shutdown failed" || !strings.Contains(entries[1].Message, "timed out") {
		t.Fatalf("entries=%+v", entries)
	}
	if entries[1].Fields["timeout"] != "5s" {
		t.Fatalf("timeout field=%v", entries[1].Fields["timeout"])
	}
}
