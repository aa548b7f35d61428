package apm

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ConsoleTraceProvider writes spans to stdout; useful when debugging
// executions locally without a collector.
type ConsoleTraceProvider struct {
	tp *sdktrace.TracerProvider
}

// NewEmptyTraceProvider returns a provider that records nothing.
func NewEmptyTraceProvider() TraceProvider {
	return ConsoleTraceProvider{}
}

// NewConsoleTraceProvider installs a pretty-printing stdout exporter globally.
func NewConsoleTraceProvider() TraceProvider {
	exporter, _ := stdouttrace.New(stdouttrace.WithPrettyPrint())
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	return ConsoleTraceProvider{tp: tp}
}

func (ctp ConsoleTraceProvider) Stop() error {
	return nil
}
