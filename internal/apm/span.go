package apm

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span is the subset of the OTEL span surface the bot uses.
type Span interface {
	SetAttributes(values ...attribute.KeyValue)
	SetAttribute(value attribute.KeyValue)
	AddEvent(name string, options ...trace.EventOption)
	NoticeError(err error)
	RecordError(err error, options ...trace.EventOption)
	SetStatus(code codes.Code, description string)
	SpanContext() trace.SpanContext
	IsRecording() bool
	End(options ...trace.SpanEndOption)
}

type traceSpan struct {
	span trace.Span
}

// NewSpan wraps an OTEL span.
func NewSpan(span trace.Span) Span {
	return &traceSpan{span: span}
}

func (t *traceSpan) SetAttributes(values ...attribute.KeyValue) {
	t.span.SetAttributes(values...)
}

func (t *traceSpan) SetAttribute(value attribute.KeyValue) {
	t.span.SetAttributes(value)
}

func (t *traceSpan) AddEvent(name string, options ...trace.EventOption) {
	t.span.AddEvent(name, options...)
}

// NoticeError records err and marks the span failed in one call.
func (t *traceSpan) NoticeError(err error) {
	t.span.RecordError(err)
	t.span.SetStatus(codes.Error, err.Error())
}

func (t *traceSpan) RecordError(err error, options ...trace.EventOption) {
	t.span.RecordError(err, options...)
}

func (t *traceSpan) SetStatus(code codes.Code, description string) {
	t.span.SetStatus(code, description)
}

func (t *traceSpan) SpanContext() trace.SpanContext {
	return t.span.SpanContext()
}

func (t *traceSpan) IsRecording() bool {
	return t.span.IsRecording()
}

func (t *traceSpan) End(options ...trace.SpanEndOption) {
	t.span.End(options...)
}
