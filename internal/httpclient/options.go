// Package httpclient provides an instrumented HTTP client for venue gateway
// APIs, with OTEL tracing and request metrics.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ClientOptions holds configuration for the instrumented HTTP client.
type ClientOptions struct {
	meterProvider  metric.MeterProvider
	venueName      string
	transport      http.RoundTripper
	requestTimeout *time.Duration
	headers        map[string]string
	baseURL        string
}

// ClientOption is a function that configures ClientOptions.
type ClientOption func(*ClientOptions)

// NewClientOptions creates ClientOptions from variadic options.
func NewClientOptions(opts ...ClientOption) *ClientOptions {
	options := &ClientOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// WithMeterProvider sets the OTEL meter provider.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(o *ClientOptions) {
		o.meterProvider = mp
	}
}

// WithVenueName sets the venue name attached to metrics and traces.
func WithVenueName(name string) ClientOption {
	return func(o *ClientOptions) {
		o.venueName = name
	}
}

// WithTransport sets a custom HTTP transport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *ClientOptions) {
		o.transport = rt
	}
}

// WithRequestTimeout sets the request timeout.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) {
		o.requestTimeout = &timeout
	}
}

// WithHeaders sets default headers for all requests. Credential headers set
// here are never written to spans.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *ClientOptions) {
		o.headers = headers
	}
}

// WithBaseURL sets the base URL for all requests.
func WithBaseURL(url string) ClientOption {
	return func(o *ClientOptions) {
		o.baseURL = url
	}
}
