package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Connection pool settings tuned for polling a handful of venue APIs.
	defaultDialKeepAlive         = 10 * time.Second
	defaultRequestTimeout        = 10 * time.Second
	defaultMaxConnsPerHost       = 5
	defaultIdleConnTimeout       = 2 * time.Minute
	defaultExpectContinueTimeout = 100 * time.Millisecond

	// Metric names
	metricRequestCounter  = "gateway_requests_total"
	metricRequestDuration = "gateway_request_duration_ms"
)

// Client is the interface for making requests against a venue gateway.
type Client interface {
	// NewRequest creates a new request builder.
	NewRequest() Request
}

// InstrumentedClient wraps http.Client with OTEL instrumentation.
type InstrumentedClient struct {
	client          *http.Client
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
	venueName       string
	tracer          trace.Tracer
	baseURL         string
	defaultHeaders  map[string]string
}

// NewInstrumentedClient creates a new instrumented HTTP client.
func NewInstrumentedClient(opts ...ClientOption) (Client, error) {
	options := NewClientOptions(opts...)

	transport := options.transport
	if transport == nil {
		transport = &http.Transport{
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxConnsPerHost:       defaultMaxConnsPerHost,
			IdleConnTimeout:       defaultIdleConnTimeout,
			ExpectContinueTimeout: defaultExpectContinueTimeout,
		}
	}

	timeout := defaultRequestTimeout
	if options.requestTimeout != nil {
		timeout = *options.requestTimeout
	}

	httpClient := &http.Client{
		Timeout: timeout,
		// Wrap transport with OTEL instrumentation
		Transport: otelhttp.NewTransport(
			transport,
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
		),
	}

	venueName := options.venueName
	if venueName == "" {
		venueName = "default"
	}

	meterProvider := options.meterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}

	meter := meterProvider.Meter(
		"gateway_http_client",
		metric.WithInstrumentationAttributes(attribute.String("venue", venueName)),
	)

	requestCounter, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of gateway HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		metricRequestDuration,
		metric.WithDescription("Gateway HTTP request latency in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedClient{
		client:          httpClient,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
		venueName:       venueName,
		tracer:          otel.GetTracerProvider().Tracer("gateway_http_client"),
		baseURL:         options.baseURL,
		defaultHeaders:  options.headers,
	}, nil
}

// NewRequest creates a new request builder carrying the client defaults.
func (c *InstrumentedClient) NewRequest() Request {
	return &requestBuilder{
		client:          c.client,
		requestCounter:  c.requestCounter,
		requestDuration: c.requestDuration,
		venueName:       c.venueName,
		tracer:          c.tracer,
		baseURL:         c.baseURL,
		headers:         copyHeaders(c.defaultHeaders),
	}
}

// copyHeaders creates a copy of a headers map.
func copyHeaders(src map[string]string) map[string]string {
	if src == nil {
		return make(map[string]string)
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
