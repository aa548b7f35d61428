package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request is the interface for building and executing HTTP requests.
type Request interface {
	// HTTP methods
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)

	// Configuration
	SetBody(body interface{}) Request
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetResult(result interface{}) Request
}

// Response wraps http.Response with additional helpers.
type Response struct {
	*http.Response
	body []byte
}

// Body returns the response body as bytes.
func (r *Response) Body() []byte {
	return r.body
}

// String returns the response body as string.
func (r *Response) String() string {
	return string(r.body)
}

// IsError returns true if the status code indicates an error (>= 400).
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// IsSuccess returns true if the status code indicates success (< 400).
func (r *Response) IsSuccess() bool {
	return r.StatusCode < 400
}

// requestBuilder implements Request.
type requestBuilder struct {
	client          *http.Client
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
	venueName       string
	tracer          trace.Tracer
	baseURL         string
	headers         map[string]string
	queryParams     url.Values
	body            interface{}
	result          interface{}
}

// Get executes a GET request.
func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, path)
}

// Post executes a POST request.
func (r *requestBuilder) Post(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, path)
}

// Delete executes a DELETE request.
func (r *requestBuilder) Delete(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodDelete, path)
}

// SetBody sets the request body (JSON encoded unless bytes or string).
func (r *requestBuilder) SetBody(body interface{}) Request {
	r.body = body
	return r
}

// SetHeader sets a single header.
func (r *requestBuilder) SetHeader(key, value string) Request {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

// SetQueryParam sets a single query parameter.
func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.queryParams == nil {
		r.queryParams = url.Values{}
	}
	r.queryParams.Set(key, value)
	return r
}

// SetResult sets the result struct for JSON unmarshaling.
func (r *requestBuilder) SetResult(result interface{}) Request {
	r.result = result
	return r
}

// execute performs the HTTP request with instrumentation.
func (r *requestBuilder) execute(ctx context.Context, method, path string) (*Response, error) {
	ctx, span := r.tracer.Start(ctx, "gateway.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
			attribute.String("venue", r.venueName),
		),
	)
	defer span.End()

	// Build full URL
	fullURL := path
	if r.baseURL != "" && !strings.HasPrefix(path, "http") {
		fullURL = strings.TrimSuffix(r.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.queryParams) > 0 {
		separator := "?"
		if strings.Contains(fullURL, "?") {
			separator = "&"
		}
		fullURL += separator + r.queryParams.Encode()
	}

	// Build request body
	var bodyReader io.Reader
	if r.body != nil {
		switch b := r.body.(type) {
		case []byte:
			bodyReader = bytes.NewReader(b)
		case string:
			bodyReader = strings.NewReader(b)
		case io.Reader:
			bodyReader = b
		default:
			jsonBody, err := json.Marshal(b)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to marshal body")
				return nil, fmt.Errorf("failed to marshal body: %w", err)
			}
			bodyReader = bytes.NewReader(jsonBody)
			if r.headers == nil {
				r.headers = make(map[string]string)
			}
			if _, ok := r.headers["Content-Type"]; !ok {
				r.headers["Content-Type"] = "application/json"
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		r.recordError(ctx, span, err, elapsed)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	response := &Response{
		Response: resp,
		body:     body,
	}

	// Unmarshal result if set. Error payloads often don't match the result
	// shape; the caller inspects the status code, so decode failures are
	// recorded but not fatal.
	if r.result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, r.result); err != nil {
			span.RecordError(err)
		}
	}

	if response.IsError() {
		span.SetAttributes(
			attribute.Int("http.status_code", resp.StatusCode),
			attribute.String("http.error.status", resp.Status),
		)
	}

	r.recordMetrics(ctx, response.IsSuccess(), elapsed)
	return response, nil
}

// recordError logs network errors to the span.
func (r *requestBuilder) recordError(ctx context.Context, span trace.Span, err error, elapsed time.Duration) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	r.recordMetrics(ctx, false, elapsed)
}

// recordMetrics increments the request counter and records latency.
func (r *requestBuilder) recordMetrics(ctx context.Context, success bool, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("venue", r.venueName),
		attribute.Bool("success", success),
	)
	r.requestCounter.Add(ctx, 1, attrs)
	r.requestDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
}
