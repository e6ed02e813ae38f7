// Package restyfetcher implements boxoffice.Fetcher with a resty client.
package restyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/metrics"
	"github.com/JakeFAU/boxoffice-crawler/internal/telemetry"
)

const driverName = "resty"

// Config controls the HTTP client.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher issues plain GET requests through resty.
type Fetcher struct {
	client *resty.Client
}

// New builds a Fetcher. Every request is wrapped in a client span.
func New(cfg Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	instrument(client, telemetry.Tracer())
	return &Fetcher{client: client}
}

// Fetch performs one GET and returns the body of a 2xx response.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()
	body, err := f.fetch(ctx, rawURL)
	metrics.ObserveFetch(driverName, rawURL, len(body), time.Since(start), err)
	return body, err
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	res, err := f.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, &boxoffice.FetchError{URL: rawURL, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &boxoffice.FetchError{
			URL:        rawURL,
			StatusCode: res.StatusCode(),
			Err:        errors.New(http.StatusText(res.StatusCode())),
		}
	}
	return res.Body(), nil
}

func instrument(client *resty.Client, tracer trace.Tracer) {
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), "http "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attribute.String("http.url", req.URL)),
		)
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()
		span.SetAttributes(
			attribute.Int("http.status_code", res.StatusCode()),
			attribute.Int("http.response_size", len(res.Body())),
		)
		if !res.IsSuccess() {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", res.StatusCode()))
		}
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	})
}
