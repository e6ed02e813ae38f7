// Package collyfetcher implements boxoffice.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/metrics"
)

const driverName = "colly"

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
}

// Fetcher implements boxoffice.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET using Colly and returns the body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()
	body, err := f.runCollector(ctx, rawURL)
	metrics.ObserveFetch(driverName, rawURL, len(body), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// visitResult carries everything a collector visit produced. It is only
// written by the visiting goroutine and handed over whole.
type visitResult struct {
	body     []byte
	fetchErr *boxoffice.FetchError
	err      error
}

func (f *Fetcher) buildCollector(rawURL string, body *[]byte, fetchErr **boxoffice.FetchError) *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	transport := f.transport
	if transport == nil {
		transport = newHTTPTransport()
	}
	collector.WithTransport(transport)

	f.configureCollectorHooks(collector, rawURL, body, fetchErr)
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	rawURL string,
	body *[]byte,
	fetchErr **boxoffice.FetchError,
) {
	hooks.OnResponse(func(r *colly.Response) {
		*body = append([]byte(nil), r.Body...)
	})

	hooks.OnError(func(r *colly.Response, err error) {
		fe := &boxoffice.FetchError{URL: rawURL, Err: err}
		if r != nil {
			fe.StatusCode = r.StatusCode
		}
		*fetchErr = fe
	})
}

func (f *Fetcher) runCollector(ctx context.Context, rawURL string) ([]byte, error) {
	done := make(chan visitResult, 1)
	go func() {
		var res visitResult
		collector := f.buildCollector(rawURL, &res.body, &res.fetchErr)
		res.err = collector.Visit(rawURL)
		done <- res
	}()

	select {
	case <-ctx.Done():
		return nil, &boxoffice.FetchError{URL: rawURL, Err: fmt.Errorf("colly fetch canceled: %w", ctx.Err())}
	case res := <-done:
		if res.fetchErr != nil {
			return nil, res.fetchErr
		}
		if res.err != nil {
			var fe *boxoffice.FetchError
			if errors.As(res.err, &fe) {
				return nil, fe
			}
			return nil, &boxoffice.FetchError{URL: rawURL, Err: fmt.Errorf("colly visit failed: %w", res.err)}
		}
		return res.body, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
