// Package pipeline drives one extraction run: it fetches a listing through
// the page cache, then enriches each ranked row with its title detail. Runs
// are sequential and the first failure aborts the whole batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/extract/detail"
	"github.com/JakeFAU/boxoffice-crawler/internal/extract/listing"
	"github.com/JakeFAU/boxoffice-crawler/internal/metrics"
	"github.com/JakeFAU/boxoffice-crawler/internal/telemetry"
)

// Default site roots.
const (
	DefaultListingBaseURL = "https://www.boxofficemojo.com"
	DefaultProBaseURL     = "https://pro.imdb.com"
)

// Config wires site roots and extractor options.
type Config struct {
	ListingBaseURL string
	ProBaseURL     string
	Listing        listing.Options
	Detail         detail.Options
}

// Result is the outcome of a run. Batch is set for weekend and year
// requests, Title for source requests.
type Result struct {
	Batch *boxoffice.Batch       `json:"batch,omitempty"`
	Title *boxoffice.TitleDetail `json:"title,omitempty"`
}

// Runner executes requests against a PageSource.
type Runner struct {
	cfg    Config
	pages  boxoffice.PageSource
	logger *zap.Logger
	tracer trace.Tracer

	// sem admits one run at a time; waiting callers honor their context.
	sem chan struct{}
}

// NewRunner builds a Runner. Empty base URLs fall back to the public sites.
func NewRunner(cfg Config, pages boxoffice.PageSource, logger *zap.Logger) (*Runner, error) {
	if pages == nil {
		return nil, errors.New("pipeline: page source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ListingBaseURL == "" {
		cfg.ListingBaseURL = DefaultListingBaseURL
	}
	if cfg.ProBaseURL == "" {
		cfg.ProBaseURL = DefaultProBaseURL
	}
	cfg.ListingBaseURL = strings.TrimRight(cfg.ListingBaseURL, "/")
	cfg.ProBaseURL = strings.TrimRight(cfg.ProBaseURL, "/")
	return &Runner{
		cfg:    cfg,
		pages:  pages,
		logger: logger,
		tracer: telemetry.Tracer(),
		sem:    make(chan struct{}, 1),
	}, nil
}

// WeekendURL returns the listing URL for a weekend id.
func (r *Runner) WeekendURL(id string) string {
	return fmt.Sprintf("%s/weekend/%s/", r.cfg.ListingBaseURL, id)
}

// YearURL returns the listing URL for a calendar year.
func (r *Runner) YearURL(year int) string {
	return fmt.Sprintf("%s/year/%d/?grossesOption=totalGrosses", r.cfg.ListingBaseURL, year)
}

// Run executes one request. Concurrent calls are serialized.
func (r *Runner) Run(ctx context.Context, req boxoffice.Request) (res Result, err error) {
	if req == nil {
		return Result{}, fmt.Errorf("%w: nil request", boxoffice.ErrInvalidRequest)
	}
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return Result{}, fmt.Errorf("run canceled: %w", ctx.Err())
	}
	defer func() { <-r.sem }()

	kind := requestKind(req)
	ctx, span := r.tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.String("request.kind", kind),
		attribute.String("request", req.String()),
	))
	logger := r.logger.With(zap.String("request", req.String()))
	logger.Info("run started")
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error("run failed", zap.Error(err))
		} else {
			logger.Info("run finished")
		}
		metrics.ObserveRun(kind, status)
		span.End()
	}()

	switch req := req.(type) {
	case boxoffice.WeekendRequest:
		batch, err := r.runBatch(ctx, logger, listing.Page{URL: r.WeekendURL(req.ID), Kind: boxoffice.BatchWeekend})
		return Result{Batch: batch}, err
	case boxoffice.YearRequest:
		batch, err := r.runBatch(ctx, logger, listing.Page{URL: r.YearURL(req.Year), Kind: boxoffice.BatchYear, Year: req.Year})
		return Result{Batch: batch}, err
	case boxoffice.SourceRequest:
		d, err := r.Enrich(ctx, req.URL)
		if err != nil {
			return Result{}, err
		}
		return Result{Title: &d}, nil
	default:
		return Result{}, fmt.Errorf("%w: unsupported request %T", boxoffice.ErrInvalidRequest, req)
	}
}

func (r *Runner) runBatch(ctx context.Context, logger *zap.Logger, page listing.Page) (*boxoffice.Batch, error) {
	raw, err := r.pages.Get(ctx, page.URL, boxoffice.VariantListing)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", page.URL, err)
	}
	batch, err := listing.Parse(raw, page, r.cfg.Listing)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", page.URL, err)
	}
	logger.Info("listing parsed", zap.String("title", batch.Title), zap.Int("releases", len(batch.Releases)))

	for _, rel := range batch.Releases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run canceled: %w", err)
		}
		if err := r.enrichRelease(ctx, logger, rel); err != nil {
			return nil, fmt.Errorf("rank %d (%s): %w", rel.Rank, rel.Title, err)
		}
	}
	return batch, nil
}

func (r *Runner) enrichRelease(ctx context.Context, logger *zap.Logger, rel *boxoffice.RankedRelease) error {
	if rel.CrossReferenceURI == "" {
		return boxoffice.Missing("listing", "release link")
	}
	d, err := r.Enrich(ctx, rel.CrossReferenceURI)
	if err != nil {
		return err
	}
	if err := rel.Attach(d); err != nil {
		return err
	}
	metrics.ObserveTitle()
	logger.Debug("title enriched", zap.Int("rank", rel.Rank), zap.String("title", d.DisplayTitle))
	return nil
}

// Enrich builds the detail record for one release page: the summary page
// itself, then the detail-service page it links to.
func (r *Runner) Enrich(ctx context.Context, releaseURL string) (_ boxoffice.TitleDetail, err error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.Enrich", trace.WithAttributes(attribute.String("url", releaseURL)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	raw, err := r.pages.Get(ctx, releaseURL, boxoffice.VariantListing)
	if err != nil {
		return boxoffice.TitleDetail{}, fmt.Errorf("release page: %w", err)
	}
	summary, err := detail.ParseSummary(raw)
	if err != nil {
		return boxoffice.TitleDetail{}, err
	}
	ref, err := detail.ResolveTitle(raw, r.cfg.ListingBaseURL, r.cfg.ProBaseURL)
	if err != nil {
		return boxoffice.TitleDetail{}, err
	}

	proRaw, err := r.pages.Get(ctx, ref.ProURI, boxoffice.VariantPro)
	if err != nil {
		return boxoffice.TitleDetail{}, fmt.Errorf("pro page: %w", err)
	}
	pro, err := detail.ParsePro(proRaw, r.cfg.ProBaseURL, r.cfg.Detail)
	if err != nil {
		return boxoffice.TitleDetail{}, err
	}
	return detail.Build(summary, ref, pro), nil
}

func requestKind(req boxoffice.Request) string {
	switch req.(type) {
	case boxoffice.WeekendRequest:
		return string(boxoffice.BatchWeekend)
	case boxoffice.YearRequest:
		return string(boxoffice.BatchYear)
	case boxoffice.SourceRequest:
		return "source"
	default:
		return "unknown"
	}
}
