// Package escalate fetches with a plain HTTP driver and retries through a
// rendering driver when the response looks like an unrendered page shell.
package escalate

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
)

// Detector decides whether a body needs rendering.
type Detector interface {
	ShouldPromote(body []byte) bool
}

// Fetcher tries Primary first and promotes to Renderer on demand.
type Fetcher struct {
	primary  boxoffice.Fetcher
	renderer boxoffice.Fetcher
	detector Detector
	logger   *zap.Logger
}

// New builds an escalating fetcher.
func New(primary, renderer boxoffice.Fetcher, detector Detector, logger *zap.Logger) (*Fetcher, error) {
	if primary == nil || renderer == nil || detector == nil {
		return nil, errors.New("escalate: primary, renderer and detector are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{primary: primary, renderer: renderer, detector: detector, logger: logger}, nil
}

// Fetch returns the primary body unless the detector flags it. Primary
// failures are returned as-is; an HTTP error status is not a rendering problem.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := f.primary.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !f.detector.ShouldPromote(body) {
		return body, nil
	}
	f.logger.Debug("promoting fetch to renderer",
		zap.String("url", rawURL),
		zap.Int("primary_bytes", len(body)),
	)
	return f.renderer.Fetch(ctx, rawURL)
}
