// Package server runs the HTTP API until the process is signaled to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/boxoffice-crawler/internal/api"
	"github.com/JakeFAU/boxoffice-crawler/internal/app"
)

const shutdownTimeout = 10 * time.Second

// Server owns the listening HTTP server for an App.
type Server struct {
	app    *app.App
	logger *zap.Logger
	srv    *http.Server
}

// New builds the API handler for a and binds it to the configured port.
func New(a *app.App) *Server {
	cfg := a.Config()
	handler := api.NewServer(a.Runner(), api.Options{
		RequestTimeout: cfg.RequestTimeout(),
		Ready:          cacheReady(a.Cache().Root()),
	}, a.Logger())

	return &Server{
		app:    a,
		logger: a.Logger(),
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run serves until ctx is canceled or SIGINT/SIGTERM arrives, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	s.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown error", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("shutdown complete")
	return nil
}

func cacheReady(root string) api.ReadinessCheck {
	return func(context.Context) error {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("cache root: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("cache root %s is not a directory", root)
		}
		return nil
	}
}
