package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/boxoffice-crawler/internal/app"
	"github.com/JakeFAU/boxoffice-crawler/internal/config"
)

type nopFetcher struct{}

func (nopFetcher) Fetch(context.Context, string) ([]byte, error) { return nil, nil }

func TestServeAndShutdown(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Cache.Root = filepath.Join(t.TempDir(), "pages")

	a, err := app.New(context.Background(), cfg, zap.NewNop(), app.WithFetcher(nopFetcher{}))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	s := New(a)
	go func() { done <- s.Serve(ctx, ln) }()

	base := fmt.Sprintf("http://%s", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/readyz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestCacheReady(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, cacheReady(dir)(context.Background()))
	require.Error(t, cacheReady(filepath.Join(dir, "missing"))(context.Background()))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	require.ErrorContains(t, cacheReady(file)(context.Background()), "not a directory")
}
