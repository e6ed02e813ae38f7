package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	args := m.Called(ctx, rawURL)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func TestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		variant boxoffice.Variant
		want    string
	}{
		{name: "weekend", url: "https://www.boxofficemojo.com/weekend/2019W17/", want: "2019W17"},
		{name: "year ignores query", url: "https://www.boxofficemojo.com/year/2019/?grossesOption=totalGrosses", want: "year2019"},
		{name: "release", url: "https://www.boxofficemojo.com/release/rl3059975681/", want: "rl3059975681"},
		{name: "pro title", url: "https://pro.imdb.com/title/tt4154796/", variant: boxoffice.VariantPro, want: "pro.tt4154796"},
		{name: "root", url: "https://www.boxofficemojo.com/", want: "index"},
		{name: "unsafe characters", url: "https://example.com/a%20b/c%3Fd", want: "a_bc_d"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Key(tt.url, tt.variant))
		})
	}
}

func TestKeyVariantsDoNotCollide(t *testing.T) {
	t.Parallel()

	u := "https://example.com/title/tt1/"
	assert.NotEqual(t, Key(u, boxoffice.VariantListing), Key(u, boxoffice.VariantPro))
}

func TestNewCreatesNestedRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "a", "b", "c")
	s, err := New(Config{Root: root}, &mockFetcher{}, nil)
	require.NoError(t, err)
	assert.Equal(t, root, s.Root())

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewUnavailableRoot(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	tests := []struct {
		name string
		root string
	}{
		{name: "empty", root: ""},
		{name: "path is a file", root: file},
		{name: "parent is a file", root: filepath.Join(file, "child")},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := &mockFetcher{}
			_, err := New(Config{Root: tt.root}, f, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, boxoffice.ErrCacheUnavailable)
			f.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
		})
	}
}

func TestGetFetchesOnce(t *testing.T) {
	t.Parallel()

	const u = "https://www.boxofficemojo.com/weekend/2019W17/"
	body := []byte("<html>weekend</html>")
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, u).Return(body, nil).Once()

	s, err := New(Config{Root: t.TempDir()}, f, nil)
	require.NoError(t, err)

	first, err := s.Get(context.Background(), u, boxoffice.VariantListing)
	require.NoError(t, err)
	second, err := s.Get(context.Background(), u, boxoffice.VariantListing)
	require.NoError(t, err)

	assert.Equal(t, body, first)
	assert.Equal(t, first, second)
	f.AssertNumberOfCalls(t, "Fetch", 1)

	onDisk, err := os.ReadFile(filepath.Join(s.Root(), "2019W17.html"))
	require.NoError(t, err)
	assert.Equal(t, body, onDisk)
}

func TestGetServesExistingFileWithoutFetching(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pro.tt1.html"), []byte("cached"), 0o600))

	f := &mockFetcher{}
	s, err := New(Config{Root: root}, f, nil)
	require.NoError(t, err)

	b, err := s.Get(context.Background(), "https://pro.imdb.com/title/tt1/", boxoffice.VariantPro)
	require.NoError(t, err)
	assert.Equal(t, "cached", string(b))
	f.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestGetFetchErrorWritesNothing(t *testing.T) {
	t.Parallel()

	const u = "https://www.boxofficemojo.com/release/rl9/"
	fetchErr := &boxoffice.FetchError{URL: u, StatusCode: 503, Err: errors.New("unavailable")}
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, u).Return(nil, fetchErr)

	s, err := New(Config{Root: t.TempDir()}, f, nil)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), u, boxoffice.VariantListing)
	require.Error(t, err)
	assert.ErrorIs(t, err, boxoffice.ErrFetchFailed)

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type slowFetcher struct {
	calls   atomic.Int32
	release chan struct{}
}

func (f *slowFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls.Add(1)
	<-f.release
	return []byte("shared"), nil
}

func TestGetCollapsesConcurrentMisses(t *testing.T) {
	t.Parallel()

	f := &slowFetcher{release: make(chan struct{})}
	s, err := New(Config{Root: t.TempDir()}, f, nil)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	results := make([][]byte, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Get(context.Background(), "https://example.com/release/rl1/", boxoffice.VariantListing)
		}(i)
	}

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", string(results[i]))
	}
}
