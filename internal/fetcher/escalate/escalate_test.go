package escalate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/headless/detector"
)

type stubFetcher struct {
	body  []byte
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context, string) ([]byte, error) {
	s.calls++
	return s.body, s.err
}

func TestFetchKeepsRenderedMarkup(t *testing.T) {
	t.Parallel()

	primary := &stubFetcher{body: []byte(`<table><tr><td>1</td></tr></table>`)}
	renderer := &stubFetcher{body: []byte("rendered")}
	f, err := New(primary, renderer, detector.NewHeuristic(0, detector.DefaultContentSelector), nil)
	require.NoError(t, err)

	body, err := f.Fetch(context.Background(), "https://www.boxofficemojo.com/weekend/2019W17/")
	require.NoError(t, err)
	assert.Equal(t, primary.body, body)
	assert.Zero(t, renderer.calls)
}

func TestFetchPromotesShell(t *testing.T) {
	t.Parallel()

	primary := &stubFetcher{body: []byte(`<div id="app"></div>`)}
	renderer := &stubFetcher{body: []byte(`<table id="title_cast_sortable_table"></table>`)}
	core, logs := observer.New(zap.DebugLevel)
	f, err := New(primary, renderer, detector.NewHeuristic(0, detector.DefaultContentSelector), zap.New(core))
	require.NoError(t, err)

	body, err := f.Fetch(context.Background(), "https://pro.imdb.com/title/tt1/")
	require.NoError(t, err)
	assert.Equal(t, renderer.body, body)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, 1, logs.FilterMessage("promoting fetch to renderer").Len())
}

func TestFetchDoesNotPromoteErrors(t *testing.T) {
	t.Parallel()

	fetchErr := &boxoffice.FetchError{URL: "https://x", StatusCode: 404}
	primary := &stubFetcher{err: fetchErr}
	renderer := &stubFetcher{}
	f, err := New(primary, renderer, detector.NewHeuristic(0, ""), zap.NewNop())
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), "https://x")
	require.ErrorIs(t, err, boxoffice.ErrFetchFailed)
	assert.Zero(t, renderer.calls)
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := New(nil, &stubFetcher{}, detector.NewHeuristic(0, ""), nil)
	require.Error(t, err)
}
