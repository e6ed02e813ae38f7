package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/pipeline"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, req boxoffice.Request) (pipeline.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(pipeline.Result), args.Error(1)
}

func newTestServer(runner Runner) *Server {
	return NewServer(runner, Options{RequestTimeout: time.Minute}, zap.NewNop())
}

func serve(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestServer(&mockRunner{}), "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Readyz(t *testing.T) {
	t.Parallel()

	ok := NewServer(&mockRunner{}, Options{Ready: func(context.Context) error { return nil }}, nil)
	require.Equal(t, http.StatusOK, serve(t, ok, "/readyz").Code)

	down := NewServer(&mockRunner{}, Options{Ready: func(context.Context) error {
		return errors.New("cache unavailable")
	}}, nil)
	rec := serve(t, down, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "cache unavailable")
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestServer(&mockRunner{}), "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "# TYPE")
}

func TestServer_GetWeekend(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	batch := &boxoffice.Batch{
		Title: "Weekend Box Office",
		Kind:  boxoffice.BatchWeekend,
		Releases: []*boxoffice.RankedRelease{
			{Rank: 1, Title: "Film A", PeriodGross: 10_000_000},
		},
	}
	runner.On("Run", mock.Anything, boxoffice.WeekendRequest{ID: "2019W17"}).
		Return(pipeline.Result{Batch: batch}, nil).Once()

	rec := serve(t, newTestServer(runner), "/v1/weekends/2019W17")

	require.Equal(t, http.StatusOK, rec.Code)
	var got pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Batch)
	assert.Equal(t, "Film A", got.Batch.Releases[0].Title)
	assert.Nil(t, got.Title)
	runner.AssertExpectations(t)
}

func TestServer_GetYear(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	runner.On("Run", mock.Anything, boxoffice.YearRequest{Year: 2019}).
		Return(pipeline.Result{Batch: &boxoffice.Batch{Kind: boxoffice.BatchYear}}, nil).Once()

	rec := serve(t, newTestServer(runner), "/v1/years/2019")

	require.Equal(t, http.StatusOK, rec.Code)
	runner.AssertExpectations(t)
}

func TestServer_GetTitle(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	const src = "https://www.boxofficemojo.com/release/rl3059975681/"
	runner.On("Run", mock.Anything, boxoffice.SourceRequest{URL: src}).
		Return(pipeline.Result{Title: &boxoffice.TitleDetail{DisplayTitle: "Avengers: Endgame"}}, nil).Once()

	rec := serve(t, newTestServer(runner), "/v1/titles?url="+src)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"display_title":"Avengers: Endgame"`)
	runner.AssertExpectations(t)
}

func TestServer_ConditionalGet(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	runner.On("Run", mock.Anything, boxoffice.YearRequest{Year: 2019}).
		Return(pipeline.Result{Batch: &boxoffice.Batch{Title: "Domestic Box Office For 2019"}}, nil).Twice()
	s := newTestServer(runner)

	first := serve(t, s, "/v1/years/2019")
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/v1/years/2019", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotModified, rec.Code)
	require.Empty(t, rec.Body.String())
	runner.AssertExpectations(t)
}

func TestServer_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
	}{
		{name: "malformed weekend", target: "/v1/weekends/2019-17"},
		{name: "non numeric year", target: "/v1/years/nineteen"},
		{name: "missing url", target: "/v1/titles"},
		{name: "relative url", target: "/v1/titles?url=/release/rl1/"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			runner := &mockRunner{}
			rec := serve(t, newTestServer(runner), tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		})
	}
}

func TestServer_RunFailureStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "fetch failure",
			err:  &boxoffice.FetchError{URL: "https://x", StatusCode: http.StatusNotFound},
			want: http.StatusBadGateway,
		},
		{
			name: "missing element",
			err:  fmt.Errorf("rank 1 (Film A): %w", boxoffice.Missing("pro", "cast table")),
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "deadline",
			err:  &boxoffice.FetchError{URL: "https://x", Err: context.DeadlineExceeded},
			want: http.StatusGatewayTimeout,
		},
		{name: "unexpected", err: errors.New("disk full"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			runner := &mockRunner{}
			runner.On("Run", mock.Anything, mock.Anything).Return(pipeline.Result{}, tt.err).Once()

			rec := serve(t, newTestServer(runner), "/v1/years/2019")

			assert.Equal(t, tt.want, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestServer_RunHonorsTimeout(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	runner.On("Run", mock.Anything, mock.Anything).
		Return(pipeline.Result{}, nil).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok, "expected run context to carry a deadline")
		}).Once()

	rec := serve(t, newTestServer(runner), "/v1/years/2019")

	require.Equal(t, http.StatusOK, rec.Code)
	runner.AssertExpectations(t)
}
