package boxoffice

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreLabelRoundTrip(t *testing.T) {
	t.Parallel()

	for _, g := range Genres() {
		label := g.Label()
		require.NotEmpty(t, label, "genre %q has no label", g)
		got, ok := ParseGenre(label)
		require.True(t, ok, "label %q did not map back", label)
		assert.Equal(t, g, got)
	}
}

func TestParseGenreNormalizesWhitespaceAndCase(t *testing.T) {
	t.Parallel()

	got, ok := ParseGenre("  sci-fi ")
	require.True(t, ok)
	assert.Equal(t, GenreSciFi, got)

	_, ok = ParseGenre("Mockumentary")
	assert.False(t, ok)
}

func TestDistributorLabelRoundTrip(t *testing.T) {
	t.Parallel()

	for _, d := range Distributors() {
		got, ok := ParseDistributor(d.Label())
		require.True(t, ok, "label %q did not map back", d.Label())
		assert.Equal(t, d, got)
	}
	_, ok := ParseDistributor("Some Regional Outfit")
	assert.False(t, ok)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	fetchErr := fmt.Errorf("listing: %w", &FetchError{URL: "https://example.com", StatusCode: 503, Err: errors.New("boom")})
	assert.ErrorIs(t, fetchErr, ErrFetchFailed)
	assert.NotErrorIs(t, fetchErr, ErrRequiredElementMissing)

	var fe *FetchError
	require.ErrorAs(t, fetchErr, &fe)
	assert.Equal(t, 503, fe.StatusCode)
	assert.Contains(t, fe.Error(), "HTTP 503")

	missing := fmt.Errorf("title 1: %w", Missing("pro", "cast table"))
	assert.ErrorIs(t, missing, ErrRequiredElementMissing)
	assert.Contains(t, missing.Error(), "cast table")
}

func TestRequestConstructors(t *testing.T) {
	t.Parallel()

	w, err := NewWeekendRequest("2019w17")
	require.NoError(t, err)
	assert.Equal(t, "2019W17", w.ID)

	_, err = NewWeekendRequest("last-weekend")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	y, err := NewYearRequest(2019)
	require.NoError(t, err)
	assert.Equal(t, "year 2019", y.String())

	_, err = NewYearRequest(19)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	s, err := NewSourceRequest(" https://www.boxofficemojo.com/release/rl1/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://www.boxofficemojo.com/release/rl1/", s.URL)

	_, err = NewSourceRequest("/release/rl1/")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAttachOnlyOnce(t *testing.T) {
	t.Parallel()

	r := &RankedRelease{Rank: 1, Title: "Film A"}
	require.NoError(t, r.Attach(TitleDetail{DisplayTitle: "Film A"}))
	assert.Equal(t, "Film A", r.Detail.DisplayTitle)
	assert.Error(t, r.Attach(TitleDetail{DisplayTitle: "Other"}))
	assert.Equal(t, "Film A", r.Detail.DisplayTitle)
}

func TestVariantString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pro", VariantPro.String())
	assert.Equal(t, "listing", VariantListing.String())
}
