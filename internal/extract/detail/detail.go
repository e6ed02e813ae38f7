// Package detail reads the per-title documents: the release summary page,
// its refinement link to the title pages, and the detail-service page with
// cast and crew. Build merges the three into one boxoffice.TitleDetail.
package detail

import (
	"cloud.google.com/go/civil"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
)

// DefaultCastLimit caps the number of actor credits kept per title.
const DefaultCastLimit = 10

// Options tunes detail-service extraction.
type Options struct {
	CastLimit int
}

// DefaultOptions returns the standard cast cap.
func DefaultOptions() Options { return Options{CastLimit: DefaultCastLimit} }

func (o Options) castLimit() int {
	if o.CastLimit > 0 {
		return o.CastLimit
	}
	return DefaultCastLimit
}

// Summary holds the financial fields of a release summary page. Every field
// is optional.
type Summary struct {
	Distributor         *boxoffice.Distributor
	OpeningGross        *int64
	OpeningTheaterCount *int64
	WidestTheaterCount  *int64
	Budget              *int64
	ReleaseDate         *civil.Date
	Gross               *boxoffice.GrossBreakdown
}

// TitleRef is the pair of canonical title URLs found on a release page.
type TitleRef struct {
	ProURI     string
	ListingURI string
}

// Pro holds the fields read from the detail-service page.
type Pro struct {
	DisplayTitle             string
	PosterURI                string
	Synopsis                 string
	Certificate              string
	RuntimeMinutes           int
	Genres                   []boxoffice.Genre
	ContentType              boxoffice.ContentType
	SeasonCount              int
	Credits                  []boxoffice.Credit
	InternationalReleaseNote *string
}

// Build assembles a TitleDetail from its three sources.
func Build(s Summary, ref TitleRef, p Pro) boxoffice.TitleDetail {
	genres := p.Genres
	if genres == nil {
		genres = []boxoffice.Genre{}
	}
	credits := p.Credits
	if credits == nil {
		credits = []boxoffice.Credit{}
	}
	contentType := p.ContentType
	if contentType == "" {
		contentType = boxoffice.ContentMovie
	}
	return boxoffice.TitleDetail{
		CanonicalProURI:          ref.ProURI,
		CanonicalListingURI:      ref.ListingURI,
		DisplayTitle:             p.DisplayTitle,
		PosterURI:                p.PosterURI,
		Synopsis:                 p.Synopsis,
		ReleaseDate:              s.ReleaseDate,
		Certificate:              p.Certificate,
		RuntimeMinutes:           p.RuntimeMinutes,
		Genres:                   genres,
		ContentType:              contentType,
		SeasonCount:              p.SeasonCount,
		OpeningGross:             s.OpeningGross,
		OpeningTheaterCount:      s.OpeningTheaterCount,
		WidestTheaterCount:       s.WidestTheaterCount,
		Budget:                   s.Budget,
		Gross:                    s.Gross,
		Credits:                  credits,
		Distributor:              s.Distributor,
		InternationalReleaseNote: p.InternationalReleaseNote,
	}
}
