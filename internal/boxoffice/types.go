package boxoffice

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// BatchKind identifies which listing page a batch was read from.
type BatchKind string

// Batch kinds produced by the listing extractor.
const (
	BatchWeekend BatchKind = "weekend"
	BatchYear    BatchKind = "year"
)

// ContentType distinguishes feature films from episodic titles.
type ContentType string

// Content types reported by the detail service.
const (
	ContentMovie  ContentType = "movie"
	ContentSeries ContentType = "series"
)

// Batch is an ordered listing plus the page's descriptive title.
type Batch struct {
	Title    string           `json:"title"`
	Kind     BatchKind        `json:"kind"`
	Releases []*RankedRelease `json:"releases"`
}

// RankedRelease is one row of a listing. Detail is nil until the pipeline
// enriches the row and is never replaced afterwards.
type RankedRelease struct {
	Rank              int          `json:"rank"`
	PreviousRank      int          `json:"previous_rank"`
	Title             string       `json:"title"`
	CrossReferenceURI string       `json:"cross_reference_uri,omitempty"`
	PeriodGross       int64        `json:"period_gross"`
	CumulativeGross   int64        `json:"cumulative_gross"`
	TheaterCount      int          `json:"theater_count"`
	WeeksInRelease    int          `json:"weeks_in_release"`
	Detail            *TitleDetail `json:"detail,omitempty"`
}

// Attach sets the enriched detail exactly once.
func (r *RankedRelease) Attach(d TitleDetail) error {
	if r.Detail != nil {
		return fmt.Errorf("release %d (%s) already enriched", r.Rank, r.Title)
	}
	r.Detail = &d
	return nil
}

// GrossBreakdown splits lifetime gross by territory. Each amount is
// independently optional and the parts need not add up.
type GrossBreakdown struct {
	Domestic      *int64 `json:"domestic,omitempty"`
	International *int64 `json:"international,omitempty"`
	Worldwide     *int64 `json:"worldwide,omitempty"`
}

// TitleDetail is the merged view of the release summary page and the
// detail-service page for one title.
type TitleDetail struct {
	CanonicalProURI          string          `json:"canonical_pro_uri"`
	CanonicalListingURI      string          `json:"canonical_listing_uri"`
	DisplayTitle             string          `json:"display_title"`
	PosterURI                string          `json:"poster_uri,omitempty"`
	Synopsis                 string          `json:"synopsis,omitempty"`
	ReleaseDate              *civil.Date     `json:"release_date,omitempty"`
	Certificate              string          `json:"certificate,omitempty"`
	RuntimeMinutes           int             `json:"runtime_minutes"`
	Genres                   []Genre         `json:"genres"`
	ContentType              ContentType     `json:"content_type"`
	SeasonCount              int             `json:"season_count"`
	OpeningGross             *int64          `json:"opening_gross,omitempty"`
	OpeningTheaterCount      *int64          `json:"opening_theater_count,omitempty"`
	WidestTheaterCount       *int64          `json:"widest_theater_count,omitempty"`
	Budget                   *int64          `json:"budget,omitempty"`
	Gross                    *GrossBreakdown `json:"gross,omitempty"`
	Credits                  []Credit        `json:"credits"`
	Distributor              *Distributor    `json:"distributor,omitempty"`
	InternationalReleaseNote *string         `json:"international_release_note,omitempty"`
}

// Credit is one crew or cast entry.
type Credit struct {
	PersonName    string   `json:"person_name"`
	PersonURI     string   `json:"person_uri"`
	Role          RoleKind `json:"role"`
	CharacterName *string  `json:"character_name,omitempty"`
	PortraitURI   *string  `json:"portrait_uri,omitempty"`
}

// RoleKind is the closed set of credit roles.
type RoleKind string

// Credit roles. CrewRoles lists the non-actor roles in output order.
const (
	RoleActor           RoleKind = "actor"
	RoleDirector        RoleKind = "director"
	RoleWriter          RoleKind = "writer"
	RoleProducer        RoleKind = "producer"
	RoleComposer        RoleKind = "composer"
	RoleCinematographer RoleKind = "cinematographer"
	RoleShowrunner      RoleKind = "showrunner"
)

// CrewRoles is the order in which crew credits are emitted.
var CrewRoles = []RoleKind{
	RoleDirector,
	RoleWriter,
	RoleProducer,
	RoleComposer,
	RoleCinematographer,
	RoleShowrunner,
}
