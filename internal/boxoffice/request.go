package boxoffice

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Request describes one pipeline run. It is one of WeekendRequest,
// YearRequest or SourceRequest and is immutable once built.
type Request interface {
	fmt.Stringer
	isRequest()
}

// WeekendRequest asks for the weekend listing identified by ID (e.g. "2019W17").
type WeekendRequest struct {
	ID string
}

// YearRequest asks for the domestic yearly listing.
type YearRequest struct {
	Year int
}

// SourceRequest asks for a single title starting from an arbitrary release or
// title page URL.
type SourceRequest struct {
	URL string
}

func (WeekendRequest) isRequest() {}
func (YearRequest) isRequest() {}
func (SourceRequest) isRequest() {}

func (r WeekendRequest) String() string { return "weekend " + r.ID }
func (r YearRequest) String() string { return fmt.Sprintf("year %d", r.Year) }
func (r SourceRequest) String() string { return "source " + r.URL }

var weekendIDPattern = regexp.MustCompile(`^\d{4}W\d{1,2}$`)

// NewWeekendRequest validates a weekend identifier such as "2019W17".
func NewWeekendRequest(id string) (WeekendRequest, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if !weekendIDPattern.MatchString(id) {
		return WeekendRequest{}, fmt.Errorf("%w: weekend id %q: want YYYYWnn", ErrInvalidRequest, id)
	}
	return WeekendRequest{ID: id}, nil
}

// NewYearRequest validates a four-digit year.
func NewYearRequest(year int) (YearRequest, error) {
	if year < 1900 || year > 9999 {
		return YearRequest{}, fmt.Errorf("%w: year %d", ErrInvalidRequest, year)
	}
	return YearRequest{Year: year}, nil
}

// NewSourceRequest validates an absolute http(s) URL.
func NewSourceRequest(raw string) (SourceRequest, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return SourceRequest{}, fmt.Errorf("%w: source url %q: %w", ErrInvalidRequest, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return SourceRequest{}, fmt.Errorf("%w: source url %q: must be absolute http(s)", ErrInvalidRequest, raw)
	}
	return SourceRequest{URL: raw}, nil
}
