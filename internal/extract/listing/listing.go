// Package listing parses weekend and yearly ranking tables into RankedRelease
// stubs.
package listing

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/htmlutil"
)

// Default batch caps.
const (
	DefaultWeekendLimit = 10
	DefaultYearLimit    = 30
)

// Options caps how many rows each batch kind emits.
type Options struct {
	WeekendLimit int
	YearLimit    int
}

// DefaultOptions returns the standard caps.
func DefaultOptions() Options {
	return Options{WeekendLimit: DefaultWeekendLimit, YearLimit: DefaultYearLimit}
}

func (o Options) limit(kind boxoffice.BatchKind) int {
	if kind == boxoffice.BatchYear {
		if o.YearLimit > 0 {
			return o.YearLimit
		}
		return DefaultYearLimit
	}
	if o.WeekendLimit > 0 {
		return o.WeekendLimit
	}
	return DefaultWeekendLimit
}

// Page identifies the listing being parsed.
type Page struct {
	// URL is the listing URL; relative release links resolve against it.
	URL  string
	Kind boxoffice.BatchKind
	// Year is only read for yearly listings.
	Year int
}

type cellSetter func(r *boxoffice.RankedRelease, cell *goquery.Selection, pageURL string)

type column struct {
	header string
	set    cellSetter
}

// columns maps header text to field setters. Headers not listed are ignored.
var columns = []column{
	{header: "LW", set: func(r *boxoffice.RankedRelease, c *goquery.Selection, _ string) {
		r.PreviousRank = htmlutil.Int(c.Text())
	}},
	{header: "Release", set: setRelease},
	{header: "Gross", set: func(r *boxoffice.RankedRelease, c *goquery.Selection, _ string) {
		r.PeriodGross = htmlutil.Amount(c.Text())
	}},
	{header: "Theaters", set: func(r *boxoffice.RankedRelease, c *goquery.Selection, _ string) {
		r.TheaterCount = htmlutil.Int(c.Text())
	}},
	{header: "Total Gross", set: func(r *boxoffice.RankedRelease, c *goquery.Selection, _ string) {
		r.CumulativeGross = htmlutil.Amount(c.Text())
	}},
	{header: "Weeks", set: func(r *boxoffice.RankedRelease, c *goquery.Selection, _ string) {
		r.WeeksInRelease = htmlutil.Int(c.Text())
	}},
}

func setRelease(r *boxoffice.RankedRelease, cell *goquery.Selection, pageURL string) {
	r.Title = htmlutil.Text(cell)
	a, ok := htmlutil.Find(cell, "a[href]")
	if !ok {
		return
	}
	if t := htmlutil.Text(a); t != "" {
		r.Title = t
	}
	if p, ok := htmlutil.HrefPath(a.AttrOr("href", "")); ok {
		r.CrossReferenceURI = htmlutil.JoinPath(pageURL, p)
	}
}

func lookupColumn(header string) cellSetter {
	for _, c := range columns {
		if c.header == header {
			return c.set
		}
	}
	return nil
}

// Parse extracts the ranked rows and page title from a listing page.
func Parse(raw []byte, page Page, opts Options) (*boxoffice.Batch, error) {
	doc, err := htmlutil.Document(raw)
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	table := resultsTable(doc)
	if table == nil {
		return nil, boxoffice.Missing("listing", "results table")
	}

	var headers []string
	var setters []cellSetter
	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		th := tr.ChildrenFiltered("th")
		if th.Length() == 0 {
			return true
		}
		th.Each(func(_ int, cell *goquery.Selection) {
			h := htmlutil.Text(cell)
			headers = append(headers, h)
			setters = append(setters, lookupColumn(h))
		})
		return false
	})

	limit := opts.limit(page.Kind)
	releases := make([]*boxoffice.RankedRelease, 0, limit)
	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return true
		}
		if cells.Length() != len(headers) {
			return true
		}
		r := &boxoffice.RankedRelease{Rank: len(releases) + 1}
		cells.Each(func(i int, cell *goquery.Selection) {
			if set := setters[i]; set != nil {
				set(r, cell, page.URL)
			}
		})
		if page.Kind == boxoffice.BatchYear {
			r.TheaterCount = 0
			r.WeeksInRelease = 0
			r.PreviousRank = 0
			r.CumulativeGross = 0
		}
		releases = append(releases, r)
		return len(releases) < limit
	})

	return &boxoffice.Batch{
		Title:    pageTitle(doc, page),
		Kind:     page.Kind,
		Releases: releases,
	}, nil
}

func resultsTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		if t.Find("tr > th").Length() > 0 && t.Find("tr > td").Length() > 0 {
			found = t
			return false
		}
		return true
	})
	return found
}

func pageTitle(doc *goquery.Document, page Page) string {
	if page.Kind == boxoffice.BatchYear {
		return fmt.Sprintf("Domestic Box Office For %d", page.Year)
	}
	h1, ok := htmlutil.Find(doc, "h1")
	if !ok {
		return ""
	}
	if t := htmlutil.TrailingText(h1); t != "" {
		return t
	}
	return htmlutil.Text(h1)
}
