package detail

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/htmlutil"
)

const releaseDateLayout = "Jan 2, 2006"

// summaryFields maps labels of the summary key/value block to setters.
var summaryFields = map[string]func(*Summary, *goquery.Selection){
	"Distributor":    setDistributor,
	"Opening":        setOpening,
	"Budget":         func(s *Summary, v *goquery.Selection) { s.Budget = htmlutil.OptionalAmount(htmlutil.Text(v)) },
	"Widest Release": setWidest,
	"Release Date":   setReleaseDate,
}

// ParseSummary reads the labeled summary block and the territory gross
// breakdown of a release page. Absent labels leave their fields nil.
func ParseSummary(raw []byte) (Summary, error) {
	doc, err := htmlutil.Document(raw)
	if err != nil {
		return Summary{}, fmt.Errorf("parse release html: %w", err)
	}

	var s Summary
	doc.Find(".mojo-summary-values > div").Each(func(_ int, row *goquery.Selection) {
		spans := row.ChildrenFiltered("span")
		if spans.Length() < 2 {
			return
		}
		if set, ok := summaryFields[htmlutil.Text(spans.Eq(0))]; ok {
			set(&s, spans.Eq(1))
		}
	})
	s.Gross = parseGross(doc)
	return s, nil
}

// ResolveTitle finds the refinement anchor that links a release page to its
// title and resolves it against both sites.
func ResolveTitle(raw []byte, listingBase, proBase string) (TitleRef, error) {
	doc, err := htmlutil.Document(raw)
	if err != nil {
		return TitleRef{}, fmt.Errorf("parse release html: %w", err)
	}
	a, ok := htmlutil.Find(doc, "a.mojo-title-link[href]")
	if !ok {
		return TitleRef{}, boxoffice.Missing("release", "title link")
	}
	p, ok := htmlutil.HrefPath(a.AttrOr("href", ""))
	if !ok {
		return TitleRef{}, boxoffice.Missing("release", "title link path")
	}
	return TitleRef{
		ProURI:     htmlutil.JoinPath(proBase, p),
		ListingURI: htmlutil.JoinPath(listingBase, p),
	}, nil
}

func setDistributor(s *Summary, v *goquery.Selection) {
	v = v.Clone()
	v.Find("a").Remove()
	if d, ok := boxoffice.ParseDistributor(htmlutil.Text(v)); ok {
		s.Distributor = &d
	}
}

func setOpening(s *Summary, v *goquery.Selection) {
	rest := v.Clone()
	if money, ok := htmlutil.Find(v, "span.money"); ok {
		s.OpeningGross = htmlutil.OptionalAmount(htmlutil.Text(money))
		rest.Find("span.money").Remove()
	} else if fields := strings.Fields(htmlutil.Text(v)); len(fields) > 0 {
		// Plain text: "$357,115,007 4,662 theaters".
		s.OpeningGross = htmlutil.OptionalAmount(fields[0])
		if len(fields) > 1 {
			if n, ok := htmlutil.FirstPositiveInt(strings.Join(fields[1:], " ")); ok {
				s.OpeningTheaterCount = &n
			}
		}
		return
	}
	if n, ok := htmlutil.FirstPositiveInt(htmlutil.Text(rest)); ok {
		s.OpeningTheaterCount = &n
	}
}

func setWidest(s *Summary, v *goquery.Selection) {
	s.WidestTheaterCount = htmlutil.OptionalAmount(strings.TrimSuffix(htmlutil.Text(v), " theaters"))
}

func setReleaseDate(s *Summary, v *goquery.Selection) {
	text := htmlutil.Text(v)
	if i := strings.IndexByte(text, '('); i >= 0 {
		text = text[:i]
	} else if i := strings.IndexByte(text, '-'); i >= 0 {
		text = text[:i]
	}
	t, err := time.Parse(releaseDateLayout, strings.TrimSpace(text))
	if err != nil {
		return
	}
	d := civil.DateOf(t)
	s.ReleaseDate = &d
}

func parseGross(doc *goquery.Document) *boxoffice.GrossBreakdown {
	table, ok := htmlutil.Find(doc, ".mojo-performance-summary-table")
	if !ok {
		return nil
	}
	g := &boxoffice.GrossBreakdown{}
	table.Find("div").Each(func(_ int, row *goquery.Selection) {
		spans := row.ChildrenFiltered("span")
		if spans.Length() < 2 {
			return
		}
		value := htmlutil.OptionalAmount(htmlutil.Text(spans.Eq(1)))
		switch label := htmlutil.Text(spans.Eq(0)); {
		case strings.HasPrefix(label, "Domestic"):
			g.Domestic = value
		case strings.HasPrefix(label, "International"):
			g.International = value
		case strings.HasPrefix(label, "Worldwide"):
			g.Worldwide = value
		}
	})
	return g
}
