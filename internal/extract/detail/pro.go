package detail

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/htmlutil"
)

// internationalReleaseRef is the ref_ marker on the status-block link that
// announces an international release.
const internationalReleaseRef = "tt_pub_intl"

// crewContainers maps each crew role to the block listing its people.
var crewContainers = map[boxoffice.RoleKind]string{
	boxoffice.RoleDirector:        "#director_summary",
	boxoffice.RoleWriter:          "#writer_summary",
	boxoffice.RoleProducer:        "#producer_summary",
	boxoffice.RoleComposer:        "#composer_summary",
	boxoffice.RoleCinematographer: "#cinematographer_summary",
	boxoffice.RoleShowrunner:      "#showrunner_summary",
}

var seriesTypes = map[string]bool{
	"tv series":      true,
	"tv mini-series": true,
	"tv mini series": true,
}

// ParsePro reads the detail-service page of one title. The cast table is the
// only required element; everything else falls back to its zero value.
func ParsePro(raw []byte, proBase string, opts Options) (Pro, error) {
	doc, err := htmlutil.Document(raw)
	if err != nil {
		return Pro{}, fmt.Errorf("parse pro html: %w", err)
	}

	castTable, ok := htmlutil.Find(doc, "#title_cast_sortable_table")
	if !ok {
		return Pro{}, boxoffice.Missing("pro", "cast table")
	}

	p := Pro{ContentType: boxoffice.ContentMovie}
	if img, ok := htmlutil.Find(doc, "#primary_poster img[src]"); ok {
		p.PosterURI = htmlutil.CanonicalImage(img.AttrOr("src", ""))
	}
	parseHeading(doc, &p)
	if summary, ok := htmlutil.Find(doc, "#title_summary"); ok {
		summary = summary.Clone()
		summary.Find("div").Remove()
		p.Synopsis = htmlutil.Text(summary)
	}
	p.SeasonCount = seasonCount(doc)
	p.InternationalReleaseNote = internationalNote(doc)

	p.Credits = append(crew(doc, proBase), cast(castTable, proBase, opts.castLimit())...)
	return p, nil
}

// parseHeading fills the title block. Pages whose heading does not have the
// expected title and metadata children are left blank rather than guessed at.
func parseHeading(doc *goquery.Document, p *Pro) {
	heading, ok := htmlutil.Find(doc, "#title_heading")
	if !ok {
		return
	}
	children := heading.Children()
	if children.Length() != 2 {
		return
	}
	p.DisplayTitle = htmlutil.Text(children.Eq(0))

	meta := children.Eq(1)
	if t, ok := htmlutil.Find(meta, "#title_type"); ok && seriesTypes[strings.ToLower(htmlutil.Text(t))] {
		p.ContentType = boxoffice.ContentSeries
	}
	if c, ok := htmlutil.Find(meta, "#certificate"); ok {
		p.Certificate = htmlutil.Text(c)
	}
	if r, ok := htmlutil.Find(meta, "#running_time"); ok {
		if n, ok := htmlutil.FirstPositiveInt(htmlutil.Text(r)); ok {
			p.RuntimeMinutes = int(n)
		}
	}
	if g, ok := htmlutil.Find(meta, "#genres"); ok {
		p.Genres = parseGenres(htmlutil.Text(g))
	}
}

func parseGenres(text string) []boxoffice.Genre {
	var out []boxoffice.Genre
	seen := make(map[boxoffice.Genre]bool)
	for _, label := range strings.Split(text, ",") {
		g, ok := boxoffice.ParseGenre(label)
		if !ok || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

func crew(doc *goquery.Document, proBase string) []boxoffice.Credit {
	var out []boxoffice.Credit
	for _, role := range boxoffice.CrewRoles {
		container, ok := htmlutil.Find(doc, crewContainers[role])
		if !ok {
			continue
		}
		seen := make(map[string]bool)
		container.Find("a[href*='/name/']").Each(func(_ int, a *goquery.Selection) {
			uri, ok := personURI(a, proBase)
			if !ok || seen[uri] {
				return
			}
			seen[uri] = true
			out = append(out, boxoffice.Credit{
				PersonName: personName(a),
				PersonURI:  uri,
				Role:       role,
			})
		})
	}
	return out
}

func cast(table *goquery.Selection, proBase string, limit int) []boxoffice.Credit {
	var out []boxoffice.Credit
	seen := make(map[string]bool)
	table.Find("tr[data-cast-listing-index]").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		a, ok := htmlutil.Find(row, "a[data-tab]")
		if !ok {
			return true
		}
		uri, ok := personURI(a, proBase)
		if !ok || seen[uri] {
			return true
		}
		seen[uri] = true
		c := boxoffice.Credit{
			PersonName: personName(a),
			PersonURI:  uri,
			Role:       boxoffice.RoleActor,
		}
		if img, ok := htmlutil.Find(row, "img[src]"); ok {
			if src := htmlutil.CanonicalImage(img.AttrOr("src", "")); src != "" {
				c.PortraitURI = &src
			}
		}
		if ch, ok := htmlutil.Find(row, "span.see_more_text_collapsed"); ok {
			if name := htmlutil.Text(ch); name != "" {
				c.CharacterName = &name
			}
		}
		out = append(out, c)
		return len(out) < limit
	})
	return out
}

func personURI(a *goquery.Selection, proBase string) (string, bool) {
	p, ok := htmlutil.HrefPath(a.AttrOr("href", ""))
	if !ok {
		return "", false
	}
	return htmlutil.JoinPath(proBase, p), true
}

func personName(a *goquery.Selection) string {
	if span, ok := htmlutil.Find(a, "span"); ok {
		if name := htmlutil.Text(span); name != "" {
			return name
		}
	}
	return htmlutil.Text(a)
}

func seasonCount(doc *goquery.Document) int {
	var maxSeason int64
	doc.Find("#season_selector a").Each(func(_ int, a *goquery.Selection) {
		if n, ok := htmlutil.FirstPositiveInt(htmlutil.Text(a)); ok && n > maxSeason {
			maxSeason = n
		}
	})
	return int(maxSeason)
}

func internationalNote(doc *goquery.Document) *string {
	var note *string
	doc.Find("#title_status a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		u, err := url.Parse(a.AttrOr("href", ""))
		if err != nil || u.Query().Get("ref_") != internationalReleaseRef {
			return true
		}
		text := htmlutil.Text(a)
		note = &text
		return false
	})
	return note
}
