package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/pipeline"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q: want table or json", format)
	}
}

func render(w io.Writer, format string, res pipeline.Result) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	}
	if res.Batch != nil {
		renderBatch(w, res.Batch)
	}
	if res.Title != nil {
		renderTitle(w, res.Title)
	}
	return nil
}

func renderBatch(w io.Writer, b *boxoffice.Batch) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(b.Title)
	t.AppendHeader(table.Row{"#", "LW", "Title", "Gross", "Theaters", "Total", "Weeks", "Distributor", "Runtime"})
	for _, r := range b.Releases {
		distributor, runtime := "", ""
		if r.Detail != nil {
			if r.Detail.Distributor != nil {
				distributor = r.Detail.Distributor.Label()
			}
			if r.Detail.RuntimeMinutes > 0 {
				runtime = fmt.Sprintf("%d min", r.Detail.RuntimeMinutes)
			}
		}
		t.AppendRow(table.Row{
			r.Rank,
			r.PreviousRank,
			r.Title,
			money(r.PeriodGross),
			r.TheaterCount,
			money(r.CumulativeGross),
			r.WeeksInRelease,
			distributor,
			runtime,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderTitle(w io.Writer, d *boxoffice.TitleDetail) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(d.DisplayTitle)
	t.AppendRow(table.Row{"Type", d.ContentType})
	if d.ReleaseDate != nil {
		t.AppendRow(table.Row{"Released", d.ReleaseDate.String()})
	}
	if d.Distributor != nil {
		t.AppendRow(table.Row{"Distributor", d.Distributor.Label()})
	}
	if d.Certificate != "" {
		t.AppendRow(table.Row{"Certificate", d.Certificate})
	}
	if d.RuntimeMinutes > 0 {
		t.AppendRow(table.Row{"Runtime", fmt.Sprintf("%d min", d.RuntimeMinutes)})
	}
	if d.SeasonCount > 0 {
		t.AppendRow(table.Row{"Seasons", d.SeasonCount})
	}
	if len(d.Genres) > 0 {
		labels := make([]string, 0, len(d.Genres))
		for _, g := range d.Genres {
			labels = append(labels, g.Label())
		}
		t.AppendRow(table.Row{"Genres", strings.Join(labels, ", ")})
	}
	appendMoney(t, "Opening", d.OpeningGross)
	appendMoney(t, "Budget", d.Budget)
	if d.Gross != nil {
		appendMoney(t, "Domestic", d.Gross.Domestic)
		appendMoney(t, "International", d.Gross.International)
		appendMoney(t, "Worldwide", d.Gross.Worldwide)
	}
	if d.InternationalReleaseNote != nil {
		t.AppendRow(table.Row{"International", *d.InternationalReleaseNote})
	}
	t.AppendRow(table.Row{"Pro", d.CanonicalProURI})
	t.AppendRow(table.Row{"Listing", d.CanonicalListingURI})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(d.Credits) == 0 {
		return
	}
	c := table.NewWriter()
	c.SetOutputMirror(w)
	c.AppendHeader(table.Row{"Role", "Name", "Character"})
	for _, cr := range d.Credits {
		character := ""
		if cr.CharacterName != nil {
			character = *cr.CharacterName
		}
		c.AppendRow(table.Row{cr.Role, cr.PersonName, character})
	}
	c.SetStyle(table.StyleRounded)
	c.Render()
}

func appendMoney(t table.Writer, label string, v *int64) {
	if v == nil {
		return
	}
	t.AppendRow(table.Row{label, money(*v)})
}

// money formats whole dollars with thousands separators.
func money(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := fmt.Sprintf("%d", v)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
