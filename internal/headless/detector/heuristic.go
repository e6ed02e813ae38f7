// Package detector decides when a plainly fetched page needs a headless render.
package detector

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMinBytes is the body size below which script density is considered.
const DefaultMinBytes = 2048

// DefaultContentSelector matches the tabular content every box office page
// carries once server-rendered.
const DefaultContentSelector = "table"

// Heuristic implements a handful of rule-based promotions.
type Heuristic struct {
	MinBytes int
	// ContentSelector, when set, decides on its own: a document that matches
	// it is kept, one that does not is promoted.
	ContentSelector string
}

// NewHeuristic creates a detector. A zero minBytes uses DefaultMinBytes.
func NewHeuristic(minBytes int, contentSelector string) *Heuristic {
	if minBytes <= 0 {
		minBytes = DefaultMinBytes
	}
	return &Heuristic{MinBytes: minBytes, ContentSelector: contentSelector}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte(`id="root"`),
	[]byte(`id="app"`),
	[]byte("data-reactroot"),
}

// ShouldPromote reports whether body looks like an unrendered application
// shell rather than finished markup.
func (h *Heuristic) ShouldPromote(body []byte) bool {
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	if h.ContentSelector != "" {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return true
		}
		return doc.Find(h.ContentSelector).Length() == 0
	}
	if len(body) < h.MinBytes && scriptDensityHigh(body) {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}

// scriptDensityHigh reports whether <script> elements cover at least a quarter
// of the document. Unterminated tags run to the end of the body.
func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	covered := 0
	for pos := 0; pos < total; {
		rel := strings.Index(lower[pos:], openTag)
		if rel == -1 {
			break
		}
		start := pos + rel
		end := total
		if gt := strings.IndexByte(lower[start:], '>'); gt != -1 {
			contentStart := start + gt + 1
			if closeAt := strings.Index(lower[contentStart:], closeTag); closeAt != -1 {
				end = contentStart + closeAt + len(closeTag)
			}
		}
		covered += end - start
		pos = end
	}
	return covered*100/total >= 25
}
