// Package htmlutil holds the small text, number and URL helpers shared by the
// listing and detail extractors.
package htmlutil

import (
	"bytes"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document parses raw markup into a goquery document.
func Document(raw []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(raw))
}

// Find returns the first match of selector under s, and whether one existed.
// Callers decide whether absence is fatal.
func Find(s interface{ Find(string) *goquery.Selection }, selector string) (*goquery.Selection, bool) {
	sel := s.Find(selector).First()
	return sel, sel.Length() > 0
}

// NormSpace collapses all whitespace runs to single spaces and trims.
func NormSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

// Text returns the normalized text of a selection.
func Text(s *goquery.Selection) string { return NormSpace(s.Text()) }

// OwnText returns the normalized text of the direct text-node children of the
// first node in s, ignoring nested elements.
func OwnText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for c := s.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
	}
	return NormSpace(b.String())
}

// TrailingText returns the last non-blank direct text node of the first node
// in s.
func TrailingText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	for c := s.Nodes[0].LastChild; c != nil; c = c.PrevSibling {
		if c.Type != html.TextNode {
			continue
		}
		if t := NormSpace(c.Data); t != "" {
			return t
		}
	}
	return ""
}

func cleanNumber(s string) string {
	s = strings.NewReplacer("$", "", ",", "").Replace(NormSpace(s))
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return s
}

// Amount parses currency or count text such as "$10,000,000" or "3,500 theaters".
// Unparseable or non-positive input yields 0.
func Amount(s string) int64 {
	n, err := strconv.ParseInt(cleanNumber(s), 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// OptionalAmount is Amount for optional fields: unparseable or negative input
// yields nil.
func OptionalAmount(s string) *int64 {
	n, err := strconv.ParseInt(cleanNumber(s), 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// Int is Amount narrowed to int.
func Int(s string) int { return int(Amount(s)) }

// FirstPositiveInt returns the first whitespace-separated token that parses as
// a positive integer once thousands separators are removed.
func FirstPositiveInt(s string) (int64, bool) {
	for _, tok := range strings.Fields(s) {
		n, err := strconv.ParseInt(strings.ReplaceAll(tok, ",", ""), 10, 64)
		if err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// HrefPath returns the path of href when it carries no host, and ok=false for
// absolute links or unparseable input.
func HrefPath(href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Host != "" || u.Path == "" {
		return "", false
	}
	return u.Path, true
}

// JoinPath joins a site base URL and a path, dropping any query or fragment
// on the path.
func JoinPath(base, p string) string {
	u, err := url.Parse(base)
	if err != nil {
		return strings.TrimRight(base, "/") + p
	}
	if pu, err := url.Parse(p); err == nil {
		p = pu.Path
	}
	u.Path = p
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// CanonicalImage strips the CDN sizing suffix from an image URL:
// ".../MV5Bxyz@._V1_UX148_CR0,0,148,216_AL_.jpg" becomes ".../MV5Bxyz@.jpg".
// Non-jpg assets are returned unchanged.
func CanonicalImage(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	name := path.Base(u.Path)
	if !strings.HasSuffix(strings.ToLower(name), ".jpg") {
		return src
	}
	base := name[:len(name)-len(".jpg")]
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	u.Path = path.Join(path.Dir(u.Path), base+".jpg")
	return u.String()
}
