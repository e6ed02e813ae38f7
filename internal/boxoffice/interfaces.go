package boxoffice

import "context"

// Variant separates detail-service documents from listing-site documents in
// the page cache, since both can share a path shape.
type Variant int

// Cache variants.
const (
	VariantListing Variant = iota
	VariantPro
)

func (v Variant) String() string {
	if v == VariantPro {
		return "pro"
	}
	return "listing"
}

// Fetcher performs one blocking GET and returns the body.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// PageSource returns the bytes for a URL, from cache or network.
type PageSource interface {
	Get(ctx context.Context, rawURL string, variant Variant) ([]byte, error)
}
