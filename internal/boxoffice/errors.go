package boxoffice

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes callers are expected to branch on.
var (
	ErrCacheUnavailable       = errors.New("cache directory unavailable")
	ErrFetchFailed            = errors.New("fetch failed")
	ErrRequiredElementMissing = errors.New("required element missing")
	ErrInvalidRequest         = errors.New("invalid request")
)

// FetchError reports a transport-level failure for one URL.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFetchFailed) match any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// ElementError reports that a structural anchor a page must carry was absent.
type ElementError struct {
	Page    string
	Element string
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s page: %s not found", e.Page, e.Element)
}

// Is lets errors.Is(err, ErrRequiredElementMissing) match any ElementError.
func (e *ElementError) Is(target error) bool { return target == ErrRequiredElementMissing }

// Missing builds an ElementError.
func Missing(page, element string) error {
	return &ElementError{Page: page, Element: element}
}
