// Package cache implements the disk-backed page cache. A page is fetched at
// most once per cache key; afterwards its bytes are served from the file
// forever. There is no expiry or revalidation.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/metrics"
)

const (
	fileExt = ".html"
	proKey  = "pro."
)

// strippedTokens are removed from the URL path when deriving a key.
var strippedTokens = []string{"/", "weekend", "release", "title"}

// Config captures the cache location.
type Config struct {
	// Root is the directory holding cached documents.
	Root string `mapstructure:"root"`
}

// Store is a PageCache backed by one flat directory.
type Store struct {
	root    string
	fetcher boxoffice.Fetcher
	logger  *zap.Logger
	group   singleflight.Group
}

// New prepares the cache root, creating it and any parents when missing.
// A root that cannot be created or is not a directory yields an error
// wrapping boxoffice.ErrCacheUnavailable.
func New(cfg Config, fetcher boxoffice.Fetcher, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fetcher == nil {
		return nil, fmt.Errorf("cache: fetcher is required")
	}
	root := filepath.Clean(strings.TrimSpace(cfg.Root))
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, fmt.Errorf("%w: root is required", boxoffice.ErrCacheUnavailable)
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", boxoffice.ErrCacheUnavailable, root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", boxoffice.ErrCacheUnavailable, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", boxoffice.ErrCacheUnavailable, root)
	}
	return &Store{root: root, fetcher: fetcher, logger: logger}, nil
}

// Root returns the cache directory.
func (s *Store) Root() string { return s.root }

// Key derives the cache key for a URL. Only the path participates; the
// query string and host are ignored.
func Key(rawURL string, variant boxoffice.Variant) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	for _, tok := range strippedTokens {
		p = strings.ReplaceAll(p, tok, "")
	}
	key := sanitize(p)
	if key == "" {
		key = "index"
	}
	if variant == boxoffice.VariantPro {
		key = proKey + key
	}
	return key
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// Path returns the file a URL is cached in.
func (s *Store) Path(rawURL string, variant boxoffice.Variant) string {
	return filepath.Join(s.root, Key(rawURL, variant)+fileExt)
}

// Get returns the cached bytes for rawURL, fetching and persisting them on a
// miss. After a fetch the file is read back, so callers always observe what
// is on disk. Concurrent calls for the same key share one fetch.
func (s *Store) Get(ctx context.Context, rawURL string, variant boxoffice.Variant) ([]byte, error) {
	path := s.Path(rawURL, variant)
	if b, ok, err := read(path); err != nil {
		return nil, err
	} else if ok {
		metrics.ObserveCacheLookup("hit")
		s.logger.Debug("cache hit", zap.String("url", rawURL), zap.String("path", path))
		return b, nil
	}

	v, err, shared := s.group.Do(path, func() (any, error) {
		if b, ok, err := read(path); err != nil || ok {
			return b, err
		}
		metrics.ObserveCacheLookup("miss")
		s.logger.Debug("cache miss", zap.String("url", rawURL), zap.String("path", path))
		body, err := s.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("cache fill %s: %w", rawURL, err)
		}
		if err := writeAtomic(s.root, filepath.Base(path), body); err != nil {
			return nil, fmt.Errorf("cache write %s: %w", path, err)
		}
		b, _, err := read(path)
		return b, err
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("cache fill shared", zap.String("url", rawURL))
	}
	b, _ := v.([]byte)
	return b, nil
}

func read(path string) ([]byte, bool, error) {
	// #nosec G304 -- path is built from a sanitized key under the cache root.
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache read %s: %w", path, err)
	}
	return b, true, nil
}

// writeAtomic publishes data under dir/name through a temp file and rename,
// so readers never see a partially written page.
func writeAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
