package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/infodk-scraper/internal/domain"
)

// Package storage keeps the ledger of article IDs already delivered to
// publishers. Page content is never stored.

// Store tracks published article IDs.
type Store interface {
	Close() error
	Published(id domain.ArticleID) (bool, error)
	MarkPublished(id domain.ArticleID) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	TypeBBolt = "bbolt"
	TypeNone  = "none"

	defaultEntryTTL        = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                             { return nil }
func (noopStore) Published(domain.ArticleID) (bool, error) { return false, nil }
func (noopStore) MarkPublished(domain.ArticleID) error     { return nil }
