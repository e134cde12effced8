package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samvad-hq/infodk-scraper/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	ledgerBucket    = "published_articles"
	ledgerEntrySize = 16
)

// ledgerEntry is the value stored per article ID: when it was delivered and
// when the ledger may forget it. Both are unix seconds, big-endian.
type ledgerEntry struct {
	publishedAt time.Time
	expiresAt   time.Time
}

func (e ledgerEntry) encode() []byte {
	buf := make([]byte, ledgerEntrySize)
	binary.BigEndian.PutUint64(buf[:8], uint64(e.publishedAt.Unix()))
	binary.BigEndian.PutUint64(buf[8:], uint64(e.expiresAt.Unix()))
	return buf
}

func decodeEntry(raw []byte) (ledgerEntry, bool) {
	if len(raw) != ledgerEntrySize {
		return ledgerEntry{}, false
	}
	published := int64(binary.BigEndian.Uint64(raw[:8]))
	expires := int64(binary.BigEndian.Uint64(raw[8:]))
	if published <= 0 || expires < published {
		return ledgerEntry{}, false
	}
	return ledgerEntry{publishedAt: time.Unix(published, 0), expiresAt: time.Unix(expires, 0)}, true
}

// live reports whether the entry still counts as published at now.
// Undecodable values never do.
func live(raw []byte, now time.Time) bool {
	entry, ok := decodeEntry(raw)
	return ok && entry.expiresAt.After(now)
}

// boltStore is the bbolt-backed ledger. Expired entries are dropped lazily on
// lookup and in a full sweep at most once per cleanup interval.
type boltStore struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time

	sweepEvery time.Duration
	sweepMu    sync.Mutex
	lastSweep  time.Time
}

func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ledgerBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ledger bucket: %w", err)
	}

	return &boltStore{
		db:         db,
		ttl:        opts.EntryTTL,
		now:        time.Now,
		sweepEvery: opts.CleanupInterval,
		lastSweep:  time.Now(),
	}, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Published reports whether id was marked and its entry has not expired.
func (b *boltStore) Published(id domain.ArticleID) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}
	now := b.now()
	if err := b.sweepIfDue(now); err != nil {
		return false, err
	}

	key := []byte(id.String())
	var raw []byte
	err := b.view(func(bucket *bolt.Bucket) error {
		if v := bucket.Get(key); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return false, err
	}
	if live(raw, now) {
		return true, nil
	}

	return false, b.update(func(bucket *bolt.Bucket) error {
		return bucket.Delete(key)
	})
}

// MarkPublished records id as delivered now; marking again refreshes the expiry.
func (b *boltStore) MarkPublished(id domain.ArticleID) error {
	if b == nil || b.db == nil {
		return nil
	}
	now := b.now()
	if err := b.sweepIfDue(now); err != nil {
		return err
	}

	entry := ledgerEntry{publishedAt: now, expiresAt: now.Add(b.ttl)}
	return b.update(func(bucket *bolt.Bucket) error {
		return bucket.Put([]byte(id.String()), entry.encode())
	})
}

func (b *boltStore) sweepIfDue(now time.Time) error {
	b.sweepMu.Lock()
	defer b.sweepMu.Unlock()

	if now.Sub(b.lastSweep) < b.sweepEvery {
		return nil
	}
	if err := b.sweep(now); err != nil {
		return err
	}
	b.lastSweep = now
	return nil
}

// sweep deletes every expired or undecodable entry. Keys are collected first
// because bbolt forbids mutating a bucket while ForEach iterates it.
func (b *boltStore) sweep(now time.Time) error {
	return b.update(func(bucket *bolt.Bucket) error {
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if !live(v, now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *boltStore) view(fn func(*bolt.Bucket) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ledgerBucket))
		if bucket == nil {
			return fmt.Errorf("ledger bucket %q missing", ledgerBucket)
		}
		return fn(bucket)
	})
}

func (b *boltStore) update(fn func(*bolt.Bucket) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(ledgerBucket))
		if bucket == nil {
			return fmt.Errorf("ledger bucket %q missing", ledgerBucket)
		}
		return fn(bucket)
	})
}
