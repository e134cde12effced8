package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/samvad-hq/infodk-scraper/internal/config"
	"github.com/samvad-hq/infodk-scraper/internal/domain"
	"github.com/samvad-hq/infodk-scraper/internal/fetcher"
	"github.com/samvad-hq/infodk-scraper/internal/logger"
	"github.com/samvad-hq/infodk-scraper/internal/storage"
	"github.com/samvad-hq/infodk-scraper/pkg/httpclient"
	"github.com/samvad-hq/infodk-scraper/pkg/publishers"
)

// ArticleSource resolves identifiers into records.
type ArticleSource interface {
	URLFor(id domain.ArticleID) string
	ArticleFromID(ctx context.Context, id domain.ArticleID) (domain.ArticleRecord, error)
}

// EventPublisher delivers events downstream and reports how many sinks accepted each one.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Ledger remembers which articles were already delivered.
type Ledger interface {
	Published(id domain.ArticleID) (bool, error)
	MarkPublished(id domain.ArticleID) error
}

// Summary counts the outcome of one Run.
type Summary struct {
	Published int `json:"published"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Harvester extracts a batch of articles one at a time and publishes each
// record to the configured sinks, skipping articles already in the ledger.
type Harvester struct {
	source  ArticleSource
	pub     EventPublisher
	ledger  Ledger
	name    string
	delay   time.Duration
	log     logger.Logger
	closers []func() error
}

// NewAPIFromConfig builds the article API with the configured HTTP client and base address.
func NewAPIFromConfig(cfg *config.Config, log logger.Logger) *API {
	client := httpclient.NewRestyClient(httpclient.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})
	return NewAPI(fetcher.New(client, cfg.BaseURL, log), log)
}

// NewHarvester builds a harvester runtime from config: publishers file, ledger and article API.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultBuilders(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)

	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		EntryTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	h := newHarvester(NewAPIFromConfig(cfg, log), fanout, store, log)
	h.name = sourceName(cfg.BaseURL)
	h.delay = cfg.RequestDelay
	h.closers = []func() error{fanout.Close, store.Close}
	return h, nil
}

func newHarvester(source ArticleSource, pub EventPublisher, ledger Ledger, log logger.Logger) *Harvester {
	return &Harvester{
		source: source,
		pub:    pub,
		ledger: ledger,
		log:    logger.Ensure(log),
	}
}

// sourceName is the host events are attributed to.
func sourceName(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return baseURL
}

// Run processes ids strictly in order. A failing article is logged and
// reported in the joined error without stopping the rest of the batch.
func (h *Harvester) Run(ctx context.Context, ids []domain.ArticleID) (Summary, error) {
	var summary Summary
	if h == nil || h.source == nil || h.pub == nil {
		return summary, fmt.Errorf("harvester is not initialized")
	}
	if len(ids) == 0 {
		return summary, fmt.Errorf("no article ids given")
	}

	start := time.Now()
	var errs []error
	fetched := false

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if h.alreadyPublished(id) {
			summary.Skipped++
			continue
		}

		if fetched && h.delay > 0 && !sleep(ctx, h.delay) {
			errs = append(errs, ctx.Err())
			break
		}
		fetched = true

		if err := h.processArticle(ctx, id); err != nil {
			summary.Failed++
			errs = append(errs, err)
			h.log.ErrorObj("article publish failed", "article_error", map[string]any{
				"article_id": id.String(),
				"error":      err.Error(),
			})
			continue
		}
		summary.Published++
	}

	h.log.InfoObj("harvest completed", "harvest_meta", map[string]any{
		"requested":  len(ids),
		"published":  summary.Published,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return summary, errors.Join(errs...)
}

// alreadyPublished consults the ledger; lookup errors are logged and the
// article is processed anyway.
func (h *Harvester) alreadyPublished(id domain.ArticleID) bool {
	if h.ledger == nil {
		return false
	}
	seen, err := h.ledger.Published(id)
	if err != nil {
		h.log.WarnObj("ledger lookup failed", "ledger_error", map[string]any{
			"article_id": id.String(),
			"error":      err.Error(),
		})
		return false
	}
	return seen
}

func (h *Harvester) processArticle(ctx context.Context, id domain.ArticleID) error {
	rec, err := h.source.ArticleFromID(ctx, id)
	if err != nil {
		return fmt.Errorf("article %s: %w", id, err)
	}

	evt := publishers.NewEvent(h.name, id, h.source.URLFor(id), rec)
	delivered, pubErr := h.pub.Publish(ctx, evt)
	if delivered == 0 {
		if pubErr == nil {
			pubErr = fmt.Errorf("no publisher accepted the event")
		}
		return fmt.Errorf("publish article %s: %w", id, pubErr)
	}
	if pubErr != nil {
		h.log.WarnObj("article partially published", "publish_error", map[string]any{
			"article_id": id.String(),
			"delivered":  delivered,
			"error":      pubErr.Error(),
		})
	}

	if h.ledger != nil {
		if err := h.ledger.MarkPublished(id); err != nil {
			return fmt.Errorf("mark article %s published: %w", id, err)
		}
	}
	return nil
}

// Close releases publishers and the ledger.
func (h *Harvester) Close() error {
	if h == nil {
		return nil
	}
	var errs []error
	for _, c := range h.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
