package services

import (
	"context"
	"fmt"
	"time"

	"law_office_desk/config"
	"law_office_desk/services/access"
	"law_office_desk/services/drafting"
	"law_office_desk/services/export"
	"law_office_desk/services/judicial"
	"law_office_desk/services/sheets"
	"law_office_desk/services/status"

	"github.com/rs/zerolog/log"
)

// CourtSystem is the court whose public docket is queried for movements.
const CourtSystem = "TJSP"

// Backends bundles the clients shared by the web server and the CLI.
type Backends struct {
	Store      *sheets.Gateway
	Access     *access.Service
	Drafting   *drafting.Client
	Court      judicial.Provider
	Exporter   *export.Exporter
	Archive    Archive
	Classifier *status.Classifier
	Mailer     *Mailer

	closers []func()
}

// NewBackends builds every external client from configuration. A Valkey cache
// that cannot be reached is replaced by the in-process cache.
func NewBackends(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{Classifier: status.NewClassifier()}

	opts := sheets.Options{
		URL:      cfg.StoreURL,
		Timeout:  cfg.StoreTimeout,
		CacheTTL: storeCacheTTL(cfg.StoreCacheTTL),
	}
	if cfg.ValkeyAddr != "" {
		cache, err := sheets.NewValkeyCache(cfg.ValkeyAddr)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.ValkeyAddr).Msg("Valkey unavailable, using in-process cache")
		} else {
			opts.Cache = cache
			b.closers = append(b.closers, cache.Close)
			log.Info().Str("addr", cfg.ValkeyAddr).Msg("Store cache on Valkey")
		}
	}
	b.Store = sheets.New(opts)
	b.Access = access.NewService(b.Store)

	b.Drafting = drafting.New(drafting.Options{
		APIKey:   cfg.DraftingAPIKey,
		Endpoint: cfg.DraftingEndpoint,
		Model:    cfg.DraftingModel,
		Timeout:  cfg.DraftingTimeout,
		Retry: drafting.RetryPolicy{
			MaxAttempts:     cfg.DraftingMaxAttempts,
			Delay:           cfg.DraftingRetryDelay,
			RetryIncomplete: cfg.DraftingRetryIncomplete,
		},
	})

	court, err := judicial.GetProvider(CourtSystem, judicial.Options{
		BaseURL: cfg.CourtBaseURL,
		Timeout: cfg.CourtTimeout,
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("court provider: %w", err)
	}
	b.Court = court

	b.Exporter = export.New(NewChromePDF(cfg.ChromePath))
	b.Archive = NewArchive(ctx, cfg)
	b.Mailer = NewMailer(cfg)
	return b, nil
}

// storeCacheTTL maps STORE_CACHE_TTL onto gateway options; zero turns caching off.
func storeCacheTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return sheets.NoCache
	}
	return ttl
}

// Close releases connections held by the backends.
func (b *Backends) Close() {
	for _, c := range b.closers {
		c()
	}
	b.closers = nil
}
