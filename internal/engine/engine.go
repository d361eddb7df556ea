// Package engine is the composition root of the card catalog. It owns the
// record store and wires the search, facet, ingest and job services over it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gcbaptista/card-catalog/config"
	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/internal/facets"
	"github.com/gcbaptista/card-catalog/internal/ingest"
	"github.com/gcbaptista/card-catalog/internal/jobs"
	"github.com/gcbaptista/card-catalog/internal/metrics"
	"github.com/gcbaptista/card-catalog/internal/query"
	"github.com/gcbaptista/card-catalog/internal/search"
	"github.com/gcbaptista/card-catalog/model"
	"github.com/gcbaptista/card-catalog/services"
	"github.com/gcbaptista/card-catalog/store"
	"github.com/gcbaptista/card-catalog/store/sqlite"
)

// catalogTarget is the job target of every catalog-wide job.
const catalogTarget = "cards"

// deckStore is implemented by backends that persist decks.
type deckStore interface {
	SaveDeck(ctx context.Context, deck *model.Deck) (int64, error)
	GetDeck(ctx context.Context, id int64) (*model.Deck, error)
	ListDecks(ctx context.Context) ([]model.DeckSummary, error)
	DeleteDeck(ctx context.Context, id int64) error
}

// Engine serves the catalog over one record store.
// It implements services.CatalogManager, services.DeckManager and
// services.JobManager.
type Engine struct {
	settings config.Settings
	logger   *zap.Logger
	recorder *metrics.Recorder

	store  store.CardStore
	decks  deckStore // nil when the backend has no deck tables
	memory *store.MemoryStore

	searcher   *search.Service
	catalog    *facets.Catalog
	importer   *ingest.Importer
	syncer     *ingest.Syncer
	jobManager *jobs.Manager

	syncMu     sync.Mutex
	activeSync string // ID of the latest sync job
}

var (
	_ services.CatalogManager = (*Engine)(nil)
	_ services.DeckManager    = (*Engine)(nil)
	_ services.JobManager     = (*Engine)(nil)
)

// Option customizes an Engine.
type Option func(*options)

type options struct {
	recorder *metrics.Recorder
	feed     ingest.Feed
	store    store.CardStore
}

// WithRecorder sets the metrics recorder. Without it the engine creates its own.
func WithRecorder(r *metrics.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithFeed replaces the HTTP card feed used by sync.
func WithFeed(f ingest.Feed) Option {
	return func(o *options) { o.feed = f }
}

// WithStore uses s instead of opening the configured backend. The engine
// takes ownership and closes it.
func WithStore(s store.CardStore) Option {
	return func(o *options) { o.store = s }
}

// New opens the configured store and starts the job manager. Call Close to
// release both.
func New(settings config.Settings, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.recorder == nil {
		o.recorder = metrics.NewRecorder()
	}

	e := &Engine{
		settings: settings,
		logger:   logger,
		recorder: o.recorder,
	}

	if err := e.openStore(o.store); err != nil {
		return nil, err
	}

	limits := query.Limits{
		DefaultPageSize:    settings.Search.DefaultPageSize,
		MaxPageSize:        settings.Search.MaxPageSize,
		MaxSelectionValues: settings.Search.MaxSelectionValues,
		MaxQueryLength:     settings.Search.MaxQueryLength,
	}
	searcher, err := search.NewService(e.store, limits, logger.Named("search"), e.recorder)
	if err != nil {
		_ = e.store.Close()
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}
	e.searcher = searcher
	e.catalog = facets.NewCatalog(e.store, logger.Named("facets"))
	e.importer = ingest.NewImporter(e.store, logger.Named("import"), e.recorder)

	feed := o.feed
	if feed == nil {
		feed = ingest.NewHTTPFeed(settings.Sync, logger.Named("feed"))
	}
	e.syncer = ingest.NewSyncer(feed, e.store, e.importer, settings.Sync.VersionName, logger.Named("sync"))

	e.jobManager = jobs.NewManager(settings.Jobs.MaxWorkers, settings.Jobs.Retention, logger.Named("jobs"))
	e.jobManager.Start()

	return e, nil
}

func (e *Engine) openStore(injected store.CardStore) error {
	if injected != nil {
		e.store = injected
		if d, ok := injected.(deckStore); ok {
			e.decks = d
		}
		if m, ok := injected.(*store.MemoryStore); ok {
			e.memory = m
		}
		return nil
	}

	switch e.settings.Storage.Backend {
	case config.BackendSQLite:
		s, err := sqlite.NewStore(e.settings.Storage.Path, e.logger)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		e.store = s
		e.decks = s
		e.logger.Info("opened sqlite store", zap.String("path", e.settings.Storage.Path))
	case config.BackendMemory:
		m := store.NewMemoryStore()
		e.store = m
		e.memory = m
		e.loadSnapshot()
	default:
		return internalErrors.NewValidationError("storage.backend", fmt.Sprintf("unknown backend '%s'", e.settings.Storage.Backend))
	}
	return nil
}

// Close stops running jobs, saves the memory snapshot when one is configured
// and closes the store.
func (e *Engine) Close() error {
	e.jobManager.Stop()

	var errs []error
	if e.memory != nil && e.settings.Storage.SnapshotPath != "" {
		if err := e.memory.SaveSnapshot(e.settings.Storage.SnapshotPath); err != nil {
			errs = append(errs, fmt.Errorf("save snapshot: %w", err))
		}
	}
	if err := e.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}

// Settings returns the settings the engine was built with.
func (e *Engine) Settings() config.Settings {
	return e.settings
}

// Recorder returns the metrics recorder.
func (e *Engine) Recorder() *metrics.Recorder {
	return e.recorder
}

// Search runs one faceted search.
func (e *Engine) Search(ctx context.Context, req services.SearchRequest) (services.SearchResult, error) {
	return e.searcher.Search(ctx, req)
}

// MultiSearch runs several named searches concurrently.
func (e *Engine) MultiSearch(ctx context.Context, req services.MultiSearchRequest) (*services.MultiSearchResult, error) {
	return e.searcher.MultiSearch(ctx, req)
}

// ListFacets lists the legal values of every categorical facet.
func (e *Engine) ListFacets(ctx context.Context) (services.FacetListing, error) {
	e.recorder.ObserveFacetListing()
	listing, err := e.catalog.Facets(ctx)
	if err != nil {
		return services.FacetListing{}, wrapStoreError("list facets", err)
	}
	return listing, nil
}

// ListRanges lists the observed bounds of every numeric facet.
func (e *Engine) ListRanges(ctx context.Context) (services.RangeListing, error) {
	e.recorder.ObserveFacetListing()
	listing, err := e.catalog.Ranges(ctx)
	if err != nil {
		return services.RangeListing{}, wrapStoreError("list ranges", err)
	}
	return listing, nil
}

// GetCard returns one card by number.
func (e *Engine) GetCard(ctx context.Context, cardNo string) (*model.Card, error) {
	card, err := e.store.GetCard(ctx, cardNo)
	if err != nil {
		return nil, wrapStoreError("get card", err)
	}
	return card, nil
}

// LookupCards returns the known cards among cardNos, in request order.
func (e *Engine) LookupCards(ctx context.Context, cardNos []string) ([]model.Card, error) {
	cards, err := e.store.LookupCards(ctx, cardNos)
	if err != nil {
		return nil, wrapStoreError("lookup cards", err)
	}
	return cards, nil
}

// CountCards returns the number of cards in the catalog.
func (e *Engine) CountCards(ctx context.Context) (int, error) {
	n, err := e.store.CountCards(ctx, query.True)
	if err != nil {
		return 0, wrapStoreError("count cards", err)
	}
	return n, nil
}

// Import upserts cards synchronously.
func (e *Engine) Import(ctx context.Context, cards []model.Card, progress ingest.ProgressFunc) (services.ImportReport, error) {
	report, err := e.importer.Import(ctx, cards, progress)
	if err == nil {
		e.afterWrite()
	}
	return report, err
}

// ImportFeed decodes a card feed payload and upserts its records
// synchronously. Undecodable records are reported as failures.
func (e *Engine) ImportFeed(ctx context.Context, payload []byte, progress ingest.ProgressFunc) (services.ImportReport, error) {
	report, err := e.importer.ImportFeed(ctx, payload, progress)
	if err == nil {
		e.afterWrite()
	}
	return report, err
}

// Sync runs one synchronous version check and import.
func (e *Engine) Sync(ctx context.Context, force bool, progress ingest.ProgressFunc) (ingest.SyncReport, error) {
	report, err := e.syncer.Sync(ctx, force, progress)
	if err == nil && report.Import != nil {
		e.afterWrite()
	}
	return report, err
}

// wrapStoreError passes typed catalog errors through and marks anything else
// as a store failure.
func wrapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, internalErrors.ErrCardNotFound),
		errors.Is(err, internalErrors.ErrDeckNotFound),
		errors.Is(err, internalErrors.ErrInvalidInput),
		errors.Is(err, internalErrors.ErrStoreUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return internalErrors.NewStoreError(op, err)
}
