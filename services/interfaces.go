package services

import (
	"context"

	"github.com/gcbaptista/card-catalog/model"
)

//go:generate mockgen -destination=mocks/mock_interfaces.go -package=mocks github.com/gcbaptista/card-catalog/services CatalogManager,DeckManager,JobManager

// FacetSelection is the raw selection for one categorical facet.
// Mode is one of anyOf, allOf, noneOf, exactSetOf (legacy names accepted);
// anything else is read as anyOf.
type FacetSelection struct {
	Values []string `json:"values"`
	Mode   string   `json:"mode,omitempty"`
}

// RangeBound is an inclusive numeric range. A nil bound is open.
type RangeBound struct {
	Low  *int `json:"low,omitempty"`
	High *int `json:"high,omitempty"`
}

// SearchRequest is the loosely shaped search request as received from callers.
// Every field is optional.
type SearchRequest struct {
	Query     string `json:"query"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
	SortKey   string `json:"sortKey"`
	Ascending *bool  `json:"ascending,omitempty"`

	Series   *FacetSelection `json:"series,omitempty"`
	Category *FacetSelection `json:"category,omitempty"`
	Rarity   *FacetSelection `json:"rarity,omitempty"`
	Region   *FacetSelection `json:"region,omitempty"`
	Tag      *FacetSelection `json:"tag,omitempty"`
	Color    *FacetSelection `json:"color,omitempty"`
	Keyword  *FacetSelection `json:"keyword,omitempty"`

	Power        *RangeBound `json:"power,omitempty"`
	Energy       *RangeBound `json:"energy,omitempty"`
	ReturnEnergy *RangeBound `json:"returnEnergy,omitempty"`
}

// SearchResult is one page of matching cards plus the size of the full match set.
type SearchResult struct {
	Rows     []model.Card `json:"rows"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Took     int64        `json:"took"`    // milliseconds
	QueryId  string       `json:"queryId"` // unique UUID for this search query
}

// NamedSearchRequest is one search of a multi-search batch.
type NamedSearchRequest struct {
	Name string `json:"name"`
	SearchRequest
}

// MultiSearchRequest runs several searches in one call.
type MultiSearchRequest struct {
	Queries []NamedSearchRequest `json:"queries"`
}

// MultiSearchResult holds the result of every named search.
type MultiSearchResult struct {
	Results          map[string]SearchResult `json:"results"`
	TotalQueries     int                     `json:"total_queries"`
	ProcessingTimeMs float64                 `json:"processing_time_ms"`
}

// FacetListing holds the legal values of every categorical facet.
type FacetListing struct {
	Series  []string `json:"series"`
	Color   []string `json:"color"`
	Rarity  []string `json:"rarity"`
	Type    []string `json:"type"`
	Tag     []string `json:"tag"`
	Region  []string `json:"region"`
	Keyword []string `json:"keyword"`
}

// RangeListing holds the observed [low, high] of every numeric facet.
type RangeListing struct {
	MightLimit  [2]int `json:"mightLimit"`
	EnergyLimit [2]int `json:"energyLimit"`
	PowerLimit  [2]int `json:"powerLimit"`
}

// ImportReport summarizes a per-record import.
type ImportReport struct {
	Total    int             `json:"total"`
	Upserted int             `json:"upserted"`
	Failed   []ImportFailure `json:"failed,omitempty"`
}

// ImportFailure names a record that could not be written.
type ImportFailure struct {
	Position int    `json:"position"`
	CardNo   string `json:"card_no"`
	Error    string `json:"error"`
}

// Searcher runs faceted searches over the catalog
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (SearchResult, error)
	MultiSearch(ctx context.Context, req MultiSearchRequest) (*MultiSearchResult, error)
}

// FacetLister lists the values a user can filter on
type FacetLister interface {
	ListFacets(ctx context.Context) (FacetListing, error)
	ListRanges(ctx context.Context) (RangeListing, error)
}

// CardReader reads cards by primary key
type CardReader interface {
	GetCard(ctx context.Context, cardNo string) (*model.Card, error)
	LookupCards(ctx context.Context, cardNos []string) ([]model.Card, error)
	CountCards(ctx context.Context) (int, error)
}

// CatalogManager is the surface the API and CLI drive
type CatalogManager interface {
	Searcher
	FacetLister
	CardReader

	// ImportCardsAsync upserts cards in the background and returns the job ID
	ImportCardsAsync(cards []model.Card) (string, error)
	// SyncAsync checks the remote catalog version and imports the feed when it changed
	SyncAsync(force bool) (string, error)
	// SnapshotAsync writes a copy of the catalog to the configured snapshot path
	SnapshotAsync() (string, error)
}

// DeckManager persists decks
type DeckManager interface {
	SaveDeck(ctx context.Context, deck *model.Deck) (int64, error)
	GetDeck(ctx context.Context, id int64) (*model.Deck, error)
	ListDecks(ctx context.Context) ([]model.DeckSummary, error)
	DeleteDeck(ctx context.Context, id int64) error
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(target string, status *model.JobStatus) []*model.Job
	CancelJob(jobID string) error
	JobStats() model.JobStats
}
