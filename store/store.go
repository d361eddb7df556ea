// Package store defines the record store contract and its in-memory implementation.
package store

import (
	"context"

	"github.com/gcbaptista/card-catalog/internal/facets"
	"github.com/gcbaptista/card-catalog/internal/query"
	"github.com/gcbaptista/card-catalog/model"
)

// CardStore is everything the catalog needs from a record store. Reads must
// see a self-consistent view while writes are in progress.
type CardStore interface {
	query.RecordStore
	facets.Source

	// GetCard returns the card with the given number or a CardNotFoundError.
	GetCard(ctx context.Context, cardNo string) (*model.Card, error)
	// LookupCards returns the known cards among cardNos, in the order given.
	LookupCards(ctx context.Context, cardNos []string) ([]model.Card, error)
	// UpsertCard normalizes card and inserts or replaces it by card number.
	UpsertCard(ctx context.Context, card model.Card) error

	// GetVersion returns the recorded version of a named dataset.
	GetVersion(ctx context.Context, name string) (version string, ok bool, err error)
	// SetVersion records the version of a named dataset.
	SetVersion(ctx context.Context, name, version string) error

	Close() error
}
