package engine

import (
	"context"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/model"
)

func (e *Engine) deckBackend() (deckStore, error) {
	if e.decks == nil {
		return nil, internalErrors.NewNotSupportedError("decks", e.settings.Storage.Backend)
	}
	return e.decks, nil
}

// SaveDeck creates the deck when its ID is zero and replaces it otherwise.
func (e *Engine) SaveDeck(ctx context.Context, deck *model.Deck) (int64, error) {
	d, err := e.deckBackend()
	if err != nil {
		return 0, err
	}
	id, err := d.SaveDeck(ctx, deck)
	if err != nil {
		return 0, wrapStoreError("save deck", err)
	}
	return id, nil
}

// GetDeck returns a deck with card details attached.
func (e *Engine) GetDeck(ctx context.Context, id int64) (*model.Deck, error) {
	d, err := e.deckBackend()
	if err != nil {
		return nil, err
	}
	deck, err := d.GetDeck(ctx, id)
	if err != nil {
		return nil, wrapStoreError("get deck", err)
	}
	return deck, nil
}

// ListDecks lists deck summaries, most recently updated first.
func (e *Engine) ListDecks(ctx context.Context) ([]model.DeckSummary, error) {
	d, err := e.deckBackend()
	if err != nil {
		return nil, err
	}
	decks, err := d.ListDecks(ctx)
	if err != nil {
		return nil, wrapStoreError("list decks", err)
	}
	return decks, nil
}

// DeleteDeck removes a deck and its lines.
func (e *Engine) DeleteDeck(ctx context.Context, id int64) error {
	d, err := e.deckBackend()
	if err != nil {
		return err
	}
	if err := d.DeleteDeck(ctx, id); err != nil {
		return wrapStoreError("delete deck", err)
	}
	return nil
}
