package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/internal/facets"
	"github.com/gcbaptista/card-catalog/internal/persistence"
	"github.com/gcbaptista/card-catalog/internal/query"
	"github.com/gcbaptista/card-catalog/model"
)

// MemoryStore keeps the catalog in a map guarded by a RWMutex. Every read
// holds the read lock for its whole scan, so it sees one consistent version
// of the catalog.
type MemoryStore struct {
	mu       sync.RWMutex
	cards    map[string]model.Card // card number to card
	versions map[string]string     // dataset name to version
}

var _ CardStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cards:    make(map[string]model.Card),
		versions: make(map[string]string),
	}
}

// gobMemoryStoreData is a helper struct for Gob encoding/decoding MemoryStore data.
// It excludes the mutex.
type gobMemoryStoreData struct {
	Cards    map[string]model.Card
	Versions map[string]string
}

// GobEncode implements the gob.GobEncoder interface for MemoryStore.
func (s *MemoryStore) GobEncode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	data := gobMemoryStoreData{Cards: s.cards, Versions: s.versions}
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("failed to gob encode card store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for MemoryStore.
func (s *MemoryStore) GobDecode(data []byte) error {
	var decoded gobMemoryStoreData
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to gob decode card store data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards = decoded.Cards
	s.versions = decoded.Versions
	// Ensure maps are initialized if they were nil after decoding
	if s.cards == nil {
		s.cards = make(map[string]model.Card)
	}
	if s.versions == nil {
		s.versions = make(map[string]string)
	}
	return nil
}

// SaveSnapshot writes the store to path.
func (s *MemoryStore) SaveSnapshot(path string) error {
	return persistence.SaveGob(path, s)
}

// LoadSnapshot replaces the store content with the snapshot at path. A
// missing file leaves the store untouched and returns os.ErrNotExist.
func (s *MemoryStore) LoadSnapshot(path string) error {
	if err := persistence.LoadGob(path, s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.ErrNotExist
		}
		return err
	}
	return nil
}

// UpsertCard normalizes card and stores it under its card number.
func (s *MemoryStore) UpsertCard(ctx context.Context, card model.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	card.Normalize()
	if card.CardNo == "" {
		return internalErrors.NewValidationError("card_no", "cannot be empty")
	}
	card = cloneCard(card)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.CardNo] = card
	return nil
}

// CountCards counts the cards matching where.
func (s *MemoryStore) CountCards(ctx context.Context, where query.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query.IsTrue(where) {
		return len(s.cards), nil
	}
	n := 0
	for no := range s.cards {
		c := s.cards[no]
		if where.Match(&c) {
			n++
		}
	}
	return n, nil
}

// SelectCards returns one ordered window of the cards matching where.
func (s *MemoryStore) SelectCards(ctx context.Context, where query.Predicate, orders []query.Order, limit, offset int) ([]model.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if where == nil {
		where = query.True
	}

	s.mu.RLock()
	matched := make([]model.Card, 0, len(s.cards))
	for _, c := range s.cards {
		if where.Match(&c) {
			matched = append(matched, c)
		}
	}
	s.mu.RUnlock()

	// orders always end on a unique key, so the sort is total
	slices.SortFunc(matched, func(a, b model.Card) int {
		if c := query.CompareCards(orders, &a, &b); c != 0 {
			return c
		}
		return strings.Compare(a.CardNo, b.CardNo)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) || limit <= 0 {
		return []model.Card{}, nil
	}
	end := len(matched)
	if limit < end-offset {
		end = offset + limit
	}

	page := make([]model.Card, 0, end-offset)
	for _, c := range matched[offset:end] {
		page = append(page, cloneCard(c))
	}
	return page, nil
}

// GetCard returns one card by number.
func (s *MemoryStore) GetCard(ctx context.Context, cardNo string) (*model.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cards[strings.TrimSpace(cardNo)]
	if !ok {
		return nil, internalErrors.NewCardNotFoundError(cardNo)
	}
	c = cloneCard(c)
	return &c, nil
}

// LookupCards returns the known cards among cardNos in request order.
func (s *MemoryStore) LookupCards(ctx context.Context, cardNos []string) ([]model.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Card, 0, len(cardNos))
	for _, no := range model.UniqueTrimmed(cardNos) {
		if c, ok := s.cards[no]; ok {
			out = append(out, cloneCard(c))
		}
	}
	return out, nil
}

// DistinctValues flattens the values cards hold for facet.
func (s *MemoryStore) DistinctValues(ctx context.Context, facet query.Facet) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for no := range s.cards {
		c := s.cards[no]
		for _, v := range facet.Values(&c) {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	return out, nil
}

// NumericBounds returns the minimum and maximum of a range field.
func (s *MemoryStore) NumericBounds(ctx context.Context, field query.RangeField) (facets.Bounds, error) {
	if err := ctx.Err(); err != nil {
		return facets.Bounds{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b facets.Bounds
	for no := range s.cards {
		c := s.cards[no]
		v := field.Value(&c)
		if b.Min == nil || v < *b.Min {
			b.Min = &v
		}
		if b.Max == nil || v > *b.Max {
			high := v
			b.Max = &high
		}
	}
	return b, nil
}

// GetVersion returns the recorded version of a dataset.
func (s *MemoryStore) GetVersion(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[name]
	return v, ok, nil
}

// SetVersion records the version of a dataset.
func (s *MemoryStore) SetVersion(ctx context.Context, name, version string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[name] = version
	return nil
}

// Len returns the number of cards.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func cloneCard(c model.Card) model.Card {
	c.Colors = slices.Clone(c.Colors)
	c.Keywords = slices.Clone(c.Keywords)
	c.QAList = slices.Clone(c.QAList)
	return c
}
