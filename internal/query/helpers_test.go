package query

import (
	"context"
	"slices"

	"github.com/gcbaptista/card-catalog/model"
)

// sliceStore evaluates plans in memory over a fixed card slice.
type sliceStore struct {
	cards []model.Card
	err   error
}

func newSliceStore(cards []model.Card) *sliceStore {
	out := make([]model.Card, len(cards))
	for i, c := range cards {
		c.Normalize()
		out[i] = c
	}
	return &sliceStore{cards: out}
}

func (s *sliceStore) CountCards(_ context.Context, where Predicate) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n := 0
	for i := range s.cards {
		if where.Match(&s.cards[i]) {
			n++
		}
	}
	return n, nil
}

func (s *sliceStore) SelectCards(_ context.Context, where Predicate, orders []Order, limit, offset int) ([]model.Card, error) {
	if s.err != nil {
		return nil, s.err
	}
	var matched []model.Card
	for i := range s.cards {
		if where.Match(&s.cards[i]) {
			matched = append(matched, s.cards[i])
		}
	}
	slices.SortStableFunc(matched, func(a, b model.Card) int {
		return CompareCards(orders, &a, &b)
	})
	if offset >= len(matched) {
		return []model.Card{}, nil
	}
	end := len(matched)
	if limit < end-offset {
		end = offset + limit
	}
	return matched[offset:end], nil
}

// matchingNos returns the card numbers of the cards p selects.
func matchingNos(cards []model.Card, p Predicate) []string {
	var out []string
	for i := range cards {
		if p.Match(&cards[i]) {
			out = append(out, cards[i].CardNo)
		}
	}
	return out
}

func isSubset(sub, super []string) bool {
	for _, v := range sub {
		if !slices.Contains(super, v) {
			return false
		}
	}
	return true
}
