package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/internal/query"
	"github.com/gcbaptista/card-catalog/internal/testutil"
	"github.com/gcbaptista/card-catalog/model"
)

func newLoadedStore(t *testing.T, cards []model.Card) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	for _, c := range cards {
		require.NoError(t, s.UpsertCard(context.Background(), c))
	}
	return s
}

func TestMemoryStore_UpsertNormalizes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.UpsertCard(ctx, model.Card{
		CardNo:   "  OGN-100 ",
		Name:     " Vi ",
		Tag:      " 迅捷 || 反应|迅捷 ",
		Colors:   []string{"red", " red", ""},
		Keywords: nil,
	})
	require.NoError(t, err)

	card, err := s.GetCard(ctx, "OGN-100")
	require.NoError(t, err)
	assert.Equal(t, "Vi", card.Name)
	assert.Equal(t, "迅捷|反应", card.Tag)
	assert.Equal(t, []string{"red"}, card.Colors)
	assert.Equal(t, []string{}, card.Keywords)
}

func TestMemoryStore_UpsertReplaces(t *testing.T) {
	s := newLoadedStore(t, testutil.SampleCards())
	ctx := context.Background()

	require.NoError(t, s.UpsertCard(ctx, model.Card{CardNo: "OGN-001", Name: "Jinx v2"}))

	card, err := s.GetCard(ctx, "OGN-001")
	require.NoError(t, err)
	assert.Equal(t, "Jinx v2", card.Name)
	assert.Equal(t, 10, s.Len())
}

func TestMemoryStore_UpsertRequiresCardNo(t *testing.T) {
	err := NewMemoryStore().UpsertCard(context.Background(), model.Card{CardNo: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))
}

func TestMemoryStore_GetCardNotFound(t *testing.T) {
	_, err := NewMemoryStore().GetCard(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalErrors.ErrCardNotFound))
}

func TestMemoryStore_ReturnedCardsAreCopies(t *testing.T) {
	s := newLoadedStore(t, testutil.SampleCards())
	ctx := context.Background()

	card, err := s.GetCard(ctx, "OGN-002")
	require.NoError(t, err)
	card.Colors[0] = "purple"

	again, err := s.GetCard(ctx, "OGN-002")
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "green"}, again.Colors)
}

func TestMemoryStore_LookupCards(t *testing.T) {
	s := newLoadedStore(t, testutil.SampleCards())

	cards, err := s.LookupCards(context.Background(), []string{"SFD-002", "missing", "OGN-001", "SFD-002"})
	require.NoError(t, err)
	assert.Equal(t, []string{"SFD-002", "OGN-001"}, testutil.CardNos(cards))
}

func TestMemoryStore_CountAndSelect(t *testing.T) {
	s := newLoadedStore(t, testutil.SampleCards())
	ctx := context.Background()

	where := query.CompileSelection(query.Selection{Facet: query.FacetSeries, Values: []string{"起源"}})
	n, err := s.CountCards(ctx, where)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	orders := query.OrderFor(query.SortPower, false)
	rows, err := s.SelectCards(ctx, where, orders, 3, 1)
	require.NoError(t, err)
	// power: OGN-003 6, OGN-001 4, OGN-002 2, OGN-005 2, OGN-004 0
	assert.Equal(t, []string{"OGN-001", "OGN-002", "OGN-005"}, testutil.CardNos(rows))

	rows, err = s.SelectCards(ctx, where, orders, 10, 10)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	s := newLoadedStore(t, testutil.SampleCards())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CountCards(ctx, query.True)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.SelectCards(ctx, query.True, nil, 10, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_DistinctValues(t *testing.T) {
	s := newLoadedStore(t, testutil.SampleCards())

	tags, err := s.DistinctValues(context.Background(), query.FacetTag)
	require.NoError(t, err)
	sort.Strings(tags)
	assert.Equal(t, []string{"反应", "守护", "迅捷"}, tags)

	regions, err := s.DistinctValues(context.Background(), query.FacetRegion)
	require.NoError(t, err)
	assert.NotContains(t, regions, "")
	assert.Len(t, regions, 6)
}

func TestMemoryStore_NumericBounds(t *testing.T) {
	s := newLoadedStore(t, testutil.SampleCards())

	b, err := s.NumericBounds(context.Background(), query.RangePower)
	require.NoError(t, err)
	require.NotNil(t, b.Min)
	require.NotNil(t, b.Max)
	assert.Equal(t, 0, *b.Min)
	assert.Equal(t, 6, *b.Max)

	empty, err := NewMemoryStore().NumericBounds(context.Background(), query.RangePower)
	require.NoError(t, err)
	assert.Nil(t, empty.Min)
	assert.Nil(t, empty.Max)
}

func TestMemoryStore_Versions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := s.GetVersion(ctx, "cards")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetVersion(ctx, "cards", "2025-06-01T00:00:00Z"))
	v, ok, err := s.GetVersion(ctx, "cards")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2025-06-01T00:00:00Z", v)
}

func TestMemoryStore_Snapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot", "cards.gob")
	s := newLoadedStore(t, testutil.SampleCards())
	require.NoError(t, s.SetVersion(context.Background(), "cards", "v1"))
	require.NoError(t, s.SaveSnapshot(path))

	restored := NewMemoryStore()
	require.NoError(t, restored.LoadSnapshot(path))
	assert.Equal(t, 10, restored.Len())

	card, err := restored.GetCard(context.Background(), "OGN-003")
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "green", "blue"}, card.Colors)

	v, ok, err := restored.GetVersion(context.Background(), "cards")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestMemoryStore_SnapshotMissing(t *testing.T) {
	s := newLoadedStore(t, testutil.SampleCards())
	err := s.LoadSnapshot(filepath.Join(t.TempDir(), "none.gob"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, 10, s.Len())
}

func TestMemoryStore_ConcurrentReadsAndWrites(t *testing.T) {
	s := newLoadedStore(t, testutil.GenerateCards(50))
	ctx := context.Background()
	where := query.CompileSelection(query.Selection{Facet: query.FacetColor, Values: []string{"red"}})

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = s.UpsertCard(ctx, model.Card{CardNo: fmt.Sprintf("W%d-%03d", w, i), Colors: []string{"red"}})
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_, err := query.Execute(ctx, s, query.Plan{Where: where, Orders: query.OrderFor(query.SortName, true), Limit: 20})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 150, s.Len())
}
