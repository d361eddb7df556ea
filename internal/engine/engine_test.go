package engine

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gcbaptista/card-catalog/config"
	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/internal/ingest"
	"github.com/gcbaptista/card-catalog/internal/testutil"
	"github.com/gcbaptista/card-catalog/model"
	"github.com/gcbaptista/card-catalog/services"
)

type stubFeed struct {
	version string
	payload []byte
	release chan struct{} // when set, Cards blocks until it is closed
	calls   atomic.Int32
}

func (f *stubFeed) Version(ctx context.Context, name string) (string, error) {
	return f.version, nil
}

func (f *stubFeed) Cards(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.payload, nil
}

func newFeed(t *testing.T, version string) *stubFeed {
	t.Helper()
	payload, err := json.Marshal(testutil.SampleCards())
	require.NoError(t, err)
	return &stubFeed{version: version, payload: payload}
}

func memorySettings(t *testing.T) config.Settings {
	t.Helper()
	s := config.Default()
	s.Storage.Backend = config.BackendMemory
	s.Storage.SnapshotPath = filepath.Join(t.TempDir(), "catalog.gob")
	return s
}

func sqliteSettings(t *testing.T) config.Settings {
	t.Helper()
	s := config.Default()
	s.Storage.Backend = config.BackendSQLite
	s.Storage.Path = testutil.TempDBPath(t)
	return s
}

func newTestEngine(t *testing.T, settings config.Settings, opts ...Option) *Engine {
	t.Helper()
	e, err := New(settings, zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func waitForJob(t *testing.T, e *Engine, jobID string) *model.Job {
	t.Helper()
	var job *model.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = e.GetJob(jobID)
		return err == nil && job.Status.IsTerminal()
	}, 5*time.Second, 5*time.Millisecond)
	return job
}

func TestNew_UnknownBackend(t *testing.T) {
	s := config.Default()
	s.Storage.Backend = "postgres"
	_, err := New(s, nil)
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)
}

func TestEngine_ReadsOverBothBackends(t *testing.T) {
	ctx := context.Background()
	for name, settings := range map[string]config.Settings{
		"memory": memorySettings(t),
		"sqlite": sqliteSettings(t),
	} {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t, settings)
			report, err := e.Import(ctx, testutil.SampleCards(), nil)
			require.NoError(t, err)
			assert.Equal(t, len(testutil.SampleCards()), report.Upserted)

			n, err := e.CountCards(ctx)
			require.NoError(t, err)
			assert.Equal(t, len(testutil.SampleCards()), n)

			card, err := e.GetCard(ctx, "OGN-003")
			require.NoError(t, err)
			assert.Equal(t, "Garen", card.Name)

			_, err = e.GetCard(ctx, "NOPE-1")
			assert.ErrorIs(t, err, internalErrors.ErrCardNotFound)

			cards, err := e.LookupCards(ctx, []string{"SFD-001", "missing", "OGN-001"})
			require.NoError(t, err)
			assert.Equal(t, []string{"SFD-001", "OGN-001"}, testutil.CardNos(cards))

			res, err := e.Search(ctx, services.SearchRequest{
				Color:    &services.FacetSelection{Values: []string{"red"}, Mode: "allOf"},
				SortKey:  "card_no",
				PageSize: 2,
			})
			require.NoError(t, err)
			assert.Equal(t, 2, len(res.Rows))
			assert.Equal(t, "OGN-001", res.Rows[0].CardNo)
			assert.NotEmpty(t, res.QueryId)

			facets, err := e.ListFacets(ctx)
			require.NoError(t, err)
			assert.Contains(t, facets.Series, "起源")
			assert.Equal(t, "red", facets.Color[0])

			ranges, err := e.ListRanges(ctx)
			require.NoError(t, err)
			assert.LessOrEqual(t, ranges.MightLimit[0], ranges.MightLimit[1])
		})
	}
}

func TestEngine_MultiSearch(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, memorySettings(t))
	_, err := e.Import(ctx, testutil.SampleCards(), nil)
	require.NoError(t, err)

	res, err := e.MultiSearch(ctx, services.MultiSearchRequest{Queries: []services.NamedSearchRequest{
		{Name: "all"},
		{Name: "blue", SearchRequest: services.SearchRequest{Color: &services.FacetSelection{Values: []string{"blue"}}}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalQueries)
	assert.Equal(t, len(testutil.SampleCards()), res.Results["all"].Total)
	assert.Less(t, res.Results["blue"].Total, res.Results["all"].Total)
}

func TestImportCardsAsync(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, memorySettings(t))

	jobID, err := e.ImportCardsAsync(testutil.SampleCards())
	require.NoError(t, err)

	job := waitForJob(t, e, jobID)
	require.Equal(t, model.JobStatusCompleted, job.Status, job.Error)
	assert.Equal(t, model.JobTypeImportCards, job.Type)
	assert.Equal(t, "cards", job.Target)
	report, ok := job.Result.(services.ImportReport)
	require.True(t, ok, "unexpected result %#v", job.Result)
	assert.Equal(t, len(testutil.SampleCards()), report.Upserted)
	require.NotNil(t, job.Progress)
	assert.Equal(t, job.Progress.Total, job.Progress.Current)

	n, err := e.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(testutil.SampleCards()), n)

	stats := e.JobStats()
	assert.Equal(t, int64(1), stats.Completed)
}

func TestImportCardsAsync_Empty(t *testing.T) {
	e := newTestEngine(t, memorySettings(t))
	_, err := e.ImportCardsAsync(nil)
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)
}

func TestImportCardsAsync_ReportsBadRecords(t *testing.T) {
	e := newTestEngine(t, memorySettings(t))
	cards := append(testutil.SampleCards(), model.Card{CardNo: "  "})

	job := waitForJob(t, e, mustStart(t)(e.ImportCardsAsync(cards)))
	require.Equal(t, model.JobStatusCompleted, job.Status)
	report := job.Result.(services.ImportReport)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, len(cards)-1, report.Failed[0].Position)
	assert.Contains(t, job.Progress.Message, "1 failed")
}

func mustStart(t *testing.T) func(string, error) string {
	return func(id string, err error) string {
		t.Helper()
		require.NoError(t, err)
		return id
	}
}

func TestSyncAsync(t *testing.T) {
	ctx := context.Background()
	feed := newFeed(t, "2026-01-01")
	e := newTestEngine(t, sqliteSettings(t), WithFeed(feed))

	job := waitForJob(t, e, mustStart(t)(e.SyncAsync(false)))
	require.Equal(t, model.JobStatusCompleted, job.Status, job.Error)
	report, ok := job.Result.(ingest.SyncReport)
	require.True(t, ok)
	assert.True(t, report.Updated)
	assert.Equal(t, "2026-01-01", report.RemoteVersion)

	n, err := e.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(testutil.SampleCards()), n)

	// same version again: nothing is fetched
	job = waitForJob(t, e, mustStart(t)(e.SyncAsync(false)))
	require.Equal(t, model.JobStatusCompleted, job.Status)
	assert.False(t, job.Result.(ingest.SyncReport).Updated)
	assert.Equal(t, "Catalog is up to date", job.Progress.Message)
	assert.Equal(t, int32(1), feed.calls.Load())

	// forced sync fetches again
	job = waitForJob(t, e, mustStart(t)(e.SyncAsync(true)))
	require.Equal(t, model.JobStatusCompleted, job.Status)
	assert.Equal(t, int32(2), feed.calls.Load())
}

func TestSyncAsync_ReusesRunningJob(t *testing.T) {
	feed := newFeed(t, "v2")
	feed.release = make(chan struct{})
	e := newTestEngine(t, memorySettings(t), WithFeed(feed))

	first := mustStart(t)(e.SyncAsync(false))
	second := mustStart(t)(e.SyncAsync(true))
	assert.Equal(t, first, second)

	close(feed.release)
	job := waitForJob(t, e, first)
	require.Equal(t, model.JobStatusCompleted, job.Status)

	third := mustStart(t)(e.SyncAsync(true))
	assert.NotEqual(t, first, third)
	waitForJob(t, e, third)
}

func TestCancelJob(t *testing.T) {
	feed := newFeed(t, "v3")
	feed.release = make(chan struct{})
	defer close(feed.release)
	e := newTestEngine(t, memorySettings(t), WithFeed(feed))

	jobID := mustStart(t)(e.SyncAsync(false))
	require.Eventually(t, func() bool { return feed.calls.Load() == 1 }, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, e.CancelJob(jobID))

	job := waitForJob(t, e, jobID)
	assert.Equal(t, model.JobStatusCancelled, job.Status)

	status := model.JobStatusCancelled
	assert.Len(t, e.ListJobs("cards", &status), 1)
	assert.Len(t, e.ListJobs("decks", nil), 0)
}

func TestSnapshot_MemoryBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	settings := memorySettings(t)

	e, err := New(settings, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = e.Import(ctx, testutil.SampleCards(), nil)
	require.NoError(t, err)

	job := waitForJob(t, e, mustStart(t)(e.SnapshotAsync()))
	require.Equal(t, model.JobStatusCompleted, job.Status, job.Error)
	require.NoError(t, e.Close())

	reopened := newTestEngine(t, settings)
	n, err := reopened.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(testutil.SampleCards()), n)
}

func TestSnapshot_SQLiteBackup(t *testing.T) {
	ctx := context.Background()
	settings := sqliteSettings(t)
	settings.Storage.SnapshotPath = filepath.Join(t.TempDir(), "backup.db")
	e := newTestEngine(t, settings)
	_, err := e.Import(ctx, testutil.SampleCards(), nil)
	require.NoError(t, err)

	path, err := e.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.Storage.SnapshotPath, path)

	copySettings := sqliteSettings(t)
	copySettings.Storage.Path = path
	restored := newTestEngine(t, copySettings)
	n, err := restored.CountCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(testutil.SampleCards()), n)
}

func TestSnapshot_NotConfigured(t *testing.T) {
	e := newTestEngine(t, sqliteSettings(t))
	_, err := e.SnapshotAsync()
	assert.ErrorIs(t, err, internalErrors.ErrInvalidInput)
}

func TestDecks(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend has no decks", func(t *testing.T) {
		e := newTestEngine(t, memorySettings(t))
		_, err := e.ListDecks(ctx)
		assert.ErrorIs(t, err, internalErrors.ErrNotSupported)
		_, err = e.SaveDeck(ctx, &model.Deck{Name: "x"})
		assert.ErrorIs(t, err, internalErrors.ErrNotSupported)
	})

	t.Run("sqlite backend", func(t *testing.T) {
		e := newTestEngine(t, sqliteSettings(t))
		_, err := e.Import(ctx, testutil.SampleCards(), nil)
		require.NoError(t, err)

		id, err := e.SaveDeck(ctx, &model.Deck{Name: "Zaun", Cards: []model.DeckCard{
			{CardNo: "OGN-001", Zone: model.ZoneLegend, Quantity: 1},
			{CardNo: "OGN-002", Zone: model.ZoneMain, Quantity: 3},
		}})
		require.NoError(t, err)

		deck, err := e.GetDeck(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Zaun", deck.Name)
		require.Len(t, deck.Cards, 2)
		require.NotNil(t, deck.Cards[0].Card)

		summaries, err := e.ListDecks(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, 4, summaries[0].TotalCards)

		require.NoError(t, e.DeleteDeck(ctx, id))
		_, err = e.GetDeck(ctx, id)
		assert.ErrorIs(t, err, internalErrors.ErrDeckNotFound)
		err = e.DeleteDeck(ctx, id)
		assert.True(t, errors.Is(err, internalErrors.ErrDeckNotFound))
	})
}

func TestImportFeed_ReportsUndecodableRecords(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, memorySettings(t))

	payload := []byte(`{"data":[{"card_no":"OGN-001","card_name":"Jinx"},{"card_no":"OGN-002","energy":"three"}]}`)
	report, err := e.ImportFeed(ctx, payload, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Upserted)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "OGN-002", report.Failed[0].CardNo)

	_, err = e.ImportFeed(ctx, []byte(`not json`), nil)
	assert.Error(t, err)
}
