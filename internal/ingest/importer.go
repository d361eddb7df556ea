// Package ingest writes card records into the catalog, from local payloads or
// from the remote card feed.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gcbaptista/card-catalog/internal/metrics"
	"github.com/gcbaptista/card-catalog/model"
	"github.com/gcbaptista/card-catalog/services"
)

// Upserter writes one card.
type Upserter interface {
	UpsertCard(ctx context.Context, card model.Card) error
}

// ProgressFunc is called after each record with the number processed so far.
type ProgressFunc func(done, total int)

// Importer upserts records one at a time. A failing record is logged and
// reported; it never stops the records after it.
type Importer struct {
	store    Upserter
	logger   *zap.Logger
	recorder *metrics.Recorder
}

// NewImporter creates an importer over store. logger and recorder may be nil.
func NewImporter(store Upserter, logger *zap.Logger, recorder *metrics.Recorder) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: store, logger: logger, recorder: recorder}
}

// record is a card with its position in the incoming payload.
type record struct {
	position int
	card     model.Card
}

// Import upserts cards in order. It returns early only when ctx is done, with
// the report of what was written so far.
func (i *Importer) Import(ctx context.Context, cards []model.Card, progress ProgressFunc) (services.ImportReport, error) {
	records := make([]record, len(cards))
	for pos, c := range cards {
		records[pos] = record{position: pos, card: c}
	}
	return i.importRecords(ctx, records, len(cards), nil, progress)
}

// ImportFeed decodes a feed payload and upserts its records. Records that do
// not decode are reported as failures at their position.
func (i *Importer) ImportFeed(ctx context.Context, payload []byte, progress ProgressFunc) (services.ImportReport, error) {
	records, failures, total, err := decodeFeed(payload)
	if err != nil {
		return services.ImportReport{}, err
	}
	for _, f := range failures {
		i.logger.Warn("skipping undecodable feed record", zap.Int("position", f.Position), zap.String("error", f.Error))
	}
	return i.importRecords(ctx, records, total, failures, progress)
}

func (i *Importer) importRecords(ctx context.Context, records []record, total int, failed []services.ImportFailure, progress ProgressFunc) (services.ImportReport, error) {
	report := services.ImportReport{Total: total, Failed: failed}
	done := len(failed)

	defer func() {
		i.recorder.ObserveImport(report.Upserted, len(report.Failed))
	}()

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			i.logger.Warn("import interrupted",
				zap.Int("upserted", report.Upserted),
				zap.Int("remaining", total-done),
				zap.Error(err))
			return report, fmt.Errorf("import interrupted after %d of %d records: %w", done, total, err)
		}

		if err := i.store.UpsertCard(ctx, r.card); err != nil {
			i.logger.Warn("failed to upsert card",
				zap.Int("position", r.position),
				zap.String("card_no", r.card.CardNo),
				zap.Error(err))
			report.Failed = append(report.Failed, services.ImportFailure{
				Position: r.position,
				CardNo:   r.card.CardNo,
				Error:    err.Error(),
			})
		} else {
			report.Upserted++
		}

		done++
		if progress != nil {
			progress(done, total)
		}
	}

	i.logger.Info("import finished",
		zap.Int("total", report.Total),
		zap.Int("upserted", report.Upserted),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}
