package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/store"
	"github.com/gcbaptista/card-catalog/store/sqlite"
)

// Snapshot writes a copy of the catalog to the configured snapshot path: a
// gob snapshot for the memory backend, a database copy for SQLite.
func (e *Engine) Snapshot(ctx context.Context) (string, error) {
	path := e.settings.Storage.SnapshotPath
	if path == "" {
		return "", internalErrors.NewValidationError("storage.snapshot_path", "is not configured")
	}
	switch s := e.store.(type) {
	case *store.MemoryStore:
		if err := s.SaveSnapshot(path); err != nil {
			return "", fmt.Errorf("save snapshot: %w", err)
		}
	case *sqlite.Store:
		if err := s.Backup(ctx, path); err != nil {
			return "", fmt.Errorf("backup database: %w", err)
		}
	default:
		return "", internalErrors.NewNotSupportedError("snapshot", fmt.Sprintf("%T", e.store))
	}
	e.logger.Info("catalog snapshot written", zap.String("path", path))
	return path, nil
}

// afterWrite persists the memory store after a completed import.
func (e *Engine) afterWrite() {
	if e.memory == nil || e.settings.Storage.SnapshotPath == "" {
		return
	}
	start := time.Now()
	if err := e.memory.SaveSnapshot(e.settings.Storage.SnapshotPath); err != nil {
		e.logger.Error("failed to save snapshot after import",
			zap.String("path", e.settings.Storage.SnapshotPath),
			zap.Error(err))
		return
	}
	e.logger.Debug("snapshot saved", zap.Duration("took", time.Since(start)))
}

func (e *Engine) loadSnapshot() {
	path := e.settings.Storage.SnapshotPath
	if path == "" {
		return
	}
	err := e.memory.LoadSnapshot(path)
	switch {
	case err == nil:
		e.logger.Info("loaded catalog snapshot", zap.String("path", path), zap.Int("cards", e.memory.Len()))
	case errors.Is(err, os.ErrNotExist):
		e.logger.Info("no catalog snapshot yet, starting empty", zap.String("path", path))
	default:
		e.logger.Warn("failed to load catalog snapshot, starting empty", zap.String("path", path), zap.Error(err))
	}
}
