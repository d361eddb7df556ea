package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gcbaptista/card-catalog/services"
)

// VersionStore records dataset versions.
type VersionStore interface {
	GetVersion(ctx context.Context, name string) (version string, ok bool, err error)
	SetVersion(ctx context.Context, name, version string) error
}

// SyncReport describes one sync run.
type SyncReport struct {
	LocalVersion  string                 `json:"local_version"`
	RemoteVersion string                 `json:"remote_version"`
	Updated       bool                   `json:"updated"`
	Import        *services.ImportReport `json:"import,omitempty"`
}

// Syncer keeps the local catalog in step with the remote feed.
type Syncer struct {
	feed        Feed
	versions    VersionStore
	importer    *Importer
	versionName string
	logger      *zap.Logger
}

// NewSyncer creates a syncer for the dataset versionName.
func NewSyncer(feed Feed, versions VersionStore, importer *Importer, versionName string, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		feed:        feed,
		versions:    versions,
		importer:    importer,
		versionName: versionName,
		logger:      logger,
	}
}

// Sync compares the remote version with the recorded one and, when they
// differ or force is set, imports the remote feed. The new version is
// recorded only when every record was written, so a partial import is
// retried by the next sync.
func (s *Syncer) Sync(ctx context.Context, force bool, progress ProgressFunc) (SyncReport, error) {
	var report SyncReport

	remote, err := s.feed.Version(ctx, s.versionName)
	if err != nil {
		return report, fmt.Errorf("fetch remote version: %w", err)
	}
	report.RemoteVersion = remote

	local, ok, err := s.versions.GetVersion(ctx, s.versionName)
	if err != nil {
		return report, fmt.Errorf("read local version: %w", err)
	}
	report.LocalVersion = local

	if ok && local == remote && !force {
		s.logger.Info("catalog is up to date", zap.String("version", local))
		return report, nil
	}

	s.logger.Info("syncing catalog",
		zap.String("local_version", local),
		zap.String("remote_version", remote),
		zap.Bool("forced", force))

	payload, err := s.feed.Cards(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch cards: %w", err)
	}
	imported, err := s.importer.ImportFeed(ctx, payload, progress)
	report.Import = &imported
	if err != nil {
		return report, err
	}

	if len(imported.Failed) > 0 {
		s.logger.Warn("catalog version not recorded, some records failed",
			zap.Int("failed", len(imported.Failed)),
			zap.String("remote_version", remote))
		return report, nil
	}
	if err := s.versions.SetVersion(ctx, s.versionName, remote); err != nil {
		return report, fmt.Errorf("record version: %w", err)
	}
	report.Updated = true
	return report, nil
}
