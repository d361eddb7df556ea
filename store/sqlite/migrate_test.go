package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}
	if migrations[0].Version != 1 {
		t.Errorf("expected first migration version 1, got %d", migrations[0].Version)
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Errorf("migrations out of order: %d after %d", migrations[i].Version, migrations[i-1].Version)
		}
	}
}

func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db
}

func TestRunMigrationsFreshDB(t *testing.T) {
	db := openRawDB(t)

	ran, err := runMigrations(context.Background(), db)
	if err != nil {
		t.Fatalf("runMigrations: %v", err)
	}
	if len(ran) == 0 || ran[0] != 1 {
		t.Fatalf("expected migration 1 to run, got %v", ran)
	}

	var version int
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		t.Fatalf("query schema_migrations: %v", err)
	}
	if version != ran[len(ran)-1] {
		t.Errorf("expected recorded version %d, got %d", ran[len(ran)-1], version)
	}

	for _, table := range []string{"cards", "versions", "decks", "deck_cards"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	if _, err := runMigrations(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	ran, err := runMigrations(ctx, db)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(ran) != 0 {
		t.Errorf("expected no migrations on second run, got %v", ran)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.SetVersion(context.Background(), "cards", "v1"); err != nil {
		t.Fatalf("SetVersion: %v", err)
	}
	s.Close()

	s, err = NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, ok, err := s.GetVersion(context.Background(), "cards")
	if err != nil || !ok || v != "v1" {
		t.Errorf("expected version v1 after reopen, got %q ok=%v err=%v", v, ok, err)
	}
}
