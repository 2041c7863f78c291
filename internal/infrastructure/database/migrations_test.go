package database

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
)

// useMigrations swaps MigrationsFS for the duration of a test.
func useMigrations(t *testing.T, fsys fs.FS) {
	t.Helper()
	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS, MigrationsDir = origFS, origDir
	})
	MigrationsFS, MigrationsDir = fsys, "."
}

func TestMigrate(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"20260301_120000_readings.up.sql":   {Data: []byte("CREATE TABLE readings (topic TEXT PRIMARY KEY);")},
		"20260301_120000_readings.down.sql": {Data: []byte("DROP TABLE readings;")},
		"20260302_090000_extra.up.sql":      {Data: []byte("CREATE TABLE extra (id INTEGER);")},
		"README.md":                         {Data: []byte("ignored")},
	})

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	for _, table := range []string{"readings", "extra"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}

	pending, err := db.PendingMigrations(ctx)
	if err != nil {
		t.Fatalf("PendingMigrations() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}

	// Second run is a no-op.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("schema_migrations rows = %d, want 2", count)
	}
}

func TestMigrate_FailureRollsBackOnlyFailedVersion(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"20260301_120000_good.up.sql": {Data: []byte("CREATE TABLE good (id INTEGER);")},
		"20260302_120000_bad.up.sql":  {Data: []byte("CREATE TABLE bad (id INTEGER); NOT VALID SQL;")},
	})

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err == nil {
		t.Fatal("Migrate() should fail on invalid SQL")
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("applied = %d, want 1", count)
	}
}

func TestMigrate_NoFS(t *testing.T) {
	useMigrations(t, nil)

	db := openTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() with no migrations error = %v", err)
	}
}

func TestLoadMigrations_MissingUp(t *testing.T) {
	useMigrations(t, fstest.MapFS{
		"20260301_120000_orphan.down.sql": {Data: []byte("DROP TABLE x;")},
	})

	if _, err := loadMigrations(); err == nil {
		t.Error("loadMigrations() should reject a down file without an up file")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename string
		version  string
		name     string
		isUp     bool
		ok       bool
	}{
		{"20260301_120000_topic_configs.up.sql", "20260301_120000", "topic_configs", true, true},
		{"20260301_120000_topic_configs.down.sql", "20260301_120000", "topic_configs", false, true},
		{"20260301_120000.up.sql", "20260301_120000", "20260301_120000", true, true},
		{"20260301_120000_x.sql", "", "", false, false},
		{"notes.txt", "", "", false, false},
		{"single.up.sql", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if version != tt.version || name != tt.name || isUp != tt.isUp {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)",
					version, name, isUp, tt.version, tt.name, tt.isUp)
			}
		})
	}
}
