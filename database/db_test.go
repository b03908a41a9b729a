package database_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/kbukum/errkit/database"
	"github.com/kbukum/errkit/database/migration"
	apperrors "github.com/kbukum/errkit/errors"
	"github.com/kbukum/errkit/logger"
	"github.com/kbukum/errkit/observability"
)

var migrations = fstest.MapFS{
	"migrations/1_create_tags.up.sql":   {Data: []byte(`CREATE TABLE tags (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE);`)},
	"migrations/1_create_tags.down.sql": {Data: []byte(`DROP TABLE tags;`)},
}

func openTestDB(t *testing.T, cfg database.Config) *database.DB {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, &logger.Config{Level: "error", Format: "json"}, "test")
	db, err := database.Open(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migration.Up(db.SQL, migrations, "migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestOpen_MemoryAndFile(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
	}{
		{"memory", database.Config{}},
		{"file", database.Config{Path: filepath.Join(t.TempDir(), "test.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t, tt.cfg)
			if _, err := db.SQL.Exec(`INSERT INTO tags (name) VALUES ('go')`); err != nil {
				t.Fatalf("insert: %v", err)
			}
			var n int
			if err := db.SQL.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&n); err != nil || n != 1 {
				t.Errorf("count = %d, err = %v", n, err)
			}
		})
	}
}

func TestMigrationVersion(t *testing.T) {
	db := openTestDB(t, database.Config{})
	v, dirty, err := migration.Version(db.SQL, migrations, "migrations")
	if err != nil || v != 1 || dirty {
		t.Errorf("Version = %d dirty=%v err=%v", v, dirty, err)
	}
	if err := migration.Up(db.SQL, migrations, "migrations"); err != nil {
		t.Errorf("second Up should be a no-op, got %v", err)
	}
}

func TestFromDatabase(t *testing.T) {
	db := openTestDB(t, database.Config{})
	ctx := context.Background()
	if _, err := db.SQL.ExecContext(ctx, `INSERT INTO tags (name) VALUES ('go')`); err != nil {
		t.Fatal(err)
	}

	_, dupErr := db.SQL.ExecContext(ctx, `INSERT INTO tags (name) VALUES ('go')`)
	var name string
	missingErr := db.SQL.QueryRowContext(ctx, `SELECT name FROM tags WHERE id = 42`).Scan(&name)

	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{"unique violation", dupErr, apperrors.KindDuplicateResource},
		{"no rows", missingErr, apperrors.KindNotFound},
		{"unknown", errors.New("disk I/O error"), apperrors.KindInternal},
		{"already classified", apperrors.Forbidden(""), apperrors.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := database.FromDatabase(tt.err, "tag")
			if got == nil || got.Kind() != tt.want {
				t.Fatalf("FromDatabase(%v) = %v, want kind %s", tt.err, got, tt.want)
			}
		})
	}
	if database.FromDatabase(nil, "tag") != nil {
		t.Error("nil error should map to nil")
	}
	if !database.IsDuplicateError(dupErr) {
		t.Error("expected IsDuplicateError")
	}
}

func TestWithTransaction(t *testing.T) {
	db := openTestDB(t, database.Config{})
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tags (name) VALUES ('rolled-back')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO tags (name) VALUES ('kept')`)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	var names []string
	rows, err := db.SQL.QueryContext(ctx, `SELECT name FROM tags`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var n string
		_ = rows.Scan(&n)
		names = append(names, n)
	}
	if len(names) != 1 || names[0] != "kept" {
		t.Errorf("rows = %v", names)
	}
}

func TestCheckHealth(t *testing.T) {
	db := openTestDB(t, database.Config{})
	if h := db.CheckHealth(context.Background()); h.Status != observability.HealthStatusUp {
		t.Errorf("expected up, got %+v", h)
	}
	_ = db.Close()
	if h := db.CheckHealth(context.Background()); h.Status != observability.HealthStatusDown {
		t.Errorf("expected down after close, got %+v", h)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr bool
	}{
		{"defaults", database.Config{}, false},
		{"bad lifetime", database.Config{Path: "x.db", ConnMaxLifetime: "forever"}, true},
		{"bad busy timeout", database.Config{Path: "x.db", BusyTimeout: "soon"}, true},
		{"idle above open", database.Config{Path: "x.db", MaxOpenConns: 2, MaxIdleConns: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ApplyDefaults()
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryConfigPinsSingleConnection(t *testing.T) {
	cfg := database.Config{MaxOpenConns: 10}
	cfg.ApplyDefaults()
	if !cfg.IsMemory() || cfg.MaxOpenConns != 1 {
		t.Errorf("memory config = %+v", cfg)
	}
}
