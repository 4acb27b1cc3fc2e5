package notice

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"noticeboard/internal/adapters/storage"
)

// TestOpen_Backends tests that each backend opens and round-trips.
func TestOpen_Backends(t *testing.T) {
	for _, backend := range []string{BackendJSON, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data", "notices."+backend)
			store, closeFn, err := Open(backend, path, nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer closeFn()

			ctx := context.Background()
			if err := store.Save(ctx, sampleNotices()); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(got) != len(sampleNotices()) {
				t.Errorf("len = %d, want %d", len(got), len(sampleNotices()))
			}
		})
	}
}

// TestOpen_UnknownBackend tests backend validation.
func TestOpen_UnknownBackend(t *testing.T) {
	if _, _, err := Open("postgres", "x", nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}

// TestOpen_RefusesNewerSchema tests that a database from a newer build is not opened.
func TestOpen_RefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notices.db")

	db, err := storage.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, storage.SchemaVersion+1); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	_, _, err = Open(BackendSQLite, path, nil)
	if err == nil {
		t.Fatal("expected error for newer schema version")
	}
	if !strings.Contains(err.Error(), "schema version 2") {
		t.Errorf("error = %v", err)
	}
}

// TestOpen_ReopensCurrentSchema tests that a second open of the same file succeeds.
func TestOpen_ReopensCurrentSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notices.db")
	for i := 0; i < 2; i++ {
		_, closeFn, err := Open(BackendSQLite, path, nil)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		closeFn()
	}
}
