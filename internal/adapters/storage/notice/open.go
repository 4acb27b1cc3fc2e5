package notice

import (
	"fmt"

	"noticeboard/internal/adapters/perf"
	"noticeboard/internal/adapters/storage"
)

// Open builds the store for backend at path, wrapped in a TimedStore.
// The returned close func releases the SQLite handle; it is a no-op for JSON.
// collector may be nil. A SQLite file written by a newer build is refused.
func Open(backend, path string, collector *perf.Collector) (*TimedStore, func() error, error) {
	switch backend {
	case BackendJSON, "":
		return NewTimedStore(NewJSONFileStore(path), BackendJSON, collector), func() error { return nil }, nil
	case BackendSQLite:
		db, err := storage.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.InitDB(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		version, err := storage.CurrentSchemaVersion(db)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to read schema version: %w", err)
		}
		if version > storage.SchemaVersion {
			db.Close()
			return nil, nil, fmt.Errorf("database %s has schema version %d, this build supports up to %d", path, version, storage.SchemaVersion)
		}
		return NewTimedStore(NewSQLiteStore(db), BackendSQLite, collector), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
