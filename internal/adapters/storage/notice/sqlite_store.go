package notice

import (
	"context"
	"fmt"

	"noticeboard/internal/adapters/storage"
	domain "noticeboard/internal/domain/notice"
)

// SQLiteStore implements Store using SQLite. The collection is kept in the
// notice table; position preserves insertion order.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: storage.InitDB has been run against db
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load returns every row ordered by position.
// PRE: schema exists
// POST: Returns the collection (empty if the table is empty) or an ErrStorage-wrapped error
func (s *SQLiteStore) Load(ctx context.Context) ([]domain.Notice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, duration, created_at, created_at_iso
		 FROM notice ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query notices: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	notices := []domain.Notice{}
	for rows.Next() {
		var n domain.Notice
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Duration, &n.CreatedAt, &n.CreatedAtISO); err != nil {
			return nil, fmt.Errorf("%w: scan notice: %w", domain.ErrStorage, err)
		}
		notices = append(notices, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate notices: %w", domain.ErrStorage, err)
	}
	return notices, nil
}

// Save replaces the table contents with notices in one transaction.
// PRE: notice ids are unique
// POST: Table holds exactly notices in order, or is unchanged on error
func (s *SQLiteStore) Save(ctx context.Context, notices []domain.Notice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM notice`); err != nil {
		return fmt.Errorf("%w: clear notices: %w", domain.ErrStorage, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO notice (id, position, title, content, duration, created_at, created_at_iso)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %w", domain.ErrStorage, err)
	}
	defer stmt.Close()

	for i, n := range notices {
		if _, err := stmt.ExecContext(ctx, n.ID, i, n.Title, n.Content, n.Duration, n.CreatedAt, n.CreatedAtISO); err != nil {
			return fmt.Errorf("%w: insert notice %s: %w", domain.ErrStorage, n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrStorage, err)
	}
	return nil
}
