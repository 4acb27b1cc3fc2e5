package notice

import (
	"context"

	domain "noticeboard/internal/domain/notice"
)

// Store persists the whole notice collection as a single document.
//
// Implementations do not lock: Load and Save are separate steps, so two
// concurrent read-modify-write cycles race and the later Save wins. A caller
// that needs stronger consistency must serialize its mutations itself (a
// single-owner queue or an advisory file lock around Load+Save).
type Store interface {
	// Load returns the persisted collection in insertion order, or an empty
	// slice if nothing has been persisted yet. Errors wrap domain.ErrStorage.
	Load(ctx context.Context) ([]domain.Notice, error)
	// Save replaces the persisted collection with notices. Errors wrap domain.ErrStorage.
	Save(ctx context.Context, notices []domain.Notice) error
}

// Backend names accepted by configuration.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)
