package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"noticeboard/internal/domain/notice"
)

// NoticeStoreForOrchestrator defines the store interface needed by notice orchestrators.
// Each orchestrator does one Load and at most one Save; nothing serializes
// concurrent callers, so overlapping mutations are last-write-wins.
type NoticeStoreForOrchestrator interface {
	Load(ctx context.Context) ([]notice.Notice, error)
	Save(ctx context.Context, notices []notice.Notice) error
}

// NoticeAnnouncer publishes a newly created notice somewhere outside the store.
type NoticeAnnouncer interface {
	Announce(ctx context.Context, n notice.Notice) error
}

// --- Create Notice ---

// CreateNoticeInput carries input for the create notice orchestrator.
type CreateNoticeInput struct {
	Title    string
	Content  string
	Duration float64 // seconds
}

// CreateNoticeDeps holds dependencies for CreateNotice.
type CreateNoticeDeps struct {
	NoticeStore NoticeStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
	Announcer   NoticeAnnouncer // optional
}

// ExecuteCreateNotice validates input, appends a new notice and persists the collection.
// PRE: Title and Content non-empty after trimming; Duration finite and > 0
// POST: Notice appended with a fresh ID and creation timestamps; the store is untouched on invalid input
func ExecuteCreateNotice(ctx context.Context, input CreateNoticeInput, deps CreateNoticeDeps) (notice.Notice, error) {
	n, err := notice.New(deps.GenerateID(), input.Title, input.Content, input.Duration, deps.Now())
	if err != nil {
		slog.Info("notice_event", "event", "notice_rejected", "reason", err.Error())
		return notice.Notice{}, err
	}

	notices, err := deps.NoticeStore.Load(ctx)
	if err != nil {
		return notice.Notice{}, err
	}
	if notice.IndexOf(notices, n.ID) >= 0 {
		return notice.Notice{}, fmt.Errorf("%w: generated id %s already exists", notice.ErrStorage, n.ID)
	}

	if err := deps.NoticeStore.Save(ctx, append(notices, n)); err != nil {
		return notice.Notice{}, err
	}

	slog.Info("notice_event", "event", "notice_created", "notice_id", n.ID, "duration", n.Duration)

	if deps.Announcer != nil {
		if err := deps.Announcer.Announce(ctx, n); err != nil {
			slog.Warn("notice_event", "event", "notice_announce_failed", "notice_id", n.ID, "error", err)
		}
	}
	return n, nil
}

// --- Delete Notice ---

// DeleteNoticeInput carries input for the delete notice orchestrator.
type DeleteNoticeInput struct {
	NoticeID string
}

// DeleteNoticeDeps holds dependencies for DeleteNotice.
type DeleteNoticeDeps struct {
	NoticeStore NoticeStoreForOrchestrator
}

// ExecuteDeleteNotice removes the notice with the given ID and persists the rest.
// PRE: NoticeID non-empty
// POST: Collection shrinks by the matching entries; ErrNotFound (and no save) when nothing matched
func ExecuteDeleteNotice(ctx context.Context, input DeleteNoticeInput, deps DeleteNoticeDeps) error {
	if input.NoticeID == "" {
		return fmt.Errorf("%w: notice ID is required", notice.ErrNotFound)
	}

	notices, err := deps.NoticeStore.Load(ctx)
	if err != nil {
		return err
	}

	remaining := notice.Without(notices, input.NoticeID)
	if len(remaining) == len(notices) {
		return fmt.Errorf("%w: %s", notice.ErrNotFound, input.NoticeID)
	}

	if err := deps.NoticeStore.Save(ctx, remaining); err != nil {
		return err
	}

	slog.Info("notice_event", "event", "notice_deleted", "notice_id", input.NoticeID, "remaining", len(remaining))
	return nil
}

// IsInvalidInput reports whether err was caused by client-correctable input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, notice.ErrInvalidInput)
}
