package projections

import (
	"context"
	"errors"
	"fmt"

	"noticeboard/internal/domain/notice"
)

// NoticeLoader defines the store interface needed by the notice projections.
type NoticeLoader interface {
	Load(ctx context.Context) ([]notice.Notice, error)
}

// ListNoticesDeps holds dependencies for ListNotices.
type ListNoticesDeps struct {
	NoticeStore NoticeLoader
}

// ListNotices returns the whole collection in insertion order.
// PRE: deps.NoticeStore is set
// POST: Returns the persisted collection as-is (empty, never nil, on success)
func ListNotices(ctx context.Context, deps ListNoticesDeps) ([]notice.Notice, error) {
	notices, err := deps.NoticeStore.Load(ctx)
	if err != nil {
		return nil, err
	}
	if notices == nil {
		notices = []notice.Notice{}
	}
	return notices, nil
}

// GetNoticeQuery carries input for GetNotice.
type GetNoticeQuery struct {
	ID string
}

// GetNoticeDeps holds dependencies for GetNotice.
type GetNoticeDeps struct {
	NoticeStore NoticeLoader
}

// GetNotice returns the first notice whose id matches.
// PRE: deps.NoticeStore is set
// POST: Returns the notice, or an error wrapping notice.ErrNotFound
func GetNotice(ctx context.Context, query GetNoticeQuery, deps GetNoticeDeps) (notice.Notice, error) {
	if query.ID == "" {
		return notice.Notice{}, fmt.Errorf("%w: empty id", notice.ErrNotFound)
	}
	notices, err := deps.NoticeStore.Load(ctx)
	if err != nil {
		return notice.Notice{}, err
	}
	i := notice.IndexOf(notices, query.ID)
	if i < 0 {
		return notice.Notice{}, fmt.Errorf("%w: %s", notice.ErrNotFound, query.ID)
	}
	return notices[i], nil
}

// NewestFirst returns a reversed copy of notices, as the board displays them.
func NewestFirst(notices []notice.Notice) []notice.Notice {
	out := make([]notice.Notice, len(notices))
	for i, n := range notices {
		out[len(notices)-1-i] = n
	}
	return out
}

// IsNotFound reports whether err is a missing-notice error.
func IsNotFound(err error) bool {
	return errors.Is(err, notice.ErrNotFound)
}
