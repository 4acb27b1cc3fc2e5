package notice_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"noticeboard/internal/domain/notice"
)

// TestNotice_Validate tests validation of Notice.
func TestNotice_Validate(t *testing.T) {
	tests := []struct {
		name    string
		notice  notice.Notice
		wantErr error
	}{
		{
			name:   "valid notice",
			notice: notice.Notice{ID: "1", Title: "Fire drill", Content: "Evacuate at noon", Duration: 30},
		},
		{
			name:   "fractional duration",
			notice: notice.Notice{ID: "2", Title: "t", Content: "c", Duration: 0.5},
		},
		{
			name:    "empty title",
			notice:  notice.Notice{ID: "3", Content: "content", Duration: 5},
			wantErr: notice.ErrEmptyTitle,
		},
		{
			name:    "whitespace title",
			notice:  notice.Notice{ID: "4", Title: "   ", Content: "content", Duration: 5},
			wantErr: notice.ErrEmptyTitle,
		},
		{
			name:    "empty content",
			notice:  notice.Notice{ID: "5", Title: "title", Duration: 5},
			wantErr: notice.ErrEmptyContent,
		},
		{
			name:    "zero duration",
			notice:  notice.Notice{ID: "6", Title: "t", Content: "c"},
			wantErr: notice.ErrInvalidDuration,
		},
		{
			name:    "negative duration",
			notice:  notice.Notice{ID: "7", Title: "t", Content: "c", Duration: -1},
			wantErr: notice.ErrInvalidDuration,
		},
		{
			name:    "NaN duration",
			notice:  notice.Notice{ID: "8", Title: "t", Content: "c", Duration: math.NaN()},
			wantErr: notice.ErrInvalidDuration,
		},
		{
			name:    "infinite duration",
			notice:  notice.Notice{ID: "9", Title: "t", Content: "c", Duration: math.Inf(1)},
			wantErr: notice.ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.notice.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && !errors.Is(err, notice.ErrInvalidInput) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidInput", err)
			}
		})
	}
}

// TestNew_TrimsAndStamps tests that New trims text and sets both timestamps from one instant.
func TestNew_TrimsAndStamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 250_000_000, time.UTC)
	n, err := notice.New("id-1", "  Fire drill ", "\tEvacuate at noon\n", 30, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Title != "Fire drill" {
		t.Errorf("Title = %q, want %q", n.Title, "Fire drill")
	}
	if n.Content != "Evacuate at noon" {
		t.Errorf("Content = %q, want %q", n.Content, "Evacuate at noon")
	}
	if n.CreatedAt != now.UnixMilli() {
		t.Errorf("CreatedAt = %d, want %d", n.CreatedAt, now.UnixMilli())
	}
	if n.CreatedAtISO != "2026-03-01T12:00:00.250Z" {
		t.Errorf("CreatedAtISO = %q", n.CreatedAtISO)
	}
	if !n.Created().Equal(now) {
		t.Errorf("Created() = %v, want %v", n.Created(), now)
	}
}

// TestNew_Invalid tests that New rejects invalid input without stamping.
func TestNew_Invalid(t *testing.T) {
	_, err := notice.New("id-1", "", "x", 5, time.Now())
	if !errors.Is(err, notice.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// TestStamp_ConvertsToUTC tests that non-UTC instants are normalised.
func TestStamp_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("NZDT", 13*3600)
	var n notice.Notice
	n.Stamp(time.Date(2026, 3, 2, 1, 0, 0, 0, loc))
	if n.CreatedAtISO != "2026-03-01T12:00:00.000Z" {
		t.Errorf("CreatedAtISO = %q, want UTC", n.CreatedAtISO)
	}
}

// TestWithout tests filtering by id.
func TestWithout(t *testing.T) {
	list := []notice.Notice{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	out := notice.Without(list, "b")
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Errorf("Without = %+v", out)
	}
	if len(list) != 3 || list[1].ID != "b" {
		t.Error("input slice was modified")
	}
	if got := notice.Without(list, "zzz"); len(got) != 3 {
		t.Errorf("Without(missing) len = %d, want 3", len(got))
	}
}

// TestIndexOf tests lookup by id.
func TestIndexOf(t *testing.T) {
	list := []notice.Notice{{ID: "a"}, {ID: "b"}}
	if i := notice.IndexOf(list, "b"); i != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", i)
	}
	if i := notice.IndexOf(list, "x"); i != -1 {
		t.Errorf("IndexOf(x) = %d, want -1", i)
	}
	if i := notice.IndexOf(nil, "x"); i != -1 {
		t.Errorf("IndexOf(nil) = %d, want -1", i)
	}
}
