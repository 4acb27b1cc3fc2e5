package notice

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ISOLayout is the createdAtISO format: UTC with millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Error taxonomy shared by the store, the application layer and HTTP.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("notice not found")
	ErrStorage      = errors.New("storage error")
)

// Domain errors
var (
	ErrEmptyTitle      = fmt.Errorf("%w: title is required", ErrInvalidInput)
	ErrEmptyContent    = fmt.Errorf("%w: content is required", ErrInvalidInput)
	ErrInvalidDuration = fmt.Errorf("%w: duration must be a positive number", ErrInvalidInput)
)

// Notice is a single noticeboard entry.
// Content may contain Markdown; Duration is the advisory display time in seconds.
type Notice struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Duration     float64 `json:"duration"`
	CreatedAt    int64   `json:"createdAt"`    // epoch milliseconds
	CreatedAtISO string  `json:"createdAtISO"` // same instant as CreatedAt
}

// New builds a trimmed, validated Notice stamped with now.
// PRE: id is unique within the collection
// POST: Returns a valid Notice or an error wrapping ErrInvalidInput
func New(id, title, content string, duration float64, now time.Time) (Notice, error) {
	n := Notice{
		ID:       id,
		Title:    strings.TrimSpace(title),
		Content:  strings.TrimSpace(content),
		Duration: duration,
	}
	if err := n.Validate(); err != nil {
		return Notice{}, err
	}
	n.Stamp(now)
	return n, nil
}

// Validate checks if the Notice has valid data.
// PRE: Notice struct is populated
// POST: Returns nil if valid, error otherwise
func (n *Notice) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}
	if !ValidDuration(n.Duration) {
		return ErrInvalidDuration
	}
	return nil
}

// Stamp sets both creation timestamp fields from a single instant.
func (n *Notice) Stamp(now time.Time) {
	utc := now.UTC()
	n.CreatedAt = utc.UnixMilli()
	n.CreatedAtISO = utc.Format(ISOLayout)
}

// Created returns the creation instant as a time.Time.
// INVARIANT: Notice fields are not mutated
func (n *Notice) Created() time.Time {
	return time.UnixMilli(n.CreatedAt).UTC()
}

// ValidDuration reports whether d is a finite number greater than zero.
func ValidDuration(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}

// IndexOf returns the position of the first notice with the given id, or -1.
func IndexOf(notices []Notice, id string) int {
	for i := range notices {
		if notices[i].ID == id {
			return i
		}
	}
	return -1
}

// Without returns a new slice holding every notice whose id differs from id.
// The input slice is not modified.
func Without(notices []Notice, id string) []Notice {
	out := make([]Notice, 0, len(notices))
	for _, n := range notices {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}
