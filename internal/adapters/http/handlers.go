package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"noticeboard/internal/adapters/perf"
	"noticeboard/internal/application/orchestrators"
	"noticeboard/internal/application/projections"
	"noticeboard/internal/domain/notice"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// writeJSON writes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// internalError logs the real error and returns a generic message to the client.
// Store errors carry file paths; they never reach the response.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// writeServiceError maps the notice error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notice.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case projections.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Notice not found")
	default:
		internalError(w, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeErrorMessage names the offending field when the body carried one the
// API does not accept; other decode failures get a generic message.
func decodeErrorMessage(err error) string {
	// encoding/json has no typed error for DisallowUnknownFields.
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return "unknown field " + field
	}
	return "Invalid JSON body"
}

// createNoticeRequest is the POST /api/notices body. AdminPassword is
// accepted so clients may send the secret inline; it is never stored.
type createNoticeRequest struct {
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Duration      json.RawMessage `json:"duration"`
	AdminPassword string          `json:"admin_password,omitempty"`
}

// parseDuration accepts a JSON number or a string holding one.
// PRE: raw is the undecoded duration value (may be empty)
// POST: Returns the number, or notice.ErrInvalidDuration
func parseDuration(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, notice.ErrInvalidDuration
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, notice.ErrInvalidDuration
		}
		return parseDurationText(s)
	}
	var d float64
	if err := json.Unmarshal(raw, &d); err != nil {
		return 0, notice.ErrInvalidDuration
	}
	return d, nil
}

// parseDurationText parses a form or string duration.
func parseDurationText(s string) (float64, error) {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, notice.ErrInvalidDuration
	}
	return d, nil
}

func (s *Server) createDeps() orchestrators.CreateNoticeDeps {
	return orchestrators.CreateNoticeDeps{
		NoticeStore: s.deps.NoticeStore,
		GenerateID:  generateID,
		Now:         timeNow,
		Announcer:   s.deps.Announcer,
	}
}

// handleListNotices handles GET /api/notices
func (s *Server) handleListNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := projections.ListNotices(r.Context(), projections.ListNoticesDeps{NoticeStore: s.deps.NoticeStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notices)
}

// handleGetNotice handles GET /api/notices/{id}
func (s *Server) handleGetNotice(w http.ResponseWriter, r *http.Request) {
	n, err := projections.GetNotice(r.Context(),
		projections.GetNoticeQuery{ID: r.PathValue("id")},
		projections.GetNoticeDeps{NoticeStore: s.deps.NoticeStore},
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleCreateNotice handles POST /api/notices
func (s *Server) handleCreateNotice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req createNoticeRequest
	if err := strictDecode(r, &req); err != nil {
		perf.NoticeEvents.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, decodeErrorMessage(err))
		return
	}
	duration, err := parseDuration(req.Duration)
	if err != nil {
		perf.NoticeEvents.WithLabelValues("rejected").Inc()
		writeServiceError(w, err)
		return
	}

	n, err := orchestrators.ExecuteCreateNotice(r.Context(), orchestrators.CreateNoticeInput{
		Title:    req.Title,
		Content:  req.Content,
		Duration: duration,
	}, s.createDeps())
	if err != nil {
		if orchestrators.IsInvalidInput(err) {
			perf.NoticeEvents.WithLabelValues("rejected").Inc()
		}
		writeServiceError(w, err)
		return
	}
	perf.NoticeEvents.WithLabelValues("created").Inc()
	writeJSON(w, http.StatusCreated, n)
}

// handleDeleteNotice handles DELETE /api/notices/{id}
func (s *Server) handleDeleteNotice(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteNotice(r.Context(),
		orchestrators.DeleteNoticeInput{NoticeID: r.PathValue("id")},
		orchestrators.DeleteNoticeDeps{NoticeStore: s.deps.NoticeStore},
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	perf.NoticeEvents.WithLabelValues("deleted").Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleUpdateNotice handles PUT /api/notices/{id}. Notices are immutable;
// clients delete and re-create instead.
func (s *Server) handleUpdateNotice(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, DELETE")
	writeError(w, http.StatusMethodNotAllowed, "Notices cannot be edited; delete and re-create instead")
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePerf handles GET /api/perf?window=15m
func (s *Server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.deps.Collector == nil {
		writeError(w, http.StatusNotFound, "Performance collection is disabled")
		return
	}
	window := time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid window %q", v))
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, s.deps.Collector.Snapshot(timeNow().Add(-window), 10))
}
