package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"noticeboard/internal/adapters/http/middleware"
	"noticeboard/internal/adapters/perf"
	"noticeboard/internal/application/orchestrators"
	"noticeboard/internal/application/projections"
	"noticeboard/internal/domain/notice"
)

//go:embed templates/board.html
var templateFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is omitted (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts notice content to HTML, falling back to escaped text.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func parseBoardTemplate() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/board.html")
}

// boardForm echoes the submitted create form back after a validation error.
type boardForm struct {
	Title    string
	Content  string
	Duration string
}

type boardNotice struct {
	ID       string
	Title    string
	Body     template.HTML
	Created  string
	Duration string
}

type boardView struct {
	Title          string
	Refresh        bool
	RefreshSeconds int
	Notices        []boardNotice
	Error          string
	Form           boardForm
	CSRFField      template.HTML
}

func toBoardNotice(n notice.Notice) boardNotice {
	return boardNotice{
		ID:       n.ID,
		Title:    n.Title,
		Body:     renderMarkdown(n.Content),
		Created:  n.Created().Format("2 Jan 2006 15:04 MST"),
		Duration: strconv.FormatFloat(n.Duration, 'f', -1, 64) + "s",
	}
}

func (s *Server) newBoardView(r *http.Request, msg string, form boardForm) boardView {
	return boardView{
		Title:          s.deps.BoardTitle,
		RefreshSeconds: max(1, int(s.deps.PollInterval.Seconds())),
		Error:          msg,
		Form:           form,
		CSRFField:      csrf.TemplateField(r),
	}
}

// renderBoard loads the collection and renders the list page with status.
// Only a clean 200 carries the meta refresh, so an error stays on screen.
func (s *Server) renderBoard(w http.ResponseWriter, r *http.Request, status int, msg string) {
	notices, err := projections.ListNotices(r.Context(), projections.ListNoticesDeps{NoticeStore: s.deps.NoticeStore})
	if err != nil {
		slog.Error("internal_error", "error", err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	view := s.newBoardView(r, msg, boardForm{})
	view.Refresh = status == http.StatusOK && msg == ""
	for _, n := range projections.NewestFirst(notices) {
		view.Notices = append(view.Notices, toBoardNotice(n))
	}
	s.execBoard(w, "board", status, view)
}

// renderNewNotice renders the post form. It never refreshes, so typed input survives.
func (s *Server) renderNewNotice(w http.ResponseWriter, r *http.Request, status int, msg string, form boardForm) {
	s.execBoard(w, "new", status, s.newBoardView(r, msg, form))
}

func (s *Server) execBoard(w http.ResponseWriter, name string, status int, view boardView) {
	var buf bytes.Buffer
	if err := s.board.ExecuteTemplate(&buf, name, view); err != nil {
		slog.Error("internal_error", "error", err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// boardStatus maps a service error onto a page status and message.
func boardStatus(err error) (int, string) {
	switch {
	case errors.Is(err, notice.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case projections.IsNotFound(err):
		return http.StatusNotFound, "That notice no longer exists."
	default:
		slog.Error("internal_error", "error", err.Error())
		return http.StatusInternalServerError, "Something went wrong saving the board. Please try again."
	}
}

// handleBoard handles GET /
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	s.renderBoard(w, r, http.StatusOK, "")
}

// handleBoardNew handles GET /board/new
func (s *Server) handleBoardNew(w http.ResponseWriter, r *http.Request) {
	s.renderNewNotice(w, r, http.StatusOK, "", boardForm{})
}

// handleBoardCreate handles POST /board/notices
func (s *Server) handleBoardCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	form := boardForm{
		Title:    r.PostFormValue("title"),
		Content:  r.PostFormValue("content"),
		Duration: r.PostFormValue("duration"),
	}
	if !s.deps.Gate.Check(r.PostFormValue(middleware.AdminPasswordField)) {
		slog.Warn("admin_gate_rejected", "method", r.Method, "path", r.URL.Path)
		s.renderNewNotice(w, r, http.StatusUnauthorized, "Unauthorized", form)
		return
	}

	duration, err := parseDurationText(form.Duration)
	if err == nil {
		_, err = orchestrators.ExecuteCreateNotice(r.Context(), orchestrators.CreateNoticeInput{
			Title:    form.Title,
			Content:  form.Content,
			Duration: duration,
		}, s.createDeps())
	}
	if err != nil {
		if orchestrators.IsInvalidInput(err) {
			perf.NoticeEvents.WithLabelValues("rejected").Inc()
		}
		status, msg := boardStatus(err)
		s.renderNewNotice(w, r, status, msg, form)
		return
	}
	perf.NoticeEvents.WithLabelValues("created").Inc()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleBoardDelete handles POST /board/notices/{id}/delete
func (s *Server) handleBoardDelete(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if !s.deps.Gate.Check(r.PostFormValue(middleware.AdminPasswordField)) {
		slog.Warn("admin_gate_rejected", "method", r.Method, "path", r.URL.Path)
		s.renderBoard(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	err := orchestrators.ExecuteDeleteNotice(r.Context(),
		orchestrators.DeleteNoticeInput{NoticeID: r.PathValue("id")},
		orchestrators.DeleteNoticeDeps{NoticeStore: s.deps.NoticeStore},
	)
	if err != nil {
		status, msg := boardStatus(err)
		s.renderBoard(w, r, status, msg)
		return
	}
	perf.NoticeEvents.WithLabelValues("deleted").Inc()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
