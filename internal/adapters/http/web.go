package web

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"noticeboard/internal/adapters/http/middleware"
	"noticeboard/internal/adapters/perf"
	"noticeboard/internal/application/orchestrators"
)

// Deps holds everything the HTTP surface needs. Nothing is global.
type Deps struct {
	NoticeStore orchestrators.NoticeStoreForOrchestrator
	Announcer   orchestrators.NoticeAnnouncer // optional
	Gate        *middleware.AdminGate
	Collector   *perf.Collector // optional

	// StaticDir is served under /static/ when non-empty.
	StaticDir string
	// CSRFKey is 32 bytes; a random key is generated when nil.
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	// RateLimitPerSecond is the per-IP request budget.
	RateLimitPerSecond int

	BoardTitle   string
	PollInterval time.Duration
}

// Server carries the handlers' dependencies.
type Server struct {
	deps  Deps
	board *template.Template
}

// csrfKeyOrRandom returns key, or a fresh random key when none is configured.
func csrfKeyOrRandom(key []byte) ([]byte, error) {
	if key != nil {
		if len(key) != 32 {
			return nil, fmt.Errorf("csrf key must be 32 bytes, got %d", len(key))
		}
		return key, nil
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	slog.Warn("csrf_key_random", "detail", "board form tokens will not survive a restart; set server.csrf_key")
	return key, nil
}

// NewMux wires HTTP handlers and middleware. ctx bounds background work
// started for the handler (the rate limiter sweep).
func NewMux(ctx context.Context, d Deps) (http.Handler, error) {
	if d.NoticeStore == nil {
		return nil, errors.New("web: NoticeStore is required")
	}
	if d.Gate == nil {
		return nil, errors.New("web: Gate is required")
	}
	if d.RateLimitPerSecond <= 0 {
		d.RateLimitPerSecond = 20
	}
	if d.PollInterval <= 0 {
		d.PollInterval = 5 * time.Second
	}
	if d.BoardTitle == "" {
		d.BoardTitle = "Noticeboard"
	}

	csrfKey, err := csrfKeyOrRandom(d.CSRFKey)
	if err != nil {
		return nil, err
	}
	board, err := parseBoardTemplate()
	if err != nil {
		return nil, err
	}

	s := &Server{deps: d, board: board}
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	limiter := middleware.NewRateLimiter(ctx, d.RateLimitPerSecond, time.Second)

	// Timing -> RateLimit -> SecurityHeaders -> CSRF -> AdminGate -> Mux
	return middleware.Chain(mux,
		middleware.RequireAdminForMutations(d.Gate, "/api/notices"),
		middleware.CSRF(csrfKey, d.SecureCookies, d.TrustedOrigins),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.Timing(d.Collector),
	), nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// JSON API
	mux.HandleFunc("GET /api/notices", s.handleListNotices)
	mux.HandleFunc("POST /api/notices", s.handleCreateNotice)
	mux.HandleFunc("GET /api/notices/{id}", s.handleGetNotice)
	mux.HandleFunc("DELETE /api/notices/{id}", s.handleDeleteNotice)
	mux.HandleFunc("PUT /api/notices/{id}", s.handleUpdateNotice)

	// Board page
	mux.HandleFunc("GET /{$}", s.handleBoard)
	mux.HandleFunc("GET /board/new", s.handleBoardNew)
	mux.HandleFunc("POST /board/notices", s.handleBoardCreate)
	mux.HandleFunc("POST /board/notices/{id}/delete", s.handleBoardDelete)

	// Operations
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.Handle("GET /metrics", perf.MetricsHandler())
	mux.Handle("GET /api/perf", s.deps.Gate.Protect(http.HandlerFunc(s.handlePerf)))

	if s.deps.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.deps.StaticDir))))
	}
}
