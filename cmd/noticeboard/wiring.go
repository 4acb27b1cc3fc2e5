package main

import (
	"log/slog"

	"noticeboard/internal/adapters/email"
	web "noticeboard/internal/adapters/http"
	"noticeboard/internal/adapters/http/middleware"
	"noticeboard/internal/adapters/perf"
	"noticeboard/internal/application/orchestrators"
	"noticeboard/internal/config"
)

// buildGate hashes the configured password, or adopts the configured hash.
func buildGate(cfg *config.Config) (*middleware.AdminGate, error) {
	if cfg.Admin.PasswordHash != "" {
		return middleware.NewAdminGateFromHash(cfg.Admin.PasswordHash)
	}
	if cfg.Admin.Password == config.DefaultAdminPassword {
		slog.Warn("default_admin_password", "detail", "set NOTICEBOARD_ADMIN_PASSWORD before exposing the board")
	}
	return middleware.NewAdminGate(cfg.Admin.Password, 0)
}

// buildAnnouncer returns nil when no recipients are configured. Without a
// Resend key, announcements are logged by the noop sender.
func buildAnnouncer(cfg *config.Config) orchestrators.NoticeAnnouncer {
	if len(cfg.Mail.To) == 0 {
		return nil
	}
	var sender email.Sender
	if cfg.Mail.ResendKey != "" {
		sender = email.NewResendSender(cfg.Mail.ResendKey, cfg.Mail.From)
	} else {
		slog.Info("mail_disabled", "detail", "no resend key; announcements are logged only")
		sender = email.NewNoopSender()
	}
	return email.NewAnnouncer(sender, cfg.Mail.To)
}

// buildWebDeps maps the effective configuration onto the HTTP layer.
func buildWebDeps(cfg *config.Config, store orchestrators.NoticeStoreForOrchestrator, gate *middleware.AdminGate, collector *perf.Collector) web.Deps {
	return web.Deps{
		NoticeStore:        store,
		Announcer:          buildAnnouncer(cfg),
		Gate:               gate,
		Collector:          collector,
		StaticDir:          cfg.Server.StaticDir,
		CSRFKey:            cfg.CSRFKeyBytes(),
		SecureCookies:      cfg.IsProduction(),
		TrustedOrigins:     cfg.Server.TrustedOrigins,
		RateLimitPerSecond: cfg.Server.RateLimit,
		BoardTitle:         cfg.Board.Title,
		PollInterval:       cfg.Board.PollInterval,
	}
}
