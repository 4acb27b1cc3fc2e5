// Package config loads noticeboard configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAdminPassword is the development password; production refuses it.
const DefaultAdminPassword = "3551"

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config represents the complete noticeboard configuration.
type Config struct {
	Env     string        `yaml:"env"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Admin   AdminConfig   `yaml:"admin"`
	Board   BoardConfig   `yaml:"board"`
	Mail    MailConfig    `yaml:"mail"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address (default ":5000").
	Addr string `yaml:"addr"`
	// StaticDir is served under /static/ when non-empty.
	StaticDir string `yaml:"static_dir"`
	// RateLimit is requests per second per client IP.
	RateLimit int `yaml:"rate_limit"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// CSRFKey is a 64-character hex string (32 bytes). Random per start when empty.
	CSRFKey string `yaml:"csrf_key"`
	// TrustedOrigins lists extra hosts allowed to post board forms, for
	// deployments behind a reverse proxy on another host name.
	TrustedOrigins []string `yaml:"trusted_origins,omitempty"`
}

// StorageConfig selects and locates the notice store.
type StorageConfig struct {
	// Backend is "json" (default) or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the JSON document or SQLite database file.
	Path string `yaml:"path"`
}

// AdminConfig configures the shared-secret gate for mutations.
type AdminConfig struct {
	// Password is the plaintext shared secret.
	Password string `yaml:"password"`
	// PasswordHash is a bcrypt hash used instead of Password when set.
	PasswordHash string `yaml:"password_hash"`
}

// BoardConfig configures the server-rendered board page.
type BoardConfig struct {
	// Title is shown in the page heading.
	Title string `yaml:"title"`
	// PollInterval is the page auto-refresh interval.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// MailConfig configures optional email announcements of new notices.
type MailConfig struct {
	// ResendKey enables delivery through Resend when non-empty.
	ResendKey string `yaml:"resend_key"`
	// From is the sender address.
	From string `yaml:"from"`
	// To lists announcement recipients; no recipients disables announcements.
	To []string `yaml:"to"`
}

// DefaultConfig returns a Config with development defaults.
func DefaultConfig() *Config {
	return &Config{
		Env: EnvDevelopment,
		Server: ServerConfig{
			Addr:            ":5000",
			StaticDir:       "public",
			RateLimit:       20,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Backend: "json",
			Path:    "db.json",
		},
		Admin: AdminConfig{
			Password: DefaultAdminPassword,
		},
		Board: BoardConfig{
			Title:        "Noticeboard",
			PollInterval: 5 * time.Second,
		},
		Mail: MailConfig{
			From: "Noticeboard <noreply@example.com>",
		},
	}
}

// IsProduction reports whether the production environment is configured.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be json or sqlite, got %q", c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive")
	}
	if c.Board.PollInterval <= 0 {
		return fmt.Errorf("board.poll_interval must be positive")
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return fmt.Errorf("admin.password or admin.password_hash is required")
	}
	if c.Server.CSRFKey != "" {
		key, err := hex.DecodeString(c.Server.CSRFKey)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("server.csrf_key must be 64 hex characters (32 bytes)")
		}
	}
	if c.IsProduction() {
		if c.Admin.PasswordHash == "" && c.Admin.Password == DefaultAdminPassword {
			return fmt.Errorf("the default admin password is not allowed in production")
		}
		if c.Server.CSRFKey == "" {
			return fmt.Errorf("server.csrf_key is required in production")
		}
	}
	return nil
}

// CSRFKeyBytes decodes the configured CSRF key; nil when unset.
// PRE: Validate has passed
func (c *Config) CSRFKeyBytes() []byte {
	if c.Server.CSRFKey == "" {
		return nil
	}
	key, _ := hex.DecodeString(c.Server.CSRFKey)
	return key
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		fromFile, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fromFile
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables read through lookup.
// NOTICEBOARD_* names win over the bare PORT and ADMIN_PASSWORD fallbacks.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}

	if v, ok := get("NOTICEBOARD_ENV"); ok {
		c.Env = v
	}
	if v, ok := get("NOTICEBOARD_ADDR"); ok {
		c.Server.Addr = v
	} else if v, ok := get("PORT"); ok {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := get("NOTICEBOARD_STATIC_DIR"); ok {
		c.Server.StaticDir = v
	}
	if v, ok := get("NOTICEBOARD_CSRF_KEY"); ok {
		c.Server.CSRFKey = v
	}
	if v, ok := get("NOTICEBOARD_RATE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTICEBOARD_RATE_LIMIT: %w", err)
		}
		c.Server.RateLimit = n
	}
	if v, ok := get("NOTICEBOARD_BACKEND"); ok {
		c.Storage.Backend = v
	}
	if v, ok := get("NOTICEBOARD_DATA_PATH"); ok {
		c.Storage.Path = v
	}
	if v, ok := get("NOTICEBOARD_ADMIN_PASSWORD", "ADMIN_PASSWORD"); ok {
		c.Admin.Password = v
	}
	if v, ok := get("NOTICEBOARD_ADMIN_PASSWORD_HASH"); ok {
		c.Admin.PasswordHash = v
	}
	if v, ok := get("NOTICEBOARD_POLL_SECONDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTICEBOARD_POLL_SECONDS: %w", err)
		}
		c.Board.PollInterval = time.Duration(n) * time.Second
	}
	if v, ok := get("NOTICEBOARD_RESEND_KEY"); ok {
		c.Mail.ResendKey = v
	}
	if v, ok := get("NOTICEBOARD_MAIL_FROM"); ok {
		c.Mail.From = v
	}
	if v, ok := get("NOTICEBOARD_TRUSTED_ORIGINS"); ok {
		c.Server.TrustedOrigins = splitList(v)
	}
	if v, ok := get("NOTICEBOARD_MAIL_TO"); ok {
		c.Mail.To = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
