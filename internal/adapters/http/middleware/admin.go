package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminPasswordHeader carries the shared secret on API requests.
const AdminPasswordHeader = "X-Admin-Password"

// AdminPasswordField is the query, JSON body and form field fallback for the shared secret.
const AdminPasswordField = "admin_password"

// maxGateBody bounds how much of a JSON body the gate buffers to find the credential.
const maxGateBody = 1 << 20

// AdminGate compares a candidate password against a bcrypt hash of the
// configured shared secret. It is a single static password, not an identity.
type AdminGate struct {
	hash []byte
}

// NewAdminGate hashes password at the given bcrypt cost (bcrypt.DefaultCost when 0).
// PRE: password is non-empty
// POST: Returns a gate that accepts exactly password
func NewAdminGate(password string, cost int) (*AdminGate, error) {
	if password == "" {
		return nil, errors.New("admin password is empty")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AdminGate{hash: hash}, nil
}

// NewAdminGateFromHash uses an existing bcrypt hash.
func NewAdminGateFromHash(hash string) (*AdminGate, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	return &AdminGate{hash: []byte(hash)}, nil
}

// Check reports whether candidate is the shared secret.
func (g *AdminGate) Check(candidate string) bool {
	if candidate == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.hash, []byte(candidate)) == nil
}

// Protect returns a handler that rejects every request without a valid credential.
func (g *AdminGate) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Check(CredentialFromRequest(r)) {
			slog.Warn("admin_gate_rejected", "method", r.Method, "path", r.URL.Path)
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminForMutations returns middleware gating POST, PUT, PATCH and
// DELETE requests whose path starts with prefix. Other requests pass through.
func RequireAdminForMutations(g *AdminGate, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		protected := g.Protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isMutation(r.Method) && strings.HasPrefix(r.URL.Path, prefix) {
				protected.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// CredentialFromRequest extracts the shared secret from, in order: the
// X-Admin-Password header, the admin_password query parameter, or the
// admin_password field of a JSON body. A buffered body is restored for the
// next handler.
func CredentialFromRequest(r *http.Request) string {
	if v := r.Header.Get(AdminPasswordHeader); v != "" {
		return v
	}
	if v := r.URL.Query().Get(AdminPasswordField); v != "" {
		return v
	}
	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxGateBody))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var probe struct {
		AdminPassword string `json:"admin_password"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return ""
	}
	return probe.AdminPassword
}

// writeJSONError writes {"error": msg} with the given status.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
