package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/quantora/fund-management-backend/internal/api/response"
	"github.com/quantora/fund-management-backend/internal/apperrors"
)

// Identity is the caller identity carried by a verified token.
type Identity struct {
	InvestorID string `json:"investorId"`
	Role       string `json:"role"`
}

// Role values issued by the identity provider.
const (
	RoleAdmin    = "admin"
	RoleInvestor = "investor"
)

type contextKey string

const identityContextKey contextKey = "identity"

// tokenTTL bounds how old an identity token may be.
const tokenTTL = 24 * time.Hour

// IdentityMiddleware verifies fernet identity tokens and attaches the
// decoded Identity to the request context. Requests without a token pass
// through anonymously; role checks happen in RequireAdmin or in handlers.
type IdentityMiddleware struct {
	keys []*fernet.Key
}

// NewIdentityMiddleware creates an IdentityMiddleware from the base64 fernet
// key shared with the identity provider. An empty key disables verification
// and every request is treated as anonymous.
func NewIdentityMiddleware(key string) (*IdentityMiddleware, error) {
	if key == "" {
		return &IdentityMiddleware{}, nil
	}

	keys, err := fernet.DecodeKeys(key)
	if err != nil {
		return nil, err
	}
	return &IdentityMiddleware{keys: keys}, nil
}

// Handler decodes the Authorization bearer token, if present and verifiable,
// into the request context. Invalid tokens are rejected with 401 rather than
// silently downgraded to anonymous.
func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.keys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")

		payload := fernet.VerifyAndDecrypt([]byte(token), tokenTTL, m.keys)
		if payload == nil {
			response.RespondError(w, http.StatusUnauthorized, "invalid identity token", "")
			return
		}

		var identity Identity
		if err := json.Unmarshal(payload, &identity); err != nil {
			response.RespondError(w, http.StatusUnauthorized, "malformed identity token", err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the caller identity attached by the middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}

// RequireIdentity rejects requests that carry no verified identity. When
// verification is disabled (no key configured), all requests pass.
func (m *IdentityMiddleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.keys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := IdentityFromContext(r.Context()); !ok {
			response.RespondError(w, http.StatusUnauthorized, "identity token required", "")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose verified identity does not carry the
// admin role. When verification is disabled (no key configured), all
// requests pass; local development runs without an identity provider.
func (m *IdentityMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.keys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			response.RespondError(w, http.StatusUnauthorized, "identity token required", "")
			return
		}
		if identity.Role != RoleAdmin {
			response.RespondError(w, http.StatusForbidden, apperrors.ErrForbidden.Error(), "admin role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
