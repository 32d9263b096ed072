package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fernet/fernet-go"
)

func generateKey(t *testing.T) *fernet.Key {
	t.Helper()
	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate fernet key: %v", err)
	}
	return &key
}

func issueToken(t *testing.T, key *fernet.Key, identity Identity) string {
	t.Helper()
	payload, err := json.Marshal(identity)
	if err != nil {
		t.Fatalf("Failed to marshal identity: %v", err)
	}
	token, err := fernet.EncryptAndSign(payload, key)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return string(token)
}

func TestIdentityMiddleware_Handler(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token attaches identity to context", func(t *testing.T) {
		key := generateKey(t)
		m, err := NewIdentityMiddleware(key.Encode())
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		token := issueToken(t, key, Identity{InvestorID: "inv-1", Role: RoleInvestor})

		var got Identity
		var found bool
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, found = IdentityFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/investor", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		m.Handler(inner).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !found {
			t.Fatal("Expected identity in context")
		}
		if got.InvestorID != "inv-1" || got.Role != RoleInvestor {
			t.Errorf("Expected identity inv-1/investor, got %+v", got)
		}
	})

	t.Run("invalid token is rejected with 401", func(t *testing.T) {
		key := generateKey(t)
		m, err := NewIdentityMiddleware(key.Encode())
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/investor", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()

		m.Handler(okHandler).ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("token signed with a different key is rejected", func(t *testing.T) {
		key := generateKey(t)
		otherKey := generateKey(t)
		m, err := NewIdentityMiddleware(key.Encode())
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		token := issueToken(t, otherKey, Identity{InvestorID: "inv-1", Role: RoleAdmin})

		req := httptest.NewRequest(http.MethodGet, "/api/investor", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		m.Handler(okHandler).ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing token passes through anonymously", func(t *testing.T) {
		key := generateKey(t)
		m, err := NewIdentityMiddleware(key.Encode())
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		m.Handler(okHandler).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("empty key disables verification", func(t *testing.T) {
		m, err := NewIdentityMiddleware("")
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/investor", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()

		m.Handler(okHandler).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 with verification disabled, got %d", w.Code)
		}
	})
}

func TestIdentityMiddleware_RequireIdentity(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("any verified identity passes", func(t *testing.T) {
		key := generateKey(t)
		m, err := NewIdentityMiddleware(key.Encode())
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		token := issueToken(t, key, Identity{InvestorID: "inv-1", Role: RoleInvestor})

		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/request", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		m.Handler(m.RequireIdentity(okHandler)).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("anonymous request is unauthorized", func(t *testing.T) {
		key := generateKey(t)
		m, err := NewIdentityMiddleware(key.Encode())
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/request", nil)
		w := httptest.NewRecorder()

		m.Handler(m.RequireIdentity(okHandler)).ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestIdentityMiddleware_RequireAdmin(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin token passes", func(t *testing.T) {
		key := generateKey(t)
		m, err := NewIdentityMiddleware(key.Encode())
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		token := issueToken(t, key, Identity{InvestorID: "inv-1", Role: RoleAdmin})

		req := httptest.NewRequest(http.MethodPost, "/api/valuation/run", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		m.Handler(m.RequireAdmin(okHandler)).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("investor token is forbidden", func(t *testing.T) {
		key := generateKey(t)
		m, err := NewIdentityMiddleware(key.Encode())
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		token := issueToken(t, key, Identity{InvestorID: "inv-1", Role: RoleInvestor})

		req := httptest.NewRequest(http.MethodPost, "/api/valuation/run", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		m.Handler(m.RequireAdmin(okHandler)).ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("anonymous request is unauthorized", func(t *testing.T) {
		key := generateKey(t)
		m, err := NewIdentityMiddleware(key.Encode())
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/valuation/run", nil)
		w := httptest.NewRecorder()

		m.Handler(m.RequireAdmin(okHandler)).ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("disabled verification admits everyone", func(t *testing.T) {
		m, err := NewIdentityMiddleware("")
		if err != nil {
			t.Fatalf("NewIdentityMiddleware() returned unexpected error: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/valuation/run", nil)
		w := httptest.NewRecorder()

		m.RequireAdmin(okHandler).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200 with verification disabled, got %d", w.Code)
		}
	})
}
