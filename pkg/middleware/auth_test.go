package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

const authTestSecret = "auth-test-secret"

func signTestToken(t *testing.T, secret, sub, role string, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestAuthenticated(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantSub    string
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + "VALID",
			wantStatus: http.StatusOK,
			wantSub:    "user-1",
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic abc123",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	validToken := signTestToken(t, authTestSecret, "user-1", "player", time.Hour)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPrincipal Principal
			var called bool
			handler := Authenticated(authTestSecret, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
				called = true
				gotPrincipal, _ = PrincipalFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader == "Bearer VALID" {
				req.Header.Set("Authorization", "Bearer "+validToken)
			} else if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			handler(rec, req, nil)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if !called {
					t.Fatal("next handler never called for a valid token")
				}
				if gotPrincipal.ID != tt.wantSub {
					t.Errorf("principal ID = %q, want %q", gotPrincipal.ID, tt.wantSub)
				}
			} else if called {
				t.Error("next handler called despite rejected token")
			}
		})
	}
}

func TestAuthenticated_RejectsExpiredToken(t *testing.T) {
	expired := signTestToken(t, authTestSecret, "user-1", "player", -time.Minute)

	handler := Authenticated(authTestSecret, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Error("next handler called with an expired token")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+expired)

	rec := httptest.NewRecorder()
	handler(rec, req, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticated_RejectsWrongSecret(t *testing.T) {
	forged := signTestToken(t, "another-secret", "user-1", "player", time.Hour)

	handler := Authenticated(authTestSecret, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Error("next handler called with a token signed by the wrong secret")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+forged)

	rec := httptest.NewRecorder()
	handler(rec, req, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"matching role", "owner", http.StatusOK},
		{"wrong role", "player", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signTestToken(t, authTestSecret, "user-1", tt.role, time.Hour)

			handler := RequireRole(authTestSecret, "owner", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			rec := httptest.NewRecorder()
			handler(rec, req, nil)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
