package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	apperrors "turfbook/pkg/errors"
	httputil "turfbook/pkg/http"
)

const principalKey contextKey = "principal"

// Principal is the request-scoped identity extracted from a bearer token.
// Handlers read it from the context instead of any process-wide session
// state.
type Principal struct {
	ID   string
	Role string
}

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Authenticated verifies the Authorization bearer token and injects the
// principal into the request context before calling next.
func Authenticated(secret string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, err := verifyBearer(r, secret)
		if err != nil {
			_ = httputil.WriteError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireRole is Authenticated plus a role check.
func RequireRole(secret, role string, next httprouter.Handle) httprouter.Handle {
	return Authenticated(secret, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, _ := PrincipalFrom(r.Context())
		if principal.Role != role {
			_ = httputil.WriteError(w, apperrors.Forbidden(fmt.Sprintf("requires %s role", role)))
			return
		}
		next(w, r, ps)
	})
}

func verifyBearer(r *http.Request, secret string) (Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Principal{}, apperrors.Unauthorized("missing Authorization header")
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return Principal{}, apperrors.Unauthorized("Authorization header must use Bearer scheme")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Principal{}, apperrors.Unauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, apperrors.Unauthorized("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return Principal{}, apperrors.Unauthorized("token missing subject")
	}

	return Principal{ID: sub, Role: role}, nil
}
