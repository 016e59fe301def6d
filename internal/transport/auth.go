package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rpggio/crmdesk/internal/domain/apikey"
	"github.com/rpggio/crmdesk/internal/domain/strlist"
)

// Authenticator resolves a bearer token to an API key.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*apikey.APIKey, error)
}

type keyCtx struct{}

// anonymousAdmin stands in for a caller when authentication is disabled.
var anonymousAdmin = &apikey.APIKey{Name: "anonymous", Scopes: strlist.List{string(apikey.ScopeAdmin)}}

// KeyFromContext returns the authenticated key, if present.
func KeyFromContext(ctx context.Context) (*apikey.APIKey, bool) {
	key, ok := ctx.Value(keyCtx{}).(*apikey.APIKey)
	return key, ok && key != nil
}

// bearerToken reads "Authorization: Bearer <token>", falling back to X-API-Key.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

// AuthMiddleware enforces API key authentication. Reads need the read scope
// and every other method needs write. With enabled false every request runs
// as an admin.
func AuthMiddleware(auth Authenticator, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				ctx := context.WithValue(r.Context(), keyCtx{}, anonymousAdmin)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := bearerToken(r)
			if token == "" {
				writeErrorCode(w, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
				return
			}

			key, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, apikey.ErrUnauthorized) {
					writeErrorCode(w, http.StatusUnauthorized, CodeUnauthorized, "invalid bearer token")
					return
				}
				writeErrorCode(w, http.StatusInternalServerError, CodeInternal, err.Error())
				return
			}

			if !key.HasScope(methodScope(r.Method)) {
				writeErrorCode(w, http.StatusForbidden, CodeForbidden, "api key lacks "+string(methodScope(r.Method))+" scope")
				return
			}

			ctx := context.WithValue(r.Context(), keyCtx{}, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope rejects requests whose key lacks scope. It must run after AuthMiddleware.
func RequireScope(scope apikey.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := KeyFromContext(r.Context())
			if !ok {
				writeErrorCode(w, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
				return
			}
			if !key.HasScope(scope) {
				writeErrorCode(w, http.StatusForbidden, CodeForbidden, "api key lacks "+string(scope)+" scope")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func methodScope(method string) apikey.Scope {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return apikey.ScopeRead
	default:
		return apikey.ScopeWrite
	}
}
