// Package middleware holds the layers wrapped around route handlers.
//
// A middleware is a func(next http.Handler) http.Handler: it does its part
// (authenticate, rate limit, ...) and then calls next, or answers the
// request itself and stops the chain.
//
// The auth gate is the exception that proves the rule: it only decides
// whether a request is authenticated and always calls next. Require and
// RequireRole are what actually turn requests away.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/adarshgogate/BloodDonorApp/handlers"
	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
	"github.com/adarshgogate/BloodDonorApp/pkg/logger"
	"github.com/adarshgogate/BloodDonorApp/services"
)

// AuthErrorHeader carries a short reason when a presented token was not
// accepted. It is informational; it never changes the status code.
const AuthErrorHeader = "X-Auth-Error"

// TokenDecoder is the part of services.TokenCodec the gate uses.
type TokenDecoder interface {
	Decode(raw string) (*models.TokenClaims, error)
}

// PrincipalLoader resolves a token subject to a principal.
type PrincipalLoader interface {
	LoadByUsername(ctx context.Context, username string) (*models.Principal, error)
}

// TokenVerifier checks a raw token against a principal.
type TokenVerifier interface {
	Verify(raw string, principal *models.Principal) error
}

// AuthMiddleware authenticates requests from their bearer token.
type AuthMiddleware struct {
	decoder      TokenDecoder
	loader       PrincipalLoader
	verifier     TokenVerifier
	publicRoutes []string
	logger       log.Logger
}

// NewAuthMiddleware returns the auth middleware. A request whose path
// contains any of publicRoutes skips token processing entirely.
func NewAuthMiddleware(
	decoder TokenDecoder,
	loader PrincipalLoader,
	verifier TokenVerifier,
	publicRoutes []string,
	l log.Logger,
) *AuthMiddleware {
	return &AuthMiddleware{
		decoder:      decoder,
		loader:       loader,
		verifier:     verifier,
		publicRoutes: publicRoutes,
		logger:       logger.Component(l, "auth"),
	}
}

// Gate attaches a handlers.AuthContext when the request carries a valid
// bearer token for an active principal. Every other outcome leaves the
// request unauthenticated. Either way next is called.
func (m *AuthMiddleware) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, m.authenticate(w, r))
	})
}

// authenticate walks header → decode → load → validate and returns r,
// with an AuthContext attached only if every step succeeded.
func (m *AuthMiddleware) authenticate(w http.ResponseWriter, r *http.Request) *http.Request {
	if m.isPublic(r.URL.Path) {
		return r
	}

	raw, ok := handlers.BearerToken(r)
	if !ok {
		return r
	}

	claims, err := m.decoder.Decode(raw)
	if err != nil {
		kind := services.KindOf(err)
		w.Header().Set(AuthErrorHeader, services.DiagnosticLabel(kind))
		level.Warn(m.logger).Log("msg", "token rejected", "kind", kind, "path", r.URL.Path, "err", err)
		return r
	}

	if _, exists := handlers.AuthFromContext(r.Context()); exists {
		return r
	}

	principal, err := m.loader.LoadByUsername(r.Context(), claims.Subject)
	if err != nil {
		level.Warn(m.logger).Log("msg", "principal load failed", "kind", services.KindOf(err), "user", claims.Subject, "err", err)
		return r
	}

	if !principal.IsActive {
		w.Header().Set(AuthErrorHeader, "Account disabled")
		level.Warn(m.logger).Log("msg", "token for disabled account", "user", principal.Username)
		return r
	}

	if err := m.verifier.Verify(raw, principal); err != nil {
		level.Warn(m.logger).Log("msg", "token validation failed", "kind", services.KindOf(err), "user", principal.Username)
		return r
	}

	ctx := handlers.WithAuth(r.Context(), handlers.NewAuthContext(principal))
	return r.WithContext(ctx)
}

func (m *AuthMiddleware) isPublic(path string) bool {
	for _, route := range m.publicRoutes {
		if route != "" && strings.Contains(path, route) {
			return true
		}
	}
	return false
}

// Require answers 401 unless the gate authenticated the request.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := handlers.AuthFromContext(r.Context()); !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 without authentication and 403 when the
// principal lacks role.
//
//	authMw.RequireRole(models.RoleAdmin, http.HandlerFunc(donorHandler.Delete))
func (m *AuthMiddleware) RequireRole(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, ok := handlers.AuthFromContext(r.Context())
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !auth.HasAuthority(role) {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}
