package handlers

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/adarshgogate/BloodDonorApp/models"
)

// contextKey is unexported so no other package can collide with it.
type contextKey string

const authContextKey contextKey = "auth"

// AuthContext is the authenticated identity of one request. The auth gate
// attaches it; handlers read it with AuthFromContext. It lives only as long
// as the request context.
type AuthContext struct {
	Principal   *models.Principal
	Authorities []string
}

// NewAuthContext builds the context for p: its role is its only authority.
func NewAuthContext(p *models.Principal) *AuthContext {
	return &AuthContext{Principal: p, Authorities: p.Authorities()}
}

// HasAuthority reports whether authority was granted.
func (a *AuthContext) HasAuthority(authority string) bool {
	return slices.Contains(a.Authorities, authority)
}

// WithAuth returns ctx carrying auth.
func WithAuth(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}

// AuthFromContext returns the request's AuthContext, if any.
func AuthFromContext(ctx context.Context) (*AuthContext, bool) {
	auth, ok := ctx.Value(authContextKey).(*AuthContext)
	return auth, ok && auth != nil
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
