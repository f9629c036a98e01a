// Package handlers turns HTTP requests into service calls.
//
// Handlers stay thin:
//  1. Decode the request (JSON body, path value or query)
//  2. Call the service
//  3. Write the result through pkg.JSON / pkg.Error
//
// No business rules and no database access live here.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
	"github.com/adarshgogate/BloodDonorApp/pkg/ratelimit"
	"github.com/adarshgogate/BloodDonorApp/services"
)

// AuthHandler serves /api/auth/* and /api/users/me.
type AuthHandler struct {
	authService  services.AuthService
	loginLimiter *ratelimit.LoginRateLimiter
	clientIPs    *ratelimit.ClientIPResolver
}

// NewAuthHandler returns the handler. A nil loginLimiter disables login
// rate limiting; a nil clientIPs counts attempts by the connection's
// remote host.
func NewAuthHandler(
	authService services.AuthService,
	loginLimiter *ratelimit.LoginRateLimiter,
	clientIPs *ratelimit.ClientIPResolver,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
		clientIPs:    clientIPs,
	}
}

// ValidateResponse is the body of a successful GET /api/auth/validate.
type ValidateResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// MeResponse is the body of GET /api/users/me.
type MeResponse struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Authorities []string `json:"authorities"`
}

// Register godoc
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, result)
}

// Login godoc
// POST /api/auth/login
//
// Attempts are limited per client IP. A successful login clears the
// counter so a legitimate user is never locked out by earlier typos.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIPs.ClientIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		retryAfter := h.loginLimiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			fmt.Sprintf("too many login attempts, please try again in %s",
				ratelimit.FormatRetryMessage(retryAfter)))
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}

	pkg.JSON(w, http.StatusOK, result)
}

// Validate godoc
// GET /api/auth/validate
//
// Public route: it reads the Authorization header itself and reports
// why a token was refused.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	raw, ok := BearerToken(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
		return
	}

	principal, err := h.authService.ValidateSession(r.Context(), raw)
	if err != nil {
		// Store failures and disabled accounts are not token problems.
		if !services.IsTokenFailure(err) {
			pkg.Error(w, err)
			return
		}
		label := services.DiagnosticLabel(services.KindOf(err))
		w.Header().Set("X-Auth-Error", label)
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, label)
		return
	}

	pkg.JSON(w, http.StatusOK, ValidateResponse{
		Valid:    true,
		Username: principal.Username,
		Role:     principal.Role,
	})
}

// Me godoc
// GET /api/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	auth, ok := AuthFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	pkg.JSON(w, http.StatusOK, MeResponse{
		Username:    auth.Principal.Username,
		Role:        auth.Principal.Role,
		Authorities: auth.Authorities,
	})
}
