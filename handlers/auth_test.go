package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
	"github.com/adarshgogate/BloodDonorApp/pkg/ratelimit"
	"github.com/adarshgogate/BloodDonorApp/services"
)

type stubAuthService struct {
	validateErr error
	loginErr    error
}

func (s *stubAuthService) Register(context.Context, *models.CreateUserRequest) (*services.AuthResult, error) {
	return &services.AuthResult{}, nil
}

func (s *stubAuthService) Login(_ context.Context, req *models.LoginRequest) (*services.AuthResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &services.AuthResult{Token: "t", Username: req.Username}, nil
}

func (s *stubAuthService) ValidateSession(context.Context, string) (*models.Principal, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return &models.Principal{Username: "alice", Role: models.RoleUser, IsActive: true}, nil
}

func validateRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	return req
}

func TestValidate_StatusByFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantHeader string
	}{
		{"valid", nil, http.StatusOK, ""},
		{"expired", services.ErrExpiredToken, http.StatusUnauthorized, "Token expired"},
		{"malformed", services.ErrMalformedToken, http.StatusUnauthorized, "Malformed token"},
		{"unknown user", services.ErrPrincipalNotFound, http.StatusUnauthorized, "Invalid token"},
		{"disabled", fmt.Errorf("%w: account is disabled", pkg.ErrForbidden), http.StatusForbidden, ""},
		{"store timeout", fmt.Errorf("failed to load principal: %w", context.DeadlineExceeded), http.StatusInternalServerError, ""},
		{"store error", errors.New("database is locked"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{validateErr: tt.err}, nil, nil)

			rec := httptest.NewRecorder()
			h.Validate(rec, validateRequest())

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantHeader, rec.Header().Get("X-Auth-Error"))
		})
	}
}

func TestLogin_LimitedByRemoteHostDespiteForwardedFor(t *testing.T) {
	limiter := ratelimit.NewLoginRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Close)

	h := NewAuthHandler(&stubAuthService{loginErr: pkg.ErrUnauthorized}, limiter, nil)

	codes := make([]int, 0, 4)
	for i := range 4 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"user","password":"nope"}`))
		req.RemoteAddr = "192.0.2.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))

		rec := httptest.NewRecorder()
		h.Login(rec, req)
		codes = append(codes, rec.Code)
	}

	require.Len(t, codes, 4)
	assert.Equal(t, []int{
		http.StatusUnauthorized,
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestLogin_TrustedProxyForwardsClientIP(t *testing.T) {
	limiter := ratelimit.NewLoginRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Close)
	proxies, err := ratelimit.NewClientIPResolver([]string{"10.0.0.1"})
	require.NoError(t, err)

	h := NewAuthHandler(&stubAuthService{loginErr: pkg.ErrUnauthorized}, limiter, proxies)

	login := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"user","password":"nope"}`))
		req.RemoteAddr = "10.0.0.1:4000"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.Login(rec, req)
		return rec.Code
	}

	// Distinct clients behind the proxy each get their own budget.
	assert.Equal(t, http.StatusUnauthorized, login("203.0.113.1"))
	assert.Equal(t, http.StatusUnauthorized, login("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, login("203.0.113.1"))
}
