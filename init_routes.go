package main

import (
	"net/http"

	"github.com/adarshgogate/BloodDonorApp/handlers"
	"github.com/adarshgogate/BloodDonorApp/middleware"
	"github.com/adarshgogate/BloodDonorApp/models"
)

// initRoutes registers every endpoint and returns the mux wrapped in the
// auth gate. The gate runs before routing, for every request; Require and
// RequireRole on individual routes decide who gets turned away.
//
// Literal segments win over wildcards in ServeMux, so
// /api/donors/search is never read as /api/donors/{id}.
func initRoutes(mux *http.ServeMux, h *Handlers, authMw *middleware.AuthMiddleware) http.Handler {
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}
	admin := func(handler http.HandlerFunc) http.Handler {
		return authMw.RequireRole(models.RoleAdmin, handler)
	}

	// ─── Public ───
	mux.HandleFunc("GET /api/health", handlers.Health)
	mux.HandleFunc("GET /api/test/ping", handlers.Ping)

	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("GET /api/auth/validate", h.Auth.Validate)

	// ─── Users ───
	mux.Handle("GET /api/users/me", auth(h.Auth.Me))

	// ─── Donors ───
	mux.Handle("GET /api/donors/search/city", auth(h.Donor.SearchByCity))
	mux.Handle("GET /api/donors/search/bloodgroup", auth(h.Donor.SearchByBloodGroup))
	mux.Handle("GET /api/donors/search/name", auth(h.Donor.SearchByName))
	mux.Handle("GET /api/donors/search", auth(h.Donor.Search))
	mux.Handle("GET /api/donors", auth(h.Donor.List))
	mux.Handle("POST /api/donors", auth(h.Donor.Create))
	mux.Handle("GET /api/donors/{id}", auth(h.Donor.Get))
	mux.Handle("PUT /api/donors/{id}", auth(h.Donor.Update))
	mux.Handle("DELETE /api/donors/{id}", admin(h.Donor.Delete))

	// ─── Blood requests ───
	mux.Handle("GET /api/blood-requests/search", auth(h.BloodRequest.Search))
	mux.Handle("GET /api/blood-requests", auth(h.BloodRequest.List))
	mux.Handle("POST /api/blood-requests", auth(h.BloodRequest.Create))
	mux.Handle("GET /api/blood-requests/{id}", auth(h.BloodRequest.Get))

	// ─── WebSocket ───
	// Browsers cannot send headers on the handshake; the handler checks the
	// ?token= query parameter itself.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)

	return authMw.Gate(mux)
}
