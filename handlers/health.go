package handlers

import (
	"net/http"

	"github.com/adarshgogate/BloodDonorApp/pkg"
)

// Health godoc
// GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "blooddonor",
	})
}

// Ping godoc
// GET /api/test/ping
// Public, so it doubles as a check that the auth gate lets allowlisted
// routes through.
func Ping(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]string{"message": "pong"})
}
