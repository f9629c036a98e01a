package ws

import (
	"context"
	"net/http"

	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"

	"github.com/adarshgogate/BloodDonorApp/models"
)

// Authenticator resolves a raw session token to its principal.
//
// Declared here rather than importing services, which already imports ws
// for EventPublisher.
type Authenticator interface {
	ValidateSession(ctx context.Context, token string) (*models.Principal, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is enforced by the CORS layer in front of the API.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades authenticated requests to live-feed connections.
type Handler struct {
	hub  *Hub
	auth Authenticator
}

// NewHandler returns the /ws handler.
func NewHandler(hub *Hub, auth Authenticator) *Handler {
	return &Handler{hub: hub, auth: auth}
}

// HandleConnection authenticates, upgrades and registers a client.
//
// Browsers cannot set headers on a WebSocket handshake, so the token comes
// in the query string:
//
//	ws://host/ws?token=JWT
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	principal, err := h.auth.ValidateSession(r.Context(), token)
	if err != nil {
		level.Warn(h.hub.logger).Log("msg", "websocket auth rejected", "err", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		level.Warn(h.hub.logger).Log("msg", "upgrade failed", "user", principal.Username, "err", err)
		return
	}

	client := newClient(h.hub, conn, principal.Username, principal.Role)
	if !h.hub.enqueueRegister(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump()
}
