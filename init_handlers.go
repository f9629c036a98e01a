package main

import (
	"github.com/adarshgogate/BloodDonorApp/handlers"
	"github.com/adarshgogate/BloodDonorApp/ws"
)

// Handlers groups the HTTP handlers.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Donor        *handlers.DonorHandler
	BloodRequest *handlers.BloodRequestHandler
	WS           *ws.Handler
}

func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub) *Handlers {
	return &Handlers{
		Auth:         handlers.NewAuthHandler(svcs.Auth, limiters.Login, limiters.ClientIPs),
		Donor:        handlers.NewDonorHandler(svcs.Donor),
		BloodRequest: handlers.NewBloodRequestHandler(svcs.BloodRequest),
		WS:           ws.NewHandler(hub, svcs.Auth),
	}
}
