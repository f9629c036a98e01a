package main

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/adarshgogate/BloodDonorApp/config"
	"github.com/adarshgogate/BloodDonorApp/pkg/email"
	"github.com/adarshgogate/BloodDonorApp/pkg/ratelimit"
	"github.com/adarshgogate/BloodDonorApp/services"
	"github.com/adarshgogate/BloodDonorApp/ws"
)

// Services groups the service layer and the auth core it is built on.
type Services struct {
	Codec     *services.TokenCodec
	Validator *services.TokenValidator
	Loader    *services.PrincipalLoader
	Hasher    services.PasswordHasher

	Auth         services.AuthService
	Donor        services.DonorService
	BloodRequest services.BloodRequestService
}

// RateLimiters groups the rate limiters so main can close them on shutdown,
// along with the resolver that decides which IP an attempt counts against.
type RateLimiters struct {
	Login     *ratelimit.LoginRateLimiter
	ClientIPs *ratelimit.ClientIPResolver
}

// initServices builds the auth core and the services. signingKey is the
// process-wide token key; it is never replaced while the process runs.
func initServices(
	repos *Repositories,
	hub ws.EventPublisher,
	cfg *config.Config,
	signingKey []byte,
	logger log.Logger,
) (*Services, *RateLimiters, error) {
	codec, err := services.NewTokenCodec(signingKey, cfg.JWT.TTL(), nil)
	if err != nil {
		return nil, nil, err
	}
	clientIPs, err := ratelimit.NewClientIPResolver(cfg.Auth.TrustedProxies)
	if err != nil {
		return nil, nil, err
	}
	validator := services.NewTokenValidator(codec)
	loader := services.NewPrincipalLoader(repos.User, cfg.Auth.StoreTimeout)
	hasher := services.NewBcryptHasher(0)

	var alerts email.AlertSender
	if cfg.Email.Enabled() {
		alerts = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AlertEmail)
		level.Info(logger).Log("msg", "blood request alert mails enabled", "to", cfg.Email.AlertEmail)
	}

	svcs := &Services{
		Codec:     codec,
		Validator: validator,
		Loader:    loader,
		Hasher:    hasher,

		Auth:         services.NewAuthService(repos.User, hasher, codec, validator, loader, cfg.Auth.AllowRoleSelection, logger),
		Donor:        services.NewDonorService(repos.Donor, hub, logger),
		BloodRequest: services.NewBloodRequestService(repos.BloodRequest, hub, alerts, logger),
	}

	limiters := &RateLimiters{
		Login:     ratelimit.NewLoginRateLimiter(cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow),
		ClientIPs: clientIPs,
	}

	return svcs, limiters, nil
}

// Close stops the limiters' background eviction.
func (l *RateLimiters) Close() {
	l.Login.Close()
}
