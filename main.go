// Wire-up order:
//
//  1. Config
//  2. Logger
//  3. Database
//  4. Application (repositories, hub, services, handlers, middleware, routes)
//  5. HTTP server
//  6. Graceful shutdown
//
// There are no globals; everything is built in newApp and passed down.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/rs/cors"

	"github.com/adarshgogate/BloodDonorApp/config"
	"github.com/adarshgogate/BloodDonorApp/database"
	"github.com/adarshgogate/BloodDonorApp/middleware"
	"github.com/adarshgogate/BloodDonorApp/pkg/logger"
	"github.com/adarshgogate/BloodDonorApp/services"
	"github.com/adarshgogate/BloodDonorApp/ws"
)

func main() {
	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// ─── 2. Logger ───
	l := logger.New(os.Stderr, cfg.Log.Level)
	mainLog := logger.Component(l, "main")
	level.Info(mainLog).Log("msg", "blood donor registry starting", "port", cfg.Server.Port)

	// ─── 3. Database ───
	db, err := database.New(cfg.Database.Path, database.Migrations(), logger.Component(l, "database"))
	if err != nil {
		level.Error(mainLog).Log("msg", "failed to initialize database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// ─── 4. Application ───
	app, err := newApp(context.Background(), cfg, db.Conn, l)
	if err != nil {
		level.Error(mainLog).Log("msg", "failed to build application", "err", err)
		os.Exit(1)
	}

	// ─── 5. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 6. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		level.Info(mainLog).Log("msg", "server listening", "addr", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(mainLog).Log("msg", "server error", "err", err)
			os.Exit(1)
		}
	}()

	<-done
	level.Info(mainLog).Log("msg", "shutting down")

	// WebSocket clients first, then in-flight HTTP requests get 5s to finish.
	app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		level.Error(mainLog).Log("msg", "forced shutdown", "err", err)
		return
	}

	level.Info(mainLog).Log("msg", "server stopped gracefully")
}

// application is the wired server minus the listener.
type application struct {
	handler  http.Handler
	hub      *ws.Hub
	services *Services
	limiters *RateLimiters
}

// newApp builds every layer on top of an open, migrated database and starts
// the hub. Callers must call Close.
func newApp(ctx context.Context, cfg *config.Config, conn *sql.DB, l log.Logger) (*application, error) {
	mainLog := logger.Component(l, "main")

	signingKey, err := resolveSigningKey(cfg.JWT.Secret, mainLog)
	if err != nil {
		return nil, err
	}

	repos := initRepositories(conn)

	// Services publish through ws.EventPublisher, never the concrete hub.
	hub := ws.NewHub(logger.Component(l, "ws"))
	go hub.Run()

	svcs, limiters, err := initServices(repos, hub, cfg, signingKey, l)
	if err != nil {
		hub.Shutdown()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.Seed.Enabled {
		seeder := services.NewSeeder(conn, svcs.Hasher, l)
		if err := seeder.Run(ctx); err != nil {
			hub.Shutdown()
			limiters.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	h := initHandlers(svcs, limiters, hub)
	authMw := middleware.NewAuthMiddleware(svcs.Codec, svcs.Loader, svcs.Validator, cfg.Auth.PublicRoutes, l)

	routes := initRoutes(http.NewServeMux(), h, authMw)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{middleware.AuthErrorHeader, "Retry-After"},
		AllowCredentials: true,
	})

	return &application{
		handler:  corsHandler.Handler(routes),
		hub:      hub,
		services: svcs,
		limiters: limiters,
	}, nil
}

// Close stops the hub and the limiters. The database is owned by the caller.
func (a *application) Close() {
	a.hub.Shutdown()
	a.limiters.Close()
}

// resolveSigningKey returns the configured secret, or a random key when none
// is set. A random key does not survive a restart, so every token issued
// before it becomes invalid.
func resolveSigningKey(secret string, l log.Logger) ([]byte, error) {
	if secret != "" {
		return []byte(secret), nil
	}
	key, err := services.GenerateSigningKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	level.Warn(l).Log("msg", "JWT_SECRET is not set, using a random signing key; tokens will not survive a restart")
	return key, nil
}
