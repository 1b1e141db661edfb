// Package server provides the public entry point for initializing the
// Superagent console server.
//
// It lives in pkg/ (not internal/) so a deployment can import it and wrap the
// handler with its own middleware.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(srv.Config.Addr(), srv.Handler)
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/api"
	"github.com/superagent-ai/superagent/console/internal/api/handlers"
	"github.com/superagent-ai/superagent/console/internal/api/middleware"
	"github.com/superagent-ai/superagent/console/internal/auth"
	"github.com/superagent-ai/superagent/console/internal/config"
	"github.com/superagent-ai/superagent/console/internal/sessions"
	"github.com/superagent-ai/superagent/console/internal/store"
	"github.com/superagent-ai/superagent/console/internal/telemetry"
	"github.com/superagent-ai/superagent/console/pkg/contracts"
	"github.com/superagent-ai/superagent/console/pkg/superagent"
)

// Server holds the initialized console.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Profiles is the profile store (PostgreSQL or in-memory).
	Profiles store.ProfileStore

	// Sessions is the console session store (Redis or in-memory).
	Sessions sessions.Store

	// Clients builds a Superagent client for a bearer token.
	Clients contracts.ClientFactory

	Config *config.Config

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error

	closers []func() error
}

// New loads configuration from the environment and initializes the console.
func New(ctx context.Context) (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

// NewWithConfig initializes the console with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	srv := &Server{Config: cfg, ShutdownFunc: shutdown}

	if err := srv.initProfiles(ctx); err != nil {
		srv.Close()
		return nil, err
	}
	if err := srv.initSessions(ctx); err != nil {
		srv.Close()
		return nil, err
	}

	httpClient := telemetry.HTTPClient()
	srv.Clients = func(token string) contracts.ResourceClient {
		opts := []superagent.Option{superagent.WithHTTPClient(httpClient)}
		if cfg.API.StrictStatus {
			opts = append(opts, superagent.WithStrictStatus())
		}
		return superagent.New(cfg.API.URL, token, opts...)
	}
	log.Info().
		Str("url", cfg.API.URL).
		Bool("strict_status", cfg.API.StrictStatus).
		Msg("✅ Superagent API client configured")

	gotrue := auth.NewGoTrue(cfg.Supabase.URL, cfg.Supabase.AnonKey,
		auth.WithGoTrueHTTPClient(&http.Client{Transport: httpClient.Transport, Timeout: 30 * time.Second}))
	if !gotrue.Enabled() {
		log.Warn().Msg("⚠️  Supabase is not configured, sign-in will fail")
	}
	gotrue.OnAuthStateChange(func(_ context.Context, ev auth.Event) {
		e := log.Debug().Str("event", string(ev.Type))
		if ev.Session != nil {
			e = e.Str("user_id", ev.Session.User.ID)
		}
		e.Msg("Auth state changed")
	})

	flow := auth.NewFlow(gotrue, srv.Profiles, srv.Sessions,
		func(token string) auth.Identifier { return srv.Clients(token) },
		cfg.Auth.SignedInPath)

	chain := auth.NewProviderChain()
	chain.RegisterProvider(auth.NewSessionProvider(srv.Sessions, cfg.Auth.SessionCookie))
	chain.RegisterProvider(auth.NewBearerProvider(true))

	h := handlers.New(cfg, flow, srv.Profiles, srv.Clients)
	srv.Handler = api.NewRouter(cfg, h,
		middleware.NewAuthMiddleware(chain, cfg.Auth.RequireAuth),
		middleware.NewClientScope(srv.Profiles, srv.Clients))

	return srv, nil
}

func (s *Server) initProfiles(ctx context.Context) error {
	if s.Config.Database.URL == "" {
		s.Profiles = store.NewMemoryStore(s.Config.Database.DataDir)
		s.closers = append(s.closers, s.Profiles.Close)
		log.Info().Msg("✅ In-memory profile store initialized")
		return nil
	}

	pg, err := store.NewPostgresStore(ctx, s.Config.Database.URL, s.Config.Database.MaxConnections)
	if err != nil {
		return fmt.Errorf("init profile store: %w", err)
	}
	s.Profiles = pg
	s.closers = append(s.closers, pg.Close)
	if err := pg.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate profile store: %w", err)
	}
	log.Info().Msg("✅ PostgreSQL profile store initialized")
	return nil
}

func (s *Server) initSessions(ctx context.Context) error {
	ttl := s.Config.Auth.SessionTTL
	if s.Config.Redis.URL == "" {
		ms := sessions.NewMemoryStore(ttl)
		s.Sessions = ms

		janitorCtx, cancel := context.WithCancel(context.Background())
		go sessions.NewJanitor(ms, sessions.DefaultSweepInterval).Start(janitorCtx)
		s.closers = append(s.closers, func() error { cancel(); return nil })

		log.Info().Dur("ttl", ttl).Msg("✅ In-memory session store initialized")
		return nil
	}

	rs, err := sessions.NewRedisStore(ctx, s.Config.Redis.URL, sessions.WithTTL(ttl))
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	s.Sessions = rs
	s.closers = append(s.closers, rs.Close)
	log.Info().Dur("ttl", ttl).Msg("✅ Redis session store initialized")
	return nil
}

// Close releases the stores. It does not flush telemetry; call ShutdownFunc
// for that.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
