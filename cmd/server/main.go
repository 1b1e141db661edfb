// Superagent console: the server side of the Superagent dashboard.
//
// It provides:
//   - Email OTP and GitHub OAuth sign-in through Supabase auth
//   - Profiles and first-login onboarding
//   - Dashboard endpoints for agents, LLMs, tools, datasources, workflows,
//     vector databases, API keys and runs, backed by the Superagent API
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/config"
	"github.com/superagent-ai/superagent/console/pkg/server"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("🤖 Superagent console starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if !setLogLevel(cfg.LogLevel) {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
	}

	ctx := context.Background()
	srv, err := server.NewWithConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}
	defer srv.Close()
	defer srv.ShutdownFunc(ctx)

	// No write timeout: agent and workflow invocations can run for minutes.
	httpServer := &http.Server{
		Addr:              srv.Config.Addr(),
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("🛑 Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().
		Int("port", srv.Config.Port).
		Str("api", srv.Config.API.URL).
		Msg("🚀 Superagent console is ready")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// setLogLevel applies level globally and reports whether it was recognised.
// Unknown or empty levels fall back to info.
func setLogLevel(level string) bool {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return false
	}
	zerolog.SetGlobalLevel(parsed)
	return true
}
