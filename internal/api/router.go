package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/superagent-ai/superagent/console/internal/api/handlers"
	"github.com/superagent-ai/superagent/console/internal/api/middleware"
	"github.com/superagent-ai/superagent/console/internal/config"
)

// NewRouter creates the HTTP router. Everything under /api goes through
// authMW and then scope, which builds the per-request Superagent client.
func NewRouter(cfg *config.Config, h *handlers.Handlers, authMW *middleware.AuthMiddleware, scope *middleware.ClientScope) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(corsOptions(cfg)))

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// Sign-in
	r.Route("/auth", func(r chi.Router) {
		r.Post("/otp", h.RequestOTP)
		r.Get("/oauth/{provider}", h.StartOAuth)
		r.Get("/callback", h.Callback)
		r.Post("/verify", h.VerifyOTP)
		r.Post("/signout", h.SignOut)
	})

	// Dashboard
	r.Route("/api", func(r chi.Router) {
		r.Use(authMW.Handler)
		r.Use(scope.Handler)

		r.Get("/profile", h.GetProfile)
		r.Patch("/profile", h.UpdateProfile)
		r.Post("/onboarding", h.Onboard)
		r.Get("/api-user", h.GetAPIUser)

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", h.ListAgents)
			r.Post("/", h.CreateAgent)
			r.Route("/{agentID}", func(r chi.Router) {
				r.Get("/", h.GetAgent)
				r.Patch("/", h.PatchAgent)
				r.Delete("/", h.DeleteAgent)
				r.Post("/invoke", h.InvokeAgent)
				r.Put("/settings", h.UpdateAgentSettings)
			})
		})

		r.Route("/llms", func(r chi.Router) {
			r.Get("/", h.ListLLMs)
			r.Post("/", h.CreateLLM)
			r.Patch("/{llmID}", h.PatchLLM)
		})

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", h.ListTools)
			r.Post("/", h.CreateTool)
			r.Patch("/{toolID}", h.PatchTool)
			r.Delete("/{toolID}", h.DeleteTool)
		})

		r.Route("/datasources", func(r chi.Router) {
			r.Get("/", h.ListDatasources)
			r.Post("/", h.CreateDatasource)
			r.Patch("/{datasourceID}", h.PatchDatasource)
			r.Delete("/{datasourceID}", h.DeleteDatasource)
		})

		r.Route("/workflows", func(r chi.Router) {
			r.Get("/", h.ListWorkflows)
			r.Post("/", h.CreateWorkflow)
			r.Route("/{workflowID}", func(r chi.Router) {
				r.Get("/", h.GetWorkflow)
				r.Patch("/", h.PatchWorkflow)
				r.Delete("/", h.DeleteWorkflow)
				r.Post("/invoke", h.InvokeWorkflow)
				r.Put("/config", h.SaveWorkflowConfig)

				r.Route("/steps", func(r chi.Router) {
					r.Get("/", h.ListWorkflowSteps)
					r.Post("/", h.CreateWorkflowStep)
					r.Patch("/{stepID}", h.PatchWorkflowStep)
					r.Delete("/{stepID}", h.DeleteWorkflowStep)
				})
			})
		})

		r.Route("/vector-dbs", func(r chi.Router) {
			r.Get("/", h.ListVectorDbs)
			r.Post("/", h.CreateVectorDb)
			r.Patch("/{vectorDbID}", h.PatchVectorDb)
		})

		r.Route("/api-keys", func(r chi.Router) {
			r.Get("/", h.ListAPIKeys)
			r.Post("/", h.CreateAPIKey)
			r.Delete("/{apiKeyID}", h.DeleteAPIKey)
		})

		r.Get("/runs", h.ListRuns)
	})

	return r
}

// corsOptions allows credentialed requests only from the console's own
// origin. Without SUPERAGENT_PUBLIC_URL any origin may call, but cookies are
// not accepted cross-origin.
func corsOptions(cfg *config.Config) cors.Options {
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "X-Trace-Id"},
		MaxAge:         300,
	}
	if cfg.PublicURL != "" {
		opts.AllowedOrigins = []string{cfg.PublicURL}
		opts.AllowCredentials = true
	}
	return opts
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "superagent-console",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
			"service": "superagent-console",
		})
	}
}
