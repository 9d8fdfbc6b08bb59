package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/xavierca1/ligue-crm/internal/infra/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Vocabulary *handlers.VocabularyHandler
	Lead       *handlers.LeadHandler
	Client     *handlers.ClientHandler
	Call       *handlers.CallHandler
	Report     *handlers.ReportHandler
}

type Options struct {
	AllowedOrigins []string
	Issuer         *auth.Issuer
	Limiter        *middleware.RateLimiter
	// AccessLog is off in tests.
	AccessLog bool
}

func New(h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()
	if opts.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", middleware.MetricsHandler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(opts.Issuer))
		if opts.Limiter != nil {
			r.Use(middleware.RateLimit(opts.Limiter))
		}

		r.Get("/vocabulary", h.Vocabulary.Handle)

		r.Route("/lead", func(r chi.Router) {
			r.Get("/", h.Lead.List)
			r.Post("/", h.Lead.HandleCreate)
			r.Get("/export.xlsx", h.Lead.Export)
			r.Get("/{id}", h.Lead.Get)
			r.Put("/{id}", h.Lead.HandleUpdate)
			r.Delete("/{id}", h.Lead.Delete)
			r.Post("/{id}/comments", h.Lead.AddComment)
			r.Post("/{id}/convert", h.Lead.HandleConvert)
		})

		r.Route("/client", func(r chi.Router) {
			r.Get("/", h.Client.List)
			r.Get("/{id}", h.Client.Get)
			r.Put("/{id}", h.Client.HandleUpdate)
			r.Delete("/{id}", h.Client.Delete)
			r.Post("/{id}/comments", h.Client.AddComment)
		})

		r.Get("/calls", h.Call.List)
		r.Post("/calls", h.Call.HandleCreate)

		r.Get("/reports/summary", h.Report.Summary)
	})

	return r
}
