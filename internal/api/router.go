package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/hackgods/clinidesk/internal/auth"
	"github.com/hackgods/clinidesk/internal/backend"
	"github.com/hackgods/clinidesk/internal/registration"
	"github.com/hackgods/clinidesk/internal/schedule"
)

type RouterConfig struct {
	Schedule       *schedule.Service
	Registration   *registration.Service
	Backend        *backend.Client
	Health         *HealthHandler
	Log            *zap.Logger
	AllowedOrigins []string
	LoginRateLimit int
	// Verifier checks bearer tokens; defaults to asking the backend.
	Verifier auth.Verifier
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Verifier == nil {
		cfg.Verifier = auth.NewRemoteVerifier(cfg.Backend, time.Now, cfg.Log)
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}
	if cfg.Health == nil {
		cfg.Health = NewHealthHandler("", "")
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health/live", cfg.Health.Liveness)
	r.Get("/health/ready", cfg.Health.Readiness)

	r.With(httprate.LimitByIP(cfg.LoginRateLimit, time.Minute)).
		Post("/auth/login", loginHandler(cfg.Backend, cfg.Log))

	r.Post("/register/clinic", registerClinicHandler(cfg.Registration))
	r.Post("/register/professional", registerProfessionalHandler(cfg.Registration))
	r.Get("/cep/{code}", cepHandler(cfg.Registration))

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(cfg.Verifier))

		r.Get("/auth/me", meHandler(cfg.Backend))
		r.Get("/dashboard", dashboardHandler)

		r.With(RequireUserType(auth.UserTypeClinic)).
			Get("/dashboard/clinic/professionals", listProfessionalsHandler(cfg.Backend))
		r.With(RequireUserType(auth.UserTypeHealthProfessional)).
			Get("/dashboard/professional/clinics", listClinicsHandler(cfg.Backend))

		r.Group(func(r chi.Router) {
			r.Use(RequireUserType(auth.UserTypeHealthProfessional))
			h := calendarHandlers{svc: cfg.Schedule}

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/events", h.events)
				r.Get("/stats", h.stats)
				r.Get("/options", h.options)
				r.Get("/lookups", h.lookups)
				r.Post("/select", h.selectRange)
				r.Post("/events/{id}/click", h.click)
				r.Post("/events/{id}/drop", h.drop)
				r.Post("/events/{id}/resize", h.resize)
			})

			r.Route("/editor", func(r chi.Router) {
				r.Get("/", h.editorState)
				r.Patch("/", h.updateEditor)
				r.Post("/open", h.openEditor)
				r.Post("/save", h.saveEditor)
				r.Post("/delete", h.deleteEditor)
				r.Post("/close", h.closeEditor)
			})

			r.Route("/work-hours", func(r chi.Router) {
				r.Get("/", h.workHours)
				r.Put("/", h.updateWorkHours)
				r.Post("/days/{day}", h.toggleDay)
			})
		})
	})

	return r
}
