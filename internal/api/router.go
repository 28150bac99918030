package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/rentacar-backend/internal/api/handlers"
	"github.com/baharkarakas/rentacar-backend/internal/config"
	"github.com/baharkarakas/rentacar-backend/internal/metrics"
	"github.com/baharkarakas/rentacar-backend/internal/middleware"
	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/baharkarakas/rentacar-backend/internal/services"
)

type RouterDeps struct {
	Cfg        config.Config
	Log        *slog.Logger
	UserSvc    *services.UserService
	ListingSvc *services.ListingService
	BookingSvc *services.BookingService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authMW := middleware.NewAuthMiddleware(d.UserSvc, d.Log)
	users := &handlers.UserHandler{Svc: d.UserSvc, Log: d.Log, UploadDir: d.Cfg.UploadDir}
	listings := &handlers.ListingHandler{Svc: d.ListingSvc, Log: d.Log, UploadDir: d.Cfg.UploadDir}
	bookings := &handlers.BookingHandler{Svc: d.BookingSvc, Log: d.Log}

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/signup", users.Signup)
		r.Post("/auth/login", users.Login)
		r.Post("/auth/refresh", users.Refresh)

		// ---------- public catalog ----------
		r.Get("/listings", listings.All)
		r.Get("/listings/{id}", listings.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Get("/auth/me", users.Me)
			r.Put("/users/me/avatar", users.UpdateAvatar)
			r.With(middleware.RequireRole(models.RoleAdmin)).Get("/users", users.List)

			// ---------- listings ----------
			r.Post("/listings", listings.Create)
			r.Get("/listings/mine", listings.Mine)
			r.Put("/listings/{id}", listings.Edit)
			r.Delete("/listings/{id}", listings.Delete)

			// ---------- bookings ----------
			r.Post("/bookings", bookings.Create)
			r.Get("/bookings", bookings.List)
			r.Post("/bookings/check-availability", bookings.CheckAvailability)
			r.Delete("/bookings/{id}", bookings.Delete)
		})
	})

	return r
}
