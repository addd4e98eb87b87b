package main

import (
	"net/http"

	"paydocs-server/internal/handler"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type authMiddlewares struct {
	required func(http.Handler) http.Handler
	optional func(http.Handler) http.Handler
}

func setupServiceRoutes(r chi.Router, registry *prometheus.Registry) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, auth authMiddlewares) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.required)
			r.Get("/me", h.GetCurrentUsersUUID)
			r.Head("/me", h.GetCurrentUsersUUID)
		})
		r.Group(func(r chi.Router) {
			r.Post("/", h.Login)
			r.Post("/passkey/challenge", h.PasskeyChallenge)
			r.Post("/passkey", h.PasskeyLogin)
			r.Post("/refresh", h.RefreshToken)
			r.Delete("/{token}", h.Logout)
		})
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, auth authMiddlewares) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.RegisterUser)

		r.Group(func(r chi.Router) {
			r.Use(auth.required)

			r.Get("/users", h.ListUsers)

			r.Route("/users/{uuid}", func(r chi.Router) {
				r.Get("/", h.GetUser)
				r.Head("/", h.GetUser)
				r.Put("/", h.UpdateUser)
				r.Put("/credential", h.UpdateCredential)
				r.Delete("/", h.DeleteUser)
			})
		})
	})
}

func setupDocumentRoutes(r chi.Router, h *handler.DocumentHandler, access *handler.AccessHandler, auth authMiddlewares) {
	r.Route("/api/docs", func(r chi.Router) {
		r.With(auth.optional).Get("/{doc_id}/access", access.AccessState)

		r.Group(func(r chi.Router) {
			r.Use(auth.required)
			r.Get("/", h.ListMyDocuments)
			r.Post("/", h.CreateDocument)

			r.Route("/{doc_id}", func(r chi.Router) {
				r.Get("/", h.GetDocument)
				r.Head("/", h.GetDocument)
				r.Put("/", h.UpdateDocument)
				r.Delete("/", h.DeleteDocument)
				r.Get("/grants", h.ListGrants)
				r.Post("/grants", h.ShareDocument)
				r.Delete("/grants/{user_uuid}", h.RemoveGrantFromDocument)
				r.Post("/pay", access.Pay)
				r.Post("/capability", access.IssueCapability)
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.required)
		r.Get("/api/collection", h.Collection)
		r.Get("/api/payments", access.ListPayments)
	})

	r.Route("/public", func(r chi.Router) {
		r.Get("/docs", h.ListPublicDocuments)
		r.Get("/docs/{doc_id}", h.GetPublicDocument)
		r.Head("/docs/{doc_id}", h.GetPublicDocument)
		r.Post("/resolve/{token}", access.Resolve)
	})
}
