package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the gateway router.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.Health)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(s.rateLimit).Post("/signup", s.Signup)
		r.With(s.rateLimit).Post("/login", s.Login)
		r.Get("/logout", s.Logout)
		r.With(s.requireSession).Get("/me", s.Me)
	})

	r.Route("/api/passwords", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.ListItems)
		r.Post("/", s.CreateItem)
		r.Delete("/{id}", s.DeleteItem)
		r.Post("/{id}/retrieve", s.RetrieveSecret)
	})

	return r
}
