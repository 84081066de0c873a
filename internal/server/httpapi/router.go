package httpapi

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the public API surface. Everything under /api/v1
// except token issuance and platform stats requires a Bearer token; the
// reveal callback additionally requires the admin claim.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", h.IssueToken)
		r.Get("/stats", h.PlatformStats)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)

			r.Post("/profile", h.Register)
			r.Get("/profile/{principal}", h.PublicProfile)
			r.Put("/profile/bio", h.UpdateBio)
			r.Put("/profile/looking", h.SetLookingForMatch)
			r.Get("/profile/preferences", h.Preferences)
			r.Put("/profile/preferences", h.SetPreferences)
			r.Delete("/profile", h.Deactivate)

			r.Post("/matches", h.RequestMatch)
			r.Get("/matches", h.MyMatches)
			r.Get("/matches/{matchID}", h.MatchDetails)
			r.Post("/matches/{matchID}/accept", h.AcceptMatch)
			r.Post("/matches/{matchID}/reject", h.RejectMatch)

			r.Get("/chats", h.MyChats)
			r.Get("/chats/{roomID}/messages", h.Messages)
			r.Post("/chats/{roomID}/messages", h.SendMessage)

			r.Route("/admin", func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Delete("/users/{principal}", h.AdminDeactivate)
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate, h.requireAdmin)
		r.Post("/internal/reveal-callback", h.RevealCallback)
	})

	return r
}
