/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:        Request logging
  2. Recoverer:     Panic recovery (500 instead of crash)
  3. RequestID:     Unique ID per request for tracing
  4. CORS:          Cross-origin requests for the frontend
  5. Authenticator: Bearer-token identity (disabled with empty secret)

ROUTE GROUPS:
  /api/seasons/{seasonID}/*  Season-scoped listings and creation
  /api/bookings/{id}/*       Booking lifecycle, cash, scoring
  /api/apa/{id}              APA entry deletion
  /api/crew                  Roster

CAPTAIN-GATED ROUTES:
  complete, archive, and score awards sit behind RequireCaptain; the
  engine's authorization boundary lives here, not in the domain packages.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. An empty
// jwtSecret disables authentication (development default).
func NewRouter(h *Handler, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticator(jwtSecret))

		// Season routes
		r.Route("/seasons/{seasonID}", func(r chi.Router) {
			r.Get("/bookings", h.ListSeasonBookings)
			r.Post("/bookings", h.CreateBooking)
			r.Get("/stats", h.SeasonStats)
		})

		// Booking routes
		r.Route("/bookings/{id}", func(r chi.Router) {
			r.Get("/", h.GetBooking)
			r.Put("/", h.EditBooking)
			r.Delete("/", h.DeleteBooking)
			r.Post("/cancel", h.CancelBooking)
			r.With(RequireCaptain).Post("/archive", h.ArchiveBooking)

			// Cash
			r.Get("/apa", h.ListApaEntries)
			r.Post("/apa", h.AddApaEntry)
			r.Get("/expenses", h.ListExpenses)
			r.Post("/expenses", h.AddExpense)
			r.Post("/reconciliation/preview", h.PreviewReconciliation)
			r.With(RequireCaptain).Post("/complete", h.CompleteBooking)

			// Scoring
			r.Get("/scores", h.ListScoreEntries)
			r.With(RequireCaptain).Post("/scores", h.AwardPoints)
			r.Get("/leaderboard", h.BookingLeaderboard)
		})

		// APA entry deletion (entry-scoped, not booking-scoped)
		r.Delete("/apa/{id}", h.DeleteApaEntry)

		// Crew routes
		r.Route("/crew", func(r chi.Router) {
			r.Get("/", h.ListCrew)
			r.Post("/", h.AddCrewMember)
		})
	})

	return r
}
