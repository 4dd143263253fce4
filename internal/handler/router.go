package handler

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Routes builds the chi router with the global middleware stack and all
// API routes mounted.
func (h *BookingHandler) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(h.logger))        // structured access log
	r.Use(CORS)                    // permissive CORS for the SPA front end

	r.Get("/", Home)
	r.Get("/health", HealthCheck)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{email}", h.GetUserByEmail)
		r.Put("/{id}", h.UpdateUser)
	})

	r.Route("/instructors", func(r chi.Router) {
		r.Get("/", h.ListInstructors)
		r.Get("/classes/{id}", h.ClassesByInstructor)
		r.Get("/{id}", h.GetInstructor)
	})

	r.Route("/classes", func(r chi.Router) {
		r.Get("/", h.ListClasses)
		r.Get("/instructors/{id}", h.InstructorsForClass)
		r.Get("/{id}", h.GetClass)
	})

	r.Route("/purchases", func(r chi.Router) {
		r.Get("/", h.ListPurchases)
		r.Get("/{email}", h.PurchasedClasses)
		r.Delete("/{id}", h.RemovePurchase)
	})

	r.Post("/purchase", h.Purchase)

	return r
}
