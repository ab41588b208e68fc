package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/servicehub-backend/internal/api/handlers"
	"github.com/baharkarakas/servicehub-backend/internal/auth"
	"github.com/baharkarakas/servicehub-backend/internal/metrics"
	"github.com/baharkarakas/servicehub-backend/internal/middleware"
	"github.com/baharkarakas/servicehub-backend/internal/models"
)

type RouterDeps struct {
	Log           *slog.Logger
	TM            *auth.TokenManager
	RateRPS       int
	Accounts      handlers.Accounts
	Bookings      handlers.Bookings
	Payments      handlers.Payments
	Admin         handlers.Admin
	Notifications handlers.Inbox
	// Events is nil when the real-time channel is disabled.
	Events handlers.Subscriber
}

func NewRouter(d RouterDeps) http.Handler {
	authH := handlers.NewAuthHandler(d.Accounts)
	bookingH := handlers.NewBookingHandler(d.Bookings)
	mpesaH := handlers.NewMpesaHandler(d.Payments, d.Log)
	adminH := handlers.NewAdminHandler(d.Admin)
	notesH := handlers.NewNotificationHandler(d.Notifications)
	eventsH := handlers.NewEventsHandler(d.Events, d.Log)
	authMW := middleware.NewAuthMiddleware(d.TM)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RequestLogger(d.Log), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))
	r.Use(middleware.RateLimit(d.RateRPS))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// Daraja calls this without credentials.
		r.Post("/mpesa/callback", mpesaH.Callback)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Get("/mpesa/status/{transactionId}", mpesaH.Status)
			r.Get("/events", eventsH.Stream)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notesH.List)
				r.Put("/read-all", notesH.MarkAllRead)
				r.Put("/{id}/read", notesH.MarkRead)
				r.Delete("/{id}", notesH.Delete)
				r.Delete("/", notesH.DeleteAll)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleCustomer))
				r.Post("/customer/create", bookingH.Create)
				r.Put("/customer/update-payment", bookingH.UpdatePayment)
				r.Get("/customer/bookings", bookingH.CustomerBookings)
				r.Post("/mpesa/stkpush", mpesaH.STKPush)
			})

			r.Route("/provider", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleProvider))
				r.Get("/bookings", bookingH.ProviderBookings)
				r.Put("/bookings/{id}/status", bookingH.ProgressWork)
				r.Put("/verification", authH.SubmitVerification)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/bookings", adminH.ListBookings)
				r.Put("/bookings/{id}/status", adminH.UpdateBookingStatus)
				r.Get("/bookings-stats", adminH.Stats)
				r.Get("/transactions", adminH.ListTransactions)
				r.Put("/providers/{id}/verification", adminH.SetVerification)
			})
		})
	})

	return r
}
