// Package handlers adapts HTTP requests onto the service layer. Each handler depends on
// the narrow interface it calls, so the services can be swapped for stubs in tests.
package handlers

import (
	"context"
	"net/http"

	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/middleware"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/baharkarakas/servicehub-backend/internal/realtime"
	"github.com/baharkarakas/servicehub-backend/internal/services"
)

type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (services.Session, error)
	Login(ctx context.Context, email, password string) (services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (services.Session, error)
	SubmitVerification(ctx context.Context, providerID string, documentURLs []string) (models.User, error)
}

type Bookings interface {
	CreateBooking(ctx context.Context, c services.Customer, in services.CreateBookingInput) (models.Booking, error)
	MarkPaid(ctx context.Context, customerID, bookingID string) (models.Booking, error)
	ListForCustomer(ctx context.Context, customerID string, page, limit int) ([]models.Booking, error)
	ListForProvider(ctx context.Context, providerID string, page, limit int) ([]models.Booking, error)
	ProgressWork(ctx context.Context, providerID, bookingID string, status models.BookingStatus) (models.Booking, error)
}

type Payments interface {
	InitiatePush(ctx context.Context, c services.Customer, in services.PushInput) (services.PushResult, error)
	AcceptCallback(ctx context.Context, raw []byte)
	Status(ctx context.Context, c services.Caller, checkoutRequestID string) (services.PaymentStatus, error)
}

type Admin interface {
	ListBookings(ctx context.Context, f models.BookingFilter) (services.BookingPage, error)
	UpdateBookingStatus(ctx context.Context, actorID, bookingID string, status models.BookingStatus) (models.Booking, error)
	Stats(ctx context.Context) (models.BookingStats, error)
	ListTransactions(ctx context.Context, f models.TransactionFilter) (services.TransactionPage, error)
	SetVerification(ctx context.Context, actorID, providerID string, status models.VerificationStatus, reason string) (models.User, error)
}

type Inbox interface {
	List(ctx context.Context, userID string, unreadOnly bool, page, limit int) (services.NotificationPage, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// Subscriber opens a user's real-time stream. *realtime.Hub implements it.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (*realtime.Subscription, error)
}

// currentUser returns the caller set by the auth middleware.
func currentUser(r *http.Request) (middleware.UserCtx, error) {
	u, ok := middleware.FromCtx(r.Context())
	if !ok || u.UserID == "" {
		return middleware.UserCtx{}, apperr.Unauthorized("authentication required")
	}
	return u, nil
}
