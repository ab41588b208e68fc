package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/servicehub-backend/internal/models"
)

// ErrNotFound is returned by every lookup that matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("duplicate")

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	FindByNameAndRole(ctx context.Context, name string, role models.Role) (models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	UpdateVerification(ctx context.Context, id string, v models.Verification) (models.User, error)
}

type Bookings interface {
	Create(ctx context.Context, b models.Booking) (models.Booking, error)
	GetByID(ctx context.Context, id string) (models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]models.Booking, error)
	ListByProvider(ctx context.Context, providerID string, limit, offset int) ([]models.Booking, error)
	List(ctx context.Context, f models.BookingFilter) ([]models.Booking, int64, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (models.Booking, error)
	// SetPayment writes the payment flag and status together. A nil method leaves it untouched.
	SetPayment(ctx context.Context, id string, isPaid bool, method *models.PaymentMethod, status models.BookingStatus) (models.Booking, error)
	Stats(ctx context.Context) (models.BookingStats, error)
}

type Transactions interface {
	Create(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	GetByTransactionID(ctx context.Context, checkoutRequestID string) (models.Transaction, error)
	// ApplyResult moves a pending, unprocessed transaction to a terminal state in one
	// conditional write. applied is false when another delivery got there first.
	ApplyResult(ctx context.Context, checkoutRequestID string, res models.TransactionResult) (tx models.Transaction, applied bool, err error)
	List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int64, error)
}

type Notifications interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	GetByID(ctx context.Context, id string) (models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id, recipientID string) (bool, error)
	DeleteAll(ctx context.Context, recipientID string) (int64, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
