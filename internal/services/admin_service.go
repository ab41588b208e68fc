package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	repo "github.com/baharkarakas/servicehub-backend/internal/repository"
)

type AdminService struct {
	bookings repo.Bookings
	txs      repo.Transactions
	users    repo.Users
	audit    auditor
	notify   Notifier
	log      *slog.Logger
}

func NewAdminService(b repo.Bookings, t repo.Transactions, u repo.Users, logs repo.AuditLogs, n Notifier, log *slog.Logger) *AdminService {
	return &AdminService{
		bookings: b,
		txs:      t,
		users:    u,
		audit:    auditor{logs: logs, log: log},
		notify:   n,
		log:      log,
	}
}

type BookingPage struct {
	Bookings   []models.Booking  `json:"bookings"`
	Pagination models.Pagination `json:"pagination"`
}

type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination   models.Pagination    `json:"pagination"`
}

func (s *AdminService) ListBookings(ctx context.Context, f models.BookingFilter) (BookingPage, error) {
	f.Page, f.Limit = models.Normalize(f.Page, f.Limit)
	items, total, err := s.bookings.List(ctx, f)
	if err != nil {
		return BookingPage{}, repoErr(err, "")
	}
	if items == nil {
		items = []models.Booking{}
	}
	return BookingPage{Bookings: items, Pagination: models.NewPagination(total, f.Page, f.Limit)}, nil
}

// UpdateBookingStatus is the manual override. It bypasses the payment-derived status.
func (s *AdminService) UpdateBookingStatus(ctx context.Context, actorID, bookingID string, status models.BookingStatus) (models.Booking, error) {
	if !status.In(models.AdminStatuses) {
		return models.Booking{}, apperr.Validation("Invalid status value", map[string]any{"allowed": models.AdminStatuses})
	}
	before, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, repoErr(err, "Booking not found")
	}
	b, err := s.bookings.UpdateStatus(ctx, bookingID, status)
	if err != nil {
		return models.Booking{}, repoErr(err, "Booking not found")
	}

	s.audit.record(ctx, "booking", b.ID, actorID, "status_override", map[string]any{
		"from": before.Status,
		"to":   b.Status,
	})
	if _, err := s.notify.Notify(context.WithoutCancel(ctx), b.CustomerID, models.NotificationInput{
		Title:        "Booking Status Updated",
		Message:      fmt.Sprintf("Your %s booking status changed to %s.", b.ServiceName, b.Status),
		Type:         models.NotifyBooking,
		Category:     "booking",
		Priority:     models.PriorityMedium,
		RelatedID:    b.ID,
		RelatedModel: "Booking",
	}); err != nil {
		s.log.Warn("customer notification failed", "booking_id", b.ID, "err", err)
	}
	return b, nil
}

func (s *AdminService) Stats(ctx context.Context) (models.BookingStats, error) {
	st, err := s.bookings.Stats(ctx)
	return st, repoErr(err, "")
}

func (s *AdminService) ListTransactions(ctx context.Context, f models.TransactionFilter) (TransactionPage, error) {
	f.Page, f.Limit = models.Normalize(f.Page, f.Limit)
	items, total, err := s.txs.List(ctx, f)
	if err != nil {
		return TransactionPage{}, repoErr(err, "")
	}
	if items == nil {
		items = []models.Transaction{}
	}
	return TransactionPage{Transactions: items, Pagination: models.NewPagination(total, f.Page, f.Limit)}, nil
}

// SetVerification records an admin decision on a provider's pending submission.
func (s *AdminService) SetVerification(ctx context.Context, actorID, providerID string, status models.VerificationStatus, reason string) (models.User, error) {
	switch status {
	case models.VerificationVerified:
		reason = ""
	case models.VerificationRejected:
		if reason == "" {
			return models.User{}, apperr.Validation("rejectionReason is required when rejecting", nil)
		}
	default:
		return models.User{}, apperr.Validation("status must be verified or rejected", nil)
	}

	u, err := s.users.GetByID(ctx, providerID)
	if err != nil || u.Role != models.RoleProvider {
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return models.User{}, apperr.Internal("provider lookup failed", err)
		}
		return models.User{}, apperr.NotFound("Service provider not found")
	}
	if u.Verification == nil || u.Verification.Status != models.VerificationPending {
		return models.User{}, apperr.Conflict("provider has no verification pending review")
	}

	v := models.Verification{Status: status, Documents: u.Verification.Documents, RejectionReason: reason}
	u, err = s.users.UpdateVerification(ctx, providerID, v)
	if err != nil {
		return models.User{}, repoErr(err, "Service provider not found")
	}

	s.audit.record(ctx, "user", u.ID, actorID, "verification_"+string(status), map[string]any{"reason": reason})

	msg := "Your account has been verified. You can now receive bookings."
	priority := models.PriorityMedium
	if status == models.VerificationRejected {
		msg = "Your verification was rejected: " + reason
		priority = models.PriorityHigh
	}
	if _, err := s.notify.Notify(context.WithoutCancel(ctx), u.ID, models.NotificationInput{
		Title:        "Verification " + string(status),
		Message:      msg,
		Type:         models.NotifyVerification,
		Category:     "verification",
		Priority:     priority,
		RelatedID:    u.ID,
		RelatedModel: "User",
	}); err != nil {
		s.log.Warn("verification notification failed", "user_id", u.ID, "err", err)
	}
	return u, nil
}
