package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/servicehub-backend/internal/api/validate"
	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/metrics"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/baharkarakas/servicehub-backend/internal/realtime"
	repo "github.com/baharkarakas/servicehub-backend/internal/repository"
)

type BookingService struct {
	bookings repo.Bookings
	users    repo.Users
	notify   Notifier
	pub      realtime.Publisher
	log      *slog.Logger
}

func NewBookingService(b repo.Bookings, u repo.Users, n Notifier, pub realtime.Publisher, log *slog.Logger) *BookingService {
	return &BookingService{bookings: b, users: u, notify: n, pub: pub, log: log}
}

// Customer is the authenticated caller placing a booking.
type Customer struct {
	ID   string
	Name string
}

type CreateBookingInput struct {
	ServiceID       string               `json:"serviceId"`
	ServiceName     string               `json:"serviceName"`
	CategoryName    string               `json:"categoryName"`
	ServiceProvider string               `json:"serviceProvider"`
	Amount          int64                `json:"amount"`
	Address         string               `json:"address"`
	City            string               `json:"city"`
	Phone           string               `json:"phone"`
	DeliveryDate    time.Time            `json:"deliveryDate"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	IsPaid          bool                 `json:"isPaid"`
}

func (in CreateBookingInput) validate() error {
	errs := validate.Collect(
		validate.Required("serviceId", in.ServiceID),
		validate.Required("serviceName", in.ServiceName),
		validate.Required("serviceProvider", in.ServiceProvider),
		validate.Required("address", in.Address),
		validate.Required("city", in.City),
		validate.Required("phone", in.Phone),
		validate.MinInt("amount", in.Amount, 0),
		validate.OneOf("paymentMethod", in.PaymentMethod, models.PaymentMpesa, models.PaymentCash),
	)
	if in.DeliveryDate.IsZero() {
		errs = append(errs, validate.ErrField{Field: "deliveryDate", Msg: "required"})
	}
	if len(errs) > 0 {
		return apperr.Validation("invalid booking", errs)
	}
	return nil
}

// CreateBooking persists the booking and then runs the fan-out. Fan-out failures are
// logged and never undo the booking.
func (s *BookingService) CreateBooking(ctx context.Context, c Customer, in CreateBookingInput) (models.Booking, error) {
	if err := in.validate(); err != nil {
		return models.Booking{}, err
	}

	providerName := strings.TrimSpace(in.ServiceProvider)
	provider, err := s.users.FindByNameAndRole(ctx, providerName, models.RoleProvider)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Booking{}, apperr.BusinessRule("Service provider not found: " + providerName)
	}
	if err != nil {
		return models.Booking{}, apperr.Internal("provider lookup failed", err)
	}

	b := models.Booking{
		CustomerID:      c.ID,
		CustomerName:    c.Name,
		ServiceID:       in.ServiceID,
		ServiceName:     in.ServiceName,
		CategoryName:    in.CategoryName,
		ServiceProvider: provider.Name,
		ProviderID:      provider.ID,
		Amount:          in.Amount,
		Address:         in.Address,
		City:            in.City,
		Phone:           in.Phone,
		DeliveryDate:    in.DeliveryDate,
		IsPaid:          in.IsPaid,
		PaymentMethod:   in.PaymentMethod,
		Read:            false,
	}
	b.DeriveStatus()

	b, err = s.bookings.Create(ctx, b)
	if err != nil {
		return models.Booking{}, repoErr(err, "")
	}
	metrics.BookingsCreated.WithLabelValues(string(b.PaymentMethod)).Inc()
	s.log.Info("booking created", "booking_id", b.ID, "provider_id", provider.ID, "status", b.Status)

	s.fanOut(context.WithoutCancel(ctx), b, provider)
	return b, nil
}

func (s *BookingService) fanOut(ctx context.Context, b models.Booking, provider models.User) {
	title := "Booking Placed"
	if b.IsPaid {
		title = "Booking Confirmed"
	}
	if _, err := s.notify.Notify(ctx, b.CustomerID, models.NotificationInput{
		Title:        title,
		Message:      fmt.Sprintf("Your booking for %s with %s has been placed.", b.ServiceName, provider.Name),
		Type:         models.NotifyBooking,
		Category:     "booking",
		Priority:     models.PriorityMedium,
		RelatedID:    b.ID,
		RelatedModel: "Booking",
	}); err != nil {
		s.log.Warn("customer notification failed", "booking_id", b.ID, "err", err)
	}

	if _, err := s.notify.Notify(ctx, provider.ID, models.NotificationInput{
		Title:        "New Booking Received",
		Message:      fmt.Sprintf("%s booked %s for KES %d. Contact: %s.", b.CustomerName, b.ServiceName, b.Amount, b.Phone),
		Type:         models.NotifyBooking,
		Category:     "booking",
		Priority:     models.PriorityHigh,
		RelatedID:    b.ID,
		RelatedModel: "Booking",
	}); err != nil {
		s.log.Warn("provider notification failed", "booking_id", b.ID, "err", err)
	}

	if _, err := s.notify.NotifyAdmins(ctx, models.NotificationInput{
		Title:        "New Booking",
		Message:      fmt.Sprintf("%s booked %s with %s (KES %d).", b.CustomerName, b.ServiceName, provider.Name, b.Amount),
		Type:         models.NotifyBooking,
		Category:     "booking",
		Priority:     models.PriorityLow,
		RelatedID:    b.ID,
		RelatedModel: "Booking",
	}); err != nil {
		s.log.Warn("admin notification failed", "booking_id", b.ID, "err", err)
	}

	if err := s.pub.Emit(ctx, provider.ID, realtime.EventNewBooking, b.Summary()); err != nil {
		s.log.Warn("new_booking push failed", "booking_id", b.ID, "provider_id", provider.ID, "err", err)
	}
}

// MarkPaid flips the payment flag directly. Status follows the derivation rule.
func (s *BookingService) MarkPaid(ctx context.Context, customerID, bookingID string) (models.Booking, error) {
	if bookingID == "" {
		return models.Booking{}, apperr.Validation("bookingId is required", nil)
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, repoErr(err, "Booking not found")
	}
	if b.CustomerID != customerID {
		return models.Booking{}, apperr.Forbidden("booking belongs to another customer")
	}
	b.IsPaid = true
	b.DeriveStatus()
	b, err = s.bookings.SetPayment(ctx, b.ID, true, nil, b.Status)
	return b, repoErr(err, "Booking not found")
}

func (s *BookingService) ListForCustomer(ctx context.Context, customerID string, page, limit int) ([]models.Booking, error) {
	page, limit = models.Normalize(page, limit)
	out, err := s.bookings.ListByCustomer(ctx, customerID, limit, offset(page, limit))
	if out == nil {
		out = []models.Booking{}
	}
	return out, repoErr(err, "")
}

func (s *BookingService) ListForProvider(ctx context.Context, providerID string, page, limit int) ([]models.Booking, error) {
	page, limit = models.Normalize(page, limit)
	out, err := s.bookings.ListByProvider(ctx, providerID, limit, offset(page, limit))
	if out == nil {
		out = []models.Booking{}
	}
	return out, repoErr(err, "")
}

// ProgressWork lets the assigned provider move a booking to In Progress or Completed.
func (s *BookingService) ProgressWork(ctx context.Context, providerID, bookingID string, status models.BookingStatus) (models.Booking, error) {
	if !status.In(models.ProviderStatuses) {
		return models.Booking{}, apperr.Validation("Invalid status value", map[string]any{"allowed": models.ProviderStatuses})
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, repoErr(err, "Booking not found")
	}
	if b.ProviderID != providerID {
		return models.Booking{}, apperr.Forbidden("booking is assigned to another provider")
	}
	b, err = s.bookings.UpdateStatus(ctx, bookingID, status)
	if err != nil {
		return models.Booking{}, repoErr(err, "Booking not found")
	}

	if _, err := s.notify.Notify(context.WithoutCancel(ctx), b.CustomerID, models.NotificationInput{
		Title:        "Booking Update",
		Message:      fmt.Sprintf("Your %s booking is now %s.", b.ServiceName, b.Status),
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
