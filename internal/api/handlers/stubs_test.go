package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/baharkarakas/servicehub-backend/internal/middleware"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/baharkarakas/servicehub-backend/internal/services"
)

func asUser(r *http.Request, id string, role models.Role, name string) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), middleware.UserCtx{UserID: id, Role: role, Name: name}))
}

type stubBookings struct {
	gotCustomer services.Customer
	gotInput    services.CreateBookingInput
	gotStatus   models.BookingStatus
	gotID       string
	booking     models.Booking
	err         error
}

func (s *stubBookings) CreateBooking(_ context.Context, c services.Customer, in services.CreateBookingInput) (models.Booking, error) {
	s.gotCustomer, s.gotInput = c, in
	return s.booking, s.err
}

func (s *stubBookings) MarkPaid(_ context.Context, _, bookingID string) (models.Booking, error) {
	s.gotID = bookingID
	return s.booking, s.err
}

func (s *stubBookings) ListForCustomer(context.Context, string, int, int) ([]models.Booking, error) {
	return []models.Booking{s.booking}, s.err
}

func (s *stubBookings) ListForProvider(context.Context, string, int, int) ([]models.Booking, error) {
	return []models.Booking{}, s.err
}

func (s *stubBookings) ProgressWork(_ context.Context, _, bookingID string, st models.BookingStatus) (models.Booking, error) {
	s.gotID, s.gotStatus = bookingID, st
	return s.booking, s.err
}

type stubPayments struct {
	mu       sync.Mutex
	raw      [][]byte
	pushBy   services.Customer
	pushIn   services.PushInput
	statusBy services.Caller
	statusID string
	res      services.PushResult
	status   services.PaymentStatus
	err      error
}

func (s *stubPayments) InitiatePush(_ context.Context, c services.Customer, in services.PushInput) (services.PushResult, error) {
	s.pushBy, s.pushIn = c, in
	return s.res, s.err
}

func (s *stubPayments) AcceptCallback(_ context.Context, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = append(s.raw, raw)
}

func (s *stubPayments) Status(_ context.Context, c services.Caller, id string) (services.PaymentStatus, error) {
	s.statusBy, s.statusID = c, id
	return s.status, s.err
}

type stubAdmin struct {
	filter models.BookingFilter
	actor  string
	status models.BookingStatus
	reason string
	stats  models.BookingStats
	err    error
}

func (s *stubAdmin) ListBookings(_ context.Context, f models.BookingFilter) (services.BookingPage, error) {
	s.filter = f
	return services.BookingPage{Bookings: []models.Booking{}, Pagination: models.NewPagination(0, 1, 10)}, s.err
}

func (s *stubAdmin) UpdateBookingStatus(_ context.Context, actor, _ string, st models.BookingStatus) (models.Booking, error) {
	s.actor, s.status = actor, st
	return models.Booking{Status: st}, s.err
}

func (s *stubAdmin) Stats(context.Context) (models.BookingStats, error) { return s.stats, s.err }

func (s *stubAdmin) ListTransactions(context.Context, models.TransactionFilter) (services.TransactionPage, error) {
	return services.TransactionPage{Transactions: []models.Transaction{}}, s.err
}

func (s *stubAdmin) SetVerification(_ context.Context, actor, id string, st models.VerificationStatus, reason string) (models.User, error) {
	s.actor, s.reason = actor, reason
	return models.User{ID: id, Verification: &models.Verification{Status: st, RejectionReason: reason}}, s.err
}

type stubInbox struct {
	userID     string
	unreadOnly bool
	err        error
}

func (s *stubInbox) List(_ context.Context, userID string, unreadOnly bool, page, limit int) (services.NotificationPage, error) {
	s.userID, s.unreadOnly = userID, unreadOnly
	return services.NotificationPage{Notifications: []models.Notification{}, UnreadCount: 3}, s.err
}

func (s *stubInbox) MarkRead(_ context.Context, userID, _ string) error { s.userID = userID; return s.err }

func (s *stubInbox) MarkAllRead(_ context.Context, userID string) (int64, error) {
	s.userID = userID
	return 2, s.err
}

func (s *stubInbox) Delete(_ context.Context, userID, _ string) error { s.userID = userID; return s.err }

func (s *stubInbox) DeleteAll(_ context.Context, userID string) (int64, error) {
	s.userID = userID
	return 5, s.err
}

type stubAccounts struct {
	session services.Session
	user    models.User
	err     error
	got     string
	docs    []string
}

func (s *stubAccounts) Register(_ context.Context, in services.RegisterInput) (services.Session, error) {
	s.got = in.Email
	return s.session, s.err
}

func (s *stubAccounts) Login(_ context.Context, email, _ string) (services.Session, error) {
	s.got = email
	return s.session, s.err
}

func (s *stubAccounts) Refresh(_ context.Context, token string) (services.Session, error) {
	s.got = token
	return s.session, s.err
}

func (s *stubAccounts) SubmitVerification(_ context.Context, providerID string, docs []string) (models.User, error) {
	s.got, s.docs = providerID, docs
	return s.user, s.err
}
