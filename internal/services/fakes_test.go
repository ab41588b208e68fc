package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/baharkarakas/servicehub-backend/internal/logger"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/baharkarakas/servicehub-backend/internal/mpesa"
	repo "github.com/baharkarakas/servicehub-backend/internal/repository"
	"github.com/google/uuid"
)

var discard = logger.Discard()

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]models.User
	order []string
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{byID: map[string]models.User{}}
	for _, u := range users {
		_, _ = m.Create(context.Background(), u)
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) && u.Email != "" {
			return models.User{}, repo.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = "active"
	}
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	m.order = append(m.order, u.ID)
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (m *memUsers) FindByNameAndRole(_ context.Context, name string, role models.Role) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if u := m.byID[id]; u.Name == name && u.Role == role {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (m *memUsers) ListByRole(_ context.Context, role models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, id := range m.order {
		if u := m.byID[id]; u.Role == role && u.Status == "active" {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) UpdateVerification(_ context.Context, id string, v models.Verification) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	u.Verification = &v
	m.byID[id] = u
	return u, nil
}

type memBookings struct {
	mu         sync.Mutex
	byID       map[string]models.Booking
	lastFilter models.BookingFilter
	createErr  error
}

func newMemBookings() *memBookings { return &memBookings{byID: map[string]models.Booking{}} }

func (m *memBookings) Create(_ context.Context, b models.Booking) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return models.Booking{}, m.createErr
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.byID[b.ID] = b
	return b, nil
}

func (m *memBookings) GetByID(_ context.Context, id string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return models.Booking{}, repo.ErrNotFound
	}
	return b, nil
}

func (m *memBookings) list(keep func(models.Booking) bool) []models.Booking {
	var out []models.Booking
	for _, b := range m.byID {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memBookings) ListByCustomer(_ context.Context, id string, limit, offset int) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(m.list(func(b models.Booking) bool { return b.CustomerID == id }), limit, offset), nil
}

func (m *memBookings) ListByProvider(_ context.Context, id string, limit, offset int) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(m.list(func(b models.Booking) bool { return b.ProviderID == id }), limit, offset), nil
}

func (m *memBookings) List(_ context.Context, f models.BookingFilter) ([]models.Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	all := m.list(func(b models.Booking) bool { return f.Status == "" || f.Status == "all" || string(b.Status) == f.Status })
	return page(all, f.Limit, (f.Page-1)*f.Limit), int64(len(all)), nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id string, status models.BookingStatus) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return models.Booking{}, repo.ErrNotFound
	}
	b.Status = status
	m.byID[id] = b
	return b, nil
}

func (m *memBookings) SetPayment(_ context.Context, id string, isPaid bool, method *models.PaymentMethod, status models.BookingStatus) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return models.Booking{}, repo.ErrNotFound
	}
	b.IsPaid = isPaid
	if method != nil {
		b.PaymentMethod = *method
	}
	b.Status = status
	m.byID[id] = b
	return b, nil
}

func (m *memBookings) Stats(context.Context) (models.BookingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s models.BookingStats
	for _, b := range m.byID {
		s.Total++
		switch b.Status {
		case models.BookingPending:
			s.Pending++
		case models.BookingCompleted:
			s.Completed++
		}
		if b.IsPaid {
			s.Revenue += b.Amount
		}
	}
	return s, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type memTxs struct {
	mu         sync.Mutex
	byCheckout map[string]models.Transaction
}

func newMemTxs() *memTxs { return &memTxs{byCheckout: map[string]models.Transaction{}} }

func (m *memTxs) Create(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byCheckout[tx.TransactionID]; ok {
		return models.Transaction{}, repo.ErrDuplicate
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	m.byCheckout[tx.TransactionID] = tx
	return tx, nil
}

func (m *memTxs) GetByTransactionID(_ context.Context, id string) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.byCheckout[id]
	if !ok {
		return models.Transaction{}, repo.ErrNotFound
	}
	return tx, nil
}

// ApplyResult mirrors the conditional UPDATE of the postgres repo.
func (m *memTxs) ApplyResult(_ context.Context, id string, res models.TransactionResult) (models.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.byCheckout[id]
	if !ok {
		return models.Transaction{}, false, repo.ErrNotFound
	}
	if tx.Status != models.TxnPending || tx.CallbackProcessed {
		return tx, false, nil
	}
	tx.Status = res.Status
	tx.CallbackProcessed = true
	tx.RawCallback = res.RawCallback
	tx.FailureReason = res.FailureReason
	tx.MpesaReceiptNumber = res.ReceiptNumber
	tx.PaidAmount = res.PaidAmount
	tx.PaidPhone = res.PaidPhone
	m.byCheckout[id] = tx
	return tx, true, nil
}

func (m *memTxs) List(_ context.Context, f models.TransactionFilter) ([]models.Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, tx := range m.byCheckout {
		out = append(out, tx)
	}
	return page(out, f.Limit, (f.Page-1)*f.Limit), int64(len(out)), nil
}

type memNotes struct {
	mu        sync.Mutex
	items     []models.Notification
	createErr error
}

func (m *memNotes) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return models.Notification{}, m.createErr
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	m.items = append(m.items, n)
	return n, nil
}

func (m *memNotes) GetByID(_ context.Context, id string) (models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Notification{}, repo.ErrNotFound
}

func (m *memNotes) forRecipient(rid string) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.items {
		if n.RecipientID == rid {
			out = append(out, n)
		}
	}
	return out
}

func (m *memNotes) ListByRecipient(_ context.Context, rid string, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range m.forRecipient(rid) {
		if !unreadOnly || !n.Read {
			out = append(out, n)
		}
	}
	return page(out, limit, offset), int64(len(out)), nil
}

func (m *memNotes) CountUnread(_ context.Context, rid string) (int64, error) {
	var n int64
	for _, x := range m.forRecipient(rid) {
		if !x.Read {
			n++
		}
	}
	return n, nil
}

func (m *memNotes) MarkRead(_ context.Context, id, rid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.items {
		if n.ID == id && n.RecipientID == rid {
			m.items[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memNotes) MarkAllRead(_ context.Context, rid string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c int64
	for i, n := range m.items {
		if n.RecipientID == rid && !n.Read {
			m.items[i].Read = true
			c++
		}
	}
	return c, nil
}

func (m *memNotes) Delete(_ context.Context, id, rid string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.items {
		if n.ID == id && n.RecipientID == rid {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memNotes) DeleteAll(_ context.Context, rid string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	var c int64
	for _, n := range m.items {
		if n.RecipientID == rid {
			c++
			continue
		}
		kept = append(kept, n)
	}
	m.items = kept
	return c, nil
}

type memAudit struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (m *memAudit) Create(_ context.Context, l models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, l)
	return nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, l := range m.logs {
		out = append(out, l.EntityType+":"+l.Action)
	}
	return out
}

type emitted struct {
	UserID  string
	Event   string
	Payload any
}

type recordingPub struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (p *recordingPub) Emit(_ context.Context, userID, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, emitted{userID, event, payload})
	return nil
}

func (p *recordingPub) named(event string) []emitted {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []emitted
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeGateway struct {
	mu    sync.Mutex
	calls []mpesa.PushRequest
	res   mpesa.PushResponse
	err   error
}

func (g *fakeGateway) STKPush(_ context.Context, in mpesa.PushRequest) (mpesa.PushResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, in)
	return g.res, g.err
}

// inlinePool runs submitted work on the caller's goroutine.
type inlinePool struct{}

func (inlinePool) Submit(f func()) bool { f(); return true }

var errBoom = errors.New("boom")

type fixture struct {
	users    *memUsers
	bookings *memBookings
	txs      *memTxs
	notes    *memNotes
	audit    *memAudit
	pub      *recordingPub
	gw       *fakeGateway

	notify   *NotificationService
	booking  *BookingService
	payments *PaymentService
	admin    *AdminService

	customer models.User
	provider models.User
	admins   []models.User
}

func newFixture() *fixture {
	f := &fixture{
		bookings: newMemBookings(),
		txs:      newMemTxs(),
		notes:    &memNotes{},
		audit:    &memAudit{},
		pub:      &recordingPub{},
		gw: &fakeGateway{res: mpesa.PushResponse{
			MerchantRequestID: "29115-34620561-1",
			CheckoutRequestID: "ws_CO_191220191020363925",
			ResponseCode:      "0",
		}},
	}
	f.customer = models.User{ID: "cust-1", Name: "Jane Wanjiku", Email: "jane@example.com", Role: models.RoleCustomer, Status: "active"}
	f.provider = models.User{ID: "prov-1", Name: "Otieno Plumbing", Email: "otieno@example.com", Role: models.RoleProvider, Status: "active"}
	f.admins = []models.User{
		{ID: "admin-1", Name: "Admin One", Email: "a1@example.com", Role: models.RoleAdmin, Status: "active"},
		{ID: "admin-2", Name: "Admin Two", Email: "a2@example.com", Role: models.RoleAdmin, Status: "active"},
	}
	f.users = newMemUsers(append([]models.User{f.customer, f.provider}, f.admins...)...)

	f.notify = NewNotificationService(f.notes, f.users, f.pub, discard)
	f.booking = NewBookingService(f.bookings, f.users, f.notify, f.pub, discard)
	f.payments = NewPaymentService(f.gw, f.txs, f.bookings, f.audit, inlinePool{}, discard)
	f.admin = NewAdminService(f.bookings, f.txs, f.users, f.audit, f.notify, discard)
	return f
}

func (f *fixture) cust() Customer { return Customer{ID: f.customer.ID, Name: f.customer.Name} }

func bookingInput(provider string, method models.PaymentMethod, paid bool) CreateBookingInput {
	return CreateBookingInput{
		ServiceID:       "svc-1",
		ServiceName:     "Pipe Repair",
		CategoryName:    "Plumbing",
		ServiceProvider: provider,
		Amount:          500,
		Address:         "12 Moi Avenue",
		City:            "Nairobi",
		Phone:           "0712345678",
		DeliveryDate:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		PaymentMethod:   method,
		IsPaid:          paid,
	}
}
