package models

import "time"

type BookingStatus string

const (
	BookingPending        BookingStatus = "Pending"
	BookingConfirmed      BookingStatus = "Confirmed"
	BookingInProgress     BookingStatus = "In Progress"
	BookingWaitingForWork BookingStatus = "Waiting for Work"
	BookingCompleted      BookingStatus = "Completed"
	BookingCancelled      BookingStatus = "Cancelled"
	BookingPaymentFailed  BookingStatus = "Payment Failed"
)

type PaymentMethod string

const (
	PaymentMpesa PaymentMethod = "Mpesa"
	PaymentCash  PaymentMethod = "Cash"
)

// AdminStatuses are the values an admin may set directly.
var AdminStatuses = []BookingStatus{
	BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled,
}

// ProviderStatuses are the work-progression values a provider may set.
var ProviderStatuses = []BookingStatus{BookingInProgress, BookingCompleted}

func (s BookingStatus) In(set []BookingStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingWaitingForWork,
		BookingCompleted, BookingCancelled, BookingPaymentFailed:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool { return m == PaymentMpesa || m == PaymentCash }

type Booking struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customerId"`
	CustomerName    string        `json:"customerName"`
	ServiceID       string        `json:"serviceId"`
	ServiceName     string        `json:"serviceName"`
	CategoryName    string        `json:"categoryName"`
	ServiceProvider string        `json:"serviceProvider"`
	ProviderID      string        `json:"providerId"`
	Amount          int64         `json:"amount"`
	Address         string        `json:"address"`
	City            string        `json:"city"`
	Phone           string        `json:"phone"`
	DeliveryDate    time.Time     `json:"deliveryDate"`
	IsPaid          bool          `json:"is_paid"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Status          BookingStatus `json:"status"`
	Read            bool          `json:"read"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// DeriveStatus applies the save rule for writes that don't set status explicitly:
// paid bookings wait for work, unpaid ones are pending.
func (b *Booking) DeriveStatus() {
	if b.IsPaid {
		b.Status = BookingWaitingForWork
	} else {
		b.Status = BookingPending
	}
}

// BookingSummary is the denormalized payload pushed to a provider in real time.
type BookingSummary struct {
	ID            string        `json:"id"`
	CustomerName  string        `json:"customerName"`
	ServiceName   string        `json:"serviceName"`
	CategoryName  string        `json:"categoryName"`
	Amount        int64         `json:"amount"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	Phone         string        `json:"phone"`
	DeliveryDate  time.Time     `json:"deliveryDate"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	IsPaid        bool          `json:"is_paid"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (b Booking) Summary() BookingSummary {
	return BookingSummary{
		ID:            b.ID,
		CustomerName:  b.CustomerName,
		ServiceName:   b.ServiceName,
		CategoryName:  b.CategoryName,
		Amount:        b.Amount,
		Address:       b.Address,
		City:          b.City,
		Phone:         b.Phone,
		DeliveryDate:  b.DeliveryDate,
		PaymentMethod: b.PaymentMethod,
		IsPaid:        b.IsPaid,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	}
}

type BookingFilter struct {
	Status    string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

type BookingStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Revenue   int64 `json:"revenue"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

func NewPagination(total int64, page, limit int) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// Normalize clamps page/limit to the API defaults.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
