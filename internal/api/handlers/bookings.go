package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/servicehub-backend/internal/api/httpx"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/baharkarakas/servicehub-backend/internal/services"
)

// BookingHandler serves the customer and provider booking routes.
type BookingHandler struct {
	Bookings Bookings
}

func NewBookingHandler(b Bookings) *BookingHandler {
	return &BookingHandler{Bookings: b}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req services.CreateBookingInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	b, err := h.Bookings.CreateBooking(r.Context(), services.Customer{ID: u.UserID, Name: u.Name}, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusCreated, map[string]any{
		"message": "Booking created successfully",
		"booking": b,
	})
}

type updatePaymentReq struct {
	BookingID string `json:"bookingId"`
}

func (h *BookingHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req updatePaymentReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	b, err := h.Bookings.MarkPaid(r.Context(), u.UserID, req.BookingID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"message": "Payment status updated",
		"booking": b,
	})
}

func (h *BookingHandler) CustomerBookings(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	list, err := h.Bookings.ListForCustomer(r.Context(), u.UserID, httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "limit", 10))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{"bookings": list})
}

func (h *BookingHandler) ProviderBookings(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	list, err := h.Bookings.ListForProvider(r.Context(), u.UserID, httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "limit", 10))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{"bookings": list})
}

type statusReq struct {
	Status models.BookingStatus `json:"status"`
}

func (h *BookingHandler) ProgressWork(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req statusReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	b, err := h.Bookings.ProgressWork(r.Context(), u.UserID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"message": "Booking status updated",
		"booking": b,
	})
}
