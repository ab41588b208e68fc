package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/servicehub-backend/internal/api/httpx"
	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/models"
)

type AdminHandler struct {
	Admin Admin
}

func NewAdminHandler(a Admin) *AdminHandler {
	return &AdminHandler{Admin: a}
}

// parseDate accepts RFC 3339 or a plain date. A plain end date covers the whole day.
func parseDate(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func bookingFilter(r *http.Request) (models.BookingFilter, error) {
	q := r.URL.Query()
	f := models.BookingFilter{
		Status: q.Get("status"),
		Search: strings.TrimSpace(q.Get("search")),
		Page:   httpx.QueryInt(r, "page", 1),
		Limit:  httpx.QueryInt(r, "limit", 10),
	}
	var err error
	if f.StartDate, err = parseDate(q.Get("startDate"), false); err != nil {
		return f, apperr.Validation("invalid startDate", q.Get("startDate"))
	}
	if f.EndDate, err = parseDate(q.Get("endDate"), true); err != nil {
		return f, apperr.Validation("invalid endDate", q.Get("endDate"))
	}
	return f, nil
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	f, err := bookingFilter(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	page, err := h.Admin.ListBookings(r.Context(), f)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"bookings":   page.Bookings,
		"pagination": page.Pagination,
	})
}

func (h *AdminHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
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
	b, err := h.Admin.UpdateBookingStatus(r.Context(), u.UserID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"message": "Booking status updated",
		"booking": b,
	})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Admin.Stats(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"total":     st.Total,
		"pending":   st.Pending,
		"completed": st.Completed,
		"revenue":   st.Revenue,
	})
}

func (h *AdminHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Admin.ListTransactions(r.Context(), models.TransactionFilter{
		Status: q.Get("status"),
		Search: strings.TrimSpace(q.Get("search")),
		Page:   httpx.QueryInt(r, "page", 1),
		Limit:  httpx.QueryInt(r, "limit", 10),
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"transactions": page.Transactions,
		"pagination":   page.Pagination,
	})
}

type verificationReq struct {
	Status          models.VerificationStatus `json:"status"`
	RejectionReason string                    `json:"rejectionReason"`
}

func (h *AdminHandler) SetVerification(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req verificationReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	provider, err := h.Admin.SetVerification(r.Context(), u.UserID, chi.URLParam(r, "id"), req.Status, strings.TrimSpace(req.RejectionReason))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"message": "Verification updated",
		"user":    provider,
	})
}
