package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/servicehub-backend/internal/api/httpx"
	"github.com/baharkarakas/servicehub-backend/internal/services"
)

const maxCallbackBody = 1 << 20

type MpesaHandler struct {
	Payments Payments
	Log      *slog.Logger
}

func NewMpesaHandler(p Payments, log *slog.Logger) *MpesaHandler {
	return &MpesaHandler{Payments: p, Log: log}
}

func (h *MpesaHandler) STKPush(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req services.PushInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.Payments.InitiatePush(r.Context(), services.Customer{ID: u.UserID, Name: u.Name}, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"message":           res.Message,
		"checkoutRequestId": res.CheckoutRequestID,
		"merchantRequestId": res.MerchantRequestID,
		"amount":            res.Amount,
		"phone":             res.Phone,
	})
}

// Callback acknowledges Daraja before any processing happens. A body that cannot be read
// is logged and still acknowledged.
func (h *MpesaHandler) Callback(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		h.Log.Error("read mpesa callback body", "err", err)
	} else {
		h.Payments.AcceptCallback(r.Context(), raw)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ResultCode": 0, "ResultDesc": "Accepted"})
}

func (h *MpesaHandler) Status(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	st, err := h.Payments.Status(r.Context(), services.Caller{ID: u.UserID, Role: u.Role}, chi.URLParam(r, "transactionId"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, map[string]any{
		"status":             st.Status,
		"resultDesc":         st.ResultDesc,
		"mpesaReceiptNumber": st.MpesaReceiptNumber,
		"transaction":        st.Transaction,
	})
}
