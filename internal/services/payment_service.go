package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/baharkarakas/servicehub-backend/internal/api/validate"
	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/metrics"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/baharkarakas/servicehub-backend/internal/mpesa"
	repo "github.com/baharkarakas/servicehub-backend/internal/repository"
)

// Gateway is the Daraja surface the payment flow needs. *mpesa.Client implements it.
type Gateway interface {
	STKPush(ctx context.Context, in mpesa.PushRequest) (mpesa.PushResponse, error)
}

type CallbackOutcome string

const (
	OutcomeCompleted CallbackOutcome = "completed"
	OutcomeFailed    CallbackOutcome = "failed"
	OutcomeDuplicate CallbackOutcome = "duplicate"
	OutcomeUnknown   CallbackOutcome = "unknown"
	OutcomeError     CallbackOutcome = "error"
)

const defaultCallbackTimeout = 30 * time.Second

type PaymentService struct {
	gw       Gateway
	txs      repo.Transactions
	bookings repo.Bookings
	audit    auditor
	pool     Submitter
	log      *slog.Logger
	timeout  time.Duration
}

func NewPaymentService(gw Gateway, txs repo.Transactions, b repo.Bookings, logs repo.AuditLogs, pool Submitter, log *slog.Logger) *PaymentService {
	return &PaymentService{
		gw:       gw,
		txs:      txs,
		bookings: b,
		audit:    auditor{logs: logs, log: log},
		pool:     pool,
		log:      log,
		timeout:  defaultCallbackTimeout,
	}
}

type PushInput struct {
	Amount      int64  `json:"amount"`
	Phone       string `json:"phone"`
	BookingID   string `json:"bookingId"`
	ServiceID   string `json:"serviceId"`
	ServiceName string `json:"serviceName"`
}

type PushResult struct {
	Message           string `json:"message"`
	CheckoutRequestID string `json:"checkoutRequestId"`
	MerchantRequestID string `json:"merchantRequestId"`
	Amount            int64  `json:"amount"`
	Phone             string `json:"phone"`
}

// Caller identifies who is reading payment state.
type Caller struct {
	ID   string
	Role models.Role
}

// InitiatePush sends an STK push for one of the customer's own bookings and
// records a pending transaction keyed by CheckoutRequestID. Nothing is written
// when Daraja does not return one.
func (s *PaymentService) InitiatePush(ctx context.Context, c Customer, in PushInput) (PushResult, error) {
	if errs := validate.Collect(
		validate.MinInt("amount", in.Amount, 1),
		validate.Required("phone", in.Phone),
		validate.Required("serviceId", in.ServiceID),
		validate.Required("bookingId", in.BookingID),
	); len(errs) > 0 {
		metrics.STKPushTotal.WithLabelValues("invalid").Inc()
		return PushResult{}, apperr.Validation("Missing required fields", errs)
	}

	phone, err := mpesa.NormalizePhone(in.Phone)
	if err != nil {
		metrics.STKPushTotal.WithLabelValues("invalid").Inc()
		var pe *mpesa.PhoneError
		if errors.As(err, &pe) {
			return PushResult{}, apperr.Validation("Invalid phone number format", pe)
		}
		return PushResult{}, apperr.Validation("Invalid phone number format", nil)
	}

	booking, err := s.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		return PushResult{}, repoErr(err, "Booking not found")
	}
	if booking.CustomerID != c.ID {
		metrics.STKPushTotal.WithLabelValues("invalid").Inc()
		return PushResult{}, apperr.Forbidden("booking belongs to another customer")
	}
	customerName := c.Name
	if customerName == "" {
		customerName = booking.CustomerName
	}
	serviceName := in.ServiceName
	if serviceName == "" {
		serviceName = booking.ServiceName
	}
	desc := serviceName
	if desc == "" {
		desc = "Service payment"
	}

	res, err := s.gw.STKPush(ctx, mpesa.PushRequest{
		Amount:           in.Amount,
		Phone:            phone,
		AccountReference: booking.ID,
		Description:      desc,
	})
	if err != nil {
		metrics.STKPushTotal.WithLabelValues("upstream_error").Inc()
		s.log.Warn("stk push failed", "booking_id", booking.ID, "err", err)
		var ue *mpesa.UpstreamError
		if errors.As(err, &ue) {
			return PushResult{}, apperr.Upstream("M-Pesa request failed", upstreamBody(ue.Body), err)
		}
		return PushResult{}, apperr.Upstream("M-Pesa request failed", nil, err)
	}

	tx, err := s.txs.Create(ctx, models.Transaction{
		CustomerName:      customerName,
		BookingID:         booking.ID,
		ServiceID:         in.ServiceID,
		ServiceName:       serviceName,
		Amount:            in.Amount,
		Phone:             phone,
		TransactionID:     res.CheckoutRequestID,
		MerchantRequestID: res.MerchantRequestID,
		Status:            models.TxnPending,
	})
	if err != nil {
		s.log.Error("push sent but transaction not stored", "checkout_request_id", res.CheckoutRequestID, "err", err)
		return PushResult{}, repoErr(err, "")
	}
	metrics.STKPushTotal.WithLabelValues("accepted").Inc()
	s.audit.record(ctx, "transaction", tx.ID, "", "stk_push_initiated", map[string]any{
		"booking_id":          booking.ID,
		"checkout_request_id": res.CheckoutRequestID,
		"amount":              in.Amount,
	})

	return PushResult{
		Message:           "STK push sent successfully",
		CheckoutRequestID: res.CheckoutRequestID,
		MerchantRequestID: res.MerchantRequestID,
		Amount:            in.Amount,
		Phone:             phone,
	}, nil
}

// upstreamBody passes the Daraja body through as JSON when it is JSON.
func upstreamBody(body string) any {
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}

// AcceptCallback schedules processing of a raw webhook body and returns at once.
func (s *PaymentService) AcceptCallback(ctx context.Context, raw []byte) {
	base := context.WithoutCancel(ctx)
	job := func() {
		ctx, cancel := context.WithTimeout(base, s.timeout)
		defer cancel()
		if _, err := s.ProcessCallback(ctx, raw); err != nil {
			s.log.Error("callback processing failed", "err", err)
		}
	}
	if !s.pool.Submit(job) {
		s.log.Warn("worker pool unavailable, processing callback on its own goroutine")
		go job()
	}
}

// ProcessCallback applies at most one terminal transition to the transaction and
// cascades the result onto its booking.
func (s *PaymentService) ProcessCallback(ctx context.Context, raw []byte) (CallbackOutcome, error) {
	outcome, err := s.processCallback(ctx, raw)
	metrics.CallbacksTotal.WithLabelValues(string(outcome)).Inc()
	return outcome, err
}

func (s *PaymentService) processCallback(ctx context.Context, raw []byte) (CallbackOutcome, error) {
	var env mpesa.CallbackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return OutcomeError, apperr.Validation("malformed callback", err.Error())
	}
	cb := env.Body.STKCallback
	if cb.CheckoutRequestID == "" {
		return OutcomeError, apperr.Validation("callback without CheckoutRequestID", nil)
	}
	log := s.log.With("checkout_request_id", cb.CheckoutRequestID, "result_code", int(cb.ResultCode))

	tx, err := s.txs.GetByTransactionID(ctx, cb.CheckoutRequestID)
	if errors.Is(err, repo.ErrNotFound) {
		log.Warn("callback for unknown transaction")
		return OutcomeUnknown, nil
	}
	if err != nil {
		return OutcomeError, apperr.Internal("load transaction", err)
	}
	if tx.Status == models.TxnCompleted || tx.CallbackProcessed {
		log.Info("callback already processed", "status", tx.Status)
		return OutcomeDuplicate, nil
	}

	res := models.TransactionResult{RawCallback: json.RawMessage(raw)}
	if cb.Succeeded() {
		res.Status = models.TxnCompleted
		res.ReceiptNumber = cb.ReceiptNumber()
		res.PaidAmount = cb.PaidAmount()
		res.PaidPhone = cb.PaidPhone()
	} else {
		res.Status = models.TxnFailed
		res.FailureReason = cb.ResultDesc
	}

	tx, applied, err := s.txs.ApplyResult(ctx, cb.CheckoutRequestID, res)
	if err != nil {
		return OutcomeError, apperr.Internal("apply callback result", err)
	}
	if !applied {
		log.Info("callback already processed", "status", tx.Status)
		return OutcomeDuplicate, nil
	}

	outcome := OutcomeFailed
	if res.Status == models.TxnCompleted {
		outcome = OutcomeCompleted
		method := models.PaymentMpesa
		_, err = s.bookings.SetPayment(ctx, tx.BookingID, true, &method, models.BookingWaitingForWork)
	} else {
		_, err = s.bookings.SetPayment(ctx, tx.BookingID, false, nil, models.BookingPaymentFailed)
	}
	if err != nil {
		log.Error("booking cascade failed", "booking_id", tx.BookingID, "err", err)
		return OutcomeError, apperr.Internal("update booking", err)
	}

	s.audit.record(ctx, "transaction", tx.ID, "", "status_change", map[string]any{
		"status":         tx.Status,
		"receipt":        tx.MpesaReceiptNumber,
		"failure_reason": tx.FailureReason,
		"booking_id":     tx.BookingID,
	})
	log.Info("callback applied", "status", tx.Status, "booking_id", tx.BookingID)
	return outcome, nil
}

type PaymentStatus struct {
	Status             models.TransactionStatus `json:"status"`
	ResultDesc         string                   `json:"resultDesc,omitempty"`
	MpesaReceiptNumber string                   `json:"mpesaReceiptNumber,omitempty"`
	Transaction        models.Transaction       `json:"transaction"`
}

// Status is the polling view of one transaction. Only admins and the customer
// who owns the booking can see it; anyone else gets not found.
func (s *PaymentService) Status(ctx context.Context, c Caller, checkoutRequestID string) (PaymentStatus, error) {
	tx, err := s.txs.GetByTransactionID(ctx, checkoutRequestID)
	if err != nil {
		return PaymentStatus{}, repoErr(err, "Transaction not found")
	}
	if c.Role != models.RoleAdmin {
		b, err := s.bookings.GetByID(ctx, tx.BookingID)
		if err != nil {
			return PaymentStatus{}, repoErr(err, "Transaction not found")
		}
		if b.CustomerID != c.ID {
			return PaymentStatus{}, apperr.NotFound("Transaction not found")
		}
	}
	tx.RawCallback = nil
	return PaymentStatus{
		Status:             tx.Status,
		ResultDesc:         tx.FailureReason,
		MpesaReceiptNumber: tx.MpesaReceiptNumber,
		Transaction:        tx,
	}, nil
}
