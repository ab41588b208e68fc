package models

import (
	"encoding/json"
	"time"
)

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnFailed    TransactionStatus = "failed"
)

func (s TransactionStatus) Terminal() bool { return s == TxnCompleted || s == TxnFailed }

// Transaction is one M-Pesa payment attempt for a booking.
type Transaction struct {
	ID                 string            `json:"id"`
	CustomerName       string            `json:"customerName"`
	BookingID          string            `json:"bookingId"`
	ServiceID          string            `json:"serviceId"`
	ServiceName        string            `json:"serviceName"`
	Amount             int64             `json:"amount"`
	Phone              string            `json:"phone"`
	TransactionID      string            `json:"transactionId"`
	MerchantRequestID  string            `json:"merchantRequestId"`
	Status             TransactionStatus `json:"status"`
	CallbackProcessed  bool              `json:"callbackProcessed"`
	RawCallback        json.RawMessage   `json:"rawCallback,omitempty"`
	FailureReason      string            `json:"failureReason,omitempty"`
	MpesaReceiptNumber string            `json:"mpesaReceiptNumber,omitempty"`
	PaidAmount         int64             `json:"paidAmount,omitempty"`
	PaidPhone          string            `json:"paidPhone,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// TransactionResult is the terminal write applied by the callback handler.
type TransactionResult struct {
	Status        TransactionStatus
	ReceiptNumber string
	PaidAmount    int64
	PaidPhone     string
	FailureReason string
	RawCallback   json.RawMessage
}

type TransactionFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}
