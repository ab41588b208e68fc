package postgres

import (
	"context"
	"errors"

	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/baharkarakas/servicehub-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const transactionColumns = `id, customer_name, booking_id, service_id, service_name, amount, phone,
  transaction_id, merchant_request_id, status, callback_processed, raw_callback, failure_reason,
  mpesa_receipt_number, paid_amount, paid_phone, created_at, updated_at`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var (
		tx  models.Transaction
		raw []byte
	)
	err := row.Scan(&tx.ID, &tx.CustomerName, &tx.BookingID, &tx.ServiceID, &tx.ServiceName, &tx.Amount, &tx.Phone,
		&tx.TransactionID, &tx.MerchantRequestID, &tx.Status, &tx.CallbackProcessed, &raw, &tx.FailureReason,
		&tx.MpesaReceiptNumber, &tx.PaidAmount, &tx.PaidPhone, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return models.Transaction{}, mapErr(err)
	}
	tx.RawCallback = raw
	return tx, nil
}

func (r *transactionsRepo) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = models.TxnPending
	}
	const q = `
INSERT INTO transactions (
  id, customer_name, booking_id, service_id, service_name, amount, phone,
  transaction_id, merchant_request_id, status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING ` + transactionColumns
	return scanTransaction(r.pool.QueryRow(ctx, q,
		tx.ID, tx.CustomerName, tx.BookingID, tx.ServiceID, tx.ServiceName, tx.Amount, tx.Phone,
		tx.TransactionID, tx.MerchantRequestID, tx.Status,
	))
}

func (r *transactionsRepo) GetByTransactionID(ctx context.Context, checkoutRequestID string) (models.Transaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE transaction_id=$1`, checkoutRequestID))
}

// ApplyResult is a compare-and-set on (status='pending', callback_processed=false).
func (r *transactionsRepo) ApplyResult(ctx context.Context, checkoutRequestID string, res models.TransactionResult) (models.Transaction, bool, error) {
	var raw []byte
	if len(res.RawCallback) > 0 {
		raw = res.RawCallback
	}
	tx, err := scanTransaction(r.pool.QueryRow(ctx, `
UPDATE transactions
   SET status=$2,
       callback_processed=true,
       raw_callback=$3,
       failure_reason=$4,
       mpesa_receipt_number=$5,
       paid_amount=$6,
       paid_phone=$7,
       updated_at=now()
 WHERE transaction_id=$1
   AND status='pending'
   AND NOT callback_processed
RETURNING `+transactionColumns,
		checkoutRequestID, res.Status, raw, res.FailureReason, res.ReceiptNumber, res.PaidAmount, res.PaidPhone,
	))
	if err == nil {
		return tx, true, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.Transaction{}, false, err
	}

	// Either the row is gone or someone else already moved it out of pending.
	current, err := r.GetByTransactionID(ctx, checkoutRequestID)
	if err != nil {
		return models.Transaction{}, false, err
	}
	return current, false, nil
}

func (r *transactionsRepo) List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int64, error) {
	where, args := transactionWhere(f)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, pageArgs := pageClause(args, f.Page, f.Limit)
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions`+where+` ORDER BY created_at DESC`+page, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, tx)
	}
	return out, total, rows.Err()
}
