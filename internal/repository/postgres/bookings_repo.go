package postgres

import (
	"context"

	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type bookingsRepo struct{ pool *pgxpool.Pool }

const bookingColumns = `id, customer_id, customer_name, service_id, service_name, category_name,
  service_provider, provider_id, amount, address, city, phone, delivery_date, is_paid,
  payment_method, status, read, created_at, updated_at`

func scanBooking(row pgx.Row) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.CustomerID, &b.CustomerName, &b.ServiceID, &b.ServiceName, &b.CategoryName,
		&b.ServiceProvider, &b.ProviderID, &b.Amount, &b.Address, &b.City, &b.Phone, &b.DeliveryDate, &b.IsPaid,
		&b.PaymentMethod, &b.Status, &b.Read, &b.CreatedAt, &b.UpdatedAt)
	return b, mapErr(err)
}

func collectBookings(rows pgx.Rows) ([]models.Booking, error) {
	defer rows.Close()
	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *bookingsRepo) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return scanBooking(r.pool.QueryRow(ctx, `
INSERT INTO bookings (
  id, customer_id, customer_name, service_id, service_name, category_name, service_provider,
  provider_id, amount, address, city, phone, delivery_date, is_paid, payment_method, status, read
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
RETURNING `+bookingColumns,
		b.ID, b.CustomerID, b.CustomerName, b.ServiceID, b.ServiceName, b.CategoryName, b.ServiceProvider,
		b.ProviderID, b.Amount, b.Address, b.City, b.Phone, b.DeliveryDate, b.IsPaid, b.PaymentMethod, b.Status, b.Read,
	))
}

func (r *bookingsRepo) GetByID(ctx context.Context, id string) (models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
}

func (r *bookingsRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE customer_id=$1
		  ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *bookingsRepo) ListByProvider(ctx context.Context, providerID string, limit, offset int) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE provider_id=$1
		  ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		providerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *bookingsRepo) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, int64, error) {
	where, args := bookingWhere(f)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, pageArgs := pageClause(args, f.Page, f.Limit)
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings`+where+` ORDER BY created_at DESC`+page, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectBookings(rows)
	return out, total, err
}

func (r *bookingsRepo) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx,
		`UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1 RETURNING `+bookingColumns,
		id, status,
	))
}

func (r *bookingsRepo) SetPayment(ctx context.Context, id string, isPaid bool, method *models.PaymentMethod, status models.BookingStatus) (models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx,
		`UPDATE bookings
		    SET is_paid=$2,
		        payment_method=COALESCE($3, payment_method),
		        status=$4,
		        updated_at=now()
		  WHERE id=$1
		  RETURNING `+bookingColumns,
		id, isPaid, method, status,
	))
}

func (r *bookingsRepo) Stats(ctx context.Context) (models.BookingStats, error) {
	var s models.BookingStats
	err := r.pool.QueryRow(ctx, `
SELECT count(*),
       count(*) FILTER (WHERE status = 'Pending'),
       count(*) FILTER (WHERE status = 'Completed'),
       COALESCE(sum(amount) FILTER (WHERE is_paid), 0)::bigint
  FROM bookings`).Scan(&s.Total, &s.Pending, &s.Completed, &s.Revenue)
	return s, err
}
