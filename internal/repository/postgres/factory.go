package postgres

import (
	"errors"

	repo "github.com/baharkarakas/servicehub-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users         repo.Users
	Bookings      repo.Bookings
	Transactions  repo.Transactions
	Notifications repo.Notifications
	AuditLogs     repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:         &usersRepo{pool},
		Bookings:      &bookingsRepo{pool},
		Transactions:  &transactionsRepo{pool},
		Notifications: &notificationsRepo{pool},
		AuditLogs:     &auditLogsRepo{pool},
	}
}

const uniqueViolation = "23505"

// mapErr turns driver errors into the repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Join(repo.ErrDuplicate, err)
	}
	return err
}
