package postgres

import (
	"context"

	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userColumns = `id, name, email, phone, password_hash, role, status,
  verification_status, verification_documents, verification_rejection_reason,
  created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var (
		u      models.User
		vs     *string
		docs   []string
		reason *string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Status,
		&vs, &docs, &reason, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	if vs != nil {
		u.Verification = &models.Verification{Status: models.VerificationStatus(*vs), Documents: docs}
		if reason != nil {
			u.Verification.RejectionReason = *reason
		}
	}
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	var vs *string
	var docs []string
	if u.Verification != nil {
		s := string(u.Verification.Status)
		vs = &s
		docs = u.Verification.Documents
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users(id, name, email, phone, password_hash, role, status, verification_status, verification_documents)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, u.Status, vs, docs,
	)
	return scanUser(row)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email))
}

func (r *usersRepo) FindByNameAndRole(ctx context.Context, name string, role models.Role) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE name=$1 AND role=$2 ORDER BY created_at LIMIT 1`,
		name, role,
	))
}

func (r *usersRepo) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role=$1 AND status='active' ORDER BY created_at`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) UpdateVerification(ctx context.Context, id string, v models.Verification) (models.User, error) {
	var reason *string
	if v.RejectionReason != "" {
		reason = &v.RejectionReason
	}
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		    SET verification_status=$2, verification_rejection_reason=$3,
		        verification_documents=$4, updated_at=now()
		  WHERE id=$1
		  RETURNING `+userColumns,
		id, string(v.Status), reason, v.Documents,
	))
}
