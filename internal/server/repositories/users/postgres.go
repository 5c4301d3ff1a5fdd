package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/energyaudit/internal/common"
	"github.com/dmitrijs2005/energyaudit/internal/dbx"
	"github.com/dmitrijs2005/energyaudit/internal/server/models"
)

const userColumns = `id, email, password_hash, full_name, phone, address, role, email_verified,
	verification_token, verification_expires_at, last_login_at, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, password_hash, full_name, phone, address, role, email_verified, verification_token, verification_expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.Phone, user.Address,
		user.Role, user.EmailVerified, user.VerificationToken, user.VerificationExpiresAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	query := `UPDATE users SET last_login_at = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	query :=
		`UPDATE users
		 SET email_verified = TRUE, verification_token = NULL, verification_expires_at = NULL, updated_at = $2
		 WHERE id = (
			SELECT id FROM users
			WHERE verification_token = $1 AND verification_expires_at > $2
			LIMIT 1
		 )
		 RETURNING id, email`

	user := &models.User{EmailVerified: true}
	if err := r.db.QueryRowContext(ctx, query, token, now).Scan(&user.ID, &user.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) SetVerificationToken(ctx context.Context, userID string, token string, expiresAt time.Time, now time.Time) error {
	query :=
		`UPDATE users
		 SET verification_token = $2, verification_expires_at = $3, updated_at = $4
		 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID, token, expiresAt, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string, now time.Time) error {
	query := `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID, passwordHash, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u                   models.User
		phone, address      sql.NullString
		verificationToken   sql.NullString
		verificationExpires sql.NullTime
		lastLogin           sql.NullTime
	)

	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &phone, &address, &u.Role, &u.EmailVerified,
		&verificationToken, &verificationExpires, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	u.Phone = nullString(phone)
	u.Address = nullString(address)
	u.VerificationToken = nullString(verificationToken)
	u.VerificationExpiresAt = nullTime(verificationExpires)
	u.LastLoginAt = nullTime(lastLogin)
	return &u, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
