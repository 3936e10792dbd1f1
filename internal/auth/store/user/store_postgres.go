package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"campus/internal/auth/models"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL through database/sql (pgx driver).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `
	id, email, password_hash, role, status, must_change_password,
	first_name, last_name, dni, date_of_birth, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.UUID(user.ID),
		user.Email,
		user.PasswordHash,
		string(user.Role),
		string(user.Status),
		user.MustChangePassword,
		user.FirstName,
		user.LastName,
		nullString(user.DNI),
		nullTime(user.DateOfBirth),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user already exists: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) ExistsByEmailOrDNI(ctx context.Context, email, dni string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE lower(email) = lower($1)
			   OR ($2 <> '' AND upper(dni) = upper($2))
		)`, email, dni).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return exists, nil
}

// UpdatePassword replaces the hash and lifts the forced-change flag.
// There is no version check; concurrent updates resolve last-write-wins.
func (s *PostgresStore) UpdatePassword(ctx context.Context, userID id.UserID, hash string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2, must_change_password = FALSE, updated_at = $3
		WHERE id = $1`, uuid.UUID(userID), hash, at)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user   models.User
		userID uuid.UUID
		role   string
		status string
		dni    sql.NullString
		birth  sql.NullTime
	)
	err := row.Scan(
		&userID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&status,
		&user.MustChangePassword,
		&user.FirstName,
		&user.LastName,
		&dni,
		&birth,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, err
	}
	user.ID = id.UserID(userID)
	user.Role = models.Role(role)
	user.Status = models.UserStatus(status)
	user.DNI = dni.String
	if birth.Valid {
		user.DateOfBirth = birth.Time
	}
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}
