package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/video-rental/internal/model"
)

// mysqlDuplicateKey is the server error number for a unique-key violation.
const mysqlDuplicateKey = 1062

const userColumns = "id, name, email, password_hash, is_admin"

// UserRepo is the credential store backed by the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u.  The email is normalized first; a taken address yields
// ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	_, err := withWriteRetry(ctx, func() (sql.Result, error) {
		return r.DB.ExecContext(ctx,
			"INSERT INTO users (id, name, email, password_hash, is_admin) VALUES (?, ?, ?, ?, ?)",
			u.ID, u.Name, u.Email, u.PasswordHash, u.IsAdmin)
	})
	if isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = normalizeEmail(email)
	return withRetry(ctx, func() (*model.User, error) {
		return scanUser(r.DB.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email))
	})
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return withRetry(ctx, func() (*model.User, error) {
		return scanUser(r.DB.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
	})
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateKey
}
