package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/model"
)

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", "Ann", "ann@example.com", "hash", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &model.User{ID: "u1", Name: "Ann", Email: "  Ann@Example.COM ", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, "ann@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err = repo.Create(context.Background(), &model.User{ID: "u1", Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmailMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("a@b.co").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "is_admin"}))

	_, err = repo.GetByEmail(context.Background(), "A@B.co")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
