package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"internet-cafe-api/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t testing.TB) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func uniqueViolation(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint}
}

func TestIsUniqueViolation(t *testing.T) {
	err := uniqueViolation("users_username_key")

	assert.True(t, isUniqueViolation(err))
	assert.True(t, isUniqueViolation(err, "users_email_key", "users_username_key"))
	assert.False(t, isUniqueViolation(err, "users_email_key"))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("plain")))
}

func TestStore_WithinTxCommits(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	userID := uuid.New()
	actor := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET status = $1")).
		WithArgs(model.UserStatusSuspended, sqlmock.AnyArg(), actor, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewStore(db)
	err := store.WithinTx(context.Background(), func(repos Repositories) error {
		return repos.Users.UpdateUserStatus(context.Background(), userID, model.UserStatusSuspended, actor)
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTxRollsBackOnError(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	sessionID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	store := NewStore(db)
	err := store.WithinTx(context.Background(), func(repos Repositories) error {
		return repos.Sessions.CloseSession(context.Background(), &model.Session{ID: sessionID, Status: model.SessionCompleted}, uuid.Nil)
	})

	assert.ErrorIs(t, err, ErrSessionNotActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ReposRunOutsideTransaction(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := NewStore(db).Repos().Accounts.GetAccountByID(context.Background(), id)

	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsufficientBalanceError(t *testing.T) {
	var err error = &InsufficientBalanceError{}

	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	assert.False(t, errors.Is(err, ErrAccountNotFound))
}
