package service

import (
	"context"
	"strings"
	"testing"

	"internet-cafe-api/internal/audit"
	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validRegistration() RegisterUserRequest {
	return RegisterUserRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "correct horse",
		FullName: "Carol Danvers",
	}
}

func TestUserService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.RegisterUser(ctx, validRegistration(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, user.Role)
	assert.Equal(t, model.UserStatusActive, user.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))

	account, err := f.accounts.GetAccountByUserID(ctx, user.ID)
	require.NoError(t, err)
	requireAmount(t, "0.00", account.Balance)

	assert.Equal(t, []string{audit.ActionUserRegistered, audit.ActionAccountCreated}, f.audit.actions())
	assert.Equal(t, 1, f.store.txCount)
}

func TestUserService_RegisterRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.users.RegisterUser(ctx, validRegistration(), f.actor)
	require.NoError(t, err)

	_, err = f.users.RegisterUser(ctx, validRegistration(), f.actor)
	requireAppError(t, err, errors.ErrorCodeAlreadyExists)

	weak := validRegistration()
	weak.Username = "dave"
	weak.Email = "dave@example.com"
	weak.Password = "short"
	_, err = f.users.RegisterUser(ctx, weak, f.actor)
	requireAppError(t, err, errors.ErrorCodeValidation)

	badRole := validRegistration()
	badRole.Username = "erin"
	badRole.Email = "erin@example.com"
	badRole.Role = "owner"
	_, err = f.users.RegisterUser(ctx, badRole, f.actor)
	requireAppError(t, err, errors.ErrorCodeValidation)

	page, err := f.users.ListUsers(ctx, repository.PaginationParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
}

func TestUserService_PasswordAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.users.RegisterUser(ctx, validRegistration(), f.actor)
	require.NoError(t, err)

	err = f.users.ChangePassword(ctx, user.ID, "wrong password", "new password 1", user.ID)
	requireAppError(t, err, errors.ErrorCodeUnauthorized)

	err = f.users.ChangePassword(ctx, user.ID, "correct horse", "tiny", user.ID)
	requireAppError(t, err, errors.ErrorCodeValidation)

	require.NoError(t, f.users.ChangePassword(ctx, user.ID, "correct horse", "new password 1", user.ID))

	_, err = f.users.Authenticate(ctx, "carol", "correct horse")
	requireAppError(t, err, errors.ErrorCodeUnauthorized)

	loggedIn, err := f.users.Authenticate(ctx, "carol", "new password 1")
	require.NoError(t, err)
	require.NotNil(t, loggedIn.LastLoginTime)

	_, err = f.users.Authenticate(ctx, "nobody", "new password 1")
	requireAppError(t, err, errors.ErrorCodeUnauthorized)

	_, err = f.users.ChangeStatus(ctx, user.ID, model.UserStatusSuspended, f.actor)
	require.NoError(t, err)
	_, err = f.users.Authenticate(ctx, "carol", "new password 1")
	requireAppError(t, err, errors.ErrorCodeForbidden)
}

func TestUserService_PasswordPastBcryptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := validRegistration()
	req.Password = strings.Repeat("p", 80)
	_, err := f.users.RegisterUser(ctx, req, f.actor)
	requireAppError(t, err, errors.ErrorCodeValidation)
	assert.Empty(t, f.audit.actions())

	user, err := f.users.RegisterUser(ctx, validRegistration(), f.actor)
	require.NoError(t, err)
	err = f.users.ChangePassword(ctx, user.ID, "correct horse", strings.Repeat("p", 80), user.ID)
	requireAppError(t, err, errors.ErrorCodeValidation)
}

func TestUserService_ChangeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, _ := f.seedUser(t, "alice", "0")

	suspended, err := f.users.ChangeStatus(ctx, user.ID, model.UserStatusSuspended, f.actor)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusSuspended, suspended.Status)
	assert.Equal(t, "User alice changed from active to suspended", f.audit.last().Detail)

	_, err = f.users.ChangeStatus(ctx, user.ID, model.UserStatusSuspended, f.actor)
	require.NoError(t, err)
	assert.Len(t, f.audit.actions(), 1)

	_, err = f.users.ChangeStatus(ctx, user.ID, "banned", f.actor)
	requireAppError(t, err, errors.ErrorCodeInvalidParameter)

	_, err = f.users.ChangeStatus(ctx, uuid.New(), model.UserStatusActive, f.actor)
	requireAppError(t, err, errors.ErrorCodeNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, _ := f.seedUser(t, "alice", "0")

	updated, err := f.users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
		Email:       "alice@new.example.com",
		FullName:    "Alice Liddell",
		PhoneNumber: "555-0100",
	}, f.actor)
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "alice@new.example.com", updated.Email)
	assert.Equal(t, model.RoleCustomer, updated.Role)

	_, err = f.users.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Email: "bad", FullName: "x"}, f.actor)
	requireAppError(t, err, errors.ErrorCodeValidation)

	require.NoError(t, f.users.RecordLogin(ctx, user.ID))
	fetched, err := f.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, fetched.LastLoginTime)
}
