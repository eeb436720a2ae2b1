package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"internet-cafe-api/internal/audit"
	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/pkg/errors"
	"internet-cafe-api/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterUserRequest carries the fields needed to register a user.
type RegisterUserRequest struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
	Address     string
	DateOfBirth *time.Time
	Role        model.UserRole
}

// UpdateProfileRequest carries the editable profile fields of a user.
type UpdateProfileRequest struct {
	Email       string
	FullName    string
	PhoneNumber string
	Address     string
	DateOfBirth *time.Time
	Role        model.UserRole
}

// UserService handles registration, profiles and credentials
type UserService struct {
	store    Store
	audit    AuditRecorder
	logger   *slog.Logger
	hashCost int
}

// NewUserService creates a new user service
func NewUserService(store Store, recorder AuditRecorder, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &UserService{store: store, audit: recorder, logger: logger, hashCost: bcrypt.DefaultCost}
}

// RegisterUser creates the user and its zero-balance account in one transaction.
func (s *UserService) RegisterUser(ctx context.Context, req RegisterUserRequest, actor uuid.UUID) (*model.User, error) {
	user := model.User{
		ID:          uuid.New(),
		Username:    strings.TrimSpace(req.Username),
		Email:       strings.TrimSpace(req.Email),
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
		Role:        req.Role,
		Status:      model.UserStatusActive,
	}
	if user.Role == "" {
		user.Role = model.RoleCustomer
	}

	errs := validation.ValidateUserInput(&user)
	if err := validation.ValidatePassword(req.Password); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return nil, errors.ValidationError(strings.Join(errs, "; "))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, errors.InternalError("failed to hash password", err)
	}
	user.PasswordHash = string(hash)

	var account *model.Account
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Users.CreateUser(ctx, &user, actor); err != nil {
			return err
		}
		var err error
		account, _, err = createAccount(ctx, repos, user.ID, actor)
		return err
	})
	if err != nil {
		return nil, translate(err, "register user")
	}

	s.audit.Record(audit.Event{
		Action:   audit.ActionUserRegistered,
		Entity:   audit.EntityUser,
		EntityID: user.ID,
		ActorID:  actor,
		Detail:   fmt.Sprintf("User %s registered as %s", user.Username, user.Role),
	})
	s.audit.Record(audit.Event{
		Action:   audit.ActionAccountCreated,
		Entity:   audit.EntityAccount,
		EntityID: account.ID,
		ActorID:  actor,
		Detail:   fmt.Sprintf("Account created for user %s", user.Username),
	})
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	return &user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.store.Repos().Users.GetUserByID(ctx, id)
	if err != nil {
		return nil, translate(err, "retrieve user")
	}
	return user, nil
}

// ListUsers retrieves users with pagination
func (s *UserService) ListUsers(ctx context.Context, params repository.PaginationParams) (*repository.Page[model.User], error) {
	page, err := s.store.Repos().Users.ListUsers(ctx, params)
	if err != nil {
		return nil, translate(err, "retrieve users")
	}
	return page, nil
}

// UpdateProfile replaces the editable profile fields. The username never changes.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest, actor uuid.UUID) (*model.User, error) {
	repos := s.store.Repos()

	user, err := repos.Users.GetUserByID(ctx, id)
	if err != nil {
		return nil, translate(err, "retrieve user for update")
	}

	user.Email = strings.TrimSpace(req.Email)
	user.FullName = strings.TrimSpace(req.FullName)
	user.PhoneNumber = req.PhoneNumber
	user.Address = req.Address
	user.DateOfBirth = req.DateOfBirth
	if req.Role != "" {
		user.Role = req.Role
	}
	if errs := validation.ValidateUserInput(user); len(errs) > 0 {
		return nil, errors.ValidationError(strings.Join(errs, "; "))
	}

	if err := repos.Users.UpdateUser(ctx, user, actor); err != nil {
		return nil, translate(err, "update user")
	}

	s.logger.Info("user profile updated", "user_id", id)
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string, actor uuid.UUID) error {
	if err := validation.ValidatePassword(next); err != nil {
		return errors.ValidationError(err.Error())
	}

	repos := s.store.Repos()
	user, err := repos.Users.GetUserByID(ctx, id)
	if err != nil {
		return translate(err, "retrieve user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return errors.NewAppError(errors.ErrorCodeUnauthorized, "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.hashCost)
	if err != nil {
		return errors.InternalError("failed to hash password", err)
	}
	if err := repos.Users.UpdatePasswordHash(ctx, id, string(hash), actor); err != nil {
		return translate(err, "update password")
	}

	s.logger.Info("password changed", "user_id", id)
	return nil
}

// ChangeStatus activates or suspends a user. Suspended users cannot start sessions.
func (s *UserService) ChangeStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, actor uuid.UUID) (*model.User, error) {
	if !status.Valid() {
		return nil, errors.InvalidParameterError("status", fmt.Sprintf("invalid user status: %s", status))
	}

	repos := s.store.Repos()
	user, err := repos.Users.GetUserByID(ctx, id)
	if err != nil {
		return nil, translate(err, "retrieve user")
	}
	if user.Status == status {
		return user, nil
	}

	previous := user.Status
	if err := repos.Users.UpdateUserStatus(ctx, id, status, actor); err != nil {
		return nil, translate(err, "update user status")
	}
	user.Status = status

	s.audit.Record(audit.Event{
		Action:   audit.ActionUserStatusChanged,
		Entity:   audit.EntityUser,
		EntityID: id,
		ActorID:  actor,
		Detail:   fmt.Sprintf("User %s changed from %s to %s", user.Username, previous, status),
	})
	s.logger.Info("user status changed", "user_id", id, "from", previous, "to", status)

	return user, nil
}

// Authenticate checks a username and password and records the login time.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	repos := s.store.Repos()

	user, err := repos.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if isErr(err, repository.ErrUserNotFound) {
			return nil, errors.NewAppError(errors.ErrorCodeUnauthorized, "invalid username or password")
		}
		return nil, translate(err, "retrieve user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errors.NewAppError(errors.ErrorCodeUnauthorized, "invalid username or password")
	}
	if user.Status == model.UserStatusSuspended {
		return nil, errors.NewAppError(errors.ErrorCodeForbidden, "user is suspended")
	}

	now := time.Now().UTC()
	if err := repos.Users.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, translate(err, "record login")
	}
	user.LastLoginTime = &now

	return user, nil
}

// RecordLogin stamps the user's last login time.
func (s *UserService) RecordLogin(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Repos().Users.RecordLogin(ctx, id, time.Now().UTC()); err != nil {
		return translate(err, "record login")
	}
	return nil
}
