package handler

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Request bodies

type registerUserRequest struct {
	Username    string     `json:"username" validate:"required,min=3,max=50"`
	Email       string     `json:"email" validate:"required,email,max=255"`
	Password    string     `json:"password" validate:"required,min=8,max=72"`
	FullName    string     `json:"full_name" validate:"required,max=100"`
	PhoneNumber string     `json:"phone_number" validate:"omitempty,max=20"`
	Address     string     `json:"address" validate:"omitempty,max=255"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Role        string     `json:"role" validate:"omitempty,oneof=customer staff admin"`
}

type updateProfileRequest struct {
	Email       string     `json:"email" validate:"required,email,max=255"`
	FullName    string     `json:"full_name" validate:"required,max=100"`
	PhoneNumber string     `json:"phone_number" validate:"omitempty,max=20"`
	Address     string     `json:"address" validate:"omitempty,max=255"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Role        string     `json:"role" validate:"omitempty,oneof=customer staff admin"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type userStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type depositRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method" validate:"omitempty,max=50"`
	ReferenceNumber string          `json:"reference_number" validate:"omitempty,max=100"`
	Description     string          `json:"description" validate:"omitempty,max=255"`
}

type withdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" validate:"omitempty,max=255"`
}

type computerRequest struct {
	Name           string          `json:"name" validate:"required,max=50"`
	IPAddress      string          `json:"ip_address" validate:"required,ip"`
	Specifications string          `json:"specifications" validate:"omitempty,max=500"`
	Location       string          `json:"location" validate:"omitempty,max=100"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
}

type computerStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available in_use maintenance"`
}

type maintenanceRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type startSessionRequest struct {
	UserID     uuid.UUID `json:"user_id" validate:"required"`
	ComputerID uuid.UUID `json:"computer_id" validate:"required"`
}

type endSessionRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

type terminateSessionRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
