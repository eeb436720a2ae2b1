package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is the permission tier of a user.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleStaff    UserRole = "staff"
	RoleAdmin    UserRole = "admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// UserStatus controls whether a user may use the cafe.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// Valid reports whether s is a known user status.
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusSuspended
}

// User represents a registered customer or staff member.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	FullName      string     `json:"full_name"`
	PhoneNumber   string     `json:"phone_number,omitempty"`
	Address       string     `json:"address,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Role          UserRole   `json:"role"`
	Status        UserStatus `json:"status"`
	LastLoginTime *time.Time `json:"last_login_time,omitempty"`
	Lifecycle     Lifecycle  `json:"-"`
	Audit
}
