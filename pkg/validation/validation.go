package validation

import (
	"fmt"
	"net"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"internet-cafe-api/internal/model"

	"github.com/shopspring/decimal"
)

// Field length limits, in characters, matching the column widths of the schema.
const (
	MaxComputerNameLength   = 50
	MaxSpecificationsLength = 500
	MaxLocationLength       = 100
	MinUsernameLength       = 3
	MaxUsernameLength       = 50
	MaxEmailLength          = 255
	MaxFullNameLength       = 100
	MaxPhoneNumberLength    = 20
	MaxAddressLength        = 255
	MaxSessionNotesLength   = 500
	MaxDescriptionLength    = 255
)

// Password limits are in bytes. bcrypt refuses anything longer than 72.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateIP validates an IP address format (IPv4 or IPv6)
func ValidateIP(ip string) error {
	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid IP address format: %s", ip)
	}
	return nil
}

// ValidateComputerName validates computer name
func ValidateComputerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("computer name is required")
	}

	return ValidateMaxLength("computer name", name, MaxComputerNameLength)
}

// ValidateMaxLength rejects values longer than max characters.
func ValidateMaxLength(fieldName, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s cannot exceed %d characters", fieldName, max)
	}
	return nil
}

// ValidateHourlyRate rejects negative rates and fractions of a cent.
func ValidateHourlyRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("hourly rate cannot be negative")
	}
	if !rate.Equal(rate.Round(2)) {
		return fmt.Errorf("hourly rate must have at most two decimal places")
	}
	return nil
}

// ValidateUsername validates username length and characters
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return fmt.Errorf("username must be between %d and %d characters long", MinUsernameLength, MaxUsernameLength)
	}

	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, digits, '_', '.' and '-'")
	}

	return nil
}

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address: %s", email)
	}
	return nil
}

// ValidatePassword checks the password length bounds
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password cannot exceed %d bytes", MaxPasswordLength)
	}
	return nil
}

// ValidateRequired checks if a string field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateComputerInput validates all required fields for registering or updating a computer
func ValidateComputerInput(computer *model.Computer) []string {
	var errors []string

	computer.Name = strings.TrimSpace(computer.Name)
	if err := ValidateComputerName(computer.Name); err != nil {
		errors = append(errors, err.Error())
	}

	if err := ValidateIP(computer.IPAddress); err != nil {
		errors = append(errors, err.Error())
	}

	if err := ValidateMaxLength("specifications", computer.Specifications, MaxSpecificationsLength); err != nil {
		errors = append(errors, err.Error())
	}

	if err := ValidateMaxLength("location", computer.Location, MaxLocationLength); err != nil {
		errors = append(errors, err.Error())
	}

	if err := ValidateHourlyRate(computer.HourlyRate); err != nil {
		errors = append(errors, err.Error())
	}

	return errors
}

// ValidateUserInput validates the profile fields of a user
func ValidateUserInput(user *model.User) []string {
	var errors []string

	if err := ValidateUsername(user.Username); err != nil {
		errors = append(errors, err.Error())
	}

	if err := ValidateEmail(user.Email); err != nil {
		errors = append(errors, err.Error())
	} else if err := ValidateMaxLength("email", user.Email, MaxEmailLength); err != nil {
		errors = append(errors, err.Error())
	}

	if err := ValidateRequired("full name", user.FullName); err != nil {
		errors = append(errors, err.Error())
	} else if err := ValidateMaxLength("full name", user.FullName, MaxFullNameLength); err != nil {
		errors = append(errors, err.Error())
	}

	if err := ValidateMaxLength("phone number", user.PhoneNumber, MaxPhoneNumberLength); err != nil {
		errors = append(errors, err.Error())
	}

	if err := ValidateMaxLength("address", user.Address, MaxAddressLength); err != nil {
		errors = append(errors, err.Error())
	}

	if user.Role != "" && !user.Role.Valid() {
		errors = append(errors, fmt.Sprintf("invalid role: %s", user.Role))
	}

	return errors
}
