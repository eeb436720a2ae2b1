package service

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// hourPrecision is the number of decimal places billed hours are rounded up to.
	hourPrecision = 5

	// UnlimitedRemainingTime is reported when a computer is free to use.
	UnlimitedRemainingTime = 365 * 24 * time.Hour
)

var (
	sixty       = decimal.NewFromInt(60)
	secondsHour = decimal.NewFromInt(3600)
	four        = decimal.NewFromInt(4)
)

// BilledMinutes rounds elapsed up to whole minutes. Non-positive durations bill zero minutes.
func BilledMinutes(elapsed time.Duration) int64 {
	if elapsed <= 0 {
		return 0
	}
	minutes := int64(elapsed / time.Minute)
	if elapsed%time.Minute != 0 {
		minutes++
	}
	return minutes
}

// CalculateCost prices a usage period: whole minutes rounded up, converted to hours
// (rounded up to five places), times the hourly rate, rounded to two places.
func CalculateCost(elapsed time.Duration, hourlyRate decimal.Decimal) decimal.Decimal {
	minutes := BilledMinutes(elapsed)
	if minutes == 0 || !hourlyRate.IsPositive() {
		return decimal.Zero.Round(2)
	}
	hours := decimal.NewFromInt(minutes).Div(sixty).RoundCeil(hourPrecision)
	return hours.Mul(hourlyRate).Round(2)
}

// MinimumReservation is the balance needed to start a session: a quarter hour at the computer's rate.
func MinimumReservation(hourlyRate decimal.Decimal) decimal.Decimal {
	if !hourlyRate.IsPositive() {
		return decimal.Zero
	}
	return hourlyRate.Div(four).RoundCeil(2)
}

// RemainingDuration converts a balance into usage time at the given rate.
// A rate of zero or less is treated as unlimited.
func RemainingDuration(balance, hourlyRate decimal.Decimal) time.Duration {
	if !hourlyRate.IsPositive() {
		return UnlimitedRemainingTime
	}
	if !balance.IsPositive() {
		return 0
	}
	seconds := balance.Mul(secondsHour).Div(hourlyRate).IntPart()
	return time.Duration(seconds) * time.Second
}
