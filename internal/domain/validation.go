package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxEntityNameLength  = 255
	MinDescriptionLength = 3
	MaxDescriptionLength = 500
	MaxTransactionAmount = "999999999.99"

	// BackdateWindow bounds how far in the past a transaction date may
	// lie. It guards against fat-finger dates; legitimate historical
	// back-entries older than a year need an administrative path.
	BackdateWindow = 365 * 24 * time.Hour
)

var maxTransactionAmount = decimal.RequireFromString(MaxTransactionAmount)

// ValidateAmount checks a transaction amount: strictly positive and at
// most MaxTransactionAmount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(maxTransactionAmount) {
		return fmt.Errorf("%w: maximum is %s", ErrAmountTooLarge, MaxTransactionAmount)
	}
	return nil
}

// ValidateEntityName checks an entity display name.
func ValidateEntityName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidEntityName)
	}
	if len(name) > MaxEntityNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidEntityName, MaxEntityNameLength)
	}
	return nil
}

// ValidateDescription checks the description length bounds.
func ValidateDescription(description string) error {
	description = strings.TrimSpace(description)
	if len(description) < MinDescriptionLength {
		return fmt.Errorf("%w: minimum length is %d", ErrInvalidDescription, MinDescriptionLength)
	}
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: maximum length is %d", ErrInvalidDescription, MaxDescriptionLength)
	}
	return nil
}

// ValidateTransactionDate checks that date falls within
// [now - BackdateWindow, now]. Both bounds compare calendar days, so a
// transaction dated today is always accepted regardless of time of day.
func ValidateTransactionDate(date, now time.Time) error {
	day := DateOnly(date)
	today := DateOnly(now)

	if day.After(today) {
		return fmt.Errorf("%w: date is in the future", ErrInvalidTransactionDate)
	}
	if day.Before(today.Add(-BackdateWindow)) {
		return fmt.Errorf("%w: date is more than a year in the past", ErrInvalidTransactionDate)
	}
	return nil
}

// DateOnly drops the time component, keeping the calendar date in UTC.
// Transaction dates are calendar dates; everything that stores or compares
// them goes through this.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
