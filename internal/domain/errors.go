package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Entity errors
	ErrEntityNotFound       = errors.New("entity not found")
	ErrUnknownEntityKind    = errors.New("unknown entity kind")
	ErrOpeningBalanceLocked = errors.New("opening balance cannot change once transactions exist")

	// Transaction validation errors
	ErrInvalidEntityName         = errors.New("invalid entity name")
	ErrInvalidAmount             = errors.New("amount must be positive")
	ErrAmountTooLarge            = errors.New("amount exceeds maximum allowed")
	ErrInvalidDescription        = errors.New("invalid description")
	ErrInvalidTransactionDate    = errors.New("transaction date outside allowed window")
	ErrUnknownTransactionType    = errors.New("unknown transaction type")
	ErrTransactionTypeNotAllowed = errors.New("transaction type not allowed for entity kind")
	ErrUnknownPaymentMethod      = errors.New("unknown payment method")

	// ErrInvariantViolation marks a ledger inconsistency: a stored record
	// with an impossible posting pair, or a stored balance that disagrees
	// with the fold over the transaction history. Never auto-corrected.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

// ValidationError carries field-scoped messages for a rejected input.
// Nothing is written when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Any reports whether any field failed.
func (e *ValidationError) Any() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed")
	for _, f := range fields {
		fmt.Fprintf(&b, "; %s: %s", f, e.Fields[f])
	}
	return b.String()
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
