package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bakeops/backledger/internal/usecase"
)

// requestDateFormat is the wire format for transaction dates.
const requestDateFormat = "2006-01-02"

// CreateEntityRequest represents a request to create a customer or party.
type CreateEntityRequest struct {
	Type           string          `json:"type"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	Email          string          `json:"email,omitempty"`
	Address        string          `json:"address,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntityRequest) ToUseCaseInput() usecase.CreateEntityInput {
	return usecase.CreateEntityInput{
		Kind:           r.Type,
		Name:           r.Name,
		Phone:          r.Phone,
		Email:          r.Email,
		Address:        r.Address,
		OpeningBalance: r.OpeningBalance,
	}
}

// RecordTransactionRequest represents a submitted ledger transaction.
// The caller names a type and an amount; debit and credit are derived
// server-side.
type RecordTransactionRequest struct {
	EntityType      string          `json:"entity_type"`
	EntityID        int64           `json:"entity_id"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input. An unparseable date maps to
// the zero time, which the date validation then rejects.
func (r *RecordTransactionRequest) ToUseCaseInput() usecase.RecordTransactionInput {
	date, _ := time.Parse(requestDateFormat, r.Date)

	return usecase.RecordTransactionInput{
		EntityKind:      r.EntityType,
		EntityID:        r.EntityID,
		Date:            date,
		Description:     r.Description,
		ReferenceNumber: r.ReferenceNumber,
		Type:            r.Type,
		Amount:          r.Amount,
		PaymentMethod:   r.PaymentMethod,
		Notes:           r.Notes,
	}
}

// SetOpeningBalanceRequest represents an opening-balance reset.
type SetOpeningBalanceRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}
