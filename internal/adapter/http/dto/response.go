package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bakeops/backledger/internal/domain"
	"github.com/bakeops/backledger/internal/usecase"
)

// EntityResponse represents a customer or party in API responses.
type EntityResponse struct {
	ID             int64           `json:"id"`
	Type           string          `json:"type"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	Email          string          `json:"email,omitempty"`
	Address        string          `json:"address,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	BalanceSide    string          `json:"balance_side"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// EntityFromDomain converts a domain entity to a response.
func EntityFromDomain(e *domain.Entity) *EntityResponse {
	return &EntityResponse{
		ID:             e.ID,
		Type:           string(e.Kind),
		Name:           e.Name,
		Phone:          e.Phone,
		Email:          e.Email,
		Address:        e.Address,
		OpeningBalance: e.OpeningBalance,
		CurrentBalance: e.CurrentBalance,
		BalanceSide:    string(domain.SideOf(e.CurrentBalance)),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// EntitiesFromDomain converts domain entities to responses.
func EntitiesFromDomain(entities []*domain.Entity) []*EntityResponse {
	result := make([]*EntityResponse, len(entities))
	for i, e := range entities {
		result[i] = EntityFromDomain(e)
	}
	return result
}

// ListEntitiesResponse wraps an entity listing.
type ListEntitiesResponse struct {
	Entities []*EntityResponse `json:"entities"`
	Total    int64             `json:"total"`
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID              string          `json:"id"`
	EntityID        int64           `json:"entity_id"`
	EntityType      string          `json:"entity_type"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	Type            string          `json:"type"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	RunningBalance  decimal.Decimal `json:"running_balance"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		EntityID:        t.EntityID,
		EntityType:      string(t.EntityKind),
		Date:            t.Date.Format(requestDateFormat),
		Description:     t.Description,
		ReferenceNumber: t.ReferenceNumber,
		DebitAmount:     t.DebitAmount,
		CreditAmount:    t.CreditAmount,
		Type:            string(t.Type),
		PaymentMethod:   string(t.PaymentMethod),
		Notes:           t.Notes,
		RunningBalance:  t.RunningBalance,
		CreatedAt:       t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// LedgerResponse is the full account view of one entity.
type LedgerResponse struct {
	Entity         *EntityResponse        `json:"entity"`
	OpeningBalance decimal.Decimal        `json:"opening_balance"`
	Transactions   []*TransactionResponse `json:"transactions"`
	CurrentBalance decimal.Decimal        `json:"current_balance"`
	BalanceSide    string                 `json:"balance_side"`
}

// LedgerFromDomain converts a domain ledger to a response.
func LedgerFromDomain(l *domain.Ledger) *LedgerResponse {
	return &LedgerResponse{
		Entity:         EntityFromDomain(l.Entity),
		OpeningBalance: l.OpeningBalance,
		Transactions:   TransactionsFromDomain(l.Transactions),
		CurrentBalance: l.CurrentBalance,
		BalanceSide:    string(domain.SideOf(l.CurrentBalance)),
	}
}

// SummaryResponse represents an entity summary.
type SummaryResponse struct {
	Entity           *EntityResponse `json:"entity"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	TransactionCount int             `json:"transaction_count"`
	BalanceSide      string          `json:"balance_side"`
}

// SummaryFromDomain converts a domain entity summary to a response.
func SummaryFromDomain(s *domain.EntitySummary) *SummaryResponse {
	resp := &SummaryResponse{
		CurrentBalance:   s.CurrentBalance,
		TotalDebit:       s.TotalDebit,
		TotalCredit:      s.TotalCredit,
		TransactionCount: s.TransactionCount,
		BalanceSide:      string(s.Side),
	}
	if s.Entity != nil {
		resp.Entity = EntityFromDomain(s.Entity)
	}
	return resp
}

// PurchaseLineResponse is one purchase with its settlement state.
type PurchaseLineResponse struct {
	Transaction    *TransactionResponse `json:"transaction"`
	AmountPaid     decimal.Decimal      `json:"amount_paid"`
	Outstanding    decimal.Decimal      `json:"outstanding"`
	Status         string               `json:"status"`
	RunningBalance decimal.Decimal      `json:"running_balance"`
}

// SupplierSummaryResponse is the aggregated supplier view of one party.
type SupplierSummaryResponse struct {
	Entity           *EntityResponse         `json:"entity"`
	TotalPurchases   decimal.Decimal         `json:"total_purchases"`
	TotalPaid        decimal.Decimal         `json:"total_paid"`
	TotalOutstanding decimal.Decimal         `json:"total_outstanding"`
	Purchases        []*PurchaseLineResponse `json:"purchases"`
}

// SupplierSummaryFromDomain converts a domain supplier summary.
func SupplierSummaryFromDomain(s *domain.SupplierSummary) *SupplierSummaryResponse {
	purchases := make([]*PurchaseLineResponse, len(s.Purchases))
	for i, line := range s.Purchases {
		purchases[i] = &PurchaseLineResponse{
			Transaction:    TransactionFromDomain(line.Transaction),
			AmountPaid:     line.AmountPaid,
			Outstanding:    line.Outstanding,
			Status:         string(line.Status),
			RunningBalance: line.RunningBalance,
		}
	}

	return &SupplierSummaryResponse{
		Entity:           EntityFromDomain(s.Entity),
		TotalPurchases:   s.TotalPurchases,
		TotalPaid:        s.TotalPaid,
		TotalOutstanding: s.TotalOutstanding,
		Purchases:        purchases,
	}
}

// SupplierOverviewResponse is one row of the cross-supplier view.
type SupplierOverviewResponse struct {
	Entity           *EntityResponse `json:"entity"`
	TotalPurchases   decimal.Decimal `json:"total_purchases"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	BalanceSide      string          `json:"balance_side"`
}

// SupplierOverviewsFromDomain converts domain supplier overviews.
func SupplierOverviewsFromDomain(overviews []*domain.SupplierOverview) []*SupplierOverviewResponse {
	result := make([]*SupplierOverviewResponse, len(overviews))
	for i, o := range overviews {
		result[i] = &SupplierOverviewResponse{
			Entity:           EntityFromDomain(o.Entity),
			TotalPurchases:   o.TotalPurchases,
			TotalPaid:        o.TotalPaid,
			TotalOutstanding: o.TotalOutstanding,
			CurrentBalance:   o.CurrentBalance,
			BalanceSide:      string(o.Side),
		}
	}
	return result
}

// BalanceMismatchResponse is one inconsistent entity in a consistency
// report.
type BalanceMismatchResponse struct {
	Entity  string          `json:"entity"`
	Stored  decimal.Decimal `json:"stored"`
	Derived decimal.Decimal `json:"derived"`
}

// ConsistencyResponse is the outcome of a full-ledger consistency check.
type ConsistencyResponse struct {
	Checked    int                        `json:"checked"`
	Consistent bool                       `json:"consistent"`
	Mismatches []*BalanceMismatchResponse `json:"mismatches"`
}

// ConsistencyFromReport converts a consistency report.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	mismatches := make([]*BalanceMismatchResponse, len(r.Mismatches))
	for i, m := range r.Mismatches {
		mismatches[i] = &BalanceMismatchResponse{
			Entity:  m.Key.String(),
			Stored:  m.Stored,
			Derived: m.Derived,
		}
	}

	return &ConsistencyResponse{
		Checked:    r.Checked,
		Consistent: r.Consistent(),
		Mismatches: mismatches,
	}
}

// ErrorResponse represents an error in API responses. Fields carries
// per-field messages on validation failures.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
