package domain

import "github.com/shopspring/decimal"

// SettlementStatus reports how much of a purchase has been paid off.
type SettlementStatus string

const (
	StatusPaid    SettlementStatus = "Paid"
	StatusPartial SettlementStatus = "Partial"
	StatusDue     SettlementStatus = "Due"
)

// PurchaseLine is one purchase (debit posting) on a supplier ledger with
// its derived settlement state. RunningBalance is the running balance from
// the full ledger fold at the point of this purchase, not a second
// computation over purchases alone.
type PurchaseLine struct {
	Transaction    *Transaction
	AmountPaid     decimal.Decimal
	Outstanding    decimal.Decimal
	Status         SettlementStatus
	RunningBalance decimal.Decimal
}

// SupplierSummary aggregates one party's ledger for the supplier view.
type SupplierSummary struct {
	Entity           *Entity
	TotalPurchases   decimal.Decimal
	TotalPaid        decimal.Decimal
	TotalOutstanding decimal.Decimal
	Purchases        []PurchaseLine
}

// SupplierOverview is one row of the cross-entity supplier view.
type SupplierOverview struct {
	Entity           *Entity
	TotalPurchases   decimal.Decimal
	TotalPaid        decimal.Decimal
	TotalOutstanding decimal.Decimal
	CurrentBalance   decimal.Decimal
	Side             BalanceSide
}

// SettlePurchases derives per-purchase settlement by allocating credit
// postings (payments sent, credit adjustments) to debit postings oldest
// first. The transactions must be in canonical order and carry running
// balances from the full ledger fold.
//
// This is a reporting view over the ledger, not stored state: replaying
// the same sequence always yields the same allocation.
func SettlePurchases(txs []*Transaction) []PurchaseLine {
	totalCredit := decimal.Zero
	for _, tx := range txs {
		totalCredit = totalCredit.Add(tx.CreditAmount)
	}

	lines := make([]PurchaseLine, 0, len(txs))
	remaining := totalCredit
	for _, tx := range txs {
		if !tx.DebitAmount.IsPositive() {
			continue
		}

		paid := decimal.Min(tx.DebitAmount, remaining)
		if paid.IsNegative() {
			paid = decimal.Zero
		}
		remaining = remaining.Sub(paid)

		outstanding := tx.DebitAmount.Sub(paid)
		status := StatusDue
		switch {
		case outstanding.IsZero():
			status = StatusPaid
		case paid.IsPositive():
			status = StatusPartial
		}

		lines = append(lines, PurchaseLine{
			Transaction:    tx,
			AmountPaid:     paid,
			Outstanding:    outstanding,
			Status:         status,
			RunningBalance: tx.RunningBalance,
		})
	}
	return lines
}
