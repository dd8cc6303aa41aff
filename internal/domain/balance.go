package domain

import "github.com/shopspring/decimal"

// BalanceSide labels the sign of a balance for display: positive means
// the entity owes the business (Dr.), negative means the business owes
// the entity (Cr.). The convention is identical for customers and
// parties; only the business meaning differs.
type BalanceSide string

const (
	SideDebit   BalanceSide = "Dr."
	SideCredit  BalanceSide = "Cr."
	SideSettled BalanceSide = ""
)

// SideOf returns the display side for a balance.
func SideOf(balance decimal.Decimal) BalanceSide {
	switch {
	case balance.IsPositive():
		return SideDebit
	case balance.IsNegative():
		return SideCredit
	default:
		return SideSettled
	}
}

// ComputeBalances folds an ordered transaction sequence over an opening
// balance. It returns the running balance after each transaction and the
// final balance (the opening balance when the sequence is empty).
//
// The fold is pure: it never mutates its inputs, and the same inputs
// always produce the same outputs. The transactions must already be in
// canonical order (date ascending, insertion order as tie-break).
func ComputeBalances(opening decimal.Decimal, txs []*Transaction) ([]decimal.Decimal, decimal.Decimal) {
	running := make([]decimal.Decimal, len(txs))
	balance := opening
	for i, tx := range txs {
		balance = balance.Add(tx.DebitAmount).Sub(tx.CreditAmount)
		running[i] = balance
	}
	return running, balance
}

// SumPostings totals the debit and credit columns of a sequence.
func SumPostings(txs []*Transaction) (totalDebit, totalCredit decimal.Decimal) {
	totalDebit, totalCredit = decimal.Zero, decimal.Zero
	for _, tx := range txs {
		totalDebit = totalDebit.Add(tx.DebitAmount)
		totalCredit = totalCredit.Add(tx.CreditAmount)
	}
	return totalDebit, totalCredit
}

// Ledger is the read projection of one entity's account: opening balance,
// ordered transactions annotated with running balances, and the final
// balance.
type Ledger struct {
	Entity         *Entity
	OpeningBalance decimal.Decimal
	Transactions   []*Transaction
	CurrentBalance decimal.Decimal
}

// Summary derives the entity summary from the ledger projection.
func (l *Ledger) Summary() *EntitySummary {
	totalDebit, totalCredit := SumPostings(l.Transactions)
	return &EntitySummary{
		Entity:           l.Entity,
		CurrentBalance:   l.CurrentBalance,
		TotalDebit:       totalDebit,
		TotalCredit:      totalCredit,
		TransactionCount: len(l.Transactions),
		Side:             SideOf(l.CurrentBalance),
	}
}
