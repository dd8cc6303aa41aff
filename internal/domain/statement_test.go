package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func purchaseTx(id string, day int, amount string) *Transaction {
	return &Transaction{
		ID:          id,
		EntityKind:  EntityKindParty,
		Date:        time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		Type:        TypePurchase,
		DebitAmount: decimal.RequireFromString(amount),
	}
}

func paymentTx(id string, day int, amount string) *Transaction {
	return &Transaction{
		ID:           id,
		EntityKind:   EntityKindParty,
		Date:         time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		Type:         TypePaymentSent,
		CreditAmount: decimal.RequireFromString(amount),
	}
}

func TestSettlePurchases(t *testing.T) {
	tests := []struct {
		name string
		txs  []*Transaction
		want []struct {
			id          string
			paid        string
			outstanding string
			status      SettlementStatus
		}
	}{
		{
			name: "no payments leaves everything due",
			txs:  []*Transaction{purchaseTx("p1", 1, "200"), purchaseTx("p2", 2, "100")},
			want: []struct {
				id          string
				paid        string
				outstanding string
				status      SettlementStatus
			}{
				{"p1", "0", "200", StatusDue},
				{"p2", "0", "100", StatusDue},
			},
		},
		{
			name: "payments cover oldest purchases first",
			txs: []*Transaction{
				purchaseTx("p1", 1, "200"),
				purchaseTx("p2", 2, "100"),
				paymentTx("m1", 3, "250"),
			},
			want: []struct {
				id          string
				paid        string
				outstanding string
				status      SettlementStatus
			}{
				{"p1", "200", "0", StatusPaid},
				{"p2", "50", "50", StatusPartial},
			},
		},
		{
			name: "full settlement marks all paid",
			txs: []*Transaction{
				purchaseTx("p1", 1, "75.50"),
				paymentTx("m1", 2, "75.50"),
			},
			want: []struct {
				id          string
				paid        string
				outstanding string
				status      SettlementStatus
			}{
				{"p1", "75.50", "0", StatusPaid},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := SettlePurchases(tt.txs)
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d purchase lines, want %d", len(lines), len(tt.want))
			}
			for i, want := range tt.want {
				line := lines[i]
				if line.Transaction.ID != want.id {
					t.Errorf("line %d: transaction %s, want %s", i, line.Transaction.ID, want.id)
				}
				if !line.AmountPaid.Equal(decimal.RequireFromString(want.paid)) {
					t.Errorf("line %d: paid %s, want %s", i, line.AmountPaid, want.paid)
				}
				if !line.Outstanding.Equal(decimal.RequireFromString(want.outstanding)) {
					t.Errorf("line %d: outstanding %s, want %s", i, line.Outstanding, want.outstanding)
				}
				if line.Status != want.status {
					t.Errorf("line %d: status %s, want %s", i, line.Status, want.status)
				}
			}
		})
	}
}

func TestSettlePurchases_TotalsReconcile(t *testing.T) {
	txs := []*Transaction{
		purchaseTx("p1", 1, "120"),
		paymentTx("m1", 2, "40"),
		purchaseTx("p2", 3, "80"),
		paymentTx("m2", 4, "30"),
	}

	lines := SettlePurchases(txs)

	totalPaid, totalOutstanding := decimal.Zero, decimal.Zero
	for _, l := range lines {
		totalPaid = totalPaid.Add(l.AmountPaid)
		totalOutstanding = totalOutstanding.Add(l.Outstanding)
	}

	totalDebit, totalCredit := SumPostings(txs)
	if !totalPaid.Equal(totalCredit) {
		t.Errorf("allocated %s, credits total %s", totalPaid, totalCredit)
	}
	if !totalOutstanding.Equal(totalDebit.Sub(totalCredit)) {
		t.Errorf("outstanding %s, want %s", totalOutstanding, totalDebit.Sub(totalCredit))
	}
}
