package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(debit, credit string) *Transaction {
	return &Transaction{
		DebitAmount:  decimal.RequireFromString(debit),
		CreditAmount: decimal.RequireFromString(credit),
	}
}

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name        string
		opening     string
		txs         []*Transaction
		wantRunning []string
		wantFinal   string
	}{
		{
			name:      "empty ledger keeps opening balance",
			opening:   "25.50",
			wantFinal: "25.50",
		},
		{
			name:        "sale then partial payment",
			opening:     "0",
			txs:         []*Transaction{tx("100", "0"), tx("0", "60")},
			wantRunning: []string{"100", "40"},
			wantFinal:   "40",
		},
		{
			name:        "negative opening balance with purchase",
			opening:     "-50",
			txs:         []*Transaction{tx("200", "0")},
			wantRunning: []string{"150"},
			wantFinal:   "150",
		},
		{
			name:        "each running balance is the prefix sum",
			opening:     "10",
			txs:         []*Transaction{tx("5", "0"), tx("0", "20"), tx("2.50", "0")},
			wantRunning: []string{"15", "-5", "-2.50"},
			wantFinal:   "-2.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opening := decimal.RequireFromString(tt.opening)
			running, final := ComputeBalances(opening, tt.txs)

			if !final.Equal(decimal.RequireFromString(tt.wantFinal)) {
				t.Errorf("final balance = %s, want %s", final, tt.wantFinal)
			}
			if len(running) != len(tt.wantRunning) {
				t.Fatalf("got %d running balances, want %d", len(running), len(tt.wantRunning))
			}
			for i, want := range tt.wantRunning {
				if !running[i].Equal(decimal.RequireFromString(want)) {
					t.Errorf("running[%d] = %s, want %s", i, running[i], want)
				}
			}
		})
	}
}

func TestComputeBalances_FinalEqualsSums(t *testing.T) {
	// final == opening + sum(debits) - sum(credits), whatever the order.
	txs := []*Transaction{
		tx("100", "0"), tx("0", "30"), tx("45.25", "0"), tx("0", "0.01"), tx("7", "0"),
	}
	opening := decimal.RequireFromString("-12.34")

	_, final := ComputeBalances(opening, txs)

	totalDebit, totalCredit := SumPostings(txs)
	want := opening.Add(totalDebit).Sub(totalCredit)
	if !final.Equal(want) {
		t.Errorf("final = %s, want %s", final, want)
	}
}

func TestComputeBalances_Deterministic(t *testing.T) {
	txs := []*Transaction{tx("10", "0"), tx("0", "4"), tx("1.50", "0")}
	opening := decimal.NewFromInt(3)

	first, firstFinal := ComputeBalances(opening, txs)
	second, secondFinal := ComputeBalances(opening, txs)

	if !firstFinal.Equal(secondFinal) {
		t.Fatalf("recomputation changed the final balance: %s vs %s", firstFinal, secondFinal)
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("recomputation changed running[%d]: %s vs %s", i, first[i], second[i])
		}
	}
	// The fold must not have touched the inputs.
	for i, tr := range txs {
		if !tr.RunningBalance.IsZero() {
			t.Errorf("fold mutated txs[%d].RunningBalance = %s", i, tr.RunningBalance)
		}
	}
}

func TestSideOf(t *testing.T) {
	tests := []struct {
		balance string
		want    BalanceSide
	}{
		{"100", SideDebit},
		{"-0.01", SideCredit},
		{"0", SideSettled},
	}
	for _, tt := range tests {
		if got := SideOf(decimal.RequireFromString(tt.balance)); got != tt.want {
			t.Errorf("SideOf(%s) = %q, want %q", tt.balance, got, tt.want)
		}
	}
}

func TestLedger_Summary(t *testing.T) {
	entity := &Entity{ID: 7, Kind: EntityKindCustomer, Name: "Corner Cafe"}
	txs := []*Transaction{tx("100", "0"), tx("0", "60")}
	running, final := ComputeBalances(decimal.Zero, txs)
	for i, tr := range txs {
		tr.RunningBalance = running[i]
	}

	ledger := &Ledger{
		Entity:         entity,
		OpeningBalance: decimal.Zero,
		Transactions:   txs,
		CurrentBalance: final,
	}
	summary := ledger.Summary()

	if !summary.CurrentBalance.Equal(decimal.NewFromInt(40)) {
		t.Errorf("current balance = %s, want 40", summary.CurrentBalance)
	}
	if !summary.TotalDebit.Equal(decimal.NewFromInt(100)) || !summary.TotalCredit.Equal(decimal.NewFromInt(60)) {
		t.Errorf("totals = %s/%s, want 100/60", summary.TotalDebit, summary.TotalCredit)
	}
	if summary.TransactionCount != 2 {
		t.Errorf("count = %d, want 2", summary.TransactionCount)
	}
	if summary.Side != SideDebit {
		t.Errorf("side = %q, want Dr.", summary.Side)
	}
}
