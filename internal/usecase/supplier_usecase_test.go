package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bakeops/backledger/internal/domain"
	"github.com/bakeops/backledger/internal/usecase"
	"github.com/bakeops/backledger/internal/usecase/mocks"
)

type supplierFixture struct {
	entityRepo *mocks.MockEntityRepository
	txRepo     *mocks.MockTransactionRepository
	uc         *usecase.SupplierUseCase
}

func newSupplierFixture() *supplierFixture {
	f := &supplierFixture{
		entityRepo: mocks.NewMockEntityRepository(),
		txRepo:     mocks.NewMockTransactionRepository(),
	}
	f.uc = usecase.NewSupplierUseCase(f.entityRepo, f.txRepo)
	return f
}

func (f *supplierFixture) seedParty(id int64, name, current string) {
	f.entityRepo.Seed(&domain.Entity{
		ID:             id,
		Kind:           domain.EntityKindParty,
		Name:           name,
		OpeningBalance: dec("0"),
		CurrentBalance: dec(current),
	})
}

func (f *supplierFixture) seedPurchase(partyID int64, day time.Time, ref, amount string) {
	f.txRepo.Seed(&domain.Transaction{
		ID: "p-" + ref, EntityID: partyID, EntityKind: domain.EntityKindParty,
		Date: domain.DateOnly(day), ReferenceNumber: ref,
		Description: "Flour and sugar", Type: domain.TypePurchase,
		DebitAmount: dec(amount),
	})
}

func (f *supplierFixture) seedPayment(partyID int64, day time.Time, amount string) {
	f.txRepo.Seed(&domain.Transaction{
		ID: "pay", EntityID: partyID, EntityKind: domain.EntityKindParty,
		Date: domain.DateOnly(day), Description: "Payment to supplier",
		Type: domain.TypePaymentSent, CreditAmount: dec(amount),
	})
}

func TestSupplierSummary_SettlesOldestFirst(t *testing.T) {
	f := newSupplierFixture()
	f.seedParty(1, "Flour Mill", "250")

	base := time.Now().AddDate(0, 0, -30)
	f.seedPurchase(1, base, "INV-1", "200")
	f.seedPurchase(1, base.AddDate(0, 0, 5), "INV-2", "100")
	f.seedPurchase(1, base.AddDate(0, 0, 10), "INV-3", "100")
	f.seedPayment(1, base.AddDate(0, 0, 12), "150")

	summary, err := f.uc.SupplierSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, summary.TotalPurchases.Equal(dec("400")))
	assert.True(t, summary.TotalPaid.Equal(dec("150")))
	assert.True(t, summary.TotalOutstanding.Equal(dec("250")))

	require.Len(t, summary.Purchases, 3)

	// The 150 payment covers INV-1 in full minus 50, nothing of the rest.
	first := summary.Purchases[0]
	assert.Equal(t, "INV-1", first.Transaction.ReferenceNumber)
	assert.Equal(t, domain.StatusPartial, first.Status)
	assert.True(t, first.AmountPaid.Equal(dec("150")))
	assert.True(t, first.Outstanding.Equal(dec("50")))

	second := summary.Purchases[1]
	assert.Equal(t, domain.StatusDue, second.Status)
	assert.True(t, second.AmountPaid.IsZero())

	third := summary.Purchases[2]
	assert.Equal(t, domain.StatusDue, third.Status)

	// Running balances come from the full ledger fold.
	assert.True(t, first.RunningBalance.Equal(dec("200")))
	assert.True(t, second.RunningBalance.Equal(dec("300")))
	assert.True(t, third.RunningBalance.Equal(dec("400")))
}

func TestSupplierSummary_FullyPaid(t *testing.T) {
	f := newSupplierFixture()
	f.seedParty(1, "Flour Mill", "0")

	base := time.Now().AddDate(0, 0, -10)
	f.seedPurchase(1, base, "INV-1", "80")
	f.seedPayment(1, base.AddDate(0, 0, 1), "80")

	summary, err := f.uc.SupplierSummary(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, summary.Purchases, 1)
	assert.Equal(t, domain.StatusPaid, summary.Purchases[0].Status)
	assert.True(t, summary.TotalOutstanding.IsZero())
}

func TestSupplierSummary_UnknownParty(t *testing.T) {
	f := newSupplierFixture()

	_, err := f.uc.SupplierSummary(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestListSupplierSummaries(t *testing.T) {
	f := newSupplierFixture()
	f.seedParty(1, "Flour Mill", "100")
	f.seedParty(2, "Dairy Farm", "0")
	// A customer must never show up in the supplier overview.
	f.entityRepo.Seed(&domain.Entity{
		ID: 3, Kind: domain.EntityKindCustomer, Name: "Sharma Bakery",
		CurrentBalance: dec("500"),
	})

	base := time.Now().AddDate(0, 0, -20)
	f.seedPurchase(1, base, "INV-1", "300")
	f.seedPayment(1, base.AddDate(0, 0, 2), "200")
	f.seedPurchase(2, base, "INV-9", "50")
	f.seedPayment(2, base.AddDate(0, 0, 1), "50")
	f.txRepo.Seed(&domain.Transaction{
		ID: "c1", EntityID: 3, EntityKind: domain.EntityKindCustomer,
		Date: domain.DateOnly(base), Type: domain.TypeSale, DebitAmount: dec("500"),
	})

	overviews, err := f.uc.ListSupplierSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, overviews, 2)

	byID := make(map[int64]*domain.SupplierOverview)
	for _, o := range overviews {
		byID[o.Entity.ID] = o
	}

	mill := byID[1]
	require.NotNil(t, mill)
	assert.True(t, mill.TotalPurchases.Equal(dec("300")))
	assert.True(t, mill.TotalPaid.Equal(dec("200")))
	assert.True(t, mill.TotalOutstanding.Equal(dec("100")))
	assert.Equal(t, domain.SideDebit, mill.Side)

	dairy := byID[2]
	require.NotNil(t, dairy)
	assert.True(t, dairy.TotalOutstanding.IsZero())
	assert.Equal(t, domain.SideSettled, dairy.Side)
}

func TestListSupplierSummaries_NoParties(t *testing.T) {
	f := newSupplierFixture()

	overviews, err := f.uc.ListSupplierSummaries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, overviews)
}
