package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bakeops/backledger/internal/domain"
	"github.com/bakeops/backledger/internal/usecase"
	"github.com/bakeops/backledger/internal/usecase/mocks"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type ledgerFixture struct {
	txManager  *mocks.MockTransactionManager
	entityRepo *mocks.MockEntityRepository
	txRepo     *mocks.MockTransactionRepository
	idGen      *mocks.MockIDGenerator
	cache      *mocks.MockCache
	uc         *usecase.LedgerUseCase
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		txManager:  mocks.NewMockTransactionManager(),
		entityRepo: mocks.NewMockEntityRepository(),
		txRepo:     mocks.NewMockTransactionRepository(),
		idGen:      mocks.NewMockIDGenerator(),
		cache:      mocks.NewMockCache(),
	}
	f.uc = usecase.NewLedgerUseCase(f.txManager, f.entityRepo, f.txRepo, f.idGen, f.cache, mocks.NewMockRetrier())
	return f
}

func (f *ledgerFixture) seedCustomer(id int64, opening string) *domain.Entity {
	e := &domain.Entity{
		ID:             id,
		Kind:           domain.EntityKindCustomer,
		Name:           "Sharma Bakery",
		OpeningBalance: dec(opening),
		CurrentBalance: dec(opening),
	}
	f.entityRepo.Seed(e)
	return e
}

func TestRecordTransaction_DebitPosting(t *testing.T) {
	f := newLedgerFixture()
	f.seedCustomer(1, "0")

	summary, err := f.uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		EntityKind:  "customer",
		EntityID:    1,
		Date:        time.Now(),
		Description: "Bread and buns order",
		Type:        "sale",
		Amount:      dec("100"),
	})
	require.NoError(t, err)

	assert.True(t, summary.CurrentBalance.Equal(dec("100")))
	assert.Equal(t, domain.SideDebit, summary.Side)
	assert.True(t, summary.TotalDebit.Equal(dec("100")))
	assert.True(t, summary.TotalCredit.Equal(decimal.Zero))
	assert.Equal(t, 1, summary.TransactionCount)

	assert.Equal(t, 1, f.txRepo.Size())
	require.Len(t, f.txManager.Txs, 1)
	assert.True(t, f.txManager.Txs[0].Committed)

	// The stored record carries the derived posting pair, never a
	// caller-supplied one.
	txs, err := f.txRepo.ListByEntity(context.Background(), domain.EntityKey{Kind: domain.EntityKindCustomer, ID: 1})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].DebitAmount.Equal(dec("100")))
	assert.True(t, txs[0].CreditAmount.IsZero())
	assert.Equal(t, domain.TypeSale, txs[0].Type)
}

func TestRecordTransaction_CreditPosting(t *testing.T) {
	f := newLedgerFixture()
	f.seedCustomer(1, "0")

	ctx := context.Background()
	_, err := f.uc.RecordTransaction(ctx, usecase.RecordTransactionInput{
		EntityKind:  "customer",
		EntityID:    1,
		Date:        time.Now(),
		Description: "Bread and buns order",
		Type:        "sale",
		Amount:      dec("100"),
	})
	require.NoError(t, err)

	summary, err := f.uc.RecordTransaction(ctx, usecase.RecordTransactionInput{
		EntityKind:    "customer",
		EntityID:      1,
		Date:          time.Now(),
		Description:   "Part payment received",
		Type:          "payment_received",
		Amount:        dec("60"),
		PaymentMethod: "upi",
	})
	require.NoError(t, err)

	assert.True(t, summary.CurrentBalance.Equal(dec("40")))
	assert.Equal(t, domain.SideDebit, summary.Side)
	assert.True(t, summary.TotalDebit.Equal(dec("100")))
	assert.True(t, summary.TotalCredit.Equal(dec("60")))
	assert.Equal(t, 2, summary.TransactionCount)
}

func TestRecordTransaction_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.RecordTransactionInput
		field string
	}{
		{
			name: "unknown entity kind",
			input: usecase.RecordTransactionInput{
				EntityKind: "vendor", EntityID: 1, Date: time.Now(),
				Description: "Flour delivery", Type: "purchase", Amount: dec("10"),
			},
			field: "entityType",
		},
		{
			name: "unknown transaction type",
			input: usecase.RecordTransactionInput{
				EntityKind: "customer", EntityID: 1, Date: time.Now(),
				Description: "Returned goods", Type: "refund", Amount: dec("10"),
			},
			field: "transactionType",
		},
		{
			name: "sale on a party ledger",
			input: usecase.RecordTransactionInput{
				EntityKind: "party", EntityID: 1, Date: time.Now(),
				Description: "Bread order", Type: "sale", Amount: dec("10"),
			},
			field: "transactionType",
		},
		{
			name: "zero amount",
			input: usecase.RecordTransactionInput{
				EntityKind: "customer", EntityID: 1, Date: time.Now(),
				Description: "Bread order", Type: "sale", Amount: decimal.Zero,
			},
			field: "amount",
		},
		{
			name: "description too short",
			input: usecase.RecordTransactionInput{
				EntityKind: "customer", EntityID: 1, Date: time.Now(),
				Description: "ok", Type: "sale", Amount: dec("10"),
			},
			field: "description",
		},
		{
			name: "future date",
			input: usecase.RecordTransactionInput{
				EntityKind: "customer", EntityID: 1, Date: time.Now().AddDate(0, 0, 1),
				Description: "Bread order", Type: "sale", Amount: dec("10"),
			},
			field: "transactionDate",
		},
		{
			name: "unknown payment method",
			input: usecase.RecordTransactionInput{
				EntityKind: "customer", EntityID: 1, Date: time.Now(),
				Description: "Bread order", Type: "sale", Amount: dec("10"),
				PaymentMethod: "barter",
			},
			field: "paymentMethod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			f.seedCustomer(1, "0")
			f.entityRepo.Seed(&domain.Entity{ID: 1, Kind: domain.EntityKindParty, Name: "Flour Mill"})

			_, err := f.uc.RecordTransaction(context.Background(), tt.input)

			ve, ok := domain.AsValidationError(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			assert.Contains(t, ve.Fields, tt.field)

			// Rejected input writes nothing.
			assert.Equal(t, 0, f.txRepo.Size())
			assert.Empty(t, f.txManager.Txs)
		})
	}
}

func TestRecordTransaction_CollectsAllFieldErrors(t *testing.T) {
	f := newLedgerFixture()

	_, err := f.uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		EntityKind:  "vendor",
		EntityID:    1,
		Date:        time.Now().AddDate(-2, 0, 0),
		Description: "x",
		Type:        "refund",
		Amount:      dec("-5"),
	})

	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	for _, field := range []string{"entityType", "transactionType", "amount", "description", "transactionDate"} {
		assert.Contains(t, ve.Fields, field)
	}
}

func TestRecordTransaction_EntityNotFound(t *testing.T) {
	f := newLedgerFixture()

	_, err := f.uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		EntityKind:  "customer",
		EntityID:    42,
		Date:        time.Now(),
		Description: "Bread order",
		Type:        "sale",
		Amount:      dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	assert.Equal(t, 0, f.txRepo.Size())
}

func TestRecordTransaction_AppendFailureRollsBack(t *testing.T) {
	f := newLedgerFixture()
	entity := f.seedCustomer(1, "25")

	f.txRepo.AppendFunc = func(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
		return errors.New("connection reset")
	}

	_, err := f.uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		EntityKind:  "customer",
		EntityID:    1,
		Date:        time.Now(),
		Description: "Bread order",
		Type:        "sale",
		Amount:      dec("10"),
	})
	require.Error(t, err)

	// The stored balance never advances past the append.
	assert.True(t, entity.CurrentBalance.Equal(dec("25")))
	require.Len(t, f.txManager.Txs, 1)
	assert.True(t, f.txManager.Txs[0].RolledBack)
	assert.False(t, f.txManager.Txs[0].Committed)
}

func TestRecordTransaction_RetriesTransientFailures(t *testing.T) {
	f := newLedgerFixture()
	f.seedCustomer(1, "0")

	attempts := 0
	f.txRepo.AppendFunc = func(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
		attempts++
		if attempts == 1 {
			return errors.New("deadlock detected")
		}
		f.txRepo.Seed(record)
		return nil
	}

	retrier := mocks.NewMockRetrier()
	retrier.RetryFunc = func(ctx context.Context, operation func() error) error {
		var err error
		for i := 0; i < 3; i++ {
			if err = operation(); err == nil {
				return nil
			}
		}
		return err
	}
	uc := usecase.NewLedgerUseCase(f.txManager, f.entityRepo, f.txRepo, f.idGen, nil, retrier)

	summary, err := uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		EntityKind:  "customer",
		EntityID:    1,
		Date:        time.Now(),
		Description: "Bread order",
		Type:        "sale",
		Amount:      dec("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.True(t, summary.CurrentBalance.Equal(dec("10")))
	assert.Equal(t, 1, f.txRepo.Size())
}

func TestRecordTransaction_StoredBalanceMismatch(t *testing.T) {
	f := newLedgerFixture()
	// A stored balance nothing in the history explains.
	f.entityRepo.Seed(&domain.Entity{
		ID:             1,
		Kind:           domain.EntityKindCustomer,
		Name:           "Sharma Bakery",
		OpeningBalance: dec("0"),
		CurrentBalance: dec("999"),
	})

	_, err := f.uc.RecordTransaction(context.Background(), usecase.RecordTransactionInput{
		EntityKind:  "customer",
		EntityID:    1,
		Date:        time.Now(),
		Description: "Bread order",
		Type:        "sale",
		Amount:      dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	assert.Equal(t, 0, f.txRepo.Size())
}

func TestRecordTransaction_InvalidatesCachedSummary(t *testing.T) {
	f := newLedgerFixture()
	f.seedCustomer(1, "0")

	ctx := context.Background()
	key := "summary:customer/1"
	require.NoError(t, f.cache.Set(ctx, key, []byte(`{"stale":true}`), time.Minute))

	_, err := f.uc.RecordTransaction(ctx, usecase.RecordTransactionInput{
		EntityKind:  "customer",
		EntityID:    1,
		Date:        time.Now(),
		Description: "Bread order",
		Type:        "sale",
		Amount:      dec("10"),
	})
	require.NoError(t, err)

	_, err = f.cache.Get(ctx, key)
	assert.Error(t, err, "cached summary should be gone after an append")
}

func TestGetLedger_AnnotatesRunningBalances(t *testing.T) {
	f := newLedgerFixture()
	f.entityRepo.Seed(&domain.Entity{
		ID:             1,
		Kind:           domain.EntityKindCustomer,
		Name:           "Sharma Bakery",
		OpeningBalance: dec("50"),
		CurrentBalance: dec("90"),
	})

	day := domain.DateOnly(time.Now().AddDate(0, 0, -10))
	f.txRepo.Seed(&domain.Transaction{
		ID: "t1", EntityID: 1, EntityKind: domain.EntityKindCustomer,
		Date: day, Type: domain.TypeSale, DebitAmount: dec("100"),
	})
	f.txRepo.Seed(&domain.Transaction{
		ID: "t2", EntityID: 1, EntityKind: domain.EntityKindCustomer,
		Date: day.AddDate(0, 0, 1), Type: domain.TypePaymentReceived, CreditAmount: dec("60"),
	})

	key := domain.EntityKey{Kind: domain.EntityKindCustomer, ID: 1}

	ledger, err := f.uc.GetLedger(context.Background(), key)
	require.NoError(t, err)

	require.Len(t, ledger.Transactions, 2)
	assert.True(t, ledger.Transactions[0].RunningBalance.Equal(dec("150")))
	assert.True(t, ledger.Transactions[1].RunningBalance.Equal(dec("90")))
	assert.True(t, ledger.CurrentBalance.Equal(dec("90")))

	// Reading is pure: a second read with no writes in between agrees.
	again, err := f.uc.GetLedger(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, again.CurrentBalance.Equal(ledger.CurrentBalance))
	for i := range again.Transactions {
		assert.True(t, again.Transactions[i].RunningBalance.Equal(ledger.Transactions[i].RunningBalance))
	}
}

func TestGetLedger_BackdatedEntryReordersHistory(t *testing.T) {
	f := newLedgerFixture()
	f.seedCustomer(1, "0")

	ctx := context.Background()
	record := func(daysAgo int, typ, desc, amount string) {
		t.Helper()
		_, err := f.uc.RecordTransaction(ctx, usecase.RecordTransactionInput{
			EntityKind:  "customer",
			EntityID:    1,
			Date:        time.Now().AddDate(0, 0, -daysAgo),
			Description: desc,
			Type:        typ,
			Amount:      dec(amount),
		})
		require.NoError(t, err)
	}

	record(2, "sale", "Cake order", "200")
	record(0, "payment_received", "Payment on delivery", "150")
	// Backdated entry that sorts before everything already stored.
	record(5, "sale", "Earlier bread order", "40")

	ledger, err := f.uc.GetLedger(ctx, domain.EntityKey{Kind: domain.EntityKindCustomer, ID: 1})
	require.NoError(t, err)
	require.Len(t, ledger.Transactions, 3)

	assert.Equal(t, "Earlier bread order", ledger.Transactions[0].Description)
	assert.True(t, ledger.Transactions[0].RunningBalance.Equal(dec("40")))
	assert.True(t, ledger.Transactions[1].RunningBalance.Equal(dec("240")))
	assert.True(t, ledger.Transactions[2].RunningBalance.Equal(dec("90")))
	assert.True(t, ledger.CurrentBalance.Equal(dec("90")))
}

func TestGetLedger_StoredBalanceMismatch(t *testing.T) {
	f := newLedgerFixture()
	f.entityRepo.Seed(&domain.Entity{
		ID:             1,
		Kind:           domain.EntityKindCustomer,
		Name:           "Sharma Bakery",
		OpeningBalance: dec("0"),
		CurrentBalance: dec("10"),
	})

	_, err := f.uc.GetLedger(context.Background(), domain.EntityKey{Kind: domain.EntityKindCustomer, ID: 1})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestGetSummary_CacheMissPopulatesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockGenCache(ctrl)

	f := newLedgerFixture()
	f.seedCustomer(1, "30")
	uc := usecase.NewLedgerUseCase(f.txManager, f.entityRepo, f.txRepo, f.idGen, cache, nil)

	cache.EXPECT().Get(gomock.Any(), "summary:customer/1").Return(nil, errors.New("redis: nil"))
	cache.EXPECT().Set(gomock.Any(), "summary:customer/1", gomock.Any(), gomock.Any()).Return(nil)

	summary, err := uc.GetSummary(context.Background(), domain.EntityKey{Kind: domain.EntityKindCustomer, ID: 1})
	require.NoError(t, err)
	assert.True(t, summary.CurrentBalance.Equal(dec("30")))
	assert.Equal(t, domain.SideDebit, summary.Side)
}

func TestGetSummary_CacheHitSkipsStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockGenCache(ctrl)

	entityRepo := mocks.NewMockEntityRepository()
	entityRepo.GetByKeyFunc = func(ctx context.Context, key domain.EntityKey) (*domain.Entity, error) {
		t.Error("store must not be read on a cache hit")
		return nil, domain.ErrEntityNotFound
	}

	cached := &domain.EntitySummary{
		CurrentBalance:   dec("75"),
		TotalDebit:       dec("75"),
		TransactionCount: 1,
		Side:             domain.SideDebit,
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	cache.EXPECT().Get(gomock.Any(), "summary:customer/1").Return(raw, nil)

	uc := usecase.NewLedgerUseCase(nil, entityRepo, nil, nil, cache, nil)

	summary, err := uc.GetSummary(context.Background(), domain.EntityKey{Kind: domain.EntityKindCustomer, ID: 1})
	require.NoError(t, err)
	assert.True(t, summary.CurrentBalance.Equal(dec("75")))
	assert.Equal(t, 1, summary.TransactionCount)
}

func TestCheckConsistency(t *testing.T) {
	f := newLedgerFixture()
	f.entityRepo.Seed(&domain.Entity{
		ID: 1, Kind: domain.EntityKindCustomer, Name: "Sharma Bakery",
		OpeningBalance: dec("0"), CurrentBalance: dec("100"),
	})
	f.entityRepo.Seed(&domain.Entity{
		ID: 2, Kind: domain.EntityKindParty, Name: "Flour Mill",
		OpeningBalance: dec("0"), CurrentBalance: dec("999"),
	})

	day := domain.DateOnly(time.Now())
	f.txRepo.Seed(&domain.Transaction{
		ID: "t1", EntityID: 1, EntityKind: domain.EntityKindCustomer,
		Date: day, Type: domain.TypeSale, DebitAmount: dec("100"),
	})
	f.txRepo.Seed(&domain.Transaction{
		ID: "t2", EntityID: 2, EntityKind: domain.EntityKindParty,
		Date: day, Type: domain.TypePurchase, DebitAmount: dec("200"),
	})

	report, err := f.uc.CheckConsistency(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	assert.False(t, report.Consistent())
	require.Len(t, report.Mismatches, 1)

	m := report.Mismatches[0]
	assert.Equal(t, domain.EntityKey{Kind: domain.EntityKindParty, ID: 2}, m.Key)
	assert.True(t, m.Stored.Equal(dec("999")))
	assert.True(t, m.Derived.Equal(dec("200")))
}
