package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bakeops/backledger/internal/domain"
)

// summaryCacheTTL bounds how long a cached entity summary may be served.
// Appends invalidate the key immediately; the TTL only covers crashes
// between commit and invalidation.
const summaryCacheTTL = 5 * time.Minute

// LedgerUseCase is the ledger service: it validates submitted
// transactions, appends them to the store, and keeps the derived balance
// in step with the fold over the history.
type LedgerUseCase struct {
	txManager  TransactionManager
	entityRepo EntityRepository
	txRepo     TransactionRepository
	idGen      IDGenerator
	cache      Cache
	retrier    Retrier
}

// NewLedgerUseCase creates a new LedgerUseCase. cache and retrier may be
// nil; caching and transient-failure retries are then disabled.
func NewLedgerUseCase(
	txManager TransactionManager,
	entityRepo EntityRepository,
	txRepo TransactionRepository,
	idGen IDGenerator,
	cache Cache,
	retrier Retrier,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:  txManager,
		entityRepo: entityRepo,
		txRepo:     txRepo,
		idGen:      idGen,
		cache:      cache,
		retrier:    retrier,
	}
}

// RecordTransactionInput represents one submitted ledger transaction.
// Debit and credit are never supplied by the caller; they are derived
// from Type and Amount by the posting table.
type RecordTransactionInput struct {
	EntityKind      string
	EntityID        int64
	Date            time.Time
	Description     string
	ReferenceNumber string
	Type            string
	Amount          decimal.Decimal
	PaymentMethod   string
	Notes           string
}

// RecordTransaction validates the input, appends the transaction and
// returns the updated entity summary. On any validation failure a
// field-scoped *domain.ValidationError is returned and nothing is
// written. A failed append leaves the stored balance untouched; the
// whole call is safe to retry.
func (uc *LedgerUseCase) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*domain.EntitySummary, error) {
	ve := domain.NewValidationError()

	kind, err := domain.ParseEntityKind(input.EntityKind)
	if err != nil {
		ve.Add("entityType", err.Error())
	}

	txType := domain.TransactionType(input.Type)
	if _, err := txType.Posting(); err != nil {
		ve.Add("transactionType", err.Error())
	} else if kind != "" && !txType.AllowedFor(kind) {
		ve.Add("transactionType", fmt.Sprintf("%q is not allowed on %s ledgers", txType, kind))
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		ve.Add("amount", err.Error())
	}
	if err := domain.ValidateDescription(input.Description); err != nil {
		ve.Add("description", err.Error())
	}
	if err := domain.ValidateTransactionDate(input.Date, time.Now()); err != nil {
		ve.Add("transactionDate", err.Error())
	}

	method, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		ve.Add("paymentMethod", err.Error())
	}

	if ve.Any() {
		return nil, ve
	}

	debit, credit, err := domain.SplitPosting(txType, input.Amount)
	if err != nil {
		return nil, err
	}

	key := domain.EntityKey{Kind: kind, ID: input.EntityID}

	var summary *domain.EntitySummary
	appendOnce := func() error {
		s, err := uc.appendTransaction(ctx, key, txType, method, input, debit, credit)
		if err != nil {
			return err
		}
		summary = s
		return nil
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, appendOnce)
	} else {
		err = appendOnce()
	}
	if err != nil {
		return nil, err
	}

	uc.dropCachedSummary(ctx, key)

	return summary, nil
}

// appendTransaction performs one serialized append: the entity row lock
// makes concurrent appends for the same entity queue up, while different
// entities proceed in parallel.
func (uc *LedgerUseCase) appendTransaction(
	ctx context.Context,
	key domain.EntityKey,
	txType domain.TransactionType,
	method domain.PaymentMethod,
	input RecordTransactionInput,
	debit, credit decimal.Decimal,
) (*domain.EntitySummary, error) {
	dbTx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx)

	entity, err := uc.entityRepo.GetByKeyForUpdate(ctx, dbTx, key)
	if err != nil {
		return nil, err
	}

	history, err := uc.txRepo.ListByEntityTx(ctx, dbTx, key)
	if err != nil {
		return nil, err
	}

	// The stored balance must agree with the fold before we extend it.
	// A mismatch means a bug in a previous append, never something to
	// paper over here.
	_, derived := domain.ComputeBalances(entity.OpeningBalance, history)
	if !derived.Equal(entity.CurrentBalance) {
		err := fmt.Errorf("%w: stored balance %s for %s disagrees with recomputed %s",
			domain.ErrInvariantViolation, entity.CurrentBalance, key, derived)
		log.Error().Err(err).Str("entity", key.String()).Msg("ledger inconsistency detected")
		return nil, err
	}

	now := time.Now().UTC()
	record := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		EntityID:        entity.ID,
		EntityKind:      entity.Kind,
		Date:            domain.DateOnly(input.Date),
		Description:     input.Description,
		ReferenceNumber: input.ReferenceNumber,
		DebitAmount:     debit,
		CreditAmount:    credit,
		Type:            txType,
		PaymentMethod:   method,
		Notes:           input.Notes,
		CreatedAt:       now,
	}
	if err := record.CheckPosting(); err != nil {
		return nil, err
	}

	if err := uc.txRepo.Append(ctx, dbTx, record); err != nil {
		return nil, err
	}

	newBalance := entity.CurrentBalance.Add(debit).Sub(credit)
	if err := uc.entityRepo.UpdateBalance(ctx, dbTx, key, newBalance, now); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}

	totalDebit, totalCredit := domain.SumPostings(history)
	entity.CurrentBalance = newBalance
	entity.UpdatedAt = now

	return &domain.EntitySummary{
		Entity:           entity,
		CurrentBalance:   newBalance,
		TotalDebit:       totalDebit.Add(debit),
		TotalCredit:      totalCredit.Add(credit),
		TransactionCount: len(history) + 1,
		Side:             domain.SideOf(newBalance),
	}, nil
}

// GetLedger returns the read projection of one entity's account. Running
// balances are recomputed from the opening balance on every read, so two
// reads with no intervening writes always agree.
func (uc *LedgerUseCase) GetLedger(ctx context.Context, key domain.EntityKey) (*domain.Ledger, error) {
	entity, err := uc.entityRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	txs, err := uc.txRepo.ListByEntity(ctx, key)
	if err != nil {
		return nil, err
	}

	running, final := domain.ComputeBalances(entity.OpeningBalance, txs)
	for i := range txs {
		txs[i].RunningBalance = running[i]
	}

	if !final.Equal(entity.CurrentBalance) {
		err := fmt.Errorf("%w: stored balance %s for %s disagrees with recomputed %s",
			domain.ErrInvariantViolation, entity.CurrentBalance, key, final)
		log.Error().Err(err).Str("entity", key.String()).Msg("ledger inconsistency detected")
		return nil, err
	}

	return &domain.Ledger{
		Entity:         entity,
		OpeningBalance: entity.OpeningBalance,
		Transactions:   txs,
		CurrentBalance: final,
	}, nil
}

// GetSummary returns the entity summary, served from cache when one is
// present and fresh.
func (uc *LedgerUseCase) GetSummary(ctx context.Context, key domain.EntityKey) (*domain.EntitySummary, error) {
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, summaryCacheKey(key)); err == nil && len(raw) > 0 {
			var cached domain.EntitySummary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	ledger, err := uc.GetLedger(ctx, key)
	if err != nil {
		return nil, err
	}
	summary := ledger.Summary()

	if uc.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := uc.cache.Set(ctx, summaryCacheKey(key), raw, summaryCacheTTL); err != nil {
				log.Warn().Err(err).Str("entity", key.String()).Msg("failed to cache entity summary")
			}
		}
	}

	return summary, nil
}

// BalanceMismatch is one entity whose stored balance disagrees with the
// fold over its ledger.
type BalanceMismatch struct {
	Key     domain.EntityKey
	Stored  decimal.Decimal
	Derived decimal.Decimal
}

// ConsistencyReport is the outcome of a full-ledger consistency check.
type ConsistencyReport struct {
	Checked    int
	Mismatches []BalanceMismatch
}

// Consistent reports whether every stored balance matched its fold.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Mismatches) == 0
}

// CheckConsistency recomputes every entity's balance from its ledger and
// compares it with the stored value. Mismatches are reported, never
// corrected.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	all, err := uc.txRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[domain.EntityKey][]*domain.Transaction)
	for _, tx := range all {
		byKey[tx.Key()] = append(byKey[tx.Key()], tx)
	}

	report := &ConsistencyReport{}

	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		entities, err := uc.entityRepo.List(ctx, "", pageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(entities) == 0 {
			break
		}

		for _, entity := range entities {
			report.Checked++
			_, derived := domain.ComputeBalances(entity.OpeningBalance, byKey[entity.Key()])
			if !derived.Equal(entity.CurrentBalance) {
				log.Error().
					Str("entity", entity.Key().String()).
					Str("stored", entity.CurrentBalance.String()).
					Str("derived", derived.String()).
					Msg("ledger inconsistency detected")
				report.Mismatches = append(report.Mismatches, BalanceMismatch{
					Key:     entity.Key(),
					Stored:  entity.CurrentBalance,
					Derived: derived,
				})
			}
		}

		if len(entities) < pageSize {
			break
		}
	}

	return report, nil
}

func (uc *LedgerUseCase) dropCachedSummary(ctx context.Context, key domain.EntityKey) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, summaryCacheKey(key)); err != nil {
		log.Warn().Err(err).Str("entity", key.String()).Msg("failed to invalidate cached summary")
	}
}

func summaryCacheKey(key domain.EntityKey) string {
	return "summary:" + key.String()
}
