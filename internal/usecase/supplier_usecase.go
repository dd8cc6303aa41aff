package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bakeops/backledger/internal/domain"
)

// SupplierUseCase builds the supplier-ledger aggregation views. Both are
// projections over the transaction store; nothing here is a second
// source of truth.
type SupplierUseCase struct {
	entityRepo EntityRepository
	txRepo     TransactionRepository
}

// NewSupplierUseCase creates a new SupplierUseCase.
func NewSupplierUseCase(entityRepo EntityRepository, txRepo TransactionRepository) *SupplierUseCase {
	return &SupplierUseCase{entityRepo: entityRepo, txRepo: txRepo}
}

// SupplierSummary aggregates one party's ledger: per-purchase settlement
// status and the purchase/paid/outstanding totals.
func (uc *SupplierUseCase) SupplierSummary(ctx context.Context, partyID int64) (*domain.SupplierSummary, error) {
	key := domain.EntityKey{Kind: domain.EntityKindParty, ID: partyID}

	entity, err := uc.entityRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	txs, err := uc.txRepo.ListByEntity(ctx, key)
	if err != nil {
		return nil, err
	}

	running, _ := domain.ComputeBalances(entity.OpeningBalance, txs)
	for i := range txs {
		txs[i].RunningBalance = running[i]
	}

	return buildSupplierSummary(entity, txs), nil
}

// ListSupplierSummaries returns the cross-entity supplier overview: one
// totals row per party.
func (uc *SupplierUseCase) ListSupplierSummaries(ctx context.Context) ([]*domain.SupplierOverview, error) {
	all, err := uc.txRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byParty := make(map[int64][]*domain.Transaction)
	for _, tx := range all {
		if tx.EntityKind == domain.EntityKindParty {
			byParty[tx.EntityID] = append(byParty[tx.EntityID], tx)
		}
	}

	var overviews []*domain.SupplierOverview

	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		parties, err := uc.entityRepo.List(ctx, domain.EntityKindParty, pageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(parties) == 0 {
			break
		}

		for _, party := range parties {
			summary := buildSupplierSummary(party, byParty[party.ID])
			overviews = append(overviews, &domain.SupplierOverview{
				Entity:           party,
				TotalPurchases:   summary.TotalPurchases,
				TotalPaid:        summary.TotalPaid,
				TotalOutstanding: summary.TotalOutstanding,
				CurrentBalance:   party.CurrentBalance,
				Side:             domain.SideOf(party.CurrentBalance),
			})
		}

		if len(parties) < pageSize {
			break
		}
	}

	return overviews, nil
}

func buildSupplierSummary(entity *domain.Entity, txs []*domain.Transaction) *domain.SupplierSummary {
	lines := domain.SettlePurchases(txs)

	totalPurchases, totalPaid := decimal.Zero, decimal.Zero
	for _, line := range lines {
		totalPurchases = totalPurchases.Add(line.Transaction.DebitAmount)
		totalPaid = totalPaid.Add(line.AmountPaid)
	}

	return &domain.SupplierSummary{
		Entity:           entity,
		TotalPurchases:   totalPurchases,
		TotalPaid:        totalPaid,
		TotalOutstanding: totalPurchases.Sub(totalPaid),
		Purchases:        lines,
	}
}
