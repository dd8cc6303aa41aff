package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bakeops/backledger/internal/domain"
)

// EntityUseCase handles customer/party administration.
type EntityUseCase struct {
	txManager  TransactionManager
	entityRepo EntityRepository
	txRepo     TransactionRepository
	cache      Cache
}

// NewEntityUseCase creates a new EntityUseCase. cache may be nil.
func NewEntityUseCase(txManager TransactionManager, entityRepo EntityRepository, txRepo TransactionRepository, cache Cache) *EntityUseCase {
	return &EntityUseCase{
		txManager:  txManager,
		entityRepo: entityRepo,
		txRepo:     txRepo,
		cache:      cache,
	}
}

// CreateEntityInput represents input for creating a customer or party.
type CreateEntityInput struct {
	Kind           string
	Name           string
	Phone          string
	Email          string
	Address        string
	OpeningBalance decimal.Decimal
}

// CreateEntity creates an entity with its current balance initialized to
// the opening balance.
func (uc *EntityUseCase) CreateEntity(ctx context.Context, input CreateEntityInput) (*domain.Entity, error) {
	ve := domain.NewValidationError()

	kind, err := domain.ParseEntityKind(input.Kind)
	if err != nil {
		ve.Add("entityType", err.Error())
	}
	if err := domain.ValidateEntityName(input.Name); err != nil {
		ve.Add("name", err.Error())
	}
	if ve.Any() {
		return nil, ve
	}

	now := time.Now().UTC()
	entity := &domain.Entity{
		Kind:           kind,
		Name:           input.Name,
		Phone:          input.Phone,
		Email:          input.Email,
		Address:        input.Address,
		OpeningBalance: input.OpeningBalance,
		CurrentBalance: input.OpeningBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.entityRepo.Create(ctx, entity); err != nil {
		return nil, err
	}

	return entity, nil
}

// GetEntity retrieves an entity by its ledger key.
func (uc *EntityUseCase) GetEntity(ctx context.Context, key domain.EntityKey) (*domain.Entity, error) {
	return uc.entityRepo.GetByKey(ctx, key)
}

// ListEntitiesInput represents input for listing entities.
type ListEntitiesInput struct {
	Kind   string
	Limit  int
	Offset int
}

// ListEntities lists entities with pagination; an empty kind lists all.
func (uc *EntityUseCase) ListEntities(ctx context.Context, input ListEntitiesInput) ([]*domain.Entity, error) {
	var kind domain.EntityKind
	if input.Kind != "" {
		parsed, err := domain.ParseEntityKind(input.Kind)
		if err != nil {
			ve := domain.NewValidationError()
			ve.Add("kind", err.Error())
			return nil, ve
		}
		kind = parsed
	}

	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	return uc.entityRepo.List(ctx, kind, input.Limit, input.Offset)
}

// SetOpeningBalance is the administrative operation that resets an
// opening balance. It is distinct from a transaction and only valid
// while the entity has no transactions; afterwards corrections go
// through adjustment postings.
func (uc *EntityUseCase) SetOpeningBalance(ctx context.Context, key domain.EntityKey, opening decimal.Decimal) (*domain.Entity, error) {
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
	if len(history) > 0 {
		return nil, domain.ErrOpeningBalanceLocked
	}

	now := time.Now().UTC()
	// No transactions exist, so the current balance is the opening balance.
	if err := uc.entityRepo.UpdateOpeningBalance(ctx, dbTx, key, opening, opening, now); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, summaryCacheKey(key))
	}

	entity.OpeningBalance = opening
	entity.CurrentBalance = opening
	entity.UpdatedAt = now
	return entity, nil
}
