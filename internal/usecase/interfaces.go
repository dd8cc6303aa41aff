package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bakeops/backledger/internal/domain"
)

// EntityRepository defines data access for customers and parties.
type EntityRepository interface {
	Create(ctx context.Context, entity *domain.Entity) error
	GetByKey(ctx context.Context, key domain.EntityKey) (*domain.Entity, error)
	GetByKeyForUpdate(ctx context.Context, tx Transaction, key domain.EntityKey) (*domain.Entity, error)
	UpdateBalance(ctx context.Context, tx Transaction, key domain.EntityKey, balance decimal.Decimal, updatedAt time.Time) error
	UpdateOpeningBalance(ctx context.Context, tx Transaction, key domain.EntityKey, opening, current decimal.Decimal, updatedAt time.Time) error
	// List returns entities of the given kind; an empty kind lists all.
	List(ctx context.Context, kind domain.EntityKind, limit, offset int) ([]*domain.Entity, error)
}

// TransactionRepository defines data access for the append-only ledger.
// There is deliberately no update or delete: balances stay a pure fold
// over an immutable sequence.
type TransactionRepository interface {
	Append(ctx context.Context, tx Transaction, record *domain.Transaction) error
	// ListByEntity returns the entity's transactions in canonical order:
	// transaction date ascending, insertion order as tie-break.
	ListByEntity(ctx context.Context, key domain.EntityKey) ([]*domain.Transaction, error)
	ListByEntityTx(ctx context.Context, tx Transaction, key domain.EntityKey) ([]*domain.Transaction, error)
	// ListAll returns every transaction grouped by entity in canonical
	// order, for cross-entity aggregation and consistency checks.
	ListAll(ctx context.Context) ([]*domain.Transaction, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient persistence failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
