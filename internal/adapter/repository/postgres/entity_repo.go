package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bakeops/backledger/internal/domain"
	"github.com/bakeops/backledger/internal/usecase"
)

const entityColumns = `id, kind, name, phone, email, address,
	       opening_balance, current_balance, created_at, updated_at`

// EntityRepository implements usecase.EntityRepository on the entities
// table. Customers and parties share the table; kind is part of the key.
type EntityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

// Create inserts a new entity and fills in its generated ID.
func (r *EntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	query := `
		INSERT INTO entities (
			kind, name, phone, email, address,
			opening_balance, current_balance, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	return r.pool.QueryRow(ctx, query,
		string(entity.Kind),
		entity.Name,
		entity.Phone,
		entity.Email,
		entity.Address,
		decimalToNumeric(entity.OpeningBalance),
		decimalToNumeric(entity.CurrentBalance),
		timeToPgTimestamptz(entity.CreatedAt),
		timeToPgTimestamptz(entity.UpdatedAt),
	).Scan(&entity.ID)
}

// GetByKey retrieves an entity by kind and ID.
func (r *EntityRepository) GetByKey(ctx context.Context, key domain.EntityKey) (*domain.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE kind = $1 AND id = $2`

	return scanEntity(r.pool.QueryRow(ctx, query, string(key.Kind), key.ID))
}

// GetByKeyForUpdate retrieves an entity with a FOR UPDATE row lock,
// serializing appends to the same ledger.
func (r *EntityRepository) GetByKeyForUpdate(ctx context.Context, tx usecase.Transaction, key domain.EntityKey) (*domain.Entity, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + entityColumns + ` FROM entities WHERE kind = $1 AND id = $2 FOR UPDATE`

	return scanEntity(pgxTx.QueryRow(ctx, query, string(key.Kind), key.ID))
}

// UpdateBalance writes the refreshed current balance inside a transaction.
func (r *EntityRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, key domain.EntityKey, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `UPDATE entities SET current_balance = $1, updated_at = $2 WHERE kind = $3 AND id = $4`

	tag, err := pgxTx.Exec(ctx, query,
		decimalToNumeric(balance),
		timeToPgTimestamptz(updatedAt),
		string(key.Kind),
		key.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntityNotFound
	}

	return nil
}

// UpdateOpeningBalance rewrites both balances. Only valid while the
// entity has no transactions; the usecase enforces that under the lock.
func (r *EntityRepository) UpdateOpeningBalance(ctx context.Context, tx usecase.Transaction, key domain.EntityKey, opening, current decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		UPDATE entities
		SET opening_balance = $1, current_balance = $2, updated_at = $3
		WHERE kind = $4 AND id = $5
	`

	tag, err := pgxTx.Exec(ctx, query,
		decimalToNumeric(opening),
		decimalToNumeric(current),
		timeToPgTimestamptz(updatedAt),
		string(key.Kind),
		key.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntityNotFound
	}

	return nil
}

// List retrieves entities ordered by ID; an empty kind lists all kinds.
func (r *EntityRepository) List(ctx context.Context, kind domain.EntityKind, limit, offset int) ([]*domain.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities ORDER BY id LIMIT $1 OFFSET $2`
	args := []any{limit, offset}

	if kind != "" {
		query = `SELECT ` + entityColumns + ` FROM entities WHERE kind = $1 ORDER BY id LIMIT $2 OFFSET $3`
		args = []any{string(kind), limit, offset}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []*domain.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return entities, rows.Err()
}

func scanEntity(row pgx.Row) (*domain.Entity, error) {
	var (
		entity    domain.Entity
		kind      string
		opening   pgtype.Numeric
		current   pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&entity.ID,
		&kind,
		&entity.Name,
		&entity.Phone,
		&entity.Email,
		&entity.Address,
		&opening,
		&current,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntityNotFound
		}

		return nil, err
	}

	entity.Kind = domain.EntityKind(kind)
	entity.OpeningBalance = numericToDecimal(opening)
	entity.CurrentBalance = numericToDecimal(current)
	entity.CreatedAt = createdAt.Time
	entity.UpdatedAt = updatedAt.Time

	return &entity, nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func dateToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}
