package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bakeops/backledger/internal/domain"
	"github.com/bakeops/backledger/internal/usecase"
)

const transactionColumns = `id, entity_id, entity_kind, transaction_date, description,
	       reference_number, debit_amount, credit_amount, type,
	       payment_method, notes, seq, created_at`

// canonicalOrder is the one ordering every balance fold depends on:
// transaction date ascending, insertion order (seq) as tie-break.
const canonicalOrder = ` ORDER BY transaction_date, seq`

// TransactionRepository implements usecase.TransactionRepository on the
// ledger_transactions table. The table is append-only; there are no
// UPDATE or DELETE statements in this file on purpose.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Append inserts a ledger transaction and fills in its assigned seq.
func (r *TransactionRepository) Append(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()
	query := `
		INSERT INTO ledger_transactions (
			id, entity_id, entity_kind, transaction_date, description,
			reference_number, debit_amount, credit_amount, type,
			payment_method, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING seq
	`

	return pgxTx.QueryRow(ctx, query,
		record.ID,
		record.EntityID,
		string(record.EntityKind),
		dateToPgDate(record.Date),
		record.Description,
		record.ReferenceNumber,
		decimalToNumeric(record.DebitAmount),
		decimalToNumeric(record.CreditAmount),
		string(record.Type),
		string(record.PaymentMethod),
		record.Notes,
		timeToPgTimestamptz(record.CreatedAt),
	).Scan(&record.Seq)
}

// ListByEntity retrieves an entity's transactions in canonical order.
func (r *TransactionRepository) ListByEntity(ctx context.Context, key domain.EntityKey) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM ledger_transactions
		WHERE entity_kind = $1 AND entity_id = $2` + canonicalOrder

	rows, err := r.pool.Query(ctx, query, string(key.Kind), key.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListByEntityTx is ListByEntity inside a transaction, for reads under
// the entity row lock.
func (r *TransactionRepository) ListByEntityTx(ctx context.Context, tx usecase.Transaction, key domain.EntityKey) ([]*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()
	query := `SELECT ` + transactionColumns + `
		FROM ledger_transactions
		WHERE entity_kind = $1 AND entity_id = $2` + canonicalOrder

	rows, err := pgxTx.Query(ctx, query, string(key.Kind), key.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListAll retrieves every transaction grouped by entity in canonical
// order, for aggregation and consistency checks.
func (r *TransactionRepository) ListAll(ctx context.Context) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM ledger_transactions
		ORDER BY entity_kind, entity_id, transaction_date, seq`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx        domain.Transaction
		kind      string
		txType    string
		method    string
		date      pgtype.Date
		debit     pgtype.Numeric
		credit    pgtype.Numeric
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&tx.ID,
		&tx.EntityID,
		&kind,
		&date,
		&tx.Description,
		&tx.ReferenceNumber,
		&debit,
		&credit,
		&txType,
		&method,
		&tx.Notes,
		&tx.Seq,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	tx.EntityKind = domain.EntityKind(kind)
	tx.Date = domain.DateOnly(date.Time)
	tx.DebitAmount = numericToDecimal(debit)
	tx.CreditAmount = numericToDecimal(credit)
	tx.Type = domain.TransactionType(txType)
	tx.PaymentMethod = domain.PaymentMethod(method)
	tx.CreatedAt = createdAt.Time

	return &tx, nil
}
