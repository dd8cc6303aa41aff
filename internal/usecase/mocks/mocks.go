package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bakeops/backledger/internal/domain"
	"github.com/bakeops/backledger/internal/usecase"
)

// MockEntityRepository is a mock implementation of EntityRepository.
// Without Func overrides it behaves as an in-memory store.
type MockEntityRepository struct {
	mu       sync.RWMutex
	entities map[domain.EntityKey]*domain.Entity
	nextID   int64

	CreateFunc               func(ctx context.Context, entity *domain.Entity) error
	GetByKeyFunc             func(ctx context.Context, key domain.EntityKey) (*domain.Entity, error)
	GetByKeyForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, key domain.EntityKey) (*domain.Entity, error)
	UpdateBalanceFunc        func(ctx context.Context, tx usecase.Transaction, key domain.EntityKey, balance decimal.Decimal, updatedAt time.Time) error
	UpdateOpeningBalanceFunc func(ctx context.Context, tx usecase.Transaction, key domain.EntityKey, opening, current decimal.Decimal, updatedAt time.Time) error
	ListFunc                 func(ctx context.Context, kind domain.EntityKind, limit, offset int) ([]*domain.Entity, error)
}

func NewMockEntityRepository() *MockEntityRepository {
	return &MockEntityRepository{
		entities: make(map[domain.EntityKey]*domain.Entity),
	}
}

// Seed stores an entity directly, bypassing Create.
func (m *MockEntityRepository) Seed(entity *domain.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[entity.Key()] = entity
}

func (m *MockEntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entity.ID = m.nextID
	m.entities[entity.Key()] = entity
	return nil
}

func (m *MockEntityRepository) GetByKey(ctx context.Context, key domain.EntityKey) (*domain.Entity, error) {
	if m.GetByKeyFunc != nil {
		return m.GetByKeyFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entities[key]; ok {
		return e, nil
	}
	return nil, domain.ErrEntityNotFound
}

func (m *MockEntityRepository) GetByKeyForUpdate(ctx context.Context, tx usecase.Transaction, key domain.EntityKey) (*domain.Entity, error) {
	if m.GetByKeyForUpdateFunc != nil {
		return m.GetByKeyForUpdateFunc(ctx, tx, key)
	}
	return m.GetByKey(ctx, key)
}

func (m *MockEntityRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, key domain.EntityKey, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, key, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[key]
	if !ok {
		return domain.ErrEntityNotFound
	}
	e.CurrentBalance = balance
	e.UpdatedAt = updatedAt
	return nil
}

func (m *MockEntityRepository) UpdateOpeningBalance(ctx context.Context, tx usecase.Transaction, key domain.EntityKey, opening, current decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateOpeningBalanceFunc != nil {
		return m.UpdateOpeningBalanceFunc(ctx, tx, key, opening, current, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[key]
	if !ok {
		return domain.ErrEntityNotFound
	}
	e.OpeningBalance = opening
	e.CurrentBalance = current
	e.UpdatedAt = updatedAt
	return nil
}

func (m *MockEntityRepository) List(ctx context.Context, kind domain.EntityKind, limit, offset int) ([]*domain.Entity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, kind, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entity
	for _, e := range m.entities {
		if kind == "" || e.Kind == kind {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// MockTransactionRepository is a mock implementation of
// TransactionRepository. The in-memory default is append-only and lists
// in canonical order.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	records map[domain.EntityKey][]*domain.Transaction
	nextSeq int64

	AppendFunc         func(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error
	ListByEntityFunc   func(ctx context.Context, key domain.EntityKey) ([]*domain.Transaction, error)
	ListByEntityTxFunc func(ctx context.Context, tx usecase.Transaction, key domain.EntityKey) ([]*domain.Transaction, error)
	ListAllFunc        func(ctx context.Context) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		records: make(map[domain.EntityKey][]*domain.Transaction),
	}
}

// Seed appends a transaction directly, assigning the next seq.
func (m *MockTransactionRepository) Seed(record *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	record.Seq = m.nextSeq
	m.records[record.Key()] = append(m.records[record.Key()], record)
}

// Size returns the total number of stored transactions.
func (m *MockTransactionRepository) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, txs := range m.records {
		n += len(txs)
	}
	return n
}

func (m *MockTransactionRepository) Append(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, record)
	}
	m.Seed(record)
	return nil
}

func (m *MockTransactionRepository) ListByEntity(ctx context.Context, key domain.EntityKey) ([]*domain.Transaction, error) {
	if m.ListByEntityFunc != nil {
		return m.ListByEntityFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return canonicalOrder(m.records[key]), nil
}

func (m *MockTransactionRepository) ListByEntityTx(ctx context.Context, tx usecase.Transaction, key domain.EntityKey) ([]*domain.Transaction, error) {
	if m.ListByEntityTxFunc != nil {
		return m.ListByEntityTxFunc(ctx, tx, key)
	}
	return m.ListByEntity(ctx, key)
}

func (m *MockTransactionRepository) ListAll(ctx context.Context) ([]*domain.Transaction, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*domain.Transaction
	for _, txs := range m.records {
		all = append(all, canonicalOrder(txs)...)
	}
	return all, nil
}

func canonicalOrder(txs []*domain.Transaction) []*domain.Transaction {
	out := make([]*domain.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// MockTx is a mock database transaction.
type MockTx struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTx) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu   sync.Mutex
	Txs  []*MockTx

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTx{}
	m.Txs = append(m.Txs, tx)
	return tx, nil
}

// MockIDGenerator is a mock implementation of IDGenerator producing
// sequential ids.
type MockIDGenerator struct {
	mu sync.Mutex
	n  int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return fmt.Sprintf("tx-%06d", m.n)
}

// MockCache is a mock implementation of Cache ignoring TTLs.
type MockCache struct {
	mu     sync.RWMutex
	values map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("cache miss: %s", key)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MockRetrier runs the operation exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
