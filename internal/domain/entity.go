package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntityKind distinguishes the two ledger sides: customers carry
// receivables, parties (suppliers) carry payables.
type EntityKind string

const (
	EntityKindCustomer EntityKind = "customer"
	EntityKindParty    EntityKind = "party"
)

// ParseEntityKind parses a kind string.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case EntityKindCustomer:
		return EntityKindCustomer, nil
	case EntityKindParty:
		return EntityKindParty, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityKind, s)
	}
}

// EntityKey identifies one ledger: an entity kind plus its integer ID.
type EntityKey struct {
	Kind EntityKind
	ID   int64
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s/%d", k.Kind, k.ID)
}

// Entity represents a customer or a party/supplier that owns a ledger.
//
// CurrentBalance is always derivable as OpeningBalance + sum(debits) -
// sum(credits) over the entity's transactions in canonical order. It is
// stored for cheap reads but only ever written from that derivation.
type Entity struct {
	ID             int64
	Kind           EntityKind
	Name           string
	Phone          string
	Email          string
	Address        string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Key returns the ledger key for this entity.
func (e *Entity) Key() EntityKey {
	return EntityKey{Kind: e.Kind, ID: e.ID}
}

// EntitySummary is the projection returned after a recorded transaction
// and by summary reads.
type EntitySummary struct {
	Entity           *Entity
	CurrentBalance   decimal.Decimal
	TotalDebit       decimal.Decimal
	TotalCredit      decimal.Decimal
	TransactionCount int
	Side             BalanceSide
}
