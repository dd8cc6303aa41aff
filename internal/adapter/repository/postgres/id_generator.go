package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID transaction IDs. ULIDs sort by creation
// time, which keeps IDs readable in the table without carrying any
// ledger meaning; ordering always comes from date and seq.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
