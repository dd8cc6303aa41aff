package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType determines the posting side of a ledger entry.
type TransactionType string

const (
	TypeSale             TransactionType = "sale"
	TypePaymentReceived  TransactionType = "payment_received"
	TypePurchase         TransactionType = "purchase"
	TypePaymentSent      TransactionType = "payment_sent"
	TypeAdjustmentDebit  TransactionType = "adjustment_debit"
	TypeAdjustmentCredit TransactionType = "adjustment_credit"
)

// Posting is the debit/credit side a transaction type resolves to.
type Posting int

const (
	PostingDebit Posting = iota
	PostingCredit
)

// postingRule binds a transaction type to its posting side and, where the
// type is side-specific, the entity kind it is valid for. An empty kind
// means the type applies to either side.
type postingRule struct {
	posting Posting
	kind    EntityKind
}

// The posting table is the single place debit/credit semantics live.
// Customer and party ledgers share everything else.
var postingRules = map[TransactionType]postingRule{
	TypeSale:             {posting: PostingDebit, kind: EntityKindCustomer},
	TypePaymentReceived:  {posting: PostingCredit, kind: EntityKindCustomer},
	TypePurchase:         {posting: PostingDebit, kind: EntityKindParty},
	TypePaymentSent:      {posting: PostingCredit, kind: EntityKindParty},
	TypeAdjustmentDebit:  {posting: PostingDebit},
	TypeAdjustmentCredit: {posting: PostingCredit},
}

// Posting resolves the posting side for a transaction type.
func (t TransactionType) Posting() (Posting, error) {
	rule, ok := postingRules[t]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTransactionType, t)
	}
	return rule.posting, nil
}

// AllowedFor reports whether the type may be posted to the given kind.
func (t TransactionType) AllowedFor(kind EntityKind) bool {
	rule, ok := postingRules[t]
	if !ok {
		return false
	}
	return rule.kind == "" || rule.kind == kind
}

// SplitPosting derives the debit/credit pair from a type and a positive
// amount. Callers never supply debit and credit directly; this is what
// keeps both-positive or both-zero pairs out of the ledger.
func SplitPosting(t TransactionType, amount decimal.Decimal) (debit, credit decimal.Decimal, err error) {
	posting, err := t.Posting()
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if posting == PostingDebit {
		return amount, decimal.Zero, nil
	}
	return decimal.Zero, amount, nil
}

// PaymentMethod is how a payment transaction was settled. Optional.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentUPI          PaymentMethod = "upi"
	PaymentCheque       PaymentMethod = "cheque"
)

var paymentMethods = map[PaymentMethod]bool{
	PaymentCash:         true,
	PaymentCard:         true,
	PaymentBankTransfer: true,
	PaymentUPI:          true,
	PaymentCheque:       true,
}

// ParsePaymentMethod parses an optional payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if s == "" {
		return "", nil
	}
	m := PaymentMethod(s)
	if !paymentMethods[m] {
		return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
	}
	return m, nil
}

// Transaction is one immutable ledger entry. Corrections are new
// offsetting transactions, never edits.
//
// Seq is the insertion order within the entity's ledger and breaks ties
// between transactions on the same date.
type Transaction struct {
	ID              string
	EntityID        int64
	EntityKind      EntityKind
	Date            time.Time
	Description     string
	ReferenceNumber string
	DebitAmount     decimal.Decimal
	CreditAmount    decimal.Decimal
	Type            TransactionType
	PaymentMethod   PaymentMethod
	Notes           string
	RunningBalance  decimal.Decimal
	Seq             int64
	CreatedAt       time.Time
}

// Key returns the ledger key the transaction belongs to.
func (t *Transaction) Key() EntityKey {
	return EntityKey{Kind: t.EntityKind, ID: t.EntityID}
}

// Amount returns the positive side of the posting.
func (t *Transaction) Amount() decimal.Decimal {
	if t.DebitAmount.IsPositive() {
		return t.DebitAmount
	}
	return t.CreditAmount
}

// CheckPosting verifies the stored-record invariant: exactly one of
// debit/credit positive and the other exactly zero. A violation means a
// bug in the append path, not bad input.
func (t *Transaction) CheckPosting() error {
	debitSet := t.DebitAmount.IsPositive()
	creditSet := t.CreditAmount.IsPositive()
	if debitSet == creditSet {
		return fmt.Errorf("%w: transaction %s has debit=%s credit=%s",
			ErrInvariantViolation, t.ID, t.DebitAmount, t.CreditAmount)
	}
	if t.DebitAmount.IsNegative() || t.CreditAmount.IsNegative() {
		return fmt.Errorf("%w: transaction %s has a negative posting amount",
			ErrInvariantViolation, t.ID)
	}
	return nil
}
