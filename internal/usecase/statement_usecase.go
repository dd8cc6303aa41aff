package usecase

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/bakeops/backledger/internal/domain"
)

// csvDateFormat renders transaction dates as dd/MM/yyyy, the statement
// contract.
const csvDateFormat = "02/01/2006"

// LedgerReader is the projection the statement exporter reads from.
type LedgerReader interface {
	GetLedger(ctx context.Context, key domain.EntityKey) (*domain.Ledger, error)
}

// SupplierReader supplies the supplier aggregation projection.
type SupplierReader interface {
	SupplierSummary(ctx context.Context, partyID int64) (*domain.SupplierSummary, error)
}

// StatementUseCase renders ledgers as CSV statements. Pure formatting:
// running balances and settlement come from the projections, never
// recomputed here.
type StatementUseCase struct {
	ledgers   LedgerReader
	suppliers SupplierReader
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(ledgers LedgerReader, suppliers SupplierReader) *StatementUseCase {
	return &StatementUseCase{ledgers: ledgers, suppliers: suppliers}
}

// StatementFilename is the download filename for an entity's statement.
func StatementFilename(entityName string) string {
	return entityName + "_ledger.csv"
}

// ExportAccountCSV writes the customer/party statement for key to w and
// returns the download filename. Output is UTF-8, comma-separated, with
// a header row and RFC 4180 quoting.
func (uc *StatementUseCase) ExportAccountCSV(ctx context.Context, key domain.EntityKey, w io.Writer) (string, error) {
	ledger, err := uc.ledgers.GetLedger(ctx, key)
	if err != nil {
		return "", err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Description", "Reference", "Debit", "Credit", "Running Balance"}); err != nil {
		return "", err
	}

	for _, tx := range ledger.Transactions {
		row := []string{
			tx.Date.Format(csvDateFormat),
			tx.Description,
			tx.ReferenceNumber,
			tx.DebitAmount.StringFixed(2),
			tx.CreditAmount.StringFixed(2),
			tx.RunningBalance.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return "", err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}

	return StatementFilename(ledger.Entity.Name), nil
}

// ExportSupplierCSV writes the supplier-variant statement for a party:
// one row per purchase with its settlement state.
func (uc *StatementUseCase) ExportSupplierCSV(ctx context.Context, partyID int64, w io.Writer) (string, error) {
	summary, err := uc.suppliers.SupplierSummary(ctx, partyID)
	if err != nil {
		return "", err
	}

	cw := csv.NewWriter(w)
	header := []string{"Date", "Invoice#", "Items", "Total Amount", "Amount Paid", "Outstanding", "Running Balance", "Status"}
	if err := cw.Write(header); err != nil {
		return "", err
	}

	for _, line := range summary.Purchases {
		tx := line.Transaction
		row := []string{
			tx.Date.Format(csvDateFormat),
			tx.ReferenceNumber,
			tx.Description,
			tx.DebitAmount.StringFixed(2),
			line.AmountPaid.StringFixed(2),
			line.Outstanding.StringFixed(2),
			line.RunningBalance.StringFixed(2),
			string(line.Status),
		}
		if err := cw.Write(row); err != nil {
			return "", err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}

	return StatementFilename(summary.Entity.Name), nil
}
