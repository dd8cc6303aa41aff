package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bakeops/backledger/internal/adapter/http/dto"
	"github.com/bakeops/backledger/internal/domain"
	"github.com/bakeops/backledger/internal/infrastructure/metrics"
	"github.com/bakeops/backledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	RecordTransaction(ctx context.Context, input usecase.RecordTransactionInput) (*domain.EntitySummary, error)
	GetLedger(ctx context.Context, key domain.EntityKey) (*domain.Ledger, error)
	GetSummary(ctx context.Context, key domain.EntityKey) (*domain.EntitySummary, error)
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Record appends a transaction to an entity's ledger.
func (h *LedgerHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	summary, err := h.ledgerUC.RecordTransaction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to record transaction")
		return
	}

	metrics.TransactionsRecorded.WithLabelValues(req.EntityType, req.Type).Inc()

	writeJSON(w, http.StatusCreated, dto.SummaryFromDomain(summary))
}

// Get returns an entity's full ledger with running balances.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, err := entityKeyFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entity key", err.Error())
		return
	}

	ledger, err := h.ledgerUC.GetLedger(r.Context(), key)
	if err != nil {
		writeDomainError(w, err, "failed to get ledger")
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(ledger))
}

// Summary returns an entity's summary.
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	key, err := entityKeyFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entity key", err.Error())
		return
	}

	summary, err := h.ledgerUC.GetSummary(r.Context(), key)
	if err != nil {
		writeDomainError(w, err, "failed to get summary")
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}

// Consistency recomputes every balance and reports mismatches.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		writeDomainError(w, err, "consistency check failed")
		return
	}

	if !report.Consistent() {
		metrics.ConsistencyFailures.Add(float64(len(report.Mismatches)))
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report))
}
