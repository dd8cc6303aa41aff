package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bakeops/backledger/internal/domain"
	"github.com/bakeops/backledger/internal/infrastructure/metrics"
)

// StatementService defines the behavior needed by StatementHandler.
type StatementService interface {
	ExportAccountCSV(ctx context.Context, key domain.EntityKey, w io.Writer) (string, error)
	ExportSupplierCSV(ctx context.Context, partyID int64, w io.Writer) (string, error)
}

// StatementHandler serves CSV statement downloads.
type StatementHandler struct {
	statementUC StatementService
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC StatementService) *StatementHandler {
	return &StatementHandler{statementUC: statementUC}
}

// Account streams the customer/party statement as a CSV download.
func (h *StatementHandler) Account(w http.ResponseWriter, r *http.Request) {
	key, err := entityKeyFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entity key", err.Error())
		return
	}

	// Render to a buffer first so an export failure can still produce a
	// JSON error instead of a truncated download.
	var buf bytes.Buffer
	filename, err := h.statementUC.ExportAccountCSV(r.Context(), key, &buf)
	if err != nil {
		writeDomainError(w, err, "failed to export statement")
		return
	}

	metrics.StatementExports.WithLabelValues("account").Inc()
	writeCSV(w, filename, buf.Bytes())
}

// Supplier streams the supplier-variant statement for a party.
func (h *StatementHandler) Supplier(w http.ResponseWriter, r *http.Request) {
	partyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid party id", err.Error())
		return
	}

	var buf bytes.Buffer
	filename, err := h.statementUC.ExportSupplierCSV(r.Context(), partyID, &buf)
	if err != nil {
		writeDomainError(w, err, "failed to export statement")
		return
	}

	metrics.StatementExports.WithLabelValues("supplier").Inc()
	writeCSV(w, filename, buf.Bytes())
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
