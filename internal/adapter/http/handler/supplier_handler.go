package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bakeops/backledger/internal/adapter/http/dto"
	"github.com/bakeops/backledger/internal/domain"
)

// SupplierService defines the behavior needed by SupplierHandler.
type SupplierService interface {
	SupplierSummary(ctx context.Context, partyID int64) (*domain.SupplierSummary, error)
	ListSupplierSummaries(ctx context.Context) ([]*domain.SupplierOverview, error)
}

// SupplierHandler serves the supplier aggregation views.
type SupplierHandler struct {
	supplierUC SupplierService
}

// NewSupplierHandler creates a new SupplierHandler.
func NewSupplierHandler(supplierUC SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierUC: supplierUC}
}

// Summary returns one party's supplier view with per-purchase settlement.
func (h *SupplierHandler) Summary(w http.ResponseWriter, r *http.Request) {
	partyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid party id", err.Error())
		return
	}

	summary, err := h.supplierUC.SupplierSummary(r.Context(), partyID)
	if err != nil {
		writeDomainError(w, err, "failed to get supplier summary")
		return
	}

	writeJSON(w, http.StatusOK, dto.SupplierSummaryFromDomain(summary))
}

// List returns the totals row for every party.
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	overviews, err := h.supplierUC.ListSupplierSummaries(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to list supplier summaries")
		return
	}

	writeJSON(w, http.StatusOK, dto.SupplierOverviewsFromDomain(overviews))
}
