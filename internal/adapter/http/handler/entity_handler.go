package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/bakeops/backledger/internal/adapter/http/dto"
	"github.com/bakeops/backledger/internal/domain"
	"github.com/bakeops/backledger/internal/infrastructure/metrics"
	"github.com/bakeops/backledger/internal/usecase"
)

// EntityService defines the behavior needed by EntityHandler.
type EntityService interface {
	CreateEntity(ctx context.Context, input usecase.CreateEntityInput) (*domain.Entity, error)
	GetEntity(ctx context.Context, key domain.EntityKey) (*domain.Entity, error)
	ListEntities(ctx context.Context, input usecase.ListEntitiesInput) ([]*domain.Entity, error)
	SetOpeningBalance(ctx context.Context, key domain.EntityKey, opening decimal.Decimal) (*domain.Entity, error)
}

// EntityHandler handles customer/party HTTP requests.
type EntityHandler struct {
	entityUC EntityService
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(entityUC EntityService) *EntityHandler {
	return &EntityHandler{entityUC: entityUC}
}

// Create creates a new customer or party.
func (h *EntityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entity, err := h.entityUC.CreateEntity(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err, "failed to create entity")
		return
	}

	metrics.EntitiesCreated.WithLabelValues(string(entity.Kind)).Inc()

	writeJSON(w, http.StatusCreated, dto.EntityFromDomain(entity))
}

// Get retrieves an entity by kind and ID.
func (h *EntityHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, err := entityKeyFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entity key", err.Error())
		return
	}

	entity, err := h.entityUC.GetEntity(r.Context(), key)
	if err != nil {
		writeDomainError(w, err, "failed to get entity")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntityFromDomain(entity))
}

// List lists entities, optionally filtered by type.
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	entities, err := h.entityUC.ListEntities(r.Context(), usecase.ListEntitiesInput{
		Kind:   r.URL.Query().Get("type"),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list entities")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntitiesResponse{
		Entities: dto.EntitiesFromDomain(entities),
		Total:    int64(len(entities)),
	})
}

// SetOpeningBalance resets an entity's opening balance. Rejected with a
// conflict once the entity has transactions.
func (h *EntityHandler) SetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	key, err := entityKeyFromURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entity key", err.Error())
		return
	}

	var req dto.SetOpeningBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entity, err := h.entityUC.SetOpeningBalance(r.Context(), key, req.OpeningBalance)
	if err != nil {
		writeDomainError(w, err, "failed to set opening balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntityFromDomain(entity))
}
