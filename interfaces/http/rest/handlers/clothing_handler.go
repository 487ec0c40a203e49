package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"clothing-api/domain/core/entities"
	"clothing-api/pkg/common"
	"clothing-api/pkg/errors"
)

// Success messages.
const (
	MessageCreated     = "Clothing item created successfully"
	MessageUpdated     = "Clothing item updated successfully"
	MessageDeleted     = "Clothing item deleted successfully"
	MessageInvalidJSON = "Invalid JSON body"
)

// ClothingService is the request logic the handlers delegate to
type ClothingService interface {
	List(ctx context.Context, limitPerPage int) ([]*entities.ClothingItem, error)
	Get(ctx context.Context, id string) (*entities.ClothingItem, error)
	Create(ctx context.Context, payload entities.Payload) (*entities.ClothingItem, error)
	Update(ctx context.Context, id string, payload entities.Payload) (*entities.ClothingItem, error)
	Delete(ctx context.Context, id string) (*entities.ClothingItem, error)
}

// ClothingHandler handles clothing-related HTTP requests
type ClothingHandler struct {
	service      ClothingService
	errorHandler *errors.ErrorHandler
	logger       *zap.Logger
}

// NewClothingHandler creates a new clothing handler
func NewClothingHandler(service ClothingService, errorHandler *errors.ErrorHandler, logger *zap.Logger) *ClothingHandler {
	return &ClothingHandler{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// ListClothing handles GET /clothing
func (h *ClothingHandler) ListClothing(w http.ResponseWriter, r *http.Request) {
	limit, err := common.ParseLimitPerPage(r.URL.Query().Get("limitPerPage"))
	if err != nil {
		h.errorHandler.Handle(w, r, errors.NewInvalidArgumentError(err.Error()))
		return
	}

	items, err := h.service.List(r.Context(), limit)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, common.List(items, len(items)))
}

// GetClothing handles GET /clothing/{id}
func (h *ClothingHandler) GetClothing(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, common.Success(item, ""))
}

// CreateClothing handles POST /clothing
func (h *ClothingHandler) CreateClothing(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.parsePayload(w, r)
	if !ok {
		return
	}

	item, err := h.service.Create(r.Context(), payload)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, common.Success(item, MessageCreated))
}

// UpdateClothing handles PUT /clothing/{id}
func (h *ClothingHandler) UpdateClothing(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.parsePayload(w, r)
	if !ok {
		return
	}

	item, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, common.Success(item, MessageUpdated))
}

// DeleteClothing handles DELETE /clothing/{id}
func (h *ClothingHandler) DeleteClothing(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, common.Success(item, MessageDeleted))
}

func (h *ClothingHandler) parsePayload(w http.ResponseWriter, r *http.Request) (entities.Payload, bool) {
	body, err := common.ParseJSONBody(w, r)
	if err != nil {
		h.errorHandler.Handle(w, r, errors.NewInvalidArgumentError(MessageInvalidJSON).WithCause(err))
		return nil, false
	}
	return entities.Payload(body), true
}
